package api

import (
	"context"
	"net/http"
	"net/url"

	"vacationRentalWebsite/internal/models"
)

// CreateBooking reserves a property. The booking is unpaid until PayBooking succeeds.
func (c *Client) CreateBooking(ctx context.Context, token string, req models.CreateBookingRequest) (*models.Booking, error) {
	var b models.Booking
	if _, err := c.do(ctx, http.MethodPost, "/bookings", token, nil, req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// PayBooking confirms payment for a created booking
func (c *Client) PayBooking(ctx context.Context, token, id string) (*models.Booking, error) {
	var b models.Booking
	if _, err := c.do(ctx, http.MethodPut, "/bookings/"+url.PathEscape(id)+"/pay", token, nil, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// MyBookings lists the caller's own bookings
func (c *Client) MyBookings(ctx context.Context, token string) ([]models.Booking, error) {
	var list []models.Booking
	if _, err := c.do(ctx, http.MethodGet, "/bookings", token, nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AllBookings lists every booking (admin only)
func (c *Client) AllBookings(ctx context.Context, token string, q models.ListQuery) ([]models.Booking, *models.Pagination, error) {
	var list []models.Booking
	pg, err := c.do(ctx, http.MethodGet, "/bookings/admin/all", token, listValues(q), nil, &list)
	if err != nil {
		return nil, nil, err
	}
	return list, pg, nil
}

// UpdateBookingStatus sets the lifecycle status of a booking (admin only)
func (c *Client) UpdateBookingStatus(ctx context.Context, token, id string, status models.BookingStatus) (*models.Booking, error) {
	var b models.Booking
	body := map[string]models.BookingStatus{"status": status}
	if _, err := c.do(ctx, http.MethodPut, "/bookings/"+url.PathEscape(id)+"/status", token, nil, body, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
