package api

import (
	"context"
	"net/http"
	"net/url"

	"vacationRentalWebsite/internal/models"
)

func (c *Client) ListEnquiries(ctx context.Context, token string, q models.ListQuery) ([]models.Enquiry, *models.Pagination, error) {
	var list []models.Enquiry
	pg, err := c.do(ctx, http.MethodGet, "/enquiries", token, listValues(q), nil, &list)
	if err != nil {
		return nil, nil, err
	}
	return list, pg, nil
}

func (c *Client) UpdateEnquiryStatus(ctx context.Context, token, id string, status models.EnquiryStatus) (*models.Enquiry, error) {
	var e models.Enquiry
	body := map[string]models.EnquiryStatus{"status": status}
	if _, err := c.do(ctx, http.MethodPut, "/enquiries/"+url.PathEscape(id), token, nil, body, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// SendEnquiry submits the public contact form. No session is required.
func (c *Client) SendEnquiry(ctx context.Context, req models.EnquiryRequest) (*models.Enquiry, error) {
	var e models.Enquiry
	if _, err := c.do(ctx, http.MethodPost, "/enquiries", "", nil, req, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
