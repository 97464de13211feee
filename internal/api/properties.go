package api

import (
	"context"
	"net/http"
	"net/url"

	"vacationRentalWebsite/internal/models"
)

// FeaturedProperties returns the listings flagged as featured
func (c *Client) FeaturedProperties(ctx context.Context) ([]models.Property, error) {
	var props []models.Property
	if _, err := c.do(ctx, http.MethodGet, "/properties/featured", "", nil, nil, &props); err != nil {
		return nil, err
	}
	return props, nil
}

// ListProperties returns one page of listings matching q
func (c *Client) ListProperties(ctx context.Context, q models.ListQuery) ([]models.Property, *models.Pagination, error) {
	var props []models.Property
	pg, err := c.do(ctx, http.MethodGet, "/properties", "", listValues(q), nil, &props)
	if err != nil {
		return nil, nil, err
	}
	return props, pg, nil
}

// GetProperty fetches a single listing by id
func (c *Client) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	var p models.Property
	if _, err := c.do(ctx, http.MethodGet, "/properties/"+url.PathEscape(id), "", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateProperty(ctx context.Context, token string, payload models.PropertyPayload) (*models.Property, error) {
	var p models.Property
	if _, err := c.do(ctx, http.MethodPost, "/properties", token, nil, payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProperty(ctx context.Context, token, id string, payload models.PropertyPayload) (*models.Property, error) {
	var p models.Property
	if _, err := c.do(ctx, http.MethodPut, "/properties/"+url.PathEscape(id), token, nil, payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProperty(ctx context.Context, token, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/properties/"+url.PathEscape(id), token, nil, nil, nil)
	return err
}
