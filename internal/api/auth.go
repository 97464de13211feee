package api

import (
	"context"
	"net/http"

	"vacationRentalWebsite/internal/models"
)

// Login exchanges credentials for a token and user record
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	var res models.AuthResult
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", "", nil, creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Register creates an account and returns its token and user record
func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error) {
	var res models.AuthResult
	if _, err := c.do(ctx, http.MethodPost, "/auth/register", "", nil, reg, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateProfile edits the caller's own name and phone
func (c *Client) UpdateProfile(ctx context.Context, token string, upd models.ProfileUpdate) (*models.User, error) {
	var u models.User
	if _, err := c.do(ctx, http.MethodPut, "/auth/profile", token, nil, upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
