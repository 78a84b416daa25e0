package api

import (
	"context"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/chatweb/internal/errors"
	"github.com/diogo/chatweb/internal/models"
)

// Login exchanges credentials for a user id
func (c *Client) Login(ctx context.Context, email, password string) (models.UserID, error) {
	resp, err := c.do(ctx, "login", http.MethodPost, models.EndpointLogin, loginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return 0, err
	}
	return parseAuthResponse(resp, models.EndpointLogin, "Login failed")
}

// Register creates an account and returns its user id
func (c *Client) Register(ctx context.Context, name, email, password string) (models.UserID, error) {
	resp, err := c.do(ctx, "register", http.MethodPost, models.EndpointRegister, registerRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return 0, err
	}
	return parseAuthResponse(resp, models.EndpointRegister, "Registration failed")
}

func parseAuthResponse(resp response, endpoint, fallback string) (models.UserID, error) {
	if !resp.ok() {
		msg := resp.detail()
		if msg == "" {
			msg = fallback
		}
		return 0, apierrors.NewAuthErrorWithStatus(resp.status, endpoint, msg)
	}

	if !gjson.ValidBytes(resp.body) {
		return 0, apierrors.NewParseError("Invalid response format from backend", endpoint)
	}

	id := gjson.GetBytes(resp.body, PathUserID)
	if !id.Exists() || id.Int() == 0 {
		return 0, apierrors.NewParseError("No user ID received from server", PathUserID)
	}

	return models.UserID(id.Int()), nil
}
