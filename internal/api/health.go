package api

import (
	"context"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	"github.com/diogo/chatweb/internal/models"
)

// Health asks the backend whether it is up and returns its reported status
func (c *Client) Health(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, "health", http.MethodGet, models.EndpointHealth, nil)
	if err != nil {
		return "", err
	}
	if !resp.ok() {
		return "", apiError(resp, models.EndpointHealth, "health check failed")
	}

	status := gjson.GetBytes(resp.body, PathStatus).String()
	if status == "" {
		status = "unknown"
	}
	return status, nil
}
