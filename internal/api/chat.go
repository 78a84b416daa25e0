package api

import (
	"context"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/chatweb/internal/errors"
	"github.com/diogo/chatweb/internal/models"
)

// Chat sends the full conversation and returns the assistant's reply
func (c *Client) Chat(ctx context.Context, userID models.UserID, messages []models.Message) (string, error) {
	req := chatRequest{
		Messages:    nonNil(messages),
		UserID:      userID,
		Model:       c.chatOpts.Model,
		Temperature: c.chatOpts.Temperature,
		MaxTokens:   c.chatOpts.MaxTokens,
	}

	resp, err := c.do(ctx, "chat", http.MethodPost, models.EndpointChat, req)
	if err != nil {
		return "", err
	}

	if !resp.ok() {
		return "", apiError(resp, models.EndpointChat, "chat request failed")
	}

	reply := gjson.GetBytes(resp.body, PathResponse)
	if !gjson.ValidBytes(resp.body) || reply.Type != gjson.String || reply.String() == "" {
		return "", apierrors.NewParseError("Invalid response format from backend", PathResponse)
	}

	return reply.String(), nil
}
