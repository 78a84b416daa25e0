package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/chatweb/internal/errors"
	"github.com/diogo/chatweb/internal/models"
)

// timeLayouts covers timestamps with and without a zone; the backend emits naive ISO-8601
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// SaveSession creates a new persisted session and returns its id
func (c *Client) SaveSession(ctx context.Context, userID models.UserID, messages []models.Message, generateSummary bool) (int64, error) {
	resp, err := c.do(ctx, "save session", http.MethodPost, models.EndpointSaveSession, saveSessionRequest{
		Messages:        nonNil(messages),
		UserID:          userID,
		GenerateSummary: generateSummary,
	})
	if err != nil {
		return 0, err
	}

	if !resp.ok() {
		return 0, apiError(resp, models.EndpointSaveSession, "save session failed")
	}

	id := gjson.GetBytes(resp.body, PathSessionID)
	if !id.Exists() {
		return 0, apierrors.NewParseError("no session id in save response", PathSessionID)
	}
	return id.Int(), nil
}

// UpdateSession replaces the messages of an existing session
func (c *Client) UpdateSession(ctx context.Context, sessionID int64, messages []models.Message) error {
	path := fmt.Sprintf("%s/%d", models.EndpointUpdateSession, sessionID)
	resp, err := c.do(ctx, "update session", http.MethodPut, path, updateSessionRequest{
		Messages: nonNil(messages),
	})
	if err != nil {
		return err
	}

	if !resp.ok() {
		return apiError(resp, path, "update session failed")
	}
	return nil
}

// ActiveSession returns the user's open session, or nil when there is none
func (c *Client) ActiveSession(ctx context.Context, userID models.UserID) (*ActiveSession, error) {
	path := fmt.Sprintf("%s/%s", models.EndpointActiveSession, userID)
	resp, err := c.do(ctx, "active session", http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, apiError(resp, path, "active session lookup failed")
	}
	if !gjson.ValidBytes(resp.body) {
		return nil, apierrors.NewParseError("Invalid response format from backend", path)
	}

	id := gjson.GetBytes(resp.body, PathSessionID)
	if !id.Exists() || id.Type == gjson.Null {
		return nil, nil
	}

	return &ActiveSession{
		SessionID: id.Int(),
		Messages:  parseMessages(gjson.GetBytes(resp.body, PathMessages)),
	}, nil
}

// ListSessions returns every session stored for the user, newest first
func (c *Client) ListSessions(ctx context.Context, userID models.UserID) ([]models.SessionInfo, error) {
	path := fmt.Sprintf("%s/%s", models.EndpointSessions, userID)
	resp, err := c.do(ctx, "list sessions", http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, apiError(resp, path, "list sessions failed")
	}

	list := gjson.GetBytes(resp.body, PathSessions)
	if !list.IsArray() {
		return nil, apierrors.NewParseError("Invalid response format from backend", PathSessions)
	}

	sessions := make([]models.SessionInfo, 0, len(list.Array()))
	list.ForEach(func(_, value gjson.Result) bool {
		sessions = append(sessions, parseSessionInfo(value))
		return true
	})
	return sessions, nil
}

// GetSession returns a full stored session
func (c *Client) GetSession(ctx context.Context, sessionID int64) (*models.Transcript, error) {
	path := fmt.Sprintf("%s/%d", models.EndpointSession, sessionID)
	resp, err := c.do(ctx, "get session", http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, apiError(resp, path, "get session failed")
	}

	root := gjson.ParseBytes(resp.body)
	if !root.Get(PathSessID).Exists() {
		return nil, apierrors.NewParseError("Invalid response format from backend", PathSessID)
	}

	return &models.Transcript{
		SessionInfo: parseSessionInfo(root),
		Messages:    parseMessages(root.Get(PathMessages)),
	}, nil
}

func parseMessages(list gjson.Result) []models.Message {
	if !list.IsArray() {
		return nil
	}
	var msgs []models.Message
	list.ForEach(func(_, value gjson.Result) bool {
		msgs = append(msgs, models.Message{
			Role:    models.Role(value.Get(PathMsgRole).String()),
			Content: value.Get(PathMsgContent).String(),
		})
		return true
	})
	return msgs
}

func parseSessionInfo(value gjson.Result) models.SessionInfo {
	info := models.SessionInfo{
		ID:        value.Get(PathSessID).Int(),
		CreatedAt: parseTime(value.Get(PathSessCreated).String()),
		UpdatedAt: parseTime(value.Get(PathSessUpdated).String()),
	}
	if summary, ok := value.Get(PathSessSummary).Value().(map[string]any); ok {
		info.Summary = summary
	}
	return info
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
