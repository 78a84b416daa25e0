package api

import (
	"context"

	"github.com/diogo/chatweb/internal/models"
)

// Backend is the set of backend operations the rest of the application uses
type Backend interface {
	Login(ctx context.Context, email, password string) (models.UserID, error)
	Register(ctx context.Context, name, email, password string) (models.UserID, error)
	Chat(ctx context.Context, userID models.UserID, messages []models.Message) (string, error)
	SaveSession(ctx context.Context, userID models.UserID, messages []models.Message, generateSummary bool) (int64, error)
	UpdateSession(ctx context.Context, sessionID int64, messages []models.Message) error
	ActiveSession(ctx context.Context, userID models.UserID) (*ActiveSession, error)
	ListSessions(ctx context.Context, userID models.UserID) ([]models.SessionInfo, error)
	GetSession(ctx context.Context, sessionID int64) (*models.Transcript, error)
}

// Ensure Client implements Backend
var _ Backend = (*Client)(nil)

// ActiveSession is the backend's most recent unfinished conversation for a user
type ActiveSession struct {
	SessionID int64
	Messages  []models.Message
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type chatRequest struct {
	Messages    []models.Message `json:"messages"`
	UserID      models.UserID    `json:"user_id"`
	Model       string           `json:"model,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
}

type saveSessionRequest struct {
	Messages        []models.Message `json:"messages"`
	UserID          models.UserID    `json:"user_id"`
	GenerateSummary bool             `json:"generate_summary"`
}

type updateSessionRequest struct {
	Messages []models.Message `json:"messages"`
}

// nonNil keeps an empty history encoded as [] rather than null
func nonNil(msgs []models.Message) []models.Message {
	if msgs == nil {
		return []models.Message{}
	}
	return msgs
}
