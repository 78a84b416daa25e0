package models

import (
	"strconv"
	"time"
)

// Role identifies the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Label returns the short display name used next to a message
func (r Role) Label() string {
	if r == RoleUser {
		return "You"
	}
	return "AI"
}

// Message is one entry of a conversation. Order is chronological and is
// replayed verbatim to the backend as context.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserID is the opaque identifier the backend assigns on login/registration
type UserID int64

// String formats the id the way it appears in URLs and storage
func (u UserID) String() string {
	return strconv.FormatInt(int64(u), 10)
}

// ParseUserID parses a stored identifier
func ParseUserID(s string) (UserID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return UserID(n), nil
}

// SessionInfo is one row of the backend's session listing
type SessionInfo struct {
	ID        int64          `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Summary   map[string]any `json:"summary,omitempty"`
}

// HasSummary reports whether the session was closed by a logout
func (s SessionInfo) HasSummary() bool {
	return len(s.Summary) > 0
}

// SummaryText returns the generated summary sentence, if any
func (s SessionInfo) SummaryText() string {
	if text, ok := s.Summary["summary"].(string); ok {
		return text
	}
	return ""
}

// Transcript is a full persisted session as returned by the backend
type Transcript struct {
	SessionInfo
	Messages []Message `json:"messages"`
}

// CloneMessages returns an independent copy of msgs
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
