// Package conversation owns the in-memory chat history and its persistence.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/diogo/chatweb/internal/api"
	apierrors "github.com/diogo/chatweb/internal/errors"
	"github.com/diogo/chatweb/internal/models"
)

// ErrBusy is returned when a submission is made while another is in flight
var ErrBusy = errors.New("a request is already in progress")

// ErrTurnSettled is returned when a turn is committed or rolled back twice
var ErrTurnSettled = errors.New("turn already settled")

// IdentitySource reports the authenticated user; session.Manager satisfies it
type IdentitySource interface {
	Identity() (models.UserID, bool)
}

// DraftSender delivers a save that must not block; api.Beacon satisfies it
type DraftSender interface {
	Send(userID models.UserID, messages []models.Message)
}

// Controller holds one conversation. All methods are safe for concurrent use
// so that a signal handler can snapshot state while the UI loop owns it.
type Controller struct {
	backend  api.Backend
	identity IdentitySource
	drafts   DraftSender
	logger   *zap.Logger

	mu         sync.Mutex
	messages   []models.Message
	sessionID  int64
	hasSession bool
	inflight   *Turn
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithDraftSender sets where best-effort saves go
func WithDraftSender(d DraftSender) Option {
	return func(c *Controller) {
		c.drafts = d
	}
}

// New creates an empty Controller
func New(backend api.Backend, identity IdentitySource, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		identity: identity,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.drafts == nil {
		c.drafts = api.NewBeacon(backend, c.logger)
	}
	return c
}

// Messages returns a copy of the history
func (c *Controller) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.CloneMessages(c.messages)
}

// Len returns the number of messages in the history
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// SessionID returns the backend session id, if one has been assigned
func (c *Controller) SessionID() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID, c.hasSession
}

// Busy reports whether a submission is in flight
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight != nil
}

// Begin starts a turn: it appends the user message and snapshots the context.
// Blank input returns a nil turn and no error. Without an identity the
// message is still appended and an error is returned.
func (c *Controller) Begin(text string) (*Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight != nil {
		return nil, ErrBusy
	}

	// The message is kept even when the send cannot start, like any other
	// failed submission.
	c.messages = append(c.messages, models.Message{Role: models.RoleUser, Content: text})

	userID, ok := c.identity.Identity()
	if !ok {
		return nil, apierrors.NewValidationError("user_id", "You must be logged in to chat")
	}

	turn := &Turn{
		Input:   text,
		UserID:  userID,
		History: models.CloneMessages(c.messages),
	}
	c.inflight = turn
	return turn, nil
}

// Send performs the backend call of a pending turn without touching state
func (c *Controller) Send(ctx context.Context, turn *Turn) (string, error) {
	return c.backend.Chat(ctx, turn.UserID, turn.History)
}

// Commit settles a turn successfully and appends the reply
func (c *Controller) Commit(turn *Turn, reply string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if turn.state != TurnPending {
		return ErrTurnSettled
	}
	turn.state = TurnCommitted
	turn.reply = reply

	// A reset while the request was out means this reply belongs to a
	// conversation that no longer exists.
	if c.inflight == turn {
		c.messages = append(c.messages, models.Message{Role: models.RoleAssistant, Content: reply})
		c.inflight = nil
	}
	return nil
}

// Rollback settles a turn as failed. The user message stays in the history.
func (c *Controller) Rollback(turn *Turn, cause error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if turn.state != TurnPending {
		return ErrTurnSettled
	}
	turn.state = TurnRolledBack
	turn.err = cause
	if c.inflight == turn {
		c.inflight = nil
	}
	return nil
}

// Submit runs a whole turn synchronously and returns the reply.
// Blank input is a no-op and returns "", nil.
func (c *Controller) Submit(ctx context.Context, text string) (string, error) {
	turn, err := c.Begin(text)
	if err != nil || turn == nil {
		return "", err
	}

	reply, err := c.Send(ctx, turn)
	if err != nil {
		_ = c.Rollback(turn, err)
		return "", err
	}
	if err := c.Commit(turn, reply); err != nil {
		return "", err
	}
	return reply, nil
}

// Persist saves the conversation. An existing session is updated in place
// unless a summary is requested; a failed update falls back to creating a
// new session.
func (c *Controller) Persist(ctx context.Context, generateSummary bool) error {
	userID, ok := c.identity.Identity()
	if !ok {
		return nil
	}

	c.mu.Lock()
	msgs := models.CloneMessages(c.messages)
	sessionID, hasSession := c.sessionID, c.hasSession
	c.mu.Unlock()

	if len(msgs) == 0 {
		return nil
	}

	if hasSession && !generateSummary {
		err := c.backend.UpdateSession(ctx, sessionID, msgs)
		if err == nil {
			c.logger.Debug("session updated", zap.Int64("session_id", sessionID))
			return nil
		}
		c.logger.Warn("session update failed, saving as new session",
			zap.Int64("session_id", sessionID),
			zap.Error(err))
	}

	newID, err := c.backend.SaveSession(ctx, userID, msgs, generateSummary)
	if err != nil {
		c.logger.Warn("session save failed", zap.Error(err))
		return err
	}

	c.mu.Lock()
	c.sessionID, c.hasSession = newID, true
	c.mu.Unlock()

	c.logger.Debug("session saved",
		zap.Int64("session_id", newID),
		zap.Bool("summary", generateSummary))
	return nil
}

// PersistBestEffort hands a draft save to the DraftSender and returns at once
func (c *Controller) PersistBestEffort() {
	userID, ok := c.identity.Identity()
	if !ok {
		return
	}

	c.mu.Lock()
	msgs := models.CloneMessages(c.messages)
	c.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	c.drafts.Send(userID, msgs)
}

// FetchActiveSession asks the backend for the user's open session.
// Failures are logged and reported as no session.
func (c *Controller) FetchActiveSession(ctx context.Context) *api.ActiveSession {
	userID, ok := c.identity.Identity()
	if !ok {
		return nil
	}

	active, err := c.backend.ActiveSession(ctx, userID)
	if err != nil {
		c.logger.Warn("failed to load active session",
			zap.Stringer("user_id", userID),
			zap.Error(err))
		return nil
	}
	return active
}

// Adopt replaces the history with an active session that has messages.
// It reports whether anything was adopted.
func (c *Controller) Adopt(active *api.ActiveSession) bool {
	if active == nil || len(active.Messages) == 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = models.CloneMessages(active.Messages)
	c.sessionID, c.hasSession = active.SessionID, true

	c.logger.Info("restored active session",
		zap.Int64("session_id", active.SessionID),
		zap.Int("messages", len(active.Messages)))
	return true
}

// LoadActiveSession fetches and adopts the user's open session
func (c *Controller) LoadActiveSession(ctx context.Context) bool {
	return c.Adopt(c.FetchActiveSession(ctx))
}

// Activate prepares the controller for a newly authenticated identity:
// the previous conversation is dropped before the new one is loaded.
func (c *Controller) Activate(ctx context.Context) bool {
	c.Reset()
	return c.LoadActiveSession(ctx)
}

// Clear discards the history. The backend session and its id are kept.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

// Reset discards the history, the session id, and any in-flight turn
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.sessionID, c.hasSession = 0, false
	c.inflight = nil
}
