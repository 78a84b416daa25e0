// Package session owns the authenticated identity and the login/register form mode.
package session

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/diogo/chatweb/internal/api"
	apierrors "github.com/diogo/chatweb/internal/errors"
	"github.com/diogo/chatweb/internal/models"
)

// Mode selects which authentication form is shown
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// IdentityStore is durable key/value storage; config.LocalStorage satisfies it
type IdentityStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Releaser frees a held capture resource
type Releaser interface {
	Release()
}

// Manager tracks who is logged in
type Manager struct {
	backend api.Backend
	store   IdentityStore
	logger  *zap.Logger

	mu     sync.RWMutex
	userID models.UserID
	authed bool
	mode   Mode
	mic    Releaser
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMicrophone registers the resource released on logout
func WithMicrophone(mic Releaser) Option {
	return func(m *Manager) {
		m.mic = mic
	}
}

// NewManager creates a Manager backed by the given store
func NewManager(backend api.Backend, store IdentityStore, opts ...Option) *Manager {
	m := &Manager{
		backend: backend,
		store:   store,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ResolveIdentity reads the persisted identity. A stored id counts as
// authenticated without asking the backend.
func (m *Manager) ResolveIdentity() (models.UserID, bool) {
	raw, ok, err := m.store.Get(models.IdentityKey)
	if err != nil {
		m.logger.Warn("failed to read stored identity", zap.Error(err))
		return m.setAnonymous()
	}
	if !ok || raw == "" {
		return m.setAnonymous()
	}

	id, err := models.ParseUserID(raw)
	if err != nil {
		m.logger.Warn("ignoring malformed stored identity", zap.String("value", raw))
		return m.setAnonymous()
	}

	m.mu.Lock()
	m.userID, m.authed = id, true
	m.mu.Unlock()
	return id, true
}

func (m *Manager) setAnonymous() (models.UserID, bool) {
	m.mu.Lock()
	m.userID, m.authed = 0, false
	m.mu.Unlock()
	return 0, false
}

// Identity returns the current user id, if any
func (m *Manager) Identity() (models.UserID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userID, m.authed
}

// Login authenticates and stores the returned identity
func (m *Manager) Login(ctx context.Context, email, password string) (models.UserID, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return 0, apierrors.NewValidationError("email", "Please fill in all fields")
	}

	id, err := m.backend.Login(ctx, email, password)
	if err != nil {
		return 0, err
	}
	if err := m.adopt(id); err != nil {
		return 0, err
	}
	m.logger.Info("logged in", zap.Stringer("user_id", id))
	return id, nil
}

// Register creates an account and stores the returned identity
func (m *Manager) Register(ctx context.Context, name, email, password string) (models.UserID, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return 0, apierrors.NewValidationError("email", "Please fill in all fields")
	}
	if name == "" {
		return 0, apierrors.NewValidationError("name", "Please enter your name")
	}

	id, err := m.backend.Register(ctx, name, email, password)
	if err != nil {
		return 0, err
	}
	if err := m.adopt(id); err != nil {
		return 0, err
	}
	m.logger.Info("registered", zap.Stringer("user_id", id))
	return id, nil
}

func (m *Manager) adopt(id models.UserID) error {
	if err := m.store.Set(models.IdentityKey, id.String()); err != nil {
		return err
	}
	m.mu.Lock()
	m.userID, m.authed = id, true
	m.mu.Unlock()
	return nil
}

// Logout forgets the identity and releases the microphone. If the stored
// identity cannot be removed nothing changes and the error is returned.
func (m *Manager) Logout() error {
	if err := m.store.Remove(models.IdentityKey); err != nil {
		return err
	}

	m.mu.Lock()
	prev := m.userID
	m.userID, m.authed = 0, false
	m.mode = ModeLogin
	mic := m.mic
	m.mu.Unlock()

	if mic != nil {
		mic.Release()
	}
	m.logger.Info("logged out", zap.Stringer("user_id", prev))
	return nil
}

// Mode returns the current form mode
func (m *Manager) Mode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// ToggleMode switches between login and registration and returns the new mode
func (m *Manager) ToggleMode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode == ModeLogin {
		m.mode = ModeRegister
	} else {
		m.mode = ModeLogin
	}
	return m.mode
}
