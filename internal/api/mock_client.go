package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/diogo/chatweb/internal/models"
)

// SaveCall records one SaveSession invocation
type SaveCall struct {
	UserID          models.UserID
	Messages        []models.Message
	GenerateSummary bool
}

// UpdateCall records one UpdateSession invocation
type UpdateCall struct {
	SessionID int64
	Messages  []models.Message
}

// MockClient is a mock implementation of Backend for testing
type MockClient struct {
	mu sync.Mutex

	// Mock return values
	LoginID       models.UserID
	LoginErr      error
	RegisterID    models.UserID
	RegisterErr   error
	ChatReply     string
	ChatErr       error
	SaveID        int64
	SaveErr       error
	UpdateErr     error
	Active        *ActiveSession
	ActiveErr     error
	SessionList   []models.SessionInfo
	ListErr       error
	Transcript    *models.Transcript
	GetSessionErr error
	// Transcripts, when set, answers GetSession by id instead of Transcript
	Transcripts  map[int64]*models.Transcript
	HealthStatus string
	HealthErr    error

	// ChatHook, when set, runs inside Chat before it returns
	ChatHook func()

	// Call recorders
	LoginCalls    int
	RegisterCalls int
	ChatCalls     int
	ActiveCalls   int
	LastChat      []models.Message
	LastChatUser  models.UserID
	Saves         []SaveCall
	Updates       []UpdateCall
}

// Ensure MockClient implements Backend
var _ Backend = (*MockClient)(nil)

func (m *MockClient) Login(ctx context.Context, email, password string) (models.UserID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoginCalls++
	return m.LoginID, m.LoginErr
}

func (m *MockClient) Register(ctx context.Context, name, email, password string) (models.UserID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RegisterCalls++
	return m.RegisterID, m.RegisterErr
}

func (m *MockClient) Chat(ctx context.Context, userID models.UserID, messages []models.Message) (string, error) {
	m.mu.Lock()
	m.ChatCalls++
	m.LastChat = models.CloneMessages(messages)
	m.LastChatUser = userID
	hook := m.ChatHook
	reply, err := m.ChatReply, m.ChatErr
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return reply, err
}

func (m *MockClient) SaveSession(ctx context.Context, userID models.UserID, messages []models.Message, generateSummary bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves = append(m.Saves, SaveCall{
		UserID:          userID,
		Messages:        models.CloneMessages(messages),
		GenerateSummary: generateSummary,
	})
	return m.SaveID, m.SaveErr
}

func (m *MockClient) UpdateSession(ctx context.Context, sessionID int64, messages []models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates = append(m.Updates, UpdateCall{
		SessionID: sessionID,
		Messages:  models.CloneMessages(messages),
	})
	return m.UpdateErr
}

func (m *MockClient) ActiveSession(ctx context.Context, userID models.UserID) (*ActiveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ActiveCalls++
	return m.Active, m.ActiveErr
}

func (m *MockClient) ListSessions(ctx context.Context, userID models.UserID) ([]models.SessionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SessionList, m.ListErr
}

func (m *MockClient) GetSession(ctx context.Context, sessionID int64) (*models.Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetSessionErr != nil {
		return nil, m.GetSessionErr
	}
	if m.Transcripts != nil {
		tr, ok := m.Transcripts[sessionID]
		if !ok {
			return nil, fmt.Errorf("session %d not found", sessionID)
		}
		return tr, nil
	}
	return m.Transcript, nil
}

// Health reports the canned backend status
func (m *MockClient) Health(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.HealthErr != nil {
		return "", m.HealthErr
	}
	return m.HealthStatus, nil
}

// SaveCount returns the number of SaveSession calls so far
func (m *MockClient) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Saves)
}

// UpdateCount returns the number of UpdateSession calls so far
func (m *MockClient) UpdateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Updates)
}
