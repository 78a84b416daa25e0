package commands

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/chatweb/internal/api"
	apierrors "github.com/diogo/chatweb/internal/errors"
	"github.com/diogo/chatweb/internal/models"
)

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		stdin    string
		loginErr error
		wantID   string
		wantErr  string
	}{
		{
			name:   "email flag",
			args:   []string{"login", "-e", "ana@example.com"},
			wantID: "7",
		},
		{
			name:   "email prompt",
			args:   []string{"login"},
			stdin:  "ana@example.com\n",
			wantID: "7",
		},
		{
			name:    "missing email",
			args:    []string{"login"},
			stdin:   "\n",
			wantErr: "Please fill in all fields",
		},
		{
			name:     "rejected by backend",
			args:     []string{"login", "-e", "ana@example.com"},
			loginErr: apierrors.NewAuthErrorWithStatus(401, "/login", "Invalid credentials"),
			wantErr:  "Invalid credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.deps.In = strings.NewReader(tt.stdin)
			h.backend.LoginID = 7
			h.backend.LoginErr = tt.loginErr

			err := h.run(t, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, apierrors.UserMessage(err))
				_, ok := h.identity(t)
				assert.False(t, ok)
				return
			}

			require.NoError(t, err)
			id, ok := h.identity(t)
			assert.True(t, ok)
			assert.Equal(t, tt.wantID, id)
			assert.Contains(t, h.out.String(), "Logged in as user 7")
		})
	}
}

func TestRegister_PromptsForEverything(t *testing.T) {
	h := newHarness(t)
	h.deps.ReadPassword = nil
	h.deps.In = strings.NewReader("Ana\nana@example.com\npw\n")
	h.backend.RegisterID = 12

	require.NoError(t, h.run(t, "register"))

	assert.Equal(t, 1, h.backend.RegisterCalls)
	id, _ := h.identity(t)
	assert.Equal(t, "12", id)
	assert.Contains(t, h.errOut.String(), "Name: ")
	assert.Contains(t, h.errOut.String(), "Password: ")
}

func TestRegister_RequiresName(t *testing.T) {
	h := newHarness(t)
	err := h.run(t, "register", "-n", " ", "-e", "ana@example.com")
	require.Error(t, err)
	assert.True(t, apierrors.IsValidationError(err))
	assert.Zero(t, h.backend.RegisterCalls)
}

func TestLogout_SavesWithSummary(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(t, 7)
	h.backend.Active = &api.ActiveSession{SessionID: 3, Messages: []models.Message{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello"},
	}}

	require.NoError(t, h.run(t, "logout"))

	require.Equal(t, 1, h.backend.SaveCount())
	assert.True(t, h.backend.Saves[0].GenerateSummary)
	assert.Len(t, h.backend.Saves[0].Messages, 2)
	assert.Zero(t, h.backend.UpdateCount(), "a summary always creates a session")

	_, ok := h.identity(t)
	assert.False(t, ok)
	assert.Contains(t, h.out.String(), "Logged out")
}

func TestLogout_ProceedsWhenSaveFails(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(t, 7)
	h.backend.Active = &api.ActiveSession{SessionID: 3, Messages: []models.Message{
		{Role: models.RoleUser, Content: "hi"},
	}}
	h.backend.SaveErr = errors.New("backend down")

	require.NoError(t, h.run(t, "logout"))

	_, ok := h.identity(t)
	assert.False(t, ok)
	assert.Contains(t, h.errOut.String(), "Conversation not saved")
}

func TestLogout_NoConversation(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(t, 7)

	require.NoError(t, h.run(t, "logout"))
	assert.Zero(t, h.backend.SaveCount())
	_, ok := h.identity(t)
	assert.False(t, ok)
}

func TestLogout_NotLoggedIn(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "logout"))
	assert.Contains(t, h.out.String(), "Not logged in")
	assert.Zero(t, h.backend.ActiveCalls)
}

func TestWhoami(t *testing.T) {
	h := newHarness(t)
	err := h.run(t, "whoami")
	require.Error(t, err)
	assert.True(t, apierrors.IsAuthError(err))

	h.loggedIn(t, 42)
	require.NoError(t, h.run(t, "whoami"))
	assert.Contains(t, h.out.String(), "42")
	assert.Contains(t, h.out.String(), h.deps.Config.BackendURL)
}
