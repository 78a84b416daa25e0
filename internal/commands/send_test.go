package commands

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/chatweb/internal/api"
	apierrors "github.com/diogo/chatweb/internal/errors"
	"github.com/diogo/chatweb/internal/models"
)

func activeSession() *api.ActiveSession {
	return &api.ActiveSession{SessionID: 3, Messages: []models.Message{
		{Role: models.RoleUser, Content: "earlier question"},
		{Role: models.RoleAssistant, Content: "earlier answer"},
	}}
}

func TestSend_ContinuesActiveSession(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(t, 7)
	h.backend.Active = activeSession()
	h.backend.ChatReply = "Goroutines are cheap threads."

	require.NoError(t, h.run(t, "send", "Explain", "goroutines"))

	assert.Equal(t, "Goroutines are cheap threads.\n", h.out.String())

	require.Len(t, h.backend.LastChat, 3, "history plus the new message")
	assert.Equal(t, "Explain goroutines", h.backend.LastChat[2].Content)
	assert.Equal(t, models.UserID(7), h.backend.LastChatUser)

	require.Equal(t, 1, h.backend.UpdateCount())
	assert.Equal(t, int64(3), h.backend.Updates[0].SessionID)
	assert.Len(t, h.backend.Updates[0].Messages, 4)
	assert.Zero(t, h.backend.SaveCount())
}

func TestSend_NewConversationIsSaved(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(t, 7)
	h.backend.ChatReply = "hi"

	require.NoError(t, h.run(t, "send", "hello"))

	require.Equal(t, 1, h.backend.SaveCount())
	assert.False(t, h.backend.Saves[0].GenerateSummary)
	assert.Len(t, h.backend.Saves[0].Messages, 2)
}

func TestSend_ReadsStdin(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(t, 7)
	h.deps.In = strings.NewReader("  from a pipe \n")
	h.backend.ChatReply = "ok"

	require.NoError(t, h.run(t, "send"))
	require.Len(t, h.backend.LastChat, 1)
	assert.Equal(t, "from a pipe", h.backend.LastChat[0].Content)
}

func TestSend_Errors(t *testing.T) {
	t.Run("empty message", func(t *testing.T) {
		h := newHarness(t)
		h.loggedIn(t, 7)
		h.deps.In = strings.NewReader("   ")

		err := h.run(t, "send")
		require.Error(t, err)
		assert.True(t, apierrors.IsValidationError(err))
		assert.Zero(t, h.backend.ChatCalls)
	})

	t.Run("not logged in", func(t *testing.T) {
		h := newHarness(t)
		err := h.run(t, "send", "hello")
		require.Error(t, err)
		assert.True(t, apierrors.IsAuthError(err))
		assert.Zero(t, h.backend.ChatCalls)
	})

	t.Run("chat failure saves nothing", func(t *testing.T) {
		h := newHarness(t)
		h.loggedIn(t, 7)
		h.backend.ChatErr = apierrors.NewAPIError(500, "/chat", "chat failed").WithDetail("API key is required.")

		err := h.run(t, "send", "hello")
		require.Error(t, err)
		assert.Equal(t, "API key is required.", apierrors.UserMessage(err))
		assert.Zero(t, h.backend.SaveCount())
		assert.Empty(t, h.out.String())
	})

	t.Run("save failure is a warning", func(t *testing.T) {
		h := newHarness(t)
		h.loggedIn(t, 7)
		h.backend.ChatReply = "hi"
		h.backend.SaveErr = errors.New("disk full")

		require.NoError(t, h.run(t, "send", "hello"))
		assert.Equal(t, "hi\n", h.out.String())
		assert.Contains(t, h.errOut.String(), "Conversation not saved")
	})
}

func TestSend_Copy(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(t, 7)
	h.backend.ChatReply = "copy me"

	require.NoError(t, h.run(t, "send", "--copy", "hello"))
	assert.Equal(t, []string{"copy me"}, h.copied)
	assert.Contains(t, h.errOut.String(), "Copied to clipboard")

	h.deps.Copy = func(string) error { return errors.New("no clipboard") }
	require.NoError(t, h.run(t, "send", "-c", "again"))
	assert.Contains(t, h.errOut.String(), "Failed to copy to clipboard")
}

func TestSend_DecoratedOutput(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(t, 7)
	h.deps.Interactive = func() bool { return true }
	h.backend.ChatReply = "plain words"

	require.NoError(t, h.run(t, "send", "hello"))
	out := ansi.Strip(h.out.String())
	assert.Contains(t, out, "✦ AI")
	assert.Contains(t, out, "plain words")
	assert.Contains(t, ansi.Strip(h.errOut.String()), "Done")
}

func TestSend_RawOutputIsInert(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(t, 7)
	h.backend.ChatReply = "\x1b[2Jsafe\x1b]52;c;ZXZpbA==\x07 reply"

	require.NoError(t, h.run(t, "send", "--raw", "hello"))
	assert.Equal(t, "safe reply\n", h.out.String())
	assert.Equal(t, h.backend.ChatReply, h.backend.Saves[0].Messages[1].Content, "stored text is untouched")
}
