package commands

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/chatweb/internal/errors"
	"github.com/diogo/chatweb/internal/models"
)

func withSessions(t *testing.T, h *harness) {
	t.Helper()
	h.loggedIn(t, 7)

	now := time.Now()
	newest := models.SessionInfo{ID: 3, UpdatedAt: now.Add(-time.Minute), Summary: map[string]any{"summary": "Go generics"}}
	older := models.SessionInfo{ID: 2, UpdatedAt: now.Add(-3 * time.Hour)}
	h.backend.SessionList = []models.SessionInfo{newest, older}
	h.backend.Transcripts = map[int64]*models.Transcript{
		3: {SessionInfo: newest, Messages: []models.Message{
			{Role: models.RoleUser, Content: "what are type parameters?"},
			{Role: models.RoleAssistant, Content: "Type parameters make functions generic."},
		}},
		2: {SessionInfo: older, Messages: []models.Message{
			{Role: models.RoleUser, Content: "how do channels work?"},
		}},
	}
}

func TestSessionsList(t *testing.T) {
	h := newHarness(t)
	withSessions(t, h)

	require.NoError(t, h.run(t, "sessions", "list"))

	out := h.out.String()
	assert.Contains(t, out, "#3")
	assert.Contains(t, out, "Go generics")
	assert.Contains(t, out, "Session 2 (draft)")
	assert.Contains(t, out, "3h ago")
}

func TestSessionsList_Empty(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(t, 7)

	require.NoError(t, h.run(t, "sessions", "list"))
	assert.Equal(t, "No sessions found.\n", h.out.String())
}

func TestSessionsList_BackendError(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(t, 7)
	h.backend.ListErr = errors.New("boom")

	assert.EqualError(t, h.run(t, "history", "list"), "boom")
}

func TestSessionsShow(t *testing.T) {
	tests := []struct {
		ref    string
		wantID string
		want   string
	}{
		{ref: "@last", wantID: "#3", want: "Type parameters make functions generic."},
		{ref: "2", wantID: "#2", want: "how do channels work?"},
		{ref: "#2", wantID: "#2", want: "how do channels work?"},
		{ref: "generics", wantID: "#3", want: "what are type parameters?"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			h := newHarness(t)
			withSessions(t, h)

			require.NoError(t, h.run(t, "sessions", "show", tt.ref))
			out := h.out.String()
			assert.Contains(t, out, tt.wantID)
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, "You:")
		})
	}
}

func TestSessionsShow_UnknownRef(t *testing.T) {
	h := newHarness(t)
	withSessions(t, h)

	err := h.run(t, "sessions", "show", "#99")
	assert.EqualError(t, err, "session not found: #99")
}

func TestSessionsShow_Picker(t *testing.T) {
	t.Run("requires a ref without a terminal", func(t *testing.T) {
		h := newHarness(t)
		withSessions(t, h)

		err := h.run(t, "sessions", "show")
		require.Error(t, err)
		assert.True(t, apierrors.IsValidationError(err))
		assert.Zero(t, h.ui.selectCalls)
	})

	t.Run("picked session", func(t *testing.T) {
		h := newHarness(t)
		withSessions(t, h)
		h.deps.Interactive = func() bool { return true }
		h.ui.selected, h.ui.selectOK = models.SessionInfo{ID: 2}, true

		require.NoError(t, h.run(t, "sessions", "show"))
		assert.Equal(t, 1, h.ui.selectCalls)
		assert.Contains(t, h.out.String(), "how do channels work?")
	})

	t.Run("cancelled", func(t *testing.T) {
		h := newHarness(t)
		withSessions(t, h)
		h.deps.Interactive = func() bool { return true }

		require.NoError(t, h.run(t, "sessions", "show"))
		assert.Empty(t, h.out.String())
	})
}

func TestSessionsExport(t *testing.T) {
	t.Run("json to stdout", func(t *testing.T) {
		h := newHarness(t)
		withSessions(t, h)

		require.NoError(t, h.run(t, "sessions", "export", "@last", "-f", "json"))
		out := h.out.String()
		assert.Equal(t, int64(3), gjson.Get(out, "id").Int())
		assert.Equal(t, "Go generics", gjson.Get(out, "title").String())
		assert.Equal(t, int64(2), gjson.Get(out, "messages.#").Int())
	})

	t.Run("format from file extension", func(t *testing.T) {
		h := newHarness(t)
		withSessions(t, h)
		path := filepath.Join(t.TempDir(), "session.html")

		require.NoError(t, h.run(t, "sessions", "export", "#2", "-o", path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "<!DOCTYPE html>")
		assert.Contains(t, string(data), "how do channels work?")
		assert.Contains(t, h.errOut.String(), "exported to")
	})

	t.Run("markdown by default", func(t *testing.T) {
		h := newHarness(t)
		withSessions(t, h)

		require.NoError(t, h.run(t, "sessions", "export", "1"))
		assert.Contains(t, h.out.String(), "# Go generics")
	})

	t.Run("unknown format", func(t *testing.T) {
		h := newHarness(t)
		withSessions(t, h)

		err := h.run(t, "sessions", "export", "1", "-f", "pdf")
		require.Error(t, err)
		assert.True(t, apierrors.IsValidationError(err))
	})
}

func TestSessionsSearch(t *testing.T) {
	t.Run("summary only", func(t *testing.T) {
		h := newHarness(t)
		withSessions(t, h)

		require.NoError(t, h.run(t, "sessions", "search", "GENERICS"))
		assert.Contains(t, h.out.String(), "#3 Go generics")
	})

	t.Run("content requires flag", func(t *testing.T) {
		h := newHarness(t)
		withSessions(t, h)

		require.NoError(t, h.run(t, "sessions", "search", "channels"))
		assert.Contains(t, h.out.String(), `No sessions matching "channels"`)

		h.out.Reset()
		require.NoError(t, h.run(t, "sessions", "search", "--content", "channels"))
		assert.Contains(t, h.out.String(), "#2")
		assert.Contains(t, h.out.String(), "how do channels work?")
	})
}

func TestSessionsShow_ContentIsInert(t *testing.T) {
	h := newHarness(t)
	h.loggedIn(t, 7)
	info := models.SessionInfo{ID: 5, Summary: map[string]any{"summary": "\x1b[8mhidden title"}}
	h.backend.SessionList = []models.SessionInfo{info}
	h.backend.Transcripts = map[int64]*models.Transcript{
		5: {SessionInfo: info, Messages: []models.Message{
			{Role: models.RoleAssistant, Content: "\x1b]52;c;ZXZpbA==\x07answer\x1b[2J"},
		}},
	}

	require.NoError(t, h.run(t, "sessions", "show", "#5"))
	out := h.out.String()
	assert.NotContains(t, out, "\x1b")
	assert.Contains(t, out, "hidden title")
	assert.Contains(t, out, "  answer\n")
}
