package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/chatweb/internal/api"
	"github.com/diogo/chatweb/internal/models"
)

func selectorWith(t *testing.T, lister *api.MockClient) SessionSelectorModel {
	t.Helper()
	m := NewSessionSelectorModel(context.Background(), lister, 7)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(SessionSelectorModel)
	next, _ = m.Update(m.Init()())
	return next.(SessionSelectorModel)
}

func selectorKey(t *testing.T, m SessionSelectorModel, msg tea.KeyMsg) (SessionSelectorModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(SessionSelectorModel)
	require.True(t, ok)
	return out, cmd
}

func TestSessionSelector_NavigateAndSelect(t *testing.T) {
	now := time.Now()
	lister := &api.MockClient{SessionList: []models.SessionInfo{
		{ID: 3, UpdatedAt: now.Add(-time.Minute), Summary: map[string]any{"summary": "Go generics"}},
		{ID: 2, UpdatedAt: now.Add(-2 * time.Hour)},
		{ID: 1, UpdatedAt: now.Add(-48 * time.Hour)},
	}}
	m := selectorWith(t, lister)

	view := m.View()
	assert.Contains(t, view, "Go generics")
	assert.Contains(t, view, "Session 2 (draft)")

	m, _ = selectorKey(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 2, m.cursor, "wraps to the last entry")
	m, _ = selectorKey(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.cursor)
	m, _ = selectorKey(t, m, tea.KeyMsg{Type: tea.KeyDown})

	m, cmd := selectorKey(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	info, ok := m.Result()
	assert.True(t, ok)
	assert.Equal(t, int64(2), info.ID)
}

func TestSessionSelector_CancelAndEmpty(t *testing.T) {
	m := selectorWith(t, &api.MockClient{})
	assert.Contains(t, m.View(), "No saved sessions")

	m, _ = selectorKey(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	_, ok := m.Result()
	assert.False(t, ok)

	m, cmd := selectorKey(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	_, ok = m.Result()
	assert.False(t, ok)
}

func TestSessionSelector_ListError(t *testing.T) {
	m := selectorWith(t, &api.MockClient{ListErr: errors.New("boom")})
	assert.Contains(t, m.View(), "boom")
}
