package history

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/chatweb/internal/models"
)

func transcripts() []*models.Transcript {
	return []*models.Transcript{
		{
			SessionInfo: models.SessionInfo{ID: 1, Summary: map[string]any{"summary": "Planning a trip to Lisbon"}},
			Messages:    []models.Message{{Role: models.RoleUser, Content: "flights to lisbon"}},
		},
		{
			SessionInfo: models.SessionInfo{ID: 2},
			Messages: []models.Message{
				{Role: models.RoleUser, Content: "hello"},
				{Role: models.RoleAssistant, Content: "Lisbon is lovely in spring"},
			},
		},
	}
}

func TestSearch_TitleAndContent(t *testing.T) {
	results := Search(transcripts(), "LISBON", true)
	require.Len(t, results, 2)

	assert.Equal(t, "title", results[0].MatchField)
	assert.Equal(t, -1, results[0].MatchIndex)

	assert.Equal(t, "content", results[1].MatchField)
	assert.Equal(t, 1, results[1].MatchIndex)
	assert.Equal(t, "Lisbon is lovely in spring", results[1].MatchSnippet)
}

func TestSearch_TitleOnly(t *testing.T) {
	results := Search(transcripts(), "lisbon", false)
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].Transcript.ID)

	assert.Empty(t, Search(transcripts(), "nothing", true))
}

func TestExtractSnippet(t *testing.T) {
	long := strings.Repeat("a", 100) + "needle" + strings.Repeat("b", 100)
	snippet := extractSnippet(long, "needle", 20)
	assert.Contains(t, snippet, "needle")
	assert.True(t, strings.HasPrefix(snippet, "..."))
	assert.True(t, strings.HasSuffix(snippet, "..."))

	assert.Equal(t, "needle here...", extractSnippet("needle here and more text", "needle", 11))
	assert.Equal(t, "...text needle", extractSnippet("some more text needle", "needle", 11))
	assert.Equal(t, "short", extractSnippet("short", "missing", 10))
}

func TestFormatRelative(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5 min ago"},
		{3 * time.Hour, "3h ago"},
		{30 * time.Hour, "yesterday"},
		{4 * 24 * time.Hour, "4 days ago"},
		{8 * 24 * time.Hour, "1 week ago"},
		{15 * 24 * time.Hour, "2 weeks ago"},
		{90 * 24 * time.Hour, "2024-03-17"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatRelative(now.Add(-tt.ago), now))
	}
	assert.Equal(t, "unknown", formatRelative(time.Time{}, now))
}
