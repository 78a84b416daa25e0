package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/diogo/chatweb/internal/models"
)

// SearchResult represents a search match in a transcript
type SearchResult struct {
	Transcript   *models.Transcript
	MatchSnippet string // Snippet where the term was found
	MatchField   string // "title" or "content"
	MatchIndex   int    // Message index if MatchField is "content", -1 for title
}

// Search finds query in transcript titles and, optionally, message content.
// At most one result is returned per transcript; a title match wins.
func Search(transcripts []*models.Transcript, query string, searchContent bool) []*SearchResult {
	queryLower := strings.ToLower(query)
	var results []*SearchResult

	for _, tr := range transcripts {
		title := Title(tr.SessionInfo)
		if strings.Contains(strings.ToLower(title), queryLower) {
			results = append(results, &SearchResult{
				Transcript:   tr,
				MatchSnippet: title,
				MatchField:   "title",
				MatchIndex:   -1,
			})
			continue
		}

		if !searchContent {
			continue
		}
		for i, msg := range tr.Messages {
			if strings.Contains(strings.ToLower(msg.Content), queryLower) {
				results = append(results, &SearchResult{
					Transcript:   tr,
					MatchSnippet: extractSnippet(msg.Content, query, 100),
					MatchField:   "content",
					MatchIndex:   i,
				})
				break
			}
		}
	}

	return results
}

// extractSnippet extracts a snippet around the first occurrence of query
func extractSnippet(content, query string, maxLen int) string {
	idx := strings.Index(strings.ToLower(content), strings.ToLower(query))
	if idx == -1 {
		if len(content) > maxLen {
			return content[:maxLen] + "..."
		}
		return content
	}

	half := maxLen / 2
	start := idx - half
	end := idx + len(query) + half

	if start < 0 {
		start = 0
		end = maxLen
	}
	if end > len(content) {
		end = len(content)
		start = end - maxLen
		if start < 0 {
			start = 0
		}
	}

	snippet := content[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet = snippet + "..."
	}
	return snippet
}

// FormatRelativeTime formats t relative to now ("2h ago", "yesterday")
func FormatRelativeTime(t time.Time) string {
	return formatRelative(t, time.Now())
}

func formatRelative(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d min ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 48*time.Hour:
		return "yesterday"
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		return t.Format("2006-01-02")
	}
}
