// Package history exports and searches conversations stored on the backend.
package history

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/diogo/chatweb/internal/models"
	"github.com/diogo/chatweb/internal/render"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
	ExportFormatHTML     ExportFormat = "html"
)

// ParseExportFormat maps a flag value or file extension to a format
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "md", "markdown":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	case "html", "htm":
		return ExportFormatHTML, nil
	}
	return "", fmt.Errorf("unknown export format %q (valid: markdown, json, html)", s)
}

const timeLayout = "2006-01-02 15:04:05"

// Title returns the display title of a session
func Title(info models.SessionInfo) string {
	if text := info.SummaryText(); text != "" {
		return text
	}
	return fmt.Sprintf("Session %d (draft)", info.ID)
}

// Export renders a transcript in the given format
func Export(tr *models.Transcript, format ExportFormat) ([]byte, error) {
	switch format {
	case ExportFormatMarkdown:
		return []byte(ExportMarkdown(tr)), nil
	case ExportFormatJSON:
		return ExportJSON(tr)
	case ExportFormatHTML:
		return []byte(ExportHTML(tr)), nil
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

// ExportMarkdown exports a transcript to Markdown. Message text already uses
// markdown conventions and is written as is.
func ExportMarkdown(tr *models.Transcript) string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(Title(tr.SessionInfo))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "**Session:** %d\n", tr.ID)
	if !tr.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "**Created:** %s\n", tr.CreatedAt.Format(timeLayout))
	}
	if !tr.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "**Updated:** %s\n", tr.UpdatedAt.Format(timeLayout))
	}
	fmt.Fprintf(&sb, "**Messages:** %d\n\n---\n\n", len(tr.Messages))

	for i, msg := range tr.Messages {
		role := "User"
		if msg.Role == models.RoleAssistant {
			role = "Assistant"
		}
		sb.WriteString("## ")
		sb.WriteString(role)
		sb.WriteString("\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if i < len(tr.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

// ExportJSON exports a transcript to indented JSON
func ExportJSON(tr *models.Transcript) ([]byte, error) {
	type exportConversation struct {
		ID        int64            `json:"id"`
		Title     string           `json:"title"`
		CreatedAt time.Time        `json:"created_at"`
		UpdatedAt time.Time        `json:"updated_at"`
		Summary   map[string]any   `json:"summary,omitempty"`
		Messages  []models.Message `json:"messages"`
	}

	msgs := tr.Messages
	if msgs == nil {
		msgs = []models.Message{}
	}

	return json.MarshalIndent(exportConversation{
		ID:        tr.ID,
		Title:     Title(tr.SessionInfo),
		CreatedAt: tr.CreatedAt,
		UpdatedAt: tr.UpdatedAt,
		Summary:   tr.Summary,
		Messages:  msgs,
	}, "", "  ")
}

// exportPolicy admits only the markup the exporter and renderer produce
func exportPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("article", "header", "h1", "h2", "p", "strong", "pre", "code", "div", "span", "time")
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("article", "div", "span")
	p.AllowAttrs("datetime").OnElements("time")
	return p
}

// ExportHTML exports a transcript as a standalone HTML page. Message bodies go
// through render.HTML and the result is sanitized before it is wrapped.
func ExportHTML(tr *models.Transcript) string {
	var body strings.Builder

	title := Title(tr.SessionInfo)
	body.WriteString("<header><h1>")
	body.WriteString(html.EscapeString(title))
	body.WriteString("</h1>")
	if !tr.UpdatedAt.IsZero() {
		fmt.Fprintf(&body, `<p><time datetime="%s">%s</time></p>`,
			tr.UpdatedAt.Format(time.RFC3339), tr.UpdatedAt.Format(timeLayout))
	}
	body.WriteString("</header>\n")

	for _, msg := range tr.Messages {
		fmt.Fprintf(&body, `<article class="message %s"><span class="role">%s</span><div class="text">%s</div></article>`+"\n",
			html.EscapeString(string(msg.Role)),
			html.EscapeString(msg.Role.Label()),
			render.HTML(msg.Content))
	}

	safe := exportPolicy().Sanitize(body.String())

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	page.WriteString(html.EscapeString(title))
	page.WriteString("</title>\n<style>\n")
	page.WriteString(pageStyle)
	page.WriteString("</style>\n</head>\n<body>\n")
	page.WriteString(safe)
	page.WriteString("</body>\n</html>\n")
	return page.String()
}

const pageStyle = `body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
.message { margin: 1rem 0; padding: 0.75rem; border-radius: 6px; }
.message.user { background: #eef2ff; }
.message.assistant { background: #f4f4f5; }
.role { font-weight: bold; display: block; margin-bottom: 0.25rem; }
.text { white-space: pre-wrap; }
pre { background: #1e1e2e; color: #cdd6f4; padding: 0.75rem; overflow-x: auto; }
`
