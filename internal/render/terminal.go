package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	boldStyle = lipgloss.NewStyle().Bold(true)
	codeStyle = lipgloss.NewStyle().PaddingLeft(2)
)

// Terminal renders content for an ANSI terminal. Bold spans use lipgloss;
// code blocks go through glamour for highlighting. If highlighting fails the
// code is shown plain.
func Terminal(content string, opts Options) string {
	if opts.Width <= 0 {
		opts.Width = DefaultOptions().Width
	}

	var parts []string
	for _, seg := range Parse(content) {
		if seg.Kind == KindCode {
			parts = append(parts, renderCode(seg.Content, opts))
			continue
		}

		var b strings.Builder
		for _, span := range Spans(seg.Content) {
			text := Sanitize(span.Text)
			if span.Bold {
				b.WriteString(boldStyle.Render(text))
			} else {
				b.WriteString(text)
			}
		}
		text := strings.Trim(b.String(), "\n")
		if text != "" {
			parts = append(parts, lipgloss.NewStyle().Width(opts.Width).Render(text))
		}
	}
	return strings.Join(parts, "\n")
}

// Plain renders content without styling: fences are dropped and bold
// markers removed. Used where escape codes are unwanted. Like Terminal, it
// never passes control sequences from content through.
func Plain(content string) string {
	var parts []string
	for _, seg := range Parse(content) {
		if seg.Kind == KindCode {
			_, body := SplitLanguage(strings.TrimSpace(seg.Content))
			parts = append(parts, strings.TrimSpace(Sanitize(body)))
			continue
		}
		var b strings.Builder
		for _, span := range Spans(seg.Content) {
			b.WriteString(Sanitize(span.Text))
		}
		if text := strings.Trim(b.String(), "\n"); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

func renderCode(code string, opts Options) string {
	lang, body := SplitLanguage(strings.TrimSpace(code))
	lang = Sanitize(lang)
	body = strings.TrimSpace(Sanitize(body))

	if !opts.Highlight {
		return codeStyle.Render(body)
	}

	renderer, err := globalPool.get(opts)
	if err != nil {
		return codeStyle.Render(body)
	}
	defer globalPool.put(opts, renderer)

	out, err := renderer.Render(fence + lang + "\n" + body + "\n" + fence + "\n")
	if err != nil {
		return codeStyle.Render(body)
	}
	return strings.Trim(out, "\n")
}
