// Package render turns chat message text into display output.
//
// Messages use a small markup: ``` fences delimit code and **...** marks
// bold text. Nothing else is interpreted.
package render

import "strings"

const (
	fence = "```"
	bold  = "**"
)

// Kind distinguishes prose from code
type Kind int

const (
	KindText Kind = iota
	KindCode
)

// Segment is a run of message text of a single kind
type Segment struct {
	Kind    Kind
	Content string
}

// Span is a piece of a text segment, optionally emphasized
type Span struct {
	Bold bool
	Text string
}

// Parse splits content on paired fences. An unterminated fence makes the
// rest of the content code. Code content is returned untrimmed; empty text
// between fences is dropped.
func Parse(content string) []Segment {
	var segments []Segment
	rest := content

	for {
		start := strings.Index(rest, fence)
		if start == -1 {
			if rest != "" {
				segments = append(segments, Segment{Kind: KindText, Content: rest})
			}
			return segments
		}

		if start > 0 {
			segments = append(segments, Segment{Kind: KindText, Content: rest[:start]})
		}

		body := rest[start+len(fence):]
		end := strings.Index(body, fence)
		if end == -1 {
			return append(segments, Segment{Kind: KindCode, Content: body})
		}

		segments = append(segments, Segment{Kind: KindCode, Content: body[:end]})
		rest = body[end+len(fence):]
	}
}

// Spans scans text left to right for **...** pairs. A ** with no closing
// partner is kept as literal text.
func Spans(text string) []Span {
	var (
		spans []Span
		plain strings.Builder
	)

	flush := func() {
		if plain.Len() > 0 {
			spans = append(spans, Span{Text: plain.String()})
			plain.Reset()
		}
	}

	i := 0
	for i < len(text) {
		if strings.HasPrefix(text[i:], bold) {
			if end := strings.Index(text[i+len(bold):], bold); end != -1 {
				flush()
				inner := text[i+len(bold) : i+len(bold)+end]
				spans = append(spans, Span{Bold: true, Text: inner})
				i += len(bold) + end + len(bold)
				continue
			}
			// Unmatched: emit one asterisk and rescan from the next byte
			plain.WriteByte(text[i])
			i++
			continue
		}
		plain.WriteByte(text[i])
		i++
	}
	flush()
	return spans
}

// SplitLanguage separates a leading language tag ("go\nfunc main()") from
// a code block. Blocks without a tag return an empty language.
func SplitLanguage(code string) (lang, body string) {
	code = strings.TrimLeft(code, "\r\n")
	line, rest, found := strings.Cut(code, "\n")
	line = strings.TrimSpace(line)
	if !found || line == "" || strings.ContainsAny(line, " \t{}()[];=<>\"'") {
		return "", code
	}
	return line, rest
}
