package render

import (
	"html"
	"strings"
)

// HTML renders content as safe markup. Every piece of message text is
// escaped; the only tags produced are <strong>, <pre> and <code>.
func HTML(content string) string {
	var b strings.Builder
	for _, seg := range Parse(content) {
		if seg.Kind == KindCode {
			b.WriteString("<pre><code>")
			b.WriteString(html.EscapeString(strings.TrimSpace(seg.Content)))
			b.WriteString("</code></pre>")
			continue
		}
		for _, span := range Spans(seg.Content) {
			if span.Bold {
				b.WriteString("<strong>")
				b.WriteString(html.EscapeString(span.Text))
				b.WriteString("</strong>")
				continue
			}
			b.WriteString(html.EscapeString(span.Text))
		}
	}
	return b.String()
}
