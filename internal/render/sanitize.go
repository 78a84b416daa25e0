package render

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize makes backend text inert for a terminal. Escape sequences (CSI,
// OSC, DCS and friends) are removed whole, then any remaining C0/C1 control
// or DEL is dropped. Newlines and tabs survive; CRLF becomes LF.
func Sanitize(s string) string {
	s = ansi.Strip(strings.ReplaceAll(s, "\r\n", "\n"))
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
