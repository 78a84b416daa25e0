package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	failColor    = color.New(color.FgRed)
	labelColor   = color.New(color.Bold)
	dimColor     = color.New(color.Faint)
)

func printSuccess(w io.Writer, format string, args ...any) {
	successColor.Fprintf(w, "✓ "+format+"\n", args...)
}

func printWarning(w io.Writer, format string, args ...any) {
	warnColor.Fprintf(w, "⚠ "+format+"\n", args...)
}

// printField prints one "label: value" row of a status listing
func printField(w io.Writer, label string, value string) {
	labelColor.Fprintf(w, "%-10s", label+":")
	fmt.Fprintf(w, " %s\n", value)
}

// truncate shortens s to n runes, adding an ellipsis when cut
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
