package render

// Options configures terminal rendering.
type Options struct {
	// Width is the wrap width for text and code (default: 80)
	Width int

	// Style is the glamour style used for code blocks: "dark", "light",
	// "dracula", "tokyo-night", "notty", "ascii", or a path to a JSON file
	Style string

	// Highlight enables syntax highlighting of code blocks
	Highlight bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Width:     80,
		Style:     "dark",
		Highlight: true,
	}
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns Options with the specified style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// WithHighlight returns Options with code highlighting enabled/disabled.
func (o Options) WithHighlight(enabled bool) Options {
	o.Highlight = enabled
	return o
}

// OptionsForTheme returns the options matching a TUI theme name
func OptionsForTheme(name string, width int) Options {
	opts := DefaultOptions().WithWidth(width)
	if theme, ok := GetTUIThemeByName(name); ok && theme.CodeStyle != "" {
		opts.Style = theme.CodeStyle
	}
	return opts
}
