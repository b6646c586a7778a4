// Package output renders command results for terminals, scripts and agents.
//
// The effective format adapts to the environment: styled text on a TTY,
// Markdown when piped. --output overrides the detection.
package output

import "strings"

// OutputMode selects how results are written.
type OutputMode string

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
	ModeHTML     OutputMode = "html"
	ModeTable    OutputMode = "table"
)

// Modes lists every accepted mode, in help order.
var Modes = []OutputMode{ModeAuto, ModeText, ModeMarkdown, ModeJSON, ModeHTML, ModeTable}

// Mode parses a mode name. Unknown names fall back to ModeAuto.
func Mode(s string) OutputMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt":
		return ModeText
	case "markdown", "md":
		return ModeMarkdown
	case "json":
		return ModeJSON
	case "html":
		return ModeHTML
	case "table":
		return ModeTable
	default:
		return ModeAuto
	}
}

// Valid reports whether s names a known mode. The empty string is valid.
func Valid(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(ModeAuto)) {
		return true
	}
	return Mode(s) != ModeAuto
}

// Names returns the mode names for completion and help.
func Names() []string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return names
}
