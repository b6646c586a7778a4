package tui

import "github.com/charmbracelet/lipgloss"

// Styles are the terminal styles of each tree class.
type Styles struct {
	Header      lipgloss.Style
	RowNumber   lipgloss.Style
	Separator   lipgloss.Style
	Dimension   lipgloss.Style
	Measure     lipgloss.Style
	Drill       lipgloss.Style
	Highlight   lipgloss.Style
	Sparkline   lipgloss.Style
	Placeholder lipgloss.Style
	Bold        lipgloss.Style
	Link        lipgloss.Style

	Track  lipgloss.Style
	Thumb  lipgloss.Style
	Marker lipgloss.Style

	Status lipgloss.Style
	Prompt lipgloss.Style
	Muted  lipgloss.Style
}

// DefaultStyles returns the default palette.
func DefaultStyles() Styles {
	return Styles{
		Header:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		RowNumber:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Separator:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Dimension:   lipgloss.NewStyle(),
		Measure:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Drill:       lipgloss.NewStyle().Underline(true),
		Highlight:   lipgloss.NewStyle().Background(lipgloss.Color("11")).Foreground(lipgloss.Color("0")),
		Sparkline:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Placeholder: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8")),
		Bold:        lipgloss.NewStyle().Bold(true),
		Link:        lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("12")),

		Track:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Thumb:  lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		Marker: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),

		Status: lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		Prompt: lipgloss.NewStyle().Bold(true),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}
