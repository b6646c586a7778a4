package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the key bindings of the viewer.
type KeyMap struct {
	Quit          key.Binding
	Filter        key.Binding
	Search        key.Binding
	Blur          key.Binding
	CycleField    key.Binding
	RowNumbers    key.Binding
	Sparklines    key.Binding
	FilterCase    key.Binding
	HighlightCase key.Binding
	Clear         key.Binding
	NextMatch     key.Binding
	PrevMatch     key.Binding
	Drill         key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Filter:        key.NewBinding(key.WithKeys("/", "f"), key.WithHelp("/", "filter")),
		Search:        key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "highlight")),
		Blur:          key.NewBinding(key.WithKeys("esc", "enter"), key.WithHelp("esc", "done")),
		CycleField:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "filter field")),
		RowNumbers:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "row numbers")),
		Sparklines:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sparklines")),
		FilterCase:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "filter case")),
		HighlightCase: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "highlight case")),
		Clear:         key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
		NextMatch:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next match")),
		PrevMatch:     key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "prev match")),
		Drill:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drill")),
	}
}

// ShortHelp lists the bindings shown in the status line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Filter, k.Search, k.NextMatch, k.CycleField, k.Clear, k.Quit}
}
