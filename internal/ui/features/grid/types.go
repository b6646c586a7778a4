// Package grid serves the log-lines view to browsers.
package grid

import (
	"github.com/leapstack-labs/loglines/internal/dom"
	"github.com/leapstack-labs/loglines/internal/highlight"
	"github.com/leapstack-labs/loglines/internal/plugin"
	"github.com/leapstack-labs/loglines/internal/render"
)

// Element ids patched by the handlers.
const (
	GridID    = "ll-grid"
	BodyID    = "ll-body"
	MinimapID = "ll-minimap"
	DrillID   = "ll-drill"
	StatusID  = "ll-status"
)

// LineHeight is the CSS height of one line in pixels.
const LineHeight = 20

// Signals are the datastar signals exchanged with the page.
type Signals struct {
	Filter        string  `json:"filter"`
	Highlight     string  `json:"highlight"`
	FilterField   string  `json:"filterField"`
	FilterCase    bool    `json:"filterCase"`
	HighlightCase bool    `json:"highlightCase"`
	RowNumbers    bool    `json:"rowNumbers"`
	Sparklines    bool    `json:"sparklines"`
	ScrollTop     float64 `json:"scrollTop"`
	ClientHeight  float64 `json:"clientHeight"`
	MinimapHeight float64 `json:"minimapHeight"`
	Dragging      bool    `json:"dragging"`
	Y             float64 `json:"y"`
	X             float64 `json:"x"`
	Line          int     `json:"line"`
	Field         string  `json:"field"`
}

// GridView is an immutable snapshot of one session's view, safe to render
// off the UI loop.
type GridView struct {
	Header        *dom.Node
	Lines         []*dom.Node
	Placeholder   *dom.Node
	Minimap       plugin.MinimapView
	Stats         render.Stats
	Matches       highlight.Result
	FilterTargets []string
	FilterField   string
	Dragging      bool
	ContentHeight float64
	ScrollTarget  *float64
}
