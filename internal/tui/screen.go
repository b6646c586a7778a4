package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/x/ansi"

	"github.com/leapstack-labs/loglines/internal/minimap"
	"github.com/leapstack-labs/loglines/internal/plugin"
	"github.com/leapstack-labs/loglines/internal/render"
)

const (
	glyphTrack  = "│"
	glyphThumb  = "┃"
	glyphMarker = "◆"
)

// screen is the terminal container: a header line, a scrolling body and a
// one-column minimap track to its right. One line of content is one cell high.
type screen struct {
	painter painter
	vp      viewport.Model
	width   int

	doc     *render.Document
	header  painted
	lines   []painted
	minimap plugin.MinimapView
}

var _ plugin.Container = (*screen)(nil)

func newScreen(styles Styles) *screen {
	return &screen{painter: painter{styles: styles}, vp: viewport.New(0, 0)}
}

// Resize sets the body size in cells, including the minimap column.
func (s *screen) Resize(width, height int) {
	s.width = max(0, width)
	s.vp.Width = s.bodyWidth()
	s.vp.Height = max(0, height)
	if s.doc != nil {
		s.Mount(s.doc)
	}
}

func (s *screen) bodyWidth() int {
	return max(0, s.width-2)
}

func (s *screen) Has(anchor string) bool {
	switch anchor {
	case plugin.AnchorHeader, plugin.AnchorBody, plugin.AnchorMinimap:
		return true
	}
	return false
}

func (s *screen) Mount(doc *render.Document) {
	s.doc = doc
	s.header = painted{}
	if doc.Header != nil {
		s.header = s.painter.Paint(doc.Header)
	}

	var nodes []painted
	if doc.Placeholder != nil {
		nodes = append(nodes, s.painter.Paint(doc.Placeholder))
	} else {
		nodes = make([]painted, 0, len(doc.Lines))
		for i := range doc.Lines {
			nodes = append(nodes, s.painter.Paint(doc.Lines[i].Node))
		}
	}
	s.lines = nodes

	rows := make([]string, len(nodes))
	for i, p := range nodes {
		rows[i] = s.truncate(p.Text)
	}
	offset := s.vp.YOffset
	s.vp.SetContent(strings.Join(rows, "\n"))
	s.vp.SetYOffset(offset)
}

func (s *screen) truncate(line string) string {
	w := s.bodyWidth()
	if w <= 0 {
		return line
	}
	return ansi.Truncate(line, w, "…")
}

func (s *screen) Metrics() minimap.Metrics {
	return minimap.Metrics{
		ScrollTop:     float64(s.vp.YOffset),
		ScrollHeight:  float64(s.vp.TotalLineCount()),
		ClientHeight:  float64(s.vp.Height),
		MinimapHeight: float64(s.vp.Height),
	}
}

func (s *screen) LineOffset(pos int) float64 {
	return float64(pos)
}

func (s *screen) ScrollTo(top float64) {
	s.vp.SetYOffset(int(math.Round(top)))
}

func (s *screen) ShowMinimap(view plugin.MinimapView) {
	s.minimap = view
}

// lineAt maps a body row to a rendered line position.
func (s *screen) lineAt(row int) (int, bool) {
	if s.doc == nil || s.doc.Placeholder != nil {
		return 0, false
	}
	pos := s.vp.YOffset + row
	if row < 0 || pos < 0 || pos >= len(s.doc.Lines) {
		return 0, false
	}
	return pos, true
}

// fieldAt returns the line position and field under a body cell.
func (s *screen) fieldAt(x, row int) (int, string, bool) {
	pos, ok := s.lineAt(row)
	if !ok || pos >= len(s.lines) {
		return 0, "", false
	}
	field, ok := s.lines[pos].FieldAt(x)
	return pos, field, ok
}

// HeaderView renders the header line.
func (s *screen) HeaderView() string {
	return s.truncate(s.header.Text)
}

// BodyView renders the viewport with the minimap track beside it.
func (s *screen) BodyView() string {
	body := strings.Split(s.vp.View(), "\n")
	track := s.trackCells()

	var b strings.Builder
	for i := 0; i < s.vp.Height; i++ {
		line := ""
		if i < len(body) {
			line = body[i]
		}
		pad := s.bodyWidth() - ansi.StringWidth(line)
		b.WriteString(line)
		if pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(" ")
		b.WriteString(track[i])
		if i < s.vp.Height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (s *screen) trackCells() []string {
	styles := s.painter.styles
	cells := make([]string, s.vp.Height)
	for i := range cells {
		cells[i] = " "
	}
	if !s.minimap.Visible {
		return cells
	}

	thumb := s.minimap.Thumb
	top := int(math.Floor(thumb.Top))
	bottom := int(math.Ceil(thumb.Top + thumb.Height))
	for i := range cells {
		if i >= top && i < bottom {
			cells[i] = styles.Thumb.Render(glyphThumb)
		} else {
			cells[i] = styles.Track.Render(glyphTrack)
		}
	}
	for _, m := range s.minimap.Markers {
		row := int(math.Floor(m.Top))
		if row >= 0 && row < len(cells) {
			cells[row] = styles.Marker.Render(glyphMarker)
		}
	}
	return cells
}
