package render

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/loglines/internal/dom"
	"github.com/leapstack-labs/loglines/pkg/core"
)

// ErrNoDrill reports a drill activation on a cell without drill targets.
var ErrNoDrill = errors.New("cell is not drillable")

// Stats summarizes a render.
type Stats struct {
	Total     int
	Shown     int
	Filtered  bool
	FilterErr error
}

// Document is the output of one render pass.
type Document struct {
	Generation  uint64
	Waiting     bool
	Header      *dom.Node
	Lines       []Line
	Placeholder *dom.Node
	Stats       Stats
}

// Line is one rendered row.
//
// Pristine is captured right after synthesis and never changes. Node is the
// currently displayed tree, which a highlight pass may replace.
type Line struct {
	Position   int
	Index      int
	Generation uint64
	Node       *dom.Node
	Pristine   *dom.Node
	PlainText  string
	Drills     map[string][]core.Link
	Matches    int
}

// Restore resets the displayed tree to the pristine snapshot.
func (l *Line) Restore() {
	l.Node = l.Pristine
	l.Matches = 0
}

// Drillable reports whether the field of this line is bound to the drill menu.
func (l *Line) Drillable(field string) bool {
	return len(l.Drills[field]) > 0
}

// DrillFields lists bound fields in line order.
func (l *Line) DrillFields() []string {
	var out []string
	if l.Pristine == nil {
		return out
	}
	l.Pristine.Walk(func(n *dom.Node) bool {
		if name, ok := n.Attr(AttrField); ok && l.Drillable(name) {
			out = append(out, name)
			return false
		}
		return true
	})
	return out
}

// Empty reports whether the document shows a placeholder instead of lines.
func (d *Document) Empty() bool {
	return len(d.Lines) == 0
}

// Nodes returns the displayed nodes: the header then every line, or the placeholder.
func (d *Document) Nodes() []*dom.Node {
	var out []*dom.Node
	if d.Header != nil {
		out = append(out, d.Header)
	}
	if d.Placeholder != nil {
		return append(out, d.Placeholder)
	}
	for i := range d.Lines {
		out = append(out, d.Lines[i].Node)
	}
	return out
}

// Drill invokes the host's drill menu for a field of the line at position pos.
func (d *Document) Drill(pos int, field string, ev core.PointerEvent, opener core.DrillOpener) error {
	if pos < 0 || pos >= len(d.Lines) {
		return fmt.Errorf("%w: line %d out of range", ErrNoDrill, pos)
	}
	links := d.Lines[pos].Drills[field]
	if len(links) == 0 {
		return fmt.Errorf("%w: line %d field %q", ErrNoDrill, pos, field)
	}
	if opener == nil {
		return fmt.Errorf("%w: no drill handler", ErrNoDrill)
	}
	opener.OpenDrillMenu(core.DrillRequest{Field: field, Links: links, Event: ev})
	return nil
}
