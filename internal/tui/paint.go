package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/leapstack-labs/loglines/internal/dom"
	"github.com/leapstack-labs/loglines/internal/highlight"
	"github.com/leapstack-labs/loglines/internal/render"
	"github.com/leapstack-labs/loglines/internal/transform"
)

// fieldRange is the cell span a field occupies on a painted line.
type fieldRange struct {
	Field string
	Start int
	End   int
}

// painted is one tree materialized as terminal cells.
type painted struct {
	Text   string
	Width  int
	Fields []fieldRange
}

// FieldAt returns the field under column x.
func (p painted) FieldAt(x int) (string, bool) {
	for _, r := range p.Fields {
		if x >= r.Start && x < r.End {
			return r.Field, true
		}
	}
	return "", false
}

type painter struct {
	styles Styles
}

// Paint renders n with the painter's styles.
func (p painter) Paint(n *dom.Node) painted {
	var b strings.Builder
	out := painted{}
	p.walk(n, lipgloss.NewStyle(), &b, &out)
	out.Text = b.String()
	return out
}

func (p painter) walk(n *dom.Node, style lipgloss.Style, b *strings.Builder, out *painted) {
	if n == nil {
		return
	}
	if n.IsText() {
		if n.Text == "" {
			return
		}
		b.WriteString(style.Render(n.Text))
		out.Width += ansi.StringWidth(n.Text)
		return
	}
	if n.Tag == "script" || n.Tag == "style" {
		return
	}

	style = p.classStyle(n).Inherit(style)

	if n.HasClass(render.ClassSparkline) {
		glyph := " " + string(render.SparkGlyph(n))
		b.WriteString(style.Render(glyph))
		out.Width += ansi.StringWidth(glyph)
		return
	}

	field, isField := n.Attr(render.AttrField)
	isField = isField && n.HasClass(render.ClassField)
	start := out.Width
	for _, c := range n.Children {
		p.walk(c, style, b, out)
	}
	if isField {
		out.Fields = append(out.Fields, fieldRange{Field: field, Start: start, End: out.Width})
	}
}

func (p painter) classStyle(n *dom.Node) lipgloss.Style {
	switch {
	case n.HasClass(highlight.MarkerClass):
		return p.styles.Highlight
	case n.HasClass(transform.DrillClass):
		return p.styles.Drill
	case n.HasClass(render.ClassRowNumber):
		return p.styles.RowNumber
	case n.HasClass(render.ClassSeparator):
		return p.styles.Separator
	case n.HasClass(render.ClassSparkline):
		return p.styles.Sparkline
	case n.HasClass(render.ClassMeasure):
		return p.styles.Measure
	case n.HasClass(render.ClassDimension):
		return p.styles.Dimension
	case n.HasClass(render.ClassHeader):
		return p.styles.Header
	case n.HasClass(render.ClassPlaceholder):
		return p.styles.Placeholder
	}
	switch n.Tag {
	case "b", "strong":
		return p.styles.Bold
	case "a":
		return p.styles.Link
	}
	return lipgloss.NewStyle()
}
