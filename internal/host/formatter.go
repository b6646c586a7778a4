package host

import (
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/loglines/pkg/core"
)

// Formatter is the default cell formatter.
//
// Pre-rendered cells keep their rendering. Floats are printed without
// trailing zeros. Measure cells carrying links are emitted as anchors.
type Formatter struct {
	// Precision caps the number of decimals for floats. Negative means shortest.
	Precision int
}

// NewFormatter returns a formatter printing floats in shortest form.
func NewFormatter() *Formatter {
	return &Formatter{Precision: -1}
}

// FormatCellAsText returns the plain-text rendering of a cell.
func (f *Formatter) FormatCellAsText(cell core.Cell) (string, error) {
	if cell.Rendered != "" {
		return cell.Rendered, nil
	}
	return f.value(cell.Value), nil
}

// FormatCellAsHTML returns escaped markup for a cell, linking the first drill target.
func (f *Formatter) FormatCellAsHTML(cell core.Cell, field core.Field) (string, error) {
	text, err := f.FormatCellAsText(cell)
	if err != nil {
		return "", err
	}
	escaped := html.EscapeString(text)
	if !field.IsMeasure || !cell.HasLinks() || cell.Links[0].URL == "" {
		return escaped, nil
	}
	var b strings.Builder
	b.WriteString(`<a href="`)
	b.WriteString(html.EscapeString(cell.Links[0].URL))
	b.WriteString(`">`)
	b.WriteString(escaped)
	b.WriteString(`</a>`)
	return b.String(), nil
}

func (f *Formatter) value(v any) string {
	switch t := v.(type) {
	case float64:
		return f.float(t)
	case float32:
		return f.float(float64(t))
	default:
		return core.Stringify(v)
	}
}

func (f *Formatter) float(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', f.Precision, 64)
}
