// Package transform converts host rows into a renderer-agnostic row/column model.
package transform

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/leapstack-labs/loglines/pkg/core"
)

// ColumnKind classifies a column of the model.
type ColumnKind int

// Column kinds in output order.
const (
	ColumnRowNumber ColumnKind = iota
	ColumnDimension
	ColumnMeasure
	ColumnOriginalIndex
)

// String returns the kind name.
func (k ColumnKind) String() string {
	switch k {
	case ColumnRowNumber:
		return "row_number"
	case ColumnDimension:
		return "dimension"
	case ColumnMeasure:
		return "measure"
	case ColumnOriginalIndex:
		return "original_index"
	default:
		return "unknown"
	}
}

// Synthetic column names.
const (
	RowNumberColumn     = "__row_number"
	OriginalIndexColumn = "__original_index"
)

// DrillClass marks interactive cells.
const DrillClass = "drillable"

// PlaceholderMissingRow replaces content whose source row cannot be resolved.
const PlaceholderMissingRow = "[missing row]"

// Column is one output column.
type Column struct {
	Name   string
	Label  string
	Kind   ColumnKind
	Hidden bool
	Field  core.Field
}

// Value is one transformed cell.
type Value struct {
	Raw         any
	Text        string
	Cell        core.Cell
	Links       []core.Link
	Interactive bool
	Spark       float64
	HasSpark    bool
}

// Row is one transformed row. Index is the row's position in the source dataset.
type Row struct {
	Index  int
	Values map[string]Value
}

// Model is the transform output.
type Model struct {
	Columns []Column
	Rows    []Row
}

// FieldColumns returns the visible data columns (dimensions and measures).
func (m Model) FieldColumns() []Column {
	out := make([]Column, 0, len(m.Columns))
	for _, c := range m.Columns {
		if c.Kind == ColumnDimension || c.Kind == ColumnMeasure {
			out = append(out, c)
		}
	}
	return out
}

// Transform builds the model for the given rows.
// indices selects which source rows to include, in order; nil means all rows.
func Transform(rows []core.Row, indices []int, shape core.QueryShape, cfg core.VisConfig, stats map[string]core.MeasureStats) Model {
	fields := shape.Fields()
	m := Model{Columns: Columns(shape, cfg)}

	if indices == nil {
		indices = make([]int, len(rows))
		for i := range rows {
			indices[i] = i
		}
	}

	m.Rows = make([]Row, 0, len(indices))
	for _, idx := range indices {
		src, ok := RowAt(rows, idx)
		out := Row{Index: idx, Values: make(map[string]Value, len(fields))}
		for _, f := range fields {
			if !ok {
				out.Values[f.Name] = Value{Text: PlaceholderMissingRow}
				continue
			}
			out.Values[f.Name] = transformCell(src[f.Name], f, cfg, stats)
		}
		m.Rows = append(m.Rows, out)
	}
	return m
}

// Columns returns the ordered column list for a shape.
func Columns(shape core.QueryShape, cfg core.VisConfig) []Column {
	fields := shape.Fields()
	cols := make([]Column, 0, len(fields)+2)
	if cfg.ShowRowNumbers {
		cols = append(cols, Column{Name: RowNumberColumn, Label: "#", Kind: ColumnRowNumber})
	}
	for _, f := range fields {
		kind := ColumnDimension
		if f.IsMeasure {
			kind = ColumnMeasure
		}
		cols = append(cols, Column{Name: f.Name, Label: f.DisplayLabel(), Kind: kind, Field: f})
	}
	cols = append(cols, Column{Name: OriginalIndexColumn, Label: "index", Kind: ColumnOriginalIndex, Hidden: true})
	return cols
}

func transformCell(cell core.Cell, f core.Field, cfg core.VisConfig, stats map[string]core.MeasureStats) Value {
	v := Value{
		Raw:         cell.Value,
		Text:        cell.DisplayText(),
		Cell:        cell,
		Links:       cell.Links,
		Interactive: cfg.Drillable(f, cell),
	}
	if f.IsMeasure && cfg.ShowMeasureSparklines {
		if s, ok := stats[f.Name]; ok {
			if n, ok := Numeric(cell.Value); ok {
				v.Spark = Normalize(n, s)
				v.HasSpark = true
			}
		}
	}
	return v
}

// RowAt resolves a source index. Out-of-range indices and nil rows are reported as missing.
func RowAt(rows []core.Row, idx int) (core.Row, bool) {
	if idx < 0 || idx >= len(rows) {
		return nil, false
	}
	r := rows[idx]
	if r == nil {
		return nil, false
	}
	return r, true
}

// Normalize maps v onto [0,1] against the measure range.
// A degenerate range or non-finite input maps to the midpoint.
func Normalize(v float64, s core.MeasureStats) float64 {
	if s.Degenerate() || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0.5
	}
	n := (v - s.Min) / (s.Max - s.Min)
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0.5
	}
	return math.Max(0, math.Min(1, n))
}

// Numeric extracts a float from a raw cell value.
func Numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint64:
		return float64(t), true
	case uint32:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ComputeStats computes min/max for every measure over the full dataset.
// Measures without any numeric value get no entry.
func ComputeStats(rows []core.Row, measures []core.Field) map[string]core.MeasureStats {
	stats := make(map[string]core.MeasureStats, len(measures))
	for _, f := range measures {
		seen := false
		var s core.MeasureStats
		for _, r := range rows {
			if r == nil {
				continue
			}
			n, ok := Numeric(r[f.Name].Value)
			if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
				continue
			}
			if !seen {
				s = core.MeasureStats{Min: n, Max: n}
				seen = true
				continue
			}
			s.Min = math.Min(s.Min, n)
			s.Max = math.Max(s.Max, n)
		}
		if seen {
			stats[f.Name] = s
		}
	}
	return stats
}

var anchorPattern = regexp.MustCompile(`(?i)<a[\s>]`)

// HasDrillMarkup reports whether markup already carries a drill wrapper or an anchor.
func HasDrillMarkup(markup string) bool {
	return strings.Contains(markup, `class="`+DrillClass) || anchorPattern.MatchString(markup)
}

// WrapDrillable wraps markup in the interactive marker unless it already has one.
func WrapDrillable(markup string) string {
	if HasDrillMarkup(markup) {
		return markup
	}
	return `<span class="` + DrillClass + `">` + markup + `</span>`
}
