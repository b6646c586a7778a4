package core

import "fmt"

// Field describes one column of a query response.
// Name is unique within a response and is the field's identity.
type Field struct {
	Name       string `json:"name" yaml:"name"`
	Label      string `json:"label" yaml:"label"`
	ShortLabel string `json:"short_label,omitempty" yaml:"short_label,omitempty"`
	IsMeasure  bool   `json:"is_measure" yaml:"is_measure"`
}

// DisplayLabel returns the label used in headers: short label, label, then name.
func (f Field) DisplayLabel() string {
	switch {
	case f.ShortLabel != "":
		return f.ShortLabel
	case f.Label != "":
		return f.Label
	default:
		return f.Name
	}
}

// Link is a drill-through target attached to a cell.
type Link struct {
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Cell is one row/field intersection.
type Cell struct {
	Value    any    `json:"value" yaml:"value"`
	Rendered string `json:"rendered,omitempty" yaml:"rendered,omitempty"`
	Links    []Link `json:"links,omitempty" yaml:"links,omitempty"`
}

// HasLinks reports whether the cell carries at least one drill target.
func (c Cell) HasLinks() bool {
	return len(c.Links) > 0
}

// String returns the raw value stringified, or the empty string for nil.
func (c Cell) String() string {
	return Stringify(c.Value)
}

// DisplayText returns the pre-formatted rendering when present, else the raw value.
func (c Cell) DisplayText() string {
	if c.Rendered != "" {
		return c.Rendered
	}
	return c.String()
}

// Row maps field name to cell. Rows are immutable once received from the host.
type Row map[string]Cell

// Stringify converts a raw cell value to its display string.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// QueryShape is the field metadata of a response, split by kind.
type QueryShape struct {
	Dimensions []Field `json:"dimensions" yaml:"dimensions"`
	Measures   []Field `json:"measures" yaml:"measures"`
}

// Fields returns dimensions followed by measures, with IsMeasure set accordingly.
func (q QueryShape) Fields() []Field {
	fields := make([]Field, 0, len(q.Dimensions)+len(q.Measures))
	for _, f := range q.Dimensions {
		f.IsMeasure = false
		fields = append(fields, f)
	}
	for _, f := range q.Measures {
		f.IsMeasure = true
		fields = append(fields, f)
	}
	return fields
}

// Lookup finds a field by name.
func (q QueryShape) Lookup(name string) (Field, bool) {
	for _, f := range q.Fields() {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Empty reports whether the shape carries no fields.
func (q QueryShape) Empty() bool {
	return len(q.Dimensions) == 0 && len(q.Measures) == 0
}

// MeasureStats holds the dataset-wide range of one measure.
type MeasureStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Degenerate reports whether the range is empty (min == max).
func (s MeasureStats) Degenerate() bool {
	return s.Min == s.Max
}
