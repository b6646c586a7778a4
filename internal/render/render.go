// Package render synthesizes header and line trees from the view state.
package render

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/leapstack-labs/loglines/internal/dom"
	"github.com/leapstack-labs/loglines/internal/state"
	"github.com/leapstack-labs/loglines/internal/transform"
	"github.com/leapstack-labs/loglines/pkg/core"
)

// DefaultSeparator sits between consecutive fields of a line.
const DefaultSeparator = " | "

// Placeholder texts.
const (
	PlaceholderWaiting  = "Waiting for data…"
	PlaceholderNoFields = "No fields in query"
	PlaceholderNoRows   = "No rows"
	PlaceholderNoMatch  = "No rows match the current filter"
)

// Class names used in synthesized trees.
const (
	ClassHeader      = "log-header"
	ClassLine        = "log-line"
	ClassRowNumber   = "row-number"
	ClassSeparator   = "separator"
	ClassField       = "field"
	ClassDimension   = "dimension"
	ClassMeasure     = "measure"
	ClassSparkline   = "sparkline"
	ClassPlaceholder = "placeholder"
)

// Attribute names used in synthesized trees.
const (
	AttrField    = "data-field"
	AttrLine     = "data-line"
	AttrRow      = "data-row"
	AttrDrill    = "data-drill"
	AttrFraction = "data-fraction"
)

// Renderer builds documents. It holds no per-render state.
type Renderer struct {
	formatter core.Formatter
	separator string
	logger    *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSeparator sets the field separator token.
func WithSeparator(sep string) Option {
	return func(r *Renderer) {
		if sep != "" {
			r.separator = sep
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a renderer using the host's formatter.
func New(formatter core.Formatter, opts ...Option) *Renderer {
	r := &Renderer{
		formatter: formatter,
		separator: DefaultSeparator,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Separator returns the field separator token.
func (r *Renderer) Separator() string {
	return r.separator
}

// Render rebuilds the whole document from vs. There is no incremental diffing.
func (r *Renderer) Render(vs *state.ViewState) Document {
	if vs == nil || !vs.HasData() {
		return Document{Waiting: true, Placeholder: placeholder(PlaceholderWaiting)}
	}

	doc := Document{Generation: vs.Generation}
	fields := vs.Fields()
	doc.Stats.Total = len(vs.Data)

	if len(fields) == 0 {
		doc.Placeholder = placeholder(PlaceholderNoFields)
		return doc
	}

	cfg := vs.VisConfig()
	doc.Header = r.header(transform.Columns(*vs.Shape, cfg))

	spec := FilterSpec{Field: vs.FilterField, Text: vs.FilterText, CaseSensitive: vs.FilterCaseSensitive}
	indices, err := Filter(vs.Data, fields, spec)
	if err != nil {
		r.logger.Warn("filter abandoned, showing unfiltered rows", "error", err)
		doc.Stats.FilterErr = err
		indices, _ = Filter(vs.Data, fields, FilterSpec{})
	} else {
		doc.Stats.Filtered = spec.Active()
	}

	model := transform.Transform(vs.Data, indices, *vs.Shape, cfg, vs.Stats)
	doc.Lines = make([]Line, 0, len(model.Rows))
	for pos, row := range model.Rows {
		doc.Lines = append(doc.Lines, r.line(pos, row, fields, vs))
	}
	doc.Stats.Shown = len(doc.Lines)

	if len(doc.Lines) == 0 {
		if doc.Stats.Filtered && len(vs.Data) > 0 {
			doc.Placeholder = placeholder(PlaceholderNoMatch)
		} else {
			doc.Placeholder = placeholder(PlaceholderNoRows)
		}
	}
	return doc
}

func (r *Renderer) header(cols []transform.Column) *dom.Node {
	var children []*dom.Node
	first := true
	for _, c := range cols {
		if c.Hidden {
			continue
		}
		if c.Kind == transform.ColumnRowNumber {
			children = append(children, dom.Span(ClassRowNumber, dom.Text(c.Label+": ")))
			continue
		}
		if !first {
			children = append(children, dom.Span(ClassSeparator, dom.Text(r.separator)))
		}
		first = false
		children = append(children, dom.Span(ClassField, dom.Text(c.Label)).WithAttr(AttrField, c.Name))
	}
	return dom.Div(ClassHeader, children...)
}

// line synthesizes one line and captures both snapshots before any highlight pass.
func (r *Renderer) line(pos int, row transform.Row, fields []core.Field, vs *state.ViewState) Line {
	l := Line{
		Position:   pos,
		Index:      row.Index,
		Generation: vs.Generation,
	}

	var children []*dom.Node
	var plain []string

	if vs.ShowRowNumbers {
		label := RowNumberLabel(row.Index)
		children = append(children, dom.Span(ClassRowNumber, dom.Text(label)))
		plain = append(plain, label)
	}

	for i, f := range fields {
		if i > 0 {
			children = append(children, dom.Span(ClassSeparator, dom.Text(r.separator)))
			plain = append(plain, r.separator)
		}
		v := row.Values[f.Name]
		span, text := r.fieldSpan(f, v, vs.ShowSparklines)
		if v.Interactive {
			if l.Drills == nil {
				l.Drills = make(map[string][]core.Link)
			}
			l.Drills[f.Name] = v.Links
		}
		children = append(children, span)
		plain = append(plain, text)
	}

	node := dom.Div(ClassLine, children...).
		WithAttr(AttrLine, strconv.Itoa(pos)).
		WithAttr(AttrRow, strconv.Itoa(row.Index))

	l.Node = node
	l.Pristine = node
	l.PlainText = joinPieces(plain)
	return l
}

func (r *Renderer) fieldSpan(f core.Field, v transform.Value, sparklines bool) (*dom.Node, string) {
	kind := ClassDimension
	if f.IsMeasure {
		kind = ClassMeasure
	}
	class := ClassField + " " + kind

	var content []*dom.Node
	text := v.Text

	switch {
	case v.Text == transform.PlaceholderMissingRow:
		content = []*dom.Node{dom.Text(v.Text)}
	case f.IsMeasure:
		markup, err := formatHTML(r.formatter, v.Cell, f)
		if err != nil {
			r.logger.Warn("measure formatting failed, using raw value", "field", f.Name, "error", err)
		}
		if v.Interactive {
			markup = transform.WrapDrillable(markup)
		}
		nodes, err := dom.ParseFragment(markup)
		if err != nil {
			r.logger.Warn("measure markup rejected, using raw value", "field", f.Name, "error", err)
			nodes = []*dom.Node{dom.Text(v.Cell.String())}
		}
		content = nodes
	default:
		formatted, err := formatText(r.formatter, v.Cell, f)
		if err != nil {
			r.logger.Warn("dimension formatting failed, using raw value", "field", f.Name, "error", err)
		}
		text = formatted
		content = []*dom.Node{dom.Text(formatted)}
		if v.Interactive {
			content = []*dom.Node{dom.Span(transform.DrillClass, content...)}
		}
	}

	if sparklines && v.HasSpark {
		bar := dom.Span(ClassSparkline).WithAttr(AttrFraction, strconv.FormatFloat(v.Spark, 'f', 4, 64))
		content = append(content, bar)
	}

	span := dom.Span(class, content...).WithAttr(AttrField, f.Name)
	if v.Interactive {
		span = span.WithAttr(AttrDrill, "true")
	}
	return span, text
}

// RowNumberLabel returns the row-number prefix for an original row index.
func RowNumberLabel(index int) string {
	return fmt.Sprintf("%d: ", index+1)
}

func placeholder(text string) *dom.Node {
	return dom.Div(ClassPlaceholder, dom.Text(text))
}

func joinPieces(pieces []string) string {
	n := 0
	for _, p := range pieces {
		n += len(p)
	}
	b := make([]byte, 0, n)
	for _, p := range pieces {
		b = append(b, p...)
	}
	return string(b)
}
