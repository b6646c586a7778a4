package commands

import (
	"bytes"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/loglines/internal/cli/output"
	"github.com/leapstack-labs/loglines/internal/dom"
	"github.com/leapstack-labs/loglines/internal/highlight"
	"github.com/leapstack-labs/loglines/internal/render"
	"github.com/leapstack-labs/loglines/internal/transform"
)

// LinesOutput is the JSON form of a rendered document.
type LinesOutput struct {
	Source      string       `json:"source,omitempty"`
	Fields      []string     `json:"fields"`
	Total       int          `json:"total"`
	Shown       int          `json:"shown"`
	Filter      string       `json:"filter,omitempty"`
	FilterField string       `json:"filter_field,omitempty"`
	FilterError string       `json:"filter_error,omitempty"`
	Highlight   string       `json:"highlight,omitempty"`
	Matches     int          `json:"matches"`
	Placeholder string       `json:"placeholder,omitempty"`
	Lines       []LineOutput `json:"lines"`
}

// LineOutput is one displayed line.
type LineOutput struct {
	Row     int      `json:"row"`
	Text    string   `json:"text"`
	Matches int      `json:"matches,omitempty"`
	Drill   []string `json:"drill,omitempty"`
}

// printDocument writes the session's current document in the renderer's
// effective mode.
func printDocument(r *output.Renderer, s *session) error {
	doc := s.Document()
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(linesOutput(s))
	case output.ModeHTML:
		return dom.RenderAll(r.Writer(), doc.Nodes())
	case output.ModeMarkdown:
		md, err := documentMarkdown(s)
		if err != nil {
			return err
		}
		r.Println(md)
		return nil
	case output.ModeTable:
		printTable(r, doc)
		return nil
	default:
		printText(r, s)
		return nil
	}
}

func linesOutput(s *session) LinesOutput {
	doc := s.Document()
	vs := s.View()
	out := LinesOutput{
		Source:    s.snap.Source,
		Total:     doc.Stats.Total,
		Shown:     doc.Stats.Shown,
		Filter:    vs.FilterText,
		Highlight: vs.HighlightText,
		Matches:   s.plugin.Matches().Matches,
		Lines:     make([]LineOutput, 0, len(doc.Lines)),
	}
	for _, f := range vs.Fields() {
		out.Fields = append(out.Fields, f.Name)
	}
	if vs.FilterText != "" {
		out.FilterField = vs.FilterField
	}
	if doc.Stats.FilterErr != nil {
		out.FilterError = doc.Stats.FilterErr.Error()
	}
	if doc.Placeholder != nil {
		out.Placeholder = doc.Placeholder.TextContent()
	}
	for i := range doc.Lines {
		l := &doc.Lines[i]
		out.Lines = append(out.Lines, LineOutput{
			Row:     l.Index + 1,
			Text:    l.PlainText,
			Matches: l.Matches,
			Drill:   l.DrillFields(),
		})
	}
	return out
}

func printText(r *output.Renderer, s *session) {
	doc := s.Document()
	st := r.Styles()
	if doc.Header != nil {
		r.Println(st.Bold.Render(doc.Header.TextContent()))
	}
	if doc.Placeholder != nil {
		r.Println(st.Muted.Render(doc.Placeholder.TextContent()))
	}
	for i := range doc.Lines {
		r.Println(styledText(doc.Lines[i].Node, st))
	}
	r.Muted(summary(s))
}

// styledText flattens n to a terminal line, styling highlight marks,
// row numbers and drillable values.
func styledText(n *dom.Node, st *output.Styles) string {
	if n == nil {
		return ""
	}
	if n.IsText() {
		return n.Text
	}
	if n.HasClass(render.ClassSparkline) {
		return " " + string(render.SparkGlyph(n))
	}

	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(styledText(c, st))
	}
	text := b.String()

	switch {
	case n.HasClass(highlight.MarkerClass):
		return st.Highlight.Render(text)
	case n.HasClass(render.ClassRowNumber):
		return st.RowNumber.Render(text)
	case n.HasClass(transform.DrillClass):
		return st.Drillable.Render(text)
	}
	return text
}

// summary is the status line shown under a document.
func summary(s *session) string {
	doc := s.Document()
	text := fmt.Sprintf("%d/%d rows", doc.Stats.Shown, doc.Stats.Total)
	if res := s.plugin.Matches(); res.Term != "" {
		text += fmt.Sprintf(" · %d matches in %d lines", res.Matches, len(res.Lines))
	}
	if doc.Stats.FilterErr != nil {
		text += " · filter failed, showing all rows"
	}
	return text
}

// documentMarkdown converts the displayed markup to Markdown. Highlight marks
// become strong emphasis.
func documentMarkdown(s *session) (string, error) {
	doc := s.Document()
	var items []*dom.Node
	if doc.Placeholder != nil {
		items = append(items, dom.Element("p", nil, dom.Element("em", nil, dom.Text(doc.Placeholder.TextContent()))))
	}
	var lines []*dom.Node
	for i := range doc.Lines {
		lines = append(lines, dom.Element("li", nil, emphasize(doc.Lines[i].Node)))
	}
	if len(lines) > 0 {
		items = append(items, dom.Element("ul", nil, lines...))
	}

	var buf bytes.Buffer
	if err := dom.RenderAll(&buf, items); err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	body, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("failed to convert document to markdown: %w", err)
	}

	title := "Log Lines"
	if s.snap.Source != "" {
		title += ": " + s.snap.Source
	}
	var b strings.Builder
	b.WriteString(output.FormatHeader(1, title))
	b.WriteString("\n\n")
	if doc.Header != nil {
		b.WriteString(output.FormatKeyValue("Fields", doc.Header.TextContent()))
		b.WriteString("\n")
	}
	b.WriteString(output.FormatKeyValue("Shown", summary(s)))
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(body))
	return b.String(), nil
}

func emphasize(n *dom.Node) *dom.Node {
	if n == nil || n.IsText() {
		return n
	}
	children := make([]*dom.Node, len(n.Children))
	for i, c := range n.Children {
		children[i] = emphasize(c)
	}
	if n.HasClass(highlight.MarkerClass) {
		return dom.Element("strong", nil, children...)
	}
	return n.WithChildren(children)
}

func printTable(r *output.Renderer, doc *render.Document) {
	if doc.Header == nil || doc.Empty() {
		if doc.Placeholder != nil {
			r.Println(doc.Placeholder.TextContent())
		}
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)

	names, labels := headerFields(doc.Header)
	header := table.Row{"#"}
	for _, l := range labels {
		header = append(header, l)
	}
	t.AppendHeader(header)

	for i := range doc.Lines {
		l := &doc.Lines[i]
		values := fieldValues(l.Node)
		row := table.Row{l.Index + 1}
		for _, name := range names {
			row = append(row, values[name])
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(r.Writer(), "(%d/%d rows)\n", doc.Stats.Shown, doc.Stats.Total)
}

func headerFields(header *dom.Node) (names, labels []string) {
	header.Walk(func(n *dom.Node) bool {
		if name, ok := n.Attr(render.AttrField); ok {
			names = append(names, name)
			labels = append(labels, n.TextContent())
			return false
		}
		return true
	})
	return names, labels
}

func fieldValues(line *dom.Node) map[string]string {
	values := make(map[string]string)
	line.Walk(func(n *dom.Node) bool {
		if name, ok := n.Attr(render.AttrField); ok {
			values[name] = n.TextContent()
			return false
		}
		return true
	})
	return values
}
