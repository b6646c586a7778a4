package highlight

import (
	"log/slog"
	"regexp"

	"github.com/leapstack-labs/loglines/internal/dom"
	"github.com/leapstack-labs/loglines/internal/render"
)

// MarkerClass is the class of the span wrapping each match.
const MarkerClass = "highlight"

var skipTags = map[string]bool{
	"script": true,
	"style":  true,
}

// Split cuts text into plain and marker fragments covering it exactly.
// It returns nil and zero when re does not match.
func Split(text string, re *regexp.Regexp) ([]*dom.Node, int) {
	if re == nil || text == "" {
		return nil, 0
	}
	locs := re.FindAllStringIndex(text, -1)
	var out []*dom.Node
	count := 0
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if start == end {
			continue
		}
		if start > last {
			out = append(out, dom.Text(text[last:start]))
		}
		out = append(out, dom.Span(MarkerClass, dom.Text(text[start:end])))
		last = end
		count++
	}
	if count == 0 {
		return nil, 0
	}
	if last < len(text) {
		out = append(out, dom.Text(text[last:]))
	}
	return out, count
}

// Apply returns n with every match of re wrapped in a marker span, and the
// number of matches marked. Unchanged subtrees are shared with n.
// Script, style and existing marker elements are left alone; nil children are skipped.
func Apply(n *dom.Node, re *regexp.Regexp) (*dom.Node, int) {
	if n == nil || re == nil {
		return n, 0
	}
	if n.IsText() {
		parts, count := Split(n.Text, re)
		if count == 0 {
			return n, 0
		}
		return dom.Span("", parts...), count
	}
	out, count := applyElement(n, re)
	return out, count
}

func applyElement(n *dom.Node, re *regexp.Regexp) (*dom.Node, int) {
	if skipTags[n.Tag] || n.HasClass(MarkerClass) {
		return n, 0
	}

	total := 0
	var children []*dom.Node
	for i, c := range n.Children {
		replaced, count := applyChild(c, re)
		if count == 0 {
			if children != nil {
				children = append(children, c)
			}
			continue
		}
		if children == nil {
			children = make([]*dom.Node, 0, len(n.Children)+2*count)
			children = append(children, n.Children[:i]...)
		}
		children = append(children, replaced...)
		total += count
	}
	if total == 0 {
		return n, 0
	}
	return n.WithChildren(children), total
}

// applyChild returns the nodes replacing c. A detached (nil) child reports no match.
func applyChild(c *dom.Node, re *regexp.Regexp) ([]*dom.Node, int) {
	if c == nil {
		return nil, 0
	}
	if c.IsText() {
		return Split(c.Text, re)
	}
	out, count := applyElement(c, re)
	if count == 0 {
		return nil, 0
	}
	return []*dom.Node{out}, count
}

// Result summarizes one highlight pass over a document.
type Result struct {
	Term    string
	Lines   []int
	Matches int
	Skipped int
	Err     error
}

// Highlighter applies highlight passes to documents.
type Highlighter struct {
	logger *slog.Logger
}

// New creates a Highlighter.
func New(logger *slog.Logger) *Highlighter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Highlighter{logger: logger}
}

// ApplyAll restores every line of doc to its pristine tree and highlights term.
// An empty term only clears previous markers. An invalid pattern leaves the
// document unhighlighted and is reported in Result.Err.
func (h *Highlighter) ApplyAll(doc *render.Document, term string, caseSensitive bool) Result {
	res := Result{Term: term}
	if doc == nil {
		return res
	}

	re, err := Compile(term, caseSensitive)
	if err != nil {
		h.logger.Warn("highlight abandoned", "error", err)
		res.Err = err
		re = nil
	}

	for i := range doc.Lines {
		line := &doc.Lines[i]
		if line.Pristine == nil || line.Generation != doc.Generation {
			h.logger.Debug("skipping stale line", "line", line.Position, "generation", line.Generation)
			res.Skipped++
			continue
		}
		line.Restore()
		if re == nil {
			continue
		}
		node, count := Apply(line.Pristine, re)
		if count == 0 {
			continue
		}
		line.Node = node
		line.Matches = count
		res.Lines = append(res.Lines, line.Position)
		res.Matches += count
	}
	return res
}
