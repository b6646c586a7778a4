package highlight

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/loglines/internal/dom"
	"github.com/leapstack-labs/loglines/internal/render"
	"github.com/leapstack-labs/loglines/internal/state"
	"github.com/leapstack-labs/loglines/internal/testutil"
	"github.com/leapstack-labs/loglines/pkg/core"
)

type plainFormatter struct{}

func (plainFormatter) FormatCellAsHTML(cell core.Cell, _ core.Field) (string, error) {
	return cell.DisplayText(), nil
}

func (plainFormatter) FormatCellAsText(cell core.Cell) (string, error) {
	return cell.DisplayText(), nil
}

func renderDoc(t *testing.T, msgs ...string) render.Document {
	t.Helper()
	rows := make([]core.Row, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, core.Row{"msg": {Value: m}})
	}
	vs := state.New(core.DefaultVisConfig())
	vs.SetData(rows, core.QueryShape{Dimensions: []core.Field{{Name: "msg"}}})
	return render.New(plainFormatter{}).Render(vs)
}

func markers(n *dom.Node) []string {
	var out []string
	for _, m := range n.FindAll(func(x *dom.Node) bool { return x.HasClass(MarkerClass) }) {
		out = append(out, m.TextContent())
	}
	return out
}

func TestEscapeTerm(t *testing.T) {
	tests := []struct {
		term string
		text string
	}{
		{"a.b", "a.b"},
		{"(x)", "call (x)"},
		{"[1]", "arr[1]"},
		{"$5*", "cost $5*"},
		{`\d`, `literal \d`},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			re, err := Compile(tt.term, true)
			require.NoError(t, err)
			loc := re.FindStringIndex(tt.text)
			require.NotNil(t, loc)
			assert.Equal(t, tt.term, tt.text[loc[0]:loc[1]])
		})
	}

	re, err := Compile("a.b", true)
	require.NoError(t, err)
	assert.False(t, re.MatchString("axb"))
}

func TestCompile_EmptyTerm(t *testing.T) {
	re, err := Compile("", false)
	require.NoError(t, err)
	assert.Nil(t, re)
}

func TestCompile_CaseFlag(t *testing.T) {
	re, err := Compile("Error", false)
	require.NoError(t, err)
	assert.True(t, re.MatchString("ERROR here"))

	re, err = Compile("Error", true)
	require.NoError(t, err)
	assert.False(t, re.MatchString("ERROR here"))
}

func TestSplit_CoversText(t *testing.T) {
	re, err := Compile("ab", false)
	require.NoError(t, err)

	tests := []struct {
		text  string
		count int
	}{
		{"ab", 1},
		{"xxabyyABzz", 2},
		{"ababab", 3},
		{"nothing", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			parts, count := Split(tt.text, re)
			assert.Equal(t, tt.count, count)
			if count == 0 {
				assert.Nil(t, parts)
				return
			}
			var b strings.Builder
			for _, p := range parts {
				b.WriteString(p.TextContent())
			}
			assert.Equal(t, tt.text, b.String())
		})
	}
}

func TestApply_DiskFullScenario(t *testing.T) {
	doc := renderDoc(t, "error: disk full")
	require.Len(t, doc.Lines, 1)

	h := New(testutil.NewTestLogger(t))
	res := h.ApplyAll(&doc, "error", false)

	require.NoError(t, res.Err)
	assert.Equal(t, []int{0}, res.Lines)
	assert.Equal(t, 1, res.Matches)

	line := doc.Lines[0]
	assert.Equal(t, []string{"error"}, markers(line.Node))
	assert.Equal(t, line.PlainText, line.Node.TextContent())
	assert.Equal(t, "1: error: disk full", line.Node.TextContent())
	assert.Empty(t, markers(line.Pristine))
}

func TestApply_Idempotent(t *testing.T) {
	doc := renderDoc(t, "error: disk full", "ok", "Error again, error")
	h := New(nil)

	first := h.ApplyAll(&doc, "error", false)
	snapshot := make([]string, len(doc.Lines))
	for i := range doc.Lines {
		snapshot[i] = dom.RenderString(doc.Lines[i].Node)
	}

	second := h.ApplyAll(&doc, "error", false)
	assert.Equal(t, first.Lines, second.Lines)
	assert.Equal(t, first.Matches, second.Matches)
	assert.Equal(t, 3, second.Matches)
	for i := range doc.Lines {
		assert.Equal(t, snapshot[i], dom.RenderString(doc.Lines[i].Node))
	}
}

func TestApply_PreservesPlainText(t *testing.T) {
	doc := renderDoc(t, "alpha beta", "beta beta", "gamma")
	h := New(nil)

	for _, term := range []string{"a", "beta", "ta b", "zzz", "A"} {
		t.Run(term, func(t *testing.T) {
			h.ApplyAll(&doc, term, false)
			for _, line := range doc.Lines {
				assert.Equal(t, line.PlainText, line.Node.TextContent())
			}
		})
	}
}

func TestApplyAll_EmptyTermClears(t *testing.T) {
	doc := renderDoc(t, "error: disk full")
	h := New(nil)

	h.ApplyAll(&doc, "disk", false)
	require.NotEmpty(t, markers(doc.Lines[0].Node))

	res := h.ApplyAll(&doc, "", false)
	assert.Empty(t, res.Lines)
	assert.Empty(t, markers(doc.Lines[0].Node))
	assert.Same(t, doc.Lines[0].Pristine, doc.Lines[0].Node)
}

func TestApplyAll_SkipsStaleLines(t *testing.T) {
	doc := renderDoc(t, "error one", "error two")
	doc.Lines[1].Generation = doc.Generation + 1
	doc.Lines[0].Pristine = nil

	res := New(testutil.NewTestLogger(t)).ApplyAll(&doc, "error", false)

	assert.Equal(t, 2, res.Skipped)
	assert.Empty(t, res.Lines)
}

func TestApply_SkipsScriptAndMarkers(t *testing.T) {
	re, err := Compile("x", false)
	require.NoError(t, err)

	tree := dom.Div("line",
		dom.Text("x"),
		dom.Element("script", nil, dom.Text("x")),
		dom.Span(MarkerClass, dom.Text("x")),
		nil,
	)

	out, count := Apply(tree, re)
	assert.Equal(t, 1, count)
	assert.Equal(t, "xxx", out.TextContent())
	assert.Len(t, markers(out), 2)
}

func TestApply_NoMatchSharesTree(t *testing.T) {
	re, err := Compile("zzz", false)
	require.NoError(t, err)

	tree := dom.Div("line", dom.Span("field", dom.Text("abc")))
	out, count := Apply(tree, re)
	assert.Zero(t, count)
	assert.Same(t, tree, out)

	out, count = Apply(nil, re)
	assert.Nil(t, out)
	assert.Zero(t, count)
}

func TestPlaceMarkers(t *testing.T) {
	offsets := map[int]float64{0: 0, 1: 500, 2: 1000, 3: math.NaN()}
	layout := Layout{
		MinimapVisible: true,
		ScrollHeight:   1000,
		MinimapHeight:  100,
		MarkerHeight:   2,
		Offset:         func(pos int) float64 { return offsets[pos] },
	}

	got := PlaceMarkers([]int{0, 1, 2, 3}, layout)
	require.Len(t, got, 3)
	assert.InDelta(t, 0, got[0].Top, 1e-9)
	assert.InDelta(t, 50, got[1].Top, 1e-9)
	assert.InDelta(t, 98, got[2].Top, 1e-9)

	hidden := layout
	hidden.MinimapVisible = false
	assert.Empty(t, PlaceMarkers([]int{0}, hidden))

	flat := layout
	flat.ScrollHeight = 0
	assert.Empty(t, PlaceMarkers([]int{0}, flat))
}
