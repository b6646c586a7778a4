package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderString(t *testing.T) {
	n := Div("log-line",
		Span("row-number", Text("1: ")),
		Span("field", Text("a < b & c")),
	)

	assert.Equal(t,
		`<div class="log-line"><span class="row-number">1: </span><span class="field">a &lt; b &amp; c</span></div>`,
		RenderString(n))
}

func TestTextContent(t *testing.T) {
	n := Div("", Text("one"), Span("x", Text(" two"), Span("y")), Text(" three"))
	assert.Equal(t, "one two three", n.TextContent())
}

func TestHasClass(t *testing.T) {
	n := Span("field drillable")
	assert.True(t, n.HasClass("drillable"))
	assert.True(t, n.HasClass("field"))
	assert.False(t, n.HasClass("drill"))
	assert.False(t, Text("x").HasClass("field"))
}

func TestWithAttr(t *testing.T) {
	n := Span("a")
	m := n.WithAttr("class", "b").WithAttr("data-x", "1")

	v, _ := n.Attr("class")
	assert.Equal(t, "a", v, "original is unchanged")
	v, _ = m.Attr("class")
	assert.Equal(t, "b", v)
	v, ok := m.Attr("data-x")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestParseFragment(t *testing.T) {
	nodes, err := ParseFragment(`<b>42</b> units<!-- note -->`)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, "b", nodes[0].Tag)
	assert.Equal(t, "42", nodes[0].TextContent())
	assert.Equal(t, " units", nodes[1].Text)
}

func TestParseRenderRoundTrip(t *testing.T) {
	markup := `<span class="drillable"><a href="/x">7</a></span>`
	nodes, err := ParseFragment(markup)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	assert.Equal(t, markup, RenderString(nodes[0]))
}

func TestCloneAndEqual(t *testing.T) {
	n := Div("line", Span("f", Text("x")))
	c := n.Clone()

	assert.True(t, Equal(n, c))
	c.Children[0].Children[0].Text = "y"
	assert.False(t, Equal(n, c))
	assert.Equal(t, "x", n.TextContent())
}

func TestFindAll(t *testing.T) {
	n := Div("line", Span("f", Text("a")), Span("f", Text("b")), Span("sep"))
	found := n.FindAll(func(c *Node) bool { return c.HasClass("f") })
	assert.Len(t, found, 2)
}
