// Package dom is an immutable tree of elements and text runs.
//
// Nodes are never mutated after construction. Transformations (highlighting,
// restoring pristine content) build new trees and share unchanged subtrees.
// Adapters materialize trees as HTML (this package) or terminal cells
// (internal/tui).
package dom

import (
	"slices"
	"strings"
)

// Kind is the node kind.
type Kind int

// Node kinds.
const (
	TextNode Kind = iota
	ElementNode
)

// Attr is an element attribute.
type Attr struct {
	Key string
	Val string
}

// Node is a text run or an element with children.
type Node struct {
	Kind     Kind
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// Text returns a text node.
func Text(s string) *Node {
	return &Node{Kind: TextNode, Text: s}
}

// Element returns an element node.
func Element(tag string, attrs []Attr, children ...*Node) *Node {
	return &Node{Kind: ElementNode, Tag: tag, Attrs: attrs, Children: children}
}

// Span returns a span with the given class. An empty class omits the attribute.
func Span(class string, children ...*Node) *Node {
	var attrs []Attr
	if class != "" {
		attrs = []Attr{{Key: "class", Val: class}}
	}
	return Element("span", attrs, children...)
}

// Div returns a div with the given class.
func Div(class string, children ...*Node) *Node {
	n := Span(class, children...)
	n.Tag = "div"
	return n
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n != nil && n.Kind == TextNode
}

// IsElement reports whether n is an element node.
func (n *Node) IsElement() bool {
	return n != nil && n.Kind == ElementNode
}

// Attr returns the value of an attribute.
func (n *Node) Attr(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasClass reports whether the class attribute contains class.
func (n *Node) HasClass(class string) bool {
	v, ok := n.Attr("class")
	if !ok {
		return false
	}
	return slices.Contains(strings.Fields(v), class)
}

// WithAttr returns a shallow copy of n with the attribute set.
func (n *Node) WithAttr(key, val string) *Node {
	c := *n
	c.Attrs = make([]Attr, 0, len(n.Attrs)+1)
	replaced := false
	for _, a := range n.Attrs {
		if a.Key == key {
			a.Val = val
			replaced = true
		}
		c.Attrs = append(c.Attrs, a)
	}
	if !replaced {
		c.Attrs = append(c.Attrs, Attr{Key: key, Val: val})
	}
	return &c
}

// WithChildren returns a shallow copy of n with new children.
func (n *Node) WithChildren(children []*Node) *Node {
	c := *n
	c.Children = children
	return &c
}

// TextContent concatenates every descendant text run.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	if n == nil {
		return
	}
	if n.Kind == TextNode {
		b.WriteString(n.Text)
		return
	}
	for _, c := range n.Children {
		c.writeText(b)
	}
}

// Walk visits n and its descendants depth-first. Returning false from fn skips children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// FindAll returns every descendant (including n) matching pred.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if pred(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Clone deep-copies n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Attrs = slices.Clone(n.Attrs)
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

// Equal reports structural equality.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Tag != b.Tag || a.Text != b.Text {
		return false
	}
	if !slices.Equal(a.Attrs, b.Attrs) || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}
