package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ToHTML converts n into an x/net/html node tree.
func ToHTML(n *Node) *html.Node {
	if n == nil {
		return nil
	}
	if n.Kind == TextNode {
		return &html.Node{Type: html.TextNode, Data: n.Text}
	}
	h := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Tag,
		DataAtom: atom.Lookup([]byte(n.Tag)),
	}
	for _, a := range n.Attrs {
		h.Attr = append(h.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	for _, c := range n.Children {
		if hc := ToHTML(c); hc != nil {
			h.AppendChild(hc)
		}
	}
	return h
}

// Render writes n as HTML.
func Render(w io.Writer, n *Node) error {
	h := ToHTML(n)
	if h == nil {
		return nil
	}
	return html.Render(w, h)
}

// RenderString returns n as an HTML string.
func RenderString(n *Node) string {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// RenderAll writes nodes one after another.
func RenderAll(w io.Writer, nodes []*Node) error {
	for _, n := range nodes {
		if err := Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

// ParseFragment parses markup as the content of a span element.
// Comments and doctype nodes are dropped.
func ParseFragment(markup string) ([]*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span}
	parsed, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}
	out := make([]*Node, 0, len(parsed))
	for _, p := range parsed {
		if n := FromHTML(p); n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// FromHTML converts an x/net/html node into a Node.
func FromHTML(h *html.Node) *Node {
	switch h.Type {
	case html.TextNode:
		return Text(h.Data)
	case html.ElementNode:
		n := &Node{Kind: ElementNode, Tag: h.Data}
		for _, a := range h.Attr {
			n.Attrs = append(n.Attrs, Attr{Key: a.Key, Val: a.Val})
		}
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			if cn := FromHTML(c); cn != nil {
				n.Children = append(n.Children, cn)
			}
		}
		return n
	default:
		return nil
	}
}
