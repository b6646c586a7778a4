package grid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/loglines/internal/dom"
	"github.com/leapstack-labs/loglines/internal/plugin"
	"github.com/leapstack-labs/loglines/internal/ui/resources"
	"github.com/leapstack-labs/loglines/pkg/core"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

func component(nodes ...*dom.Node) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return dom.RenderAll(w, nodes)
	})
}

func el(tag string, attrs []dom.Attr, children ...*dom.Node) *dom.Node {
	return dom.Element(tag, attrs, children...)
}

func attrs(kv ...string) []dom.Attr {
	out := make([]dom.Attr, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, dom.Attr{Key: kv[i], Val: kv[i+1]})
	}
	return out
}

// Page renders the full document for a first visit.
func Page(title string, isDev bool, m plugin.Manifest, sig Signals, view GridView) templ.Component {
	signals, err := json.Marshal(sig)
	if err != nil {
		signals = []byte("{}")
	}

	head := el("head", nil,
		el("meta", attrs("charset", "utf-8")),
		el("title", nil, dom.Text(title)),
		el("link", attrs("rel", "stylesheet", "href", resources.StaticPath(resources.Stylesheet))),
		el("script", attrs("type", "module", "src", datastarScript)),
	)

	app := el("div", attrs(
		"class", "ll-app",
		"data-signals", string(signals),
		"data-init", "@get('/updates')",
		"data-on:resize__window__debounce.100ms", "$clientHeight = document.getElementById('"+BodyID+"').clientHeight; $minimapHeight = $clientHeight; @post('/scroll')",
	),
		controlsNode(m, view),
		gridNode(view),
		el("div", attrs("id", DrillID, "class", "ll-drill")),
	)
	if isDev {
		app.Children = append(app.Children, el("div", attrs("data-init", "@get('/reload')")))
	}

	doc := el("html", attrs("lang", "en"), head, el("body", nil, app))
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!doctype html>\n"); err != nil {
			return err
		}
		return dom.Render(w, doc)
	})
}

func controlsNode(m plugin.Manifest, view GridView) *dom.Node {
	options := make([]*dom.Node, 0, len(view.FilterTargets))
	for _, t := range view.FilterTargets {
		a := attrs("value", t)
		if t == view.FilterField {
			a = append(a, dom.Attr{Key: "selected", Val: "selected"})
		}
		options = append(options, el("option", a, dom.Text(t)))
	}

	checkbox := func(signal, label string) *dom.Node {
		return el("label", nil,
			el("input", attrs("type", "checkbox", "data-bind:"+signal, "", "data-on:change", "@post('/toggle')")),
			dom.Text(" "+label),
		)
	}

	var toggles []*dom.Node
	for _, opt := range m.Options {
		switch opt.Key {
		case "show_row_numbers":
			toggles = append(toggles, checkbox("rowNumbers", opt.Label))
		case "show_measure_sparklines":
			toggles = append(toggles, checkbox("sparklines", opt.Label))
		}
	}

	children := []*dom.Node{
		el("input", attrs("type", "search", "placeholder", "Filter", "data-bind:filter", "", "data-on:input", "@post('/input/filter')")),
		el("select", attrs("data-bind:filterField", "", "data-on:change", "@post('/toggle')"), options...),
		checkbox("filterCase", "Aa"),
		el("input", attrs("type", "search", "placeholder", "Highlight", "data-bind:highlight", "", "data-on:input", "@post('/input/highlight')")),
		checkbox("highlightCase", "Aa"),
	}
	children = append(children, toggles...)
	children = append(children, el("button", attrs("data-on:click", "$filter = ''; $highlight = ''; @post('/clear')"), dom.Text("Clear")))
	return el("div", attrs("class", "ll-controls"), children...)
}

// Grid renders the patchable part of the page.
func Grid(view GridView) templ.Component {
	return component(gridNode(view))
}

func gridNode(view GridView) *dom.Node {
	var body []*dom.Node
	if view.Placeholder != nil {
		body = append(body, view.Placeholder)
	}
	body = append(body, view.Lines...)

	var header []*dom.Node
	if view.Header != nil {
		header = append(header, view.Header)
	}

	return el("div", attrs("id", GridID, "class", "ll-grid"),
		el("div", attrs("class", "ll-head"), header...),
		el("div", attrs("class", "ll-main"),
			el("div", attrs(
				"id", BodyID,
				"class", "ll-body",
				"data-on:scroll__throttle.100ms", "$scrollTop = el.scrollTop; @post('/scroll')",
				"data-on:click", "const f = evt.target.closest('[data-drill]'); if (f) { $line = +f.closest('[data-line]').dataset.line; $field = f.dataset.field; $x = evt.clientX; $y = evt.clientY; @post('/drill') }",
			), body...),
			minimapNode(view),
		),
		el("div", attrs("id", StatusID, "class", "ll-status"), dom.Text(statusText(view))),
	)
}

func minimapNode(view GridView) *dom.Node {
	a := attrs(
		"id", MinimapID,
		"class", "ll-minimap",
		"data-on:pointerdown", "$y = evt.offsetY; @post('/minimap/down')",
		"data-on:pointermove__window__throttle.30ms", "$dragging && ($y = evt.clientY - el.getBoundingClientRect().top, @post('/minimap/move'))",
		"data-on:pointerup__window", "$dragging && @post('/minimap/up')",
	)
	if !view.Minimap.Visible {
		return el("div", append(a, dom.Attr{Key: "hidden", Val: "hidden"}))
	}

	thumbClass := "ll-thumb"
	if view.Minimap.Thumb.Dragging {
		thumbClass += " dragging"
	}
	children := []*dom.Node{
		el("div", attrs("class", thumbClass, "style", fmt.Sprintf("top:%.1fpx;height:%.1fpx", view.Minimap.Thumb.Top, view.Minimap.Thumb.Height))),
	}
	for _, m := range view.Minimap.Markers {
		children = append(children, el("div", attrs(
			"class", "ll-marker",
			"data-line", strconv.Itoa(m.Line),
			"style", fmt.Sprintf("top:%.1fpx", m.Top),
		)))
	}
	return el("div", a, children...)
}

func statusText(view GridView) string {
	s := fmt.Sprintf("%d/%d rows", view.Stats.Shown, view.Stats.Total)
	if view.Matches.Term != "" {
		s += fmt.Sprintf(" · %d matches in %d lines", view.Matches.Matches, len(view.Matches.Lines))
	}
	if view.Stats.FilterErr != nil {
		s += " · filter failed, showing all rows"
	}
	return s
}

// DrillMenu renders the links of a drill request.
func DrillMenu(req core.DrillRequest) templ.Component {
	items := make([]*dom.Node, 0, len(req.Links))
	for _, l := range req.Links {
		label := l.Label
		if label == "" {
			label = l.URL
		}
		items = append(items, el("li", nil, el("a", attrs("href", l.URL, "target", "_blank"), dom.Text(label))))
	}
	return component(el("div", attrs(
		"id", DrillID,
		"class", "ll-drill open",
		"style", fmt.Sprintf("left:%.0fpx;top:%.0fpx", req.Event.X, req.Event.Y),
	),
		el("div", attrs("class", "ll-drill-title"), dom.Text(req.Field)),
		el("ul", nil, items...),
	))
}
