package grid

import (
	"github.com/leapstack-labs/loglines/internal/minimap"
	"github.com/leapstack-labs/loglines/internal/plugin"
	"github.com/leapstack-labs/loglines/internal/render"
)

const defaultClientHeight = 600

// page is the browser-side container as last reported by the browser.
// Layout is deterministic: every line is LineHeight pixels high, so
// geometry is known as soon as a document is mounted.
type page struct {
	doc           *render.Document
	scrollTop     float64
	clientHeight  float64
	minimapHeight float64
	minimap       plugin.MinimapView
	scrollTarget  *float64
	onMount       func()
}

var _ plugin.Container = (*page)(nil)

func newPage(onMount func()) *page {
	return &page{
		clientHeight:  defaultClientHeight,
		minimapHeight: defaultClientHeight,
		onMount:       onMount,
	}
}

// observe records the geometry reported by the browser and reports whether
// the viewport changed size.
func (p *page) observe(s Signals) bool {
	resized := false
	if s.ClientHeight > 0 && s.ClientHeight != p.clientHeight {
		p.clientHeight = s.ClientHeight
		resized = true
	}
	if s.MinimapHeight > 0 && s.MinimapHeight != p.minimapHeight {
		p.minimapHeight = s.MinimapHeight
		resized = true
	}
	p.scrollTop = s.ScrollTop
	return resized
}

func (p *page) Has(anchor string) bool {
	switch anchor {
	case plugin.AnchorHeader, plugin.AnchorBody, plugin.AnchorMinimap:
		return true
	}
	return false
}

func (p *page) Mount(doc *render.Document) {
	p.doc = doc
	if p.onMount != nil {
		p.onMount()
	}
}

func (p *page) lineCount() int {
	if p.doc == nil || p.doc.Placeholder != nil {
		return 0
	}
	return len(p.doc.Lines)
}

func (p *page) Metrics() minimap.Metrics {
	return minimap.Metrics{
		ScrollTop:     p.scrollTop,
		ScrollHeight:  float64(p.lineCount() * LineHeight),
		ClientHeight:  p.clientHeight,
		MinimapHeight: p.minimapHeight,
	}
}

func (p *page) LineOffset(pos int) float64 {
	return float64(pos * LineHeight)
}

func (p *page) ScrollTo(top float64) {
	p.scrollTop = top
	p.scrollTarget = &top
}

func (p *page) ShowMinimap(view plugin.MinimapView) {
	p.minimap = view
}

// takeScroll returns and clears the scroll position the browser must apply.
func (p *page) takeScroll() *float64 {
	t := p.scrollTarget
	p.scrollTarget = nil
	return t
}
