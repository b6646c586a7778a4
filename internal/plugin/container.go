package plugin

import (
	"github.com/leapstack-labs/loglines/internal/highlight"
	"github.com/leapstack-labs/loglines/internal/minimap"
	"github.com/leapstack-labs/loglines/internal/render"
)

// Anchors a container must provide.
const (
	AnchorHeader  = "header"
	AnchorBody    = "body"
	AnchorMinimap = "minimap"
)

// RequiredAnchors lists the anchors checked by Create and UpdateAsync.
var RequiredAnchors = []string{AnchorHeader, AnchorBody, AnchorMinimap}

// Container is the surface a plugin draws into.
type Container interface {
	// Has reports whether the named anchor exists.
	Has(anchor string) bool

	// Mount replaces the displayed header and lines with doc.
	Mount(doc *render.Document)

	// Metrics returns the scroll geometry as of the last layout pass.
	Metrics() minimap.Metrics

	// LineOffset returns the distance from the top of the content to line pos.
	LineOffset(pos int) float64

	ScrollTo(top float64)

	ShowMinimap(view MinimapView)
}

// ChromeBuilder is implemented by containers that draw static controls.
type ChromeBuilder interface {
	BuildChrome(m Manifest)
}

// MinimapView is what a container draws on the minimap track.
type MinimapView struct {
	Visible bool
	Thumb   minimap.Thumb
	Markers []highlight.Marker
}

func missingAnchors(c Container) []string {
	var missing []string
	for _, a := range RequiredAnchors {
		if !c.Has(a) {
			missing = append(missing, a)
		}
	}
	return missing
}

// scroller adapts the plugin's container to minimap.Scroller.
type scroller struct {
	p *Plugin
}

func (s scroller) Metrics() minimap.Metrics {
	if s.p.container == nil {
		return minimap.Metrics{}
	}
	return s.p.container.Metrics()
}

func (s scroller) ScrollTo(top float64) {
	if s.p.container != nil {
		s.p.container.ScrollTo(top)
	}
}
