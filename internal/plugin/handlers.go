package plugin

import (
	"github.com/leapstack-labs/loglines/internal/highlight"
	"github.com/leapstack-labs/loglines/internal/minimap"
	"github.com/leapstack-labs/loglines/internal/render"
	"github.com/leapstack-labs/loglines/internal/state"
	"github.com/leapstack-labs/loglines/pkg/core"
)

// FilterInput sets the filter text once typing pauses, then renders.
func (p *Plugin) FilterInput(text string) {
	p.filterIn.Trigger(func() {
		p.vs.FilterText = text
		p.Render()
	})
}

// HighlightInput sets the highlight term once typing pauses, then highlights.
func (p *Plugin) HighlightInput(text string) {
	p.highlightIn.Trigger(func() {
		p.vs.HighlightText = text
		p.Highlight()
	})
}

// SetFilterField selects the field the filter applies to.
func (p *Plugin) SetFilterField(name string) {
	p.vs.SetFilterField(name)
	p.Render()
}

// SetFilterCaseSensitive toggles case-sensitive filtering.
func (p *Plugin) SetFilterCaseSensitive(on bool) {
	p.vs.FilterCaseSensitive = on
	p.Render()
}

// SetHighlightCaseSensitive toggles case-sensitive highlighting.
func (p *Plugin) SetHighlightCaseSensitive(on bool) {
	p.vs.HighlightCaseSensitive = on
	p.Highlight()
}

// ToggleRowNumbers shows or hides the row-number prefix.
func (p *Plugin) ToggleRowNumbers(on bool) {
	p.vs.ShowRowNumbers = on
	p.Render()
}

// ToggleSparklines shows or hides measure sparklines.
func (p *Plugin) ToggleSparklines(on bool) {
	p.vs.SetShowSparklines(on)
	p.Render()
}

// Clear cancels pending input, resets filter and highlight, and renders immediately.
func (p *Plugin) Clear() {
	p.filterIn.Cancel()
	p.highlightIn.Cancel()
	p.vs.ClearInputs()
	p.Render()
}

// Drill opens the host drill menu for a field of the line at pos.
func (p *Plugin) Drill(pos int, field string, ev core.PointerEvent) error {
	err := p.doc.Drill(pos, field, ev, p.host)
	if err != nil {
		p.logger.Debug("drill ignored", "line", pos, "field", field, "error", err)
	}
	return err
}

// MinimapPointerDown starts a minimap drag at track position y.
func (p *Plugin) MinimapPointerDown(y float64) bool {
	if p.container == nil {
		return false
	}
	started := p.mm.PointerDown(y)
	if started {
		p.showMinimap()
	}
	return started
}

// MinimapPointerMove forwards a window-level pointer move.
func (p *Plugin) MinimapPointerMove(y float64) {
	if p.container == nil {
		return
	}
	p.hub.Move(y)
	p.showMinimap()
}

// MinimapPointerUp forwards a window-level pointer release.
func (p *Plugin) MinimapPointerUp() {
	if p.container == nil {
		return
	}
	p.hub.Up()
	p.showMinimap()
}

// Scrolled syncs the minimap after the content scrolled.
func (p *Plugin) Scrolled() {
	if p.container == nil {
		return
	}
	p.mm.OnScroll()
	p.showMinimap()
}

// Resized recomputes minimap geometry and markers after the next layout pass.
func (p *Plugin) Resized() {
	if p.container == nil {
		return
	}
	gen := p.renderGen
	p.frames.Request(gen, func() {
		if p.rendering {
			return
		}
		p.mm.Refresh()
		p.placeMarkers()
	})
}

// View returns a copy of the current view state.
func (p *Plugin) View() *state.ViewState {
	return p.vs.Clone()
}

// Document returns the current document.
func (p *Plugin) Document() *render.Document {
	return &p.doc
}

// Matches returns the result of the last highlight pass.
func (p *Plugin) Matches() highlight.Result {
	return p.result
}

// Markers returns the minimap markers of the last highlight pass.
func (p *Plugin) Markers() []highlight.Marker {
	return p.markers
}

// Thumb returns the current minimap thumb.
func (p *Plugin) Thumb() minimap.Thumb {
	return p.mm.Thumb()
}

// Dragging reports whether a minimap drag is in progress.
func (p *Plugin) Dragging() bool {
	return p.vs.Dragging
}

// PendingFrames returns the number of deferred callbacks waiting for layout.
func (p *Plugin) PendingFrames() int {
	return p.frames.Pending()
}
