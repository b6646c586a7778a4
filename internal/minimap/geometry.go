// Package minimap keeps a synthetic scrollbar in step with a scrolling view.
package minimap

import "math"

// DefaultMinThumbHeight is the smallest thumb drawn when no minimum is configured.
const DefaultMinThumbHeight = 20

// Metrics are the scroll and layout measurements of the content and the minimap track.
type Metrics struct {
	ScrollTop     float64
	ScrollHeight  float64
	ClientHeight  float64
	MinimapHeight float64
}

// MaxScroll is the largest valid scroll offset.
func (m Metrics) MaxScroll() float64 {
	return math.Max(0, m.ScrollHeight-m.ClientHeight)
}

// Scrollable reports whether the content overflows a minimap with positive height.
func (m Metrics) Scrollable() bool {
	return m.ScrollHeight > m.ClientHeight && m.MinimapHeight > 0
}

// Thumb is the viewport indicator drawn on the track.
type Thumb struct {
	Top      float64
	Height   float64
	Visible  bool
	Dragging bool
}

// ComputeThumb derives thumb geometry from metrics. A view that does not
// overflow, or a track without height, yields a hidden zero-height thumb.
func ComputeThumb(m Metrics, minThumb float64) Thumb {
	if !m.Scrollable() {
		return Thumb{}
	}
	height := math.Max(minThumb, m.ClientHeight/m.ScrollHeight*m.MinimapHeight)
	// A track shorter than the minimum gets a thumb filling it.
	height = math.Min(height, m.MinimapHeight)
	return Thumb{
		Top:     ThumbTop(m.ScrollTop, m, height),
		Height:  height,
		Visible: true,
	}
}

// ThumbTop places a thumb of the given height for a scroll offset.
func ThumbTop(scrollTop float64, m Metrics, height float64) float64 {
	maxScroll := m.MaxScroll()
	if maxScroll <= 0 {
		return 0
	}
	track := math.Max(0, m.MinimapHeight-height)
	return clamp(scrollTop/maxScroll*track, 0, track)
}

// ScrollTopForPointer maps a pointer position on the track to a scroll
// offset that centers the thumb on the pointer. The result always lies in
// [0, MaxScroll].
func ScrollTopForPointer(y float64, m Metrics, height float64) float64 {
	maxScroll := m.MaxScroll()
	track := m.MinimapHeight - height
	if maxScroll <= 0 || track <= 0 {
		return 0
	}
	frac := clamp((y-height/2)/track, 0, 1)
	return clamp(frac*maxScroll, 0, maxScroll)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
