package highlight

import "math"

// Layout is the geometry needed to place minimap markers.
type Layout struct {
	MinimapVisible bool
	ScrollHeight   float64
	MinimapHeight  float64
	MarkerHeight   float64

	// Offset returns the distance from the top of the content to the line at pos.
	Offset func(pos int) float64
}

// Marker is a minimap tick for a line containing a match.
type Marker struct {
	Line int
	Top  float64
}

// PlaceMarkers positions one marker per matched line.
// Nothing is placed when the minimap is hidden or the geometry is not positive;
// markers whose position is not finite are dropped.
func PlaceMarkers(lines []int, layout Layout) []Marker {
	if !layout.MinimapVisible || layout.ScrollHeight <= 0 || layout.MinimapHeight <= 0 || layout.Offset == nil {
		return nil
	}
	maxTop := math.Max(0, layout.MinimapHeight-layout.MarkerHeight)

	markers := make([]Marker, 0, len(lines))
	for _, pos := range lines {
		top := layout.Offset(pos) / layout.ScrollHeight * layout.MinimapHeight
		if math.IsNaN(top) || math.IsInf(top, 0) {
			continue
		}
		top = math.Max(0, math.Min(maxTop, top))
		markers = append(markers, Marker{Line: pos, Top: top})
	}
	return markers
}
