package render

import (
	"math"
	"strconv"

	"github.com/leapstack-labs/loglines/internal/dom"
)

var sparkGlyphs = []rune("▁▂▃▄▅▆▇█")

// SparkGlyph returns the block glyph for a sparkline node's fraction.
// Missing or malformed fractions draw the midpoint.
func SparkGlyph(n *dom.Node) rune {
	raw, _ := n.Attr(AttrFraction)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		f = 0.5
	}
	f = math.Max(0, math.Min(1, f))
	idx := int(math.Round(f * float64(len(sparkGlyphs)-1)))
	return sparkGlyphs[idx]
}
