package core

// PointerButton identifies the pointer button of an event.
type PointerButton int

// Pointer buttons.
const (
	PointerNone PointerButton = iota
	PointerPrimary
	PointerSecondary
)

// PointerEvent is the pointer activity that triggered an interaction.
// Coordinates are in the surface's units (pixels on the web, cells in a terminal).
type PointerEvent struct {
	X      float64
	Y      float64
	Button PointerButton
}

// DrillRequest asks the host to open its drill menu for a cell.
type DrillRequest struct {
	Field string
	Links []Link
	Event PointerEvent
}

// Formatter renders cells using the host's formatting rules.
type Formatter interface {
	FormatCellAsHTML(cell Cell, field Field) (string, error)
	FormatCellAsText(cell Cell) (string, error)
}

// DrillOpener opens the host's contextual drill menu.
type DrillOpener interface {
	OpenDrillMenu(req DrillRequest)
}

// Host is everything the engine consumes from its embedding environment.
type Host interface {
	Formatter
	DrillOpener
}
