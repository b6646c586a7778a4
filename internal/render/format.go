package render

import (
	"errors"
	"fmt"
	"html"

	"github.com/leapstack-labs/loglines/pkg/core"
)

// ErrFormatter wraps failures of the host's cell formatters.
var ErrFormatter = errors.New("formatter failed")

// formatHTML returns the host's HTML rendering of a measure cell.
// Failures degrade to the escaped raw value.
func formatHTML(f core.Formatter, cell core.Cell, field core.Field) (markup string, err error) {
	fallback := html.EscapeString(cell.String())
	if f == nil {
		return fallback, nil
	}
	defer func() {
		if r := recover(); r != nil {
			markup = fallback
			err = fmt.Errorf("%w: %s: %v", ErrFormatter, field.Name, r)
		}
	}()
	out, ferr := f.FormatCellAsHTML(cell, field)
	if ferr != nil {
		return fallback, fmt.Errorf("%w: %s: %w", ErrFormatter, field.Name, ferr)
	}
	return out, nil
}

// formatText returns the host's plain-text rendering of a dimension cell.
// Failures degrade to the raw value.
func formatText(f core.Formatter, cell core.Cell, field core.Field) (text string, err error) {
	fallback := cell.String()
	if f == nil {
		return fallback, nil
	}
	defer func() {
		if r := recover(); r != nil {
			text = fallback
			err = fmt.Errorf("%w: %s: %v", ErrFormatter, field.Name, r)
		}
	}()
	out, ferr := f.FormatCellAsText(cell)
	if ferr != nil {
		return fallback, fmt.Errorf("%w: %s: %w", ErrFormatter, field.Name, ferr)
	}
	return out, nil
}
