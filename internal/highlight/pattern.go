// Package highlight marks occurrences of a search term in rendered trees.
//
// Matching and splitting are pure functions over dom.Node; nothing here
// mutates an existing tree.
package highlight

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidPattern reports a search term that cannot be compiled.
var ErrInvalidPattern = errors.New("invalid highlight pattern")

// EscapeTerm makes free text safe to embed in a regular expression.
func EscapeTerm(term string) string {
	return regexp.QuoteMeta(term)
}

// Compile builds the match pattern for a search term.
// The empty term yields a nil pattern, meaning "no highlighting".
func Compile(term string, caseSensitive bool) (*regexp.Regexp, error) {
	if term == "" {
		return nil, nil
	}
	expr := EscapeTerm(term)
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, term, err)
	}
	return re, nil
}
