package render

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/leapstack-labs/loglines/internal/state"
	"github.com/leapstack-labs/loglines/pkg/core"
)

// ErrFilter reports that the filter predicate could not be evaluated.
var ErrFilter = errors.New("filter failed")

// FilterSpec selects rows by field content.
type FilterSpec struct {
	Field         string // state.FilterAll or a field name
	Text          string
	CaseSensitive bool
}

// Active reports whether the spec filters anything.
func (s FilterSpec) Active() bool {
	return s.Text != ""
}

// Filter returns the original indices of the rows kept by spec, in source order.
// An inactive spec keeps every row. The dataset is never modified.
func Filter(rows []core.Row, fields []core.Field, spec FilterSpec) (indices []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			indices = nil
			err = fmt.Errorf("%w: %v", ErrFilter, r)
		}
	}()

	indices = make([]int, 0, len(rows))
	if !spec.Active() {
		for i := range rows {
			indices = append(indices, i)
		}
		return indices, nil
	}

	fold := cases.Fold()
	needle := spec.Text
	if !spec.CaseSensitive {
		needle = fold.String(needle)
	}

	targets := fields
	if spec.Field != "" && spec.Field != state.FilterAll {
		targets = nil
		for _, f := range fields {
			if f.Name == spec.Field {
				targets = append(targets, f)
			}
		}
	}

	for i, row := range rows {
		if row == nil {
			continue
		}
		for _, f := range targets {
			hay := row[f.Name].String()
			if !spec.CaseSensitive {
				hay = fold.String(hay)
			}
			if strings.Contains(hay, needle) {
				indices = append(indices, i)
				break
			}
		}
	}
	return indices, nil
}
