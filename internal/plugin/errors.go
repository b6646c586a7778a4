package plugin

import "errors"

var (
	// ErrMissingAnchor reports a container without a required anchor.
	ErrMissingAnchor = errors.New("missing anchor")

	// ErrNoData reports an update without a dataset.
	ErrNoData = errors.New("no data")
)
