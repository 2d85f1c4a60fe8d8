package report

import "errors"

// Sentinel kinds for report errors.
var (
	ErrUnknownFormat = errors.New("unknown output format")
)
