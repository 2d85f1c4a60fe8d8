package aggregate

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrEmptyInput is returned when a mean is requested over zero faults.
	ErrEmptyInput = errors.New("empty input")
	// ErrSizeMismatch is returned when teams have different fault counts.
	ErrSizeMismatch = errors.New("results vary in size")
	// ErrUnknownMode is returned for an unsupported scoring mode.
	ErrUnknownMode = errors.New("unknown scoring mode")
)
