package loader

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrParse marks a record that could not be parsed. Such records are
	// skipped and reported as diagnostics.
	ErrParse = errors.New("parse error")
	// ErrMissingTeamResult marks a rostered team without a result file.
	ErrMissingTeamResult = errors.New("missing team result")
	// ErrMissingFaultResult marks a graded fault the team did not answer.
	ErrMissingFaultResult = errors.New("missing fault result")
	// ErrInvalidAnswer is returned when a ground-truth file is unusable.
	ErrInvalidAnswer = errors.New("invalid answer file")
)
