package loader

import (
	"errors"
	"fmt"
)

// Diagnostic is a recoverable input problem. Loading continues past it.
type Diagnostic struct {
	Source string // file path or other origin
	Line   int    // 1-based line, 0 when not line oriented
	Team   string
	Err    error
}

func (d Diagnostic) Error() string {
	switch {
	case d.Line > 0:
		return fmt.Sprintf("%s:%d: %v", d.Source, d.Line, d.Err)
	case d.Source != "":
		return fmt.Sprintf("%s: %v", d.Source, d.Err)
	default:
		return d.Err.Error()
	}
}

func (d Diagnostic) Unwrap() error { return d.Err }

// Diagnostics collects the problems found while loading.
type Diagnostics []Diagnostic

// Count returns how many diagnostics match target via errors.Is.
func (ds Diagnostics) Count(target error) int {
	n := 0
	for _, d := range ds {
		if errors.Is(d.Err, target) {
			n++
		}
	}
	return n
}

// Err joins all diagnostics into one error, or returns nil.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	errs := make([]error, len(ds))
	for i, d := range ds {
		errs[i] = d
	}
	return errors.Join(errs...)
}
