package demo

import "errors"

var (
	// ErrInvalidConfig is returned for unusable generator settings.
	ErrInvalidConfig = errors.New("invalid demo config")
	// ErrExists is returned when a target file is already present.
	ErrExists = errors.New("refusing to overwrite existing file")
)
