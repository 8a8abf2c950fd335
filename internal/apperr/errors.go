// Package apperr defines the failure kinds surfaced to callers of the core.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput marks an unreadable stream or a row of the wrong shape
	ErrMalformedInput = errors.New("malformed input")
	// ErrInvalidArgument marks a caller contract violation (threshold, problem type, period)
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound marks an absent vessel or an empty threshold query result
	ErrNotFound = errors.New("not found")
)

// MalformedInput wraps ErrMalformedInput with context
func MalformedInput(format string, args ...any) error {
	return wrap(ErrMalformedInput, format, args...)
}

// InvalidArgument wraps ErrInvalidArgument with context
func InvalidArgument(format string, args ...any) error {
	return wrap(ErrInvalidArgument, format, args...)
}

// NotFound wraps ErrNotFound with context
func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
