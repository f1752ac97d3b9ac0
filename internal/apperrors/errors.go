// Package apperrors defines the error categories surfaced by the services.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced record, zone, layout or region does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned when input fails a domain rule. Nothing is written.
	ErrValidation = errors.New("validation failed")

	// ErrZoneMismatch is returned when a record and a region belong to different temperature zones.
	ErrZoneMismatch = fmt.Errorf("%w: temperature zone mismatch", ErrValidation)
)

// ValidationError names the offending field. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFound wraps ErrNotFound with the kind and id of the missing entity.
func NotFound(kind string, id any) error {
	return fmt.Errorf("%s %v: %w", kind, id, ErrNotFound)
}
