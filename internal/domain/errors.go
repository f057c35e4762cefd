// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Error categories shared by every layer. Specific errors wrap one of these
// so callers can classify failures with errors.Is.
var (
	// ErrValidation is returned when input is malformed or a domain entity
	// fails validation. It is often wrapped with a more specific error.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an operation contradicts current state,
	// such as starting a duplicate recitation or completing a finished review.
	ErrConflict = errors.New("conflict")

	// ErrForbidden is returned when the requester does not own the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidID is returned when an ID is malformed or empty.
	ErrInvalidID = errors.New("invalid ID")
)

// ValidationError describes a validation failure for a single field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error. A ValidationError without an explicit
// cause still matches ErrValidation.
func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrValidation
	}
	return e.Err
}

// Is reports whether target is ErrValidation so that every ValidationError
// classifies as a validation failure regardless of its cause.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
