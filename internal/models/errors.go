package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the repository and workflow layers. Handlers
// map these to HTTP statuses; everything unmatched surfaces as a 500.
var (
	// ErrNotFound means a referenced entity does not exist in the record store.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyApplied means an application for the (user, job) pair exists.
	ErrAlreadyApplied = errors.New("application already exists")
	// ErrUnavailable means a required backend could not be reached.
	ErrUnavailable = errors.New("backend unavailable")
)

// ValidationError reports a failed field-level validation. It is detected
// before any mutation is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsInvalidArgument reports whether err is a field-validation failure.
func IsInvalidArgument(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
