package controller

import "errors"

// ErrAttemptInProgress is returned by Submit when a bounded-wait connection
// attempt is already outstanding. Concurrent submissions are rejected rather
// than queued; the caller maps this to 409.
var ErrAttemptInProgress = errors.New("a connection attempt is already in progress")

// ValidationError reports user-correctable bad input, surfaced as 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError creates a validation error with the given reason.
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}
