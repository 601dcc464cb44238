package apperr

import (
	"errors"
	"fmt"
)

// ErrValidation is returned when the input fails domain validation.
var ErrValidation = errors.New("validation error")

// ErrConflict indicates a concurrent write on the same order (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition indicates an illegal status edge.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrCourierUnavailable indicates the assignment target is unknown or not available.
var ErrCourierUnavailable = errors.New("courier unavailable")

// TransitionError names both ends of a rejected status change.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q", e.From, e.To)
}

// Unwrap makes errors.Is(err, ErrInvalidTransition) hold.
func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Validation wraps ErrValidation with a reason.
func Validation(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}
