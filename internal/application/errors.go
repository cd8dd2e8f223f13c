package application

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnauthorized is returned when credentials are missing or wrong.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrForbidden is returned when the caller lacks the required role.
	ErrForbidden = errors.New("application: forbidden")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a unique attribute is taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidTransition is returned when a status change is not allowed
	// from the reservation's current status.
	ErrInvalidTransition = errors.New("application: invalid status transition")
)

// ValidationError collects per-field input problems so a caller can report
// them all at once.
type ValidationError struct {
	FieldErrors map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{FieldErrors: map[string]string{}}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.FieldErrors))
}

func (e *ValidationError) Add(field, message string) {
	if _, taken := e.FieldErrors[field]; !taken {
		e.FieldErrors[field] = message
	}
}

func (e *ValidationError) HasErrors() bool {
	return len(e.FieldErrors) > 0
}

// ErrOrNil returns e as an error when any field failed, otherwise nil.
func (e *ValidationError) ErrOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// ConflictError reports that a requested room window collides with an
// existing reservation.
type ConflictError struct {
	RoomID        string
	BlockingID    string
	BlockingTitle string
	Start         time.Time
	End           time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("room %s is already reserved from %s to %s by %q",
		e.RoomID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339), e.BlockingTitle)
}

// ErrorKind classifies an error for log labels.
func ErrorKind(err error) string {
	var validation *ValidationError
	var conflict *ConflictError
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &conflict):
		return "conflict"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	default:
		return "internal"
	}
}
