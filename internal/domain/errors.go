package domain

import (
	"errors"
	"strings"
)

// Sentinel errors shared across services and repositories. Delivery maps
// these to HTTP status codes and error envelope codes.
var (
	// ErrNotFound is returned when an event, buyer, or ticket does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientInventory is returned when a reservation asks for more
	// seats than the event has left.
	ErrInsufficientInventory = errors.New("insufficient inventory")

	// ErrEventFinished is returned when a reservation is attempted against an
	// event that has already been marked finished.
	ErrEventFinished = errors.New("event finished")
)

// ValidationError carries one message per failed rule on a request.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// NewValidationError returns a ValidationError with the given messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}
