package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all slot implementations.
var (
	// ErrSlotNotFound is returned when no payload was ever saved under a key.
	ErrSlotNotFound = errors.New("slot not found")

	// ErrSlotClosed is returned when a slot is used after Close.
	ErrSlotClosed = errors.New("slot closed")
)

// SlotError is a custom error type for backend failures with additional context.
type SlotError struct {
	Backend   string // The backend (e.g., "sqlite", "redis")
	Operation string // The operation that failed (e.g., "load", "save")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for SlotError.
func (e *SlotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s slot failed: %s: %v",
			e.Operation,
			e.Backend,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s slot failed: %s", e.Operation, e.Backend, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *SlotError) Unwrap() error {
	return e.Err
}

// NewSlotError creates a new SlotError with the given backend, operation, message, and wrapped error.
func NewSlotError(backend, operation, message string, err error) *SlotError {
	return &SlotError{
		Backend:   backend,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// IsNotFoundError checks if the error means the slot has never been written.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrSlotNotFound)
}
