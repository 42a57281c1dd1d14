package gallery

import (
	"errors"
	"fmt"
)

// Common sentinel errors for the gallery manager
var (
	// ErrNilSlot is returned when a Manager is constructed without a slot.
	ErrNilSlot = errors.New("photo slot cannot be nil")

	// ErrClosed is returned by Close when the manager was already closed.
	ErrClosed = errors.New("gallery manager closed")
)

// ManagerError wraps errors from the manager lifecycle with context.
// Commands never return errors; only construction and teardown do.
type ManagerError struct {
	// Operation is the operation that failed (e.g., "create_manager", "close")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ManagerError.
func (e *ManagerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gallery %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("gallery %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ManagerError) Unwrap() error {
	return e.Err
}
