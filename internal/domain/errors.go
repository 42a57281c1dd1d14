package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")
)
