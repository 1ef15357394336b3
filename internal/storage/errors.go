package storage

import "errors"

// Storage errors shared by all implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicatePosition is returned when recording an entry for a
	// slug that already holds an open position.
	ErrDuplicatePosition = errors.New("duplicate position: slug already has an open position")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
