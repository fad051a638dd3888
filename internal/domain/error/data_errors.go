package error

import "errors"

// Document store domain errors.
var (
	// ErrDataNotFound is returned when no aggregate exists for a user.
	// Callers generally react by creating the seeded default document.
	ErrDataNotFound = errors.New("user data not found")
)
