package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStaleStatus reports a conditional status update that matched
	// no document because the stored status changed underneath it.
	ErrStaleStatus = errors.New("booking status changed concurrently")
)
