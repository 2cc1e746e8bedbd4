package errors

import "errors"

var (
	ErrNotFound = errors.New("wishlist not found")

	// ErrDuplicate reports an add of a service that is already present.
	ErrDuplicate = errors.New("service already in wishlist")
)
