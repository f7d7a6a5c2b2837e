package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when a snapshot is not found.
	ErrNotFound = errors.New("snapshot not found")

	// ErrInvalidID is returned for identifiers that are not snapshot IDs.
	ErrInvalidID = errors.New("invalid snapshot ID")
)
