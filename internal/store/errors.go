package store

import "errors"

var (
	// ErrNotFound is returned when no record matches the lookup key.
	ErrNotFound = errors.New("record not found")

	// ErrIncompleteMetadata is returned when a record is moved to completed
	// while any youtube metadata column is still empty.
	ErrIncompleteMetadata = errors.New("cannot complete record with empty youtube metadata")

	// ErrInvalidTransition is returned for a deep dive status change the
	// state machine does not allow.
	ErrInvalidTransition = errors.New("invalid deep dive status transition")
)
