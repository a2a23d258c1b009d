package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when creating a user whose username or
	// email is already taken. Under concurrent registrations the storage
	// layer guarantees exactly one create succeeds; every loser observes
	// this error.
	ErrDuplicate = errors.New("username or email already exists")
)
