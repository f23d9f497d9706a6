package store

import "errors"

// Predefined errors for the store layer.
var (
	// ErrConflict means a uniqueness constraint rejected the write.
	ErrConflict = errors.New("conflict")

	// ErrNotFound indicates that a requested row does not exist.
	ErrNotFound = errors.New("resource not found")
)
