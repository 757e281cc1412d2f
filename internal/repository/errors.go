package repository

import "errors"

// Shared repository errors.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry indicates a write violated a unique constraint.
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
)

// Per-resource aliases, so call sites read naturally.
var (
	ErrTemplateNotFound = ErrNotFound
	ErrAutoRoomNotFound = ErrNotFound
)
