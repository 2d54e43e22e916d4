package domain

import "errors"

var (
	// ErrNoSnapshot is returned when no usable snapshot has been persisted.
	ErrNoSnapshot = errors.New("no snapshot available")

	// ErrDocumentNotFound is returned by document stores for unknown keys.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrCorruptDocument is returned when a stored document cannot be decoded
	// and could not be moved aside.
	ErrCorruptDocument = errors.New("document is corrupt")

	// ErrToolNotFound indicates an unknown catalog id.
	ErrToolNotFound = errors.New("tool not found")
)
