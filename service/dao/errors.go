package dao

import "errors"

// Sentinel DAO errors; callers detect them via errors.Is.
var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID indicates that the supplied key is empty.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when the caller attempts to persist nil.
	ErrNilEntity = errors.New("dao: nil entity")

	// ErrClosed is returned by storage used after Close.
	ErrClosed = errors.New("dao: closed")
)
