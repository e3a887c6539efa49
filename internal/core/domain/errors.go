package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingCode indicates a tender record without an external code;
	// such records are never persisted.
	ErrMissingCode = errors.New("tender code missing")

	// ErrIngestRunning indicates a range ingestion is already in flight.
	ErrIngestRunning = errors.New("ingestion already running")
)
