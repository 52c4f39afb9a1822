package store

import "errors"

var (
	// ErrInvalidMaxSize is returned by New when the batch capacity is below one.
	ErrInvalidMaxSize = errors.New("store: max size must be greater than 0")

	// ErrNotFound is returned when the store holds no batches.
	// Pollers should treat it as "no data yet".
	ErrNotFound = errors.New("no data found")
)
