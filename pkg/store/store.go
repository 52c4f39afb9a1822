package store

import (
	"fmt"
	"sync"
)

// Store groups payloads into bounded batches and hands them out oldest first.
//
// A Store value is a handle. Copies made with Clone share the same batches
// and lock; the zero value is not usable, create stores with New.
type Store struct {
	maxSize int
	shared  *state
}

// state is the mutable part shared by every handle.
type state struct {
	mu      sync.Mutex
	batches []Batch
}

// Stats is a point-in-time view of the store contents.
type Stats struct {
	Batches  int `json:"batches"`
	Payloads int `json:"payloads"`
	Bytes    int `json:"bytes"`
	MaxSize  int `json:"max_size"`
}

// New creates an empty store whose batches hold at most maxSize payloads.
// It returns ErrInvalidMaxSize if maxSize is less than 1.
func New(maxSize int) (*Store, error) {
	if maxSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxSize, maxSize)
	}
	return &Store{
		maxSize: maxSize,
		shared:  &state{},
	}, nil
}

// MustNew is like New but panics on an invalid max size.
func MustNew(maxSize int) *Store {
	s, err := New(maxSize)
	if err != nil {
		panic(err)
	}
	return s
}

// MaxSize returns the batch capacity fixed at construction.
func (s *Store) MaxSize() int {
	return s.maxSize
}

// Add places payload in the first batch that still has room, scanning from
// the front, or in a new batch at the back when every batch is full.
//
// The store takes ownership of payload; callers must not modify it afterwards.
func (s *Store) Add(payload []byte) {
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()

	batches := s.shared.batches
	for i := range batches {
		if len(batches[i]) < s.maxSize {
			batches[i] = append(batches[i], payload)
			return
		}
	}

	batch := make(Batch, 1, s.maxSize)
	batch[0] = payload
	s.shared.batches = append(batches, batch)
}

// RetrieveFirst removes the oldest batch and returns it.
// It returns ErrNotFound when the store is empty.
//
// The returned batch is owned by the caller and is no longer reachable from
// any handle.
func (s *Store) RetrieveFirst() (Batch, error) {
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()

	if len(s.shared.batches) == 0 {
		return nil, ErrNotFound
	}

	first := s.shared.batches[0]
	s.shared.batches[0] = nil
	s.shared.batches = s.shared.batches[1:]
	if len(s.shared.batches) == 0 {
		// Drop the backing array so a drained store releases its memory.
		s.shared.batches = nil
	}
	return first, nil
}

// FlushAll appends an empty batch as a boundary marker.
// It returns ErrNotFound when the store is empty.
//
// The marker is itself eligible for Add, so the next payload may land in it
// once every earlier batch is full.
func (s *Store) FlushAll() error {
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()

	if len(s.shared.batches) == 0 {
		return ErrNotFound
	}

	s.shared.batches = append(s.shared.batches, make(Batch, 0, s.maxSize))
	return nil
}

// Clone returns a new handle on the same underlying batches.
// Nothing is copied: adds and retrievals through either handle are visible
// to both.
func (s *Store) Clone() *Store {
	return &Store{
		maxSize: s.maxSize,
		shared:  s.shared,
	}
}

// Stats returns the current batch and payload counts.
func (s *Store) Stats() Stats {
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()

	st := Stats{
		Batches: len(s.shared.batches),
		MaxSize: s.maxSize,
	}
	for _, b := range s.shared.batches {
		st.Payloads += len(b)
		st.Bytes += b.Bytes()
	}
	return st
}
