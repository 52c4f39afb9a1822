// Package store provides the in-memory batching store used by logcollector.
//
// A [Store] accepts opaque payloads (typically compressed log lines) and
// groups them into batches of at most MaxSize payloads, in arrival order.
// Consumers pop whole batches from the front with [Store.RetrieveFirst].
//
// # Usage
//
//	s, err := store.New(20)
//	if err != nil {
//	    return err
//	}
//	s.Add(payload)
//
//	batch, err := s.RetrieveFirst()
//	if errors.Is(err, store.ErrNotFound) {
//	    // nothing buffered yet
//	}
//
// # Concurrency
//
// All methods are safe for concurrent use. Every call runs inside a single
// critical section guarding the whole batch sequence, so a batch is either
// returned in full or left in place. [Store.Clone] returns another handle on
// the same state; all handles are equally privileged.
//
// The store never logs, retries or persists anything. It is a best-effort,
// process-local buffer.
package store
