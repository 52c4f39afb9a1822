// Package logcollector collects the output of a monitored process into
// fixed-size batches of compressed lines and serves them over HTTP.
//
// Example usage:
//
//	cfg := logcollector.DefaultConfig()
//	cfg.Command = "tail"
//	cfg.Args = []string{"-F", "/var/log/syslog"}
//	if err := logcollector.Run(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// The store can also be used on its own:
//
//	st := logcollector.NewStore(5)
//	st.Add(payload)
//	batch, err := st.RetrieveFirst()
package logcollector

import (
	"context"

	"github.com/bft-labs/logcollector/pkg/codec"
	"github.com/bft-labs/logcollector/pkg/logcollector"
	"github.com/bft-labs/logcollector/pkg/store"
)

// Config holds the configuration of a collector.
type Config = logcollector.Config

// Option configures optional collector behavior.
type Option = logcollector.Option

// Store is the shared batching store.
type Store = store.Store

// Batch is one retrieved batch of payloads.
type Batch = store.Batch

// Codec compresses captured lines.
type Codec = codec.Codec

// Errors re-exported for errors.Is checks.
var (
	ErrNotFound       = store.ErrNotFound
	ErrInvalidMaxSize = store.ErrInvalidMaxSize
	ErrCorrupt        = codec.ErrCorrupt
	ErrInvalidConfig  = logcollector.ErrInvalidConfig
)

// DefaultConfig returns a Config with the CLI defaults.
func DefaultConfig() Config {
	return logcollector.DefaultConfig()
}

// NewStore creates a store holding at most maxSize payloads per batch.
// It panics if maxSize is less than 1; use store.New to get an error instead.
func NewStore(maxSize int) *Store {
	return store.MustNew(maxSize)
}

// NewCodec returns the codec registered under name ("" selects LZ4).
func NewCodec(name string) (Codec, error) {
	return codec.New(name)
}

// Run starts a collector and blocks until ctx is cancelled or the run
// crashes. It returns nil after a cancellation and the crash cause otherwise.
func Run(ctx context.Context, cfg Config, opts ...Option) error {
	c, err := logcollector.New(cfg, opts...)
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer c.Close()

	select {
	case <-ctx.Done():
		<-c.Done()
	case <-c.Done():
	}
	return c.Err()
}
