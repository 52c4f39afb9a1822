package logcollector

import (
	"github.com/bft-labs/logcollector/pkg/codec"
	"github.com/bft-labs/logcollector/pkg/log"
	"github.com/bft-labs/logcollector/pkg/store"
)

// Option configures optional behavior of a Collector.
type Option func(*options)

type options struct {
	logger       log.Logger
	codec        codec.Codec
	store        *store.Store
	eventHandler EventHandler
}

// WithLogger sets the structured logger. Without it nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCodec overrides the codec named in Config.Codec.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithStore makes the collector write into an existing store instead of
// creating one from Config.MaxBatchSize. The collector keeps its own handle.
func WithStore(st *store.Store) Option {
	return func(o *options) {
		o.store = st
	}
}

// WithEventHandler registers a handler for lifecycle events.
// Handlers are called synchronously and should return quickly.
func WithEventHandler(h EventHandler) Option {
	return func(o *options) {
		o.eventHandler = h
	}
}
