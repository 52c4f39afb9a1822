package logcollector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/logcollector/internal/app"
	"github.com/bft-labs/logcollector/internal/collector"
	"github.com/bft-labs/logcollector/internal/domain"
	"github.com/bft-labs/logcollector/internal/server"
	"github.com/bft-labs/logcollector/pkg/codec"
	"github.com/bft-labs/logcollector/pkg/log"
	"github.com/bft-labs/logcollector/pkg/store"
)

// Collector captures process output and followed files into a batching
// store and serves it over HTTP. Use New to create one, then Start.
type Collector struct {
	config    Config
	lifecycle *app.Lifecycle
	store     *store.Store
	codec     codec.Codec
	ownsCodec bool
	logger    log.Logger

	mu     sync.RWMutex
	server *server.Server
	done   chan struct{}
	err    error
}

// New creates a Collector in StateStopped. It returns an error wrapping
// ErrInvalidConfig if cfg is invalid.
func New(cfg Config, opts ...Option) (*Collector, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg.SetDefaults()
	if o.store != nil {
		cfg.MaxBatchSize = o.store.MaxSize()
	}
	if o.codec != nil {
		cfg.Codec = o.codec.Name()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	c := o.codec
	if c == nil {
		var err error
		if c, err = codec.New(cfg.Codec); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
		}
	}

	var st *store.Store
	if o.store != nil {
		st = o.store.Clone()
	} else {
		var err error
		if st, err = store.New(cfg.MaxBatchSize); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
		}
	}

	done := make(chan struct{})
	close(done)

	return &Collector{
		config:    cfg,
		lifecycle: app.NewLifecycle(logger, eventEmitter{handler: o.eventHandler}),
		store:     st,
		codec:     c,
		ownsCodec: o.codec == nil,
		logger:    logger,
		done:      done,
	}, nil
}

// Start binds the HTTP listener and starts the producers in the background.
// It returns ErrAlreadyRunning if the collector is running, or the bind
// error if the listen address is unavailable. ctx bounds the lifetime of
// the run; cancelling it has the same effect as Stop without the wait.
func (c *Collector) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := c.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	srv := server.New(c.config.ListenAddr, c.store.Clone(), c.codec, c.logger)
	if err := srv.Listen(); err != nil {
		c.logger.Error("http listen failed", log.Err(err))
		_ = c.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		return err
	}
	c.server = srv

	runCtx, cancel := context.WithCancel(ctx)
	c.lifecycle.SetCancel(cancel)

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return srv.Run(gctx) })

	if c.config.Command != "" {
		sup := collector.NewSupervisor(collector.SupervisorConfig{
			Command:         c.config.Command,
			Args:            c.config.Args,
			Restart:         c.config.Restart,
			RestartDelay:    c.config.RestartDelay,
			MaxRestartDelay: c.config.MaxRestartDelay,
			MaxLineBytes:    c.config.MaxLineBytes,
		}, c.newSink(), c.logger)
		g.Go(func() error { return sup.Run(gctx) })
	}

	for _, path := range c.config.Follow {
		f := collector.NewFollower(collector.FollowerConfig{
			Path:         path,
			FromStart:    c.config.FollowFromStart,
			MaxLineBytes: c.config.MaxLineBytes,
		}, c.newSink(), c.logger)
		g.Go(func() error { return f.Run(gctx) })
	}

	done := make(chan struct{})
	c.done = done
	c.err = nil

	c.lifecycle.Go(func() {
		defer close(done)
		defer cancel()

		if err := c.lifecycle.TransitionTo(app.StateRunning, "producers started"); err != nil {
			c.logger.Debug("stopped before running", log.Err(err))
		}

		err := g.Wait()
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Ended through ctx rather than Stop.
			if c.lifecycle.TransitionTo(app.StateStopping, "context done") == nil {
				_ = c.lifecycle.TransitionTo(app.StateStopped, "context done")
			}
			return
		}
		c.logger.Error("collector error", log.Err(err))
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		// Stop may already own the transition out of Running.
		_ = c.lifecycle.TransitionTo(app.StateCrashed, err.Error())
	})

	return nil
}

func (c *Collector) newSink() *collector.Sink {
	return collector.NewSink(c.store.Clone(), c.codec, c.logger)
}

// Stop cancels the producers and the HTTP server and waits for them, up to
// Config.ShutdownTimeout. Buffered batches stay in the store.
// Returns ErrNotRunning if not running, ErrShutdownTimeout if forced.
func (c *Collector) Stop() error {
	c.mu.Lock()
	if !c.lifecycle.CanStop() {
		c.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := c.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	c.lifecycle.Cancel()
	err := c.lifecycle.WaitWithTimeout(c.config.ShutdownTimeout)

	if err != nil {
		_ = c.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = c.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

// Close stops the collector if it is running and releases the resources of
// a codec created by New. The collector must not be started again.
func (c *Collector) Close() error {
	var err error
	if c.lifecycle.CanStop() {
		err = c.Stop()
	}
	if !c.ownsCodec {
		return err
	}
	if closer, ok := c.codec.(io.Closer); ok {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (c *Collector) Status() State {
	return c.lifecycle.State()
}

// Done returns a channel closed when the current run ends, either through
// Stop, context cancellation, or a fatal error. Before the first Start the
// channel is already closed.
func (c *Collector) Done() <-chan struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.done
}

// Err returns the error that crashed the last run, if any.
func (c *Collector) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Store returns a handle on the collector's store.
func (c *Collector) Store() *store.Store {
	return c.store.Clone()
}

// Codec returns the payload codec.
func (c *Collector) Codec() codec.Codec {
	return c.codec
}

// Addr returns the HTTP address, resolved to the bound port once started.
func (c *Collector) Addr() string {
	c.mu.RLock()
	srv := c.server
	c.mu.RUnlock()
	if srv == nil {
		return c.config.ListenAddr
	}
	return srv.Addr()
}
