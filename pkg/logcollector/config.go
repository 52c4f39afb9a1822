package logcollector

import (
	"fmt"
	"time"

	"github.com/bft-labs/logcollector/internal/collector"
	"github.com/bft-labs/logcollector/internal/domain"
	"github.com/bft-labs/logcollector/pkg/codec"
)

// Defaults applied by DefaultConfig and SetDefaults.
const (
	DefaultMaxBatchSize = 5
	DefaultCommand      = "ping"
	DefaultListenAddr   = "0.0.0.0:3000"
)

// DefaultArgs are the arguments passed to DefaultCommand.
var DefaultArgs = []string{"localhost", "-c", "100"}

// Config holds the settings of a Collector.
type Config struct {
	// MaxBatchSize is the number of payloads per batch. Must be at least 1.
	MaxBatchSize int

	// Command and Args describe the monitored process. Command may be empty
	// when Follow lists at least one file.
	Command string
	Args    []string

	// Restart runs Command again after it exits, with backoff between
	// RestartDelay and MaxRestartDelay.
	Restart         bool
	RestartDelay    time.Duration
	MaxRestartDelay time.Duration

	// Follow lists files to tail in addition to the process output.
	Follow []string

	// FollowFromStart reads followed files from the beginning.
	FollowFromStart bool

	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// Codec names the payload codec (see codec.Names).
	Codec string

	// MaxLineBytes caps a single captured line.
	MaxLineBytes int

	// ShutdownTimeout bounds Stop.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the configuration used by the CLI when nothing is set.
func DefaultConfig() Config {
	return Config{
		MaxBatchSize:    DefaultMaxBatchSize,
		Command:         DefaultCommand,
		Args:            append([]string(nil), DefaultArgs...),
		RestartDelay:    collector.DefaultRestartDelay,
		MaxRestartDelay: collector.DefaultMaxRestartDelay,
		ListenAddr:      DefaultListenAddr,
		Codec:           codec.DefaultName,
		MaxLineBytes:    collector.DefaultMaxLineBytes,
		ShutdownTimeout: 30 * time.Second,
	}
}

// SetDefaults fills zero-valued optional fields. MaxBatchSize is left alone
// so that a missing capacity is reported by Validate.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.Codec == "" {
		c.Codec = d.Codec
	}
	if c.MaxLineBytes <= 0 {
		c.MaxLineBytes = d.MaxLineBytes
	}
	if c.RestartDelay <= 0 {
		c.RestartDelay = d.RestartDelay
	}
	if c.MaxRestartDelay <= 0 {
		c.MaxRestartDelay = d.MaxRestartDelay
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.MaxBatchSize < 1 {
		return fmt.Errorf("%w: max batch size must be greater than 0, got %d", domain.ErrInvalidConfig, c.MaxBatchSize)
	}
	if c.Command == "" && len(c.Follow) == 0 {
		return fmt.Errorf("%w: command or at least one follow path is required", domain.ErrInvalidConfig)
	}
	for _, p := range c.Follow {
		if p == "" {
			return fmt.Errorf("%w: empty follow path", domain.ErrInvalidConfig)
		}
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen address is required", domain.ErrInvalidConfig)
	}
	if c.MaxRestartDelay < c.RestartDelay {
		return fmt.Errorf("%w: max restart delay %v is below restart delay %v", domain.ErrInvalidConfig, c.MaxRestartDelay, c.RestartDelay)
	}
	known := false
	for _, n := range codec.Names() {
		if n == c.Codec {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: unknown codec %q", domain.ErrInvalidConfig, c.Codec)
	}
	return nil
}
