package collector

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/bft-labs/logcollector/pkg/log"
)

// DefaultMaxLineBytes caps a single captured line.
const DefaultMaxLineBytes = 1 << 20

const readBufferSize = 64 * 1024

// SupervisorConfig describes the monitored process.
type SupervisorConfig struct {
	// Command is the executable to run, looked up in PATH.
	Command string

	// Args are passed to Command as-is.
	Args []string

	// Restart starts the process again after it exits.
	Restart bool

	// RestartDelay and MaxRestartDelay bound the restart backoff.
	RestartDelay    time.Duration
	MaxRestartDelay time.Duration

	// MaxLineBytes is the longest line accepted from either stream.
	MaxLineBytes int
}

// Supervisor runs a child process and pushes every line it prints into a Sink.
type Supervisor struct {
	cfg    SupervisorConfig
	sink   *Sink
	logger log.Logger
}

// NewSupervisor creates a supervisor. Zero-valued limits fall back to defaults.
func NewSupervisor(cfg SupervisorConfig, sink *Sink, logger log.Logger) *Supervisor {
	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = DefaultMaxLineBytes
	}
	if cfg.RestartDelay <= 0 {
		cfg.RestartDelay = DefaultRestartDelay
	}
	if cfg.MaxRestartDelay <= 0 {
		cfg.MaxRestartDelay = DefaultMaxRestartDelay
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Supervisor{cfg: cfg, sink: sink, logger: logger}
}

// Run starts the process and captures its output until it exits.
//
// Without Restart, Run returns nil once the process has exited, whatever its
// exit status, and returns an error if it could not be started. With Restart,
// both exits and start failures are retried with backoff until ctx is done.
// Cancelling ctx kills the child.
func (s *Supervisor) Run(ctx context.Context) error {
	b := newBackoff(s.cfg.RestartDelay, s.cfg.MaxRestartDelay)

	for {
		started := time.Now()
		err := s.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !s.cfg.Restart {
			return err
		}
		if err != nil {
			s.logger.Error("process failed", log.Err(err))
		}

		// A process that stayed up for a while earns a fresh backoff.
		if time.Since(started) > s.cfg.MaxRestartDelay {
			b.reset()
		}
		if !b.wait(ctx) {
			return ctx.Err()
		}
		s.logger.Info("restarting process", log.String("cmd", s.cfg.Command))
	}
}

// runOnce executes the process a single time.
func (s *Supervisor) runOnce(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, s.cfg.Command, s.cfg.Args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", s.cfg.Command, err)
	}

	s.logger.Info("process started",
		log.String("cmd", s.cfg.Command),
		log.Strings("args", s.cfg.Args),
		log.Int("pid", cmd.Process.Pid),
	)

	// Both pipes must be drained before Wait closes them.
	var wg conc.WaitGroup
	wg.Go(func() { s.readLines(StreamStdout, stdout) })
	wg.Go(func() { s.readLines(StreamStderr, stderr) })
	wg.Wait()

	err = cmd.Wait()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return fmt.Errorf("wait %s: %w", s.cfg.Command, err)
	}

	s.logger.Info("process exited",
		log.String("cmd", s.cfg.Command),
		log.Int("exit_code", cmd.ProcessState.ExitCode()),
		log.String("status", cmd.ProcessState.String()),
	)
	return nil
}

// readLines pushes each line of r into the sink until EOF. A line longer
// than MaxLineBytes is skipped up to its newline; reading continues after it.
func (s *Supervisor) readLines(stream string, r io.Reader) {
	br := bufio.NewReaderSize(r, readBufferSize)
	limit := s.cfg.MaxLineBytes

	var (
		line     []byte
		skipping bool
		lines    int
		dropped  int
	)
	for {
		chunk, err := br.ReadSlice('\n')
		complete := err == nil
		if complete {
			chunk = chunk[:len(chunk)-1]
		}

		// One extra byte leaves room for a trailing '\r'.
		if !skipping {
			line = append(line, chunk...)
			if len(line) > limit+1 {
				skipping = true
				line = line[:0]
			}
		}

		if complete || (err == io.EOF && (len(line) > 0 || skipping)) {
			line = bytes.TrimSuffix(line, []byte{'\r'})
			if skipping || len(line) > limit {
				dropped++
				s.logger.Warn("discarding oversized line",
					log.String("stream", stream),
					log.Int("max_line_bytes", limit),
				)
			} else {
				s.sink.Push(stream, line)
				lines++
			}
			line = line[:0]
			skipping = false
		}

		if err == nil || errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if !errors.Is(err, io.EOF) {
			s.logger.Warn("stopped reading stream",
				log.String("stream", stream),
				log.Err(err),
			)
			// Keep the pipe drained so the child never blocks on a full buffer.
			_, _ = io.Copy(io.Discard, r)
		}
		break
	}

	s.logger.Debug("stream closed",
		log.String("stream", stream),
		log.Int("lines", lines),
		log.Int("dropped", dropped),
	)
}
