package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/logcollector/pkg/log"
)

// FollowerConfig describes a tailed file.
type FollowerConfig struct {
	// Path is the file to follow. It may not exist yet.
	Path string

	// FromStart reads the existing contents instead of starting at the end.
	FromStart bool

	// MaxLineBytes is the longest line kept; longer lines are discarded.
	MaxLineBytes int
}

// Follower tails a file and pushes each complete line into a Sink.
// It survives truncation and remove-then-recreate rotation.
type Follower struct {
	cfg    FollowerConfig
	path   string
	sink   *Sink
	logger log.Logger

	file     *os.File
	offset   int64
	partial  []byte
	skipping bool
	buf      []byte

	// ready is closed once the watch is installed.
	ready chan struct{}
}

// NewFollower creates a follower for cfg.Path.
func NewFollower(cfg FollowerConfig, sink *Sink, logger log.Logger) *Follower {
	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = DefaultMaxLineBytes
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Follower{
		cfg:    cfg,
		path:   filepath.Clean(cfg.Path),
		sink:   sink,
		logger: logger,
		buf:    make([]byte, 32*1024),
		ready:  make(chan struct{}),
	}
}

// Path returns the followed file.
func (f *Follower) Path() string {
	return f.path
}

// Run follows the file until ctx is done.
func (f *Follower) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so rotation is seen even while the file is gone.
	dir := filepath.Dir(f.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	defer f.closeFile()

	if err := f.openFile(!f.cfg.FromStart); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	f.logger.Info("following file",
		log.String("path", f.path),
		log.Bool("from_start", f.cfg.FromStart),
	)
	close(f.ready)
	f.drain()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			switch {
			case event.Has(fsnotify.Create):
				if f.file != nil {
					f.drain()
					f.closeFile()
				}
				if err := f.openFile(false); err != nil {
					f.logger.Warn("reopen failed", log.String("path", f.path), log.Err(err))
					continue
				}
				f.drain()
			case event.Has(fsnotify.Write):
				f.drain()
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				f.drain()
				f.closeFile()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("watcher error", log.String("path", f.path), log.Err(err))
		}
	}
}

// openFile opens the followed file, positioned at its end when atEnd is set.
func (f *Follower) openFile(atEnd bool) error {
	file, err := os.Open(f.path)
	if err != nil {
		return err
	}

	var offset int64
	if atEnd {
		offset, err = file.Seek(0, io.SeekEnd)
		if err != nil {
			file.Close()
			return fmt.Errorf("seek %s: %w", f.path, err)
		}
	}

	f.file = file
	f.offset = offset
	f.partial = f.partial[:0]
	f.skipping = false
	return nil
}

func (f *Follower) closeFile() {
	if f.file != nil {
		f.file.Close()
		f.file = nil
	}
}

// drain reads everything appended since the last call.
func (f *Follower) drain() {
	if f.file == nil {
		if err := f.openFile(false); err != nil {
			return
		}
	}

	if info, err := f.file.Stat(); err == nil && info.Size() < f.offset {
		f.logger.Info("file truncated", log.String("path", f.path))
		if _, err := f.file.Seek(0, io.SeekStart); err != nil {
			f.logger.Warn("seek failed", log.String("path", f.path), log.Err(err))
			return
		}
		f.offset = 0
		f.partial = f.partial[:0]
		f.skipping = false
	}

	for {
		n, err := f.file.Read(f.buf)
		if n > 0 {
			f.offset += int64(n)
			f.consume(f.buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				f.logger.Warn("read failed", log.String("path", f.path), log.Err(err))
			}
			return
		}
	}
}

// consume splits chunk into lines, carrying any unterminated tail over.
// A line longer than MaxLineBytes is dropped whole.
func (f *Follower) consume(chunk []byte) {
	for len(chunk) > 0 {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			if f.skipping {
				return
			}
			f.partial = append(f.partial, chunk...)
			if len(f.partial) > f.cfg.MaxLineBytes {
				f.logger.Warn("discarding oversized line",
					log.String("path", f.path),
					log.Int("max_line_bytes", f.cfg.MaxLineBytes),
				)
				f.partial = f.partial[:0]
				f.skipping = true
			}
			return
		}

		line := chunk[:i]
		chunk = chunk[i+1:]
		if f.skipping {
			f.skipping = false
			continue
		}
		if len(f.partial) > 0 {
			f.partial = append(f.partial, line...)
			line = f.partial
		}
		if len(line) > f.cfg.MaxLineBytes {
			f.logger.Warn("discarding oversized line",
				log.String("path", f.path),
				log.Int("max_line_bytes", f.cfg.MaxLineBytes),
			)
		} else {
			f.sink.Push(f.path, bytes.TrimSuffix(line, []byte{'\r'}))
		}
		f.partial = f.partial[:0]
	}
}
