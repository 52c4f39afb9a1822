package collector

import (
	"sync/atomic"

	"github.com/bft-labs/logcollector/pkg/codec"
	"github.com/bft-labs/logcollector/pkg/log"
	"github.com/bft-labs/logcollector/pkg/store"
)

// Stream names attached to captured lines.
const (
	StreamStdout = "stdout"
	StreamStderr = "stderr"
)

// Sink compresses lines and adds them to a store.
// It is safe for concurrent use by several producers.
type Sink struct {
	store  *store.Store
	codec  codec.Codec
	logger log.Logger

	lines atomic.Int64
	bytes atomic.Int64
}

// NewSink creates a sink writing into st. Each producer should pass its own
// handle (st.Clone()) so ownership stays explicit.
func NewSink(st *store.Store, c codec.Codec, logger log.Logger) *Sink {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Sink{store: st, codec: c, logger: logger}
}

// Push compresses line and adds it to the store. line is not retained, so
// callers may reuse the buffer.
func (s *Sink) Push(source string, line []byte) {
	s.logger.Debug("captured line",
		log.String("source", source),
		log.Bytes("line", line),
	)

	s.store.Add(s.codec.Compress(line))
	s.lines.Add(1)
	s.bytes.Add(int64(len(line)))
}

// Lines returns the number of lines pushed so far.
func (s *Sink) Lines() int64 {
	return s.lines.Load()
}

// Bytes returns the uncompressed size of all lines pushed so far.
func (s *Sink) Bytes() int64 {
	return s.bytes.Load()
}
