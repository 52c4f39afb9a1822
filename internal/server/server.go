// Package server exposes the batching store over HTTP.
//
// Routes:
//
//	GET  /            static description
//	GET  /logs        pop the oldest batch as UTF-8 strings
//	GET  /logs/raw    pop the oldest batch as base64 payloads
//	POST /logs/flush  append an empty boundary batch
//	GET  /stats       store counters
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bft-labs/logcollector/pkg/codec"
	"github.com/bft-labs/logcollector/pkg/log"
	"github.com/bft-labs/logcollector/pkg/store"
)

// Description is the body served at the root path.
const Description = "Log Collector API - Use GET /logs to retrieve logs"

// DefaultShutdownTimeout bounds graceful shutdown in Run.
const DefaultShutdownTimeout = 5 * time.Second

// LogResponse is the envelope returned by GET /logs.
// Successful responses always carry "logs", an empty batch included;
// error responses never do.
type LogResponse struct {
	Success bool     `json:"success"`
	Logs    []string `json:"logs,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r LogResponse) MarshalJSON() ([]byte, error) {
	type wire struct {
		Success bool      `json:"success"`
		Logs    *[]string `json:"logs,omitempty"`
		Error   string    `json:"error,omitempty"`
	}
	w := wire{Success: r.Success, Error: r.Error}
	if r.Success {
		logs := r.Logs
		if logs == nil {
			logs = []string{}
		}
		w.Logs = &logs
	}
	return json.Marshal(w)
}

// RawResponse is the envelope returned by GET /logs/raw.
// Payloads are decompressed but otherwise untouched; JSON encodes them as base64.
type RawResponse struct {
	Success  bool     `json:"success"`
	Payloads [][]byte `json:"payloads,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// MarshalJSON implements json.Marshaler with the same rule as LogResponse.
func (r RawResponse) MarshalJSON() ([]byte, error) {
	type wire struct {
		Success  bool      `json:"success"`
		Payloads *[][]byte `json:"payloads,omitempty"`
		Error    string    `json:"error,omitempty"`
	}
	w := wire{Success: r.Success, Error: r.Error}
	if r.Success {
		payloads := r.Payloads
		if payloads == nil {
			payloads = [][]byte{}
		}
		w.Payloads = &payloads
	}
	return json.Marshal(w)
}

// Server serves the store. Each request takes its own view of the store
// through the handle passed to New.
type Server struct {
	addr   string
	store  *store.Store
	codec  codec.Codec
	logger log.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New creates a server for st listening on addr once Run is called.
func New(addr string, st *store.Store, c codec.Codec, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Server{
		addr:   addr,
		store:  st,
		codec:  c,
		logger: logger,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /logs", s.handleLogs)
	mux.HandleFunc("GET /logs/raw", s.handleRaw)
	mux.HandleFunc("POST /logs/flush", s.handleFlush)
	mux.HandleFunc("GET /stats", s.handleStats)
	return mux
}

// Addr returns the bound address once Run is listening, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Listen binds the listen address without serving, so bind errors surface
// before Run. Calling it again after a successful bind is a no-op.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.listener = ln
	return nil
}

// Run serves until ctx is done, then shuts down gracefully. It calls Listen
// first if needed.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("http server listening", log.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return ctx.Err()
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(Description))
}

// handleLogs pops one batch. Payloads that fail to decompress or are not
// valid UTF-8 are left out of the response.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	batch, err := s.store.RetrieveFirst()
	if err != nil {
		s.writeJSON(w, statusFor(err), LogResponse{Error: err.Error()})
		return
	}

	payloads := s.decode(batch)
	logs := make([]string, 0, len(payloads))
	for _, p := range payloads {
		if !utf8.Valid(p) {
			continue
		}
		logs = append(logs, string(p))
	}
	if dropped := len(payloads) - len(logs); dropped > 0 {
		s.logger.Debug("dropped non-utf8 payloads", log.Int("count", dropped))
	}

	s.writeJSON(w, http.StatusOK, LogResponse{Success: true, Logs: logs})
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	batch, err := s.store.RetrieveFirst()
	if err != nil {
		s.writeJSON(w, statusFor(err), RawResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, RawResponse{Success: true, Payloads: s.decode(batch)})
}

func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	if err := s.store.FlushAll(); err != nil {
		s.writeJSON(w, statusFor(err), LogResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Stats())
}

// decode decompresses every payload in batch, skipping corrupt ones.
func (s *Server) decode(batch store.Batch) [][]byte {
	out := make([][]byte, 0, batch.Len())
	for i, p := range batch {
		raw, err := s.codec.Decompress(p)
		if err != nil {
			s.logger.Warn("dropping undecodable payload",
				log.Int("index", i),
				log.String("codec", s.codec.Name()),
				log.Err(err),
			)
			continue
		}
		out = append(out, raw)
	}
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response failed", log.Err(err))
	}
}

func statusFor(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
