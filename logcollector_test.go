package logcollector_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/bft-labs/logcollector"
)

func TestNewStore(t *testing.T) {
	st := logcollector.NewStore(2)
	st.Add([]byte("a"))
	st.Add([]byte("b"))
	st.Add([]byte("c"))

	batch, err := st.RetrieveFirst()
	if err != nil || batch.Len() != 2 {
		t.Fatalf("RetrieveFirst() = %v, %v", batch, err)
	}
	if _, err := st.RetrieveFirst(); err != nil {
		t.Fatal(err)
	}
	if _, err := st.RetrieveFirst(); !errors.Is(err, logcollector.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestNewStore_PanicsOnZero(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewStore(0) did not panic")
		}
	}()
	logcollector.NewStore(0)
}

func TestNewCodec(t *testing.T) {
	c, err := logcollector.NewCodec("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decompress([]byte{1}); !errors.Is(err, logcollector.ErrCorrupt) {
		t.Errorf("error = %v, want ErrCorrupt", err)
	}
}

func TestRun_ReturnsOnCancel(t *testing.T) {
	cfg := logcollector.DefaultConfig()
	cfg.Command = "sleep"
	cfg.Args = []string{"30"}
	cfg.ListenAddr = "127.0.0.1:0"

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := logcollector.Run(ctx, cfg); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
}

func TestRun_ReturnsCrashCause(t *testing.T) {
	cfg := logcollector.DefaultConfig()
	cfg.Command = filepath.Join(t.TempDir(), "missing")
	cfg.ListenAddr = "127.0.0.1:0"

	if err := logcollector.Run(context.Background(), cfg); err == nil {
		t.Error("Run() error = nil, want start failure")
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := logcollector.DefaultConfig()
	cfg.MaxBatchSize = 0
	if err := logcollector.Run(context.Background(), cfg); !errors.Is(err, logcollector.ErrInvalidConfig) {
		t.Errorf("Run() error = %v, want ErrInvalidConfig", err)
	}
}
