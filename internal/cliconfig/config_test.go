package cliconfig

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/bft-labs/logcollector/pkg/logcollector"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxBatchSize != 5 {
		t.Errorf("MaxBatchSize = %d, want 5", cfg.MaxBatchSize)
	}
	if cfg.Command != "ping" {
		t.Errorf("Command = %q, want ping", cfg.Command)
	}
	if want := []string{"localhost", "-c", "100"}; !reflect.DeepEqual(cfg.Args, want) {
		t.Errorf("Args = %v, want %v", cfg.Args, want)
	}
	if cfg.ListenAddr != "0.0.0.0:3000" {
		t.Errorf("ListenAddr = %q, want 0.0.0.0:3000", cfg.ListenAddr)
	}
	if cfg.Codec != "lz4" {
		t.Errorf("Codec = %q, want lz4", cfg.Codec)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero batch size", func(c *Config) { c.MaxBatchSize = 0 }, true},
		{"unknown codec", func(c *Config) { c.Codec = "gzip" }, true},
		{"no producer", func(c *Config) { c.Command = "" }, true},
		{"follow without command", func(c *Config) {
			c.Command = ""
			c.Follow = []string{"/var/log/app.log"}
		}, false},
		{"json logs", func(c *Config) { c.LogFormat = "json" }, false},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"zero durations are defaulted", func(c *Config) {
			c.RestartDelay = 0
			c.MaxRestartDelay = 0
			c.ShutdownTimeout = 0
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_WrapsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBatchSize = -3
	if err := cfg.Validate(); !errors.Is(err, logcollector.ErrInvalidConfig) {
		t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
	}
}

func TestConfig_Collector(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Restart = true
	cfg.Follow = []string{"/tmp/x.log"}
	cfg.ShutdownTimeout = 3 * time.Second

	lc := cfg.Collector()
	if lc.MaxBatchSize != cfg.MaxBatchSize || lc.Command != cfg.Command || lc.ListenAddr != cfg.ListenAddr {
		t.Errorf("Collector() = %+v", lc)
	}
	if !lc.Restart || lc.ShutdownTimeout != 3*time.Second || !reflect.DeepEqual(lc.Follow, cfg.Follow) {
		t.Errorf("Collector() lost fields: %+v", lc)
	}
}

func TestConfig_NewLogger(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := cfg.NewLogger(); err != nil {
		t.Errorf("NewLogger() error = %v", err)
	}
	cfg.LogLevel = "loud"
	if _, err := cfg.NewLogger(); err == nil {
		t.Error("NewLogger() accepted an unknown level")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"localhost,-c,100", []string{"localhost", "-c", "100"}},
		{"single", []string{"single"}},
		{"a,,b", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		if got := SplitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitList(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfigSetter(t *testing.T) {
	s := newConfigSetter(map[string]bool{"locked": true})

	str := "orig"
	s.setString("locked", "new", &str)
	if str != "orig" {
		t.Errorf("setString on changed flag = %q", str)
	}
	s.setString("free", "", &str)
	if str != "orig" {
		t.Errorf("setString with empty value = %q", str)
	}
	s.setString("free", "new", &str)
	if str != "new" {
		t.Errorf("setString = %q, want new", str)
	}

	n := 1
	s.setInt("free", 0, &n)
	if n != 1 {
		t.Errorf("setInt with zero = %d", n)
	}
	if err := s.setIntFromString("free", "-2", &n); err != nil || n != -2 {
		t.Errorf("setIntFromString = %d, %v", n, err)
	}

	var d time.Duration
	if err := s.setDuration("free", "bogus", &d); err == nil {
		t.Error("setDuration accepted bogus value")
	}
}
