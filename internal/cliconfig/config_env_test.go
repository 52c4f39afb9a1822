package cliconfig

import (
	"reflect"
	"testing"
	"time"
)

var envNames = []string{
	EnvMonitorCmd,
	EnvMonitorArgs,
	"LOGCOLLECTOR_FOLLOW",
	"LOGCOLLECTOR_FOLLOW_FROM_START",
	"LOGCOLLECTOR_LISTEN_ADDR",
	"LOGCOLLECTOR_CODEC",
	"LOGCOLLECTOR_LOG_LEVEL",
	"LOGCOLLECTOR_LOG_FORMAT",
	"LOGCOLLECTOR_RESTART",
	"LOGCOLLECTOR_RESTART_DELAY",
	"LOGCOLLECTOR_MAX_RESTART_DELAY",
	"LOGCOLLECTOR_SHUTDOWN_TIMEOUT",
	"LOGCOLLECTOR_MAX_BATCH_SIZE",
	"LOGCOLLECTOR_MAX_LINE_BYTES",
}

// clearEnv blanks every variable ApplyEnvConfig reads for the duration of t.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envNames {
		t.Setenv(k, "")
	}
}

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "monitor command and args",
			envVars: map[string]string{
				EnvMonitorCmd:  "tail",
				EnvMonitorArgs: "-F,/var/log/syslog",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Command: "tail",
				Args:    []string{"-F", "/var/log/syslog"},
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				EnvMonitorCmd:                 "tail",
				"LOGCOLLECTOR_MAX_BATCH_SIZE": "9",
			},
			changed: map[string]bool{"cmd": true},
			initial: Config{Command: "ping", MaxBatchSize: 5},
			expected: Config{
				Command:      "ping",
				MaxBatchSize: 9,
			},
		},
		{
			name: "zero batch size is passed through for validation",
			envVars: map[string]string{
				"LOGCOLLECTOR_MAX_BATCH_SIZE": "0",
			},
			changed:  map[string]bool{},
			initial:  Config{MaxBatchSize: 5},
			expected: Config{MaxBatchSize: 0},
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"LOGCOLLECTOR_RESTART_DELAY": "soon",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "returns error for invalid int",
			envVars: map[string]string{
				"LOGCOLLECTOR_MAX_BATCH_SIZE": "five",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "handles bool '1' as true",
			envVars: map[string]string{
				"LOGCOLLECTOR_RESTART": "1",
			},
			changed:  map[string]bool{},
			expected: Config{Restart: true},
		},
		{
			name: "handles bool 'false' as false",
			envVars: map[string]string{
				"LOGCOLLECTOR_RESTART": "false",
			},
			changed:  map[string]bool{},
			initial:  Config{Restart: true},
			expected: Config{Restart: false},
		},
		{
			name: "handles all field types correctly",
			envVars: map[string]string{
				EnvMonitorCmd:                    "journalctl",
				EnvMonitorArgs:                   "-f",
				"LOGCOLLECTOR_FOLLOW":            "/a.log,/b.log",
				"LOGCOLLECTOR_FOLLOW_FROM_START": "true",
				"LOGCOLLECTOR_LISTEN_ADDR":       "127.0.0.1:8080",
				"LOGCOLLECTOR_CODEC":             "zstd",
				"LOGCOLLECTOR_LOG_LEVEL":         "debug",
				"LOGCOLLECTOR_LOG_FORMAT":        "json",
				"LOGCOLLECTOR_RESTART":           "true",
				"LOGCOLLECTOR_RESTART_DELAY":     "1s",
				"LOGCOLLECTOR_MAX_RESTART_DELAY": "1m",
				"LOGCOLLECTOR_SHUTDOWN_TIMEOUT":  "10s",
				"LOGCOLLECTOR_MAX_BATCH_SIZE":    "50",
				"LOGCOLLECTOR_MAX_LINE_BYTES":    "4096",
			},
			changed: map[string]bool{},
			expected: Config{
				MaxBatchSize:    50,
				Command:         "journalctl",
				Args:            []string{"-f"},
				Restart:         true,
				RestartDelay:    time.Second,
				MaxRestartDelay: time.Minute,
				Follow:          []string{"/a.log", "/b.log"},
				FollowFromStart: true,
				ListenAddr:      "127.0.0.1:8080",
				Codec:           "zstd",
				MaxLineBytes:    4096,
				ShutdownTimeout: 10 * time.Second,
				LogLevel:        "debug",
				LogFormat:       "json",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyEnvConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnvConfig() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(cfg, tt.expected) {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestApplyEnvConfig_Unset(t *testing.T) {
	clearEnv(t)

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("config changed without env: %+v", cfg)
	}
}
