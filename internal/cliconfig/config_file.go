package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config but uses strings for durations to keep files readable.
// Files ending in .yaml or .yml are parsed as YAML, anything else as TOML.
type FileConfig struct {
	MaxBatchSize    int      `toml:"max_batch_size" yaml:"max_batch_size"`
	Command         string   `toml:"command" yaml:"command"`
	Args            []string `toml:"args" yaml:"args"`
	Restart         *bool    `toml:"restart" yaml:"restart"`
	RestartDelay    string   `toml:"restart_delay" yaml:"restart_delay"`
	MaxRestartDelay string   `toml:"max_restart_delay" yaml:"max_restart_delay"`
	Follow          []string `toml:"follow" yaml:"follow"`
	FollowFromStart *bool    `toml:"follow_from_start" yaml:"follow_from_start"`
	ListenAddr      string   `toml:"listen_addr" yaml:"listen_addr"`
	Codec           string   `toml:"codec" yaml:"codec"`
	MaxLineBytes    int      `toml:"max_line_bytes" yaml:"max_line_bytes"`
	ShutdownTimeout string   `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel        string   `toml:"log_level" yaml:"log_level"`
	LogFormat       string   `toml:"log_format" yaml:"log_format"`
}

// LoadFileConfig reads and parses a TOML or YAML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse toml %s: %w", path, err)
		}
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.logcollector/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".logcollector", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("cmd", fc.Command, &cfg.Command)
	s.setStrings("args", fc.Args, &cfg.Args)
	s.setStrings("follow", fc.Follow, &cfg.Follow)
	s.setString("listen", fc.ListenAddr, &cfg.ListenAddr)
	s.setString("codec", fc.Codec, &cfg.Codec)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)

	if err := s.setDuration("restart-delay", fc.RestartDelay, &cfg.RestartDelay); err != nil {
		return err
	}
	if err := s.setDuration("max-restart-delay", fc.MaxRestartDelay, &cfg.MaxRestartDelay); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}

	s.setInt("max-batch-size", fc.MaxBatchSize, &cfg.MaxBatchSize)
	s.setInt("max-line-bytes", fc.MaxLineBytes, &cfg.MaxLineBytes)

	s.setBool("restart", fc.Restart, &cfg.Restart)
	s.setBool("follow-from-start", fc.FollowFromStart, &cfg.FollowFromStart)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
