package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/logcollector/pkg/log"
	"github.com/bft-labs/logcollector/pkg/logcollector"
)

// Config holds CLI configuration for logcollector.
type Config struct {
	MaxBatchSize int

	Command string
	Args    []string

	Restart         bool
	RestartDelay    time.Duration
	MaxRestartDelay time.Duration

	Follow          []string
	FollowFromStart bool

	ListenAddr      string
	Codec           string
	MaxLineBytes    int
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	lc := logcollector.DefaultConfig()
	return Config{
		MaxBatchSize:    lc.MaxBatchSize,
		Command:         lc.Command,
		Args:            lc.Args,
		RestartDelay:    lc.RestartDelay,
		MaxRestartDelay: lc.MaxRestartDelay,
		ListenAddr:      lc.ListenAddr,
		Codec:           lc.Codec,
		MaxLineBytes:    lc.MaxLineBytes,
		ShutdownTimeout: lc.ShutdownTimeout,
		LogLevel:        "info",
		LogFormat:       log.FormatConsole,
	}
}

// Collector converts the CLI configuration to the library configuration.
func (c *Config) Collector() logcollector.Config {
	return logcollector.Config{
		MaxBatchSize:    c.MaxBatchSize,
		Command:         c.Command,
		Args:            c.Args,
		Restart:         c.Restart,
		RestartDelay:    c.RestartDelay,
		MaxRestartDelay: c.MaxRestartDelay,
		Follow:          c.Follow,
		FollowFromStart: c.FollowFromStart,
		ListenAddr:      c.ListenAddr,
		Codec:           c.Codec,
		MaxLineBytes:    c.MaxLineBytes,
		ShutdownTimeout: c.ShutdownTimeout,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case log.FormatConsole, log.FormatJSON:
	default:
		return fmt.Errorf("log format must be %q or %q, got %q", log.FormatConsole, log.FormatJSON, c.LogFormat)
	}
	lc := c.Collector()
	lc.SetDefaults()
	return lc.Validate()
}

// NewLogger builds the zerolog-backed logger selected by LogLevel and LogFormat.
func (c *Config) NewLogger() (*log.ZerologAdapter, error) {
	return log.NewZerolog(log.Options{Level: c.LogLevel, Format: c.LogFormat})
}

// SplitList splits a comma-separated list. Elements are kept verbatim, so
// "localhost,-c,100" yields three arguments.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings sets a list if not empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings. Unlike setInt, a
// zero or negative value is applied so that Validate can reject it.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
