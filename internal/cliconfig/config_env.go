package cliconfig

import "os"

// Environment variables read by ApplyEnvConfig. The MONITOR_* names select
// the monitored process; everything else uses the LOGCOLLECTOR_ prefix.
const (
	EnvMonitorCmd  = "MONITOR_CMD"
	EnvMonitorArgs = "MONITOR_ARGS"
)

// ApplyEnvConfig applies configuration from environment variables.
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("cmd", os.Getenv(EnvMonitorCmd), &cfg.Command)
	s.setStrings("args", SplitList(os.Getenv(EnvMonitorArgs)), &cfg.Args)
	s.setStrings("follow", SplitList(os.Getenv("LOGCOLLECTOR_FOLLOW")), &cfg.Follow)
	s.setString("listen", os.Getenv("LOGCOLLECTOR_LISTEN_ADDR"), &cfg.ListenAddr)
	s.setString("codec", os.Getenv("LOGCOLLECTOR_CODEC"), &cfg.Codec)
	s.setString("log-level", os.Getenv("LOGCOLLECTOR_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("LOGCOLLECTOR_LOG_FORMAT"), &cfg.LogFormat)

	if err := s.setDuration("restart-delay", os.Getenv("LOGCOLLECTOR_RESTART_DELAY"), &cfg.RestartDelay); err != nil {
		return err
	}
	if err := s.setDuration("max-restart-delay", os.Getenv("LOGCOLLECTOR_MAX_RESTART_DELAY"), &cfg.MaxRestartDelay); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", os.Getenv("LOGCOLLECTOR_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("max-batch-size", os.Getenv("LOGCOLLECTOR_MAX_BATCH_SIZE"), &cfg.MaxBatchSize); err != nil {
		return err
	}
	if err := s.setIntFromString("max-line-bytes", os.Getenv("LOGCOLLECTOR_MAX_LINE_BYTES"), &cfg.MaxLineBytes); err != nil {
		return err
	}

	s.setBoolFromString("restart", os.Getenv("LOGCOLLECTOR_RESTART"), &cfg.Restart)
	s.setBoolFromString("follow-from-start", os.Getenv("LOGCOLLECTOR_FOLLOW_FROM_START"), &cfg.FollowFromStart)

	return nil
}
