package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/logcollector/internal/cliconfig"
	"github.com/bft-labs/logcollector/pkg/codec"
	"github.com/bft-labs/logcollector/pkg/log"
	"github.com/bft-labs/logcollector/pkg/logcollector"
)

const longHelp = `Run a command, capture every line it prints and serve the lines over HTTP
in batches.

Each line of stdout and stderr is compressed and appended to the oldest batch
with room left. GET /logs removes and returns the oldest batch as JSON; an
empty store answers 404 {"success":false,"error":"no data found"}.

The command defaults to "ping localhost -c 100" and can be set with
MONITOR_CMD and MONITOR_ARGS (comma-separated), a config file, or flags.`

var exampleUsage = strings.TrimSpace(`
  MONITOR_CMD=tail MONITOR_ARGS=-F,/var/log/syslog logcollector
  logcollector --cmd journalctl --args -f --max-batch-size 50 --codec zstd
  logcollector --config $HOME/.logcollector/config.yaml --follow /var/log/app.log
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "logcollector",
		Short:         "Capture a command's output into batches and serve them over HTTP",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			// Positional arguments replace --cmd/--args.
			if len(args) > 0 {
				cfg.Command, cfg.Args = args[0], args[1:]
				changed["cmd"], changed["args"] = true, true
			}

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment overrides the file; flags override both.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := cfg.NewLogger()
			if err != nil {
				return err
			}
			zl := logger.Logger()
			zl.Info().Interface("config", cfg).Msg("configuration")

			return run(cmd.Context(), cfg, logger)
		},
	}

	f := root.Flags()
	f.SetInterspersed(false)
	f.StringVar(&cfgPath, "config", "", "path to a TOML or YAML config file (default: $HOME/.logcollector/config.toml)")
	f.StringVar(&cfg.Command, "cmd", cfg.Command, "command to monitor (env MONITOR_CMD)")
	f.StringSliceVar(&cfg.Args, "args", cfg.Args, "comma-separated command arguments (env MONITOR_ARGS)")
	f.BoolVar(&cfg.Restart, "restart", cfg.Restart, "restart the command after it exits")
	f.DurationVar(&cfg.RestartDelay, "restart-delay", cfg.RestartDelay, "initial delay before a restart")
	f.DurationVar(&cfg.MaxRestartDelay, "max-restart-delay", cfg.MaxRestartDelay, "maximum delay between restarts")
	f.StringSliceVar(&cfg.Follow, "follow", cfg.Follow, "files to tail in addition to the command (repeatable)")
	f.BoolVar(&cfg.FollowFromStart, "follow-from-start", cfg.FollowFromStart, "read followed files from the beginning")
	f.IntVar(&cfg.MaxBatchSize, "max-batch-size", cfg.MaxBatchSize, "payloads per batch")
	f.IntVar(&cfg.MaxLineBytes, "max-line-bytes", cfg.MaxLineBytes, "longest accepted line")
	f.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "HTTP listen address")
	f.StringVar(&cfg.Codec, "codec", cfg.Codec, "payload codec: "+strings.Join(codec.Names(), ", "))
	f.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "time allowed for graceful shutdown")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (console, json)")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "logcollector: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run starts the collector and blocks until a signal arrives or the run crashes.
func run(ctx context.Context, cfg cliconfig.Config, logger *log.ZerologAdapter) error {
	c, err := logcollector.New(cfg.Collector(), logcollector.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create collector: %w", err)
	}

	// Start under a context the signal handler cannot cancel, so that Stop
	// owns the shutdown and its timeout.
	if err := c.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("start collector: %w", err)
	}
	logger.Info("collector running", log.String("addr", c.Addr()))

	select {
	case <-ctx.Done():
		logger.Info("received signal, stopping...")
	case <-c.Done():
		if cerr := c.Err(); cerr != nil {
			logger.Error("collector crashed", log.Err(cerr))
			_ = c.Close()
			return cerr
		}
	}

	if err := c.Close(); err != nil && !errors.Is(err, logcollector.ErrNotRunning) {
		return fmt.Errorf("stop collector: %w", err)
	}
	return nil
}
