// Package cmd holds the cobra command factories wired together in main.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"molt/internal/config"
	"molt/internal/logging"
	"molt/internal/proc"
	"molt/internal/reload"
	"molt/internal/watch"
)

// RootOptions holds the reloader configuration, populated from CLI flags,
// MOLT_* environment variables, and the TOML config file.
type RootOptions struct {
	Config          string
	Glob            []string      `toml:"watch.globs" env:"WATCH_GLOBS"`
	Interval        time.Duration `toml:"watch.interval" env:"WATCH_INTERVAL"`
	Command         string        `toml:"process.command" env:"PROCESS_COMMAND"`
	GracefulTimeout time.Duration `toml:"process.graceful_timeout" env:"PROCESS_GRACEFUL_TIMEOUT"`
	PollInterval    time.Duration `toml:"process.poll_interval" env:"PROCESS_POLL_INTERVAL"`
	InterruptWindow time.Duration `toml:"process.interrupt_window" env:"PROCESS_INTERRUPT_WINDOW"`
	LogLevel        string        `toml:"log.level" env:"LOG_LEVEL"`
	LogFormat       string        `toml:"log.format" env:"LOG_FORMAT"`
}

// ApplyDefaults fills values that have no CLI flag and were left unset.
func (o *RootOptions) ApplyDefaults() {
	if len(o.Glob) == 0 {
		o.Glob = []string{"web/**"}
	}
	if o.PollInterval <= 0 {
		o.PollInterval = reload.DefaultExitPollInterval
	}
	if o.InterruptWindow <= 0 {
		o.InterruptWindow = reload.DefaultInterruptWindow
	}
}

// Validate checks the effective configuration after defaults are applied.
func (o *RootOptions) Validate() error {
	if len(o.Glob) == 0 {
		return fmt.Errorf("no watch globs configured")
	}
	if o.Interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", o.Interval)
	}
	if o.GracefulTimeout <= 0 {
		return fmt.Errorf("graceful timeout must be positive, got %s", o.GracefulTimeout)
	}
	if o.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", o.PollInterval)
	}
	if o.InterruptWindow <= 0 {
		return fmt.Errorf("interrupt window must be positive, got %s", o.InterruptWindow)
	}
	return nil
}

// resolveCommand picks the supervised command: positional argv wins, then
// the configured command string, then the bundled dev server.
func resolveCommand(opts *RootOptions, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if opts.Command != "" {
		return proc.ParseCommand(opts.Command)
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("no command configured and cannot locate own binary: %w", err)
	}
	return []string{exe, "serve"}, nil
}

// CreateRootCmd creates the root command: the reloader itself.
func CreateRootCmd() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "molt [flags] [-- command ...]",
		Short: "Restart a command when watched files change",
		Long: `Watches file globs and restarts the supervised command whenever a matching
file is created, modified, or removed. Without a command it supervises its
own development server (molt serve). Press interrupt once to force a
restart; a second interrupt within the window quits.`,
		Example: `  molt
  molt -g 'web/**' -g 'templates/**' -- python app.py
  molt --interval 200ms -- npm run dev`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			if err := config.LoadConfig(opts, cmd); err != nil {
				slog.Warn("Failed to load config", "error", err)
			}

			logConfig := config.LoadLogConfig(opts.Config)
			logConfig.Level = opts.LogLevel
			logConfig.Format = opts.LogFormat
			logging.Initialize(logConfig)
			logger := logging.GetLogger("main")

			opts.ApplyDefaults()
			if err := opts.Validate(); err != nil {
				logger.Error("Invalid configuration", "error", err)
				os.Exit(1)
			}

			command, err := resolveCommand(opts, args)
			if err != nil {
				logger.Error("Invalid command", "error", err)
				os.Exit(1)
			}
			if len(command) == 0 {
				logger.Error("Empty command")
				os.Exit(1)
			}

			runner, err := reload.New(reload.Config{
				Command:          command,
				Globs:            opts.Glob,
				WatchInterval:    opts.Interval,
				ExitPollInterval: opts.PollInterval,
				GracefulTimeout:  opts.GracefulTimeout,
				InterruptWindow:  opts.InterruptWindow,
			}, nil)
			if err != nil {
				logger.Error("Invalid watch patterns", "error", err)
				os.Exit(1)
			}

			// Run logs its own failures; spawn errors exit non-zero
			if err := runner.Run(context.Background()); err != nil {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "molt.toml", "Path to configuration file")
	cmd.Flags().StringArrayVarP(&opts.Glob, "glob", "g", []string{"web/**"}, "Glob pattern to watch (repeatable)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", watch.DefaultInterval, "Poll interval between file scans")
	cmd.Flags().DurationVar(&opts.GracefulTimeout, "graceful-timeout", proc.DefaultGracefulTimeout,
		"Wait after the graceful stop signal before killing")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "info", "Global logging level (debug, info, warn, error)")
	cmd.Flags().StringVar(&opts.LogFormat, "log-format", "console", "Logging format (console, text, json, journal)")

	return cmd
}
