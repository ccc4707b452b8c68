package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"molt/internal/config"
	"molt/internal/proc"
	"molt/internal/watch"
)

// effectiveConfig mirrors the TOML schema for the check command's output.
type effectiveConfig struct {
	Watch struct {
		Globs    []string `toml:"globs"`
		Interval string   `toml:"interval"`
	} `toml:"watch"`
	Process struct {
		Command         string `toml:"command"`
		GracefulTimeout string `toml:"graceful_timeout"`
		PollInterval    string `toml:"poll_interval"`
		InterruptWindow string `toml:"interrupt_window"`
	} `toml:"process"`
	Serve struct {
		Host string `toml:"host"`
		Port int    `toml:"port"`
		Dir  string `toml:"dir"`
		Db   string `toml:"db"`
		Auth string `toml:"auth,omitempty"`
		Cors bool   `toml:"cors"`
	} `toml:"serve"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
}

// CreateCheckCmd creates the check command, which validates the
// configuration without starting anything.
func CreateCheckCmd() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "check [-- command ...]",
		Short: "Validate the configuration",
		Long: `Loads the configuration, compiles every watch pattern and reports how many
files each currently matches, parses the command, and prints the effective
configuration as TOML.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if err := config.LoadConfig(opts, cmd); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			opts.ApplyDefaults()
			if err := opts.Validate(); err != nil {
				return err
			}

			if _, err := os.Stat(opts.Config); err == nil {
				fmt.Fprintf(out, "Config file: %s\n", opts.Config)
			} else {
				fmt.Fprintf(out, "Config file: %s (not found, defaults in effect)\n", opts.Config)
			}

			fmt.Fprintln(out, "Watch patterns:")
			for _, pat := range opts.Glob {
				files, err := watch.Resolve(pat)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %-24s %d files\n", pat, len(files))
			}

			command, err := resolveCommand(opts, args)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Command: %s\n", strings.Join(command, " "))

			// TOML cors=false still overrides this seed
			serveOpts := &ServeOptions{Config: opts.Config, Cors: true}
			if err := config.LoadConfig(serveOpts, nil); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			serveOpts.ApplyDefaults()

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Effective configuration:")
			fmt.Fprintln(out)
			data, err := toml.Marshal(buildEffectiveConfig(opts, serveOpts, command))
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "molt.toml", "Path to configuration file")
	cmd.Flags().StringArrayVarP(&opts.Glob, "glob", "g", []string{"web/**"}, "Glob pattern to watch (repeatable)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", watch.DefaultInterval, "Poll interval between file scans")
	cmd.Flags().DurationVar(&opts.GracefulTimeout, "graceful-timeout", proc.DefaultGracefulTimeout,
		"Wait after the graceful stop signal before killing")

	return cmd
}

func buildEffectiveConfig(opts *RootOptions, serveOpts *ServeOptions, command []string) effectiveConfig {
	var eff effectiveConfig
	eff.Watch.Globs = opts.Glob
	eff.Watch.Interval = opts.Interval.String()
	eff.Process.Command = strings.Join(command, " ")
	eff.Process.GracefulTimeout = opts.GracefulTimeout.String()
	eff.Process.PollInterval = opts.PollInterval.String()
	eff.Process.InterruptWindow = opts.InterruptWindow.String()
	eff.Serve.Host = serveOpts.Host
	eff.Serve.Port = serveOpts.Port
	eff.Serve.Dir = serveOpts.Dir
	eff.Serve.Db = serveOpts.Db
	eff.Serve.Auth = serveOpts.Auth
	eff.Serve.Cors = serveOpts.Cors
	eff.Log.Level = opts.LogLevel
	eff.Log.Format = opts.LogFormat
	return eff
}
