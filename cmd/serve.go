package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"molt/internal/api"
	"molt/internal/config"
	"molt/internal/events"
	"molt/internal/feed"
	"molt/internal/feed/store"
	"molt/internal/logging"
	"molt/internal/metrics"
)

// ServeOptions holds the dev server configuration.
type ServeOptions struct {
	Config    string
	Host      string `toml:"serve.host" env:"SERVE_HOST"`
	Port      int    `toml:"serve.port" env:"SERVE_PORT"`
	Dir       string `toml:"serve.dir" env:"SERVE_DIR"`
	Db        string `toml:"serve.db" env:"SERVE_DB"`
	Auth      string `toml:"serve.auth" env:"SERVE_AUTH"`
	Cors      bool   `toml:"serve.cors" env:"SERVE_CORS"`
	LogLevel  string `toml:"log.level" env:"LOG_LEVEL"`
	LogFormat string `toml:"log.format" env:"LOG_FORMAT"`
}

// Validate checks the effective serve configuration.
func (o *ServeOptions) Validate() error {
	if o.Port < 1 || o.Port > 65535 {
		return fmt.Errorf("port out of range: %d", o.Port)
	}
	if o.Dir == "" {
		return fmt.Errorf("static directory must not be empty")
	}
	if o.Db == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if o.Auth != "" && !strings.Contains(o.Auth, ":") {
		return fmt.Errorf("auth must be user:pass, got %q", o.Auth)
	}
	return nil
}

// ApplyDefaults fills zero values with the serve defaults. Needed when the
// options are loaded without a command, where no flag defaults apply.
func (o *ServeOptions) ApplyDefaults() {
	if o.Host == "" {
		o.Host = "127.0.0.1"
	}
	if o.Port == 0 {
		o.Port = 8000
	}
	if o.Dir == "" {
		o.Dir = "web"
	}
	if o.Db == "" {
		o.Db = "db.json"
	}
	if o.LogLevel == "" {
		o.LogLevel = "info"
	}
	if o.LogFormat == "" {
		o.LogFormat = "console"
	}
}

// CreateServeCmd creates the serve command: the development server the
// reloader supervises by default.
func CreateServeCmd() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development server",
		Long: `Serves static files from the project directory alongside a mock JSON feed
API backed by a single JSON file. External edits to the database file are
picked up live and broadcast to connected browsers over SSE, together with
feed mutations and buffered log lines.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := config.LoadConfig(opts, cmd); err != nil {
				slog.Warn("Failed to load config", "error", err)
			}

			logConfig := config.LoadLogConfig(opts.Config)
			logConfig.Level = opts.LogLevel
			logConfig.Format = opts.LogFormat
			logging.Initialize(logConfig)
			logger := logging.GetLogger("serve")

			if err := opts.Validate(); err != nil {
				logger.Error("Invalid configuration", "error", err)
				os.Exit(1)
			}

			st := store.NewJSON(opts.Db)
			if err := st.Load(); err != nil {
				logger.Error("Failed to load database", "error", err, "path", opts.Db)
				os.Exit(1)
			}

			eventBus := events.New()
			feedService := feed.NewFeedService(st, eventBus)

			// Forward every log entry onto the bus for the SSE stream
			logging.SetLogCallback(func(entry logging.LogEntry) {
				eventBus.Publish(events.LogEntryEvent{
					Seq:        entry.Seq,
					Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
					Level:      entry.Level,
					Module:     entry.Module,
					Message:    entry.Message,
					Attributes: entry.Attributes,
				})
			})

			metrics.SetStorePosts(st.Count())

			// Pick up external edits to the database file
			dbWatcher := config.NewFileWatcher(
				st.Path(),
				func(string) (bool, error) { return st.Reload() },
				logger,
				config.WithDebounce[bool](100*time.Millisecond),
			)
			dbWatcher.OnReload(func(changed bool) {
				if !changed {
					return // our own write, digest unchanged
				}
				count := st.Count()
				metrics.AddStoreReload()
				metrics.SetStorePosts(count)
				eventBus.Publish(events.StoreReloadedEvent{
					Posts:     count,
					Timestamp: time.Now().UTC().Format(time.RFC3339),
				})
				logger.Info("Database reloaded from disk", "posts", count)
			})
			if err := dbWatcher.Start(); err != nil {
				logger.Warn("Database watcher failed to start, live reload disabled", "error", err)
			} else {
				defer func() { _ = dbWatcher.Stop() }()
			}

			var authUser, authPass string
			if opts.Auth != "" {
				parts := strings.SplitN(opts.Auth, ":", 2)
				authUser, authPass = parts[0], parts[1]
			}

			server := api.NewServer(&api.Options{
				AuthUsername:      authUser,
				AuthPassword:      authPass,
				StaticDir:         opts.Dir,
				Cors:              opts.Cors,
				FeedService:       feedService,
				EventBus:          eventBus,
				PrometheusHandler: metrics.Handler(),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start(addr)
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("Failed to start HTTP server", "error", err)
					os.Exit(1)
				}
			case <-ctx.Done():
				logger.Info("Shutting down server")
				if err := server.Stop(); err != nil {
					logger.Error("Error stopping HTTP server", "error", err)
				}
			}
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "molt.toml", "Path to configuration file")
	cmd.Flags().StringVar(&opts.Host, "host", "127.0.0.1", "Host interface to bind")
	cmd.Flags().IntVarP(&opts.Port, "port", "p", 8000, "Port to listen on")
	cmd.Flags().StringVar(&opts.Dir, "dir", "web", "Directory of static files to serve")
	cmd.Flags().StringVar(&opts.Db, "db", "db.json", "Path to the JSON database file")
	cmd.Flags().StringVar(&opts.Auth, "auth", "", "Basic auth credentials as user:pass (empty disables)")
	cmd.Flags().BoolVar(&opts.Cors, "cors", true, "Allow cross-origin requests")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "info", "Global logging level (debug, info, warn, error)")
	cmd.Flags().StringVar(&opts.LogFormat, "log-format", "console", "Logging format (console, text, json, journal)")

	return cmd
}
