// Package logging provides structured logging with per-module log level configuration.
//
// # Overview
//
// The logging system uses Go's slog package with automatic output routing:
//   - Renders human-oriented colored console lines on a terminal (the default)
//   - Logs JSON when configured with format "json"
//   - Logs to the systemd journal with format "journal", or when stdout is
//     not usable on a system with journald
//
// Child-process output is never routed through this package; supervised
// commands inherit stdio and write directly to the terminal.
//
// # Usage
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "console",   // Output format: console, json or journal
//		Modules: map[string]string{
//			"watch": "debug",  // Per-module overrides
//			"api":   "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("reload")
//	logger.Info("Starting process", "command", cmd)
//	logger.Debug("Details", "config", cfg)
//
// Add contextual attributes:
//
//	logger := logging.GetLogger("api").With("remote", addr)
//	logger.Info("Request handled")  // Includes remote in all logs
//
// # Console format
//
// Console lines carry a wall-clock timestamp and the module as a bracketed
// tag, so supervisor output is distinguishable from the child's:
//
//	04:25:01 pm [reload] Change detected.
//	04:25:01 pm [reload] Starting process command="molt serve"
//
// Colors degrade to plain text when stdout is not a terminal or NO_COLOR
// is set.
//
// # Viewing journal logs
//
// When running with format "journal" on a system with journald:
//
//	journalctl -t molt              # All molt logs
//	journalctl -t molt -f           # Follow live
//	journalctl -t molt MODULE=watch # Filter by structured fields
//
// # Configuration
//
// Log levels can be set globally or per-module. Module-specific levels
// override the global level for that module only.
//
// Example TOML configuration:
//
//	[log]
//	level = "info"
//	format = "console"
//
//	[log.modules]
//	watch = "debug"
//	api = "warn"
package logging
