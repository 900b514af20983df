// Package applog provides the engine's structured logging: a single global
// slog.Logger with per-component child loggers, backed by a human-readable
// console handler. Grounded on the teacher's central_logger/text_handler
// pair, trimmed of log rotation, GORM adapters, and field redaction — this
// engine has no database and no credentials to scrub.
package applog

import (
	"log/slog"
	"os"
	"sync"
)

const componentKey = "component"

var (
	mu     sync.RWMutex
	global *slog.Logger
)

// InitLevel installs the global logger at the given level, writing to
// os.Stdout. Safe to call more than once (e.g. when configuration reloads);
// the last call wins.
func InitLevel(level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	global = slog.New(newTextHandler(os.Stdout, level))
}

// ParseLevel maps a config-file level string to a slog.Level, defaulting to
// Info for an empty or unrecognized value.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Global returns the process-wide logger, falling back to an info-level
// stdout logger if InitLevel was never called.
func Global() *slog.Logger {
	mu.RLock()
	l := global
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		global = slog.New(newTextHandler(os.Stdout, slog.LevelInfo))
	}
	return global
}

// For returns a child logger tagged with the given component name, e.g.
// applog.For("graph").Info("chunk loaded", "nodes", n).
func For(component string) *slog.Logger {
	return Global().With(componentKey, component)
}
