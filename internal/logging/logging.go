// Package logging configures the process-wide slog logger from LOG_CONFIG,
// matching the teacher's use of log/slog throughout internal/config and
// cmd/api rather than introducing a separate logging abstraction.
package logging

import (
	"log/slog"
	"os"
)

// Init installs a JSON or text slog handler as the default logger depending
// on format ("json" or anything else → text), and returns it.
func Init(format string) *slog.Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// For component-scoped loggers: logging.For("worker").Info("dequeued", "id", id)
func For(component string) *slog.Logger {
	return slog.With("component", component)
}
