package main

import (
	"io"
	"log/slog"
	"os"
)

// configureSlog installs the process-wide slog default used by every
// sentryloop command: a service-tagged handler so log lines from the
// Control API, the worker loop, and the CLI's own startup/shutdown messages
// are identifiable when aggregated alongside other services.
//
// Formats:
//   - "json": structured output, for piping into a log aggregator
//   - "text": human-readable, for local development
func configureSlog(level slog.Level, format string, output io.Writer) {
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	slog.SetDefault(slog.New(handler).With("service", "sentryloop"))
}

// parseLogLevel maps a config/CLI log-level string to its slog.Level,
// defaulting to Info for anything unrecognized rather than rejecting it —
// a typo'd log level shouldn't keep the experiment runner from starting.
func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
