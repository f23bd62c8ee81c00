package main

import (
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
)

// createCLILogger creates a logger for CLI commands that writes to w
func createCLILogger(w io.Writer, logLevel string) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      parseLogLevel(logLevel),
		TimeFormat: "15:04:05",
	}))
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
