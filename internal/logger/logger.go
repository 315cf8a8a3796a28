// Package logger holds the process-wide slog logger. Level and format come
// from the log section of the config file; text output is the default so
// local runs stay readable, json is for log shippers.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

var base *slog.Logger

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// Initialize builds the shared logger and installs it as the slog default so
// library code logging through slog ends up in the same stream.
func Initialize(level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	base = slog.New(handler)
	slog.SetDefault(base)
}

// Get returns the shared logger, initializing it at info/text when a caller
// logs before Initialize runs (tests, early startup failures).
func Get() *slog.Logger {
	if base == nil {
		Initialize("info", "text")
	}
	return base
}

// WithComponent tags a logger for one subsystem (scheduler, payment gateway,
// mailer) so its lines can be filtered out of the booking flow.
func WithComponent(name string) *slog.Logger {
	return Get().With("component", name)
}

func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

func DebugContext(ctx context.Context, msg string, args ...any) {
	Get().DebugContext(ctx, msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	Get().InfoContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	Get().WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	Get().ErrorContext(ctx, msg, args...)
}
