package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the application-wide structured logger instance.
var Logger = slog.Default()

// InitLogger initializes the global logger with the specified level and format.
// level: "debug", "info", "warn", "error" (defaults to "info")
// format: "json" or "text" (defaults to "text")
func InitLogger(level, format string) {
	Logger = New(os.Stdout, level, format)
	slog.SetDefault(Logger)
}

// New builds a logger writing to w without touching the global default.
func New(w io.Writer, level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// WithUser returns l with a user_id field.
func WithUser(l *slog.Logger, userID string) *slog.Logger {
	return l.With("user_id", userID)
}

// WithResume returns l with a resume_id field.
func WithResume(l *slog.Logger, resumeID string) *slog.Logger {
	return l.With("resume_id", resumeID)
}

// WithError returns l with an error field.
func WithError(l *slog.Logger, err error) *slog.Logger {
	return l.With("error", err)
}
