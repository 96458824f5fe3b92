package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options controls logger construction. Zero values fall back to the environment.
type Options struct {
	// Format is "json" or "text". Empty reads LOG_FORMAT.
	Format string
	// Level is "debug", "info", "warn" or "error". Empty reads LOG_LEVEL.
	Level string
	// Output defaults to os.Stderr so stdout stays free for command output.
	Output io.Writer
}

// NewLogger creates a structured logger. JSON is the default format.
// Source locations are added at debug level.
func NewLogger(opts Options) *slog.Logger {
	format := opts.Format
	if format == "" {
		format = os.Getenv("LOG_FORMAT")
	}
	level := ParseLevel(firstNonEmpty(opts.Level, os.Getenv("LOG_LEVEL")))
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(out, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(out, handlerOpts)
	}
	return slog.New(handler)
}

// Setup builds a logger from opts and installs it as the slog default.
func Setup(opts Options) *slog.Logger {
	logger := NewLogger(opts)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to a slog.Level. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// WithRunID returns a logger that tags every record with the refresh run id.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	if runID == "" {
		return logger
	}
	return logger.With(slog.String("run_id", runID))
}

// FromContext retrieves the logger from the context, or returns the default logger if not found.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type contextKey string

const loggerContextKey contextKey = "logger"
