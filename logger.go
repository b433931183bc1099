package streamgo

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/streamgo/asset"
)

// Logger wraps slog.Logger with streamgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithAsset adds an asset id field to the logger.
func (l *Logger) WithAsset(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("asset", id),
	}
}

// WithWorker adds a worker index field to the logger.
func (l *Logger) WithWorker(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("worker", n),
	}
}

// LogRegister logs an asset registration.
func (l *Logger) LogRegister(ctx context.Context, id string, size int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "register failed",
			"asset", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "asset registered",
			"asset", id,
			"estimated_size", size,
		)
	}
}

// LogLoad logs a load completion.
func (l *Logger) LogLoad(ctx context.Context, id string, prio asset.Priority, size int64, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"asset", id,
			"priority", prio.String(),
			"duration", duration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "load completed",
			"asset", id,
			"priority", prio.String(),
			"size", size,
			"duration", duration,
		)
	}
}

// LogUnload logs an unload.
func (l *Logger) LogUnload(ctx context.Context, id string, freed int64, evicted bool) {
	l.DebugContext(ctx, "asset unloaded",
		"asset", id,
		"freed", freed,
		"evicted", evicted,
	)
}

// LogEviction logs an eviction pass.
func (l *Logger) LogEviction(ctx context.Context, unloaded int, freed, target int64) {
	if freed < target {
		l.WarnContext(ctx, "eviction pass fell short",
			"unloaded", unloaded,
			"freed", freed,
			"target", target,
		)
	} else {
		l.InfoContext(ctx, "eviction pass completed",
			"unloaded", unloaded,
			"freed", freed,
			"target", target,
		)
	}
}
