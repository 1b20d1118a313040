package pathgo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger with pathgo-specific context.
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

// WithRunID adds a run_id field to the logger.
func (l *Logger) WithRunID(id uuid.UUID) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id.String()),
	}
}

// WithRoute adds start and goal fields to the logger.
func (l *Logger) WithRoute(start, goal int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("start", start, "goal", goal),
	}
}

// LogRouteStart logs the launch of a search worker.
func (l *Logger) LogRouteStart(ctx context.Context, id uuid.UUID, start, goal int64, weight string) {
	l.InfoContext(ctx, "route started",
		"run_id", id.String(),
		"start", start,
		"goal", goal,
		"weight", weight,
	)
}

// LogRouteDone logs the end of a search worker.
func (l *Logger) LogRouteDone(ctx context.Context, id uuid.UUID, runtime time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "route failed",
			"run_id", id.String(),
			"runtime", runtime,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "route finished",
			"run_id", id.String(),
			"runtime", runtime,
		)
	}
}

// LogStopTimeout logs a worker that did not exit within the join timeout.
func (l *Logger) LogStopTimeout(ctx context.Context, id uuid.UUID, timeout time.Duration) {
	l.ErrorContext(ctx, "worker join timed out",
		"run_id", id.String(),
		"timeout", timeout,
	)
}

// LogProtocolViolation logs an event that the reducer rejected.
func (l *Logger) LogProtocolViolation(ctx context.Context, id uuid.UUID, err error) {
	l.ErrorContext(ctx, "event protocol violation",
		"run_id", id.String(),
		"error", err,
	)
}

// LogArtifactSave logs an artifact save requested by a run.
func (l *Logger) LogArtifactSave(ctx context.Context, filename string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "artifact save failed",
			"filename", filename,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "artifact saved",
			"filename", filename,
		)
	}
}

// engineLogger adapts Logger to the search engine's printf-style interface.
type engineLogger struct {
	l *Logger
}

func (el *engineLogger) Infof(format string, args ...interface{}) {
	el.l.Info(fmt.Sprintf(format, args...))
}

func (el *engineLogger) Errorf(format string, args ...interface{}) {
	el.l.Error(fmt.Sprintf(format, args...))
}
