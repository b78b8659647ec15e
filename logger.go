package lloyd

import (
	"errors"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with lloyd-specific context.
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
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithK adds a k (cluster count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogIteration logs one completed assign/update cycle.
func (l *Logger) LogIteration(iteration int, inertia float64, moved int) {
	l.Debug("iteration completed",
		"iteration", iteration,
		"inertia", inertia,
		"moved", moved,
	)
}

// LogRun logs the outcome of a clustering run.
func (l *Logger) LogRun(iterations int, inertia float64, err error) {
	switch {
	case errors.Is(err, ErrNonConvergence):
		l.Warn("clustering stopped at iteration cap",
			"iterations", iterations,
			"inertia", inertia,
			"error", err,
		)
	case err != nil:
		l.Error("clustering failed",
			"iterations", iterations,
			"error", err,
		)
	default:
		l.Info("clustering converged",
			"iterations", iterations,
			"inertia", inertia,
		)
	}
}
