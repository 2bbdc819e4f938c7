package vecml

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with vecml-specific helpers so that training,
// classification and persistence events share field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a text handler to stderr at Info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// WithModel adds a model name field.
func (l *Logger) WithModel(name string) *Logger {
	return &Logger{Logger: l.Logger.With("model", name)}
}

// WithAlgorithm adds an algorithm field.
func (l *Logger) WithAlgorithm(name string) *Logger {
	return &Logger{Logger: l.Logger.With("algorithm", name)}
}

// LogLearn logs the end of a training run.
func (l *Logger) LogLearn(ctx context.Context, samples int, took time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "learning failed",
			"samples", samples,
			"duration", took,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "learning completed",
		"samples", samples,
		"duration", took,
	)
}

// LogClassify logs a single classification at Debug level. It returns
// before building any attributes when Debug is disabled, so it is safe in
// per-sample loops.
func (l *Logger) LogClassify(ctx context.Context, features int, result float64) {
	if !l.Enabled(ctx, slog.LevelDebug) {
		return
	}
	l.DebugContext(ctx, "classified",
		"features", features,
		"result", result,
	)
}

// LogSave logs a model save.
func (l *Logger) LogSave(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed", "name", name, "error", err)
		return
	}
	l.InfoContext(ctx, "model saved", "name", name)
}

// LogLoad logs a model load.
func (l *Logger) LogLoad(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed", "name", name, "error", err)
		return
	}
	l.InfoContext(ctx, "model loaded", "name", name)
}
