// Package logctx carries a zerolog logger through context.Context so sweep
// fields (run_id, scenario, size) propagate from the CLI or HTTP handler
// down to each measurement step.
//
// Usage:
//
//	ctx := logctx.WithLogger(ctx, *logging.L())
//	ctx = logctx.WithRunID(ctx, runID)
//	logger := logctx.FromContext(ctx)
package logctx

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/eunmann/searchsweep/pkg/logging"
)

type loggerKey struct{}

// DefaultLogger returns the logger used when a context carries none: the
// process logger as configured by logging.Init.
func DefaultLogger() zerolog.Logger {
	return *logging.L()
}

// WithLogger returns a new context with the given logger attached.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext extracts the logger from the context, falling back to the
// default logger. It never returns a zero-value logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
			return logger
		}
	}
	return DefaultLogger()
}

func with(ctx context.Context, add func(zerolog.Context) zerolog.Context) context.Context {
	return WithLogger(ctx, add(FromContext(ctx).With()).Logger())
}

// WithRunID tags the logger with the run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("run_id", id) })
}

// WithScenario tags the logger with the sweep scenario.
func WithScenario(ctx context.Context, scenario string) context.Context {
	return with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("scenario", scenario) })
}

// WithSize tags the logger with the dataset size of the current step.
func WithSize(ctx context.Context, n int) context.Context {
	return with(ctx, func(c zerolog.Context) zerolog.Context { return c.Int("size", n) })
}
