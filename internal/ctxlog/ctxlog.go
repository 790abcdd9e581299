// Package ctxlog carries the application's slog.Logger through
// context.Context, so pipeline stages and the profile loader log through
// the instance the composition root configured.
package ctxlog

import (
	"context"
	"log/slog"
)

type loggerKeyType struct{}

var loggerKey loggerKeyType

// WithLogger returns a child context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger carried by ctx, or the process-wide
// default when none was attached. Callers never receive nil.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
