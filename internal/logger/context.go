// internal/logger/context.go
//
// Request-scoped loggers.
//
// The intake handler derives a child logger carrying the request id,
// client IP, and device class, stores it with WithContext, and every
// helper below it logs through FromContext.  Code running without a
// request (startup, CLI) gets the process-wide logger.
package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// WithContext returns a copy of ctx carrying l.
func WithContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored by WithContext, or zap.S().
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.SugaredLogger); ok && l != nil {
			return l
		}
	}
	return zap.S()
}
