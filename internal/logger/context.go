package logger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// RequestIDHeader names the header the gateway echoes back to clients. A
// proxy in front of the service may have assigned an ID already; that one
// wins so a request keeps a single ID across hops.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

type loggerKey struct{}

// EnsureRequestID returns the upstream-assigned ID when present, otherwise
// a fresh one.
func EnsureRequestID(incoming string) string {
	if incoming != "" {
		return incoming
	}
	return uuid.New().String()
}

// WithRequestID stores the ID and a request-scoped logger on the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	log := Get().With(slog.String("request_id", requestID))
	ctx = context.WithValue(ctx, requestIDKey{}, requestID)
	return context.WithValue(ctx, loggerKey{}, log)
}

// FromContext returns the request-scoped logger, or the process logger when
// the context carries none.
func FromContext(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return log
	}
	return Get()
}

// RequestIDFromContext reads back the ID stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return ""
}
