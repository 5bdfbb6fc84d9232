package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	// LoggerKey carries the request-scoped logger.
	LoggerKey contextKey = "logger"
	// RequestIDKey carries the request ID assigned at the edge.
	RequestIDKey contextKey = "request_id"
	// ActorRoleKey carries the authenticated actor's role.
	ActorRoleKey contextKey = "actor_role"
	// UserIDKey carries the authenticated user's ID.
	UserIDKey contextKey = "user_id"
)

// WithContext attaches the logger to the context.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext returns the logger stored in the context, or a no-op
// logger so callers never need a nil check.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID and returns a logger that tags
// every entry with it.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithActorRole stores the actor role and returns a tagged logger.
func WithActorRole(ctx context.Context, logger *zap.Logger, role string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, ActorRoleKey, role)
	enriched := logger.With(zap.String("actor_role", role))
	return WithContext(ctx, enriched), enriched
}

// WithUserID stores the user ID and returns a tagged logger.
func WithUserID(ctx context.Context, logger *zap.Logger, userID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	enriched := logger.With(zap.String("user_id", userID))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID returns the request ID from the context, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// GetActorRole returns the actor role from the context, or "".
func GetActorRole(ctx context.Context) string {
	role, _ := ctx.Value(ActorRoleKey).(string)
	return role
}

// GetUserID returns the user ID from the context, or "".
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

// WithTraceContext tags the logger with the active span's trace and
// span IDs so log lines can be joined to traces. Without a valid span
// the logger is returned unchanged.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}
