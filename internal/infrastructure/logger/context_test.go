package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return zap.New(core), logs
}

func TestWithContext_RoundTrip(t *testing.T) {
	log := zap.NewNop()
	ctx := WithContext(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
}

func TestFromContext_MissingLoggerIsNoop(t *testing.T) {
	log := FromContext(context.Background())
	require.NotNil(t, log)
	log.Info("must not panic")
}

func TestWithRequestID(t *testing.T) {
	log, logs := observedLogger()

	ctx, enriched := WithRequestID(context.Background(), log, "req-42")
	enriched.Info("created order")

	assert.Equal(t, "req-42", GetRequestID(ctx))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-42", logs.All()[0].ContextMap()["request_id"])

	// The enriched logger is also reachable through the context
	assert.Same(t, enriched, FromContext(ctx))
}

func TestWithActorRole(t *testing.T) {
	log, logs := observedLogger()

	ctx, enriched := WithActorRole(context.Background(), log, "SHIPPER")
	enriched.Info("submitted cod")

	assert.Equal(t, "SHIPPER", GetActorRole(ctx))
	assert.Equal(t, "SHIPPER", logs.All()[0].ContextMap()["actor_role"])
}

func TestWithUserID(t *testing.T) {
	log, logs := observedLogger()

	ctx, enriched := WithUserID(context.Background(), log, "8b9f4e00-1111-2222-3333-444455556666")
	enriched.Info("fetched batch")

	assert.Equal(t, "8b9f4e00-1111-2222-3333-444455556666", GetUserID(ctx))
	assert.Equal(t, "8b9f4e00-1111-2222-3333-444455556666", logs.All()[0].ContextMap()["user_id"])
}

func TestGetters_EmptyContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetActorRole(ctx))
	assert.Empty(t, GetUserID(ctx))
}

func TestEnrichmentStacks(t *testing.T) {
	log, logs := observedLogger()

	ctx, log := WithRequestID(context.Background(), log, "req-7")
	ctx, log = WithActorRole(ctx, log, "MANAGER")
	_, log = WithUserID(ctx, log, "u-1")

	log.Info("transitioned order")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Equal(t, "MANAGER", fields["actor_role"])
	assert.Equal(t, "u-1", fields["user_id"])
}

func TestWithTraceContext_NoSpan(t *testing.T) {
	log := zap.NewNop()
	// Without an active span the logger comes back unchanged
	assert.Same(t, log, WithTraceContext(context.Background(), log))
}
