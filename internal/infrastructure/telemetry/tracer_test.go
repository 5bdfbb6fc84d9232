package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lastmile/backend/internal/infrastructure/telemetry"
)

func disabledConfig() telemetry.Config {
	return telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "lastmile-test",
	}
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := disabledConfig()

	tp, err := telemetry.NewTracerProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, tp)

	assert.False(t, tp.IsEnabled())
	assert.Equal(t, cfg.ServiceName, tp.GetConfig().ServiceName)
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestTracerProvider_DisabledStillHandsOutTracers(t *testing.T) {
	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, disabledConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	tracer := tp.Tracer("orders")
	require.NotNil(t, tracer)

	_, span := tracer.Start(ctx, "order.create")
	span.End()
}

func TestTracerProvider_DisabledFlushAndShutdownAreNoOps(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), disabledConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.NoError(t, tp.ForceFlush(context.Background()))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, tp.Shutdown(cancelled))
}

func TestNewTracerProvider_SamplingRatiosAccepted(t *testing.T) {
	for _, ratio := range []float64{0.0, 0.5, 1.0} {
		cfg := disabledConfig()
		cfg.SamplingRatio = ratio

		tp, err := telemetry.NewTracerProvider(context.Background(), cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.NoError(t, tp.Shutdown(context.Background()))
	}
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	// Needs a reachable OTLP collector, so only runs outside -short.
	if testing.Short() {
		t.Skip("requires a local collector")
	}

	ctx := context.Background()
	cfg := disabledConfig()
	cfg.Enabled = true
	cfg.Insecure = true

	tp, err := telemetry.NewTracerProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, tp.IsEnabled())

	_, span := tp.Tracer("orders").Start(ctx, "order.create")
	span.End()

	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}
