// Package middleware provides HTTP middleware for the delivery back office.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lastmile/backend/internal/infrastructure/telemetry"
)

// HTTPMetricsConfig configures the request metrics middleware.
type HTTPMetricsConfig struct {
	MeterProvider *telemetry.MeterProvider
	ServiceName   string
	Enabled       bool
}

// DefaultHTTPMetricsConfig returns the default metrics configuration.
func DefaultHTTPMetricsConfig() HTTPMetricsConfig {
	return HTTPMetricsConfig{
		ServiceName: "lastmile-backend",
		Enabled:     true,
	}
}

type httpInstruments struct {
	requestTotal    *telemetry.Counter
	requestDuration *telemetry.Histogram
	requestSize     *telemetry.Histogram
	responseSize    *telemetry.Histogram
	activeRequests  metric.Int64UpDownCounter
}

var (
	requestSizeBuckets  = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000}
	responseSizeBuckets = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000, 5000000}
)

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	requestTotal, err := telemetry.NewCounter(
		meter, "http_server_request_total", "Total number of HTTP requests", "{request}")
	if err != nil {
		return nil, err
	}

	requestDuration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency distribution in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	requestSize, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_size_bytes",
		Description: "HTTP request body size distribution in bytes",
		Unit:        "By",
		Boundaries:  requestSizeBuckets,
	})
	if err != nil {
		return nil, err
	}

	responseSize, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_response_size_bytes",
		Description: "HTTP response body size distribution in bytes",
		Unit:        "By",
		Boundaries:  responseSizeBuckets,
	})
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http_server_active_requests",
		metric.WithDescription("Number of currently active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpInstruments{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestSize:     requestSize,
		responseSize:    responseSize,
		activeRequests:  activeRequests,
	}, nil
}

// HTTPMetrics records request count, latency, payload sizes and in-flight
// requests per route pattern. Counters carry status_code and actor_role
// labels; histograms only method and route, to keep cardinality down.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.MeterProvider == nil || !cfg.MeterProvider.IsEnabled() {
		return func(c *gin.Context) { c.Next() }
	}
	return HTTPMetricsWithMeter(cfg.MeterProvider.Meter("http.server"), true)
}

// HTTPMetricsWithMeter builds the metrics middleware on a caller-supplied
// meter. Instrument registration failures degrade to a pass-through.
func HTTPMetricsWithMeter(meter metric.Meter, enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	inst, err := newHTTPInstruments(meter)
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		requestSize := c.Request.ContentLength

		inst.activeRequests.Add(ctx, 1)
		c.Next()
		inst.activeRequests.Add(ctx, -1)

		route := c.FullPath()
		if route == "" {
			// Unmatched paths all land in one bucket.
			route = "unknown"
		}

		countAttrs := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
			telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()),
		}
		if role := getActorRoleFromContext(c); role != "" {
			countAttrs = append(countAttrs, telemetry.AttrActorRole.String(role))
		}
		inst.requestTotal.Inc(ctx, countAttrs...)

		routeAttrs := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
		}
		inst.requestDuration.RecordDuration(ctx, time.Since(start), routeAttrs...)
		if requestSize > 0 {
			inst.requestSize.Record(ctx, float64(requestSize), routeAttrs...)
		}
		if size := c.Writer.Size(); size > 0 {
			inst.responseSize.Record(ctx, float64(size), routeAttrs...)
		}
	}
}

// getActorRoleFromContext reads the role the JWT middleware stored, if any.
func getActorRoleFromContext(c *gin.Context) string {
	if role, exists := c.Get(JWTRoleKey); exists {
		if r, ok := role.(string); ok {
			return r
		}
	}
	return ""
}
