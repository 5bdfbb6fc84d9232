package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })
	return sr
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := recordSpans(t)

	r := gin.New()
	r.Use(TracingWithConfig(TracingConfig{Enabled: false, ServiceName: "lastmile-test"}))
	r.GET("/orders", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracingWithConfig_RecordsSpanPerRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := recordSpans(t)

	r := gin.New()
	r.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "lastmile-test"}))
	r.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/abc123", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Name(), "/orders/:id")
}

func TestTracingWithConfig_EnrichesSpanAttributes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := recordSpans(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "lastmile-test"}))
	r.GET("/shipments", func(c *gin.Context) {
		// Stand-in for the JWT middleware writing its claims.
		c.Set(JWTUserIDKey, "user-77")
		c.Set(JWTRoleKey, "SHIPPER")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/shipments", nil))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	attrs := spanAttrs(spans[0])
	assert.Equal(t, "user-77", attrs["user_id"].AsString())
	assert.Equal(t, "SHIPPER", attrs["actor_role"].AsString())
	assert.NotEmpty(t, attrs["request_id"].AsString())
}

func TestTracingWithConfig_ErrorStatusMarksSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := recordSpans(t)

	r := gin.New()
	r.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "lastmile-test"}))
	r.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "Not Found", spans[0].Status().Description)
}

func TestTracingWithConfig_SuccessLeavesStatusUnset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := recordSpans(t)

	r := gin.New()
	r.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "lastmile-test"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestTraceRequestID_HeaderFallbackTruncated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-Request-ID", strings.Repeat("a", 500))

	id := traceRequestID(c)
	assert.Len(t, id, maxRequestIDLength)
}

func TestTraceRequestID_PrefersContextValue(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-Request-ID", "from-header")
	c.Set("request_id", "from-context")

	assert.Equal(t, "from-context", traceRequestID(c))
}

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "lastmile-backend", cfg.ServiceName)
}
