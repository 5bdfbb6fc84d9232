package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func manualMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func metricsRouter(t *testing.T) (*gin.Engine, *sdkmetric.ManualReader) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mp, reader := manualMeter(t)
	r := gin.New()
	r.Use(HTTPMetricsWithMeter(mp.Meter("http.server"), true))
	r.GET("/orders/:id", func(c *gin.Context) {
		c.Set(JWTRoleKey, "OFFICE_STAFF")
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	r.POST("/cod", func(c *gin.Context) {
		c.Status(http.StatusUnprocessableEntity)
	})
	return r, reader
}

func TestHTTPMetrics_DisabledPassThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(HTTPMetrics(HTTPMetricsConfig{Enabled: false}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetrics_NilMeterProviderPassThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(HTTPMetrics(HTTPMetricsConfig{Enabled: true, MeterProvider: nil}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetrics_CountsRequestsByRoutePattern(t *testing.T) {
	r, reader := metricsRouter(t)

	for _, id := range []string{"a1", "b2", "c3"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/"+id, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	rm := collect(t, reader)
	m := findMetric(rm, "http_server_request_total")
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1, "route pattern should fold all IDs into one series")

	dp := sum.DataPoints[0]
	assert.Equal(t, int64(3), dp.Value)

	route, _ := dp.Attributes.Value(attribute.Key("http.route"))
	assert.Equal(t, "/orders/:id", route.AsString())
	role, _ := dp.Attributes.Value(attribute.Key("actor_role"))
	assert.Equal(t, "OFFICE_STAFF", role.AsString())
}

func TestHTTPMetrics_StatusCodeLabel(t *testing.T) {
	r, reader := metricsRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cod", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	rm := collect(t, reader)
	m := findMetric(rm, "http_server_request_total")
	require.NotNil(t, m)

	sum := m.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	status, _ := sum.DataPoints[0].Attributes.Value(attribute.Key("http.status_code"))
	assert.Equal(t, int64(http.StatusUnprocessableEntity), status.AsInt64())
}

func TestHTTPMetrics_RecordsDurationHistogram(t *testing.T) {
	r, reader := metricsRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/x", nil))

	rm := collect(t, reader)
	m := findMetric(rm, "http_server_request_duration_seconds")
	require.NotNil(t, m)

	hist, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestHTTPMetrics_RequestAndResponseSize(t *testing.T) {
	r, reader := metricsRouter(t)

	body := strings.NewReader(`{"tracking_code":"SPXHN0001","amount_vnd":185000}`)
	req := httptest.NewRequest(http.MethodPost, "/cod", body)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// GET with a JSON response exercises the response size histogram.
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/orders/y", nil))

	rm := collect(t, reader)

	reqSize := findMetric(rm, "http_server_request_size_bytes")
	require.NotNil(t, reqSize)
	reqHist := reqSize.Data.(metricdata.Histogram[float64])
	require.NotEmpty(t, reqHist.DataPoints)
	assert.Greater(t, reqHist.DataPoints[0].Sum, float64(0))

	respSize := findMetric(rm, "http_server_response_size_bytes")
	require.NotNil(t, respSize)
}

func TestHTTPMetrics_UnmatchedRouteFoldsToUnknown(t *testing.T) {
	r, reader := metricsRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope/123", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	rm := collect(t, reader)
	m := findMetric(rm, "http_server_request_total")
	require.NotNil(t, m)

	sum := m.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	route, _ := sum.DataPoints[0].Attributes.Value(attribute.Key("http.route"))
	assert.Equal(t, "unknown", route.AsString())
}

func TestGetActorRoleFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, getActorRoleFromContext(c))

	c.Set(JWTRoleKey, "SHIPPER")
	assert.Equal(t, "SHIPPER", getActorRoleFromContext(c))
}
