package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestDefaultProfilingConfig(t *testing.T) {
	cfg := DefaultProfilingConfig()

	assert.True(t, cfg.Enabled)
	assert.Contains(t, cfg.SkipPaths, "/health")
	assert.Contains(t, cfg.SkipPaths, "/metrics")
	assert.Contains(t, cfg.SkipPathPrefixes, "/swagger")
}

func TestProfilingWithConfig_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ProfilingWithConfig(ProfilingConfig{Enabled: false}))

	called := false
	r.GET("/orders", func(c *gin.Context) {
		called = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func TestProfilingWithConfig_HandlerRuns(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Profiling())

	called := false
	r.GET("/api/v1/orders/:id", func(c *gin.Context) {
		called = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders/42", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func TestSkipProfiling(t *testing.T) {
	cfg := DefaultProfilingConfig()

	tests := []struct {
		path string
		skip bool
	}{
		{"/health", true},
		{"/metrics", true},
		{"/swagger/index.html", true},
		{"/api-docs/v2", true},
		{"/api/v1/orders", false},
		{"/healthcheck", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.skip, skipProfiling(cfg, tt.path), tt.path)
	}
}

func TestProfilingLabels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var labels map[string]string
	r := gin.New()
	r.GET("/api/v1/shipments/:id", func(c *gin.Context) {
		c.Set(JWTRoleKey, "SHIPPER")
		labels = profilingLabels(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/shipments/7", nil))

	assert.Equal(t, "GET", labels["method"])
	assert.Equal(t, "/api/v1/shipments/:id", labels["route"])
	assert.Equal(t, "shipments", labels["controller"])
	assert.Equal(t, "SHIPPER", labels["actor_role"])
}

func TestControllerFromRoute(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/api/v1/orders/:id", "orders"},
		{"/api/v1/orders/:id/assign", "orders"},
		{"/api/v2/settlements", "settlements"},
		{"/health", "health"},
		{"/api/v1/:id", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, controllerFromRoute(tt.route), tt.route)
	}
}

func TestIsVersionSegment(t *testing.T) {
	assert.True(t, isVersionSegment("v1"))
	assert.True(t, isVersionSegment("V12"))
	assert.False(t, isVersionSegment("v"))
	assert.False(t, isVersionSegment("version"))
	assert.False(t, isVersionSegment("orders"))
}
