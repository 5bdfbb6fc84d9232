package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newGinRouter(log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("request_id", "req-test")
		c.Next()
	})
	r.Use(GinMiddleware(log))
	return r
}

func TestGinMiddleware_LogsRequests(t *testing.T) {
	log, logs := observedLogger()
	r := newGinRouter(log)
	r.GET("/orders/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/abc?limit=5", nil)
	req.Header.Set("User-Agent", "backoffice-web")
	r.ServeHTTP(w, req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.InfoLevel, entry.Level)
	assert.Equal(t, "HTTP Request", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "req-test", fields["request_id"])
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/orders/abc", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, "limit=5", fields["query"])
	assert.Equal(t, "backoffice-web", fields["user_agent"])
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	run := func(status int) *observer.ObservedLogs {
		log, logs := observedLogger()
		r := newGinRouter(log)
		r.GET("/probe", func(c *gin.Context) { c.Status(status) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
		return logs
	}

	t.Run("4xx logs at warn", func(t *testing.T) {
		logs := run(http.StatusNotFound)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zap.WarnLevel, logs.All()[0].Level)
	})

	t.Run("5xx logs at error", func(t *testing.T) {
		logs := run(http.StatusBadGateway)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zap.ErrorLevel, logs.All()[0].Level)
	})

	t.Run("2xx logs at info", func(t *testing.T) {
		logs := run(http.StatusCreated)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zap.InfoLevel, logs.All()[0].Level)
	})
}

func TestGinMiddleware_AttachesRequestLogger(t *testing.T) {
	log, _ := observedLogger()
	r := newGinRouter(log)

	var inHandler *zap.Logger
	r.GET("/probe", func(c *gin.Context) {
		inHandler = GetGinLogger(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
	require.NotNil(t, inHandler)
}

func TestGetGinLogger_MissingIsNoop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	log := GetGinLogger(c)
	require.NotNil(t, log)
	log.Info("must not panic")
}

func TestRecovery(t *testing.T) {
	log, logs := observedLogger()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(log))
	r.GET("/boom", func(c *gin.Context) {
		panic("settlement exploded")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.ErrorLevel, entry.Level)
	assert.Equal(t, "Panic recovered", entry.Message)
	assert.Equal(t, "/boom", entry.ContextMap()["path"])
}
