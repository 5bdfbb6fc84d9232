package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func bodyLimitRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(limit))
	r.POST("/upload", func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "truncated")
			return
		}
		c.String(http.StatusOK, "%d", len(data))
	})
	return r
}

func TestBodyLimit_UnderLimit(t *testing.T) {
	r := bodyLimitRouter(64)

	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString("tracking_code,cod_amount"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "24", w.Body.String())
}

func TestBodyLimit_DeclaredLengthTooLarge(t *testing.T) {
	r := bodyLimitRouter(16)

	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString(strings.Repeat("x", 64)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
}

func TestBodyLimit_ChunkedBodyCutOff(t *testing.T) {
	r := bodyLimitRouter(16)

	// No Content-Length, so the up-front check cannot fire and the
	// MaxBytesReader has to stop the read instead.
	req := httptest.NewRequest(http.MethodPost, "/upload", io.NopCloser(strings.NewReader(strings.Repeat("x", 64))))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "truncated", w.Body.String())
}

func TestBodyLimit_ExactLimit(t *testing.T) {
	r := bodyLimitRouter(8)

	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString("12345678"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
