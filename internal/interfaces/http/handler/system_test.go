package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func systemRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSystemHandler()

	r := gin.New()
	r.GET("/system/info", h.GetSystemInfo)
	r.GET("/system/ping", h.Ping)
	return r
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	r := systemRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/system/info", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool               `json:"success"`
		Data    SystemInfoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.True(t, body.Success)
	assert.Equal(t, "Last Mile Backend API", body.Data.Name)
	assert.Equal(t, "1.0.0", body.Data.Version)
	assert.Equal(t, runtime.Version(), body.Data.GoVersion)
	assert.NotEmpty(t, body.Data.Uptime)
}

func TestSystemHandler_Ping(t *testing.T) {
	r := systemRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/system/ping", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool         `json:"success"`
		Data    PingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.True(t, body.Success)
	assert.Equal(t, "pong", body.Data.Message)
	assert.NotEmpty(t, body.Data.Timestamp)
}
