package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastmile/backend/internal/interfaces/http/dto"
)

type codPayload struct {
	TrackingCode string `json:"tracking_code" binding:"required,min=8"`
	AmountVND    int64  `json:"amount_vnd" binding:"required,gte=0"`
	Method       string `json:"method" binding:"required,oneof=cash transfer"`
}

func bindTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	SetupValidator()
	r := gin.New()
	r.POST("/cod", func(c *gin.Context) {
		var p codPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

func postJSON(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/cod", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestHandleValidationError_FieldDetails(t *testing.T) {
	r := bindTestRouter()

	w, resp := postJSON(t, r, `{"tracking_code":"SPX","method":"crypto"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Request validation failed", resp.Error.Message)

	byField := map[string]string{}
	for _, d := range resp.Error.Details {
		byField[d.Field] = d.Message
	}
	// Tag name func makes details use json names, not Go field names.
	assert.Equal(t, "Must be at least 8", byField["tracking_code"])
	assert.Equal(t, "This field is required", byField["amount_vnd"])
	assert.Equal(t, "Must be one of: cash transfer", byField["method"])
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	r := bindTestRouter()

	w, resp := postJSON(t, r, `{"tracking_code":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Empty(t, resp.Error.Details)
	assert.NotEmpty(t, resp.Error.Message)
}

func TestHandleValidationError_ValidBodyPasses(t *testing.T) {
	r := bindTestRouter()

	w, _ := postJSON(t, r, `{"tracking_code":"SPXHN0001","amount_vnd":185000,"method":"cash"}`)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestFormatValidationErrors_RequestID(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-42")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-42", resp.Error.RequestID)
}

func TestMessageForTag_UnknownTag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetupValidator()
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var p struct {
			Phone string `json:"phone" binding:"required,startswith=0"`
		}
		if err := c.ShouldBindJSON(&p); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"phone":"84912345678"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "Failed validation: startswith", resp.Error.Details[0].Message)
}
