package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/interfaces/http/dto"
	"github.com/lastmile/backend/internal/interfaces/http/middleware"
)

func setJWTContext(c *gin.Context, userID uuid.UUID, role string) {
	c.Set(middleware.JWTUserIDKey, userID.String())
	c.Set(middleware.JWTRoleKey, role)
}

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandler_Success(t *testing.T) {
	c, w := newTestContext(t)
	h := &BaseHandler{}

	h.Success(c, map[string]string{"tracking_number": "SPXHN0001"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestBaseHandler_Created(t *testing.T) {
	c, w := newTestContext(t)
	h := &BaseHandler{}

	h.Created(c, map[string]string{"id": uuid.NewString()})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestBaseHandler_NoContent(t *testing.T) {
	c, w := newTestContext(t)
	h := &BaseHandler{}

	h.NoContent(c)
	// The engine flushes the status after the handler chain; the bare
	// test context needs the flush done explicitly.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestBaseHandler_ErrorHelpers(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name       string
		send       func(c *gin.Context)
		wantStatus int
		wantCode   string
	}{
		{"bad request", func(c *gin.Context) { h.BadRequest(c, "bad") }, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"not found", func(c *gin.Context) { h.NotFound(c, "missing") }, http.StatusNotFound, dto.ErrCodeNotFound},
		{"unauthorized", func(c *gin.Context) { h.Unauthorized(c, "no token") }, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"forbidden", func(c *gin.Context) { h.Forbidden(c, "not yours") }, http.StatusForbidden, dto.ErrCodeForbidden},
		{"conflict", func(c *gin.Context) { h.Conflict(c, "duplicate") }, http.StatusConflict, dto.ErrCodeConflict},
		{"unprocessable", func(c *gin.Context) { h.UnprocessableEntity(c, dto.ErrCodeTransitionDenied, "nope") }, http.StatusUnprocessableEntity, dto.ErrCodeTransitionDenied},
		{"internal", func(c *gin.Context) { h.InternalError(c, "boom") }, http.StatusInternalServerError, dto.ErrCodeInternal},
		{"rate limited", func(c *gin.Context) { h.TooManyRequests(c, "slow down") }, http.StatusTooManyRequests, dto.ErrCodeRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(t)
			tt.send(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestBaseHandler_ErrorIncludesRequestID(t *testing.T) {
	c, w := newTestContext(t)
	c.Set(RequestIDKey, "req-hn-42")
	h := &BaseHandler{}

	h.NotFound(c, "order not found")

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-hn-42", resp.Error.RequestID)
}

func TestBaseHandler_ErrorRequestIDFromHeader(t *testing.T) {
	c, w := newTestContext(t)
	c.Request.Header.Set(RequestIDKey, "req-from-header")
	h := &BaseHandler{}

	h.BadRequest(c, "bad")

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-from-header", resp.Error.RequestID)
}

func TestBaseHandler_HandleError(t *testing.T) {
	h := &BaseHandler{}

	t.Run("domain error decides status and code", func(t *testing.T) {
		c, w := newTestContext(t)

		h.HandleError(c, shared.NewDomainError("NOT_FOUND", "Order not found"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "Order not found", resp.Error.Message)
	})

	t.Run("unknown error is opaque internal", func(t *testing.T) {
		c, w := newTestContext(t)

		h.HandleError(c, assert.AnError)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, assert.AnError.Error())
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := newTestContext(t)

		h.HandleError(c, nil)

		assert.Empty(t, w.Body.String())
	})
}

func TestBaseHandler_ValidationError(t *testing.T) {
	c, w := newTestContext(t)
	h := &BaseHandler{}

	h.ValidationError(c, []dto.ValidationDetail{
		{Field: "amount_vnd", Message: "Must be at least 0"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "amount_vnd", resp.Error.Details[0].Field)
}

func TestGetActor(t *testing.T) {
	t.Run("full claims", func(t *testing.T) {
		c, _ := newTestContext(t)
		userID := uuid.New()
		officeID := uuid.New()
		c.Set(middleware.JWTUserIDKey, userID.String())
		c.Set(middleware.JWTRoleKey, string(order.RoleShipper))
		c.Set(middleware.JWTOfficeIDKey, officeID.String())

		actor, err := getActor(c)
		require.NoError(t, err)
		assert.Equal(t, userID, actor.UserID)
		assert.Equal(t, order.RoleShipper, actor.Role)
		require.NotNil(t, actor.OfficeID)
		assert.Equal(t, officeID, *actor.OfficeID)
	})

	t.Run("no office claim", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Set(middleware.JWTUserIDKey, uuid.NewString())
		c.Set(middleware.JWTRoleKey, string(order.RoleAdmin))

		actor, err := getActor(c)
		require.NoError(t, err)
		assert.Nil(t, actor.OfficeID)
	})

	t.Run("missing user", func(t *testing.T) {
		c, _ := newTestContext(t)

		_, err := getActor(c)
		assert.Error(t, err)
	})

	t.Run("invalid role", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Set(middleware.JWTUserIDKey, uuid.NewString())
		c.Set(middleware.JWTRoleKey, "JANITOR")

		_, err := getActor(c)
		assert.Error(t, err)
	})
}
