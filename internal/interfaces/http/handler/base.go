package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/interfaces/http/dto"
	"github.com/lastmile/backend/internal/interfaces/http/middleware"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = "X-Request-ID"

// BaseHandler provides the response helpers every handler embeds.
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

// getUserID extracts the caller's user ID from the JWT claims. The
// X-User-ID header fallback exists for local development without a
// token.
func getUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr := middleware.GetJWTUserID(c)
	if userIDStr == "" {
		userIDStr = c.GetHeader("X-User-ID")
	}
	if userIDStr == "" {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return uuid.Parse(userIDStr)
}

// getActor builds the domain actor the permission checks run against.
func getActor(c *gin.Context) (order.Actor, error) {
	userID, err := getUserID(c)
	if err != nil {
		return order.Actor{}, err
	}

	role := order.ActorRole(middleware.GetJWTRole(c))
	if !role.IsValid() {
		return order.Actor{}, errors.New("actor role not found in context")
	}

	actor := order.Actor{UserID: userID, Role: role}
	if officeIDStr := middleware.GetJWTOfficeID(c); officeIDStr != "" {
		officeID, err := uuid.Parse(officeIDStr)
		if err != nil {
			return order.Actor{}, err
		}
		actor.OfficeID = &officeID
	}
	return actor, nil
}

// Success sends a 200 with the data wrapped in the standard envelope.
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code.
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
}

func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

// UnprocessableEntity sends a 422 with a caller-chosen error code;
// used for business rule rejections like state machine violations.
func (h *BaseHandler) UnprocessableEntity(c *gin.Context, code, message string) {
	h.Error(c, http.StatusUnprocessableEntity, code, message)
}

func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

func (h *BaseHandler) TooManyRequests(c *gin.Context, message string) {
	h.Error(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited, message)
}

// BindError sends a 400 for a request binding failure, with per-field
// details when the failure came from struct validation tags.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestID(c),
		details,
	))
}

// HandleError maps a service error to an HTTP response. Domain errors
// carry their own code, which also decides the status; anything else
// is reported as an opaque internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}

// HandleDomainError is an alias kept for readability at call sites
// that only ever receive domain errors.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	h.HandleError(c, err)
}
