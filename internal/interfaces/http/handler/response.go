package handler

import "github.com/lastmile/backend/internal/interfaces/http/dto"

// The types below only exist so swag can generate typed response
// schemas; handlers build actual responses through the dto package.

// APIResponse is the standard envelope with a typed data field.
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the envelope for failed requests.
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// SuccessResponse is the envelope for operations with no data payload.
// @Description Simple success response without data
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}
