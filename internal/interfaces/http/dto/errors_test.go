package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeValidationRequired, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeBusinessRule, http.StatusUnprocessableEntity},
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{ErrCodeTransitionDenied, http.StatusForbidden},
		{ErrCodeEditDenied, http.StatusForbidden},
		{ErrCodeShipperMismatch, http.StatusForbidden},
		{ErrCodeOfficeMismatch, http.StatusForbidden},
		{ErrCodeWeightOutOfBand, http.StatusUnprocessableEntity},
		{ErrCodeOrderNotAddable, http.StatusUnprocessableEntity},
		{ErrCodeNoAreaCoverage, http.StatusUnprocessableEntity},
		{ErrCodeCapacityExceeded, http.StatusUnprocessableEntity},
		{ErrCodeSubmissionUnavailable, http.StatusUnprocessableEntity},
		{ErrCodeAmountExceedsRemaining, http.StatusUnprocessableEntity},
		{ErrCodePromotionEnded, http.StatusUnprocessableEntity},
		{ErrCodeDuplicateOrder, http.StatusConflict},
		{ErrCodeAlreadyInShipment, http.StatusConflict},
		{ErrCodeAssignmentOverlap, http.StatusConflict},
		{ErrCodeTrackingExhausted, http.StatusConflict},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Domain codes should be normalized
		{"NOT_FOUND", ErrCodeNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"INVALID_STATE", ErrCodeInvalidState},
		{"UNAUTHORIZED", ErrCodeUnauthorized},
		{"FORBIDDEN", ErrCodeForbidden},
		{"CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict},
		{"CONCURRENT_MODIFICATION", ErrCodeConcurrencyConflict},
		{"INSUFFICIENT_STOCK", ErrCodeInsufficientStock},
		{"VALIDATION_ERROR", ErrCodeValidation},
		{"BAD_REQUEST", ErrCodeBadRequest},
		{"INTERNAL_ERROR", ErrCodeInternal},
		{"TRANSITION_DENIED", ErrCodeTransitionDenied},
		{"EDIT_DENIED", ErrCodeEditDenied},
		{"WEIGHT_OUT_OF_BAND", ErrCodeWeightOutOfBand},
		{"ORDER_NOT_ADDABLE", ErrCodeOrderNotAddable},
		{"ALREADY_IN_SHIPMENT", ErrCodeAlreadyInShipment},
		{"SERVICE_TYPE_EXCLUDED", ErrCodeServiceTypeExcluded},
		{"NO_AREA_COVERAGE", ErrCodeNoAreaCoverage},
		{"ASSIGNMENT_OVERLAP", ErrCodeAssignmentOverlap},
		{"OFFICE_MISMATCH", ErrCodeOfficeMismatch},
		{"EMPLOYEE_OFFICE_MISMATCH", ErrCodeOfficeMismatch},
		{"SHIPPER_MISMATCH", ErrCodeShipperMismatch},
		{"SUBMISSION_UNAVAILABLE", ErrCodeSubmissionUnavailable},
		{"AMOUNT_EXCEEDS_REMAINING", ErrCodeAmountExceedsRemaining},
		{"PROMOTION_NOT_STARTED", ErrCodePromotionNotStarted},
		{"PROMOTION_NOT_HELD", ErrCodePromotionNotHeld},
		{"NOT_FIRST_TIME_USER", ErrCodePromotionNotEligible},
		{"ORDER_VALUE_TOO_LOW", ErrCodePromotionNotEligible},
		{"DAILY_LIMIT_REACHED", ErrCodeDailyLimitReached},
		// New codes should pass through unchanged
		{ErrCodeNotFound, ErrCodeNotFound},
		{ErrCodeValidation, ErrCodeValidation},
		// Unmapped INVALID_ codes fall back to validation
		{"INVALID_WEIGHT", ErrCodeValidation},
		{"INVALID_SERVICE_TYPE", ErrCodeValidation},
		// Anything else falls back to a business rule violation
		{"CUSTOM_ERROR", ErrCodeBusinessRule},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestDomainErrorCodeMappingTargets(t *testing.T) {
	// Every mapped transport code must resolve to a concrete HTTP status
	for domainCode, transportCode := range DomainErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[transportCode]
		assert.True(t, ok, "Mapping target for %s should have an HTTP status", domainCode)
	}
}

func TestErrorCodeConstants(t *testing.T) {
	// Ensure all error codes are in the HTTP status map
	allCodes := []string{
		ErrCodeUnknown,
		ErrCodeInternal,
		ErrCodeValidation,
		ErrCodeValidationRequired,
		ErrCodeValidationFormat,
		ErrCodeValidationRange,
		ErrCodeValidationLength,
		ErrCodeUnauthorized,
		ErrCodeForbidden,
		ErrCodeTokenExpired,
		ErrCodeTokenInvalid,
		ErrCodeNotFound,
		ErrCodeAlreadyExists,
		ErrCodeConflict,
		ErrCodeConcurrencyConflict,
		ErrCodeInvalidState,
		ErrCodeBusinessRule,
		ErrCodeInsufficientStock,
		ErrCodeTransitionDenied,
		ErrCodeEditDenied,
		ErrCodeWeightOutOfBand,
		ErrCodeTrackingExhausted,
		ErrCodeOrderNotAddable,
		ErrCodeDuplicateOrder,
		ErrCodeAlreadyInShipment,
		ErrCodeServiceTypeExcluded,
		ErrCodeNoAreaCoverage,
		ErrCodeCapacityExceeded,
		ErrCodeAssignmentOverlap,
		ErrCodeOfficeMismatch,
		ErrCodeShipperMismatch,
		ErrCodeSubmissionUnavailable,
		ErrCodeAmountExceedsRemaining,
		ErrCodeEmptyBatch,
		ErrCodePromotionInactive,
		ErrCodePromotionNotStarted,
		ErrCodePromotionEnded,
		ErrCodePromotionNotHeld,
		ErrCodeUsageLimitReached,
		ErrCodeDailyLimitReached,
		ErrCodePromotionNotEligible,
		ErrCodeCodeExhausted,
		ErrCodeBadRequest,
		ErrCodeInvalidInput,
		ErrCodeInvalidJSON,
		ErrCodeRateLimited,
		ErrCodeTooManyRequests,
	}

	for _, code := range allCodes {
		t.Run(code, func(t *testing.T) {
			status, ok := ErrorCodeHTTPStatus[code]
			assert.True(t, ok, "Error code %s should be in ErrorCodeHTTPStatus map", code)
			assert.Greater(t, status, 0, "Status code should be positive")
		})
	}
}

func TestErrorCodeFormat(t *testing.T) {
	for code := range ErrorCodeHTTPStatus {
		assert.True(t, strings.HasPrefix(code, "ERR_"), "transport code %s must carry the ERR_ prefix", code)
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("NOT_FOUND", "Order not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	// Domain codes are normalized to transport codes on the way out
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Order not found", resp.Error.Message)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	requestID := "req-123-456"
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Order not found", requestID)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Order not found", resp.Error.Message)
	assert.Equal(t, requestID, resp.Error.RequestID)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "cod_amount", Message: "Must not be negative"},
		{Field: "delivery_ward_code", Message: "Unknown ward code"},
	}
	requestID := "req-789"

	resp := NewValidationErrorResponse("Validation failed", requestID, details)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "Validation failed", resp.Error.Message)
	assert.Equal(t, requestID, resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "cod_amount", resp.Error.Details[0].Field)
	assert.Equal(t, "Must not be negative", resp.Error.Details[0].Message)
}

func TestNewErrorResponseWithHelp(t *testing.T) {
	help := "https://docs.example.com/errors/auth"
	resp := NewErrorResponseWithHelp(ErrCodeUnauthorized, "Not authenticated", "req-001", help)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnauthorized, resp.Error.Code)
	assert.Equal(t, "Not authenticated", resp.Error.Message)
	assert.Equal(t, help, resp.Error.Help)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Order SPXHN0001 not found", "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeNotFound, decoded.Error.Code)
	assert.Equal(t, "Order SPXHN0001 not found", decoded.Error.Message)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
}

func TestErrorResponseTimestamp(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse(ErrCodeInternal, "Server error")
	after := time.Now()

	assert.False(t, resp.Error.Timestamp.Before(before))
	assert.False(t, resp.Error.Timestamp.After(after))
}

func TestNewSuccessResponse(t *testing.T) {
	data := map[string]string{"tracking_number": "SPXHN0001"}
	resp := NewSuccessResponse(data)

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Meta)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	data := []string{"SPXHN0001", "SPXHN0002"}
	resp := NewSuccessResponseWithMeta(data, 100, 1, 10)

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Meta)
	assert.Equal(t, int64(100), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 10, resp.Meta.PageSize)
	assert.Equal(t, 10, resp.Meta.TotalPages)
}

func TestNewSuccessResponseWithMetaPagination(t *testing.T) {
	tests := []struct {
		total         int64
		page          int
		pageSize      int
		expectedPages int
		expectedSize  int
	}{
		{100, 1, 10, 10, 10},
		{101, 1, 10, 11, 10}, // partial last page
		{0, 1, 10, 0, 10},
		{9, 1, 10, 1, 10},
		{10, 1, 10, 1, 10},
		{11, 1, 10, 2, 10},
		// Non-positive page sizes fall back to the default of 20
		{100, 1, 0, 5, 20},
		{100, 1, -1, 5, 20},
	}

	for _, tt := range tests {
		resp := NewSuccessResponseWithMeta(nil, tt.total, tt.page, tt.pageSize)
		assert.Equal(t, tt.expectedPages, resp.Meta.TotalPages)
		assert.Equal(t, tt.expectedSize, resp.Meta.PageSize)
	}
}
