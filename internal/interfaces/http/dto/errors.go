package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
	// ErrCodeValidationLength is used when a field length is invalid
	ErrCodeValidationLength = "ERR_VALIDATION_LENGTH"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the actor lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Order lifecycle error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeTransitionDenied is used when a status transition is not allowed for the actor
	ErrCodeTransitionDenied = "ERR_TRANSITION_DENIED"
	// ErrCodeEditDenied is used when a field edit is not allowed for the actor or status
	ErrCodeEditDenied = "ERR_EDIT_DENIED"
	// ErrCodeWeightOutOfBand is used when an actual weight correction is out of tolerance
	ErrCodeWeightOutOfBand = "ERR_WEIGHT_OUT_OF_BAND"
	// ErrCodeTrackingExhausted is used when tracking number generation runs out of attempts
	ErrCodeTrackingExhausted = "ERR_TRACKING_EXHAUSTED"
)

// Shipment and assignment error codes
const (
	// ErrCodeOrderNotAddable is used when an order status does not permit shipment assignment
	ErrCodeOrderNotAddable = "ERR_ORDER_NOT_ADDABLE"
	// ErrCodeDuplicateOrder is used when an order is added to a shipment twice
	ErrCodeDuplicateOrder = "ERR_DUPLICATE_ORDER"
	// ErrCodeAlreadyInShipment is used when an order already belongs to an active shipment
	ErrCodeAlreadyInShipment = "ERR_ALREADY_IN_SHIPMENT"
	// ErrCodeServiceTypeExcluded is used when a shipper's service type excludes the order
	ErrCodeServiceTypeExcluded = "ERR_SERVICE_TYPE_EXCLUDED"
	// ErrCodeNoAreaCoverage is used when no assignment covers the order's delivery area
	ErrCodeNoAreaCoverage = "ERR_NO_AREA_COVERAGE"
	// ErrCodeCapacityExceeded is used when a shipment exceeds the vehicle capacity
	ErrCodeCapacityExceeded = "ERR_CAPACITY_EXCEEDED"
	// ErrCodeAssignmentOverlap is used when shipper area assignments overlap in time
	ErrCodeAssignmentOverlap = "ERR_ASSIGNMENT_OVERLAP"
	// ErrCodeOfficeMismatch is used when a resource belongs to a different office
	ErrCodeOfficeMismatch = "ERR_OFFICE_MISMATCH"
)

// Payment and settlement error codes
const (
	// ErrCodeShipperMismatch is used when a submission targets another shipper's order
	ErrCodeShipperMismatch = "ERR_SHIPPER_MISMATCH"
	// ErrCodeSubmissionUnavailable is used when an order cannot accept a payment submission
	ErrCodeSubmissionUnavailable = "ERR_SUBMISSION_UNAVAILABLE"
	// ErrCodeAmountExceedsRemaining is used when a payment exceeds the remaining amount owed
	ErrCodeAmountExceedsRemaining = "ERR_AMOUNT_EXCEEDS_REMAINING"
	// ErrCodeEmptyBatch is used when a settlement batch has nothing to settle
	ErrCodeEmptyBatch = "ERR_EMPTY_BATCH"
	// ErrCodeInsufficientStock is used when product stock is insufficient
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
)

// Promotion error codes
const (
	// ErrCodePromotionInactive is used when a promotion is disabled
	ErrCodePromotionInactive = "ERR_PROMOTION_INACTIVE"
	// ErrCodePromotionNotStarted is used before a promotion's start date
	ErrCodePromotionNotStarted = "ERR_PROMOTION_NOT_STARTED"
	// ErrCodePromotionEnded is used after a promotion's end date
	ErrCodePromotionEnded = "ERR_PROMOTION_ENDED"
	// ErrCodePromotionNotHeld is used when the customer does not hold the promotion
	ErrCodePromotionNotHeld = "ERR_PROMOTION_NOT_HELD"
	// ErrCodeUsageLimitReached is used when a promotion's total usage limit is reached
	ErrCodeUsageLimitReached = "ERR_USAGE_LIMIT_REACHED"
	// ErrCodeDailyLimitReached is used when a promotion's per-day limit is reached
	ErrCodeDailyLimitReached = "ERR_DAILY_LIMIT_REACHED"
	// ErrCodePromotionNotEligible is used when eligibility conditions are not met
	ErrCodePromotionNotEligible = "ERR_PROMOTION_NOT_ELIGIBLE"
	// ErrCodeCodeExhausted is used when promotion code generation runs out of attempts
	ErrCodeCodeExhausted = "ERR_CODE_EXHAUSTED"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeTooManyRequests is an alias for rate limiting
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,
	ErrCodeValidationLength:   http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Actor permission denials -> 403 Forbidden
	ErrCodeTransitionDenied: http.StatusForbidden,
	ErrCodeEditDenied:       http.StatusForbidden,
	ErrCodeShipperMismatch:  http.StatusForbidden,
	ErrCodeOfficeMismatch:   http.StatusForbidden,
	ErrCodePromotionNotHeld: http.StatusForbidden,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:           http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:           http.StatusUnprocessableEntity,
	ErrCodeWeightOutOfBand:        http.StatusUnprocessableEntity,
	ErrCodeOrderNotAddable:        http.StatusUnprocessableEntity,
	ErrCodeServiceTypeExcluded:    http.StatusUnprocessableEntity,
	ErrCodeNoAreaCoverage:         http.StatusUnprocessableEntity,
	ErrCodeCapacityExceeded:       http.StatusUnprocessableEntity,
	ErrCodeSubmissionUnavailable:  http.StatusUnprocessableEntity,
	ErrCodeAmountExceedsRemaining: http.StatusUnprocessableEntity,
	ErrCodeEmptyBatch:             http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:      http.StatusUnprocessableEntity,
	ErrCodePromotionInactive:      http.StatusUnprocessableEntity,
	ErrCodePromotionNotStarted:    http.StatusUnprocessableEntity,
	ErrCodePromotionEnded:         http.StatusUnprocessableEntity,
	ErrCodeUsageLimitReached:      http.StatusUnprocessableEntity,
	ErrCodeDailyLimitReached:      http.StatusUnprocessableEntity,
	ErrCodePromotionNotEligible:   http.StatusUnprocessableEntity,

	// Conflicts on unique resources -> 409 Conflict
	ErrCodeDuplicateOrder:    http.StatusConflict,
	ErrCodeAlreadyInShipment: http.StatusConflict,
	ErrCodeAssignmentOverlap: http.StatusConflict,
	ErrCodeTrackingExhausted: http.StatusConflict,
	ErrCodeCodeExhausted:     http.StatusConflict,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to transport error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"ORDER_NOT_FOUND":         ErrCodeNotFound,
	"ALREADY_EXISTS":          ErrCodeAlreadyExists,
	"INVALID_INPUT":           ErrCodeInvalidInput,
	"INVALID_STATE":           ErrCodeInvalidState,
	"UNAUTHORIZED":            ErrCodeUnauthorized,
	"FORBIDDEN":               ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":    ErrCodeConcurrencyConflict,
	"CONCURRENT_MODIFICATION": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":        ErrCodeValidation,
	"BAD_REQUEST":             ErrCodeBadRequest,
	"INTERNAL_ERROR":          ErrCodeInternal,

	// Order lifecycle
	"TRANSITION_DENIED":  ErrCodeTransitionDenied,
	"EDIT_DENIED":        ErrCodeEditDenied,
	"WEIGHT_OUT_OF_BAND": ErrCodeWeightOutOfBand,
	"TRACKING_EXHAUSTED": ErrCodeTrackingExhausted,

	// Shipments and assignments
	"ORDER_NOT_ADDABLE":        ErrCodeOrderNotAddable,
	"DUPLICATE_ORDER":          ErrCodeDuplicateOrder,
	"ALREADY_IN_SHIPMENT":      ErrCodeAlreadyInShipment,
	"SERVICE_TYPE_EXCLUDED":    ErrCodeServiceTypeExcluded,
	"NO_AREA_COVERAGE":         ErrCodeNoAreaCoverage,
	"CAPACITY_EXCEEDED":        ErrCodeCapacityExceeded,
	"ASSIGNMENT_OVERLAP":       ErrCodeAssignmentOverlap,
	"OFFICE_MISMATCH":          ErrCodeOfficeMismatch,
	"EMPLOYEE_OFFICE_MISMATCH": ErrCodeOfficeMismatch,

	// Payments and settlement
	"SHIPPER_MISMATCH":         ErrCodeShipperMismatch,
	"SUBMISSION_UNAVAILABLE":   ErrCodeSubmissionUnavailable,
	"AMOUNT_EXCEEDS_REMAINING": ErrCodeAmountExceedsRemaining,
	"EMPTY_BATCH":              ErrCodeEmptyBatch,
	"INSUFFICIENT_STOCK":       ErrCodeInsufficientStock,

	// Accounts and tokens
	"INVALID_CREDENTIALS": ErrCodeUnauthorized,
	"ACCOUNT_LOCKED":      ErrCodeForbidden,
	"ACCOUNT_DEACTIVATED": ErrCodeForbidden,
	"ACCOUNT_PENDING":     ErrCodeForbidden,
	"ACCOUNT_INACTIVE":    ErrCodeForbidden,
	"TOKEN_EXPIRED":       ErrCodeTokenExpired,
	"TOKEN_INVALID":       ErrCodeTokenInvalid,
	"TOKEN_MAX_REFRESH":   ErrCodeTokenInvalid,
	"TOKEN_ERROR":         ErrCodeUnauthorized,
	"USER_NOT_FOUND":      ErrCodeNotFound,
	"PRODUCT_NOT_FOUND":   ErrCodeNotFound,
	"USERNAME_EXISTS":     ErrCodeAlreadyExists,
	"PASSWORD_HASH_ERROR": ErrCodeInternal,

	// Promotions
	"PROMOTION_INACTIVE":    ErrCodePromotionInactive,
	"PROMOTION_NOT_STARTED": ErrCodePromotionNotStarted,
	"PROMOTION_ENDED":       ErrCodePromotionEnded,
	"PROMOTION_NOT_HELD":    ErrCodePromotionNotHeld,
	"USAGE_LIMIT_REACHED":   ErrCodeUsageLimitReached,
	"DAILY_LIMIT_REACHED":   ErrCodeDailyLimitReached,
	"NOT_FIRST_TIME_USER":   ErrCodePromotionNotEligible,
	"ACCOUNT_TOO_OLD":       ErrCodePromotionNotEligible,
	"ORDER_VALUE_TOO_LOW":   ErrCodePromotionNotEligible,
	"ORDER_COUNT_TOO_LOW":   ErrCodePromotionNotEligible,
	"CODE_EXHAUSTED":        ErrCodeCodeExhausted,
}

// NormalizeErrorCode converts a domain error code to the transport format.
// Codes starting with INVALID_ fall back to the validation code, everything
// else unknown is treated as a business rule violation so the status stays
// in the 4xx range instead of leaking a 500.
func NormalizeErrorCode(code string) string {
	if mapped, ok := DomainErrorCodeMapping[code]; ok {
		return mapped
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	if len(code) > 8 && code[:8] == "INVALID_" {
		return ErrCodeValidation
	}
	return ErrCodeBusinessRule
}
