package shared

// DomainError is an error carrying a stable machine-readable code.
// Handlers map the code to an HTTP status and echo it to clients.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError builds a DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Errors shared across aggregates. Compared with errors.Is against
// these sentinel values.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Errors raised by a single aggregate but checked by services and
// handlers in other packages.
var (
	ErrCapacityExceeded  = NewDomainError("CAPACITY_EXCEEDED", "Vehicle capacity exceeded")
	ErrAssignmentOverlap = NewDomainError("ASSIGNMENT_OVERLAP", "Assignment overlaps an existing one for the same area")
	ErrUsageLimitReached = NewDomainError("USAGE_LIMIT_REACHED", "Promotion usage limit reached")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrAmountExceedsOwed = NewDomainError("AMOUNT_EXCEEDS_REMAINING", "Payment amount exceeds the remaining amount owed")
)
