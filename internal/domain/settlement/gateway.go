package settlement

import (
	"context"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/shared/valueobject"
)

// PaymentURLRequest carries the inputs for building a gateway payment URL
type PaymentURLRequest struct {
	TransactionCode string
	BatchCode       string
	BatchID         uuid.UUID
	Amount          valueobject.Money
	ClientIP        string
}

// CallbackResult is the verified outcome of a gateway callback
type CallbackResult struct {
	TransactionCode string
	Success         bool
	GatewayRef      string
	ResponseCode    string
}

// PaymentGateway abstracts the online payment provider. Callbacks carry a
// signature that must verify before the outcome is trusted.
type PaymentGateway interface {
	// CreatePaymentURL builds the redirect URL for one transaction
	CreatePaymentURL(ctx context.Context, req PaymentURLRequest) (string, error)

	// VerifyCallback checks the callback signature and extracts the outcome.
	// An invalid signature returns an error and the outcome is discarded.
	VerifyCallback(params map[string]string) (*CallbackResult, error)
}
