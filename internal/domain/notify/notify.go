package notify

import (
	"context"

	"github.com/google/uuid"
)

// Category classifies notifications for the recipient's inbox
type Category string

const (
	CategoryOrder      Category = "ORDER"
	CategoryPromotion  Category = "PROMOTION"
	CategorySettlement Category = "SETTLEMENT"
)

// Notification is one message for one user
type Notification struct {
	RecipientID uuid.UUID
	Title       string
	Message     string
	Category    Category
	// ReferenceID points at the order, batch or promotion the message is
	// about.
	ReferenceID uuid.UUID
}

// Sink delivers notifications fire-and-forget. Implementations must never
// fail the caller's transaction; delivery errors are logged and dropped.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}
