package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/shared"
)

// OrderHistory is one append-only audit row per order action. Rows are never
// updated or deleted.
type OrderHistory struct {
	shared.BaseEntity
	OrderID    uuid.UUID
	FromStatus OrderStatus
	ToStatus   OrderStatus
	Action     Action
	ActorID    uuid.UUID
	ActorRole  ActorRole
	OfficeID   *uuid.UUID
	Note       string
	OccurredAt time.Time
}

// NewOrderHistory records one action against an order
func NewOrderHistory(orderID uuid.UUID, from, to OrderStatus, action Action, actor Actor, note string) (*OrderHistory, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if actor.UserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	return &OrderHistory{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		Action:     action,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		OfficeID:   actor.OfficeID,
		Note:       note,
		OccurredAt: time.Now(),
	}, nil
}
