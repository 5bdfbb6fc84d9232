package order

import (
	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/shared"
)

const (
	EventOrderCreated        = "order.created"
	EventOrderStatusChanged  = "order.status_changed"
	EventOrderCancelled      = "order.cancelled"
	EventOrderDelivered      = "order.delivered"
	EventOrderWeightAdjusted = "order.weight_adjusted"
	EventOrderCODCollected   = "order.cod_collected"
)

// OrderCreatedEvent is raised when a new order enters the system
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	TrackingNumber string      `json:"tracking_number"`
	CustomerID     uuid.UUID   `json:"customer_id"`
	CreatorType    CreatorType `json:"creator_type"`
	Status         OrderStatus `json:"status"`
}

func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderCreated, "Order", o.ID),
		TrackingNumber:  o.TrackingNumber,
		CustomerID:      o.CustomerID,
		CreatorType:     o.CreatorType,
		Status:          o.Status,
	}
}

// OrderStatusChangedEvent is raised on every successful transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	TrackingNumber string      `json:"tracking_number"`
	FromStatus     OrderStatus `json:"from_status"`
	ToStatus       OrderStatus `json:"to_status"`
	Action         Action      `json:"action"`
	ActorID        uuid.UUID   `json:"actor_id"`
	ActorRole      ActorRole   `json:"actor_role"`
}

func NewOrderStatusChangedEvent(o *Order, from OrderStatus, action Action, actor Actor) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderStatusChanged, "Order", o.ID),
		TrackingNumber:  o.TrackingNumber,
		FromStatus:      from,
		ToStatus:        o.Status,
		Action:          action,
		ActorID:         actor.UserID,
		ActorRole:       actor.Role,
	}
}

// OrderCancelledEvent is raised when an order is cancelled, carrying the
// context the application layer needs for stock and promotion compensation
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	TrackingNumber string     `json:"tracking_number"`
	CustomerID     uuid.UUID  `json:"customer_id"`
	PromotionID    *uuid.UUID `json:"promotion_id,omitempty"`
	Payer          Payer      `json:"payer"`
	Refunded       bool       `json:"refunded"`
}

func NewOrderCancelledEvent(o *Order, refunded bool) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderCancelled, "Order", o.ID),
		TrackingNumber:  o.TrackingNumber,
		CustomerID:      o.CustomerID,
		PromotionID:     o.PromotionID,
		Payer:           o.Payer,
		Refunded:        refunded,
	}
}

// OrderDeliveredEvent is raised when a shipper completes delivery
type OrderDeliveredEvent struct {
	shared.BaseDomainEvent
	TrackingNumber string    `json:"tracking_number"`
	CustomerID     uuid.UUID `json:"customer_id"`
	CODAmount      string    `json:"cod_amount"`
	ShipperID      uuid.UUID `json:"shipper_id"`
}

func NewOrderDeliveredEvent(o *Order, shipperID uuid.UUID) *OrderDeliveredEvent {
	return &OrderDeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderDelivered, "Order", o.ID),
		TrackingNumber:  o.TrackingNumber,
		CustomerID:      o.CustomerID,
		CODAmount:       o.CODAmount.String(),
		ShipperID:       shipperID,
	}
}

// OrderWeightAdjustedEvent is raised when office staff correct the weight of
// a customer-created order, driving the customer-facing notification
type OrderWeightAdjustedEvent struct {
	shared.BaseDomainEvent
	TrackingNumber   string    `json:"tracking_number"`
	CustomerID       uuid.UUID `json:"customer_id"`
	OriginalWeightKg string    `json:"original_weight_kg"`
	NewWeightKg      string    `json:"new_weight_kg"`
	OldTotalFee      string    `json:"old_total_fee"`
	NewTotalFee      string    `json:"new_total_fee"`
	PromotionCleared bool      `json:"promotion_cleared"`
}

func NewOrderWeightAdjustedEvent(o *Order, originalWeight, newWeight, oldTotal, newTotal string, promotionCleared bool) *OrderWeightAdjustedEvent {
	return &OrderWeightAdjustedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventOrderWeightAdjusted, "Order", o.ID),
		TrackingNumber:   o.TrackingNumber,
		CustomerID:       o.CustomerID,
		OriginalWeightKg: originalWeight,
		NewWeightKg:      newWeight,
		OldTotalFee:      oldTotal,
		NewTotalFee:      newTotal,
		PromotionCleared: promotionCleared,
	}
}

// OrderCODCollectedEvent is raised when the shipper records cash collection
type OrderCODCollectedEvent struct {
	shared.BaseDomainEvent
	TrackingNumber string    `json:"tracking_number"`
	CODAmount      string    `json:"cod_amount"`
	ShipperID      uuid.UUID `json:"shipper_id"`
}

func NewOrderCODCollectedEvent(o *Order, shipperID uuid.UUID) *OrderCODCollectedEvent {
	return &OrderCODCollectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderCODCollected, "Order", o.ID),
		TrackingNumber:  o.TrackingNumber,
		CODAmount:       o.CODAmount.String(),
		ShipperID:       shipperID,
	}
}
