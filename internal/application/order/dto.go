package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastmile/backend/internal/domain/order"
)

// AddressInput carries one address in a request
type AddressInput struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Phone    string `json:"phone" binding:"required,min=8,max=20"`
	Street   string `json:"street" binding:"required,min=1,max=200"`
	CityCode int    `json:"city_code" binding:"required"`
	WardCode int    `json:"ward_code" binding:"required"`
}

// ToDomain converts the input to a domain address
func (a AddressInput) ToDomain() order.Address {
	return order.Address{
		Name:     a.Name,
		Phone:    a.Phone,
		Street:   a.Street,
		CityCode: a.CityCode,
		WardCode: a.WardCode,
	}
}

// CreateOrderItemInput represents an item in the create order request
type CreateOrderItemInput struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	ProductName string          `json:"product_name" binding:"required,min=1,max=200"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	UnitValue   decimal.Decimal `json:"unit_value" binding:"required"`
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	PickupType    order.PickupType       `json:"pickup_type" binding:"required"`
	Payer         order.Payer            `json:"payer" binding:"required"`
	CustomerID    uuid.UUID              `json:"customer_id" binding:"required"`
	ShopID        *uuid.UUID             `json:"shop_id"`
	Sender        AddressInput           `json:"sender" binding:"required"`
	Recipient     AddressInput           `json:"recipient" binding:"required"`
	OriginOffice  uuid.UUID              `json:"origin_office_id" binding:"required"`
	DestOffice    uuid.UUID              `json:"destination_office_id" binding:"required"`
	ServiceTypeID uuid.UUID              `json:"service_type_id" binding:"required"`
	WeightKg      decimal.Decimal        `json:"weight_kg" binding:"required"`
	DeclaredValue decimal.Decimal        `json:"declared_value"`
	CODAmount     decimal.Decimal        `json:"cod_amount"`
	PromotionCode string                 `json:"promotion_code"`
	Note          string                 `json:"note" binding:"max=500"`
	Items         []CreateOrderItemInput `json:"items"`
}

// TransitionRequest asks for one state machine action against an order
type TransitionRequest struct {
	Action order.Action `json:"action" binding:"required"`
	Note   string       `json:"note" binding:"max=500"`
}

// CancelOrderRequest carries the cancellation reason
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// CorrectWeightRequest carries the corrected weight measured at the office
type CorrectWeightRequest struct {
	WeightKg decimal.Decimal `json:"weight_kg" binding:"required"`
}

// UpdateAddressRequest replaces the sender or recipient address
type UpdateAddressRequest struct {
	Field   order.EditableField `json:"field" binding:"required"`
	Address AddressInput        `json:"address" binding:"required"`
}

// UpdateCODAmountRequest changes the cash-on-delivery amount
type UpdateCODAmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// UpdateNoteRequest replaces the order note
type UpdateNoteRequest struct {
	Note string `json:"note" binding:"max=500"`
}

// AddressResponse is one address in a response
type AddressResponse struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Street   string `json:"street"`
	CityCode int    `json:"city_code"`
	WardCode int    `json:"ward_code"`
}

// OrderItemResponse is one order line in a response
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitValue   decimal.Decimal `json:"unit_value"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	TrackingNumber   string              `json:"tracking_number"`
	Status           order.OrderStatus   `json:"status"`
	CreatorType      order.CreatorType   `json:"creator_type"`
	PickupType       order.PickupType    `json:"pickup_type"`
	Payer            order.Payer         `json:"payer"`
	PaymentStatus    order.PaymentStatus `json:"payment_status"`
	CODStatus        order.CODStatus     `json:"cod_status"`
	CustomerID       uuid.UUID           `json:"customer_id"`
	ShopID           *uuid.UUID          `json:"shop_id,omitempty"`
	Sender           AddressResponse     `json:"sender"`
	Recipient        AddressResponse     `json:"recipient"`
	OriginOfficeID   uuid.UUID           `json:"origin_office_id"`
	DestOfficeID     uuid.UUID           `json:"destination_office_id"`
	ServiceTypeID    uuid.UUID           `json:"service_type_id"`
	WeightKg         decimal.Decimal     `json:"weight_kg"`
	AdjustedWeightKg *decimal.Decimal    `json:"adjusted_weight_kg,omitempty"`
	DeclaredValue    decimal.Decimal     `json:"declared_value"`
	CODAmount        decimal.Decimal     `json:"cod_amount"`
	ShippingFee      decimal.Decimal     `json:"shipping_fee"`
	ServiceFee       decimal.Decimal     `json:"service_fee"`
	DiscountAmount   decimal.Decimal     `json:"discount_amount"`
	TotalFee         decimal.Decimal     `json:"total_fee"`
	PromotionID      *uuid.UUID          `json:"promotion_id,omitempty"`
	Note             string              `json:"note"`
	Items            []OrderItemResponse `json:"items,omitempty"`
	PaidAt           *time.Time          `json:"paid_at,omitempty"`
	DeliveredAt      *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt      *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason     string              `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// OrderHistoryResponse is one audit row in a response
type OrderHistoryResponse struct {
	ID         uuid.UUID         `json:"id"`
	OrderID    uuid.UUID         `json:"order_id"`
	FromStatus order.OrderStatus `json:"from_status"`
	ToStatus   order.OrderStatus `json:"to_status"`
	Action     order.Action      `json:"action"`
	ActorID    uuid.UUID         `json:"actor_id"`
	ActorRole  order.ActorRole   `json:"actor_role"`
	OfficeID   *uuid.UUID        `json:"office_id,omitempty"`
	Note       string            `json:"note,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// ListOrdersFilter holds filtering and pagination for order lists
type ListOrdersFilter struct {
	Page     int                `json:"page" form:"page"`
	PageSize int                `json:"page_size" form:"page_size"`
	Status   *order.OrderStatus `json:"status" form:"status"`
}

func toAddressResponse(a order.Address) AddressResponse {
	return AddressResponse{
		Name:     a.Name,
		Phone:    a.Phone,
		Street:   a.Street,
		CityCode: a.CityCode,
		WardCode: a.WardCode,
	}
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitValue:   item.UnitValue,
		})
	}

	return OrderResponse{
		ID:               o.ID,
		TrackingNumber:   o.TrackingNumber,
		Status:           o.Status,
		CreatorType:      o.CreatorType,
		PickupType:       o.PickupType,
		Payer:            o.Payer,
		PaymentStatus:    o.PaymentStatus,
		CODStatus:        o.CODStatus,
		CustomerID:       o.CustomerID,
		ShopID:           o.ShopID,
		Sender:           toAddressResponse(o.Sender),
		Recipient:        toAddressResponse(o.Recipient),
		OriginOfficeID:   o.OriginOfficeID,
		DestOfficeID:     o.DestinationOfficeID,
		ServiceTypeID:    o.ServiceTypeID,
		WeightKg:         o.WeightKg,
		AdjustedWeightKg: o.AdjustedWeightKg,
		DeclaredValue:    o.DeclaredValue.Amount(),
		CODAmount:        o.CODAmount.Amount(),
		ShippingFee:      o.ShippingFee.Amount(),
		ServiceFee:       o.ServiceFee.Amount(),
		DiscountAmount:   o.DiscountAmount.Amount(),
		TotalFee:         o.TotalFee.Amount(),
		PromotionID:      o.PromotionID,
		Note:             o.Note,
		Items:            items,
		PaidAt:           o.PaidAt,
		DeliveredAt:      o.DeliveredAt,
		CancelledAt:      o.CancelledAt,
		CancelReason:     o.CancelReason,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// ToOrderHistoryResponse converts one audit row to a response DTO
func ToOrderHistoryResponse(h order.OrderHistory) OrderHistoryResponse {
	return OrderHistoryResponse{
		ID:         h.ID,
		OrderID:    h.OrderID,
		FromStatus: h.FromStatus,
		ToStatus:   h.ToStatus,
		Action:     h.Action,
		ActorID:    h.ActorID,
		ActorRole:  h.ActorRole,
		OfficeID:   h.OfficeID,
		Note:       h.Note,
		OccurredAt: h.OccurredAt,
	}
}
