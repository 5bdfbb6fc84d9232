package models

import (
	"time"

	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddressColumns flattens a contact address into prefixed columns.
type AddressColumns struct {
	Name     string `gorm:"type:varchar(200);not null"`
	Phone    string `gorm:"type:varchar(50);not null"`
	Street   string `gorm:"type:text"`
	CityCode int    `gorm:"not null"`
	WardCode int    `gorm:"not null"`
}

// ToDomain converts the columns to a domain Address
func (a AddressColumns) ToDomain() order.Address {
	return order.Address{
		Name:     a.Name,
		Phone:    a.Phone,
		Street:   a.Street,
		CityCode: a.CityCode,
		WardCode: a.WardCode,
	}
}

// AddressColumnsFromDomain flattens a domain Address
func AddressColumnsFromDomain(a order.Address) AddressColumns {
	return AddressColumns{
		Name:     a.Name,
		Phone:    a.Phone,
		Street:   a.Street,
		CityCode: a.CityCode,
		WardCode: a.WardCode,
	}
}

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	TrackingNumber string              `gorm:"type:varchar(20);uniqueIndex"`
	Status         order.OrderStatus   `gorm:"type:varchar(30);not null;index"`
	CreatorType    order.CreatorType   `gorm:"type:varchar(20);not null"`
	PickupType     order.PickupType    `gorm:"type:varchar(20);not null"`
	Payer          order.Payer         `gorm:"type:varchar(20);not null"`
	PaymentStatus  order.PaymentStatus `gorm:"type:varchar(20);not null"`
	CODStatus      order.CODStatus     `gorm:"type:varchar(20);not null;column:cod_status"`

	CustomerID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ShopID     *uuid.UUID `gorm:"type:uuid;index"`

	Sender    AddressColumns `gorm:"embedded;embeddedPrefix:sender_"`
	Recipient AddressColumns `gorm:"embedded;embeddedPrefix:recipient_"`

	OriginOfficeID      uuid.UUID `gorm:"type:uuid;not null;index"`
	DestinationOfficeID uuid.UUID `gorm:"type:uuid;not null;index"`
	ServiceTypeID       uuid.UUID `gorm:"type:uuid;not null"`

	WeightKg         decimal.Decimal  `gorm:"type:decimal(10,3);not null"`
	AdjustedWeightKg *decimal.Decimal `gorm:"type:decimal(10,3)"`

	DeclaredValue  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CODAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0;column:cod_amount"`
	ShippingFee    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ServiceFee     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalFee       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	PromotionID *uuid.UUID `gorm:"type:uuid;index"`
	Note        string     `gorm:"type:varchar(500)"`

	Items []OrderItemModel `gorm:"foreignKey:OrderID"`

	PaidAt       *time.Time `gorm:"type:timestamptz"`
	DeliveredAt  *time.Time `gorm:"type:timestamptz;index"`
	CancelledAt  *time.Time `gorm:"type:timestamptz"`
	CancelReason string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order aggregate.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		TrackingNumber:      m.TrackingNumber,
		Status:              m.Status,
		CreatorType:         m.CreatorType,
		PickupType:          m.PickupType,
		Payer:               m.Payer,
		PaymentStatus:       m.PaymentStatus,
		CODStatus:           m.CODStatus,
		CustomerID:          m.CustomerID,
		ShopID:              m.ShopID,
		Sender:              m.Sender.ToDomain(),
		Recipient:           m.Recipient.ToDomain(),
		OriginOfficeID:      m.OriginOfficeID,
		DestinationOfficeID: m.DestinationOfficeID,
		ServiceTypeID:       m.ServiceTypeID,
		WeightKg:            m.WeightKg,
		AdjustedWeightKg:    m.AdjustedWeightKg,
		DeclaredValue:       valueobject.NewVND(m.DeclaredValue),
		CODAmount:           valueobject.NewVND(m.CODAmount),
		ShippingFee:         valueobject.NewVND(m.ShippingFee),
		ServiceFee:          valueobject.NewVND(m.ServiceFee),
		DiscountAmount:      valueobject.NewVND(m.DiscountAmount),
		TotalFee:            valueobject.NewVND(m.TotalFee),
		PromotionID:         m.PromotionID,
		Note:                m.Note,
		PaidAt:              m.PaidAt,
		DeliveredAt:         m.DeliveredAt,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
	}
	m.PopulateAggregateRoot(&o.BaseAggregateRoot)

	o.Items = make([]order.OrderItem, len(m.Items))
	for i := range m.Items {
		o.Items[i] = *m.Items[i].ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order aggregate.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.TrackingNumber = o.TrackingNumber
	m.Status = o.Status
	m.CreatorType = o.CreatorType
	m.PickupType = o.PickupType
	m.Payer = o.Payer
	m.PaymentStatus = o.PaymentStatus
	m.CODStatus = o.CODStatus
	m.CustomerID = o.CustomerID
	m.ShopID = o.ShopID
	m.Sender = AddressColumnsFromDomain(o.Sender)
	m.Recipient = AddressColumnsFromDomain(o.Recipient)
	m.OriginOfficeID = o.OriginOfficeID
	m.DestinationOfficeID = o.DestinationOfficeID
	m.ServiceTypeID = o.ServiceTypeID
	m.WeightKg = o.WeightKg
	m.AdjustedWeightKg = o.AdjustedWeightKg
	m.DeclaredValue = o.DeclaredValue.Amount()
	m.CODAmount = o.CODAmount.Amount()
	m.ShippingFee = o.ShippingFee.Amount()
	m.ServiceFee = o.ServiceFee.Amount()
	m.DiscountAmount = o.DiscountAmount.Amount()
	m.TotalFee = o.TotalFee.Amount()
	m.PromotionID = o.PromotionID
	m.Note = o.Note
	m.PaidAt = o.PaidAt
	m.DeliveredAt = o.DeliveredAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason

	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i].FromDomain(&o.Items[i])
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for an order line item.
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitValue   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() *order.OrderItem {
	return &order.OrderItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		UnitValue:   m.UnitValue,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain OrderItem.
func (m *OrderItemModel) FromDomain(i *order.OrderItem) {
	m.ID = i.ID
	m.OrderID = i.OrderID
	m.ProductID = i.ProductID
	m.ProductName = i.ProductName
	m.Quantity = i.Quantity
	m.UnitValue = i.UnitValue
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// OrderHistoryModel is the persistence model for the append-only order
// audit trail.
type OrderHistoryModel struct {
	BaseModel
	OrderID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_order_history_order_time,priority:1"`
	FromStatus order.OrderStatus `gorm:"type:varchar(30);not null"`
	ToStatus   order.OrderStatus `gorm:"type:varchar(30);not null"`
	Action     order.Action      `gorm:"type:varchar(30);not null"`
	ActorID    uuid.UUID         `gorm:"type:uuid;not null"`
	ActorRole  order.ActorRole   `gorm:"type:varchar(20);not null"`
	OfficeID   *uuid.UUID        `gorm:"type:uuid"`
	Note       string            `gorm:"type:varchar(500)"`
	OccurredAt time.Time         `gorm:"type:timestamptz;not null;index:idx_order_history_order_time,priority:2"`
}

// TableName returns the table name for GORM
func (OrderHistoryModel) TableName() string {
	return "order_history"
}

// ToDomain converts the persistence model to a domain OrderHistory row.
func (m *OrderHistoryModel) ToDomain() *order.OrderHistory {
	return &order.OrderHistory{
		BaseEntity: m.BaseModel.ToDomain(),
		OrderID:    m.OrderID,
		FromStatus: m.FromStatus,
		ToStatus:   m.ToStatus,
		Action:     m.Action,
		ActorID:    m.ActorID,
		ActorRole:  m.ActorRole,
		OfficeID:   m.OfficeID,
		Note:       m.Note,
		OccurredAt: m.OccurredAt,
	}
}

// FromDomain populates the persistence model from a domain OrderHistory row.
func (m *OrderHistoryModel) FromDomain(h *order.OrderHistory) {
	m.FromDomainBaseEntity(h.BaseEntity)
	m.OrderID = h.OrderID
	m.FromStatus = h.FromStatus
	m.ToStatus = h.ToStatus
	m.Action = h.Action
	m.ActorID = h.ActorID
	m.ActorRole = h.ActorRole
	m.OfficeID = h.OfficeID
	m.Note = h.Note
	m.OccurredAt = h.OccurredAt
}

// OrderHistoryModelFromDomain creates a new persistence model from a domain
// OrderHistory row.
func OrderHistoryModelFromDomain(h *order.OrderHistory) *OrderHistoryModel {
	m := &OrderHistoryModel{}
	m.FromDomain(h)
	return m
}
