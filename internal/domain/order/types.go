package order

import "github.com/google/uuid"

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	StatusDraft               OrderStatus = "DRAFT"
	StatusPendingPickup       OrderStatus = "PENDING_PICKUP"
	StatusPickedUp            OrderStatus = "PICKED_UP"
	StatusAtOriginOffice      OrderStatus = "AT_ORIGIN_OFFICE"
	StatusConfirmed           OrderStatus = "CONFIRMED"
	StatusInTransit           OrderStatus = "IN_TRANSIT"
	StatusAtDestinationOffice OrderStatus = "AT_DESTINATION_OFFICE"
	StatusOutForDelivery      OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered           OrderStatus = "DELIVERED"
	StatusCancelled           OrderStatus = "CANCELLED"
	StatusReturning           OrderStatus = "RETURNING"
	StatusReturned            OrderStatus = "RETURNED"
)

// AllStatuses lists every order status, used for exhaustive table checks
var AllStatuses = []OrderStatus{
	StatusDraft,
	StatusPendingPickup,
	StatusPickedUp,
	StatusAtOriginOffice,
	StatusConfirmed,
	StatusInTransit,
	StatusAtDestinationOffice,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
	StatusReturning,
	StatusReturned,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal returns true for statuses that end the order lifecycle
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// ActorRole identifies who is requesting an operation on an order
type ActorRole string

const (
	RoleCustomer ActorRole = "CUSTOMER"
	RoleManager  ActorRole = "MANAGER"
	RoleAdmin    ActorRole = "ADMIN"
	RoleShipper  ActorRole = "SHIPPER"
)

// IsValid checks if the role is a valid ActorRole
func (r ActorRole) IsValid() bool {
	switch r {
	case RoleCustomer, RoleManager, RoleAdmin, RoleShipper:
		return true
	}
	return false
}

// IsStaff returns true for office-side roles
func (r ActorRole) IsStaff() bool {
	return r == RoleManager || r == RoleAdmin
}

// CreatorType records who originally created the order
type CreatorType string

const (
	CreatorUser    CreatorType = "USER"
	CreatorManager CreatorType = "MANAGER"
)

// IsValid checks if the creator type is valid
func (c CreatorType) IsValid() bool {
	return c == CreatorUser || c == CreatorManager
}

// PickupType records how the parcel enters the network
type PickupType string

const (
	PickupCourier PickupType = "COURIER_PICKUP"
	PickupDropOff PickupType = "DROP_OFF"
)

// IsValid checks if the pickup type is valid
func (p PickupType) IsValid() bool {
	return p == PickupCourier || p == PickupDropOff
}

// Payer identifies who pays the shipping fee
type Payer string

const (
	PayerCustomer Payer = "CUSTOMER"
	PayerShop     Payer = "SHOP"
)

// IsValid checks if the payer is valid
func (p Payer) IsValid() bool {
	return p == PayerCustomer || p == PayerShop
}

// PaymentStatus tracks the fee payment state of an order
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// CODStatus tracks the cash-on-delivery state of an order
type CODStatus string

const (
	CODNone        CODStatus = "NONE"
	CODCollected   CODStatus = "COLLECTED"
	CODTransferred CODStatus = "TRANSFERRED"
)

// Actor is the identity context for an order operation
type Actor struct {
	UserID   uuid.UUID
	Role     ActorRole
	OfficeID *uuid.UUID
}
