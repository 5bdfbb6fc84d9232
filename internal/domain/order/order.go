package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
)

// Address is the sender or recipient contact block on an order
type Address struct {
	Name     string
	Phone    string
	Street   string
	CityCode int
	WardCode int
}

// Validate checks the address fields
func (a Address) Validate() error {
	if a.Name == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Contact name cannot be empty")
	}
	if a.Phone == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Contact phone cannot be empty")
	}
	if a.CityCode <= 0 || a.WardCode <= 0 {
		return shared.NewDomainError("INVALID_ADDRESS", "City and ward codes must be positive")
	}
	return nil
}

// OrderItem is a line item on an order, denormalized from the catalog at
// creation time
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitValue   decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrderItem creates a line item for the given order
func NewOrderItem(orderID, productID uuid.UUID, productName string, quantity int, unitValue valueobject.Money) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitValue.IsNegative() {
		return nil, shared.NewDomainError("INVALID_VALUE", "Unit value cannot be negative")
	}

	now := time.Now()
	return &OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitValue:   unitValue.Amount(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// LineValue returns quantity times unit value as Money
func (i *OrderItem) LineValue() valueobject.Money {
	return valueobject.NewVND(i.UnitValue.Mul(decimal.NewFromInt(int64(i.Quantity))))
}

// Order is the shippable unit aggregate root. Its status moves through the
// transition table in transition.go; field edits are gated by fields.go.
type Order struct {
	shared.BaseAggregateRoot
	TrackingNumber string
	Status         OrderStatus
	CreatorType    CreatorType
	PickupType     PickupType
	Payer          Payer
	PaymentStatus  PaymentStatus
	CODStatus      CODStatus

	CustomerID uuid.UUID
	ShopID     *uuid.UUID

	Sender    Address
	Recipient Address

	OriginOfficeID      uuid.UUID
	DestinationOfficeID uuid.UUID
	ServiceTypeID       uuid.UUID

	// WeightKg is the current billable weight. AdjustedWeightKg holds the
	// customer-declared weight as it was before the first staff correction,
	// nil while no correction has been made.
	WeightKg         decimal.Decimal
	AdjustedWeightKg *decimal.Decimal

	DeclaredValue  valueobject.Money
	CODAmount      valueobject.Money
	ShippingFee    valueobject.Money
	ServiceFee     valueobject.Money
	DiscountAmount valueobject.Money
	TotalFee       valueobject.Money

	PromotionID *uuid.UUID
	Note        string

	Items []OrderItem

	PaidAt      *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
	CancelReason string
}

// NewOrderParams carries the inputs for creating an order
type NewOrderParams struct {
	CreatorType   CreatorType
	PickupType    PickupType
	Payer         Payer
	CustomerID    uuid.UUID
	ShopID        *uuid.UUID
	Sender        Address
	Recipient     Address
	OriginOffice  uuid.UUID
	DestOffice    uuid.UUID
	ServiceTypeID uuid.UUID
	WeightKg      decimal.Decimal
	DeclaredValue valueobject.Money
	CODAmount     valueobject.Money
	Note          string
}

// NewOrder creates an order in DRAFT status. Fees, discount and tracking
// number are assigned by the application layer before the order leaves DRAFT.
func NewOrder(p NewOrderParams) (*Order, error) {
	if !p.CreatorType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CREATOR_TYPE", "Unknown creator type")
	}
	if !p.PickupType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PICKUP_TYPE", "Unknown pickup type")
	}
	if !p.Payer.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYER", "Unknown payer")
	}
	if p.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if err := p.Sender.Validate(); err != nil {
		return nil, err
	}
	if err := p.Recipient.Validate(); err != nil {
		return nil, err
	}
	if p.OriginOffice == uuid.Nil || p.DestOffice == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OFFICE", "Origin and destination offices are required")
	}
	if p.ServiceTypeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SERVICE_TYPE", "Service type is required")
	}
	if p.WeightKg.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Weight must be positive")
	}
	if p.DeclaredValue.IsNegative() || p.CODAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Declared value and COD amount cannot be negative")
	}

	o := &Order{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		Status:              StatusDraft,
		CreatorType:         p.CreatorType,
		PickupType:          p.PickupType,
		Payer:               p.Payer,
		PaymentStatus:       PaymentUnpaid,
		CODStatus:           CODNone,
		CustomerID:          p.CustomerID,
		ShopID:              p.ShopID,
		Sender:              p.Sender,
		Recipient:           p.Recipient,
		OriginOfficeID:      p.OriginOffice,
		DestinationOfficeID: p.DestOffice,
		ServiceTypeID:       p.ServiceTypeID,
		WeightKg:            p.WeightKg,
		DeclaredValue:       p.DeclaredValue,
		CODAmount:           p.CODAmount,
		ShippingFee:         valueobject.ZeroVND(),
		ServiceFee:          valueobject.ZeroVND(),
		DiscountAmount:      valueobject.ZeroVND(),
		TotalFee:            valueobject.ZeroVND(),
		Note:                p.Note,
		Items:               make([]OrderItem, 0),
	}

	o.AddDomainEvent(NewOrderCreatedEvent(o))

	return o, nil
}

// AddItem appends a line item. Only allowed in DRAFT status.
func (o *Order) AddItem(productID uuid.UUID, productName string, quantity int, unitValue valueobject.Money) (*OrderItem, error) {
	if o.Status != StatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft order")
	}

	item, err := NewOrderItem(o.ID, productID, productName, quantity, unitValue)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.UpdatedAt = time.Now()

	return item, nil
}

// SetFees assigns the computed fee breakdown and enforces the fee invariant:
// totalFee = shippingFee + serviceFee - discountAmount, never negative.
func (o *Order) SetFees(shipping, service, discount valueobject.Money) error {
	if shipping.IsNegative() || service.IsNegative() || discount.IsNegative() {
		return shared.NewDomainError("INVALID_FEE", "Fee components cannot be negative")
	}

	total := shipping.MustAdd(service).MustSubtract(discount)
	if total.IsNegative() {
		return shared.NewDomainError("INVALID_FEE", "Discount cannot exceed the fee total")
	}

	o.ShippingFee = shipping
	o.ServiceFee = service
	o.DiscountAmount = discount
	o.TotalFee = total
	o.UpdatedAt = time.Now()

	return nil
}

// AttachPromotion records the applied promotion. The usage counters are
// maintained by the application layer in the same transaction.
func (o *Order) AttachPromotion(promotionID uuid.UUID) error {
	if o.Status != StatusDraft && o.Status != StatusAtOriginOffice {
		return shared.NewDomainError("INVALID_STATE", "Promotion can only be attached before confirmation")
	}
	if promotionID == uuid.Nil {
		return shared.NewDomainError("INVALID_PROMOTION", "Promotion ID cannot be empty")
	}
	o.PromotionID = &promotionID
	o.UpdatedAt = time.Now()
	return nil
}

// ClearPromotion detaches the promotion and zeroes the discount, restoring
// the fee invariant.
func (o *Order) ClearPromotion() {
	if o.PromotionID == nil {
		return
	}
	o.PromotionID = nil
	o.DiscountAmount = valueobject.ZeroVND()
	o.TotalFee = o.ShippingFee.MustAdd(o.ServiceFee)
	o.UpdatedAt = time.Now()
}

// AssignTrackingNumber sets the tracking number once. It is generated lazily
// on the first transition out of DRAFT.
func (o *Order) AssignTrackingNumber(number string) error {
	if number == "" {
		return shared.NewDomainError("INVALID_TRACKING_NUMBER", "Tracking number cannot be empty")
	}
	if o.TrackingNumber != "" {
		return shared.NewDomainError("INVALID_STATE", "Tracking number already assigned")
	}
	o.TrackingNumber = number
	o.UpdatedAt = time.Now()
	return nil
}

// ApplyTransition moves the order through the state machine on behalf of the
// actor. The permission table makes the decision; this method applies the
// resulting status and raises the status-changed event.
func (o *Order) ApplyTransition(action Action, actor Actor) error {
	if !CanTransition(o.Status, action, actor.Role, o.CreatorType, o.PickupType) {
		return shared.NewDomainError("TRANSITION_DENIED",
			fmt.Sprintf("Action %s is not allowed on a %s order for role %s", action, o.Status, actor.Role))
	}
	if err := o.checkOfficeScope(action, actor); err != nil {
		return err
	}

	next, ok := NextStatus(o.Status, action)
	if !ok {
		return shared.NewDomainError("TRANSITION_DENIED",
			fmt.Sprintf("Action %s is not defined for status %s", action, o.Status))
	}

	from := o.Status
	now := time.Now()
	o.Status = next
	o.UpdatedAt = now

	switch next {
	case StatusDelivered:
		o.DeliveredAt = &now
		o.AddDomainEvent(NewOrderDeliveredEvent(o, actor.UserID))
	case StatusCancelled:
		o.CancelledAt = &now
	}

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, action, actor))

	return nil
}

// checkOfficeScope enforces that a manager carrying out an office-bound
// action belongs to the office the action is performed at. Admins skip
// the check; shipper access is governed by area assignments.
func (o *Order) checkOfficeScope(action Action, actor Actor) error {
	if actor.Role != RoleManager {
		return nil
	}

	var required uuid.UUID
	switch ActionScope(action) {
	case ScopeOrigin:
		required = o.OriginOfficeID
	case ScopeDestination:
		required = o.DestinationOfficeID
	default:
		return nil
	}

	if actor.OfficeID == nil || *actor.OfficeID != required {
		return shared.NewDomainError("OFFICE_MISMATCH",
			fmt.Sprintf("Action %s must be performed by staff of the handling office", action))
	}
	return nil
}

// Cancel cancels the order through the state machine and records the reason.
// refunded reports whether the payment status flipped to REFUNDED, which
// happens when the shop prepaid the fee.
func (o *Order) Cancel(actor Actor, reason string) (refunded bool, err error) {
	if err := o.ApplyTransition(ActionCancel, actor); err != nil {
		return false, err
	}

	o.CancelReason = reason
	if o.Payer == PayerShop && o.PaymentStatus == PaymentPaid {
		o.PaymentStatus = PaymentRefunded
		refunded = true
	}

	o.AddDomainEvent(NewOrderCancelledEvent(o, refunded))

	return refunded, nil
}

// CorrectWeight records a staff weight correction. The original weight is
// preserved in AdjustedWeightKg the first time; the caller recomputes fees
// and clears any attached promotion afterwards.
func (o *Order) CorrectWeight(newWeight decimal.Decimal, actor Actor) error {
	if !CanEditField(FieldWeight, o.Status, actor.Role, o.CreatorType) {
		return shared.NewDomainError("EDIT_DENIED",
			fmt.Sprintf("Weight is not editable on a %s order by role %s", o.Status, actor.Role))
	}
	if newWeight.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_WEIGHT", "Weight must be positive")
	}

	if o.AdjustedWeightKg == nil {
		original := o.WeightKg
		o.AdjustedWeightKg = &original
	}
	o.WeightKg = newWeight
	o.UpdatedAt = time.Now()

	return nil
}

// UpdateAddress replaces the sender or recipient address subject to the
// field-edit matrix.
func (o *Order) UpdateAddress(field EditableField, addr Address, actor Actor) error {
	if field != FieldSenderAddress && field != FieldRecipientAddress {
		return shared.NewDomainError("INVALID_INPUT", "Not an address field")
	}
	if !CanEditField(field, o.Status, actor.Role, o.CreatorType) {
		return shared.NewDomainError("EDIT_DENIED",
			fmt.Sprintf("Field %s is not editable on a %s order", field, o.Status))
	}
	if err := addr.Validate(); err != nil {
		return err
	}

	if field == FieldSenderAddress {
		o.Sender = addr
	} else {
		o.Recipient = addr
	}
	o.UpdatedAt = time.Now()

	return nil
}

// UpdateCODAmount changes the COD amount subject to the field-edit matrix
func (o *Order) UpdateCODAmount(amount valueobject.Money, actor Actor) error {
	if !CanEditField(FieldCODAmount, o.Status, actor.Role, o.CreatorType) {
		return shared.NewDomainError("EDIT_DENIED",
			fmt.Sprintf("COD amount is not editable on a %s order", o.Status))
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "COD amount cannot be negative")
	}
	o.CODAmount = amount
	o.UpdatedAt = time.Now()
	return nil
}

// UpdateNote replaces the order note subject to the field-edit matrix
func (o *Order) UpdateNote(note string, actor Actor) error {
	if !CanEditField(FieldNote, o.Status, actor.Role, o.CreatorType) {
		return shared.NewDomainError("EDIT_DENIED",
			fmt.Sprintf("Note is not editable on a %s order", o.Status))
	}
	o.Note = note
	o.UpdatedAt = time.Now()
	return nil
}

// RecordCODCollected marks the COD cash as collected by the shipper. Legal
// only after delivery and only when the order carries a COD amount.
func (o *Order) RecordCODCollected(shipperID uuid.UUID) error {
	if !o.CODAmount.IsPositive() {
		return shared.NewDomainError("INVALID_STATE", "Order has no COD amount to collect")
	}
	if o.Status != StatusDelivered {
		return shared.NewDomainError("INVALID_STATE", "COD can only be collected on a delivered order")
	}
	if o.CODStatus != CODNone {
		return shared.NewDomainError("INVALID_STATE", "COD already collected")
	}

	o.CODStatus = CODCollected
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewOrderCODCollectedEvent(o, shipperID))

	return nil
}

// SettlePayment marks the fee paid and the COD transferred. Called from the
// settlement batch completion transaction.
func (o *Order) SettlePayment(at time.Time) error {
	if o.CODAmount.IsPositive() && o.CODStatus != CODCollected {
		return shared.NewDomainError("INVALID_STATE", "COD must be collected before settlement")
	}

	if o.CODAmount.IsPositive() {
		o.CODStatus = CODTransferred
	}
	o.PaymentStatus = PaymentPaid
	o.PaidAt = &at
	o.UpdatedAt = time.Now()

	return nil
}

// MarkPaid records an online fee payment before delivery settlement
func (o *Order) MarkPaid(at time.Time) error {
	if o.PaymentStatus == PaymentPaid {
		return shared.NewDomainError("INVALID_STATE", "Order is already paid")
	}
	o.PaymentStatus = PaymentPaid
	o.PaidAt = &at
	o.UpdatedAt = time.Now()
	return nil
}

// EffectiveWeight returns the billable weight in kilograms
func (o *Order) EffectiveWeight() decimal.Decimal {
	return o.WeightKg
}

// OriginalWeight returns the weight before any staff correction
func (o *Order) OriginalWeight() decimal.Decimal {
	if o.AdjustedWeightKg != nil {
		return *o.AdjustedWeightKg
	}
	return o.WeightKg
}

// IsTerminal reports whether the order is in a terminal status
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}
