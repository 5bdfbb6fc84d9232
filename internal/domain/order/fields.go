package order

// EditableField names an order attribute subject to edit permission checks
type EditableField string

const (
	FieldSenderAddress    EditableField = "sender_address"
	FieldRecipientAddress EditableField = "recipient_address"
	FieldRecipientPhone   EditableField = "recipient_phone"
	FieldWeight           EditableField = "weight"
	FieldCODAmount        EditableField = "cod_amount"
	FieldDeclaredValue    EditableField = "declared_value"
	FieldNote             EditableField = "note"
)

// fieldEditRule declares when one field may be edited. Empty slices match any
// value of the corresponding dimension.
type fieldEditRule struct {
	Field        EditableField
	Statuses     []OrderStatus
	Roles        []ActorRole
	CreatorTypes []CreatorType
}

// preDepartureStatuses are statuses in which the parcel has not been
// confirmed out of the origin office.
var preDepartureStatuses = []OrderStatus{
	StatusDraft,
	StatusPendingPickup,
	StatusPickedUp,
	StatusAtOriginOffice,
}

// preDeliveryStatuses extend preDepartureStatuses through the line haul up to
// the destination office.
var preDeliveryStatuses = []OrderStatus{
	StatusDraft,
	StatusPendingPickup,
	StatusPickedUp,
	StatusAtOriginOffice,
	StatusConfirmed,
	StatusInTransit,
	StatusAtDestinationOffice,
}

var fieldEditRules = []fieldEditRule{
	// Addresses and contact details are frozen once the parcel leaves the
	// origin office.
	{Field: FieldSenderAddress, Statuses: preDepartureStatuses},
	{Field: FieldRecipientAddress, Statuses: preDepartureStatuses},
	{Field: FieldRecipientPhone, Statuses: preDeliveryStatuses,
		Roles: []ActorRole{RoleManager, RoleAdmin}},
	{Field: FieldRecipientPhone, Statuses: preDepartureStatuses,
		Roles: []ActorRole{RoleCustomer}, CreatorTypes: []CreatorType{CreatorUser}},

	// Customers may only touch the weight of their own drafts; office staff
	// correct weight up to the destination office, which triggers a fee
	// recomputation in the application layer.
	{Field: FieldWeight, Statuses: []OrderStatus{StatusDraft},
		Roles: []ActorRole{RoleCustomer}, CreatorTypes: []CreatorType{CreatorUser}},
	{Field: FieldWeight, Statuses: preDeliveryStatuses,
		Roles: []ActorRole{RoleManager, RoleAdmin}},

	{Field: FieldCODAmount, Statuses: preDepartureStatuses},
	{Field: FieldDeclaredValue, Statuses: preDepartureStatuses},

	// Notes stay writable until the order reaches a terminal state.
	{Field: FieldNote, Statuses: []OrderStatus{
		StatusDraft, StatusPendingPickup, StatusPickedUp, StatusAtOriginOffice,
		StatusConfirmed, StatusInTransit, StatusAtDestinationOffice,
		StatusOutForDelivery, StatusReturning,
	}},
}

func containsStatus(statuses []OrderStatus, status OrderStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// CanEditField reports whether the field may be edited on an order in the
// given status by the given actor role and creator type. Unknown fields and
// unmatched combinations are denied.
func CanEditField(field EditableField, status OrderStatus, role ActorRole, creator CreatorType) bool {
	for i := range fieldEditRules {
		rule := &fieldEditRules[i]
		if rule.Field != field {
			continue
		}
		if !containsStatus(rule.Statuses, status) {
			continue
		}
		if !containsRole(rule.Roles, role) {
			continue
		}
		if !containsCreator(rule.CreatorTypes, creator) {
			continue
		}
		return true
	}
	return false
}
