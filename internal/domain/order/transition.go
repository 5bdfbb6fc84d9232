package order

// Action is an operation requested against the order state machine
type Action string

const (
	ActionRequestPickup    Action = "REQUEST_PICKUP"
	ActionPickUp           Action = "PICK_UP"
	ActionReceiveAtOrigin  Action = "RECEIVE_AT_ORIGIN"
	ActionConfirm          Action = "CONFIRM"
	ActionDispatch         Action = "DISPATCH"
	ActionArriveAtDest     Action = "ARRIVE_AT_DESTINATION"
	ActionStartDelivery    Action = "START_DELIVERY"
	ActionDeliver          Action = "DELIVER"
	ActionCancel           Action = "CANCEL"
	ActionStartReturn      Action = "START_RETURN"
	ActionCompleteReturn   Action = "COMPLETE_RETURN"
)

// AllActions lists every action, used for exhaustive table checks
var AllActions = []Action{
	ActionRequestPickup,
	ActionPickUp,
	ActionReceiveAtOrigin,
	ActionConfirm,
	ActionDispatch,
	ActionArriveAtDest,
	ActionStartDelivery,
	ActionDeliver,
	ActionCancel,
	ActionStartReturn,
	ActionCompleteReturn,
}

// TransitionRule declares one legal transition. Empty Roles or CreatorTypes
// slices mean the rule applies to any role / creator type.
type TransitionRule struct {
	From         OrderStatus
	Action       Action
	To           OrderStatus
	Roles        []ActorRole
	CreatorTypes []CreatorType
	// PickupTypes restricts the rule to orders with one of these pickup
	// types; empty means any.
	PickupTypes []PickupType
}

// transitionRules is the single source of truth for the order state machine.
// Any (status, action, role, creator) combination not matched here is denied.
var transitionRules = []TransitionRule{
	// Entering the network
	{From: StatusDraft, Action: ActionRequestPickup, To: StatusPendingPickup,
		Roles: []ActorRole{RoleCustomer}, CreatorTypes: []CreatorType{CreatorUser},
		PickupTypes: []PickupType{PickupCourier}},
	{From: StatusDraft, Action: ActionRequestPickup, To: StatusPendingPickup,
		Roles: []ActorRole{RoleManager, RoleAdmin},
		PickupTypes: []PickupType{PickupCourier}},
	{From: StatusPendingPickup, Action: ActionPickUp, To: StatusPickedUp,
		Roles: []ActorRole{RoleShipper}},
	// Handover to the origin office. Drop-off orders arrive directly from
	// DRAFT; courier-pickup orders arrive from PICKED_UP.
	{From: StatusDraft, Action: ActionReceiveAtOrigin, To: StatusAtOriginOffice,
		Roles:       []ActorRole{RoleManager, RoleAdmin},
		PickupTypes: []PickupType{PickupDropOff}},
	{From: StatusPickedUp, Action: ActionReceiveAtOrigin, To: StatusAtOriginOffice,
		Roles: []ActorRole{RoleManager, RoleAdmin}},

	// Line-haul
	{From: StatusAtOriginOffice, Action: ActionConfirm, To: StatusConfirmed,
		Roles: []ActorRole{RoleManager, RoleAdmin}},
	{From: StatusConfirmed, Action: ActionDispatch, To: StatusInTransit,
		Roles: []ActorRole{RoleManager, RoleAdmin}},
	{From: StatusInTransit, Action: ActionArriveAtDest, To: StatusAtDestinationOffice,
		Roles: []ActorRole{RoleManager, RoleAdmin}},

	// Last mile
	{From: StatusAtDestinationOffice, Action: ActionStartDelivery, To: StatusOutForDelivery,
		Roles: []ActorRole{RoleManager, RoleAdmin, RoleShipper}},
	{From: StatusOutForDelivery, Action: ActionDeliver, To: StatusDelivered,
		Roles: []ActorRole{RoleShipper, RoleAdmin}},

	// Cancellation. Customers may cancel their own orders while the parcel
	// has not been confirmed out of the origin office; staff may cancel up
	// to CONFIRMED.
	{From: StatusDraft, Action: ActionCancel, To: StatusCancelled,
		Roles: []ActorRole{RoleCustomer}, CreatorTypes: []CreatorType{CreatorUser}},
	{From: StatusDraft, Action: ActionCancel, To: StatusCancelled,
		Roles: []ActorRole{RoleManager, RoleAdmin}},
	{From: StatusPendingPickup, Action: ActionCancel, To: StatusCancelled,
		Roles: []ActorRole{RoleCustomer}, CreatorTypes: []CreatorType{CreatorUser}},
	{From: StatusPendingPickup, Action: ActionCancel, To: StatusCancelled,
		Roles: []ActorRole{RoleManager, RoleAdmin}},
	{From: StatusPickedUp, Action: ActionCancel, To: StatusCancelled,
		Roles: []ActorRole{RoleManager, RoleAdmin}},
	{From: StatusAtOriginOffice, Action: ActionCancel, To: StatusCancelled,
		Roles: []ActorRole{RoleCustomer}, CreatorTypes: []CreatorType{CreatorUser}},
	{From: StatusAtOriginOffice, Action: ActionCancel, To: StatusCancelled,
		Roles: []ActorRole{RoleManager, RoleAdmin}},
	{From: StatusConfirmed, Action: ActionCancel, To: StatusCancelled,
		Roles: []ActorRole{RoleManager, RoleAdmin}},

	// Returns
	{From: StatusAtDestinationOffice, Action: ActionStartReturn, To: StatusReturning,
		Roles: []ActorRole{RoleManager, RoleAdmin}},
	{From: StatusOutForDelivery, Action: ActionStartReturn, To: StatusReturning,
		Roles: []ActorRole{RoleManager, RoleAdmin, RoleShipper}},
	{From: StatusReturning, Action: ActionCompleteReturn, To: StatusReturned,
		Roles: []ActorRole{RoleManager, RoleAdmin}},
}

// OfficeScope names which of the order's two offices an action is
// performed at.
type OfficeScope int

const (
	ScopeNone OfficeScope = iota
	ScopeOrigin
	ScopeDestination
)

// actionOfficeScopes binds each office-bound action to the office whose
// staff performs it. Managers must belong to that office; admins operate
// network-wide and shippers are bound by area assignment instead.
// Actions absent from the map carry no office scope.
var actionOfficeScopes = map[Action]OfficeScope{
	ActionReceiveAtOrigin: ScopeOrigin,
	ActionConfirm:         ScopeOrigin,
	ActionDispatch:        ScopeOrigin,
	ActionArriveAtDest:    ScopeDestination,
	ActionStartDelivery:   ScopeDestination,
	ActionStartReturn:     ScopeDestination,
	ActionCompleteReturn:  ScopeDestination,
}

// ActionScope returns the office scope of an action.
func ActionScope(action Action) OfficeScope {
	return actionOfficeScopes[action]
}

func containsRole(roles []ActorRole, role ActorRole) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func containsCreator(creators []CreatorType, creator CreatorType) bool {
	if len(creators) == 0 {
		return true
	}
	for _, c := range creators {
		if c == creator {
			return true
		}
	}
	return false
}

func containsPickup(pickups []PickupType, pickup PickupType) bool {
	if len(pickups) == 0 {
		return true
	}
	for _, p := range pickups {
		if p == pickup {
			return true
		}
	}
	return false
}

// findRule returns the first rule matching the request, or nil
func findRule(from OrderStatus, action Action, role ActorRole, creator CreatorType, pickup PickupType) *TransitionRule {
	for i := range transitionRules {
		rule := &transitionRules[i]
		if rule.From != from || rule.Action != action {
			continue
		}
		if !containsRole(rule.Roles, role) {
			continue
		}
		if !containsCreator(rule.CreatorTypes, creator) {
			continue
		}
		if !containsPickup(rule.PickupTypes, pickup) {
			continue
		}
		return rule
	}
	return nil
}

// CanTransition reports whether the requested action is legal for the given
// status, actor role, creator type and pickup type. It is pure and total:
// every combination yields an answer, and unmatched combinations are denied.
func CanTransition(from OrderStatus, action Action, role ActorRole, creator CreatorType, pickup PickupType) bool {
	return findRule(from, action, role, creator, pickup) != nil
}

// NextStatus returns the status an action leads to from the given status,
// independent of actor constraints. The boolean is false when no rule maps
// the pair at all.
func NextStatus(from OrderStatus, action Action) (OrderStatus, bool) {
	for i := range transitionRules {
		if transitionRules[i].From == from && transitionRules[i].Action == action {
			return transitionRules[i].To, true
		}
	}
	return "", false
}
