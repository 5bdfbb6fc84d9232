package shipment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shared"
)

// MembershipChecker reports whether an order is already held by another
// shipment in PENDING or IN_TRANSIT state
type MembershipChecker interface {
	InActiveShipment(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// CoverageChecker reports whether a shipper has an active area assignment
// covering a ward at the given instant
type CoverageChecker interface {
	HasActiveCoverage(ctx context.Context, shipperID uuid.UUID, cityCode, wardCode int, at time.Time) (bool, error)
}

// Validation failure reasons
var (
	ErrOrderNotAddable      = shared.NewDomainError("ORDER_NOT_ADDABLE", "Order status does not allow attaching to this shipment")
	ErrOfficeMismatch       = shared.NewDomainError("OFFICE_MISMATCH", "Requesting office does not serve this order")
	ErrEmployeeOfficeWrong  = shared.NewDomainError("EMPLOYEE_OFFICE_MISMATCH", "Assigned employee does not belong to the serviced office")
	ErrNoAreaCoverage       = shared.NewDomainError("NO_AREA_COVERAGE", "Courier has no active assignment covering the target area")
	ErrAlreadyInShipment    = shared.NewDomainError("ALREADY_IN_SHIPMENT", "Order already belongs to an active shipment")
)

// AttachResult is the outcome for one order in a bulk attach request
type AttachResult struct {
	OrderID        uuid.UUID
	TrackingNumber string
	Attached       bool
	// Err carries the rejection reason; nil when attached
	Err error
	// Evaluated is false for orders skipped after a capacity overload
	Evaluated bool
}

// BatchResult aggregates a bulk attach request
type BatchResult struct {
	Results     []AttachResult
	Attached    int
	Rejected    int
	Unevaluated int
}

// Validator decides whether orders may be attached to a shipment. Checks are
// re-run inside the same transaction as the write by the application layer.
type Validator struct {
	membership MembershipChecker
	coverage   CoverageChecker
	now        func() time.Time
}

// NewValidator creates a shipment assignment validator
func NewValidator(membership MembershipChecker, coverage CoverageChecker) *Validator {
	return &Validator{membership: membership, coverage: coverage, now: time.Now}
}

// originSideStatuses are order statuses serviced from the origin office
func originSideAddable(status order.OrderStatus, shipmentType ShipmentType) bool {
	switch shipmentType {
	case TypeDelivery:
		// Pickup run collecting parcels from senders
		return status == order.StatusPendingPickup
	case TypeTransfer:
		return status == order.StatusConfirmed
	}
	return false
}

// destSideAddable are order statuses serviced from the destination office
func destSideAddable(status order.OrderStatus, shipmentType ShipmentType) bool {
	return shipmentType == TypeDelivery && status == order.StatusAtDestinationOffice
}

// ValidateOrder checks every rule for one candidate order except cumulative
// capacity, which AttachOrders tracks across the batch.
func (v *Validator) ValidateOrder(ctx context.Context, s *Shipment, o *order.Order) error {
	if o.IsTerminal() {
		return ErrOrderNotAddable
	}

	// The requesting office determines which side of the order is serviced
	var originSide bool
	switch s.OfficeID {
	case o.OriginOfficeID:
		originSide = true
	case o.DestinationOfficeID:
		originSide = false
	default:
		return ErrOfficeMismatch
	}

	if originSide {
		if !originSideAddable(o.Status, s.Type) {
			return ErrOrderNotAddable
		}
	} else {
		if !destSideAddable(o.Status, s.Type) {
			return ErrOrderNotAddable
		}
	}

	// The employee must work at the office servicing this order
	if s.EmployeeID != nil && s.EmployeeOfficeID != nil && *s.EmployeeOfficeID != s.OfficeID {
		return ErrEmployeeOfficeWrong
	}

	// Delivery runs require the courier to cover the target area
	if s.Type == TypeDelivery && s.EmployeeID != nil {
		city, ward := o.Recipient.CityCode, o.Recipient.WardCode
		if originSide {
			city, ward = o.Sender.CityCode, o.Sender.WardCode
		}
		covered, err := v.coverage.HasActiveCoverage(ctx, *s.EmployeeID, city, ward, v.now())
		if err != nil {
			return err
		}
		if !covered {
			return ErrNoAreaCoverage
		}
	}

	inShipment, err := v.membership.InActiveShipment(ctx, o.ID)
	if err != nil {
		return err
	}
	if inShipment {
		return ErrAlreadyInShipment
	}

	return nil
}

// AttachOrders validates and attaches candidates in request order. Each order
// succeeds or fails independently; valid orders are attached even when others
// fail. A capacity overload stops evaluation, and the remaining candidates
// are reported as unevaluated.
func (v *Validator) AttachOrders(ctx context.Context, s *Shipment, candidates []*order.Order) (*BatchResult, error) {
	if s.Status != StatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Orders can only be added to a pending shipment")
	}

	result := &BatchResult{Results: make([]AttachResult, 0, len(candidates))}

	overloaded := false
	for _, o := range candidates {
		r := AttachResult{OrderID: o.ID, TrackingNumber: o.TrackingNumber}

		if overloaded {
			result.Results = append(result.Results, r)
			result.Unevaluated++
			continue
		}
		r.Evaluated = true

		if err := v.ValidateOrder(ctx, s, o); err != nil {
			r.Err = err
			result.Results = append(result.Results, r)
			result.Rejected++
			continue
		}

		weight := o.EffectiveWeight()
		if !s.CanCarry(weight) {
			r.Err = shared.ErrCapacityExceeded
			result.Results = append(result.Results, r)
			result.Rejected++
			overloaded = true
			continue
		}

		if err := s.AddOrder(o.ID, weight); err != nil {
			r.Err = err
			result.Results = append(result.Results, r)
			result.Rejected++
			continue
		}

		r.Attached = true
		result.Results = append(result.Results, r)
		result.Attached++
	}

	return result, nil
}
