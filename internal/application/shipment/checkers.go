package shipment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/courier"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shipment"
)

// repoMembershipChecker answers shipment membership questions from the
// shipment repository. Built over the transaction-scoped repository so the
// re-check at attach time sees uncommitted rows of the same transaction.
type repoMembershipChecker struct {
	shipments shipment.ShipmentRepository
}

// NewMembershipChecker creates a membership checker over the repository
func NewMembershipChecker(shipments shipment.ShipmentRepository) shipment.MembershipChecker {
	return &repoMembershipChecker{shipments: shipments}
}

func (c *repoMembershipChecker) InActiveShipment(ctx context.Context, orderID uuid.UUID) (bool, error) {
	_, err := c.shipments.FindActiveByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// assignmentCoverageChecker answers area coverage questions from the shipper
// assignment repository.
type assignmentCoverageChecker struct {
	assignments courier.ShipperAssignmentRepository
}

// NewCoverageChecker creates a coverage checker over the assignment repository
func NewCoverageChecker(assignments courier.ShipperAssignmentRepository) shipment.CoverageChecker {
	return &assignmentCoverageChecker{assignments: assignments}
}

func (c *assignmentCoverageChecker) HasActiveCoverage(ctx context.Context, shipperID uuid.UUID, cityCode, wardCode int, at time.Time) (bool, error) {
	_, err := c.assignments.FindActiveCovering(ctx, shipperID, cityCode, wardCode, at)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
