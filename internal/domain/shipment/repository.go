package shipment

import (
	"context"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/shared"
)

// ShipmentRepository defines the interface for shipment persistence
type ShipmentRepository interface {
	// FindByID finds a shipment by ID, including its orders
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)

	// FindByCode finds a shipment by its code
	FindByCode(ctx context.Context, code string) (*Shipment, error)

	// ExistsByCode reports whether a shipment code is already taken
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// FindByOffice finds shipments created by an office
	FindByOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]Shipment, error)

	// FindByEmployee finds shipments assigned to an employee
	FindByEmployee(ctx context.Context, employeeID uuid.UUID, filter shared.Filter) ([]Shipment, error)

	// FindActiveByOrder returns the PENDING or IN_TRANSIT shipment holding
	// the order, or ErrNotFound
	FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*Shipment, error)

	// Save creates or updates a shipment with its orders
	Save(ctx context.Context, s *Shipment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, s *Shipment) error

	// Count counts shipments matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
