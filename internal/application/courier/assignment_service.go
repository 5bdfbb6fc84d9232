package courier

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lastmile/backend/internal/domain/courier"
	"github.com/lastmile/backend/internal/domain/network"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/infrastructure/telemetry"
)

// AssignmentService manages shipper area assignments
type AssignmentService struct {
	scope     TransactionScope
	employees network.EmployeeRepository
	logger    *zap.Logger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(scope TransactionScope, employees network.EmployeeRepository, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{
		scope:     scope,
		employees: employees,
		logger:    logger,
	}
}

// Create assigns a shipper to a (city, ward) area over a time range. The
// shipper must be an active courier, and the range may not overlap another
// assignment of the same shipper for the same area.
func (s *AssignmentService) Create(ctx context.Context, req CreateAssignmentRequest) (*AssignmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "courier", "create_assignment")
	defer span.End()

	emp, err := s.employees.FindByID(ctx, req.ShipperID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !emp.Active {
		return nil, shared.NewDomainError("INVALID_SHIPPER", "Employee is not active")
	}
	if emp.Role != network.EmployeeShipper {
		return nil, shared.NewDomainError("INVALID_ROLE", "Area assignments are for shippers")
	}

	a, err := courier.NewShipperAssignment(emp.ID, emp.OfficeID, req.CityCode, req.WardCode, req.StartAt, req.EndAt)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		overlapping, err := repos.Assignments().FindOverlapping(ctx, a.ShipperID, a.CityCode, a.WardCode, a.StartAt, a.EndAt)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return shared.ErrAssignmentOverlap
		}
		return repos.Assignments().Save(ctx, a)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Shipper assignment created",
		zap.String("assignment_id", a.ID.String()),
		zap.String("shipper_id", a.ShipperID.String()),
		zap.Int("city_code", a.CityCode),
		zap.Int("ward_code", a.WardCode),
	)

	response := ToAssignmentResponse(a)
	return &response, nil
}

// Terminate closes an open-ended assignment at the given time
func (s *AssignmentService) Terminate(ctx context.Context, assignmentID uuid.UUID, req TerminateAssignmentRequest) (*AssignmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "courier", "terminate_assignment")
	defer span.End()

	var a *courier.ShipperAssignment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		a, err = repos.Assignments().FindByID(ctx, assignmentID)
		if err != nil {
			return err
		}
		if err := a.Terminate(req.At); err != nil {
			return err
		}
		return repos.Assignments().Save(ctx, a)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToAssignmentResponse(a)
	return &response, nil
}

// GetByID retrieves one assignment
func (s *AssignmentService) GetByID(ctx context.Context, assignmentID uuid.UUID) (*AssignmentResponse, error) {
	var a *courier.ShipperAssignment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		a, err = repos.Assignments().FindByID(ctx, assignmentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToAssignmentResponse(a)
	return &response, nil
}

// ListByShipper lists all assignments of one shipper
func (s *AssignmentService) ListByShipper(ctx context.Context, shipperID uuid.UUID) ([]AssignmentResponse, error) {
	var assignments []courier.ShipperAssignment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		assignments, err = repos.Assignments().FindByShipper(ctx, shipperID)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		responses = append(responses, ToAssignmentResponse(&assignments[i]))
	}
	return responses, nil
}

// Delete removes an assignment that was created by mistake
func (s *AssignmentService) Delete(ctx context.Context, assignmentID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Assignments().FindByID(ctx, assignmentID); err != nil {
			return err
		}
		return repos.Assignments().Delete(ctx, assignmentID)
	})
}
