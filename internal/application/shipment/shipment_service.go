package shipment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lastmile/backend/internal/domain/courier"
	"github.com/lastmile/backend/internal/domain/network"
	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shipment"
	"github.com/lastmile/backend/internal/infrastructure/telemetry"
)

// ShipmentService handles courier runs and inter-office transfer legs
type ShipmentService struct {
	scope       TransactionScope
	employees   network.EmployeeRepository
	vehicles    network.VehicleRepository
	assignments courier.ShipperAssignmentRepository
	logger      *zap.Logger
}

// NewShipmentService creates a new ShipmentService
func NewShipmentService(
	scope TransactionScope,
	employees network.EmployeeRepository,
	vehicles network.VehicleRepository,
	assignments courier.ShipperAssignmentRepository,
	logger *zap.Logger,
) *ShipmentService {
	return &ShipmentService{
		scope:       scope,
		employees:   employees,
		vehicles:    vehicles,
		assignments: assignments,
		logger:      logger,
	}
}

// Create opens a pending shipment for the office and assigns its code
func (s *ShipmentService) Create(ctx context.Context, req CreateShipmentRequest) (*ShipmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", "create")
	defer span.End()

	var sh *shipment.Shipment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		gen := shipment.NewCodeGenerator(repos.Shipments().ExistsByCode)
		code, err := gen.Generate(ctx)
		if err != nil {
			return err
		}

		sh, err = shipment.NewShipment(code, req.Type, req.OfficeID)
		if err != nil {
			return err
		}
		return repos.Shipments().Save(ctx, sh)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrShipmentID, sh.ID.String(),
		telemetry.SpanAttrShipmentCode, sh.Code,
	)
	s.logger.Info("Shipment created",
		zap.String("shipment_id", sh.ID.String()),
		zap.String("code", sh.Code),
		zap.String("type", string(sh.Type)),
	)

	response := ToShipmentResponse(sh)
	return &response, nil
}

// AssignEmployee puts a courier or driver on a pending shipment. Delivery
// runs take shippers, transfer legs take drivers, and the employee must work
// at the shipment's office.
func (s *ShipmentService) AssignEmployee(ctx context.Context, shipmentID uuid.UUID, req AssignEmployeeRequest) (*ShipmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", "assign_employee")
	defer span.End()

	emp, err := s.employees.FindByID(ctx, req.EmployeeID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var sh *shipment.Shipment
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sh, err = repos.Shipments().FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}

		if !emp.WorksAt(sh.OfficeID) {
			return shipment.ErrEmployeeOfficeWrong
		}
		if err := validateEmployeeRole(sh.Type, emp.Role); err != nil {
			return err
		}

		if err := sh.AssignEmployee(emp.ID, emp.OfficeID); err != nil {
			return err
		}
		return repos.Shipments().SaveWithLock(ctx, sh)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToShipmentResponse(sh)
	return &response, nil
}

// validateEmployeeRole checks the employee's job fits the shipment type
func validateEmployeeRole(shipmentType shipment.ShipmentType, role network.EmployeeRole) error {
	switch shipmentType {
	case shipment.TypeDelivery:
		if role != network.EmployeeShipper {
			return shared.NewDomainError("INVALID_ROLE", "Delivery runs require a shipper")
		}
	case shipment.TypeTransfer:
		if role != network.EmployeeDriver {
			return shared.NewDomainError("INVALID_ROLE", "Transfer legs require a driver")
		}
	}
	return nil
}

// AssignVehicle puts a vehicle on a pending shipment and fixes its capacity
func (s *ShipmentService) AssignVehicle(ctx context.Context, shipmentID uuid.UUID, req AssignVehicleRequest) (*ShipmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", "assign_vehicle")
	defer span.End()

	v, err := s.vehicles.FindByID(ctx, req.VehicleID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !v.Active {
		return nil, shared.NewDomainError("INVALID_VEHICLE", "Vehicle is not in service")
	}

	var sh *shipment.Shipment
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sh, err = repos.Shipments().FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		if v.OfficeID != sh.OfficeID {
			return shared.NewDomainError("INVALID_VEHICLE", "Vehicle belongs to another office")
		}
		if err := sh.AssignVehicle(v.ID, v.CapacityKg); err != nil {
			return err
		}
		return repos.Shipments().SaveWithLock(ctx, sh)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToShipmentResponse(sh)
	return &response, nil
}

// AttachOrders validates and attaches a batch of orders to a pending
// shipment. Each order succeeds or fails on its own; membership and status
// checks re-run inside the transaction that writes the attachment.
func (s *ShipmentService) AttachOrders(ctx context.Context, shipmentID uuid.UUID, req AttachOrdersRequest) (*AttachBatchResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", "attach_orders")
	defer span.End()

	var result *shipment.BatchResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sh, err := repos.Shipments().FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}

		candidates := make([]*order.Order, 0, len(req.OrderIDs))
		for _, orderID := range req.OrderIDs {
			o, err := repos.Orders().FindByID(ctx, orderID)
			if err != nil {
				return err
			}
			candidates = append(candidates, o)
		}

		validator := shipment.NewValidator(
			NewMembershipChecker(repos.Shipments()),
			NewCoverageChecker(s.assignments),
		)
		result, err = validator.AttachOrders(ctx, sh, candidates)
		if err != nil {
			return err
		}

		return repos.Shipments().SaveWithLock(ctx, sh)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrShipmentID, shipmentID.String())
	s.logger.Info("Orders attached to shipment",
		zap.String("shipment_id", shipmentID.String()),
		zap.Int("attached", result.Attached),
		zap.Int("rejected", result.Rejected),
		zap.Int("unevaluated", result.Unevaluated),
	)

	response := ToAttachBatchResponse(result)
	return &response, nil
}

// RemoveOrder detaches an order from a pending shipment
func (s *ShipmentService) RemoveOrder(ctx context.Context, shipmentID, orderID uuid.UUID) (*ShipmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", "remove_order")
	defer span.End()

	var sh *shipment.Shipment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sh, err = repos.Shipments().FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		if err := sh.RemoveOrder(orderID); err != nil {
			return err
		}
		return repos.Shipments().SaveWithLock(ctx, sh)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToShipmentResponse(sh)
	return &response, nil
}

// departAction is the order action applied when the shipment departs
func departAction(sh *shipment.Shipment, o *order.Order) order.Action {
	if sh.Type == shipment.TypeTransfer {
		return order.ActionDispatch
	}
	if sh.OfficeID == o.OriginOfficeID {
		return order.ActionPickUp
	}
	return order.ActionStartDelivery
}

// completeAction is the order action applied when the shipment completes.
// Orders on a last-mile run are delivered one by one, so completing the run
// itself applies nothing to them.
func completeAction(sh *shipment.Shipment, o *order.Order) (order.Action, bool) {
	if sh.Type == shipment.TypeTransfer {
		return order.ActionArriveAtDest, true
	}
	if sh.OfficeID == o.OriginOfficeID {
		return order.ActionReceiveAtOrigin, true
	}
	return "", false
}

// Depart moves the shipment out and advances every attached order. All
// order transitions commit with the shipment or none do.
func (s *ShipmentService) Depart(ctx context.Context, shipmentID uuid.UUID, actor order.Actor, req TransitionNoteRequest) (*ShipmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", "depart")
	defer span.End()

	var sh *shipment.Shipment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sh, err = repos.Shipments().FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		if err := sh.Depart(); err != nil {
			return err
		}

		note := req.Note
		if note == "" {
			note = fmt.Sprintf("Shipment %s departed", sh.Code)
		}
		for _, so := range sh.Orders {
			o, err := repos.Orders().FindByID(ctx, so.OrderID)
			if err != nil {
				return err
			}
			if err := s.applyOrderAction(ctx, repos, o, departAction(sh, o), actor, note); err != nil {
				return err
			}
		}

		return repos.Shipments().SaveWithLock(ctx, sh)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrShipmentID, sh.ID.String(),
		telemetry.SpanAttrShipmentCode, sh.Code,
	)
	s.logger.Info("Shipment departed",
		zap.String("shipment_id", sh.ID.String()),
		zap.String("code", sh.Code),
		zap.Int("orders", len(sh.Orders)),
	)

	response := ToShipmentResponse(sh)
	return &response, nil
}

// Complete finishes an in-transit shipment and advances its orders where the
// run itself implies an order transition.
func (s *ShipmentService) Complete(ctx context.Context, shipmentID uuid.UUID, actor order.Actor, req TransitionNoteRequest) (*ShipmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", "complete")
	defer span.End()

	var sh *shipment.Shipment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sh, err = repos.Shipments().FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		if err := sh.Complete(); err != nil {
			return err
		}

		note := req.Note
		if note == "" {
			note = fmt.Sprintf("Shipment %s completed", sh.Code)
		}
		for _, so := range sh.Orders {
			o, err := repos.Orders().FindByID(ctx, so.OrderID)
			if err != nil {
				return err
			}
			action, ok := completeAction(sh, o)
			if !ok {
				continue
			}
			if err := s.applyOrderAction(ctx, repos, o, action, actor, note); err != nil {
				return err
			}
		}

		return repos.Shipments().SaveWithLock(ctx, sh)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrShipmentID, sh.ID.String(),
		telemetry.SpanAttrShipmentCode, sh.Code,
	)
	s.logger.Info("Shipment completed",
		zap.String("shipment_id", sh.ID.String()),
		zap.String("code", sh.Code),
	)

	response := ToShipmentResponse(sh)
	return &response, nil
}

// applyOrderAction transitions one order and appends its audit row
func (s *ShipmentService) applyOrderAction(ctx context.Context, repos TransactionalRepositories, o *order.Order, action order.Action, actor order.Actor, note string) error {
	from := o.Status
	if err := o.ApplyTransition(action, actor); err != nil {
		return fmt.Errorf("order %s: %w", o.TrackingNumber, err)
	}
	if err := repos.Orders().SaveWithLock(ctx, o); err != nil {
		return err
	}
	h, err := order.NewOrderHistory(o.ID, from, o.Status, action, actor, note)
	if err != nil {
		return err
	}
	return repos.History().Append(ctx, h)
}

// Cancel aborts a pending shipment, releasing its orders for reassignment
func (s *ShipmentService) Cancel(ctx context.Context, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", "cancel")
	defer span.End()

	var sh *shipment.Shipment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sh, err = repos.Shipments().FindByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		if err := sh.Cancel(); err != nil {
			return err
		}
		return repos.Shipments().SaveWithLock(ctx, sh)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Shipment cancelled",
		zap.String("shipment_id", sh.ID.String()),
		zap.String("code", sh.Code),
	)

	response := ToShipmentResponse(sh)
	return &response, nil
}

// GetByID retrieves a shipment with its orders
func (s *ShipmentService) GetByID(ctx context.Context, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	var sh *shipment.Shipment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sh, err = repos.Shipments().FindByID(ctx, shipmentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToShipmentResponse(sh)
	return &response, nil
}

// GetByCode retrieves a shipment by its code
func (s *ShipmentService) GetByCode(ctx context.Context, code string) (*ShipmentResponse, error) {
	var sh *shipment.Shipment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sh, err = repos.Shipments().FindByCode(ctx, code)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToShipmentResponse(sh)
	return &response, nil
}

// ListByOffice lists shipments created by an office
func (s *ShipmentService) ListByOffice(ctx context.Context, officeID uuid.UUID, filter ListShipmentsFilter) ([]ShipmentResponse, error) {
	return s.list(ctx, filter, func(ctx context.Context, repos TransactionalRepositories, f shared.Filter) ([]shipment.Shipment, error) {
		return repos.Shipments().FindByOffice(ctx, officeID, f)
	})
}

// ListByEmployee lists shipments assigned to an employee
func (s *ShipmentService) ListByEmployee(ctx context.Context, employeeID uuid.UUID, filter ListShipmentsFilter) ([]ShipmentResponse, error) {
	return s.list(ctx, filter, func(ctx context.Context, repos TransactionalRepositories, f shared.Filter) ([]shipment.Shipment, error) {
		return repos.Shipments().FindByEmployee(ctx, employeeID, f)
	})
}

func (s *ShipmentService) list(ctx context.Context, filter ListShipmentsFilter, query func(ctx context.Context, repos TransactionalRepositories, f shared.Filter) ([]shipment.Shipment, error)) ([]ShipmentResponse, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}

	var shipments []shipment.Shipment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		shipments, err = query(ctx, repos, f)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]ShipmentResponse, 0, len(shipments))
	for i := range shipments {
		responses = append(responses, ToShipmentResponse(&shipments[i]))
	}
	return responses, nil
}
