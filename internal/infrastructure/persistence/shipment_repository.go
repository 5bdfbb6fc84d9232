package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shipment"
	"github.com/lastmile/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormShipmentRepository implements ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// FindByID finds a shipment by ID, including its orders
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipment.Shipment, error) {
	var m models.ShipmentModel
	if err := r.db.WithContext(ctx).
		Preload("Orders").
		First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByCode finds a shipment by its code
func (r *GormShipmentRepository) FindByCode(ctx context.Context, code string) (*shipment.Shipment, error) {
	var m models.ShipmentModel
	if err := r.db.WithContext(ctx).
		Preload("Orders").
		Where("code = ?", code).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// ExistsByCode reports whether a shipment code is already taken
func (r *GormShipmentRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByOffice finds shipments created by an office
func (r *GormShipmentRepository) FindByOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]shipment.Shipment, error) {
	query := r.db.WithContext(ctx).Model(&models.ShipmentModel{}).
		Where("office_id = ?", officeID)
	return r.findAll(query, filter)
}

// FindByEmployee finds shipments assigned to an employee
func (r *GormShipmentRepository) FindByEmployee(ctx context.Context, employeeID uuid.UUID, filter shared.Filter) ([]shipment.Shipment, error) {
	query := r.db.WithContext(ctx).Model(&models.ShipmentModel{}).
		Where("employee_id = ?", employeeID)
	return r.findAll(query, filter)
}

// FindActiveByOrder returns the PENDING or IN_TRANSIT shipment holding the order
func (r *GormShipmentRepository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*shipment.Shipment, error) {
	var m models.ShipmentModel
	if err := r.db.WithContext(ctx).
		Preload("Orders").
		Joins("JOIN shipment_orders ON shipment_orders.shipment_id = shipments.id").
		Where("shipment_orders.order_id = ? AND shipments.status IN ?",
			orderID, []shipment.ShipmentStatus{shipment.StatusPending, shipment.StatusInTransit}).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// Save creates or updates a shipment with its orders
func (r *GormShipmentRepository) Save(ctx context.Context, s *shipment.Shipment) error {
	m := models.ShipmentModelFromDomain(s)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Orders").Save(m).Error; err != nil {
			return err
		}
		return r.saveOrders(tx, m)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormShipmentRepository) SaveWithLock(ctx context.Context, s *shipment.Shipment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&models.ShipmentModel{}).
			Where("id = ?", s.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != s.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The shipment has been modified by another user")
		}

		s.Version++
		s.UpdatedAt = time.Now()
		m := models.ShipmentModelFromDomain(s)

		result := tx.Model(&models.ShipmentModel{}).
			Where("id = ? AND version = ?", m.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":             m.Status,
				"employee_id":        m.EmployeeID,
				"employee_office_id": m.EmployeeOfficeID,
				"vehicle_id":         m.VehicleID,
				"capacity_kg":        m.CapacityKg,
				"total_weight_kg":    m.TotalWeightKg,
				"departed_at":        m.DepartedAt,
				"completed_at":       m.CompletedAt,
				"cancelled_at":       m.CancelledAt,
				"version":            m.Version,
				"updated_at":         m.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The shipment has been modified by another user")
		}

		return r.saveOrders(tx, m)
	})
}

// Count counts shipments matching the filter
func (r *GormShipmentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.ShipmentModel{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// saveOrders reconciles the shipment_orders rows with the aggregate's members
func (r *GormShipmentRepository) saveOrders(tx *gorm.DB, m *models.ShipmentModel) error {
	if len(m.Orders) > 0 {
		memberIDs := make([]uuid.UUID, len(m.Orders))
		for i, so := range m.Orders {
			memberIDs[i] = so.ID
		}
		if err := tx.Where("shipment_id = ? AND id NOT IN ?", m.ID, memberIDs).
			Delete(&models.ShipmentOrderModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("shipment_id = ?", m.ID).
			Delete(&models.ShipmentOrderModel{}).Error; err != nil {
			return err
		}
	}

	for i := range m.Orders {
		m.Orders[i].ShipmentID = m.ID
		if err := tx.Save(&m.Orders[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// findAll runs the query with filters applied and converts the results
func (r *GormShipmentRepository) findAll(query *gorm.DB, filter shared.Filter) ([]shipment.Shipment, error) {
	var rows []models.ShipmentModel
	if err := r.applyFilter(query, filter).Preload("Orders").Find(&rows).Error; err != nil {
		return nil, err
	}

	shipments := make([]shipment.Shipment, len(rows))
	for i := range rows {
		shipments[i] = *rows[i].ToDomain()
	}
	return shipments, nil
}

// applyFilter applies filter options to the query
func (r *GormShipmentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := filter.Offset()
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	field := ValidateSortField(filter.OrderBy, ShipmentSortFields, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormShipmentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("code ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "office_id":
			query = query.Where("office_id = ?", value)
		}
	}

	return query
}

// Ensure GormShipmentRepository implements ShipmentRepository
var _ shipment.ShipmentRepository = (*GormShipmentRepository)(nil)
