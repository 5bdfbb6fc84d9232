package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var m models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByTrackingNumber finds an order by its tracking number
func (r *GormOrderRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*order.Order, error) {
	var m models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tracking_number = ?", trackingNumber).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByCustomer finds orders created by or for a customer
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("customer_id = ?", customerID)
	return r.findAll(query, filter)
}

// FindByShop finds orders owned by a merchant shop
func (r *GormOrderRepository) FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("shop_id = ?", shopID)
	return r.findAll(query, filter)
}

// FindByStatus finds orders in the given status
func (r *GormOrderRepository) FindByStatus(ctx context.Context, status order.OrderStatus, filter shared.Filter) ([]order.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("status = ?", status)
	return r.findAll(query, filter)
}

// FindByOffice finds orders whose origin or destination is the office
func (r *GormOrderRepository) FindByOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("origin_office_id = ? OR destination_office_id = ?", officeID, officeID)
	return r.findAll(query, filter)
}

// Save creates or updates an order with its items
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	m := models.OrderModelFromDomain(o)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(m).Error; err != nil {
			return err
		}
		return r.saveItems(tx, m)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&models.OrderModel{}).
			Where("id = ?", o.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != o.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
		}

		o.Version++
		o.UpdatedAt = time.Now()
		m := models.OrderModelFromDomain(o)

		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", m.ID, currentVersion).
			Updates(map[string]interface{}{
				"tracking_number":       m.TrackingNumber,
				"status":                m.Status,
				"payment_status":        m.PaymentStatus,
				"cod_status":            m.CODStatus,
				"sender_name":           m.Sender.Name,
				"sender_phone":          m.Sender.Phone,
				"sender_street":         m.Sender.Street,
				"sender_city_code":      m.Sender.CityCode,
				"sender_ward_code":      m.Sender.WardCode,
				"recipient_name":        m.Recipient.Name,
				"recipient_phone":       m.Recipient.Phone,
				"recipient_street":      m.Recipient.Street,
				"recipient_city_code":   m.Recipient.CityCode,
				"recipient_ward_code":   m.Recipient.WardCode,
				"origin_office_id":      m.OriginOfficeID,
				"destination_office_id": m.DestinationOfficeID,
				"service_type_id":       m.ServiceTypeID,
				"weight_kg":             m.WeightKg,
				"adjusted_weight_kg":    m.AdjustedWeightKg,
				"declared_value":        m.DeclaredValue,
				"cod_amount":            m.CODAmount,
				"shipping_fee":          m.ShippingFee,
				"service_fee":           m.ServiceFee,
				"discount_amount":       m.DiscountAmount,
				"total_fee":             m.TotalFee,
				"promotion_id":          m.PromotionID,
				"note":                  m.Note,
				"paid_at":               m.PaidAt,
				"delivered_at":          m.DeliveredAt,
				"cancelled_at":          m.CancelledAt,
				"cancel_reason":         m.CancelReason,
				"version":               m.Version,
				"updated_at":            m.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
		}

		return r.saveItems(tx, m)
	})
}

// ExistsByTrackingNumber checks if a tracking number is already taken
func (r *GormOrderRepository) ExistsByTrackingNumber(ctx context.Context, trackingNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("tracking_number = ?", trackingNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByCustomer counts a customer's orders, optionally excluding cancelled ones
func (r *GormOrderRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID, excludeCancelled bool) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("customer_id = ?", customerID)
	if excludeCancelled {
		query = query.Where("status <> ?", order.StatusCancelled)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.OrderModel{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// saveItems reconciles the order_items rows with the aggregate's items
func (r *GormOrderRepository) saveItems(tx *gorm.DB, m *models.OrderModel) error {
	if len(m.Items) > 0 {
		itemIDs := make([]uuid.UUID, len(m.Items))
		for i, item := range m.Items {
			itemIDs[i] = item.ID
		}
		if err := tx.Where("order_id = ? AND id NOT IN ?", m.ID, itemIDs).
			Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", m.ID).
			Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
	}

	for i := range m.Items {
		m.Items[i].OrderID = m.ID
		if err := tx.Save(&m.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// findAll runs the query with filters applied and converts the results
func (r *GormOrderRepository) findAll(query *gorm.DB, filter shared.Filter) ([]order.Order, error) {
	var rows []models.OrderModel
	if err := r.applyFilter(query, filter).Preload("Items").Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]order.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// applyFilter applies filter options to the query
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := filter.Offset()
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	field := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("tracking_number ILIKE ? OR recipient_name ILIKE ? OR recipient_phone ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "cod_status":
			query = query.Where("cod_status = ?", value)
		case "service_type_id":
			query = query.Where("service_type_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)
