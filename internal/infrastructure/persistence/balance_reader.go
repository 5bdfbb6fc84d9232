package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
	"github.com/lastmile/backend/internal/infrastructure/persistence/models"
)

// GormBalanceReader computes merchant settlement balances from delivered
// orders. COD collected on behalf of the shop counts in the shop's favor,
// shipping fees the shop agreed to pay count against it.
type GormBalanceReader struct {
	db *gorm.DB
}

// NewGormBalanceReader creates a new GormBalanceReader
func NewGormBalanceReader(db *gorm.DB) *GormBalanceReader {
	return &GormBalanceReader{db: db}
}

// Balance sums cod_amount minus shop-payable fees over the shop's orders
// delivered in [periodStart, periodEnd).
func (r *GormBalanceReader) Balance(ctx context.Context, shopID uuid.UUID, periodStart, periodEnd time.Time) (valueobject.Money, error) {
	base := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("shop_id = ?", shopID).
		Where("status = ?", order.StatusDelivered).
		Where("delivered_at >= ? AND delivered_at < ?", periodStart, periodEnd)

	var collected decimal.NullDecimal
	err := base.Session(&gorm.Session{}).
		Where("cod_status IN ?", []order.CODStatus{order.CODCollected, order.CODTransferred}).
		Select("COALESCE(SUM(cod_amount), 0)").
		Scan(&collected).Error
	if err != nil {
		return valueobject.Money{}, fmt.Errorf("sum collected cod: %w", err)
	}

	var owed decimal.NullDecimal
	err = base.Session(&gorm.Session{}).
		Where("payer = ?", order.PayerShop).
		Select("COALESCE(SUM(total_fee), 0)").
		Scan(&owed).Error
	if err != nil {
		return valueobject.Money{}, fmt.Errorf("sum shop fees: %w", err)
	}

	balance := collected.Decimal.Sub(owed.Decimal)
	return valueobject.NewVND(balance), nil
}
