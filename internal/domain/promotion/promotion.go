package promotion

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
)

// Status is the lifecycle status of a promotion
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusExpired  Status = "EXPIRED"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusExpired:
		return true
	}
	return false
}

// DiscountType determines how the discount amount is computed
type DiscountType string

const (
	DiscountFixed      DiscountType = "FIXED"
	DiscountPercentage DiscountType = "PERCENTAGE"
)

// Promotion defines eligibility rules and discount shape. The global
// UsedCount counter and per-user UserPromotion counters move together inside
// one transaction; see the application layer.
type Promotion struct {
	shared.BaseAggregateRoot
	Code        string
	Name        string
	Description string
	Status      Status
	StartDate   time.Time
	EndDate     time.Time

	// Global promotions apply to every user; non-global ones require a
	// UserPromotion link.
	IsGlobal bool

	UsageLimit        *int
	UsedCount         int
	PerUserLimit      *int
	DailyLimit        *int
	DailyPerUserLimit *int

	MinOrderValue valueobject.Money
	MinWeightKg   *decimal.Decimal
	MaxWeightKg   *decimal.Decimal

	// MinPriorOrders requires this many non-cancelled orders before use;
	// FirstTimeOnly requires zero.
	MinPriorOrders *int
	FirstTimeOnly  bool

	// MaxAccountAgeMonths restricts the promotion to accounts younger than
	// this many months.
	MaxAccountAgeMonths *int

	// ServiceTypeIDs restricts applicability; empty means any service type
	ServiceTypeIDs []uuid.UUID

	DiscountType      DiscountType
	DiscountValue     decimal.Decimal
	MaxDiscountAmount *valueobject.Money
}

// NewPromotionParams carries the inputs for creating a promotion
type NewPromotionParams struct {
	Code          string
	Name          string
	Description   string
	StartDate     time.Time
	EndDate       time.Time
	IsGlobal      bool
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	MinOrderValue valueobject.Money
}

// NewPromotion creates an active promotion
func NewPromotion(p NewPromotionParams) (*Promotion, error) {
	if p.Code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Promotion code cannot be empty")
	}
	if p.Name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Promotion name cannot be empty")
	}
	if !p.EndDate.After(p.StartDate) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "End date must be after start date")
	}
	if p.DiscountType != DiscountFixed && p.DiscountType != DiscountPercentage {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Unknown discount type")
	}
	if p.DiscountValue.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Discount value must be positive")
	}
	if p.DiscountType == DiscountPercentage && p.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Percentage discount cannot exceed 100")
	}

	return &Promotion{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              p.Code,
		Name:              p.Name,
		Description:       p.Description,
		Status:            StatusActive,
		StartDate:         p.StartDate,
		EndDate:           p.EndDate,
		IsGlobal:          p.IsGlobal,
		MinOrderValue:     p.MinOrderValue,
		DiscountType:      p.DiscountType,
		DiscountValue:     p.DiscountValue,
	}, nil
}

// IncreaseUsage bumps the global usage counter, enforcing the cap
func (p *Promotion) IncreaseUsage() error {
	if p.UsageLimit != nil && p.UsedCount >= *p.UsageLimit {
		return shared.ErrUsageLimitReached
	}
	p.UsedCount++
	p.UpdatedAt = time.Now()
	return nil
}

// DecreaseUsage reverses one usage, as happens on order cancellation
func (p *Promotion) DecreaseUsage() error {
	if p.UsedCount <= 0 {
		return shared.NewDomainError("INVALID_STATE", "Usage count is already zero")
	}
	p.UsedCount--
	p.UpdatedAt = time.Now()
	return nil
}

// Deactivate pauses the promotion
func (p *Promotion) Deactivate() {
	p.Status = StatusInactive
	p.UpdatedAt = time.Now()
}

// Activate resumes a paused promotion
func (p *Promotion) Activate() error {
	if p.Status == StatusExpired {
		return shared.NewDomainError("INVALID_STATE", "Cannot activate an expired promotion")
	}
	p.Status = StatusActive
	p.UpdatedAt = time.Now()
	return nil
}

// AppliesToServiceType reports whether the promotion covers the service type
func (p *Promotion) AppliesToServiceType(serviceTypeID uuid.UUID) bool {
	if len(p.ServiceTypeIDs) == 0 {
		return true
	}
	for _, id := range p.ServiceTypeIDs {
		if id == serviceTypeID {
			return true
		}
	}
	return false
}

// CalculateDiscount computes the discount for the given service fee. Fees
// below the promotion's minimum order value earn no discount; percentage
// discounts are capped at MaxDiscountAmount when set.
func (p *Promotion) CalculateDiscount(serviceFee valueobject.Money) valueobject.Money {
	if serviceFee.Amount().LessThan(p.MinOrderValue.Amount()) {
		return valueobject.ZeroVND()
	}

	var discount valueobject.Money
	switch p.DiscountType {
	case DiscountFixed:
		discount = valueobject.NewVND(p.DiscountValue)
	case DiscountPercentage:
		discount = serviceFee.CalculatePercentage(p.DiscountValue)
	default:
		return valueobject.ZeroVND()
	}

	if p.MaxDiscountAmount != nil && discount.Amount().GreaterThan(p.MaxDiscountAmount.Amount()) {
		discount = *p.MaxDiscountAmount
	}

	// Never discount more than the fee itself
	if discount.Amount().GreaterThan(serviceFee.Amount()) {
		discount = serviceFee
	}

	return discount
}

// UserPromotion links a non-global promotion to one user and tracks that
// user's usage
type UserPromotion struct {
	shared.BaseEntity
	PromotionID uuid.UUID
	UserID      uuid.UUID
	UsedCount   int
}

// NewUserPromotion creates a user link for a non-global promotion
func NewUserPromotion(promotionID, userID uuid.UUID) (*UserPromotion, error) {
	if promotionID == uuid.Nil || userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Promotion and user IDs are required")
	}
	return &UserPromotion{
		BaseEntity:  shared.NewBaseEntity(),
		PromotionID: promotionID,
		UserID:      userID,
	}, nil
}

// IncreaseUsage bumps the user's usage counter, enforcing the per-user cap
func (up *UserPromotion) IncreaseUsage(limit *int) error {
	if limit != nil && up.UsedCount >= *limit {
		return shared.ErrUsageLimitReached
	}
	up.UsedCount++
	up.UpdatedAt = time.Now()
	return nil
}

// DecreaseUsage reverses one usage
func (up *UserPromotion) DecreaseUsage() error {
	if up.UsedCount <= 0 {
		return shared.NewDomainError("INVALID_STATE", "Usage count is already zero")
	}
	up.UsedCount--
	up.UpdatedAt = time.Now()
	return nil
}
