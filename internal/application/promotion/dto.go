package promotion

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastmile/backend/internal/domain/promotion"
)

// CreatePromotionRequest represents a request to create a promotion
type CreatePromotionRequest struct {
	Code          string                 `json:"code" binding:"required,min=3,max=50"`
	Name          string                 `json:"name" binding:"required,min=1,max=200"`
	Description   string                 `json:"description" binding:"max=1000"`
	StartDate     time.Time              `json:"start_date" binding:"required"`
	EndDate       time.Time              `json:"end_date" binding:"required"`
	IsGlobal      bool                   `json:"is_global"`
	DiscountType  promotion.DiscountType `json:"discount_type" binding:"required"`
	DiscountValue decimal.Decimal        `json:"discount_value" binding:"required"`
	MinOrderValue decimal.Decimal        `json:"min_order_value"`

	UsageLimit        *int `json:"usage_limit"`
	PerUserLimit      *int `json:"per_user_limit"`
	DailyLimit        *int `json:"daily_limit"`
	DailyPerUserLimit *int `json:"daily_per_user_limit"`

	MinWeightKg         *decimal.Decimal `json:"min_weight_kg"`
	MaxWeightKg         *decimal.Decimal `json:"max_weight_kg"`
	MinPriorOrders      *int             `json:"min_prior_orders"`
	FirstTimeOnly       bool             `json:"first_time_only"`
	MaxAccountAgeMonths *int             `json:"max_account_age_months"`
	ServiceTypeIDs      []uuid.UUID      `json:"service_type_ids"`
	MaxDiscountAmount   *decimal.Decimal `json:"max_discount_amount"`
}

// GrantPromotionRequest links a non-global promotion to a user
type GrantPromotionRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// CheckEligibilityRequest previews whether a user could apply a promotion
type CheckEligibilityRequest struct {
	UserID        uuid.UUID       `json:"user_id" binding:"required"`
	OrderValue    decimal.Decimal `json:"order_value"`
	WeightKg      decimal.Decimal `json:"weight_kg" binding:"required"`
	ServiceTypeID uuid.UUID       `json:"service_type_id" binding:"required"`
}

// EligibilityResponse is the result of an eligibility preview
type EligibilityResponse struct {
	Eligible bool            `json:"eligible"`
	Reason   string          `json:"reason,omitempty"`
	Discount decimal.Decimal `json:"discount"`
}

// PromotionResponse represents a promotion in API responses
type PromotionResponse struct {
	ID            uuid.UUID              `json:"id"`
	Code          string                 `json:"code"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description,omitempty"`
	Status        promotion.Status       `json:"status"`
	StartDate     time.Time              `json:"start_date"`
	EndDate       time.Time              `json:"end_date"`
	IsGlobal      bool                   `json:"is_global"`
	UsageLimit    *int                   `json:"usage_limit,omitempty"`
	UsedCount     int                    `json:"used_count"`
	PerUserLimit  *int                   `json:"per_user_limit,omitempty"`
	DiscountType  promotion.DiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal        `json:"discount_value"`
	MinOrderValue decimal.Decimal        `json:"min_order_value"`
	CreatedAt     time.Time              `json:"created_at"`
}

// ToPromotionResponse converts a domain promotion to a response DTO
func ToPromotionResponse(p *promotion.Promotion) PromotionResponse {
	return PromotionResponse{
		ID:            p.ID,
		Code:          p.Code,
		Name:          p.Name,
		Description:   p.Description,
		Status:        p.Status,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		IsGlobal:      p.IsGlobal,
		UsageLimit:    p.UsageLimit,
		UsedCount:     p.UsedCount,
		PerUserLimit:  p.PerUserLimit,
		DiscountType:  p.DiscountType,
		DiscountValue: p.DiscountValue,
		MinOrderValue: p.MinOrderValue.Amount(),
		CreatedAt:     p.CreatedAt,
	}
}
