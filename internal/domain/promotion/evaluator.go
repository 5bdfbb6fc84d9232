package promotion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
)

// UsageReader supplies the usage counters and user facts the evaluator needs
type UsageReader interface {
	// FindUserPromotion returns the user's link for a non-global promotion,
	// or ErrNotFound when the user does not hold one
	FindUserPromotion(ctx context.Context, promotionID, userID uuid.UUID) (*UserPromotion, error)

	// CountUsageOnDate counts global promotion uses on the given calendar day
	CountUsageOnDate(ctx context.Context, promotionID uuid.UUID, day time.Time) (int, error)

	// CountUserUsageOnDate counts one user's uses on the given calendar day
	CountUserUsageOnDate(ctx context.Context, promotionID, userID uuid.UUID, day time.Time) (int, error)

	// CountUserOrders counts the user's non-cancelled orders
	CountUserOrders(ctx context.Context, userID uuid.UUID) (int64, error)

	// UserSignupTime returns when the user account was created
	UserSignupTime(ctx context.Context, userID uuid.UUID) (time.Time, error)
}

// OrderContext describes the order a promotion is being evaluated against
type OrderContext struct {
	OrderValue    valueobject.Money
	WeightKg      decimal.Decimal
	ServiceTypeID uuid.UUID
}

// Ineligibility reasons returned by the evaluator
var (
	ErrPromotionInactive    = shared.NewDomainError("PROMOTION_INACTIVE", "Promotion is not active")
	ErrPromotionNotStarted  = shared.NewDomainError("PROMOTION_NOT_STARTED", "Promotion has not started yet")
	ErrPromotionEnded       = shared.NewDomainError("PROMOTION_ENDED", "Promotion has ended")
	ErrPromotionNotHeld     = shared.NewDomainError("PROMOTION_NOT_HELD", "User does not hold this promotion")
	ErrDailyLimitReached    = shared.NewDomainError("DAILY_LIMIT_REACHED", "Daily usage limit reached")
	ErrOrderCountTooLow     = shared.NewDomainError("ORDER_COUNT_TOO_LOW", "Not enough prior orders to use this promotion")
	ErrServiceTypeExcluded  = shared.NewDomainError("SERVICE_TYPE_EXCLUDED", "Promotion does not apply to this service type")
	ErrOrderValueTooLow     = shared.NewDomainError("ORDER_VALUE_TOO_LOW", "Order value below the promotion minimum")
	ErrWeightOutOfBand      = shared.NewDomainError("WEIGHT_OUT_OF_BAND", "Order weight outside the promotion's weight band")
	ErrNotFirstTimeUser     = shared.NewDomainError("NOT_FIRST_TIME_USER", "Promotion is restricted to first-time users")
	ErrAccountTooOld        = shared.NewDomainError("ACCOUNT_TOO_OLD", "Account is outside the promotion's age window")
)

// Evaluator decides promotion eligibility. Checks run in a fixed order and
// short-circuit on the first failure; the returned error names the reason.
type Evaluator struct {
	usage UsageReader
	now   func() time.Time
}

// NewEvaluator creates an evaluator backed by the given usage reader
func NewEvaluator(usage UsageReader) *Evaluator {
	return &Evaluator{usage: usage, now: time.Now}
}

// IsEligible checks every eligibility rule for the user and order context.
// A nil error means eligible; otherwise the error carries the first failed
// rule.
func (e *Evaluator) IsEligible(ctx context.Context, promo *Promotion, userID uuid.UUID, order OrderContext) error {
	now := e.now()

	if promo.Status != StatusActive {
		return ErrPromotionInactive
	}
	if now.Before(promo.StartDate) {
		return ErrPromotionNotStarted
	}
	if now.After(promo.EndDate) {
		return ErrPromotionEnded
	}

	if !promo.IsGlobal {
		link, err := e.usage.FindUserPromotion(ctx, promo.ID, userID)
		if err != nil {
			if err == shared.ErrNotFound {
				return ErrPromotionNotHeld
			}
			return err
		}
		if promo.PerUserLimit != nil && link.UsedCount >= *promo.PerUserLimit {
			return shared.ErrUsageLimitReached
		}
	}

	if promo.UsageLimit != nil && promo.UsedCount >= *promo.UsageLimit {
		return shared.ErrUsageLimitReached
	}

	if promo.DailyLimit != nil {
		used, err := e.usage.CountUsageOnDate(ctx, promo.ID, now)
		if err != nil {
			return err
		}
		if used >= *promo.DailyLimit {
			return ErrDailyLimitReached
		}
	}
	if promo.DailyPerUserLimit != nil {
		used, err := e.usage.CountUserUsageOnDate(ctx, promo.ID, userID, now)
		if err != nil {
			return err
		}
		if used >= *promo.DailyPerUserLimit {
			return ErrDailyLimitReached
		}
	}

	var orderCount int64 = -1
	if promo.MinPriorOrders != nil {
		count, err := e.usage.CountUserOrders(ctx, userID)
		if err != nil {
			return err
		}
		orderCount = count
		if count < int64(*promo.MinPriorOrders) {
			return ErrOrderCountTooLow
		}
	}

	if !promo.AppliesToServiceType(order.ServiceTypeID) {
		return ErrServiceTypeExcluded
	}

	if order.OrderValue.Amount().LessThan(promo.MinOrderValue.Amount()) {
		return ErrOrderValueTooLow
	}
	if promo.MinWeightKg != nil && order.WeightKg.LessThan(*promo.MinWeightKg) {
		return ErrWeightOutOfBand
	}
	if promo.MaxWeightKg != nil && order.WeightKg.GreaterThan(*promo.MaxWeightKg) {
		return ErrWeightOutOfBand
	}

	if promo.FirstTimeOnly {
		if orderCount < 0 {
			count, err := e.usage.CountUserOrders(ctx, userID)
			if err != nil {
				return err
			}
			orderCount = count
		}
		if orderCount > 0 {
			return ErrNotFirstTimeUser
		}
	}

	if promo.MaxAccountAgeMonths != nil {
		signup, err := e.usage.UserSignupTime(ctx, userID)
		if err != nil {
			return err
		}
		cutoff := signup.AddDate(0, *promo.MaxAccountAgeMonths, 0)
		if now.After(cutoff) {
			return ErrAccountTooOld
		}
	}

	return nil
}
