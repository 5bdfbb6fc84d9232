package promotion

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lastmile/backend/internal/domain/notify"
	"github.com/lastmile/backend/internal/domain/promotion"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
)

// PromotionService handles promotion management and eligibility previews
type PromotionService struct {
	promotions  promotion.PromotionRepository
	userPromos  promotion.UserPromotionRepository
	eligibility *promotion.Evaluator
	notifier    notify.Sink
	logger      *zap.Logger
}

// NewPromotionService creates a new PromotionService
func NewPromotionService(
	promotions promotion.PromotionRepository,
	userPromos promotion.UserPromotionRepository,
	eligibility *promotion.Evaluator,
	notifier notify.Sink,
	logger *zap.Logger,
) *PromotionService {
	return &PromotionService{
		promotions:  promotions,
		userPromos:  userPromos,
		eligibility: eligibility,
		notifier:    notifier,
		logger:      logger,
	}
}

// Create creates a new promotion
func (s *PromotionService) Create(ctx context.Context, req CreatePromotionRequest) (*PromotionResponse, error) {
	if existing, err := s.promotions.FindByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	promo, err := promotion.NewPromotion(promotion.NewPromotionParams{
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		IsGlobal:      req.IsGlobal,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MinOrderValue: valueobject.NewVND(req.MinOrderValue),
	})
	if err != nil {
		return nil, err
	}

	promo.UsageLimit = req.UsageLimit
	promo.PerUserLimit = req.PerUserLimit
	promo.DailyLimit = req.DailyLimit
	promo.DailyPerUserLimit = req.DailyPerUserLimit
	promo.MinWeightKg = req.MinWeightKg
	promo.MaxWeightKg = req.MaxWeightKg
	promo.MinPriorOrders = req.MinPriorOrders
	promo.FirstTimeOnly = req.FirstTimeOnly
	promo.MaxAccountAgeMonths = req.MaxAccountAgeMonths
	promo.ServiceTypeIDs = req.ServiceTypeIDs
	if req.MaxDiscountAmount != nil {
		maxDiscount := valueobject.NewVND(*req.MaxDiscountAmount)
		promo.MaxDiscountAmount = &maxDiscount
	}

	if err := s.promotions.Save(ctx, promo); err != nil {
		return nil, err
	}

	s.logger.Info("Promotion created",
		zap.String("promotion_id", promo.ID.String()),
		zap.String("code", promo.Code),
	)

	response := ToPromotionResponse(promo)
	return &response, nil
}

// Activate reactivates a deactivated promotion
func (s *PromotionService) Activate(ctx context.Context, promotionID uuid.UUID) (*PromotionResponse, error) {
	promo, err := s.promotions.FindByID(ctx, promotionID)
	if err != nil {
		return nil, err
	}
	if err := promo.Activate(); err != nil {
		return nil, err
	}
	if err := s.promotions.SaveWithLock(ctx, promo); err != nil {
		return nil, err
	}
	response := ToPromotionResponse(promo)
	return &response, nil
}

// Deactivate takes a promotion out of circulation
func (s *PromotionService) Deactivate(ctx context.Context, promotionID uuid.UUID) (*PromotionResponse, error) {
	promo, err := s.promotions.FindByID(ctx, promotionID)
	if err != nil {
		return nil, err
	}
	promo.Deactivate()
	if err := s.promotions.SaveWithLock(ctx, promo); err != nil {
		return nil, err
	}
	response := ToPromotionResponse(promo)
	return &response, nil
}

// Grant links a non-global promotion to a user and tells them about it
func (s *PromotionService) Grant(ctx context.Context, promotionID uuid.UUID, req GrantPromotionRequest) error {
	promo, err := s.promotions.FindByID(ctx, promotionID)
	if err != nil {
		return err
	}
	if promo.IsGlobal {
		return shared.NewDomainError("INVALID_STATE", "Global promotions apply to every user and cannot be granted")
	}

	if _, err := s.userPromos.FindByPromotionAndUser(ctx, promotionID, req.UserID); err == nil {
		return shared.ErrAlreadyExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	up, err := promotion.NewUserPromotion(promotionID, req.UserID)
	if err != nil {
		return err
	}
	if err := s.userPromos.Save(ctx, up); err != nil {
		return err
	}

	s.notifier.Notify(ctx, notify.Notification{
		RecipientID: req.UserID,
		Title:       "New promotion available",
		Message:     promo.Name,
		Category:    notify.CategoryPromotion,
		ReferenceID: promo.ID,
	})

	return nil
}

// CheckEligibility previews whether a user could apply the promotion to a
// prospective order, without claiming a use.
func (s *PromotionService) CheckEligibility(ctx context.Context, promotionID uuid.UUID, req CheckEligibilityRequest) (*EligibilityResponse, error) {
	promo, err := s.promotions.FindByID(ctx, promotionID)
	if err != nil {
		return nil, err
	}

	orderValue := valueobject.NewVND(req.OrderValue)
	err = s.eligibility.IsEligible(ctx, promo, req.UserID, promotion.OrderContext{
		OrderValue:    orderValue,
		WeightKg:      req.WeightKg,
		ServiceTypeID: req.ServiceTypeID,
	})
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return &EligibilityResponse{Eligible: false, Reason: domainErr.Code}, nil
		}
		return nil, err
	}

	discount := promo.CalculateDiscount(orderValue)
	return &EligibilityResponse{Eligible: true, Discount: discount.Amount()}, nil
}

// GetByID retrieves a promotion by ID
func (s *PromotionService) GetByID(ctx context.Context, promotionID uuid.UUID) (*PromotionResponse, error) {
	promo, err := s.promotions.FindByID(ctx, promotionID)
	if err != nil {
		return nil, err
	}
	response := ToPromotionResponse(promo)
	return &response, nil
}

// GetByCode retrieves a promotion by code
func (s *PromotionService) GetByCode(ctx context.Context, code string) (*PromotionResponse, error) {
	promo, err := s.promotions.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	response := ToPromotionResponse(promo)
	return &response, nil
}

// ListActive lists active promotions
func (s *PromotionService) ListActive(ctx context.Context) ([]PromotionResponse, error) {
	promos, err := s.promotions.FindActive(ctx, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	responses := make([]PromotionResponse, 0, len(promos))
	for i := range promos {
		responses = append(responses, ToPromotionResponse(&promos[i]))
	}
	return responses, nil
}
