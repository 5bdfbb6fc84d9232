package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lastmile/backend/internal/domain/network"
	"github.com/lastmile/backend/internal/domain/notify"
	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/pricing"
	"github.com/lastmile/backend/internal/domain/promotion"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
	"github.com/lastmile/backend/internal/infrastructure/telemetry"
)

// OrderService handles order lifecycle operations
type OrderService struct {
	scope       TransactionScope
	offices     network.OfficeRepository
	pricing     *pricing.Engine
	eligibility *promotion.Evaluator
	notifier    notify.Sink
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	scope TransactionScope,
	offices network.OfficeRepository,
	pricingEngine *pricing.Engine,
	eligibility *promotion.Evaluator,
	notifier notify.Sink,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		scope:       scope,
		offices:     offices,
		pricing:     pricingEngine,
		eligibility: eligibility,
		notifier:    notifier,
		logger:      logger,
	}
}

// Create creates a new order in DRAFT status with its fees calculated.
// Stock for merchant order items is reserved and the promotion, if any, is
// claimed in the same transaction.
func (s *OrderService) Create(ctx context.Context, actor order.Actor, req CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create")
	defer span.End()

	creatorType := order.CreatorUser
	if actor.Role.IsStaff() {
		creatorType = order.CreatorManager
	}

	o, err := order.NewOrder(order.NewOrderParams{
		CreatorType:   creatorType,
		PickupType:    req.PickupType,
		Payer:         req.Payer,
		CustomerID:    req.CustomerID,
		ShopID:        req.ShopID,
		Sender:        req.Sender.ToDomain(),
		Recipient:     req.Recipient.ToDomain(),
		OriginOffice:  req.OriginOffice,
		DestOffice:    req.DestOffice,
		ServiceTypeID: req.ServiceTypeID,
		WeightKg:      req.WeightKg,
		DeclaredValue: valueobject.NewVND(req.DeclaredValue),
		CODAmount:     valueobject.NewVND(req.CODAmount),
		Note:          req.Note,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	for _, item := range req.Items {
		if _, err := o.AddItem(item.ProductID, item.ProductName, item.Quantity, valueobject.NewVND(item.UnitValue)); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	breakdown, err := s.calculateFees(ctx, o)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		discount := valueobject.ZeroVND()

		if req.PromotionCode != "" {
			d, err := s.claimPromotion(ctx, repos, o, req.PromotionCode, breakdown)
			if err != nil {
				return err
			}
			discount = d
		}

		if err := o.SetFees(breakdown.ShippingFee, breakdown.ServiceFeeTotal, discount); err != nil {
			return err
		}

		// Merchant orders reserve stock for every line item
		for _, item := range o.Items {
			product, err := repos.Products().FindByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if err := product.Reserve(item.Quantity); err != nil {
				return err
			}
			if err := repos.Products().SaveWithLock(ctx, product); err != nil {
				return err
			}
		}

		return repos.Orders().Save(ctx, o)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, o.ID.String(),
		telemetry.SpanAttrOrderStatus, string(o.Status),
	)
	s.logger.Info("Order created",
		zap.String("order_id", o.ID.String()),
		zap.String("customer_id", o.CustomerID.String()),
		zap.String("total_fee", o.TotalFee.String()),
	)

	response := ToOrderResponse(o)
	return &response, nil
}

// claimPromotion validates the promotion against the order, attaches it and
// claims one use on both the global and per-user counters. Counter updates
// use optimistic locking so two orders cannot claim the last remaining use.
func (s *OrderService) claimPromotion(ctx context.Context, repos TransactionalRepositories, o *order.Order, code string, breakdown *pricing.FeeBreakdown) (valueobject.Money, error) {
	promo, err := repos.Promotions().FindByCode(ctx, code)
	if err != nil {
		return valueobject.ZeroVND(), err
	}

	if err := s.eligibility.IsEligible(ctx, promo, o.CustomerID, promotion.OrderContext{
		OrderValue:    o.DeclaredValue,
		WeightKg:      o.WeightKg,
		ServiceTypeID: o.ServiceTypeID,
	}); err != nil {
		return valueobject.ZeroVND(), err
	}

	if err := promo.IncreaseUsage(); err != nil {
		return valueobject.ZeroVND(), err
	}
	if err := repos.Promotions().SaveWithLock(ctx, promo); err != nil {
		return valueobject.ZeroVND(), err
	}

	up, err := repos.UserPromotions().FindByPromotionAndUser(ctx, promo.ID, o.CustomerID)
	if errors.Is(err, shared.ErrNotFound) {
		// Global promotions create the link on first use
		up, err = promotion.NewUserPromotion(promo.ID, o.CustomerID)
	}
	if err != nil {
		return valueobject.ZeroVND(), err
	}
	if err := up.IncreaseUsage(promo.PerUserLimit); err != nil {
		return valueobject.ZeroVND(), err
	}
	if err := repos.UserPromotions().Save(ctx, up); err != nil {
		return valueobject.ZeroVND(), err
	}

	if err := o.AttachPromotion(promo.ID); err != nil {
		return valueobject.ZeroVND(), err
	}

	return promo.CalculateDiscount(breakdown.Total), nil
}

// calculateFees runs the pricing engine using the offices' city codes
func (s *OrderService) calculateFees(ctx context.Context, o *order.Order) (*pricing.FeeBreakdown, error) {
	origin, err := s.offices.FindByID(ctx, o.OriginOfficeID)
	if err != nil {
		return nil, err
	}
	dest, err := s.offices.FindByID(ctx, o.DestinationOfficeID)
	if err != nil {
		return nil, err
	}
	return s.pricing.CalculateTotalFee(ctx, o.EffectiveWeight(), o.ServiceTypeID,
		origin.CityCode, dest.CityCode, o.DeclaredValue, o.CODAmount)
}

// Transition applies one state machine action to the order. Leaving DRAFT
// assigns the tracking number. Every applied action appends one audit row.
func (s *OrderService) Transition(ctx context.Context, orderID uuid.UUID, actor order.Actor, req TransitionRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "transition")
	defer span.End()

	var o *order.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		o, err = repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		from := o.Status

		if o.Status == order.StatusDraft && o.TrackingNumber == "" {
			gen := order.NewTrackingGenerator(repos.Orders().ExistsByTrackingNumber)
			number, err := gen.Generate(ctx)
			if err != nil {
				return err
			}
			if err := o.AssignTrackingNumber(number); err != nil {
				return err
			}
		}

		if err := o.ApplyTransition(req.Action, actor); err != nil {
			return err
		}
		if err := repos.Orders().SaveWithLock(ctx, o); err != nil {
			return err
		}

		h, err := order.NewOrderHistory(o.ID, from, o.Status, req.Action, actor, req.Note)
		if err != nil {
			return err
		}
		return repos.History().Append(ctx, h)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, o.ID.String(),
		telemetry.SpanAttrOrderStatus, string(o.Status),
	)

	if o.Status == order.StatusDelivered {
		s.notifier.Notify(ctx, notify.Notification{
			RecipientID: o.CustomerID,
			Title:       "Order delivered",
			Message:     fmt.Sprintf("Order %s has been delivered", o.TrackingNumber),
			Category:    notify.CategoryOrder,
			ReferenceID: o.ID,
		})
	}

	response := ToOrderResponse(o)
	return &response, nil
}

// Cancel cancels the order. Reserved stock is restored and a claimed
// promotion use is returned in the same transaction.
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID, actor order.Actor, req CancelOrderRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "cancel")
	defer span.End()

	var o *order.Order
	var refunded bool
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		o, err = repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		from := o.Status
		promotionID := o.PromotionID

		refunded, err = o.Cancel(actor, req.Reason)
		if err != nil {
			return err
		}

		for _, item := range o.Items {
			product, err := repos.Products().FindByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if err := product.Restore(item.Quantity); err != nil {
				return err
			}
			if err := repos.Products().SaveWithLock(ctx, product); err != nil {
				return err
			}
		}

		if promotionID != nil {
			if err := s.releasePromotion(ctx, repos, *promotionID, o.CustomerID); err != nil {
				return err
			}
		}

		if err := repos.Orders().SaveWithLock(ctx, o); err != nil {
			return err
		}

		h, err := order.NewOrderHistory(o.ID, from, o.Status, order.ActionCancel, actor, req.Reason)
		if err != nil {
			return err
		}
		return repos.History().Append(ctx, h)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Order cancelled",
		zap.String("order_id", o.ID.String()),
		zap.String("reason", req.Reason),
		zap.Bool("refunded", refunded),
	)

	message := fmt.Sprintf("Your order has been cancelled: %s", req.Reason)
	if o.TrackingNumber != "" {
		message = fmt.Sprintf("Order %s has been cancelled: %s", o.TrackingNumber, req.Reason)
	}
	s.notifier.Notify(ctx, notify.Notification{
		RecipientID: o.CustomerID,
		Title:       "Order cancelled",
		Message:     message,
		Category:    notify.CategoryOrder,
		ReferenceID: o.ID,
	})

	response := ToOrderResponse(o)
	return &response, nil
}

// releasePromotion returns one claimed use on both counters
func (s *OrderService) releasePromotion(ctx context.Context, repos TransactionalRepositories, promotionID, customerID uuid.UUID) error {
	promo, err := repos.Promotions().FindByID(ctx, promotionID)
	if err != nil {
		return err
	}
	if err := promo.DecreaseUsage(); err != nil {
		return err
	}
	if err := repos.Promotions().SaveWithLock(ctx, promo); err != nil {
		return err
	}

	up, err := repos.UserPromotions().FindByPromotionAndUser(ctx, promotionID, customerID)
	if err != nil {
		return err
	}
	if err := up.DecreaseUsage(); err != nil {
		return err
	}
	return repos.UserPromotions().Save(ctx, up)
}

// CorrectWeight records the weight measured at the office and reprices the
// order. An attached promotion is removed: the discount was granted against
// the declared weight, so the corrected order is charged the undiscounted
// fee and the claimed use is returned.
func (s *OrderService) CorrectWeight(ctx context.Context, orderID uuid.UUID, actor order.Actor, req CorrectWeightRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "correct_weight")
	defer span.End()

	var o *order.Order
	var oldTotal, newTotal valueobject.Money
	var promotionCleared bool
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		o, err = repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		oldTotal = o.TotalFee
		originalWeight := o.OriginalWeight()

		if err := o.CorrectWeight(req.WeightKg, actor); err != nil {
			return err
		}

		if o.PromotionID != nil {
			if err := s.releasePromotion(ctx, repos, *o.PromotionID, o.CustomerID); err != nil {
				return err
			}
			o.ClearPromotion()
			promotionCleared = true
		}

		breakdown, err := s.calculateFees(ctx, o)
		if err != nil {
			return err
		}
		if err := o.SetFees(breakdown.ShippingFee, breakdown.ServiceFeeTotal, valueobject.ZeroVND()); err != nil {
			return err
		}
		newTotal = o.TotalFee

		o.AddDomainEvent(order.NewOrderWeightAdjustedEvent(o,
			originalWeight.String(), req.WeightKg.String(),
			oldTotal.String(), newTotal.String(), promotionCleared))

		return repos.Orders().SaveWithLock(ctx, o)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.notifier.Notify(ctx, notify.Notification{
		RecipientID: o.CustomerID,
		Title:       "Order weight corrected",
		Message: fmt.Sprintf("Order %s was re-weighed to %skg; the fee changed from %s to %s",
			o.TrackingNumber, req.WeightKg.String(), oldTotal.String(), newTotal.String()),
		Category:    notify.CategoryOrder,
		ReferenceID: o.ID,
	})

	s.logger.Info("Order weight corrected",
		zap.String("order_id", o.ID.String()),
		zap.String("new_weight_kg", req.WeightKg.String()),
		zap.Bool("promotion_cleared", promotionCleared),
	)

	response := ToOrderResponse(o)
	return &response, nil
}

// UpdateAddress replaces an address subject to the field-edit matrix
func (s *OrderService) UpdateAddress(ctx context.Context, orderID uuid.UUID, actor order.Actor, req UpdateAddressRequest) (*OrderResponse, error) {
	return s.updateOrder(ctx, orderID, func(o *order.Order) error {
		return o.UpdateAddress(req.Field, req.Address.ToDomain(), actor)
	})
}

// UpdateCODAmount changes the COD amount subject to the field-edit matrix
func (s *OrderService) UpdateCODAmount(ctx context.Context, orderID uuid.UUID, actor order.Actor, req UpdateCODAmountRequest) (*OrderResponse, error) {
	return s.updateOrder(ctx, orderID, func(o *order.Order) error {
		return o.UpdateCODAmount(valueobject.NewVND(req.Amount), actor)
	})
}

// UpdateNote replaces the note subject to the field-edit matrix
func (s *OrderService) UpdateNote(ctx context.Context, orderID uuid.UUID, actor order.Actor, req UpdateNoteRequest) (*OrderResponse, error) {
	return s.updateOrder(ctx, orderID, func(o *order.Order) error {
		return o.UpdateNote(req.Note, actor)
	})
}

func (s *OrderService) updateOrder(ctx context.Context, orderID uuid.UUID, mutate func(o *order.Order) error) (*OrderResponse, error) {
	var o *order.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		o, err = repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := mutate(o); err != nil {
			return err
		}
		return repos.Orders().SaveWithLock(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	response := ToOrderResponse(o)
	return &response, nil
}

// RecordCODCollected marks the COD cash of a delivered order as collected
// by the shipper.
func (s *OrderService) RecordCODCollected(ctx context.Context, orderID, shipperID uuid.UUID) (*OrderResponse, error) {
	return s.updateOrder(ctx, orderID, func(o *order.Order) error {
		return o.RecordCODCollected(shipperID)
	})
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	var o *order.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		o, err = repos.Orders().FindByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// GetByTrackingNumber retrieves an order by its tracking number
func (s *OrderService) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*OrderResponse, error) {
	var o *order.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		o, err = repos.Orders().FindByTrackingNumber(ctx, trackingNumber)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// ListByCustomer lists a customer's orders
func (s *OrderService) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter ListOrdersFilter) ([]OrderResponse, error) {
	return s.list(ctx, filter, func(ctx context.Context, repos TransactionalRepositories, f shared.Filter) ([]order.Order, error) {
		return repos.Orders().FindByCustomer(ctx, customerID, f)
	})
}

// ListByOffice lists orders whose origin or destination is the office
func (s *OrderService) ListByOffice(ctx context.Context, officeID uuid.UUID, filter ListOrdersFilter) ([]OrderResponse, error) {
	return s.list(ctx, filter, func(ctx context.Context, repos TransactionalRepositories, f shared.Filter) ([]order.Order, error) {
		return repos.Orders().FindByOffice(ctx, officeID, f)
	})
}

func (s *OrderService) list(ctx context.Context, filter ListOrdersFilter, query func(ctx context.Context, repos TransactionalRepositories, f shared.Filter) ([]order.Order, error)) ([]OrderResponse, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.Status != nil {
		f.Filters["status"] = string(*filter.Status)
	}

	var orders []order.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		orders, err = query(ctx, repos, f)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToOrderResponse(&orders[i]))
	}
	return responses, nil
}

// GetHistory returns the order's audit trail in chronological order
func (s *OrderService) GetHistory(ctx context.Context, orderID uuid.UUID) ([]OrderHistoryResponse, error) {
	var rows []order.OrderHistory
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		rows, err = repos.History().FindByOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	responses := make([]OrderHistoryResponse, 0, len(rows))
	for _, h := range rows {
		responses = append(responses, ToOrderHistoryResponse(h))
	}
	return responses, nil
}

// QuoteFee prices a prospective order without creating it
func (s *OrderService) QuoteFee(ctx context.Context, serviceTypeID, originOffice, destOffice uuid.UUID, weightKg decimal.Decimal, declaredValue, codAmount decimal.Decimal) (*pricing.FeeBreakdown, error) {
	origin, err := s.offices.FindByID(ctx, originOffice)
	if err != nil {
		return nil, err
	}
	dest, err := s.offices.FindByID(ctx, destOffice)
	if err != nil {
		return nil, err
	}
	return s.pricing.CalculateTotalFee(ctx, weightKg, serviceTypeID,
		origin.CityCode, dest.CityCode,
		valueobject.NewVND(declaredValue), valueobject.NewVND(codAmount))
}
