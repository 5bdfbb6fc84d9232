package pricing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
)

// RateStore is the read-only lookup of rate brackets and fee configuration
type RateStore interface {
	// FindBracket returns the bracket covering the weight for the service
	// type and region class, or ErrNotFound
	FindBracket(ctx context.Context, serviceTypeID uuid.UUID, region RegionClass, weightKg decimal.Decimal) (*RateBracket, error)

	// FindFeeConfigs returns the active auxiliary fee rows for the service type
	FindFeeConfigs(ctx context.Context, serviceTypeID uuid.UUID) ([]FeeConfig, error)
}

// RegionClassifier resolves an origin/destination city pair to a region class
type RegionClassifier interface {
	Classify(originCityCode, destCityCode int) RegionClass
}

// FeeBreakdown is the output of a total-fee calculation
type FeeBreakdown struct {
	ShippingFee valueobject.Money
	// ServiceFees maps each auxiliary fee kind to its clamped amount
	ServiceFees map[FeeKind]valueobject.Money
	ServiceFeeTotal valueobject.Money
	Total           valueobject.Money
}

// Engine computes shipping and total fees. It holds no mutable state, so
// identical inputs always produce identical output; weight corrections replay
// the original computation against the same rate rows.
type Engine struct {
	rates      RateStore
	classifier RegionClassifier
}

// NewEngine creates a fee engine
func NewEngine(rates RateStore, classifier RegionClassifier) *Engine {
	return &Engine{rates: rates, classifier: classifier}
}

// CalculateShippingFee prices the parcel weight against the rate bracket for
// the service type and route. The bracket's base price covers the first
// weight unit; each additional started unit adds the bracket's extra price.
func (e *Engine) CalculateShippingFee(ctx context.Context, weightKg decimal.Decimal, serviceTypeID uuid.UUID, originCityCode, destCityCode int) (valueobject.Money, error) {
	if weightKg.LessThanOrEqual(decimal.Zero) {
		return valueobject.Money{}, shared.NewDomainError("INVALID_WEIGHT", "Weight must be positive")
	}

	region := e.classifier.Classify(originCityCode, destCityCode)
	bracket, err := e.rates.FindBracket(ctx, serviceTypeID, region, weightKg)
	if err != nil {
		return valueobject.Money{}, err
	}

	return bracketPrice(bracket, weightKg), nil
}

// CalculateTotalFee computes the full fee breakdown: shipping fee plus every
// configured auxiliary fee. COD handling applies only when the order carries
// a COD amount; insurance applies only when a declared value is present.
func (e *Engine) CalculateTotalFee(ctx context.Context, weightKg decimal.Decimal, serviceTypeID uuid.UUID, originCityCode, destCityCode int, orderValue, codAmount valueobject.Money) (*FeeBreakdown, error) {
	shipping, err := e.CalculateShippingFee(ctx, weightKg, serviceTypeID, originCityCode, destCityCode)
	if err != nil {
		return nil, err
	}

	configs, err := e.rates.FindFeeConfigs(ctx, serviceTypeID)
	if err != nil {
		return nil, err
	}

	breakdown := &FeeBreakdown{
		ShippingFee:     shipping,
		ServiceFees:     make(map[FeeKind]valueobject.Money),
		ServiceFeeTotal: valueobject.ZeroVND(),
	}

	for i := range configs {
		cfg := &configs[i]
		if !cfg.Active {
			continue
		}

		var base valueobject.Money
		switch cfg.Kind {
		case FeeCODHandling:
			if !codAmount.IsPositive() {
				continue
			}
			base = codAmount
		case FeeInsurance:
			if !orderValue.IsPositive() {
				continue
			}
			base = orderValue
		default:
			base = orderValue
		}

		amount := cfg.Compute(base)
		breakdown.ServiceFees[cfg.Kind] = amount
		breakdown.ServiceFeeTotal = breakdown.ServiceFeeTotal.MustAdd(amount)
	}

	breakdown.Total = breakdown.ShippingFee.MustAdd(breakdown.ServiceFeeTotal)

	return breakdown, nil
}

// bracketPrice applies the bracket's unit pricing to the weight
func bracketPrice(b *RateBracket, weightKg decimal.Decimal) valueobject.Money {
	unit := b.UnitWeightKg
	if !unit.IsPositive() {
		unit = decimal.NewFromFloat(0.5)
	}

	if weightKg.LessThanOrEqual(unit) {
		return valueobject.NewVND(b.BasePrice).Round(0)
	}

	extraUnits := weightKg.Sub(unit).Div(unit).Ceil()
	total := b.BasePrice.Add(extraUnits.Mul(b.ExtraPrice))
	return valueobject.NewVND(total).Round(0)
}
