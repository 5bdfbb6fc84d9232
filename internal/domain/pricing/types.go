package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
)

// RegionClass classifies an origin/destination city pair for rate lookup
type RegionClass string

const (
	RegionIntraCity   RegionClass = "INTRA_CITY"
	RegionIntraRegion RegionClass = "INTRA_REGION"
	RegionInterRegion RegionClass = "INTER_REGION"
)

// IsValid checks if the region class is valid
func (r RegionClass) IsValid() bool {
	switch r {
	case RegionIntraCity, RegionIntraRegion, RegionInterRegion:
		return true
	}
	return false
}

// ServiceType is a shipping service offering (express, standard, economy)
type ServiceType struct {
	shared.BaseEntity
	Code        string
	Name        string
	Description string
	Active      bool
}

// NewServiceType creates a service type
func NewServiceType(code, name, description string) (*ServiceType, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Service type code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Service type name cannot be empty")
	}
	return &ServiceType{
		BaseEntity:  shared.NewBaseEntity(),
		Code:        code,
		Name:        name,
		Description: description,
		Active:      true,
	}, nil
}

// RateBracket prices one weight bracket of a service type within a region
// class. WeightToKg nil means the bracket is open-ended. BasePrice covers the
// first UnitWeightKg; each additional started unit adds ExtraPrice.
type RateBracket struct {
	shared.BaseEntity
	ServiceTypeID uuid.UUID
	Region        RegionClass
	WeightFromKg  decimal.Decimal
	WeightToKg    *decimal.Decimal
	UnitWeightKg  decimal.Decimal
	BasePrice     decimal.Decimal
	ExtraPrice    decimal.Decimal
}

// Covers reports whether the bracket applies to the given weight. Brackets
// span (WeightFromKg, WeightToKg]; a zero lower bound is inclusive of any
// positive weight.
func (b *RateBracket) Covers(weightKg decimal.Decimal) bool {
	if weightKg.LessThanOrEqual(decimal.Zero) {
		return false
	}
	if b.WeightFromKg.IsPositive() && weightKg.LessThanOrEqual(b.WeightFromKg) {
		return false
	}
	if b.WeightToKg == nil {
		return true
	}
	return weightKg.LessThanOrEqual(*b.WeightToKg)
}

// ChargeType determines how a fee config computes its amount
type ChargeType string

const (
	ChargeFlat       ChargeType = "FLAT"
	ChargePercentage ChargeType = "PERCENTAGE"
)

// FeeKind names a configured auxiliary fee
type FeeKind string

const (
	FeeCODHandling FeeKind = "COD_HANDLING"
	FeeInsurance   FeeKind = "INSURANCE"
)

// FeeConfig is one configured auxiliary fee row. Percentage fees apply the
// rate to the order value; both kinds are clamped to [MinFee, MaxFee] when
// the bounds are set.
type FeeConfig struct {
	shared.BaseEntity
	ServiceTypeID uuid.UUID
	Kind          FeeKind
	ChargeType    ChargeType
	// FlatAmount for FLAT, Rate as percent (e.g. 0.5 means 0.5%) for PERCENTAGE
	FlatAmount decimal.Decimal
	Rate       decimal.Decimal
	MinFee     *decimal.Decimal
	MaxFee     *decimal.Decimal
	Active     bool
	EffectiveFrom time.Time
}

// Compute returns the fee amount for the given order value, clamped to the
// configured bounds
func (c *FeeConfig) Compute(orderValue valueobject.Money) valueobject.Money {
	var amount valueobject.Money
	switch c.ChargeType {
	case ChargePercentage:
		amount = orderValue.CalculatePercentage(c.Rate)
	default:
		amount = valueobject.NewVND(c.FlatAmount)
	}

	var min, max *valueobject.Money
	if c.MinFee != nil {
		m := valueobject.NewVND(*c.MinFee)
		min = &m
	}
	if c.MaxFee != nil {
		m := valueobject.NewVND(*c.MaxFee)
		max = &m
	}

	return amount.Clamp(min, max)
}
