package models

import (
	"time"

	"github.com/lastmile/backend/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceTypeModel is the persistence model for a shipping service type.
type ServiceTypeModel struct {
	BaseModel
	Code        string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name        string `gorm:"type:varchar(200);not null"`
	Description string `gorm:"type:text"`
	Active      bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ServiceTypeModel) TableName() string {
	return "service_types"
}

// ToDomain converts the persistence model to a domain ServiceType.
func (m *ServiceTypeModel) ToDomain() *pricing.ServiceType {
	return &pricing.ServiceType{
		BaseEntity:  m.BaseModel.ToDomain(),
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		Active:      m.Active,
	}
}

// FromDomain populates the persistence model from a domain ServiceType.
func (m *ServiceTypeModel) FromDomain(st *pricing.ServiceType) {
	m.FromDomainBaseEntity(st.BaseEntity)
	m.Code = st.Code
	m.Name = st.Name
	m.Description = st.Description
	m.Active = st.Active
}

// RateBracketModel is the persistence model for one weight bracket rate row.
type RateBracketModel struct {
	BaseModel
	ServiceTypeID uuid.UUID           `gorm:"type:uuid;not null;index:idx_rate_bracket_lookup,priority:1"`
	Region        pricing.RegionClass `gorm:"type:varchar(20);not null;index:idx_rate_bracket_lookup,priority:2"`
	WeightFromKg  decimal.Decimal     `gorm:"type:decimal(10,3);not null"`
	WeightToKg    *decimal.Decimal    `gorm:"type:decimal(10,3)"`
	UnitWeightKg  decimal.Decimal     `gorm:"type:decimal(10,3);not null"`
	BasePrice     decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	ExtraPrice    decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (RateBracketModel) TableName() string {
	return "rate_brackets"
}

// ToDomain converts the persistence model to a domain RateBracket.
func (m *RateBracketModel) ToDomain() *pricing.RateBracket {
	return &pricing.RateBracket{
		BaseEntity:    m.BaseModel.ToDomain(),
		ServiceTypeID: m.ServiceTypeID,
		Region:        m.Region,
		WeightFromKg:  m.WeightFromKg,
		WeightToKg:    m.WeightToKg,
		UnitWeightKg:  m.UnitWeightKg,
		BasePrice:     m.BasePrice,
		ExtraPrice:    m.ExtraPrice,
	}
}

// FromDomain populates the persistence model from a domain RateBracket.
func (m *RateBracketModel) FromDomain(b *pricing.RateBracket) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.ServiceTypeID = b.ServiceTypeID
	m.Region = b.Region
	m.WeightFromKg = b.WeightFromKg
	m.WeightToKg = b.WeightToKg
	m.UnitWeightKg = b.UnitWeightKg
	m.BasePrice = b.BasePrice
	m.ExtraPrice = b.ExtraPrice
}

// FeeConfigModel is the persistence model for an auxiliary fee row.
type FeeConfigModel struct {
	BaseModel
	ServiceTypeID uuid.UUID          `gorm:"type:uuid;not null;index"`
	Kind          pricing.FeeKind    `gorm:"type:varchar(30);not null"`
	ChargeType    pricing.ChargeType `gorm:"type:varchar(20);not null"`
	FlatAmount    decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	Rate          decimal.Decimal    `gorm:"type:decimal(8,4);not null;default:0"`
	MinFee        *decimal.Decimal   `gorm:"type:decimal(18,2)"`
	MaxFee        *decimal.Decimal   `gorm:"type:decimal(18,2)"`
	Active        bool               `gorm:"not null;default:true"`
	EffectiveFrom time.Time          `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (FeeConfigModel) TableName() string {
	return "fee_configs"
}

// ToDomain converts the persistence model to a domain FeeConfig.
func (m *FeeConfigModel) ToDomain() *pricing.FeeConfig {
	return &pricing.FeeConfig{
		BaseEntity:    m.BaseModel.ToDomain(),
		ServiceTypeID: m.ServiceTypeID,
		Kind:          m.Kind,
		ChargeType:    m.ChargeType,
		FlatAmount:    m.FlatAmount,
		Rate:          m.Rate,
		MinFee:        m.MinFee,
		MaxFee:        m.MaxFee,
		Active:        m.Active,
		EffectiveFrom: m.EffectiveFrom,
	}
}

// FromDomain populates the persistence model from a domain FeeConfig.
func (m *FeeConfigModel) FromDomain(c *pricing.FeeConfig) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.ServiceTypeID = c.ServiceTypeID
	m.Kind = c.Kind
	m.ChargeType = c.ChargeType
	m.FlatAmount = c.FlatAmount
	m.Rate = c.Rate
	m.MinFee = c.MinFee
	m.MaxFee = c.MaxFee
	m.Active = c.Active
	m.EffectiveFrom = c.EffectiveFrom
}
