package models

import (
	"encoding/json"
	"time"

	"github.com/lastmile/backend/internal/domain/promotion"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PromotionModel is the persistence model for the Promotion aggregate root.
// ServiceTypeIDs are stored as a JSON array since they are only ever read
// back as a whole.
type PromotionModel struct {
	AggregateModel
	Code        string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string           `gorm:"type:varchar(200);not null"`
	Description string           `gorm:"type:text"`
	Status      promotion.Status `gorm:"type:varchar(20);not null;index"`
	StartDate   time.Time        `gorm:"type:timestamptz;not null"`
	EndDate     time.Time        `gorm:"type:timestamptz;not null"`

	IsGlobal bool `gorm:"not null;default:false"`

	UsageLimit        *int `gorm:"type:int"`
	UsedCount         int  `gorm:"not null;default:0"`
	PerUserLimit      *int `gorm:"type:int"`
	DailyLimit        *int `gorm:"type:int"`
	DailyPerUserLimit *int `gorm:"type:int"`

	MinOrderValue decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	MinWeightKg   *decimal.Decimal `gorm:"type:decimal(10,3)"`
	MaxWeightKg   *decimal.Decimal `gorm:"type:decimal(10,3)"`

	MinPriorOrders      *int `gorm:"type:int"`
	FirstTimeOnly       bool `gorm:"not null;default:false"`
	MaxAccountAgeMonths *int `gorm:"type:int"`

	ServiceTypeIDs string `gorm:"type:jsonb;default:'[]'"`

	DiscountType      promotion.DiscountType `gorm:"type:varchar(20);not null"`
	DiscountValue     decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	MaxDiscountAmount *decimal.Decimal       `gorm:"type:decimal(18,2)"`
}

// TableName returns the table name for GORM
func (PromotionModel) TableName() string {
	return "promotions"
}

// ToDomain converts the persistence model to a domain Promotion aggregate.
func (m *PromotionModel) ToDomain() (*promotion.Promotion, error) {
	p := &promotion.Promotion{
		Code:                m.Code,
		Name:                m.Name,
		Description:         m.Description,
		Status:              m.Status,
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		IsGlobal:            m.IsGlobal,
		UsageLimit:          m.UsageLimit,
		UsedCount:           m.UsedCount,
		PerUserLimit:        m.PerUserLimit,
		DailyLimit:          m.DailyLimit,
		DailyPerUserLimit:   m.DailyPerUserLimit,
		MinOrderValue:       valueobject.NewVND(m.MinOrderValue),
		MinWeightKg:         m.MinWeightKg,
		MaxWeightKg:         m.MaxWeightKg,
		MinPriorOrders:      m.MinPriorOrders,
		FirstTimeOnly:       m.FirstTimeOnly,
		MaxAccountAgeMonths: m.MaxAccountAgeMonths,
		DiscountType:        m.DiscountType,
		DiscountValue:       m.DiscountValue,
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)

	if m.MaxDiscountAmount != nil {
		maxDiscount := valueobject.NewVND(*m.MaxDiscountAmount)
		p.MaxDiscountAmount = &maxDiscount
	}
	if m.ServiceTypeIDs != "" {
		if err := json.Unmarshal([]byte(m.ServiceTypeIDs), &p.ServiceTypeIDs); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// FromDomain populates the persistence model from a domain Promotion.
func (m *PromotionModel) FromDomain(p *promotion.Promotion) error {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.Description = p.Description
	m.Status = p.Status
	m.StartDate = p.StartDate
	m.EndDate = p.EndDate
	m.IsGlobal = p.IsGlobal
	m.UsageLimit = p.UsageLimit
	m.UsedCount = p.UsedCount
	m.PerUserLimit = p.PerUserLimit
	m.DailyLimit = p.DailyLimit
	m.DailyPerUserLimit = p.DailyPerUserLimit
	m.MinOrderValue = p.MinOrderValue.Amount()
	m.MinWeightKg = p.MinWeightKg
	m.MaxWeightKg = p.MaxWeightKg
	m.MinPriorOrders = p.MinPriorOrders
	m.FirstTimeOnly = p.FirstTimeOnly
	m.MaxAccountAgeMonths = p.MaxAccountAgeMonths
	m.DiscountType = p.DiscountType
	m.DiscountValue = p.DiscountValue

	if p.MaxDiscountAmount != nil {
		maxDiscount := p.MaxDiscountAmount.Amount()
		m.MaxDiscountAmount = &maxDiscount
	} else {
		m.MaxDiscountAmount = nil
	}

	ids := p.ServiceTypeIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	m.ServiceTypeIDs = string(raw)
	return nil
}

// PromotionModelFromDomain creates a new persistence model from a domain
// Promotion.
func PromotionModelFromDomain(p *promotion.Promotion) (*PromotionModel, error) {
	m := &PromotionModel{}
	if err := m.FromDomain(p); err != nil {
		return nil, err
	}
	return m, nil
}

// UserPromotionModel is the persistence model for a per-user promotion link.
type UserPromotionModel struct {
	BaseModel
	PromotionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_promotion_link,priority:1"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_promotion_link,priority:2"`
	UsedCount   int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (UserPromotionModel) TableName() string {
	return "user_promotions"
}

// ToDomain converts the persistence model to a domain UserPromotion.
func (m *UserPromotionModel) ToDomain() *promotion.UserPromotion {
	return &promotion.UserPromotion{
		BaseEntity:  m.BaseModel.ToDomain(),
		PromotionID: m.PromotionID,
		UserID:      m.UserID,
		UsedCount:   m.UsedCount,
	}
}

// FromDomain populates the persistence model from a domain UserPromotion.
func (m *UserPromotionModel) FromDomain(up *promotion.UserPromotion) {
	m.FromDomainBaseEntity(up.BaseEntity)
	m.PromotionID = up.PromotionID
	m.UserID = up.UserID
	m.UsedCount = up.UsedCount
}
