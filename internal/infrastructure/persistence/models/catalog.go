package models

import (
	"github.com/lastmile/backend/internal/domain/catalog"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for a merchant shop product.
type ProductModel struct {
	AggregateModel
	ShopID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"type:varchar(200);not null"`
	SKU       string          `gorm:"type:varchar(100);index;column:sku"`
	UnitValue decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	WeightKg  decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	Stock     int             `gorm:"not null;default:0"`
	Active    bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product aggregate.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		ShopID:    m.ShopID,
		Name:      m.Name,
		SKU:       m.SKU,
		UnitValue: valueobject.NewVND(m.UnitValue),
		WeightKg:  m.WeightKg,
		Stock:     m.Stock,
		Active:    m.Active,
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Product.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.ShopID = p.ShopID
	m.Name = p.Name
	m.SKU = p.SKU
	m.UnitValue = p.UnitValue.Amount()
	m.WeightKg = p.WeightKg
	m.Stock = p.Stock
	m.Active = p.Active
}

// ProductModelFromDomain creates a new persistence model from a domain
// Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
