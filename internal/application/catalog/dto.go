package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastmile/backend/internal/domain/catalog"
	"github.com/lastmile/backend/internal/domain/shared"
)

// CreateProductInput carries the fields for a new catalog item
type CreateProductInput struct {
	ShopID    uuid.UUID
	Name      string
	SKU       string
	UnitValue decimal.Decimal
	WeightKg  decimal.Decimal
	Stock     int
}

// UpdateProductInput replaces the descriptive fields of a product
type UpdateProductInput struct {
	ProductID uuid.UUID
	Name      string
	SKU       string
	UnitValue decimal.Decimal
	WeightKg  decimal.Decimal
}

// SetStockInput replaces the stock level of a product
type SetStockInput struct {
	ProductID uuid.UUID
	Stock     int
}

// ListProductsInput queries a shop's catalog
type ListProductsInput struct {
	ShopID uuid.UUID
	Filter shared.Filter
}

// ProductInfo is the application-layer view of a product
type ProductInfo struct {
	ID        uuid.UUID
	ShopID    uuid.UUID
	Name      string
	SKU       string
	UnitValue decimal.Decimal
	WeightKg  decimal.Decimal
	Stock     int
	Active    bool
}

func toProductInfo(p *catalog.Product) ProductInfo {
	return ProductInfo{
		ID:        p.ID,
		ShopID:    p.ShopID,
		Name:      p.Name,
		SKU:       p.SKU,
		UnitValue: p.UnitValue.Amount(),
		WeightKg:  p.WeightKg,
		Stock:     p.Stock,
		Active:    p.Active,
	}
}

func toProductInfos(products []catalog.Product) []ProductInfo {
	infos := make([]ProductInfo, 0, len(products))
	for i := range products {
		infos = append(infos, toProductInfo(&products[i]))
	}
	return infos
}
