package handler

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogapp "github.com/lastmile/backend/internal/application/catalog"
)

// CreateProductRequest represents a request to add a catalog item
// @Description Request body for creating a product
type CreateProductRequest struct {
	Name      string          `json:"name" binding:"required,min=1,max=200" example:"Ceramic mug"`
	SKU       string          `json:"sku" binding:"max=100" example:"MUG-01"`
	UnitValue decimal.Decimal `json:"unit_value" example:"120000"`
	WeightKg  decimal.Decimal `json:"weight_kg" example:"0.4"`
	Stock     int             `json:"stock" binding:"min=0" example:"10"`
}

// UpdateProductRequest replaces the descriptive fields of a product
// @Description Request body for updating a product
type UpdateProductRequest struct {
	Name      string          `json:"name" binding:"required,min=1,max=200" example:"Large ceramic mug"`
	SKU       string          `json:"sku" binding:"max=100" example:"MUG-02"`
	UnitValue decimal.Decimal `json:"unit_value" example:"150000"`
	WeightKg  decimal.Decimal `json:"weight_kg" example:"0.6"`
}

// SetProductStockRequest replaces the stock level of a product
// @Description Request body for a merchant stock count
type SetProductStockRequest struct {
	Stock int `json:"stock" binding:"min=0" example:"25"`
}

// ListProductsQuery filters a shop's catalog listing
type ListProductsQuery struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"page_size,default=20" binding:"min=1,max=100"`
}

// ProductResponse represents a catalog item in API responses
// @Description Product details returned by the API
type ProductResponse struct {
	ID        uuid.UUID       `json:"id"`
	ShopID    uuid.UUID       `json:"shop_id"`
	Name      string          `json:"name" example:"Ceramic mug"`
	SKU       string          `json:"sku,omitempty" example:"MUG-01"`
	UnitValue decimal.Decimal `json:"unit_value" example:"120000"`
	WeightKg  decimal.Decimal `json:"weight_kg" example:"0.4"`
	Stock     int             `json:"stock" example:"10"`
	Active    bool            `json:"active" example:"true"`
}

func toProductResponse(info catalogapp.ProductInfo) ProductResponse {
	return ProductResponse{
		ID:        info.ID,
		ShopID:    info.ShopID,
		Name:      info.Name,
		SKU:       info.SKU,
		UnitValue: info.UnitValue,
		WeightKg:  info.WeightKg,
		Stock:     info.Stock,
		Active:    info.Active,
	}
}
