package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
)

// Product is a merchant catalog item that orders draw stock from
type Product struct {
	shared.BaseAggregateRoot
	ShopID    uuid.UUID
	Name      string
	SKU       string
	UnitValue valueobject.Money
	WeightKg  decimal.Decimal
	Stock     int
	Active    bool
}

// NewProduct creates a product for a merchant shop
func NewProduct(shopID uuid.UUID, name, sku string, unitValue valueobject.Money, weightKg decimal.Decimal, stock int) (*Product, error) {
	if shopID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if unitValue.IsNegative() {
		return nil, shared.NewDomainError("INVALID_VALUE", "Unit value cannot be negative")
	}
	if weightKg.IsNegative() {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Weight cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ShopID:            shopID,
		Name:              name,
		SKU:               sku,
		UnitValue:         unitValue,
		WeightKg:          weightKg,
		Stock:             stock,
		Active:            true,
	}, nil
}

// Reserve takes stock for an order
func (p *Product) Reserve(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if p.Stock < quantity {
		return shared.ErrInsufficientStock
	}
	p.Stock -= quantity
	p.UpdatedAt = time.Now()
	return nil
}

// UpdateDetails changes the descriptive fields of a product
func (p *Product) UpdateDetails(name, sku string, unitValue valueobject.Money, weightKg decimal.Decimal) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if unitValue.IsNegative() {
		return shared.NewDomainError("INVALID_VALUE", "Unit value cannot be negative")
	}
	if weightKg.IsNegative() {
		return shared.NewDomainError("INVALID_WEIGHT", "Weight cannot be negative")
	}
	p.Name = name
	p.SKU = sku
	p.UnitValue = unitValue
	p.WeightKg = weightKg
	p.UpdatedAt = time.Now()
	return nil
}

// SetStock replaces the stock level, e.g. after a merchant stock count
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	p.Stock = stock
	p.UpdatedAt = time.Now()
	return nil
}

// Activate makes the product orderable again
func (p *Product) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now()
}

// Deactivate hides the product from new orders. Existing orders keep
// their reserved stock.
func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}

// Restore returns stock when an order is cancelled
func (p *Product) Restore(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	p.Stock += quantity
	p.UpdatedAt = time.Now()
	return nil
}

// ProductRepository persists products
type ProductRepository interface {
	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByShop finds a shop's products
	FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) ([]Product, error)

	// FindBySKU finds a shop's product by SKU
	FindBySKU(ctx context.Context, shopID uuid.UUID, sku string) (*Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, p *Product) error

	// SaveWithLock saves with optimistic locking. Stock mutations go
	// through this to catch concurrent reservations.
	SaveWithLock(ctx context.Context, p *Product) error
}
