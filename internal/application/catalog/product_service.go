package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lastmile/backend/internal/domain/catalog"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
)

// ProductService manages a merchant shop's catalog. Stock reservation
// for orders happens inside the order transaction, not here.
type ProductService struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a product service
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// Create adds a product to a shop's catalog
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*ProductInfo, error) {
	product, err := catalog.NewProduct(
		input.ShopID,
		input.Name,
		input.SKU,
		valueobject.NewVND(input.UnitValue),
		input.WeightKg,
		input.Stock,
	)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		s.logger.Error("failed to save product", zap.Error(err))
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("shop_id", product.ShopID.String()))

	info := toProductInfo(product)
	return &info, nil
}

// GetByID returns a single product
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductInfo, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	info := toProductInfo(product)
	return &info, nil
}

// ListByShop returns a shop's catalog page
func (s *ProductService) ListByShop(ctx context.Context, input ListProductsInput) ([]ProductInfo, error) {
	if input.ShopID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop ID cannot be empty")
	}
	products, err := s.productRepo.FindByShop(ctx, input.ShopID, input.Filter)
	if err != nil {
		return nil, err
	}
	return toProductInfos(products), nil
}

// Update replaces the descriptive fields of a product
func (s *ProductService) Update(ctx context.Context, input UpdateProductInput) (*ProductInfo, error) {
	return s.mutate(ctx, input.ProductID, func(p *catalog.Product) error {
		return p.UpdateDetails(input.Name, input.SKU, valueobject.NewVND(input.UnitValue), input.WeightKg)
	})
}

// SetStock replaces the stock level after a merchant stock count.
// Uses optimistic locking so a concurrent order reservation fails
// cleanly instead of being silently overwritten.
func (s *ProductService) SetStock(ctx context.Context, input SetStockInput) (*ProductInfo, error) {
	product, err := s.findProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if err := product.SetStock(input.Stock); err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}
	info := toProductInfo(product)
	return &info, nil
}

// Activate makes a product orderable again
func (s *ProductService) Activate(ctx context.Context, id uuid.UUID) (*ProductInfo, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		p.Activate()
		return nil
	})
}

// Deactivate hides a product from new orders
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) (*ProductInfo, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		p.Deactivate()
		return nil
	})
}

func (s *ProductService) mutate(ctx context.Context, id uuid.UUID, fn func(p *catalog.Product) error) (*ProductInfo, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	info := toProductInfo(product)
	return &info, nil
}

func (s *ProductService) findProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}
	return product, nil
}
