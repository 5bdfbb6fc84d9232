package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	catalogapp "github.com/lastmile/backend/internal/application/catalog"
	"github.com/lastmile/backend/internal/domain/catalog"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, shopID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, shopID uuid.UUID, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, shopID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) SaveWithLock(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func setupProductRouter(repo *MockProductRepository, userID uuid.UUID, role string) *gin.Engine {
	service := catalogapp.NewProductService(repo, zap.NewNop())
	h := NewProductHandler(service)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		setJWTContext(c, userID, role)
		c.Next()
	})
	router.POST("/products", h.Create)
	router.GET("/products", h.List)
	router.GET("/products/:id", h.GetByID)
	router.PUT("/products/:id", h.Update)
	router.PUT("/products/:id/stock", h.SetStock)
	router.POST("/products/:id/deactivate", h.Deactivate)
	return router
}

func newShopProduct(t *testing.T, shopID uuid.UUID) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(shopID, "Ceramic mug", "MUG-01",
		valueobject.NewVNDFromInt(120000), decimal.NewFromFloat(0.4), 10)
	require.NoError(t, err)
	return product
}

func TestProductHandler_Create_Success(t *testing.T) {
	shopID := uuid.New()
	repo := new(MockProductRepository)
	router := setupProductRouter(repo, shopID, "CUSTOMER")

	repo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

	body, _ := json.Marshal(CreateProductRequest{
		Name:      "Ceramic mug",
		SKU:       "MUG-01",
		UnitValue: decimal.NewFromInt(120000),
		WeightKg:  decimal.NewFromFloat(0.4),
		Stock:     10,
	})
	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool            `json:"success"`
		Data    ProductResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, shopID, resp.Data.ShopID)
	assert.Equal(t, 10, resp.Data.Stock)
}

func TestProductHandler_Create_InvalidBody(t *testing.T) {
	repo := new(MockProductRepository)
	router := setupProductRouter(repo, uuid.New(), "CUSTOMER")

	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewReader([]byte(`{"stock":-1}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "Save")
}

func TestProductHandler_List_ScopedToOwnShop(t *testing.T) {
	shopID := uuid.New()
	repo := new(MockProductRepository)
	router := setupProductRouter(repo, shopID, "CUSTOMER")
	product := newShopProduct(t, shopID)

	repo.On("FindByShop", mock.Anything, shopID, mock.Anything).Return([]catalog.Product{*product}, nil)

	req := httptest.NewRequest(http.MethodGet, "/products?page=1&page_size=20", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestProductHandler_Update_OtherShopForbidden(t *testing.T) {
	repo := new(MockProductRepository)
	router := setupProductRouter(repo, uuid.New(), "CUSTOMER")
	product := newShopProduct(t, uuid.New())

	repo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	body, _ := json.Marshal(UpdateProductRequest{
		Name:      "Renamed",
		UnitValue: decimal.NewFromInt(100000),
		WeightKg:  decimal.NewFromFloat(0.4),
	})
	req := httptest.NewRequest(http.MethodPut, "/products/"+product.ID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	repo.AssertNotCalled(t, "Save")
}

func TestProductHandler_Update_ManagerBypassesOwnership(t *testing.T) {
	repo := new(MockProductRepository)
	router := setupProductRouter(repo, uuid.New(), "MANAGER")
	product := newShopProduct(t, uuid.New())

	repo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	repo.On("Save", mock.Anything, product).Return(nil)

	body, _ := json.Marshal(UpdateProductRequest{
		Name:      "Renamed",
		UnitValue: decimal.NewFromInt(100000),
		WeightKg:  decimal.NewFromFloat(0.4),
	})
	req := httptest.NewRequest(http.MethodPut, "/products/"+product.ID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestProductHandler_SetStock_Success(t *testing.T) {
	shopID := uuid.New()
	repo := new(MockProductRepository)
	router := setupProductRouter(repo, shopID, "CUSTOMER")
	product := newShopProduct(t, shopID)

	repo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	repo.On("SaveWithLock", mock.Anything, product).Return(nil)

	body, _ := json.Marshal(SetProductStockRequest{Stock: 25})
	req := httptest.NewRequest(http.MethodPut, "/products/"+product.ID.String()+"/stock", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ProductResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 25, resp.Data.Stock)
}

func TestProductHandler_GetByID_NotFound(t *testing.T) {
	shopID := uuid.New()
	repo := new(MockProductRepository)
	router := setupProductRouter(repo, shopID, "CUSTOMER")
	id := uuid.New()

	repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/products/"+id.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductHandler_Deactivate_Success(t *testing.T) {
	shopID := uuid.New()
	repo := new(MockProductRepository)
	router := setupProductRouter(repo, shopID, "CUSTOMER")
	product := newShopProduct(t, shopID)

	repo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	repo.On("Save", mock.Anything, product).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/products/"+product.ID.String()+"/deactivate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ProductResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Active)
}
