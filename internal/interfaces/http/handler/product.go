package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/lastmile/backend/internal/application/catalog"
	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shared"
)

// ProductHandler handles merchant catalog API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// Create godoc
// @Summary      Add a product to the merchant's catalog
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body CreateProductRequest true "Product details"
// @Success      201 {object} dto.Response{data=ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	info, err := h.productService.Create(c.Request.Context(), catalogapp.CreateProductInput{
		ShopID:    actor.UserID,
		Name:      req.Name,
		SKU:       req.SKU,
		UnitValue: req.UnitValue,
		WeightKg:  req.WeightKg,
		Stock:     req.Stock,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toProductResponse(*info))
}

// List godoc
// @Summary      List the merchant's catalog
// @Tags         products
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]ProductResponse}
// @Security     BearerAuth
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var query ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	infos, err := h.productService.ListByShop(c.Request.Context(), catalogapp.ListProductsInput{
		ShopID: actor.UserID,
		Filter: shared.Filter{Page: query.Page, PageSize: query.PageSize},
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]ProductResponse, 0, len(infos))
	for _, info := range infos {
		responses = append(responses, toProductResponse(info))
	}
	h.Success(c, responses)
}

// GetByID godoc
// @Summary      Get a product by ID
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	info, ok := h.ownedProduct(c)
	if !ok {
		return
	}
	h.Success(c, toProductResponse(*info))
}

// Update godoc
// @Summary      Update product details
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body UpdateProductRequest true "Updated details"
// @Success      200 {object} dto.Response{data=ProductResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	existing, ok := h.ownedProduct(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	info, err := h.productService.Update(c.Request.Context(), catalogapp.UpdateProductInput{
		ProductID: existing.ID,
		Name:      req.Name,
		SKU:       req.SKU,
		UnitValue: req.UnitValue,
		WeightKg:  req.WeightKg,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toProductResponse(*info))
}

// SetStock godoc
// @Summary      Replace a product's stock level
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body SetProductStockRequest true "New stock level"
// @Success      200 {object} dto.Response{data=ProductResponse}
// @Security     BearerAuth
// @Router       /products/{id}/stock [put]
func (h *ProductHandler) SetStock(c *gin.Context) {
	existing, ok := h.ownedProduct(c)
	if !ok {
		return
	}

	var req SetProductStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	info, err := h.productService.SetStock(c.Request.Context(), catalogapp.SetStockInput{
		ProductID: existing.ID,
		Stock:     req.Stock,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toProductResponse(*info))
}

// Activate godoc
// @Summary      Make a product orderable again
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=ProductResponse}
// @Security     BearerAuth
// @Router       /products/{id}/activate [post]
func (h *ProductHandler) Activate(c *gin.Context) {
	existing, ok := h.ownedProduct(c)
	if !ok {
		return
	}
	info, err := h.productService.Activate(c.Request.Context(), existing.ID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toProductResponse(*info))
}

// Deactivate godoc
// @Summary      Hide a product from new orders
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=ProductResponse}
// @Security     BearerAuth
// @Router       /products/{id}/deactivate [post]
func (h *ProductHandler) Deactivate(c *gin.Context) {
	existing, ok := h.ownedProduct(c)
	if !ok {
		return
	}
	info, err := h.productService.Deactivate(c.Request.Context(), existing.ID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toProductResponse(*info))
}

// ownedProduct loads the product from the path ID and enforces that a
// merchant only touches their own catalog. Back-office roles pass.
func (h *ProductHandler) ownedProduct(c *gin.Context) (*catalogapp.ProductInfo, bool) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return nil, false
	}

	info, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return nil, false
	}

	if actor.Role == order.RoleCustomer && info.ShopID != actor.UserID {
		h.Forbidden(c, "Product belongs to another shop")
		return nil, false
	}
	return info, true
}
