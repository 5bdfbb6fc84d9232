package handler

import (
	promotionapp "github.com/lastmile/backend/internal/application/promotion"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PromotionHandler handles promotion-related API endpoints
type PromotionHandler struct {
	BaseHandler
	promotionService *promotionapp.PromotionService
}

// NewPromotionHandler creates a new PromotionHandler
func NewPromotionHandler(promotionService *promotionapp.PromotionService) *PromotionHandler {
	return &PromotionHandler{
		promotionService: promotionService,
	}
}

// Create godoc
// @Summary      Create a promotion
// @Tags         promotions
// @Accept       json
// @Produce      json
// @Param        request body promotion.CreatePromotionRequest true "Promotion details"
// @Success      201 {object} dto.Response{data=promotion.PromotionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /promotions [post]
func (h *PromotionHandler) Create(c *gin.Context) {
	var req promotionapp.CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.promotionService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// Activate godoc
// @Summary      Activate a promotion
// @Tags         promotions
// @Produce      json
// @Param        id path string true "Promotion ID" format(uuid)
// @Success      200 {object} dto.Response{data=promotion.PromotionResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /promotions/{id}/activate [post]
func (h *PromotionHandler) Activate(c *gin.Context) {
	promotionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid promotion ID format")
		return
	}

	resp, err := h.promotionService.Activate(c.Request.Context(), promotionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Deactivate godoc
// @Summary      Deactivate a promotion
// @Tags         promotions
// @Produce      json
// @Param        id path string true "Promotion ID" format(uuid)
// @Success      200 {object} dto.Response{data=promotion.PromotionResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /promotions/{id}/deactivate [post]
func (h *PromotionHandler) Deactivate(c *gin.Context) {
	promotionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid promotion ID format")
		return
	}

	resp, err := h.promotionService.Deactivate(c.Request.Context(), promotionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Grant godoc
// @Summary      Grant a promotion to a user
// @Description  Link a non-global promotion to one user's account
// @Tags         promotions
// @Accept       json
// @Produce      json
// @Param        id path string true "Promotion ID" format(uuid)
// @Param        request body promotion.GrantPromotionRequest true "User"
// @Success      204 "No Content"
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /promotions/{id}/grants [post]
func (h *PromotionHandler) Grant(c *gin.Context) {
	promotionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid promotion ID format")
		return
	}

	var req promotionapp.GrantPromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.promotionService.Grant(c.Request.Context(), promotionID, req); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// CheckEligibility godoc
// @Summary      Preview promotion eligibility
// @Description  Evaluate whether a user could apply the promotion to a prospective order
// @Tags         promotions
// @Accept       json
// @Produce      json
// @Param        id path string true "Promotion ID" format(uuid)
// @Param        request body promotion.CheckEligibilityRequest true "Order context"
// @Success      200 {object} dto.Response{data=promotion.EligibilityResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /promotions/{id}/eligibility [post]
func (h *PromotionHandler) CheckEligibility(c *gin.Context) {
	promotionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid promotion ID format")
		return
	}

	var req promotionapp.CheckEligibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.promotionService.CheckEligibility(c.Request.Context(), promotionID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByID godoc
// @Summary      Get promotion by ID
// @Tags         promotions
// @Produce      json
// @Param        id path string true "Promotion ID" format(uuid)
// @Success      200 {object} dto.Response{data=promotion.PromotionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /promotions/{id} [get]
func (h *PromotionHandler) GetByID(c *gin.Context) {
	promotionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid promotion ID format")
		return
	}

	resp, err := h.promotionService.GetByID(c.Request.Context(), promotionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByCode godoc
// @Summary      Get promotion by code
// @Tags         promotions
// @Produce      json
// @Param        code path string true "Promotion code"
// @Success      200 {object} dto.Response{data=promotion.PromotionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /promotions/code/{code} [get]
func (h *PromotionHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Promotion code is required")
		return
	}

	resp, err := h.promotionService.GetByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListActive godoc
// @Summary      List active promotions
// @Tags         promotions
// @Produce      json
// @Success      200 {object} dto.Response{data=[]promotion.PromotionResponse}
// @Security     BearerAuth
// @Router       /promotions [get]
func (h *PromotionHandler) ListActive(c *gin.Context) {
	promotions, err := h.promotionService.ListActive(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, promotions)
}
