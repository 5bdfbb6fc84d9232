package handler

import (
	"net/http"

	settlementapp "github.com/lastmile/backend/internal/application/settlement"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MerchantSettlementHandler handles merchant settlement batches and the
// payment gateway callback. The callback endpoints are called by VNPay and
// do not require authentication.
type MerchantSettlementHandler struct {
	BaseHandler
	merchantService *settlementapp.MerchantService
}

// NewMerchantSettlementHandler creates a new MerchantSettlementHandler
func NewMerchantSettlementHandler(merchantService *settlementapp.MerchantService) *MerchantSettlementHandler {
	return &MerchantSettlementHandler{
		merchantService: merchantService,
	}
}

// CreateBatch godoc
// @Summary      Open a merchant settlement batch
// @Description  Build a settlement batch for a shop over a delivery period
// @Tags         merchant-settlements
// @Accept       json
// @Produce      json
// @Param        request body settlement.CreateMerchantBatchRequest true "Shop and period"
// @Success      201 {object} dto.Response{data=settlement.MerchantBatchResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlements [post]
func (h *MerchantSettlementHandler) CreateBatch(c *gin.Context) {
	var req settlementapp.CreateMerchantBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.merchantService.CreateBatch(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// CreatePayment godoc
// @Summary      Open an online payment attempt against a batch
// @Description  Create a gateway transaction and return the redirect URL
// @Tags         merchant-settlements
// @Accept       json
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Param        request body settlement.CreatePaymentRequest true "Payment amount"
// @Success      201 {object} dto.Response{data=settlement.PaymentAttemptResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlements/{id}/payments [post]
func (h *MerchantSettlementHandler) CreatePayment(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	var req settlementapp.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.ClientIP = c.ClientIP()

	resp, err := h.merchantService.CreatePayment(c.Request.Context(), batchID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetBatch godoc
// @Summary      Get merchant settlement batch by ID
// @Tags         merchant-settlements
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Success      200 {object} dto.Response{data=settlement.MerchantBatchResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlements/{id} [get]
func (h *MerchantSettlementHandler) GetBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	resp, err := h.merchantService.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListByShop godoc
// @Summary      List a shop's settlement batches
// @Tags         merchant-settlements
// @Produce      json
// @Param        shop_id path string true "Shop ID" format(uuid)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]settlement.MerchantBatchResponse}
// @Security     BearerAuth
// @Router       /settlements/shop/{shop_id} [get]
func (h *MerchantSettlementHandler) ListByShop(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("shop_id"))
	if err != nil {
		h.BadRequest(c, "Invalid shop ID format")
		return
	}

	var filter settlementapp.ListBatchesFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	batches, err := h.merchantService.ListByShop(c.Request.Context(), shopID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batches)
}

// HandleIPN godoc
// @Summary      Handle the VNPay instant payment notification
// @Description  Verify the gateway signature and apply the transaction result
// @Tags         payment-callbacks
// @Produce      json
// @Success      200 {object} map[string]string "RspCode=00"
// @Router       /payment/callback/vnpay/ipn [get]
func (h *MerchantSettlementHandler) HandleIPN(c *gin.Context) {
	result, err := h.merchantService.HandleCallback(c.Request.Context(), callbackParams(c))
	if err != nil {
		// The gateway retries on anything but RspCode 00/02, so signature
		// and lookup failures report a stable failure code.
		c.JSON(http.StatusOK, gin.H{"RspCode": "97", "Message": "Invalid callback"})
		return
	}
	if result.Duplicate {
		c.JSON(http.StatusOK, gin.H{"RspCode": "02", "Message": "Order already confirmed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"RspCode": "00", "Message": "Confirm Success"})
}

// HandleReturn godoc
// @Summary      Handle the VNPay browser return
// @Description  Verify the redirect parameters and report the payment outcome
// @Tags         payment-callbacks
// @Produce      json
// @Success      200 {object} dto.Response{data=settlement.CallbackResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payment/callback/vnpay/return [get]
func (h *MerchantSettlementHandler) HandleReturn(c *gin.Context) {
	result, err := h.merchantService.HandleCallback(c.Request.Context(), callbackParams(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// callbackParams flattens the gateway query string into a parameter map
func callbackParams(c *gin.Context) map[string]string {
	params := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}
