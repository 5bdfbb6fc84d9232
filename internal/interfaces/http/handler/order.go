package handler

import (
	orderapp "github.com/lastmile/backend/internal/application/order"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderHandler handles order-related API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// QuoteFeeRequest asks for a fee preview without creating an order
// @Description Request body for previewing shipping fees
type QuoteFeeRequest struct {
	ServiceTypeID uuid.UUID       `json:"service_type_id" binding:"required"`
	OriginOffice  uuid.UUID       `json:"origin_office_id" binding:"required"`
	DestOffice    uuid.UUID       `json:"destination_office_id" binding:"required"`
	WeightKg      decimal.Decimal `json:"weight_kg" binding:"required"`
	DeclaredValue decimal.Decimal `json:"declared_value"`
	CODAmount     decimal.Decimal `json:"cod_amount"`
}

// QuoteFeeResponse is the fee preview returned to the client
// @Description Fee breakdown for a prospective order
type QuoteFeeResponse struct {
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	ServiceFee  decimal.Decimal `json:"service_fee"`
	TotalFee    decimal.Decimal `json:"total_fee"`
}

// Create godoc
// @Summary      Create a delivery order
// @Description  Create a new order, compute fees, and apply an optional promotion
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body order.CreateOrderRequest true "Order details"
// @Success      201 {object} dto.Response{data=order.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req orderapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orderService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get order by ID
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := h.orderService.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByTrackingNumber godoc
// @Summary      Get order by tracking number
// @Tags         orders
// @Produce      json
// @Param        tracking_number path string true "Tracking number"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/tracking/{tracking_number} [get]
func (h *OrderHandler) GetByTrackingNumber(c *gin.Context) {
	trackingNumber := c.Param("tracking_number")
	if trackingNumber == "" {
		h.BadRequest(c, "Tracking number is required")
		return
	}

	resp, err := h.orderService.GetByTrackingNumber(c.Request.Context(), trackingNumber)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListMine godoc
// @Summary      List the authenticated customer's orders
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Success      200 {object} dto.Response{data=[]order.OrderResponse}
// @Security     BearerAuth
// @Router       /orders/mine [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter orderapp.ListOrdersFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	orders, err := h.orderService.ListByCustomer(c.Request.Context(), actor.UserID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, orders)
}

// ListByOffice godoc
// @Summary      List orders handled by the actor's office
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Success      200 {object} dto.Response{data=[]order.OrderResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) ListByOffice(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if actor.OfficeID == nil {
		h.Forbidden(c, "An office binding is required")
		return
	}

	var filter orderapp.ListOrdersFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	orders, err := h.orderService.ListByOffice(c.Request.Context(), *actor.OfficeID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, orders)
}

// Transition godoc
// @Summary      Apply a state machine action to an order
// @Description  Run one lifecycle action, subject to the role permission matrix
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body order.TransitionRequest true "Action and optional note"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/transition [post]
func (h *OrderHandler) Transition(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req orderapp.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orderService.Transition(c.Request.Context(), orderID, actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Cancel godoc
// @Summary      Cancel an order
// @Description  Cancel the order, restore stock, and release any promotion hold
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body order.CancelOrderRequest true "Cancellation reason"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req orderapp.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orderService.Cancel(c.Request.Context(), orderID, actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// CorrectWeight godoc
// @Summary      Correct the measured weight of an order
// @Description  Replace the declared weight and recompute fees from the same rate rows
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body order.CorrectWeightRequest true "Measured weight"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/weight [put]
func (h *OrderHandler) CorrectWeight(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req orderapp.CorrectWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orderService.CorrectWeight(c.Request.Context(), orderID, actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateAddress godoc
// @Summary      Update the sender or recipient address
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body order.UpdateAddressRequest true "Field and new address"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/address [put]
func (h *OrderHandler) UpdateAddress(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req orderapp.UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orderService.UpdateAddress(c.Request.Context(), orderID, actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateCODAmount godoc
// @Summary      Update the cash-on-delivery amount
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body order.UpdateCODAmountRequest true "New COD amount"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/cod-amount [put]
func (h *OrderHandler) UpdateCODAmount(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req orderapp.UpdateCODAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orderService.UpdateCODAmount(c.Request.Context(), orderID, actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateNote godoc
// @Summary      Update the order note
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body order.UpdateNoteRequest true "New note"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Security     BearerAuth
// @Router       /orders/{id}/note [put]
func (h *OrderHandler) UpdateNote(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req orderapp.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orderService.UpdateNote(c.Request.Context(), orderID, actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetHistory godoc
// @Summary      Get the audit history of an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]order.OrderHistoryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/history [get]
func (h *OrderHandler) GetHistory(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	history, err := h.orderService.GetHistory(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, history)
}

// QuoteFee godoc
// @Summary      Preview shipping fees
// @Description  Compute the fee breakdown for a prospective order without creating it
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body QuoteFeeRequest true "Quote parameters"
// @Success      200 {object} dto.Response{data=QuoteFeeResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/quote [post]
func (h *OrderHandler) QuoteFee(c *gin.Context) {
	var req QuoteFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	breakdown, err := h.orderService.QuoteFee(
		c.Request.Context(),
		req.ServiceTypeID,
		req.OriginOffice,
		req.DestOffice,
		req.WeightKg,
		req.DeclaredValue,
		req.CODAmount,
	)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, QuoteFeeResponse{
		ShippingFee: breakdown.ShippingFee.Amount(),
		ServiceFee:  breakdown.ServiceFeeTotal.Amount(),
		TotalFee:    breakdown.Total.Amount(),
	})
}
