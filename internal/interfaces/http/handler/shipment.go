package handler

import (
	shipmentapp "github.com/lastmile/backend/internal/application/shipment"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ShipmentHandler handles shipment-related API endpoints
type ShipmentHandler struct {
	BaseHandler
	shipmentService *shipmentapp.ShipmentService
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(shipmentService *shipmentapp.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{
		shipmentService: shipmentService,
	}
}

// Create godoc
// @Summary      Open a shipment
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        request body shipment.CreateShipmentRequest true "Shipment type and office"
// @Success      201 {object} dto.Response{data=shipment.ShipmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipments [post]
func (h *ShipmentHandler) Create(c *gin.Context) {
	var req shipmentapp.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.shipmentService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// AssignEmployee godoc
// @Summary      Assign an employee to a pending shipment
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        id path string true "Shipment ID" format(uuid)
// @Param        request body shipment.AssignEmployeeRequest true "Employee"
// @Success      200 {object} dto.Response{data=shipment.ShipmentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipments/{id}/employee [put]
func (h *ShipmentHandler) AssignEmployee(c *gin.Context) {
	shipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID format")
		return
	}

	var req shipmentapp.AssignEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.shipmentService.AssignEmployee(c.Request.Context(), shipmentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// AssignVehicle godoc
// @Summary      Assign a vehicle to a pending shipment
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        id path string true "Shipment ID" format(uuid)
// @Param        request body shipment.AssignVehicleRequest true "Vehicle"
// @Success      200 {object} dto.Response{data=shipment.ShipmentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipments/{id}/vehicle [put]
func (h *ShipmentHandler) AssignVehicle(c *gin.Context) {
	shipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID format")
		return
	}

	var req shipmentapp.AssignVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.shipmentService.AssignVehicle(c.Request.Context(), shipmentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// AttachOrders godoc
// @Summary      Attach a batch of orders to a shipment
// @Description  Validate each order against the shipment and report per-order outcomes
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        id path string true "Shipment ID" format(uuid)
// @Param        request body shipment.AttachOrdersRequest true "Order IDs"
// @Success      200 {object} dto.Response{data=shipment.AttachBatchResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipments/{id}/orders [post]
func (h *ShipmentHandler) AttachOrders(c *gin.Context) {
	shipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID format")
		return
	}

	var req shipmentapp.AttachOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.shipmentService.AttachOrders(c.Request.Context(), shipmentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// RemoveOrder godoc
// @Summary      Remove an order from a pending shipment
// @Tags         shipments
// @Produce      json
// @Param        id path string true "Shipment ID" format(uuid)
// @Param        order_id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=shipment.ShipmentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipments/{id}/orders/{order_id} [delete]
func (h *ShipmentHandler) RemoveOrder(c *gin.Context) {
	shipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID format")
		return
	}

	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := h.shipmentService.RemoveOrder(c.Request.Context(), shipmentID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Depart godoc
// @Summary      Mark a shipment as departed
// @Description  Move the shipment to IN_TRANSIT and propagate order transitions
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        id path string true "Shipment ID" format(uuid)
// @Param        request body shipment.TransitionNoteRequest false "Optional note"
// @Success      200 {object} dto.Response{data=shipment.ShipmentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipments/{id}/depart [post]
func (h *ShipmentHandler) Depart(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	shipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID format")
		return
	}

	var req shipmentapp.TransitionNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.shipmentService.Depart(c.Request.Context(), shipmentID, actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Complete godoc
// @Summary      Complete a shipment
// @Description  Close the shipment and propagate arrival transitions to its orders
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        id path string true "Shipment ID" format(uuid)
// @Param        request body shipment.TransitionNoteRequest false "Optional note"
// @Success      200 {object} dto.Response{data=shipment.ShipmentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipments/{id}/complete [post]
func (h *ShipmentHandler) Complete(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	shipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID format")
		return
	}

	var req shipmentapp.TransitionNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.shipmentService.Complete(c.Request.Context(), shipmentID, actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Cancel godoc
// @Summary      Cancel a pending shipment
// @Tags         shipments
// @Produce      json
// @Param        id path string true "Shipment ID" format(uuid)
// @Success      200 {object} dto.Response{data=shipment.ShipmentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipments/{id}/cancel [post]
func (h *ShipmentHandler) Cancel(c *gin.Context) {
	shipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID format")
		return
	}

	resp, err := h.shipmentService.Cancel(c.Request.Context(), shipmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByID godoc
// @Summary      Get shipment by ID
// @Tags         shipments
// @Produce      json
// @Param        id path string true "Shipment ID" format(uuid)
// @Success      200 {object} dto.Response{data=shipment.ShipmentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipments/{id} [get]
func (h *ShipmentHandler) GetByID(c *gin.Context) {
	shipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID format")
		return
	}

	resp, err := h.shipmentService.GetByID(c.Request.Context(), shipmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByCode godoc
// @Summary      Get shipment by code
// @Tags         shipments
// @Produce      json
// @Param        code path string true "Shipment code"
// @Success      200 {object} dto.Response{data=shipment.ShipmentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipments/code/{code} [get]
func (h *ShipmentHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Shipment code is required")
		return
	}

	resp, err := h.shipmentService.GetByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListByOffice godoc
// @Summary      List shipments of the actor's office
// @Tags         shipments
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Success      200 {object} dto.Response{data=[]shipment.ShipmentResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shipments [get]
func (h *ShipmentHandler) ListByOffice(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if actor.OfficeID == nil {
		h.Forbidden(c, "An office binding is required")
		return
	}

	var filter shipmentapp.ListShipmentsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	shipments, err := h.shipmentService.ListByOffice(c.Request.Context(), *actor.OfficeID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shipments)
}

// ListMine godoc
// @Summary      List shipments assigned to the authenticated employee
// @Tags         shipments
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Success      200 {object} dto.Response{data=[]shipment.ShipmentResponse}
// @Security     BearerAuth
// @Router       /shipments/mine [get]
func (h *ShipmentHandler) ListMine(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter shipmentapp.ListShipmentsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	shipments, err := h.shipmentService.ListByEmployee(c.Request.Context(), actor.UserID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shipments)
}
