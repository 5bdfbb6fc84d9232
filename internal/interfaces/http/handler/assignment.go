package handler

import (
	courierapp "github.com/lastmile/backend/internal/application/courier"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AssignmentHandler handles shipper area assignment API endpoints
type AssignmentHandler struct {
	BaseHandler
	assignmentService *courierapp.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler
func NewAssignmentHandler(assignmentService *courierapp.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
	}
}

// Create godoc
// @Summary      Assign a shipper to a delivery area
// @Description  Give a shipper responsibility for a ward, rejecting overlapping windows
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Param        request body courier.CreateAssignmentRequest true "Assignment details"
// @Success      201 {object} dto.Response{data=courier.AssignmentResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req courierapp.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.assignmentService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// Terminate godoc
// @Summary      Terminate an open-ended assignment
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Param        id path string true "Assignment ID" format(uuid)
// @Param        request body courier.TerminateAssignmentRequest true "Termination time"
// @Success      200 {object} dto.Response{data=courier.AssignmentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /assignments/{id}/terminate [post]
func (h *AssignmentHandler) Terminate(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid assignment ID format")
		return
	}

	var req courierapp.TerminateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.assignmentService.Terminate(c.Request.Context(), assignmentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByID godoc
// @Summary      Get assignment by ID
// @Tags         assignments
// @Produce      json
// @Param        id path string true "Assignment ID" format(uuid)
// @Success      200 {object} dto.Response{data=courier.AssignmentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /assignments/{id} [get]
func (h *AssignmentHandler) GetByID(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid assignment ID format")
		return
	}

	resp, err := h.assignmentService.GetByID(c.Request.Context(), assignmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListByShipper godoc
// @Summary      List the assignments of a shipper
// @Tags         assignments
// @Produce      json
// @Param        shipper_id path string true "Shipper ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]courier.AssignmentResponse}
// @Security     BearerAuth
// @Router       /assignments/shipper/{shipper_id} [get]
func (h *AssignmentHandler) ListByShipper(c *gin.Context) {
	shipperID, err := uuid.Parse(c.Param("shipper_id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipper ID format")
		return
	}

	assignments, err := h.assignmentService.ListByShipper(c.Request.Context(), shipperID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, assignments)
}

// Delete godoc
// @Summary      Delete an assignment
// @Tags         assignments
// @Produce      json
// @Param        id path string true "Assignment ID" format(uuid)
// @Success      204 "No Content"
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid assignment ID format")
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), assignmentID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
