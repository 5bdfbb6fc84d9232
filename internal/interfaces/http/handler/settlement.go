package handler

import (
	settlementapp "github.com/lastmile/backend/internal/application/settlement"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SettlementHandler handles shipper payment submissions and settlement batches
type SettlementHandler struct {
	BaseHandler
	batchService *settlementapp.BatchService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(batchService *settlementapp.BatchService) *SettlementHandler {
	return &SettlementHandler{
		batchService: batchService,
	}
}

// CreateSubmission godoc
// @Summary      Record a COD payment submission
// @Description  Record the cash a shipper hands over for one delivered order
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        request body settlement.CreateSubmissionRequest true "Submission details"
// @Success      201 {object} dto.Response{data=settlement.SubmissionResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /submissions [post]
func (h *SettlementHandler) CreateSubmission(c *gin.Context) {
	var req settlementapp.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.batchService.CreateSubmission(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// DeclareActual godoc
// @Summary      Correct the declared cash on a pending submission
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        id path string true "Submission ID" format(uuid)
// @Param        request body settlement.DeclareActualRequest true "Declared amount"
// @Success      200 {object} dto.Response{data=settlement.SubmissionResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /submissions/{id}/actual [put]
func (h *SettlementHandler) DeclareActual(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid submission ID format")
		return
	}

	var req settlementapp.DeclareActualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.batchService.DeclareActual(c.Request.Context(), submissionID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListMySubmissions godoc
// @Summary      List the authenticated shipper's pending submissions
// @Tags         settlements
// @Produce      json
// @Success      200 {object} dto.Response{data=[]settlement.SubmissionResponse}
// @Security     BearerAuth
// @Router       /submissions/mine [get]
func (h *SettlementHandler) ListMySubmissions(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	submissions, err := h.batchService.ListPendingSubmissions(c.Request.Context(), actor.UserID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, submissions)
}

// ListShipperSubmissions godoc
// @Summary      List a shipper's pending submissions
// @Tags         settlements
// @Produce      json
// @Param        shipper_id path string true "Shipper ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]settlement.SubmissionResponse}
// @Security     BearerAuth
// @Router       /submissions/shipper/{shipper_id} [get]
func (h *SettlementHandler) ListShipperSubmissions(c *gin.Context) {
	shipperID, err := uuid.Parse(c.Param("shipper_id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipper ID format")
		return
	}

	submissions, err := h.batchService.ListPendingSubmissions(c.Request.Context(), shipperID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, submissions)
}

// AdjustSubmission godoc
// @Summary      Resolve one submission with a corrected amount
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        id path string true "Submission ID" format(uuid)
// @Param        request body settlement.AdjustSubmissionRequest true "Corrected amount and note"
// @Success      200 {object} dto.Response{data=settlement.SubmissionResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /submissions/{id}/adjust [post]
func (h *SettlementHandler) AdjustSubmission(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid submission ID format")
		return
	}

	var req settlementapp.AdjustSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.batchService.AdjustSubmission(c.Request.Context(), submissionID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// CreateBatch godoc
// @Summary      Group pending submissions into a settlement batch
// @Description  Claim the listed submissions for one shipper under a new batch
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        request body settlement.CreateBatchRequest true "Shipper and submissions"
// @Success      201 {object} dto.Response{data=settlement.BatchResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /submission-batches [post]
func (h *SettlementHandler) CreateBatch(c *gin.Context) {
	var req settlementapp.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.batchService.CreateBatch(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, resp)
}

// StartChecking godoc
// @Summary      Start checking a settlement batch
// @Tags         settlements
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Success      200 {object} dto.Response{data=settlement.BatchResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /submission-batches/{id}/check [post]
func (h *SettlementHandler) StartChecking(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	resp, err := h.batchService.StartChecking(c.Request.Context(), batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ResolveBatch godoc
// @Summary      Resolve a settlement batch
// @Description  Close the batch as COMPLETED, PARTIAL, or CANCELLED, propagating per-order effects
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Param        request body settlement.ResolveBatchRequest true "Requested outcome"
// @Success      200 {object} dto.Response{data=settlement.BatchResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /submission-batches/{id}/resolve [post]
func (h *SettlementHandler) ResolveBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	var req settlementapp.ResolveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.batchService.ResolveBatch(c.Request.Context(), batchID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetBatch godoc
// @Summary      Get settlement batch by ID
// @Tags         settlements
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Success      200 {object} dto.Response{data=settlement.BatchResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /submission-batches/{id} [get]
func (h *SettlementHandler) GetBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	resp, err := h.batchService.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListBatchSubmissions godoc
// @Summary      List the submissions claimed by a batch
// @Tags         settlements
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]settlement.SubmissionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /submission-batches/{id}/submissions [get]
func (h *SettlementHandler) ListBatchSubmissions(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID format")
		return
	}

	submissions, err := h.batchService.ListBatchSubmissions(c.Request.Context(), batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, submissions)
}

// ListShipperBatches godoc
// @Summary      List a shipper's settlement batches
// @Tags         settlements
// @Produce      json
// @Param        shipper_id path string true "Shipper ID" format(uuid)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]settlement.BatchResponse}
// @Security     BearerAuth
// @Router       /submission-batches/shipper/{shipper_id} [get]
func (h *SettlementHandler) ListShipperBatches(c *gin.Context) {
	shipperID, err := uuid.Parse(c.Param("shipper_id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipper ID format")
		return
	}

	var filter settlementapp.ListBatchesFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	batches, err := h.batchService.ListBatchesByShipper(c.Request.Context(), shipperID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, batches)
}
