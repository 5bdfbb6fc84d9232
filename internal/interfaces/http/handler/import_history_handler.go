package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	importapp "github.com/lastmile/backend/internal/application/import"
	"github.com/lastmile/backend/internal/domain/bulk"
	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/interfaces/http/dto"
)

// ImportHistoryHandler serves past bulk upload records. Customers only
// see their own uploads, office staff see everything.
type ImportHistoryHandler struct {
	BaseHandler
	historyService *importapp.ImportHistoryService
}

// NewImportHistoryHandler creates a new ImportHistoryHandler
func NewImportHistoryHandler(historyService *importapp.ImportHistoryService) *ImportHistoryHandler {
	return &ImportHistoryHandler{
		historyService: historyService,
	}
}

// ListHistory godoc
//
//	@Summary		List import history
//	@Description	Returns a paginated list of bulk uploads with optional filtering
//	@Tags			imports
//	@ID				listImportHistory
//	@Produce		json
//	@Param			entity_type		query	string	false	"Filter by entity type (orders, products)"
//	@Param			status			query	string	false	"Filter by status (pending, processing, completed, failed, cancelled)"
//	@Param			started_from	query	string	false	"Filter by start date (from), format: YYYY-MM-DD"
//	@Param			started_to		query	string	false	"Filter by start date (to), format: YYYY-MM-DD"
//	@Param			page			query	int		false	"Page number (default: 1)"
//	@Param			page_size		query	int		false	"Page size (default: 20, max: 100)"
//	@Success		200	{object}	APIResponse[dto.ImportHistoryListResponse]
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		401	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/imports/history [get]
func (h *ImportHistoryHandler) ListHistory(c *gin.Context) {
	ctx := c.Request.Context()

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ImportHistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid request parameters: "+err.Error())
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	filter := importapp.ListHistoryFilter{
		EntityType: req.EntityType,
		Status:     req.Status,
	}
	if !actor.Role.IsStaff() {
		filter.ImportedBy = &actor.UserID
	}
	if req.StartedFrom != "" {
		if t, err := time.Parse("2006-01-02", req.StartedFrom); err == nil {
			filter.StartedFrom = &t
		}
	}
	if req.StartedTo != "" {
		if t, err := time.Parse("2006-01-02", req.StartedTo); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Second)
			filter.StartedTo = &endOfDay
		}
	}

	result, err := h.historyService.ListHistory(ctx, filter, req.Page, req.PageSize)
	if err != nil {
		h.InternalError(c, "Failed to list import history: "+err.Error())
		return
	}

	h.Success(c, dto.NewImportHistoryListResponse(result))
}

// GetHistory godoc
//
//	@Summary		Get import history details
//	@Tags			imports
//	@ID				getImportHistory
//	@Produce		json
//	@Param			id	path		string	true	"Import history ID"
//	@Success		200	{object}	APIResponse[dto.ImportHistoryResponse]
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		404	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/imports/history/{id} [get]
func (h *ImportHistoryHandler) GetHistory(c *gin.Context) {
	history, ok := h.ownedHistory(c)
	if !ok {
		return
	}
	h.Success(c, dto.NewImportHistoryResponse(history))
}

// GetErrors godoc
//
//	@Summary		Download import errors as CSV
//	@Tags			imports
//	@ID				getImportErrors
//	@Produce		text/csv
//	@Param			id	path		string	true	"Import history ID"
//	@Success		200	{string}	string	"CSV content"
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		404	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/imports/history/{id}/errors [get]
func (h *ImportHistoryHandler) GetErrors(c *gin.Context) {
	history, ok := h.ownedHistory(c)
	if !ok {
		return
	}

	csvContent, fileName, err := h.historyService.GetErrorsCSV(c.Request.Context(), history.ID)
	if err != nil {
		if err.Error() == "no errors to export" {
			h.BadRequest(c, "No errors to export for this import")
			return
		}
		h.InternalError(c, "Failed to generate error report: "+err.Error())
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.String(http.StatusOK, csvContent)
}

// DeleteHistory godoc
//
//	@Summary		Delete an import history record
//	@Tags			imports
//	@ID				deleteImportHistory
//	@Produce		json
//	@Param			id	path	string	true	"Import history ID"
//	@Success		204	"Successfully deleted"
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		404	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/imports/history/{id} [delete]
func (h *ImportHistoryHandler) DeleteHistory(c *gin.Context) {
	history, ok := h.ownedHistory(c)
	if !ok {
		return
	}

	if err := h.historyService.DeleteHistory(c.Request.Context(), history.ID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "Import history not found")
			return
		}
		h.InternalError(c, "Failed to delete import history: "+err.Error())
		return
	}

	h.NoContent(c)
}

// ownedHistory loads the record and enforces that customers only reach
// their own uploads.
func (h *ImportHistoryHandler) ownedHistory(c *gin.Context) (*bulk.ImportHistory, bool) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return nil, false
	}

	historyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid history ID")
		return nil, false
	}

	history, err := h.historyService.GetHistory(c.Request.Context(), historyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "Import history not found")
			return nil, false
		}
		h.InternalError(c, "Failed to get import history: "+err.Error())
		return nil, false
	}

	if actor.Role == order.RoleCustomer && history.ImportedBy != actor.UserID {
		h.NotFound(c, "Import history not found")
		return nil, false
	}

	return history, true
}

// RegisterRoutes registers all import history routes
func (h *ImportHistoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	history := rg.Group("/imports/history")
	{
		history.GET("", h.ListHistory)
		history.GET("/:id", h.GetHistory)
		history.GET("/:id/errors", h.GetErrors)
		history.DELETE("/:id", h.DeleteHistory)
	}
}
