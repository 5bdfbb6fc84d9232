package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	importapp "github.com/lastmile/backend/internal/application/import"
	"github.com/lastmile/backend/internal/domain/bulk"
	"github.com/lastmile/backend/internal/domain/order"
	csvimport "github.com/lastmile/backend/internal/infrastructure/import"
	"github.com/lastmile/backend/internal/interfaces/http/dto"
)

// Maximum accepted upload size (10MB)
const maxImportFileSize = 10 * 1024 * 1024

// ImportHandler handles CSV bulk upload endpoints. Uploads are
// validated and imported in one request; the durable outcome is an
// import history record, dry-run sessions stay in memory.
type ImportHandler struct {
	BaseHandler
	productImports *importapp.ProductImportService
	orderImports   *importapp.OrderImportService
	history        *importapp.ImportHistoryService
	sessionStore   csvimport.SessionStore
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(
	productImports *importapp.ProductImportService,
	orderImports *importapp.OrderImportService,
	history *importapp.ImportHistoryService,
) *ImportHandler {
	return &ImportHandler{
		productImports: productImports,
		orderImports:   orderImports,
		history:        history,
		sessionStore:   csvimport.NewInMemorySessionStore(15 * time.Minute),
	}
}

// ValidationResponse represents the outcome of a dry-run validation
// @Description Response from CSV import validation
type ValidationResponse struct {
	SessionID   uuid.UUID            `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TotalRows   int                  `json:"total_rows" example:"100"`
	ValidRows   int                  `json:"valid_rows" example:"98"`
	ErrorRows   int                  `json:"error_rows" example:"2"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	Preview     []map[string]any     `json:"preview,omitempty"`
	IsTruncated bool                 `json:"is_truncated,omitempty"`
	TotalErrors int                  `json:"total_errors,omitempty"`
}

// ImportProducts godoc
//
//	@Summary		Bulk upload products
//	@Description	Validates and imports a CSV of products into the caller's shop
//	@Tags			imports
//	@ID				importProducts
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file			formData	file	true	"CSV file"
//	@Param			conflict_mode	formData	string	false	"How to handle existing SKUs"	Enums(skip, update, fail)	default(skip)
//	@Success		200	{object}	APIResponse[dto.ProductImportResponse]
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		413	{object}	dto.ErrorResponse
//	@Failure		415	{object}	dto.ErrorResponse
//	@Failure		422	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/imports/products [post]
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	ctx := c.Request.Context()

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	conflictMode := importapp.ConflictMode(c.DefaultPostForm("conflict_mode", string(importapp.ConflictModeSkip)))
	if !conflictMode.IsValid() {
		h.BadRequest(c, "conflict_mode must be one of: skip, update, fail")
		return
	}

	file, header, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	// Existing SKUs only fail validation when the caller asked them to
	opts := []csvimport.ProcessorOption{}
	if conflictMode == importapp.ConflictModeFail {
		opts = append(opts, csvimport.WithUniqueLookup(h.productImports.LookupUnique(ctx, actor.UserID)))
	}
	processor := csvimport.NewImportProcessor(opts...)

	session := csvimport.NewImportSession(actor.UserID, csvimport.EntityProducts, header.Filename, header.Size)

	record, err := h.history.CreateHistory(ctx, bulk.ImportEntityProducts, header.Filename, header.Size, conflictMode.Domain(), actor.UserID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	result, validRows, err := processor.Validate(ctx, session, file, h.productImports.GetValidationRules())
	if err != nil {
		_ = h.history.FailImport(ctx, record.ID, nil)
		h.validationFailed(c, err)
		return
	}
	session.SetValidationResult(result)

	if err := h.history.StartProcessing(ctx, record.ID, result.TotalRows); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if !session.IsValid() {
		session.UpdateState(csvimport.StateFailed)
		_ = h.history.FailImport(ctx, record.ID, result.Errors)
		h.UnprocessableEntity(c, csvimport.ErrCodeImportValidation, "CSV contains validation errors, nothing was imported")
		return
	}
	session.UpdateState(csvimport.StateValidated)

	importResult, err := h.productImports.Import(ctx, actor.UserID, session, validRows, conflictMode)
	if err != nil {
		_ = h.history.FailImport(ctx, record.ID, nil)
		h.HandleDomainError(c, err)
		return
	}

	if err := h.history.CompleteImport(ctx, record.ID,
		importResult.ImportedRows, importResult.ErrorRows, importResult.SkippedRows, importResult.UpdatedRows,
		importResult.Errors); err != nil {
		h.InternalError(c, "Failed to record import outcome")
		return
	}

	h.Success(c, dto.NewProductImportResponse(record.ID, importResult))
}

// ImportOrders godoc
//
//	@Summary		Bulk upload orders
//	@Description	Validates a CSV of orders and creates each row through the regular order pipeline
//	@Tags			imports
//	@ID				importOrders
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"CSV file"
//	@Success		200	{object}	APIResponse[dto.OrderImportResponse]
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		413	{object}	dto.ErrorResponse
//	@Failure		415	{object}	dto.ErrorResponse
//	@Failure		422	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/imports/orders [post]
func (h *ImportHandler) ImportOrders(c *gin.Context) {
	ctx := c.Request.Context()

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if actor.Role != order.RoleCustomer && !actor.Role.IsStaff() {
		h.Forbidden(c, "Only customers and office staff can bulk upload orders")
		return
	}

	file, header, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	processor := csvimport.NewImportProcessor()
	session := csvimport.NewImportSession(actor.UserID, csvimport.EntityOrders, header.Filename, header.Size)

	record, err := h.history.CreateHistory(ctx, bulk.ImportEntityOrders, header.Filename, header.Size, importapp.ConflictModeFail.Domain(), actor.UserID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	result, validRows, err := processor.Validate(ctx, session, file, h.orderImports.GetValidationRules())
	if err != nil {
		_ = h.history.FailImport(ctx, record.ID, nil)
		h.validationFailed(c, err)
		return
	}
	session.SetValidationResult(result)

	if err := h.history.StartProcessing(ctx, record.ID, result.TotalRows); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if !session.IsValid() {
		session.UpdateState(csvimport.StateFailed)
		_ = h.history.FailImport(ctx, record.ID, result.Errors)
		h.UnprocessableEntity(c, csvimport.ErrCodeImportValidation, "CSV contains validation errors, nothing was imported")
		return
	}
	session.UpdateState(csvimport.StateValidated)

	importResult, err := h.orderImports.Import(ctx, actor, session, validRows)
	if err != nil {
		_ = h.history.FailImport(ctx, record.ID, nil)
		h.HandleDomainError(c, err)
		return
	}

	if err := h.history.CompleteImport(ctx, record.ID,
		importResult.ImportedRows, importResult.ErrorRows, 0, 0,
		importResult.Errors); err != nil {
		h.InternalError(c, "Failed to record import outcome")
		return
	}

	h.Success(c, dto.NewOrderImportResponse(record.ID, importResult))
}

// ValidateUpload godoc
//
//	@Summary		Validate a CSV file without importing
//	@Description	Runs validation on an upload and returns per-row errors and a preview
//	@Tags			imports
//	@ID				validateImport
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file	true	"CSV file"
//	@Param			entity_type	formData	string	true	"Entity type"	Enums(orders, products)
//	@Success		200	{object}	APIResponse[ValidationResponse]
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		413	{object}	dto.ErrorResponse
//	@Failure		415	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/imports/validate [post]
func (h *ImportHandler) ValidateUpload(c *gin.Context) {
	ctx := c.Request.Context()

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	entityType := c.PostForm("entity_type")
	if !csvimport.IsValidEntityType(entityType) {
		h.BadRequest(c, "entity_type must be one of: orders, products")
		return
	}

	file, header, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	var rules []csvimport.FieldRule
	opts := []csvimport.ProcessorOption{}
	switch csvimport.EntityType(entityType) {
	case csvimport.EntityProducts:
		rules = h.productImports.GetValidationRules()
		opts = append(opts, csvimport.WithUniqueLookup(h.productImports.LookupUnique(ctx, actor.UserID)))
	case csvimport.EntityOrders:
		rules = h.orderImports.GetValidationRules()
	}
	processor := csvimport.NewImportProcessor(opts...)

	session := csvimport.NewImportSession(actor.UserID, csvimport.EntityType(entityType), header.Filename, header.Size)

	result, _, err := processor.Validate(ctx, session, file, rules)
	if err != nil {
		h.validationFailed(c, err)
		return
	}
	session.SetValidationResult(result)
	if session.IsValid() {
		session.UpdateState(csvimport.StateValidated)
	} else {
		session.UpdateState(csvimport.StateFailed)
	}

	if err := h.sessionStore.Save(session); err != nil {
		h.InternalError(c, "Failed to save import session")
		return
	}

	h.Success(c, ValidationResponse{
		SessionID:   session.ID,
		TotalRows:   result.TotalRows,
		ValidRows:   result.ValidRows,
		ErrorRows:   result.ErrorRows,
		Errors:      result.Errors,
		Preview:     result.Preview,
		IsTruncated: result.IsTruncated,
		TotalErrors: result.TotalErrors,
	})
}

// GetSession godoc
//
//	@Summary		Get a dry-run validation session
//	@Tags			imports
//	@ID				getImportSession
//	@Produce		json
//	@Param			id	path		string	true	"Session ID (UUID)"
//	@Success		200	{object}	APIResponse[csvimport.ImportSession]
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		404	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/imports/sessions/{id} [get]
func (h *ImportHandler) GetSession(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	session, err := h.sessionStore.Get(sessionID)
	if err != nil {
		h.InternalError(c, "Failed to retrieve session")
		return
	}
	if session == nil || session.UserID != actor.UserID {
		h.NotFound(c, "Import session not found or expired")
		return
	}

	h.Success(c, session)
}

func (h *ImportHandler) openUpload(c *gin.Context) (multipart.File, *multipart.FileHeader, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return nil, nil, false
	}

	if header.Size > maxImportFileSize {
		file.Close()
		h.Error(c, http.StatusRequestEntityTooLarge, csvimport.ErrCodeImportFileTooLarge, "file exceeds maximum size of 10MB")
		return nil, nil, false
	}

	contentType := header.Header.Get("Content-Type")
	switch contentType {
	case "", "text/csv", "text/plain", "application/octet-stream", "application/vnd.ms-excel":
	default:
		file.Close()
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeValidation, "file must be a CSV file")
		return nil, nil, false
	}

	return file, header, true
}

func (h *ImportHandler) validationFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, csvimport.ErrEmptyFile):
		h.BadRequest(c, "CSV file is empty")
	case errors.Is(err, csvimport.ErrInvalidEncoding):
		h.BadRequest(c, "CSV file has invalid encoding, must be UTF-8")
	case errors.Is(err, csvimport.ErrMissingHeader):
		h.BadRequest(c, "CSV file is missing header row")
	case errors.Is(err, csvimport.ErrNoDataRows):
		h.BadRequest(c, "CSV file contains no data rows")
	default:
		h.InternalError(c, "Failed to validate file: "+err.Error())
	}
}

// RegisterRoutes registers all import routes
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	imports := rg.Group("/imports")
	{
		imports.POST("/products", h.ImportProducts)
		imports.POST("/orders", h.ImportOrders)
		imports.POST("/validate", h.ValidateUpload)
		imports.GET("/sessions/:id", h.GetSession)
	}
}
