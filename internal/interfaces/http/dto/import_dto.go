package dto

import (
	"time"

	"github.com/google/uuid"

	importapp "github.com/lastmile/backend/internal/application/import"
	"github.com/lastmile/backend/internal/domain/bulk"
	csvimport "github.com/lastmile/backend/internal/infrastructure/import"
)

// ProductImportResponse represents the response from a product bulk upload
// @Description Response from product bulk import operation
type ProductImportResponse struct {
	HistoryID    uuid.UUID            `json:"history_id"`
	TotalRows    int                  `json:"total_rows" example:"100"`
	ImportedRows int                  `json:"imported_rows" example:"95"`
	UpdatedRows  int                  `json:"updated_rows" example:"3"`
	SkippedRows  int                  `json:"skipped_rows" example:"2"`
	ErrorRows    int                  `json:"error_rows" example:"0"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty" example:"false"`
	TotalErrors  int                  `json:"total_errors,omitempty" example:"0"`
}

// NewProductImportResponse builds the response from an import result
func NewProductImportResponse(historyID uuid.UUID, result *importapp.ProductImportResult) ProductImportResponse {
	return ProductImportResponse{
		HistoryID:    historyID,
		TotalRows:    result.TotalRows,
		ImportedRows: result.ImportedRows,
		UpdatedRows:  result.UpdatedRows,
		SkippedRows:  result.SkippedRows,
		ErrorRows:    result.ErrorRows,
		Errors:       result.Errors,
		IsTruncated:  result.IsTruncated,
		TotalErrors:  result.TotalErrors,
	}
}

// OrderImportResponse represents the response from an order bulk upload
// @Description Response from order bulk import operation
type OrderImportResponse struct {
	HistoryID    uuid.UUID                `json:"history_id"`
	TotalRows    int                      `json:"total_rows" example:"50"`
	ImportedRows int                      `json:"imported_rows" example:"48"`
	ErrorRows    int                      `json:"error_rows" example:"2"`
	Orders       []importapp.ImportedOrder `json:"orders,omitempty"`
	Errors       []csvimport.RowError     `json:"errors,omitempty"`
	IsTruncated  bool                     `json:"is_truncated,omitempty"`
	TotalErrors  int                      `json:"total_errors,omitempty"`
}

// NewOrderImportResponse builds the response from an import result
func NewOrderImportResponse(historyID uuid.UUID, result *importapp.OrderImportResult) OrderImportResponse {
	return OrderImportResponse{
		HistoryID:    historyID,
		TotalRows:    result.TotalRows,
		ImportedRows: result.ImportedRows,
		ErrorRows:    result.ErrorRows,
		Orders:       result.Orders,
		Errors:       result.Errors,
		IsTruncated:  result.IsTruncated,
		TotalErrors:  result.TotalErrors,
	}
}

// ImportHistoryListRequest represents query parameters for listing import history
type ImportHistoryListRequest struct {
	EntityType  string `form:"entity_type"`
	Status      string `form:"status"`
	StartedFrom string `form:"started_from"`
	StartedTo   string `form:"started_to"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size" binding:"omitempty,max=100"`
}

// ImportHistoryResponse represents one import history record
type ImportHistoryResponse struct {
	ID           uuid.UUID                `json:"id"`
	EntityType   string                   `json:"entity_type"`
	FileName     string                   `json:"file_name"`
	FileSize     int64                    `json:"file_size"`
	TotalRows    int                      `json:"total_rows"`
	SuccessRows  int                      `json:"success_rows"`
	ErrorRows    int                      `json:"error_rows"`
	SkippedRows  int                      `json:"skipped_rows"`
	UpdatedRows  int                      `json:"updated_rows"`
	ConflictMode string                   `json:"conflict_mode"`
	Status       string                   `json:"status"`
	SuccessRate  float64                  `json:"success_rate"`
	ErrorDetails []bulk.ImportErrorDetail `json:"error_details,omitempty"`
	ImportedBy   uuid.UUID                `json:"imported_by"`
	StartedAt    *time.Time               `json:"started_at,omitempty"`
	CompletedAt  *time.Time               `json:"completed_at,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
}

// NewImportHistoryResponse converts a domain import history to a response
func NewImportHistoryResponse(h *bulk.ImportHistory) ImportHistoryResponse {
	return ImportHistoryResponse{
		ID:           h.ID,
		EntityType:   string(h.EntityType),
		FileName:     h.FileName,
		FileSize:     h.FileSize,
		TotalRows:    h.TotalRows,
		SuccessRows:  h.SuccessRows,
		ErrorRows:    h.ErrorRows,
		SkippedRows:  h.SkippedRows,
		UpdatedRows:  h.UpdatedRows,
		ConflictMode: string(h.ConflictMode),
		Status:       string(h.Status),
		SuccessRate:  h.SuccessRate(),
		ErrorDetails: h.ErrorDetails,
		ImportedBy:   h.ImportedBy,
		StartedAt:    h.StartedAt,
		CompletedAt:  h.CompletedAt,
		CreatedAt:    h.CreatedAt,
	}
}

// ImportHistoryListResponse represents a paginated list of import histories
type ImportHistoryListResponse struct {
	Items      []ImportHistoryResponse `json:"items"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
}

// NewImportHistoryListResponse converts a domain list result to a response
func NewImportHistoryListResponse(result *bulk.ImportHistoryListResult) ImportHistoryListResponse {
	items := make([]ImportHistoryResponse, 0, len(result.Items))
	for _, h := range result.Items {
		items = append(items, NewImportHistoryResponse(h))
	}
	return ImportHistoryListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		PageSize:   result.PageSize,
	}
}
