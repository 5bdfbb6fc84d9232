package bulk

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/shared"
)

// ImportEntityType names what kind of records a spreadsheet carries.
type ImportEntityType string

const (
	ImportEntityOrders   ImportEntityType = "orders"
	ImportEntityProducts ImportEntityType = "products"
)

// IsValid reports whether the entity type is one the importer knows.
func (e ImportEntityType) IsValid() bool {
	return e == ImportEntityOrders || e == ImportEntityProducts
}

// ImportStatus is the lifecycle state of one import run.
type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
	ImportStatusCancelled  ImportStatus = "cancelled"
)

// IsValid reports whether s is a known status.
func (s ImportStatus) IsValid() bool {
	switch s {
	case ImportStatusPending, ImportStatusProcessing, ImportStatusCompleted,
		ImportStatusFailed, ImportStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the run can no longer change state.
func (s ImportStatus) IsTerminal() bool {
	return s == ImportStatusCompleted || s == ImportStatusFailed || s == ImportStatusCancelled
}

// ConflictMode decides what happens to rows that collide with existing
// records, e.g. a product row whose SKU already exists in the shop.
// Order imports always create and ignore the mode.
type ConflictMode string

const (
	ConflictModeSkip   ConflictMode = "skip"
	ConflictModeUpdate ConflictMode = "update"
	ConflictModeFail   ConflictMode = "fail"
)

// IsValid reports whether c is a known conflict mode.
func (c ConflictMode) IsValid() bool {
	return c == ConflictModeSkip || c == ConflictModeUpdate || c == ConflictModeFail
}

// ImportErrorDetail pins one rejected value to its row and column so
// the uploader can fix the file.
type ImportErrorDetail struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ImportHistory records one bulk import run, its row counts and every
// per-row error.
type ImportHistory struct {
	shared.BaseAggregateRoot
	EntityType   ImportEntityType    `json:"entity_type"`
	FileName     string              `json:"file_name"`
	FileSize     int64               `json:"file_size"`
	TotalRows    int                 `json:"total_rows"`
	SuccessRows  int                 `json:"success_rows"`
	ErrorRows    int                 `json:"error_rows"`
	SkippedRows  int                 `json:"skipped_rows"`
	UpdatedRows  int                 `json:"updated_rows"`
	ConflictMode ConflictMode        `json:"conflict_mode"`
	Status       ImportStatus        `json:"status"`
	ErrorDetails []ImportErrorDetail `json:"error_details,omitempty"`
	ImportedBy   uuid.UUID           `json:"imported_by"`
	StartedAt    *time.Time          `json:"started_at,omitempty"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
}

// NewImportHistory creates a pending import record for an uploaded file.
func NewImportHistory(
	entityType ImportEntityType,
	fileName string,
	fileSize int64,
	conflictMode ConflictMode,
	importedBy uuid.UUID,
) (*ImportHistory, error) {
	if !entityType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", fmt.Sprintf("Invalid entity type: %s", entityType))
	}
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if fileSize < 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size cannot be negative")
	}
	if !conflictMode.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONFLICT_MODE", fmt.Sprintf("Invalid conflict mode: %s", conflictMode))
	}
	if importedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_IMPORTER", "Importer cannot be empty")
	}

	return &ImportHistory{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		EntityType:        entityType,
		FileName:          fileName,
		FileSize:          fileSize,
		ConflictMode:      conflictMode,
		Status:            ImportStatusPending,
		ErrorDetails:      make([]ImportErrorDetail, 0),
		ImportedBy:        importedBy,
	}, nil
}

// StartProcessing moves the run to processing once the file has been
// parsed and the row count is known.
func (h *ImportHistory) StartProcessing(totalRows int) error {
	if h.Status != ImportStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start processing from state: %s", h.Status))
	}
	if totalRows < 0 {
		return shared.NewDomainError("INVALID_TOTAL_ROWS", "Total rows cannot be negative")
	}

	h.Status = ImportStatusProcessing
	h.TotalRows = totalRows
	now := time.Now()
	h.StartedAt = &now
	h.UpdatedAt = now
	h.IncrementVersion()

	return nil
}

// Complete records the final row counts. The run lands in the failed
// state when every row errored out and nothing was written.
func (h *ImportHistory) Complete(successRows, errorRows, skippedRows, updatedRows int, errors []ImportErrorDetail) error {
	if h.Status != ImportStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete from state: %s", h.Status))
	}

	status := ImportStatusCompleted
	if errorRows > 0 && successRows == 0 && updatedRows == 0 {
		status = ImportStatusFailed
	}

	h.SuccessRows = successRows
	h.ErrorRows = errorRows
	h.SkippedRows = skippedRows
	h.UpdatedRows = updatedRows
	h.ErrorDetails = errors
	h.finish(status)

	return nil
}

// Fail aborts the run, keeping whatever errors were collected.
func (h *ImportHistory) Fail(errors []ImportErrorDetail) error {
	if h.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail from terminal state: %s", h.Status))
	}

	h.ErrorDetails = errors
	h.finish(ImportStatusFailed)

	return nil
}

// Cancel aborts a run that has not yet finished.
func (h *ImportHistory) Cancel() error {
	if h.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel from terminal state: %s", h.Status))
	}

	h.finish(ImportStatusCancelled)

	return nil
}

func (h *ImportHistory) finish(status ImportStatus) {
	h.Status = status
	now := time.Now()
	h.CompletedAt = &now
	h.UpdatedAt = now
	h.IncrementVersion()
}

// IsCompleted reports whether the run finished, possibly with partial
// row errors.
func (h *ImportHistory) IsCompleted() bool {
	return h.Status == ImportStatusCompleted
}

// IsFailed reports whether the run produced nothing.
func (h *ImportHistory) IsFailed() bool {
	return h.Status == ImportStatusFailed
}

// HasErrors reports whether any row was rejected.
func (h *ImportHistory) HasErrors() bool {
	return len(h.ErrorDetails) > 0
}

// ErrorDetailsJSON serializes the error details for storage.
func (h *ImportHistory) ErrorDetailsJSON() (string, error) {
	if len(h.ErrorDetails) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(h.ErrorDetails)
	if err != nil {
		return "", fmt.Errorf("failed to marshal error details: %w", err)
	}
	return string(data), nil
}

// SetErrorDetailsFromJSON restores error details from their stored form.
func (h *ImportHistory) SetErrorDetailsFromJSON(jsonStr string) error {
	if jsonStr == "" || jsonStr == "[]" {
		h.ErrorDetails = make([]ImportErrorDetail, 0)
		return nil
	}
	var errors []ImportErrorDetail
	if err := json.Unmarshal([]byte(jsonStr), &errors); err != nil {
		return fmt.Errorf("failed to unmarshal error details: %w", err)
	}
	h.ErrorDetails = errors
	return nil
}

// SuccessRate is the share of rows written or updated, in percent.
func (h *ImportHistory) SuccessRate() float64 {
	if h.TotalRows == 0 {
		return 0
	}
	return float64(h.SuccessRows+h.UpdatedRows) / float64(h.TotalRows) * 100
}

// Duration is how long the run took, or has been running so far.
func (h *ImportHistory) Duration() time.Duration {
	if h.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if h.CompletedAt != nil {
		end = *h.CompletedAt
	}
	return end.Sub(*h.StartedAt)
}
