package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/bulk"
)

// ImportHistoryModel is the database row backing bulk.ImportHistory.
// Per-row errors are kept as a jsonb array in ErrorDetails.
type ImportHistoryModel struct {
	AggregateModel
	EntityType   bulk.ImportEntityType `gorm:"type:varchar(20);not null;index"`
	FileName     string                `gorm:"type:varchar(255);not null"`
	FileSize     int64                 `gorm:"not null;default:0"`
	TotalRows    int                   `gorm:"not null;default:0"`
	SuccessRows  int                   `gorm:"not null;default:0"`
	ErrorRows    int                   `gorm:"not null;default:0"`
	SkippedRows  int                   `gorm:"not null;default:0"`
	UpdatedRows  int                   `gorm:"not null;default:0"`
	ConflictMode bulk.ConflictMode     `gorm:"type:varchar(20);not null;default:'skip'"`
	Status       bulk.ImportStatus     `gorm:"type:varchar(20);not null;default:'pending';index"`
	ErrorDetails string                `gorm:"type:jsonb;default:'[]'"`
	ImportedBy   uuid.UUID             `gorm:"type:uuid;not null;index"`
	StartedAt    *time.Time            `gorm:"type:timestamptz"`
	CompletedAt  *time.Time            `gorm:"type:timestamptz"`
}

// TableName overrides the GORM default.
func (ImportHistoryModel) TableName() string {
	return "import_histories"
}

// ToDomain rebuilds the domain aggregate from the row.
func (m *ImportHistoryModel) ToDomain() *bulk.ImportHistory {
	history := &bulk.ImportHistory{
		EntityType:   m.EntityType,
		FileName:     m.FileName,
		FileSize:     m.FileSize,
		TotalRows:    m.TotalRows,
		SuccessRows:  m.SuccessRows,
		ErrorRows:    m.ErrorRows,
		SkippedRows:  m.SkippedRows,
		UpdatedRows:  m.UpdatedRows,
		ConflictMode: m.ConflictMode,
		Status:       m.Status,
		ImportedBy:   m.ImportedBy,
		StartedAt:    m.StartedAt,
		CompletedAt:  m.CompletedAt,
	}
	m.PopulateAggregateRoot(&history.BaseAggregateRoot)

	if m.ErrorDetails != "" {
		_ = history.SetErrorDetailsFromJSON(m.ErrorDetails)
	}

	return history
}

// FromDomain copies the aggregate state into the row.
func (m *ImportHistoryModel) FromDomain(h *bulk.ImportHistory) {
	m.FromDomainAggregateRoot(h.BaseAggregateRoot)
	m.EntityType = h.EntityType
	m.FileName = h.FileName
	m.FileSize = h.FileSize
	m.TotalRows = h.TotalRows
	m.SuccessRows = h.SuccessRows
	m.ErrorRows = h.ErrorRows
	m.SkippedRows = h.SkippedRows
	m.UpdatedRows = h.UpdatedRows
	m.ConflictMode = h.ConflictMode
	m.Status = h.Status
	m.ImportedBy = h.ImportedBy
	m.StartedAt = h.StartedAt
	m.CompletedAt = h.CompletedAt

	if errorJSON, err := h.ErrorDetailsJSON(); err == nil {
		m.ErrorDetails = errorJSON
	} else {
		m.ErrorDetails = "[]"
	}
}

// ImportHistoryModelFromDomain builds a fresh row from the aggregate.
func ImportHistoryModelFromDomain(h *bulk.ImportHistory) *ImportHistoryModel {
	m := &ImportHistoryModel{}
	m.FromDomain(h)
	return m
}
