package importapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lastmile/backend/internal/domain/bulk"
	csvimport "github.com/lastmile/backend/internal/infrastructure/import"
)

// ImportHistoryService tracks bulk import runs from upload to their
// terminal state and serves the history screens.
type ImportHistoryService struct {
	historyRepo bulk.ImportHistoryRepository
}

// NewImportHistoryService creates the service.
func NewImportHistoryService(historyRepo bulk.ImportHistoryRepository) *ImportHistoryService {
	return &ImportHistoryService{
		historyRepo: historyRepo,
	}
}

// CreateHistory records a freshly uploaded file as a pending run.
func (s *ImportHistoryService) CreateHistory(
	ctx context.Context,
	entityType bulk.ImportEntityType,
	fileName string,
	fileSize int64,
	conflictMode bulk.ConflictMode,
	importedBy uuid.UUID,
) (*bulk.ImportHistory, error) {
	history, err := bulk.NewImportHistory(entityType, fileName, fileSize, conflictMode, importedBy)
	if err != nil {
		return nil, err
	}

	if err := s.historyRepo.Save(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to save import history: %w", err)
	}

	return history, nil
}

// StartProcessing marks a run as started with its parsed row count.
func (s *ImportHistoryService) StartProcessing(ctx context.Context, historyID uuid.UUID, totalRows int) error {
	history, err := s.historyRepo.FindByID(ctx, historyID)
	if err != nil {
		return err
	}

	if err := history.StartProcessing(totalRows); err != nil {
		return err
	}

	return s.historyRepo.Save(ctx, history)
}

// CompleteImport stores the final row counts and per-row errors.
func (s *ImportHistoryService) CompleteImport(
	ctx context.Context,
	historyID uuid.UUID,
	successRows, errorRows, skippedRows, updatedRows int,
	errors []csvimport.RowError,
) error {
	history, err := s.historyRepo.FindByID(ctx, historyID)
	if err != nil {
		return err
	}

	if err := history.Complete(successRows, errorRows, skippedRows, updatedRows, toErrorDetails(errors)); err != nil {
		return err
	}

	return s.historyRepo.Save(ctx, history)
}

// FailImport aborts a run with the collected errors.
func (s *ImportHistoryService) FailImport(ctx context.Context, historyID uuid.UUID, errors []csvimport.RowError) error {
	history, err := s.historyRepo.FindByID(ctx, historyID)
	if err != nil {
		return err
	}

	if err := history.Fail(toErrorDetails(errors)); err != nil {
		return err
	}

	return s.historyRepo.Save(ctx, history)
}

// CancelImport cancels a run that has not finished yet.
func (s *ImportHistoryService) CancelImport(ctx context.Context, historyID uuid.UUID) error {
	history, err := s.historyRepo.FindByID(ctx, historyID)
	if err != nil {
		return err
	}

	if err := history.Cancel(); err != nil {
		return err
	}

	return s.historyRepo.Save(ctx, history)
}

// GetHistory loads one run by ID.
func (s *ImportHistoryService) GetHistory(ctx context.Context, historyID uuid.UUID) (*bulk.ImportHistory, error) {
	return s.historyRepo.FindByID(ctx, historyID)
}

// ListHistoryFilter narrows ListHistory results. Unknown entity types
// and statuses are ignored rather than rejected.
type ListHistoryFilter struct {
	EntityType  string
	Status      string
	ImportedBy  *uuid.UUID
	StartedFrom *time.Time
	StartedTo   *time.Time
}

// ListHistory pages through runs matching the filter.
func (s *ImportHistoryService) ListHistory(
	ctx context.Context,
	filter ListHistoryFilter,
	page, pageSize int,
) (*bulk.ImportHistoryListResult, error) {
	repoFilter := bulk.ImportHistoryFilter{
		ImportedBy:  filter.ImportedBy,
		StartedFrom: filter.StartedFrom,
		StartedTo:   filter.StartedTo,
	}

	if filter.EntityType != "" {
		entityType := bulk.ImportEntityType(filter.EntityType)
		if entityType.IsValid() {
			repoFilter.EntityType = &entityType
		}
	}

	if filter.Status != "" {
		status := bulk.ImportStatus(filter.Status)
		if status.IsValid() {
			repoFilter.Status = &status
		}
	}

	return s.historyRepo.FindAll(ctx, repoFilter, page, pageSize)
}

// GetErrorsCSV renders the per-row errors as a downloadable CSV.
func (s *ImportHistoryService) GetErrorsCSV(ctx context.Context, historyID uuid.UUID) (string, string, error) {
	history, err := s.historyRepo.FindByID(ctx, historyID)
	if err != nil {
		return "", "", err
	}

	if len(history.ErrorDetails) == 0 {
		return "", "", fmt.Errorf("no errors to export")
	}

	var sb strings.Builder
	sb.WriteString("Row,Column,Error Code,Error Message,Value\n")

	for _, e := range history.ErrorDetails {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%s\n",
			e.Row,
			escapeCSV(e.Column),
			escapeCSV(e.Code),
			escapeCSV(e.Message),
			escapeCSV(e.Value),
		))
	}

	fileName := fmt.Sprintf("import_errors_%s_%s.csv",
		history.EntityType,
		history.ID.String()[:8],
	)

	return sb.String(), fileName, nil
}

func escapeCSV(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, ",\"\n\r") {
		escaped := strings.ReplaceAll(s, "\"", "\"\"")
		return "\"" + escaped + "\""
	}
	return s
}

// DeleteHistory removes a run from the history.
func (s *ImportHistoryService) DeleteHistory(ctx context.Context, historyID uuid.UUID) error {
	return s.historyRepo.Delete(ctx, historyID)
}

// FailOrphanedImports fails every run still marked pending or
// processing. Imports run in the request goroutine, so a restart
// orphans anything that was in flight. Returns how many runs were
// failed.
func (s *ImportHistoryService) FailOrphanedImports(ctx context.Context) (int, error) {
	orphans, err := s.historyRepo.FindPending(ctx)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, history := range orphans {
		rowError := csvimport.RowError{
			Code:    "IMPORT_INTERRUPTED",
			Message: "Import was interrupted by a server restart",
		}
		if err := history.Fail(toErrorDetails([]csvimport.RowError{rowError})); err != nil {
			continue
		}
		if err := s.historyRepo.Save(ctx, history); err != nil {
			return failed, err
		}
		failed++
	}
	return failed, nil
}

func toErrorDetails(errors []csvimport.RowError) []bulk.ImportErrorDetail {
	details := make([]bulk.ImportErrorDetail, len(errors))
	for i, e := range errors {
		details[i] = bulk.ImportErrorDetail{
			Row:     e.Row,
			Column:  e.Column,
			Code:    e.Code,
			Message: e.Message,
			Value:   e.Value,
		}
	}
	return details
}
