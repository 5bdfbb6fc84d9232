package importapp

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lastmile/backend/internal/domain/catalog"
	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
	csvimport "github.com/lastmile/backend/internal/infrastructure/import"
)

// ProductImportResult represents the result of a product import operation
type ProductImportResult struct {
	TotalRows    int                  `json:"total_rows"`
	ImportedRows int                  `json:"imported_rows"`
	UpdatedRows  int                  `json:"updated_rows"`
	SkippedRows  int                  `json:"skipped_rows"`
	ErrorRows    int                  `json:"error_rows"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
	TotalErrors  int                  `json:"total_errors,omitempty"`
}

// ProductImportService bulk-creates catalog products for one merchant
// shop from a validated CSV upload. Rows whose SKU already exists in
// the shop are handled per the conflict mode.
type ProductImportService struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewProductImportService creates a new ProductImportService
func NewProductImportService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductImportService {
	return &ProductImportService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// GetValidationRules returns the validation rules for product import
func (s *ProductImportService) GetValidationRules() []csvimport.FieldRule {
	zero := decimal.Zero
	return []csvimport.FieldRule{
		csvimport.Field("name").Required().String().MinLength(1).MaxLength(200).Build(),
		csvimport.Field("sku").String().MaxLength(100).Unique().Build(),
		csvimport.Field("unit_value").Required().Decimal().MinValue(zero).Build(),
		csvimport.Field("weight_kg").Required().Decimal().MinValue(zero).Build(),
		csvimport.Field("stock").Required().Int().MinValue(zero).Build(),
	}
}

// LookupUnique checks whether a SKU already exists in the shop. Used by
// the validation pass so duplicates surface before anything is written.
func (s *ProductImportService) LookupUnique(ctx context.Context, shopID uuid.UUID) func(entityType, field, value string) (bool, error) {
	return func(entityType, field, value string) (bool, error) {
		if field != "sku" || value == "" {
			return false, nil
		}
		_, err := s.productRepo.FindBySKU(ctx, shopID, value)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	}
}

// Import imports products from validated rows into the given shop
func (s *ProductImportService) Import(
	ctx context.Context,
	shopID uuid.UUID,
	session *csvimport.ImportSession,
	validRows []*csvimport.Row,
	conflictMode ConflictMode,
) (*ProductImportResult, error) {
	if session.State != csvimport.StateValidated {
		return nil, shared.NewDomainError("INVALID_STATE", "Import session must be in validated state")
	}
	if !session.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERRORS", "Cannot import session with validation errors")
	}

	session.UpdateState(csvimport.StateImporting)

	result := &ProductImportResult{TotalRows: len(validRows)}
	rowErrors := csvimport.NewErrorCollection(100)

	for _, row := range validRows {
		select {
		case <-ctx.Done():
			session.UpdateState(csvimport.StateCancelled)
			return nil, ctx.Err()
		default:
		}

		if err := s.importRow(ctx, shopID, row, conflictMode, result, rowErrors); err != nil {
			session.UpdateState(csvimport.StateFailed)
			return nil, err
		}
	}

	result.Errors = rowErrors.Errors()
	result.IsTruncated = rowErrors.IsTruncated()
	result.TotalErrors = rowErrors.TotalCount()

	if result.ErrorRows > 0 && result.ImportedRows == 0 && result.UpdatedRows == 0 {
		session.UpdateState(csvimport.StateFailed)
	} else {
		session.UpdateState(csvimport.StateCompleted)
	}

	s.logger.Info("product import finished",
		zap.String("shop_id", shopID.String()),
		zap.Int("imported", result.ImportedRows),
		zap.Int("updated", result.UpdatedRows),
		zap.Int("skipped", result.SkippedRows),
		zap.Int("errors", result.ErrorRows))

	return result, nil
}

func (s *ProductImportService) importRow(
	ctx context.Context,
	shopID uuid.UUID,
	row *csvimport.Row,
	conflictMode ConflictMode,
	result *ProductImportResult,
	rowErrors *csvimport.ErrorCollection,
) error {
	name := row.Get("name")
	sku := row.Get("sku")

	unitValue, err := decimal.NewFromString(row.Get("unit_value"))
	if err != nil {
		rowErrors.Add(csvimport.NewRowError(row.LineNumber, "unit_value", csvimport.ErrCodeImportInvalidType, "invalid decimal value"))
		result.ErrorRows++
		return nil
	}

	weightKg, err := decimal.NewFromString(row.Get("weight_kg"))
	if err != nil {
		rowErrors.Add(csvimport.NewRowError(row.LineNumber, "weight_kg", csvimport.ErrCodeImportInvalidType, "invalid decimal value"))
		result.ErrorRows++
		return nil
	}

	stock, err := parseStock(row.Get("stock"))
	if err != nil {
		rowErrors.Add(csvimport.NewRowError(row.LineNumber, "stock", csvimport.ErrCodeImportInvalidType, "invalid stock value"))
		result.ErrorRows++
		return nil
	}

	// Conflict detection by SKU within the shop
	if sku != "" {
		existing, err := s.productRepo.FindBySKU(ctx, shopID, sku)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("failed to check existing product: %w", err)
		}
		if existing != nil {
			switch conflictMode {
			case ConflictModeSkip:
				result.SkippedRows++
				return nil
			case ConflictModeFail:
				rowErrors.Add(csvimport.NewRowErrorWithValue(row.LineNumber, "sku", csvimport.ErrCodeImportDuplicateInDB,
					fmt.Sprintf("product with SKU '%s' already exists", sku), sku))
				result.ErrorRows++
				return nil
			case ConflictModeUpdate:
				if err := existing.UpdateDetails(name, sku, valueobject.NewVND(unitValue), weightKg); err != nil {
					rowErrors.Add(csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeImportValidation, err.Error()))
					result.ErrorRows++
					return nil
				}
				if err := existing.SetStock(stock); err != nil {
					rowErrors.Add(csvimport.NewRowError(row.LineNumber, "stock", csvimport.ErrCodeImportValidation, err.Error()))
					result.ErrorRows++
					return nil
				}
				if err := s.productRepo.SaveWithLock(ctx, existing); err != nil {
					return fmt.Errorf("failed to update product: %w", err)
				}
				result.UpdatedRows++
				return nil
			}
		}
	}

	product, err := catalog.NewProduct(shopID, name, sku, valueobject.NewVND(unitValue), weightKg, stock)
	if err != nil {
		rowErrors.Add(csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeImportValidation, err.Error()))
		result.ErrorRows++
		return nil
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	result.ImportedRows++
	return nil
}

func parseStock(value string) (int, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("stock must be a whole number")
	}
	return int(d.IntPart()), nil
}
