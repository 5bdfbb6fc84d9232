package csvimport

import (
	"errors"
	"fmt"
)

// Error codes surfaced to the uploader, one per kind of row failure.
// They are stable identifiers the web client keys its translations on.
const (
	ErrCodeImportFileTooLarge = "ERR_IMPORT_FILE_TOO_LARGE"
	ErrCodeImportCSVParsing   = "ERR_IMPORT_CSV_PARSING"

	ErrCodeImportValidation        = "ERR_IMPORT_VALIDATION"
	ErrCodeImportRequiredField     = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeImportInvalidType       = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeImportInvalidLength     = "ERR_IMPORT_INVALID_LENGTH"
	ErrCodeImportInvalidRange      = "ERR_IMPORT_INVALID_RANGE"
	ErrCodeImportPatternMismatch   = "ERR_IMPORT_PATTERN_MISMATCH"
	ErrCodeImportDuplicateInFile   = "ERR_IMPORT_DUPLICATE_IN_FILE"
	ErrCodeImportDuplicateInDB     = "ERR_IMPORT_DUPLICATE_IN_DB"
	ErrCodeImportReferenceNotFound = "ERR_IMPORT_REFERENCE_NOT_FOUND"
)

// Sentinel errors returned before row processing starts. These abort
// the whole upload rather than marking individual rows.
var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("invalid file encoding")
	ErrMissingHeader   = errors.New("CSV file missing header row")
	ErrNoDataRows      = errors.New("CSV file contains no data rows")
)

// RowError pins one failure to a row and column of the uploaded file.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError builds a RowError without echoing the offending value.
func NewRowError(row int, column, code, message string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message}
}

// NewRowErrorWithValue builds a RowError that carries the offending
// cell value, so the client can highlight it.
func NewRowErrorWithValue(row int, column, code, message, value string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message, Value: value}
}

// ErrorCollection accumulates row errors up to a cap. Past the cap it
// keeps counting but stops storing, so a garbage file of a million bad
// rows cannot balloon the response.
type ErrorCollection struct {
	kept  []RowError
	cap   int
	total int
}

// NewErrorCollection creates a collection that stores at most maxErrors
// entries. Non-positive caps fall back to 100.
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{kept: make([]RowError, 0, maxErrors), cap: maxErrors}
}

// Add records an error, storing it if under the cap.
func (ec *ErrorCollection) Add(err RowError) {
	ec.total++
	if len(ec.kept) < ec.cap {
		ec.kept = append(ec.kept, err)
	}
}

func (ec *ErrorCollection) AddValidationError(row int, column, code, message string) {
	ec.Add(NewRowError(row, column, code, message))
}

func (ec *ErrorCollection) AddRequiredError(row int, column string) {
	ec.Add(NewRowError(row, column, ErrCodeImportRequiredField,
		fmt.Sprintf("field '%s' is required", column)))
}

func (ec *ErrorCollection) AddTypeError(row int, column, expectedType, value string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportInvalidType,
		fmt.Sprintf("expected %s", expectedType), value))
}

func (ec *ErrorCollection) AddLengthError(row int, column string, minLen, maxLen int) {
	var msg string
	switch {
	case minLen > 0 && maxLen > 0:
		msg = fmt.Sprintf("length must be between %d and %d", minLen, maxLen)
	case maxLen > 0:
		msg = fmt.Sprintf("length must be at most %d", maxLen)
	default:
		msg = fmt.Sprintf("length must be at least %d", minLen)
	}
	ec.Add(NewRowError(row, column, ErrCodeImportInvalidLength, msg))
}

func (ec *ErrorCollection) AddRangeError(row int, column string, min, max float64) {
	ec.Add(NewRowError(row, column, ErrCodeImportInvalidRange,
		fmt.Sprintf("value must be between %.2f and %.2f", min, max)))
}

func (ec *ErrorCollection) AddPatternError(row int, column, pattern, value string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportPatternMismatch,
		fmt.Sprintf("value does not match pattern '%s'", pattern), value))
}

// AddDuplicateError records a duplicate, either within the file or
// against rows already stored.
func (ec *ErrorCollection) AddDuplicateError(row int, column, value string, inDB bool) {
	if inDB {
		ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportDuplicateInDB,
			fmt.Sprintf("value '%s' already exists in database", value), value))
		return
	}
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportDuplicateInFile,
		fmt.Sprintf("duplicate value '%s' found in file", value), value))
}

func (ec *ErrorCollection) AddReferenceError(row int, column, value, refType string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportReferenceNotFound,
		fmt.Sprintf("%s '%s' not found", refType, value), value))
}

// Errors returns the stored errors, at most the configured cap.
func (ec *ErrorCollection) Errors() []RowError {
	return ec.kept
}

// Count returns the number of stored errors.
func (ec *ErrorCollection) Count() int {
	return len(ec.kept)
}

// TotalCount returns every error seen, stored or not.
func (ec *ErrorCollection) TotalCount() int {
	return ec.total
}

// HasErrors reports whether any error was recorded.
func (ec *ErrorCollection) HasErrors() bool {
	return ec.total > 0
}

// IsTruncated reports whether errors were dropped at the cap.
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.total > ec.cap
}

// ValidationResult is the outcome of validating one upload, returned
// to the client before anything is written.
type ValidationResult struct {
	ValidationID string           `json:"validation_id"`
	TotalRows    int              `json:"total_rows"`
	ValidRows    int              `json:"valid_rows"`
	ErrorRows    int              `json:"error_rows"`
	Errors       []RowError       `json:"errors,omitempty"`
	Preview      []map[string]any `json:"preview,omitempty"`
	IsTruncated  bool             `json:"is_truncated,omitempty"`
	TotalErrors  int              `json:"total_errors,omitempty"`
}

func NewValidationResult(validationID string) *ValidationResult {
	return &ValidationResult{
		ValidationID: validationID,
		Errors:       make([]RowError, 0),
		Preview:      make([]map[string]any, 0),
	}
}

func (vr *ValidationResult) SetCounts(total, valid, errorCount int) {
	vr.TotalRows = total
	vr.ValidRows = valid
	vr.ErrorRows = errorCount
}

func (vr *ValidationResult) AddPreview(row map[string]any) {
	if len(vr.Preview) < 5 {
		vr.Preview = append(vr.Preview, row)
	}
}

func (vr *ValidationResult) SetErrors(ec *ErrorCollection) {
	vr.Errors = ec.Errors()
	vr.IsTruncated = ec.IsTruncated()
	vr.TotalErrors = ec.TotalCount()
}

// IsValid reports whether every row passed.
func (vr *ValidationResult) IsValid() bool {
	return vr.ErrorRows == 0
}
