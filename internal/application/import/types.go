package importapp

import "github.com/lastmile/backend/internal/domain/bulk"

// ConflictMode defines how to handle rows that collide with existing records
type ConflictMode string

const (
	// ConflictModeSkip skips rows that conflict with existing data
	ConflictModeSkip ConflictMode = "skip"
	// ConflictModeUpdate updates existing records with new data
	ConflictModeUpdate ConflictMode = "update"
	// ConflictModeFail reports conflicting rows as errors
	ConflictModeFail ConflictMode = "fail"
)

// IsValid checks if the conflict mode is valid
func (c ConflictMode) IsValid() bool {
	switch c {
	case ConflictModeSkip, ConflictModeUpdate, ConflictModeFail:
		return true
	}
	return false
}

// Domain converts the mode to its domain representation
func (c ConflictMode) Domain() bulk.ConflictMode {
	return bulk.ConflictMode(c)
}
