package bulk

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportEntityType_IsValid(t *testing.T) {
	tests := []struct {
		name       string
		entityType ImportEntityType
		want       bool
	}{
		{"orders", ImportEntityOrders, true},
		{"products", ImportEntityProducts, true},
		{"invalid", ImportEntityType("customers"), false},
		{"empty", ImportEntityType(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entityType.IsValid())
		})
	}
}

func TestImportStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status ImportStatus
		want   bool
	}{
		{"pending", ImportStatusPending, false},
		{"processing", ImportStatusProcessing, false},
		{"completed", ImportStatusCompleted, true},
		{"failed", ImportStatusFailed, true},
		{"cancelled", ImportStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsTerminal())
		})
	}
}

func TestConflictMode_IsValid(t *testing.T) {
	tests := []struct {
		name string
		mode ConflictMode
		want bool
	}{
		{"skip", ConflictModeSkip, true},
		{"update", ConflictModeUpdate, true},
		{"fail", ConflictModeFail, true},
		{"invalid", ConflictMode("merge"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mode.IsValid())
		})
	}
}

func newPendingHistory(t *testing.T) *ImportHistory {
	t.Helper()
	history, err := NewImportHistory(ImportEntityProducts, "products.csv", 1024, ConflictModeSkip, uuid.New())
	require.NoError(t, err)
	return history
}

func TestNewImportHistory(t *testing.T) {
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		history, err := NewImportHistory(ImportEntityOrders, "orders.csv", 2048, ConflictModeFail, userID)
		require.NoError(t, err)
		assert.Equal(t, ImportEntityOrders, history.EntityType)
		assert.Equal(t, "orders.csv", history.FileName)
		assert.Equal(t, int64(2048), history.FileSize)
		assert.Equal(t, ImportStatusPending, history.Status)
		assert.Equal(t, userID, history.ImportedBy)
		assert.NotEqual(t, uuid.Nil, history.ID)
	})

	tests := []struct {
		name       string
		entityType ImportEntityType
		fileName   string
		fileSize   int64
		mode       ConflictMode
		importedBy uuid.UUID
		wantCode   string
	}{
		{"invalid entity type", "warehouses", "w.csv", 10, ConflictModeSkip, userID, "INVALID_ENTITY_TYPE"},
		{"empty file name", ImportEntityProducts, "", 10, ConflictModeSkip, userID, "INVALID_FILE_NAME"},
		{"negative file size", ImportEntityProducts, "p.csv", -1, ConflictModeSkip, userID, "INVALID_FILE_SIZE"},
		{"invalid conflict mode", ImportEntityProducts, "p.csv", 10, ConflictMode("merge"), userID, "INVALID_CONFLICT_MODE"},
		{"nil importer", ImportEntityProducts, "p.csv", 10, ConflictModeSkip, uuid.Nil, "INVALID_IMPORTER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewImportHistory(tt.entityType, tt.fileName, tt.fileSize, tt.mode, tt.importedBy)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantCode)
		})
	}
}

func TestImportHistory_StartProcessing(t *testing.T) {
	history := newPendingHistory(t)

	require.NoError(t, history.StartProcessing(100))
	assert.Equal(t, ImportStatusProcessing, history.Status)
	assert.Equal(t, 100, history.TotalRows)
	assert.NotNil(t, history.StartedAt)

	err := history.StartProcessing(100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_STATE")
}

func TestImportHistory_StartProcessing_NegativeRows(t *testing.T) {
	history := newPendingHistory(t)
	err := history.StartProcessing(-1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_TOTAL_ROWS")
}

func TestImportHistory_Complete(t *testing.T) {
	history := newPendingHistory(t)
	require.NoError(t, history.StartProcessing(10))

	errDetails := []ImportErrorDetail{{Row: 3, Column: "sku", Code: "ERR_IMPORT_VALIDATION", Message: "bad sku"}}
	require.NoError(t, history.Complete(7, 1, 1, 1, errDetails))

	assert.Equal(t, ImportStatusCompleted, history.Status)
	assert.Equal(t, 7, history.SuccessRows)
	assert.Equal(t, 1, history.ErrorRows)
	assert.Equal(t, 1, history.SkippedRows)
	assert.Equal(t, 1, history.UpdatedRows)
	assert.True(t, history.HasErrors())
	assert.NotNil(t, history.CompletedAt)
}

func TestImportHistory_Complete_AllErrorsMeansFailed(t *testing.T) {
	history := newPendingHistory(t)
	require.NoError(t, history.StartProcessing(5))

	require.NoError(t, history.Complete(0, 5, 0, 0, nil))
	assert.Equal(t, ImportStatusFailed, history.Status)
	assert.True(t, history.IsFailed())
	assert.False(t, history.IsCompleted())
}

func TestImportHistory_Complete_RequiresProcessing(t *testing.T) {
	history := newPendingHistory(t)
	err := history.Complete(1, 0, 0, 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_STATE")
}

func TestImportHistory_Fail(t *testing.T) {
	history := newPendingHistory(t)
	require.NoError(t, history.Fail([]ImportErrorDetail{{Row: 0, Code: "ERR_IMPORT_INVALID_FILE", Message: "not utf-8"}}))
	assert.Equal(t, ImportStatusFailed, history.Status)

	err := history.Fail(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_STATE")
}

func TestImportHistory_Cancel(t *testing.T) {
	history := newPendingHistory(t)
	require.NoError(t, history.Cancel())
	assert.Equal(t, ImportStatusCancelled, history.Status)

	err := history.Cancel()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_STATE")
}

func TestImportHistory_ErrorDetailsJSONRoundTrip(t *testing.T) {
	history := newPendingHistory(t)
	history.ErrorDetails = []ImportErrorDetail{
		{Row: 2, Column: "weight_kg", Code: "ERR_IMPORT_INVALID_TYPE", Message: "expected decimal", Value: "heavy"},
	}

	jsonStr, err := history.ErrorDetailsJSON()
	require.NoError(t, err)

	restored := newPendingHistory(t)
	require.NoError(t, restored.SetErrorDetailsFromJSON(jsonStr))
	require.Len(t, restored.ErrorDetails, 1)
	assert.Equal(t, "weight_kg", restored.ErrorDetails[0].Column)

	require.NoError(t, restored.SetErrorDetailsFromJSON(""))
	assert.Empty(t, restored.ErrorDetails)
}

func TestImportHistory_SuccessRate(t *testing.T) {
	history := newPendingHistory(t)
	assert.Equal(t, float64(0), history.SuccessRate())

	require.NoError(t, history.StartProcessing(10))
	require.NoError(t, history.Complete(6, 2, 0, 2, nil))
	assert.InDelta(t, 80.0, history.SuccessRate(), 0.01)
}

func TestImportHistory_Duration(t *testing.T) {
	history := newPendingHistory(t)
	assert.Equal(t, time.Duration(0), history.Duration())

	require.NoError(t, history.StartProcessing(1))
	start := time.Now().Add(-2 * time.Second)
	history.StartedAt = &start
	require.NoError(t, history.Complete(1, 0, 0, 0, nil))
	assert.GreaterOrEqual(t, history.Duration(), 2*time.Second)
}
