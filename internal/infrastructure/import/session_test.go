package csvimport

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productRules() []FieldRule {
	return []FieldRule{
		Field("name").Required().String().MaxLength(200).Build(),
		Field("sku").String().MaxLength(100).Unique().Build(),
		Field("unit_value").Required().Decimal().MinValue(decimal.Zero).Build(),
		Field("weight_kg").Required().Decimal().MinValue(decimal.Zero).Build(),
		Field("stock").Required().Int().MinValue(decimal.Zero).Build(),
	}
}

func TestImportProcessor_Validate_AllValid(t *testing.T) {
	csv := "name,sku,unit_value,weight_kg,stock\n" +
		"Ceramic mug,MUG-01,120000,0.4,10\n" +
		"Glass teapot,POT-01,450000,1.2,3\n"

	session := NewImportSession(uuid.New(), EntityProducts, "products.csv", int64(len(csv)))
	processor := NewImportProcessor()

	result, rows, err := processor.Validate(context.Background(), session, strings.NewReader(csv), productRules())

	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 2, result.ValidRows)
	assert.Equal(t, 0, result.ErrorRows)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ceramic mug", rows[0].Get("name"))
	assert.Equal(t, StateValidated, session.State)
	assert.True(t, session.IsValid())
}

func TestImportProcessor_Validate_CollectsRowErrors(t *testing.T) {
	csv := "name,sku,unit_value,weight_kg,stock\n" +
		",MUG-01,120000,0.4,10\n" +
		"Glass teapot,POT-01,not-a-number,1.2,3\n" +
		"Steel flask,FLK-01,80000,0.5,7\n"

	session := NewImportSession(uuid.New(), EntityProducts, "products.csv", int64(len(csv)))
	processor := NewImportProcessor()

	result, rows, err := processor.Validate(context.Background(), session, strings.NewReader(csv), productRules())

	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 1, result.ValidRows)
	assert.Equal(t, 2, result.ErrorRows)
	require.Len(t, rows, 1)
	assert.Equal(t, "Steel flask", rows[0].Get("name"))
	assert.Equal(t, StateFailed, session.State)
	assert.NotEmpty(t, result.Errors)
}

func TestImportProcessor_Validate_DuplicateInFile(t *testing.T) {
	csv := "name,sku,unit_value,weight_kg,stock\n" +
		"Ceramic mug,MUG-01,120000,0.4,10\n" +
		"Another mug,MUG-01,90000,0.4,5\n"

	session := NewImportSession(uuid.New(), EntityProducts, "products.csv", int64(len(csv)))
	processor := NewImportProcessor(
		WithUniqueLookup(func(entityType, field, value string) (bool, error) {
			return false, nil
		}),
	)

	result, _, err := processor.Validate(context.Background(), session, strings.NewReader(csv), productRules())

	require.NoError(t, err)
	assert.Equal(t, 1, result.ValidRows)
	assert.Equal(t, 1, result.ErrorRows)
}

func TestImportProcessor_Validate_MaxRowsExceeded(t *testing.T) {
	var b strings.Builder
	b.WriteString("name,sku,unit_value,weight_kg,stock\n")
	for i := 0; i < 5; i++ {
		b.WriteString("Ceramic mug,,120000,0.4,10\n")
	}

	session := NewImportSession(uuid.New(), EntityProducts, "products.csv", 0)
	processor := NewImportProcessor(WithMaxRows(3))

	result, _, err := processor.Validate(context.Background(), session, strings.NewReader(b.String()), productRules())

	require.NoError(t, err)
	assert.LessOrEqual(t, result.TotalRows, 4)
	assert.NotEmpty(t, result.Errors)
}

func TestImportProcessor_Validate_SkipsEmptyRows(t *testing.T) {
	csv := "name,sku,unit_value,weight_kg,stock\n" +
		"Ceramic mug,MUG-01,120000,0.4,10\n" +
		",,,,\n"

	session := NewImportSession(uuid.New(), EntityProducts, "products.csv", int64(len(csv)))
	processor := NewImportProcessor()

	result, _, err := processor.Validate(context.Background(), session, strings.NewReader(csv), productRules())

	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalRows)
	assert.Equal(t, 1, result.ValidRows)
}

func TestImportProcessor_Validate_PreviewLimited(t *testing.T) {
	var b strings.Builder
	b.WriteString("name,sku,unit_value,weight_kg,stock\n")
	for i := 0; i < 10; i++ {
		b.WriteString("Ceramic mug,,120000,0.4,10\n")
	}

	session := NewImportSession(uuid.New(), EntityProducts, "products.csv", 0)
	processor := NewImportProcessor(WithPreviewRows(3))

	result, _, err := processor.Validate(context.Background(), session, strings.NewReader(b.String()), productRules())

	require.NoError(t, err)
	assert.Len(t, result.Preview, 3)
}

func TestIsValidEntityType(t *testing.T) {
	assert.True(t, IsValidEntityType("orders"))
	assert.True(t, IsValidEntityType("products"))
	assert.False(t, IsValidEntityType("customers"))
	assert.False(t, IsValidEntityType(""))
}

func TestInMemorySessionStore_SaveAndGet(t *testing.T) {
	store := NewInMemorySessionStore(time.Hour)
	defer store.Stop()

	session := NewImportSession(uuid.New(), EntityOrders, "orders.csv", 100)
	require.NoError(t, store.Save(session))

	got, err := store.Get(session.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.ID, got.ID)

	missing, err := store.Get(uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInMemorySessionStore_GetByUser(t *testing.T) {
	store := NewInMemorySessionStore(time.Hour)
	defer store.Stop()

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(NewImportSession(userID, EntityProducts, "products.csv", 10)))
	}
	require.NoError(t, store.Save(NewImportSession(uuid.New(), EntityProducts, "other.csv", 10)))

	sessions, err := store.GetByUser(userID, 10)
	require.NoError(t, err)
	assert.Len(t, sessions, 3)

	limited, err := store.GetByUser(userID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestInMemorySessionStore_ExpiredSessionInvisible(t *testing.T) {
	store := NewInMemorySessionStore(time.Millisecond)
	defer store.Stop()

	session := NewImportSession(uuid.New(), EntityProducts, "products.csv", 10)
	require.NoError(t, store.Save(session))

	time.Sleep(5 * time.Millisecond)

	got, err := store.Get(session.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
