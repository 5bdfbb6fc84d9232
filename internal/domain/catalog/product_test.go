package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastmile/backend/internal/domain/shared"
	"github.com/lastmile/backend/internal/domain/shared/valueobject"
)

func testProduct(t *testing.T, stock int) *Product {
	p, err := NewProduct(uuid.New(), "Ceramic vase", "SKU-01",
		valueobject.NewVNDFromInt(150000), decimal.NewFromFloat(0.8), stock)
	require.NoError(t, err)
	return p
}

func TestNewProduct_Validation(t *testing.T) {
	_, err := NewProduct(uuid.Nil, "x", "s", valueobject.ZeroVND(), decimal.Zero, 0)
	assert.Error(t, err)

	_, err = NewProduct(uuid.New(), "", "s", valueobject.ZeroVND(), decimal.Zero, 0)
	assert.Error(t, err)

	_, err = NewProduct(uuid.New(), "x", "s", valueobject.ZeroVND(), decimal.Zero, -1)
	assert.Error(t, err)
}

func TestProduct_ReserveAndRestore(t *testing.T) {
	p := testProduct(t, 10)

	require.NoError(t, p.Reserve(4))
	assert.Equal(t, 6, p.Stock)

	err := p.Reserve(7)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, 6, p.Stock)

	require.NoError(t, p.Restore(4))
	assert.Equal(t, 10, p.Stock)

	assert.Error(t, p.Reserve(0))
	assert.Error(t, p.Restore(-1))
}
