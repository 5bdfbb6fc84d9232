package shipment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastmile/backend/internal/domain/shared"
)

func pendingShipment(t *testing.T) *Shipment {
	s, err := NewShipment("SHP-001", TypeDelivery, uuid.New())
	require.NoError(t, err)
	return s
}

func TestNewShipment_Validation(t *testing.T) {
	_, err := NewShipment("", TypeDelivery, uuid.New())
	assert.Error(t, err)

	_, err = NewShipment("SHP-001", ShipmentType("AIRDROP"), uuid.New())
	assert.Error(t, err)

	_, err = NewShipment("SHP-001", TypeTransfer, uuid.Nil)
	assert.Error(t, err)
}

func TestShipment_AddOrder_Capacity(t *testing.T) {
	s := pendingShipment(t)
	require.NoError(t, s.AssignVehicle(uuid.New(), decimal.NewFromInt(10)))

	require.NoError(t, s.AddOrder(uuid.New(), decimal.NewFromInt(6)))
	require.NoError(t, s.AddOrder(uuid.New(), decimal.NewFromInt(4)))
	assert.Equal(t, "10", s.TotalWeightKg.String())

	err := s.AddOrder(uuid.New(), decimal.NewFromFloat(0.1))
	assert.ErrorIs(t, err, shared.ErrCapacityExceeded)
	assert.Len(t, s.Orders, 2)
}

func TestShipment_AddOrder_Duplicate(t *testing.T) {
	s := pendingShipment(t)
	orderID := uuid.New()

	require.NoError(t, s.AddOrder(orderID, decimal.NewFromInt(1)))
	err := s.AddOrder(orderID, decimal.NewFromInt(1))
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DUPLICATE_ORDER", domainErr.Code)
}

func TestShipment_RemoveOrder_RestoresWeight(t *testing.T) {
	s := pendingShipment(t)
	orderID := uuid.New()

	require.NoError(t, s.AddOrder(orderID, decimal.NewFromFloat(2.5)))
	require.NoError(t, s.AddOrder(uuid.New(), decimal.NewFromFloat(1.5)))
	require.NoError(t, s.RemoveOrder(orderID))

	assert.Equal(t, "1.5", s.TotalWeightKg.String())
	assert.Len(t, s.Orders, 1)

	assert.Error(t, s.RemoveOrder(orderID))
}

func TestShipment_AssignVehicle_BelowCurrentLoad(t *testing.T) {
	s := pendingShipment(t)
	require.NoError(t, s.AddOrder(uuid.New(), decimal.NewFromInt(20)))

	err := s.AssignVehicle(uuid.New(), decimal.NewFromInt(10))
	assert.ErrorIs(t, err, shared.ErrCapacityExceeded)
}

func TestShipment_Lifecycle(t *testing.T) {
	s := pendingShipment(t)

	// Cannot depart empty or without an employee
	assert.Error(t, s.Depart())
	require.NoError(t, s.AddOrder(uuid.New(), decimal.NewFromInt(1)))
	assert.Error(t, s.Depart())

	require.NoError(t, s.AssignEmployee(uuid.New(), s.OfficeID))
	require.NoError(t, s.Depart())
	assert.Equal(t, StatusInTransit, s.Status)
	require.NotNil(t, s.DepartedAt)

	// In-transit shipments are frozen
	assert.Error(t, s.AddOrder(uuid.New(), decimal.NewFromInt(1)))
	assert.Error(t, s.Cancel())

	require.NoError(t, s.Complete())
	assert.Equal(t, StatusCompleted, s.Status)
	assert.Error(t, s.Complete())
}

func TestShipment_CancelPendingOnly(t *testing.T) {
	s := pendingShipment(t)
	require.NoError(t, s.Cancel())
	assert.Equal(t, StatusCancelled, s.Status)
	assert.False(t, s.Status.IsActive())
}
