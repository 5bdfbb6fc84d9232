package courier

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lastmile/backend/internal/domain/courier"
	"github.com/lastmile/backend/internal/domain/network"
	"github.com/lastmile/backend/internal/domain/shared"
)

type fakeAssignmentRepo struct {
	assignments map[uuid.UUID]*courier.ShipperAssignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[uuid.UUID]*courier.ShipperAssignment)}
}

func (r *fakeAssignmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*courier.ShipperAssignment, error) {
	a, ok := r.assignments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return a, nil
}

func (r *fakeAssignmentRepo) FindByShipper(ctx context.Context, shipperID uuid.UUID) ([]courier.ShipperAssignment, error) {
	var out []courier.ShipperAssignment
	for _, a := range r.assignments {
		if a.ShipperID == shipperID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) FindOverlapping(ctx context.Context, shipperID uuid.UUID, cityCode, wardCode int, startAt time.Time, endAt *time.Time) ([]courier.ShipperAssignment, error) {
	probe := &courier.ShipperAssignment{ShipperID: shipperID, CityCode: cityCode, WardCode: wardCode, StartAt: startAt, EndAt: endAt}
	var out []courier.ShipperAssignment
	for _, a := range r.assignments {
		if a.SameArea(probe) && a.Overlaps(probe) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) FindActiveCovering(ctx context.Context, shipperID uuid.UUID, cityCode, wardCode int, at time.Time) (*courier.ShipperAssignment, error) {
	for _, a := range r.assignments {
		if a.ShipperID == shipperID && a.Covers(cityCode, wardCode, at) {
			return a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAssignmentRepo) Save(ctx context.Context, a *courier.ShipperAssignment) error {
	r.assignments[a.ID] = a
	return nil
}

func (r *fakeAssignmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.assignments, id)
	return nil
}

type fakeEmployeeRepo struct {
	employees map[uuid.UUID]*network.Employee
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[uuid.UUID]*network.Employee)}
}

func (r *fakeEmployeeRepo) FindByID(ctx context.Context, id uuid.UUID) (*network.Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

func (r *fakeEmployeeRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*network.Employee, error) {
	for _, e := range r.employees {
		if e.UserID == userID {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeEmployeeRepo) FindByOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]network.Employee, error) {
	return nil, nil
}

func (r *fakeEmployeeRepo) Save(ctx context.Context, e *network.Employee) error {
	r.employees[e.ID] = e
	return nil
}

type assignmentFixture struct {
	service     *AssignmentService
	assignments *fakeAssignmentRepo
	employees   *fakeEmployeeRepo
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()

	assignments := newFakeAssignmentRepo()
	employees := newFakeEmployeeRepo()
	service := NewAssignmentService(NewNoOpTransactionScope(assignments), employees, zap.NewNop())
	return &assignmentFixture{
		service:     service,
		assignments: assignments,
		employees:   employees,
	}
}

func (f *assignmentFixture) employee(t *testing.T, role network.EmployeeRole) *network.Employee {
	t.Helper()
	emp, err := network.NewEmployee(uuid.New(), uuid.New(), role)
	require.NoError(t, err)
	require.NoError(t, f.employees.Save(context.Background(), emp))
	return emp
}

func TestAssignmentService_Create(t *testing.T) {
	f := newAssignmentFixture(t)
	emp := f.employee(t, network.EmployeeShipper)

	resp, err := f.service.Create(context.Background(), CreateAssignmentRequest{
		ShipperID: emp.ID,
		CityCode:  1,
		WardCode:  101,
		StartAt:   time.Now(),
	})

	require.NoError(t, err)
	assert.Equal(t, emp.ID, resp.ShipperID)
	assert.Equal(t, emp.OfficeID, resp.OfficeID)
	assert.Nil(t, resp.EndAt)
}

func TestAssignmentService_Create_NonShipper(t *testing.T) {
	f := newAssignmentFixture(t)
	emp := f.employee(t, network.EmployeeDriver)

	_, err := f.service.Create(context.Background(), CreateAssignmentRequest{
		ShipperID: emp.ID,
		CityCode:  1,
		WardCode:  101,
		StartAt:   time.Now(),
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_ROLE", domainErr.Code)
}

func TestAssignmentService_Create_OverlapRejected(t *testing.T) {
	f := newAssignmentFixture(t)
	emp := f.employee(t, network.EmployeeShipper)
	start := time.Now()

	_, err := f.service.Create(context.Background(), CreateAssignmentRequest{
		ShipperID: emp.ID,
		CityCode:  1,
		WardCode:  101,
		StartAt:   start,
	})
	require.NoError(t, err)

	later := start.Add(48 * time.Hour)
	_, err = f.service.Create(context.Background(), CreateAssignmentRequest{
		ShipperID: emp.ID,
		CityCode:  1,
		WardCode:  101,
		StartAt:   later,
	})

	assert.ErrorIs(t, err, shared.ErrAssignmentOverlap)
}

func TestAssignmentService_Create_AdjacentRangesAllowed(t *testing.T) {
	f := newAssignmentFixture(t)
	emp := f.employee(t, network.EmployeeShipper)

	start := time.Now()
	end := start.Add(24 * time.Hour)
	_, err := f.service.Create(context.Background(), CreateAssignmentRequest{
		ShipperID: emp.ID,
		CityCode:  1,
		WardCode:  101,
		StartAt:   start,
		EndAt:     &end,
	})
	require.NoError(t, err)

	// A range starting exactly where the previous one ends does not overlap
	_, err = f.service.Create(context.Background(), CreateAssignmentRequest{
		ShipperID: emp.ID,
		CityCode:  1,
		WardCode:  101,
		StartAt:   end,
	})
	assert.NoError(t, err)
}

func TestAssignmentService_Create_OtherAreaAllowed(t *testing.T) {
	f := newAssignmentFixture(t)
	emp := f.employee(t, network.EmployeeShipper)
	start := time.Now()

	_, err := f.service.Create(context.Background(), CreateAssignmentRequest{
		ShipperID: emp.ID,
		CityCode:  1,
		WardCode:  101,
		StartAt:   start,
	})
	require.NoError(t, err)

	_, err = f.service.Create(context.Background(), CreateAssignmentRequest{
		ShipperID: emp.ID,
		CityCode:  1,
		WardCode:  102,
		StartAt:   start,
	})
	assert.NoError(t, err)
}

func TestAssignmentService_Terminate(t *testing.T) {
	f := newAssignmentFixture(t)
	emp := f.employee(t, network.EmployeeShipper)
	start := time.Now()

	created, err := f.service.Create(context.Background(), CreateAssignmentRequest{
		ShipperID: emp.ID,
		CityCode:  1,
		WardCode:  101,
		StartAt:   start,
	})
	require.NoError(t, err)

	at := start.Add(time.Hour)
	resp, err := f.service.Terminate(context.Background(), created.ID, TerminateAssignmentRequest{At: at})

	require.NoError(t, err)
	require.NotNil(t, resp.EndAt)
	assert.True(t, resp.EndAt.Equal(at))

	// The area frees up after the termination point
	_, err = f.service.Create(context.Background(), CreateAssignmentRequest{
		ShipperID: emp.ID,
		CityCode:  1,
		WardCode:  101,
		StartAt:   at,
	})
	assert.NoError(t, err)
}

func TestAssignmentService_Terminate_AlreadyTerminated(t *testing.T) {
	f := newAssignmentFixture(t)
	emp := f.employee(t, network.EmployeeShipper)
	start := time.Now()
	end := start.Add(24 * time.Hour)

	created, err := f.service.Create(context.Background(), CreateAssignmentRequest{
		ShipperID: emp.ID,
		CityCode:  1,
		WardCode:  101,
		StartAt:   start,
		EndAt:     &end,
	})
	require.NoError(t, err)

	_, err = f.service.Terminate(context.Background(), created.ID, TerminateAssignmentRequest{At: start.Add(time.Hour)})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestAssignmentService_ListByShipper(t *testing.T) {
	f := newAssignmentFixture(t)
	emp := f.employee(t, network.EmployeeShipper)
	other := f.employee(t, network.EmployeeShipper)
	start := time.Now()

	_, err := f.service.Create(context.Background(), CreateAssignmentRequest{ShipperID: emp.ID, CityCode: 1, WardCode: 101, StartAt: start})
	require.NoError(t, err)
	_, err = f.service.Create(context.Background(), CreateAssignmentRequest{ShipperID: other.ID, CityCode: 1, WardCode: 101, StartAt: start})
	require.NoError(t, err)

	out, err := f.service.ListByShipper(context.Background(), emp.ID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, emp.ID, out[0].ShipperID)
}

func TestAssignmentService_Delete(t *testing.T) {
	f := newAssignmentFixture(t)
	emp := f.employee(t, network.EmployeeShipper)

	created, err := f.service.Create(context.Background(), CreateAssignmentRequest{
		ShipperID: emp.ID,
		CityCode:  1,
		WardCode:  101,
		StartAt:   time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(context.Background(), created.ID))

	_, err = f.service.GetByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
