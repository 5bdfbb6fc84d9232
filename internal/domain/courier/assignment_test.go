package courier

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkAssignment(t *testing.T, start time.Time, end *time.Time) *ShipperAssignment {
	a, err := NewShipperAssignment(uuid.New(), uuid.New(), 79, 26734, start, end)
	require.NoError(t, err)
	return a
}

func timePtr(tm time.Time) *time.Time { return &tm }

func TestNewShipperAssignment_Validation(t *testing.T) {
	now := time.Now()

	_, err := NewShipperAssignment(uuid.Nil, uuid.New(), 79, 1, now, nil)
	assert.Error(t, err)

	_, err = NewShipperAssignment(uuid.New(), uuid.New(), 0, 1, now, nil)
	assert.Error(t, err)

	end := now.Add(-time.Hour)
	_, err = NewShipperAssignment(uuid.New(), uuid.New(), 79, 1, now, &end)
	assert.Error(t, err)
}

func TestShipperAssignment_Overlaps(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		aStart   time.Time
		aEnd     *time.Time
		bStart   time.Time
		bEnd     *time.Time
		overlaps bool
	}{
		{"disjoint", base, timePtr(base.Add(24 * time.Hour)),
			base.Add(48 * time.Hour), timePtr(base.Add(72 * time.Hour)), false},
		{"adjacent half-open intervals do not overlap", base, timePtr(base.Add(24 * time.Hour)),
			base.Add(24 * time.Hour), timePtr(base.Add(48 * time.Hour)), false},
		{"partial overlap", base, timePtr(base.Add(24 * time.Hour)),
			base.Add(12 * time.Hour), timePtr(base.Add(36 * time.Hour)), true},
		{"contained", base, timePtr(base.Add(72 * time.Hour)),
			base.Add(12 * time.Hour), timePtr(base.Add(24 * time.Hour)), true},
		{"open-ended overlaps later bounded", base, nil,
			base.Add(1000 * time.Hour), timePtr(base.Add(1001 * time.Hour)), true},
		{"bounded before open-ended start", base, timePtr(base.Add(10 * time.Hour)),
			base.Add(15 * time.Hour), nil, false},
		{"two open-ended always overlap", base, nil,
			base.Add(9999 * time.Hour), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mkAssignment(t, tt.aStart, tt.aEnd)
			b := mkAssignment(t, tt.bStart, tt.bEnd)
			assert.Equal(t, tt.overlaps, a.Overlaps(b))
			assert.Equal(t, tt.overlaps, b.Overlaps(a), "overlap must be symmetric")
		})
	}
}

func TestShipperAssignment_ActiveAt(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	bounded := mkAssignment(t, start, &end)
	assert.False(t, bounded.ActiveAt(start.Add(-time.Minute)))
	assert.True(t, bounded.ActiveAt(start))
	assert.True(t, bounded.ActiveAt(start.Add(time.Hour)))
	// End is exclusive
	assert.False(t, bounded.ActiveAt(end))

	open := mkAssignment(t, start, nil)
	assert.True(t, open.ActiveAt(start.AddDate(10, 0, 0)))
}

func TestShipperAssignment_Covers(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	a := mkAssignment(t, start, nil)

	at := start.Add(time.Hour)
	assert.True(t, a.Covers(79, 26734, at))
	assert.False(t, a.Covers(79, 99999, at))
	assert.False(t, a.Covers(1, 26734, at))
}

func TestShipperAssignment_Terminate(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	a := mkAssignment(t, start, nil)

	require.NoError(t, a.Terminate(start.Add(time.Hour)))
	require.NotNil(t, a.EndAt)
	assert.False(t, a.ActiveAt(start.Add(2*time.Hour)))

	// Already terminated
	assert.Error(t, a.Terminate(start.Add(3*time.Hour)))

	b := mkAssignment(t, start, nil)
	assert.Error(t, b.Terminate(start.Add(-time.Hour)))
}
