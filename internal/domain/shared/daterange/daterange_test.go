package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, time.June, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRejectsInvalidRanges(t *testing.T) {
	_, err := New(day(15), day(15))
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(day(15), day(10))
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(time.Time{}, day(10))
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestNights(t *testing.T) {
	dr, err := New(day(10), day(15))
	require.NoError(t, err)
	assert.Equal(t, 5, dr.Nights())

	single, err := New(day(10), day(11))
	require.NoError(t, err)
	assert.Equal(t, 1, single.Nights())
}

func TestOverlaps(t *testing.T) {
	base, err := New(day(10), day(15))
	require.NoError(t, err)

	tests := []struct {
		name     string
		checkIn  int
		checkOut int
		want     bool
	}{
		{"same range", 10, 15, true},
		{"starts inside", 12, 18, true},
		{"ends inside", 8, 12, true},
		{"covers fully", 8, 18, true},
		{"single shared night", 14, 16, true},
		{"checkout on checkin day", 5, 10, false},
		{"checkin on checkout day", 15, 20, false},
		{"entirely before", 1, 5, false},
		{"entirely after", 20, 25, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other, err := New(day(tt.checkIn), day(tt.checkOut))
			require.NoError(t, err)
			assert.Equal(t, tt.want, base.Overlaps(other))
			assert.Equal(t, tt.want, other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

func TestAdjacent(t *testing.T) {
	a, _ := New(day(10), day(15))
	b, _ := New(day(15), day(20))
	assert.True(t, a.Adjacent(b))
	assert.True(t, b.Adjacent(a))
	assert.False(t, a.Overlaps(b))
}

func TestContainsDate(t *testing.T) {
	dr, _ := New(day(10), day(15))
	assert.True(t, dr.ContainsDate(day(10)))
	assert.True(t, dr.ContainsDate(day(14)))
	assert.False(t, dr.ContainsDate(day(15)), "checkout night is not charged")
	assert.False(t, dr.ContainsDate(day(9)))
}

func TestEachNightVisitsChargedNightsInOrder(t *testing.T) {
	dr, _ := New(day(10), day(13))
	var visited []time.Time
	dr.EachNight(func(night time.Time) {
		visited = append(visited, night)
	})
	require.Len(t, visited, 3)
	assert.Equal(t, day(10), visited[0])
	assert.Equal(t, day(12), visited[2])
}
