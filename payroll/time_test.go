package payroll_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-payroll/payroll"
)

func TestParseTimestamp(t *testing.T) {
	reference := payroll.Date(2025, time.June, 1)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"24-12-2025 18:00", payroll.DateTime(2025, time.December, 24, 18, 0)},
		{"2023-12-23 23:59", payroll.DateTime(2023, time.December, 23, 23, 59)},
		{"2023-12-23 23:59:30", time.Date(2023, time.December, 23, 23, 59, 30, 0, time.UTC)},
		{"24-12-2025 18:00:15", time.Date(2025, time.December, 24, 18, 0, 15, 0, time.UTC)},
		{"12-24 18:00", payroll.DateTime(2025, time.December, 24, 18, 0)},
		// year-day-month wins over ISO when both would parse
		{"2025-05-06 10:00", payroll.DateTime(2025, time.June, 5, 10, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := payroll.ParseTimestamp(tt.in, reference)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimestamp_Garbage(t *testing.T) {
	_, err := payroll.ParseTimestamp("next tuesday", payroll.Date(2025, time.June, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrInvalidTimestamp)
	assert.True(t, payroll.IsClientError(err))

	var tsErr *payroll.TimestampError
	require.ErrorAs(t, err, &tsErr)
	assert.Equal(t, "next tuesday", tsErr.Input)
	assert.NotEmpty(t, tsErr.Attempts)
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, payroll.DaysIn(2024, time.February))
	assert.Equal(t, 28, payroll.DaysIn(2025, time.February))
	assert.Equal(t, 31, payroll.DaysIn(2025, time.December))
}

func TestClockOf(t *testing.T) {
	assert.Equal(t, payroll.Clock(22, 15), payroll.ClockOf(at(3, 22, 15)))
	assert.Equal(t, payroll.Clock(0, 0), payroll.ClockOf(at(3, 0, 0)))
}

// =============================================================================
// SHIFTS
// =============================================================================

func TestNewShift(t *testing.T) {
	t.Run("break is taken off the end", func(t *testing.T) {
		s, err := payroll.NewShift(at(3, 8, 0), at(3, 16, 0), 30*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, at(3, 15, 30), s.End)
		assert.Equal(t, 7*time.Hour+30*time.Minute, s.Duration())
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := payroll.NewShift(at(3, 16, 0), at(3, 8, 0), 0)
		assert.ErrorIs(t, err, payroll.ErrInvalidShift)
	})

	t.Run("break longer than the shift", func(t *testing.T) {
		_, err := payroll.NewShift(at(3, 8, 0), at(3, 9, 0), 2*time.Hour)
		assert.ErrorIs(t, err, payroll.ErrInvalidShift)
	})

	t.Run("negative break", func(t *testing.T) {
		_, err := payroll.NewShift(at(3, 8, 0), at(3, 9, 0), -time.Minute)
		assert.ErrorIs(t, err, payroll.ErrInvalidShift)
	})

	t.Run("crossing two midnights", func(t *testing.T) {
		_, err := payroll.NewShift(at(3, 22, 0), at(5, 2, 0), 0)
		assert.ErrorIs(t, err, payroll.ErrInvalidShift)
		assert.True(t, payroll.IsClientError(err))
	})

	t.Run("ending exactly at the second midnight", func(t *testing.T) {
		_, err := payroll.NewShift(at(3, 22, 0), at(5, 0, 0), 0)
		assert.ErrorIs(t, err, payroll.ErrInvalidShift)
	})
}
