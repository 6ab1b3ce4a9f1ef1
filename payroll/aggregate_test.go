package payroll_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-payroll/payroll"
)

func TestTotalEarned_TruncatesPartialMinutes(t *testing.T) {
	entries := []payroll.Entry{
		{Duration: 90*time.Second + 59*time.Second, RatePerHour: 60, Kind: payroll.EntryBase}, // 2m29s -> 2 minutes
	}
	assert.True(t, dec("2").Equal(payroll.TotalEarned(entries)))
}

func TestTotalEarned_Empty(t *testing.T) {
	assert.True(t, payroll.TotalEarned(nil).IsZero())
}

func TestTotalEarned_FractionalRates(t *testing.T) {
	// 0.1 + 0.2 style rates must not drift
	entries := []payroll.Entry{
		{Duration: 60 * time.Minute, RatePerHour: 0.1, Kind: payroll.EntryBase},
		{Duration: 60 * time.Minute, RatePerHour: 0.2, Kind: payroll.EntryGeneral},
	}
	assert.Equal(t, "0.30", payroll.TotalEarned(entries).StringFixed(2))
}

func TestTotalDuration(t *testing.T) {
	period := march()
	shifts := []payroll.Shift{
		shift(at(3, 8, 0), at(3, 16, 0)),
		shift(at(4, 22, 0), at(5, 2, 0)),
		shift(payroll.DateTime(2025, time.February, 27, 8, 0), payroll.DateTime(2025, time.February, 27, 12, 0)), // outside
		shift(payroll.DateTime(2025, time.February, 28, 20, 0), at(1, 0, 0)),                                      // ends at period start
	}

	assert.Equal(t, 12*time.Hour, payroll.TotalDuration(shifts, period))
}

func TestGroupByRate(t *testing.T) {
	entries := []payroll.Entry{
		{Duration: 2 * time.Hour, RatePerHour: 100, Kind: payroll.EntryBase},
		{Duration: time.Hour, RatePerHour: 30, Kind: payroll.EntryGeneral},
		{Duration: 3 * time.Hour, RatePerHour: 100, Kind: payroll.EntryBase},
		{Duration: 30 * time.Minute, RatePerHour: 30, Kind: payroll.EntryWeekday},
	}

	buckets := payroll.GroupByRate(entries)

	require.Len(t, buckets, 3)
	assert.Equal(t, payroll.EntryBase, buckets[0].Kind)
	assert.Equal(t, 5*time.Hour, buckets[0].Duration)
	assert.True(t, dec("500").Equal(buckets[0].Earned))
	assert.Equal(t, payroll.EntryGeneral, buckets[1].Kind)
	assert.Equal(t, payroll.EntryWeekday, buckets[2].Kind)
	assert.True(t, dec("15").Equal(buckets[2].Earned))
}

func TestHoursMinutes(t *testing.T) {
	h, m := payroll.HoursMinutes(37*time.Hour + 45*time.Minute + 30*time.Second)
	assert.Equal(t, int64(37), h)
	assert.Equal(t, int64(45), m)
}
