package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-payroll/payroll"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// March 2025: the 1st is a Saturday, the 2nd a Sunday, the 3rd a Monday.
func march() payroll.ReportingPeriod {
	return payroll.ReportingPeriod{Start: payroll.Date(2025, time.March, 1), End: endOfDay(2025, time.March, 31)}
}

func at(day, hour, minute int) time.Time {
	return payroll.DateTime(2025, time.March, day, hour, minute)
}

func shift(start, end time.Time) payroll.Shift {
	return payroll.Shift{ID: "s", Start: start, End: end}
}

func general(rate float64, start, end payroll.TimeOfDay) payroll.BonusRule {
	return payroll.BonusRule{RatePerHour: rate, DailyStart: start, DailyEnd: end}
}

func onDays(rate float64, start, end payroll.TimeOfDay, days ...time.Weekday) payroll.BonusRule {
	set := payroll.NewWeekdaySet(days...)
	return payroll.BonusRule{RatePerHour: rate, DailyStart: start, DailyEnd: end, Weekdays: &set}
}

func wage(base float64, generalBonuses []payroll.BonusRule, weekdayBonuses []payroll.BonusRule) payroll.WageConfiguration {
	return payroll.WageConfiguration{
		BaseRatePerHour: base,
		Period:          payroll.MonthPeriod(),
		GeneralBonuses:  generalBonuses,
		WeekdayBonuses:  weekdayBonuses,
	}
}

func entriesOfKind(entries []payroll.Entry, kind payroll.EntryKind) []payroll.Entry {
	var out []payroll.Entry
	for _, e := range entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// =============================================================================
// ALLOCATION
// =============================================================================

func TestDecompose_Additivity(t *testing.T) {
	// GIVEN: Base 100/h and one evening bonus of 20/h from 18:00 to 23:59
	// WHEN: A 2h shift falls entirely inside the bonus window
	// THEN: Earned = 2h * (100 + 20)

	cfg := wage(100, []payroll.BonusRule{general(20, payroll.Clock(18, 0), payroll.Clock(23, 59))}, nil)

	entries := payroll.Decompose(shift(at(3, 19, 0), at(3, 21, 0)), march(), cfg)

	require.Len(t, entries, 2)
	assert.True(t, dec("240").Equal(payroll.TotalEarned(entries)), "got %s", payroll.TotalEarned(entries))
}

func TestDecompose_MidnightSplitPreservesDuration(t *testing.T) {
	// GIVEN: A shift from 22:00 to 02:00 the next day, inside the period
	// WHEN: Decomposing it
	// THEN: Two base entries whose durations add up to 4h

	cfg := wage(100, nil, nil)

	entries := payroll.Decompose(shift(at(3, 22, 0), at(4, 2, 0)), march(), cfg)

	base := entriesOfKind(entries, payroll.EntryBase)
	require.Len(t, base, 2)
	assert.Equal(t, 2*time.Hour, base[0].Duration)
	assert.Equal(t, 2*time.Hour, base[1].Duration)
	assert.Equal(t, 4*time.Hour, base[0].Duration+base[1].Duration)
	assert.True(t, dec("400").Equal(payroll.TotalEarned(entries)))
}

func TestDecompose_WorkedExample(t *testing.T) {
	// Base 100/h, night bonus 00:00-06:00 +30/h, Mon 22:00 - Tue 02:00
	cfg := wage(100, []payroll.BonusRule{general(30, payroll.Clock(0, 0), payroll.Clock(6, 0))}, nil)

	entries := payroll.Decompose(shift(at(3, 22, 0), at(4, 2, 0)), march(), cfg)

	assert.Equal(t, []payroll.Entry{
		{Duration: 2 * time.Hour, RatePerHour: 100, Kind: payroll.EntryBase},
		{Duration: 2 * time.Hour, RatePerHour: 30, Kind: payroll.EntryGeneral},
		{Duration: 2 * time.Hour, RatePerHour: 100, Kind: payroll.EntryBase},
	}, entries)
	assert.True(t, dec("460").Equal(payroll.TotalEarned(entries)))
}

func TestDecompose_TouchingWindowYieldsNoBonus(t *testing.T) {
	cfg := wage(100, []payroll.BonusRule{general(50, payroll.Clock(11, 0), payroll.Clock(12, 0))}, nil)

	entries := payroll.Decompose(shift(at(3, 10, 0), at(3, 11, 0)), march(), cfg)

	assert.Empty(t, entriesOfKind(entries, payroll.EntryGeneral))
	require.Len(t, entries, 1)
	assert.Equal(t, payroll.EntryBase, entries[0].Kind)
}

func TestDecompose_WeekdayRestriction(t *testing.T) {
	// GIVEN: A Sunday-only bonus of 40/h from 06:00 to 24:00
	cfg := wage(100, nil, []payroll.BonusRule{onDays(40, payroll.Clock(6, 0), payroll.EndOfDay, time.Sunday)})

	t.Run("monday shift gets nothing", func(t *testing.T) {
		entries := payroll.Decompose(shift(at(3, 8, 0), at(3, 12, 0)), march(), cfg)
		assert.Empty(t, entriesOfKind(entries, payroll.EntryWeekday))
	})

	t.Run("sunday shift gets the overlap", func(t *testing.T) {
		entries := payroll.Decompose(shift(at(2, 5, 0), at(2, 9, 0)), march(), cfg)
		weekday := entriesOfKind(entries, payroll.EntryWeekday)
		require.Len(t, weekday, 1)
		assert.Equal(t, 3*time.Hour, weekday[0].Duration)
		assert.Equal(t, 40.0, weekday[0].RatePerHour)
	})

	t.Run("weekday is taken from each piece's own date", func(t *testing.T) {
		// Saturday 22:00 - Sunday 08:00: only the Sunday piece qualifies
		entries := payroll.Decompose(shift(at(1, 22, 0), at(2, 8, 0)), march(), cfg)
		weekday := entriesOfKind(entries, payroll.EntryWeekday)
		require.Len(t, weekday, 1)
		assert.Equal(t, 2*time.Hour, weekday[0].Duration)
	})
}

func TestDecompose_BonusesStack(t *testing.T) {
	// GIVEN: Two overlapping general windows and a weekday window covering the same hour
	cfg := wage(100,
		[]payroll.BonusRule{
			general(10, payroll.Clock(18, 0), payroll.Clock(22, 0)),
			general(20, payroll.Clock(20, 0), payroll.EndOfDay),
		},
		[]payroll.BonusRule{onDays(5, payroll.Clock(0, 0), payroll.EndOfDay, time.Monday)},
	)

	// WHEN: Working 20:00-21:00 on a Monday
	entries := payroll.Decompose(shift(at(3, 20, 0), at(3, 21, 0)), march(), cfg)

	// THEN: The hour is paid at base and once for every window
	require.Len(t, entries, 4)
	assert.True(t, dec("135").Equal(payroll.TotalEarned(entries)))
}

func TestDecompose_EndOfDayWindowCoversMidnightPiece(t *testing.T) {
	cfg := wage(0, []payroll.BonusRule{general(60, payroll.Clock(22, 0), payroll.EndOfDay)}, nil)

	entries := payroll.Decompose(shift(at(3, 23, 0), at(4, 1, 0)), march(), cfg)

	bonus := entriesOfKind(entries, payroll.EntryGeneral)
	require.Len(t, bonus, 1)
	assert.Equal(t, time.Hour, bonus[0].Duration)
}

func TestDecompose_NegativeRateIsADeduction(t *testing.T) {
	cfg := wage(100, []payroll.BonusRule{general(-25, payroll.Clock(12, 0), payroll.Clock(13, 0))}, nil)

	entries := payroll.Decompose(shift(at(3, 12, 0), at(3, 13, 0)), march(), cfg)

	assert.True(t, dec("75").Equal(payroll.TotalEarned(entries)))
}

// =============================================================================
// PERIOD INCLUSION
// =============================================================================

func TestDecompose_InclusionPolicy(t *testing.T) {
	cfg := wage(60, nil, nil)

	t.Run("first piece before the period start is dropped", func(t *testing.T) {
		s := shift(payroll.DateTime(2025, time.February, 28, 22, 0), at(1, 2, 0))
		entries := payroll.Decompose(s, march(), cfg)
		require.Len(t, entries, 1)
		assert.Equal(t, 2*time.Hour, entries[0].Duration)
	})

	t.Run("second piece after the period end is dropped", func(t *testing.T) {
		s := shift(at(31, 22, 0), payroll.DateTime(2025, time.April, 1, 3, 0))
		entries := payroll.Decompose(s, march(), cfg)
		require.Len(t, entries, 1)
		assert.Equal(t, 2*time.Hour, entries[0].Duration)
	})

	t.Run("same-day shift outside the period contributes nothing", func(t *testing.T) {
		s := shift(payroll.DateTime(2025, time.April, 2, 8, 0), payroll.DateTime(2025, time.April, 2, 16, 0))
		assert.Empty(t, payroll.Decompose(s, march(), cfg))
	})

	t.Run("shift ending exactly at midnight has one piece", func(t *testing.T) {
		entries := payroll.Decompose(shift(at(3, 22, 0), at(4, 0, 0)), march(), cfg)
		require.Len(t, entries, 1)
		assert.Equal(t, 2*time.Hour, entries[0].Duration)
	})
}

func TestTotals_OverlapTestsDiffer(t *testing.T) {
	// GIVEN: A shift straddling the period start
	// THEN: TotalDuration counts all of it, Decompose only the part after midnight

	s := shift(payroll.DateTime(2025, time.February, 28, 22, 0), at(1, 2, 0))
	cfg := wage(60, nil, nil)

	assert.Equal(t, 4*time.Hour, payroll.TotalDuration([]payroll.Shift{s}, march()))
	assert.True(t, dec("120").Equal(payroll.TotalEarned(payroll.Decompose(s, march(), cfg))))
}

func TestSplitAtMidnight(t *testing.T) {
	same := shift(at(3, 8, 0), at(3, 16, 0))
	assert.Equal(t, []payroll.Shift{same}, payroll.SplitAtMidnight(same))

	pieces := payroll.SplitAtMidnight(shift(at(3, 20, 0), at(4, 4, 0)))
	require.Len(t, pieces, 2)
	assert.Equal(t, at(3, 20, 0), pieces[0].Start)
	assert.Equal(t, at(4, 0, 0), pieces[0].End)
	assert.Equal(t, at(4, 0, 0), pieces[1].Start)
	assert.Equal(t, at(4, 4, 0), pieces[1].End)
}
