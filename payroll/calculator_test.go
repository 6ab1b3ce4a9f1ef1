package payroll_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-payroll/payroll"
	"github.com/warp/shift-payroll/payroll/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededStore(t *testing.T, shifts ...payroll.Shift) *store.Memory {
	t.Helper()
	mem := store.NewMemory()
	for _, s := range shifts {
		_, err := mem.AddShift(context.Background(), s)
		require.NoError(t, err)
	}
	return mem
}

func TestCalculator_Calculate(t *testing.T) {
	// GIVEN: Base 100/h, night bonus 00:00-06:00 +30/h and three shifts
	cfg := wage(100, []payroll.BonusRule{general(30, payroll.Clock(0, 0), payroll.Clock(6, 0))}, nil)
	mem := seededStore(t,
		payroll.Shift{Start: at(3, 22, 0), End: at(4, 2, 0)},  // 460
		payroll.Shift{Start: at(10, 8, 0), End: at(10, 12, 0)}, // 400
		payroll.Shift{Start: payroll.DateTime(2025, time.April, 2, 8, 0), End: payroll.DateTime(2025, time.April, 2, 9, 0)},
	)
	calc := payroll.NewCalculator(mem, cfg, quietLogger())

	// WHEN: Calculating March
	period, err := calc.Period(at(15, 12, 0), 0)
	require.NoError(t, err)
	report, err := calc.Calculate(context.Background(), period)
	require.NoError(t, err)

	// THEN: Only the March shifts count
	assert.Equal(t, 2, report.ShiftCount)
	assert.Equal(t, 8*time.Hour, report.Worked)
	assert.True(t, dec("860").Equal(report.Earned), "got %s", report.Earned)
	assert.Equal(t, 860.0, report.EarnedFloat())
	require.Len(t, report.ByRate, 2)
}

func TestCalculator_Idempotent(t *testing.T) {
	cfg := wage(187.5, []payroll.BonusRule{general(20.77, payroll.Clock(18, 0), payroll.Clock(23, 59))}, nil)
	mem := seededStore(t,
		payroll.Shift{Start: at(5, 17, 13), End: at(5, 23, 41)},
		payroll.Shift{Start: at(6, 9, 0), End: at(6, 17, 30)},
	)
	calc := payroll.NewCalculator(mem, cfg, quietLogger())
	period := march()

	first, err := calc.CalculateTotal(context.Background(), period)
	require.NoError(t, err)
	second, err := calc.CalculateTotal(context.Background(), period)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculator_FetchFailure(t *testing.T) {
	// GIVEN: A store that cannot be read
	mem := store.NewMemory()
	mem.FailWith = errors.New("disk on fire")
	calc := payroll.NewCalculator(mem, wage(100, nil, nil), quietLogger())

	// WHEN: Calculating
	_, err := calc.Calculate(context.Background(), march())

	// THEN: The failure is reported as a record fetch error, with its cause
	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrRecordFetch)
	assert.ErrorContains(t, err, "disk on fire")
	assert.False(t, payroll.IsClientError(err))

	_, err = calc.TotalDuration(context.Background(), march())
	assert.ErrorIs(t, err, payroll.ErrRecordFetch)
}

func TestCalculator_EmptyPeriod(t *testing.T) {
	calc := payroll.NewCalculator(store.NewMemory(), wage(100, nil, nil), quietLogger())

	report, err := calc.Calculate(context.Background(), march())
	require.NoError(t, err)
	assert.True(t, report.Earned.IsZero())
	assert.Zero(t, report.Worked)
	assert.Empty(t, report.ByRate)
}

func TestReport_Summarize(t *testing.T) {
	report := payroll.Report{Period: march(), Worked: 3 * time.Hour, Earned: dec("300"), ShiftCount: 1}
	now := payroll.Date(2025, time.April, 1)

	s := report.Summarize("sum-1", now)

	assert.Equal(t, "sum-1", s.ID)
	assert.Equal(t, march(), s.Period)
	assert.Equal(t, 3*time.Hour, s.Worked)
	assert.True(t, dec("300").Equal(s.Earned))
	assert.Equal(t, now, s.CreatedAt)
}
