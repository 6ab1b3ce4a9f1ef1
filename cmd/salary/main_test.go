package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-payroll/factory"
	"github.com/warp/shift-payroll/payroll"
	"github.com/warp/shift-payroll/payroll/store"
)

func newTestApp(t *testing.T, stdin string) (*app, *store.Memory, *bytes.Buffer) {
	t.Helper()
	mem := store.NewMemory()
	wage := payroll.WageConfiguration{
		BaseRatePerHour: 100,
		Period:          payroll.MonthPeriod(),
		GeneralBonuses: []payroll.BonusRule{
			{RatePerHour: 30, DailyStart: payroll.Clock(0, 0), DailyEnd: payroll.Clock(6, 0)},
		},
	}
	out := &bytes.Buffer{}
	return &app{
		store:    mem,
		calc:     payroll.NewCalculator(mem, wage, slog.New(slog.NewTextHandler(io.Discard, nil))),
		now:      func() time.Time { return time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC) },
		in:       strings.NewReader(stdin),
		out:      out,
		wageFile: filepath.Join(t.TempDir(), "wage.json"),
	}, mem, out
}

func allShifts(t *testing.T, mem *store.Memory) []payroll.Shift {
	t.Helper()
	shifts, err := mem.ListShifts(context.Background(), payroll.ListFilter{})
	require.NoError(t, err)
	return shifts
}

func TestAddAndCalculate(t *testing.T) {
	ctx := context.Background()
	a, mem, out := newTestApp(t, "")

	require.NoError(t, a.run(ctx, []string{"add", "03-03-2025 22:00", "04-03-2025 02:30", "-break", "30"}))
	assert.Contains(t, out.String(), "break is: 30 minutes")

	shifts := allShifts(t, mem)
	require.Len(t, shifts, 1)
	assert.Equal(t, payroll.DateTime(2025, time.March, 4, 2, 0), shifts[0].End)

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"calculate"}))
	assert.Contains(t, out.String(), "You have worked for: 4 hours and 0 minutes")
	assert.Contains(t, out.String(), "You have earned 460.00 kr.")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"calculate", "-offset", "1"}))
	assert.Contains(t, out.String(), "You have earned 0.00 kr.")
}

func TestAdd_Rejects(t *testing.T) {
	ctx := context.Background()
	a, mem, _ := newTestApp(t, "")

	err := a.run(ctx, []string{"add", "03-03-2025 16:00", "03-03-2025 08:00"})
	assert.ErrorIs(t, err, payroll.ErrInvalidShift)

	err = a.run(ctx, []string{"add", "yesterday", "03-03-2025 08:00"})
	assert.ErrorIs(t, err, payroll.ErrInvalidTimestamp)

	err = a.run(ctx, []string{"add", "03-03-2025 08:00"})
	assert.Error(t, err)

	assert.Empty(t, allShifts(t, mem))
}

func TestListEditRemove(t *testing.T) {
	ctx := context.Background()
	a, mem, out := newTestApp(t, "")

	require.NoError(t, a.run(ctx, []string{"add", "10-02-2025 08:00", "10-02-2025 16:00"}))
	require.NoError(t, a.run(ctx, []string{"add", "03-03-2025 08:00", "03-03-2025 16:00"}))
	require.NoError(t, a.run(ctx, []string{"add", "05-03-2025 08:00", "05-03-2025 16:00"}))

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"list", "-sort"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "shift start: 2025-03-05 08:00:00")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"list", "-all"}))
	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), 3)

	// edit
	target := allShifts(t, mem)[1]
	out.Reset()
	require.NoError(t, a.run(ctx, []string{"edit-shift", string(target.ID), "-end", "03-03-2025 18:00"}))
	assert.Contains(t, out.String(), "shift_end = 2025-03-03 18:00:00")
	assert.NotContains(t, out.String(), "shift_start")

	err := a.run(ctx, []string{"edit-shift", string(target.ID)})
	assert.ErrorIs(t, err, payroll.ErrInvalidShift)

	// remove
	require.NoError(t, a.run(ctx, []string{"remove", string(target.ID)}))
	assert.Len(t, allShifts(t, mem), 2)
	assert.ErrorIs(t, a.run(ctx, []string{"remove", string(target.ID)}), payroll.ErrShiftNotFound)
}

func TestDropDatabase(t *testing.T) {
	ctx := context.Background()

	t.Run("declined", func(t *testing.T) {
		a, mem, out := newTestApp(t, "n\n")
		require.NoError(t, a.run(ctx, []string{"add", "03-03-2025 08:00", "03-03-2025 16:00"}))

		require.NoError(t, a.run(ctx, []string{"drop-database"}))
		assert.Contains(t, out.String(), "The data is safe!")
		assert.Len(t, allShifts(t, mem), 1)
	})

	t.Run("confirmed", func(t *testing.T) {
		a, mem, out := newTestApp(t, "Y\n")
		require.NoError(t, a.run(ctx, []string{"add", "03-03-2025 08:00", "03-03-2025 16:00"}))

		require.NoError(t, a.run(ctx, []string{"drop-database"}))
		assert.Contains(t, out.String(), "Successfully deleted all data")
		assert.Empty(t, allShifts(t, mem))
	})
}

func TestPeriodCommand(t *testing.T) {
	a, _, out := newTestApp(t, "")

	require.NoError(t, a.run(context.Background(), []string{"period", "-offset", "1"}))
	assert.Equal(t, "2025-02-01 00:00:00 to 2025-02-28 23:59:00\n", out.String())
}

func TestInitWage(t *testing.T) {
	a, _, _ := newTestApp(t, "")

	require.NoError(t, a.initWage([]string{"-base-rate", "136.74", "-start-day", "21"}))

	cfg, err := factory.Load(a.wageFile)
	require.NoError(t, err)
	assert.Equal(t, 136.74, cfg.BaseRatePerHour)
	assert.Equal(t, payroll.CustomPeriod(21), cfg.Period)

	assert.Error(t, a.initWage(nil), "refuses to overwrite")
	assert.NoError(t, a.initWage([]string{"-force"}))
}

func TestUnknownCommand(t *testing.T) {
	a, _, _ := newTestApp(t, "")
	assert.ErrorContains(t, a.run(context.Background(), []string{"payday"}), "unknown command")
}
