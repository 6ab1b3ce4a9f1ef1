package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-payroll/payroll"
	"github.com/warp/shift-payroll/store/postgres"
)

// Runs against a real database only when PAYROLL_TEST_DATABASE_URL is set.
func newStore(t *testing.T) *postgres.Store {
	t.Helper()
	url := os.Getenv("PAYROLL_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PAYROLL_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := postgres.Connect(ctx, postgres.Options{URL: url, MaxConns: 2})
	require.NoError(t, err)
	require.NoError(t, store.DropShifts(ctx))
	t.Cleanup(func() {
		store.DropShifts(context.Background())
		store.Close()
	})
	return store
}

func TestStore_ShiftLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	march := payroll.ReportingPeriod{
		Start: payroll.Date(2025, time.March, 1),
		End:   payroll.DateTime(2025, time.March, 31, 23, 59),
	}

	added, err := store.AddShift(ctx, payroll.Shift{
		Start: payroll.DateTime(2025, time.March, 3, 22, 0),
		End:   payroll.DateTime(2025, time.March, 4, 2, 0),
	})
	require.NoError(t, err)

	shifts, err := store.ShiftsOverlapping(ctx, march.Start, march.End)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, added.Start, shifts[0].Start)
	assert.Equal(t, time.UTC, shifts[0].Start.Location())

	end := payroll.DateTime(2025, time.March, 4, 3, 0)
	updated, err := store.UpdateShift(ctx, added.ID, nil, &end)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Hour, updated.Duration())

	require.NoError(t, store.RemoveShift(ctx, added.ID))
	assert.ErrorIs(t, store.RemoveShift(ctx, added.ID), payroll.ErrShiftNotFound)
}

func TestStore_Summaries(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	period := payroll.ReportingPeriod{
		Start: payroll.Date(2019, time.January, 1),
		End:   payroll.DateTime(2019, time.January, 31, 23, 59),
	}
	require.NoError(t, store.SaveSummary(ctx, payroll.PeriodSummary{
		ID:        string(payroll.NewShiftID()),
		Period:    period,
		Worked:    2 * time.Hour,
		Earned:    decimal.RequireFromString("200.50"),
		CreatedAt: time.Now().UTC(),
	}))

	has, err := store.HasSummary(ctx, period)
	require.NoError(t, err)
	assert.True(t, has)
}
