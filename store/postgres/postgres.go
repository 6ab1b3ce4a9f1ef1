/*
Package postgres provides a PostgreSQL-backed implementation of the shift stores.

PURPOSE:
  Same contract as store/sqlite, for deployments where several server
  instances share one database. Concurrency is left to PostgreSQL; there is
  no process-level mutex.

KEY TABLES:
  shifts:           shift_start / shift_end as TIMESTAMP (no time zone)
  period_summaries: one row per closed reporting period

USAGE:
  store, err := postgres.Connect(ctx, postgres.Options{URL: cfg.Database.URL})
  if err != nil {
      return err
  }
  defer store.Close()

SEE ALSO:
  - store/sqlite: Default single-file backend
  - payroll/store.go: Interface definitions
*/
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/warp/shift-payroll/payroll"
)

// Options tune the connection pool. Zero values keep pgx defaults.
type Options struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

// Store implements the payroll storage interfaces on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool, pings it and applies the schema.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		poolCfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		poolCfg.MinConns = opts.MinConns
	}
	if opts.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		shift_start TIMESTAMP NOT NULL,
		shift_end TIMESTAMP NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_start_end
		ON shifts(shift_start, shift_end);

	CREATE TABLE IF NOT EXISTS period_summaries (
		id TEXT PRIMARY KEY,
		period_start TIMESTAMP NOT NULL,
		period_end TIMESTAMP NOT NULL,
		worked_seconds BIGINT NOT NULL,
		earned TEXT NOT NULL,
		shift_count INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_period_summaries_period
		ON period_summaries(period_start, period_end);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// =============================================================================
// SHIFT STORE (payroll.ShiftRepository interface)
// =============================================================================

func (s *Store) AddShift(ctx context.Context, shift payroll.Shift) (payroll.Shift, error) {
	if err := shift.Validate(); err != nil {
		return payroll.Shift{}, err
	}
	if shift.ID == "" {
		shift.ID = payroll.NewShiftID()
	}

	_, err := s.pool.Exec(ctx,
		"INSERT INTO shifts (id, shift_start, shift_end) VALUES ($1, $2, $3)",
		string(shift.ID), shift.Start, shift.End,
	)
	if err != nil {
		return payroll.Shift{}, fmt.Errorf("failed to insert shift: %w", err)
	}
	return shift, nil
}

func (s *Store) UpdateShift(ctx context.Context, id payroll.ShiftID, start, end *time.Time) (payroll.Shift, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return payroll.Shift{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := scanShift(tx.QueryRow(ctx,
		"SELECT id, shift_start, shift_end FROM shifts WHERE id = $1 FOR UPDATE", string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return payroll.Shift{}, payroll.ErrShiftNotFound
	}
	if err != nil {
		return payroll.Shift{}, err
	}

	updated, err := payroll.ApplyEdit(current, start, end)
	if err != nil {
		return payroll.Shift{}, err
	}

	if _, err := tx.Exec(ctx,
		"UPDATE shifts SET shift_start = $1, shift_end = $2 WHERE id = $3",
		updated.Start, updated.End, string(id),
	); err != nil {
		return payroll.Shift{}, fmt.Errorf("failed to update shift: %w", err)
	}
	return updated, tx.Commit(ctx)
}

func (s *Store) RemoveShift(ctx context.Context, id payroll.ShiftID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM shifts WHERE id = $1", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrShiftNotFound
	}
	return nil
}

func (s *Store) ListShifts(ctx context.Context, filter payroll.ListFilter) ([]payroll.Shift, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString("SELECT id, shift_start, shift_end FROM shifts")
	if filter.Period != nil {
		query.WriteString(" WHERE shift_start <= $1 AND shift_end >= $2")
		args = append(args, filter.Period.End, filter.Period.Start)
	}
	if filter.NewestFirst {
		query.WriteString(" ORDER BY shift_start DESC")
	} else {
		query.WriteString(" ORDER BY shift_start ASC")
	}
	return s.queryShifts(ctx, query.String(), args...)
}

func (s *Store) ShiftsOverlapping(ctx context.Context, from, to time.Time) ([]payroll.Shift, error) {
	return s.queryShifts(ctx, `
		SELECT id, shift_start, shift_end
		FROM shifts
		WHERE shift_start <= $1 AND shift_end > $2
		ORDER BY shift_start ASC
	`, to, from)
}

func (s *Store) DropShifts(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM shifts")
	return err
}

func (s *Store) queryShifts(ctx context.Context, query string, args ...any) ([]payroll.Shift, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []payroll.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	return shifts, rows.Err()
}

func scanShift(row pgx.Row) (payroll.Shift, error) {
	var (
		id         string
		start, end time.Time
	)
	if err := row.Scan(&id, &start, &end); err != nil {
		return payroll.Shift{}, err
	}
	return payroll.Shift{ID: payroll.ShiftID(id), Start: payroll.Naive(start), End: payroll.Naive(end)}, nil
}

// =============================================================================
// SUMMARY STORE (payroll.SummaryStore interface)
// =============================================================================

func (s *Store) SaveSummary(ctx context.Context, sum payroll.PeriodSummary) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO period_summaries
		(id, period_start, period_end, worked_seconds, earned, shift_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (period_start, period_end) DO UPDATE SET
			worked_seconds = EXCLUDED.worked_seconds,
			earned = EXCLUDED.earned,
			shift_count = EXCLUDED.shift_count,
			created_at = EXCLUDED.created_at
	`,
		sum.ID, sum.Period.Start, sum.Period.End,
		int64(sum.Worked/time.Second), sum.Earned.String(), sum.ShiftCount, sum.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}

func (s *Store) HasSummary(ctx context.Context, period payroll.ReportingPeriod) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM period_summaries WHERE period_start = $1 AND period_end = $2)",
		period.Start, period.End,
	).Scan(&exists)
	return exists, err
}

func (s *Store) ListSummaries(ctx context.Context) ([]payroll.PeriodSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, period_start, period_end, worked_seconds, earned, shift_count, created_at
		FROM period_summaries
		ORDER BY period_start DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []payroll.PeriodSummary
	for rows.Next() {
		var (
			sum           payroll.PeriodSummary
			workedSeconds int64
			earned        string
		)
		if err := rows.Scan(&sum.ID, &sum.Period.Start, &sum.Period.End, &workedSeconds, &earned, &sum.ShiftCount, &sum.CreatedAt); err != nil {
			return nil, err
		}
		if sum.Earned, err = decimal.NewFromString(earned); err != nil {
			return nil, fmt.Errorf("summary %s: bad earned %q: %w", sum.ID, earned, err)
		}
		sum.Period.Start = payroll.Naive(sum.Period.Start)
		sum.Period.End = payroll.Naive(sum.Period.End)
		sum.Worked = time.Duration(workedSeconds) * time.Second
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}
