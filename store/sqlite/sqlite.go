/*
Package sqlite provides a SQLite-backed implementation of the shift stores.

PURPOSE:
  Implements payroll.ShiftRepository and payroll.SummaryStore on a single
  SQLite file. This is the default backend for both the CLI and the server.

INTERFACES IMPLEMENTED:
  payroll.ShiftStore:      Overlap query used by calculations
  payroll.ShiftRepository: Add, edit, remove, list, drop
  payroll.SummaryStore:    Period-close summaries

KEY TABLES:
  shifts:           One row per recorded shift
  period_summaries: One row per closed reporting period

TIMESTAMPS:
  Shift bounds are stored as "YYYY-MM-DD HH:MM:SS" text (payroll.TimestampLayout).
  The layout sorts lexically, so the overlap query compares strings:
    shift_start <= :to AND shift_end > :from

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite allows one writer at a time;
  the mutex keeps writers from tripping over SQLITE_BUSY.

WAL MODE:
  Opened with WAL (Write-Ahead Logging): readers don't block the writer.

USAGE:
  store, err := sqlite.New("./data/shifts.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  calc := payroll.NewCalculator(store, wage, logger)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - payroll/store.go: Interface definitions
  - payroll/store/memory.go: In-memory implementation for testing
  - store/postgres: The same interfaces on PostgreSQL
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/shift-payroll/payroll"
)

// Store implements the payroll storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		shift_start TEXT NOT NULL,
		shift_end TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Overlap and list queries filter on both bounds, ordered by start
	CREATE INDEX IF NOT EXISTS idx_shifts_start_end
		ON shifts(shift_start, shift_end);

	CREATE TABLE IF NOT EXISTS period_summaries (
		id TEXT PRIMARY KEY,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		worked_seconds INTEGER NOT NULL,
		earned TEXT NOT NULL,
		shift_count INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_period_summaries_period
		ON period_summaries(period_start, period_end);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SHIFT STORE (payroll.ShiftRepository interface)
// =============================================================================

// AddShift inserts a validated shift.
func (s *Store) AddShift(ctx context.Context, shift payroll.Shift) (payroll.Shift, error) {
	if err := shift.Validate(); err != nil {
		return payroll.Shift{}, err
	}
	if shift.ID == "" {
		shift.ID = payroll.NewShiftID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO shifts (id, shift_start, shift_end, created_at) VALUES (?, ?, ?, ?)",
		string(shift.ID),
		payroll.FormatTimestamp(shift.Start),
		payroll.FormatTimestamp(shift.End),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return payroll.Shift{}, fmt.Errorf("shift %s already exists: %w", shift.ID, err)
		}
		return payroll.Shift{}, fmt.Errorf("failed to insert shift: %w", err)
	}
	return shift, nil
}

// UpdateShift replaces the start and/or end of a shift atomically.
func (s *Store) UpdateShift(ctx context.Context, id payroll.ShiftID, start, end *time.Time) (payroll.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return payroll.Shift{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	current, err := scanShift(sqlTx.QueryRowContext(ctx,
		"SELECT id, shift_start, shift_end FROM shifts WHERE id = ?", string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.Shift{}, payroll.ErrShiftNotFound
	}
	if err != nil {
		return payroll.Shift{}, err
	}

	updated, err := payroll.ApplyEdit(current, start, end)
	if err != nil {
		return payroll.Shift{}, err
	}

	if _, err := sqlTx.ExecContext(ctx,
		"UPDATE shifts SET shift_start = ?, shift_end = ? WHERE id = ?",
		payroll.FormatTimestamp(updated.Start),
		payroll.FormatTimestamp(updated.End),
		string(id),
	); err != nil {
		return payroll.Shift{}, fmt.Errorf("failed to update shift: %w", err)
	}

	return updated, sqlTx.Commit()
}

// RemoveShift deletes one shift.
func (s *Store) RemoveShift(ctx context.Context, id payroll.ShiftID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM shifts WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payroll.ErrShiftNotFound
	}
	return nil
}

// ListShifts returns shifts matching the filter, oldest first unless
// NewestFirst is set.
func (s *Store) ListShifts(ctx context.Context, filter payroll.ListFilter) ([]payroll.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		query strings.Builder
		args  []any
	)
	query.WriteString("SELECT id, shift_start, shift_end FROM shifts")
	if filter.Period != nil {
		query.WriteString(" WHERE shift_start <= ? AND shift_end >= ?")
		args = append(args, payroll.FormatTimestamp(filter.Period.End), payroll.FormatTimestamp(filter.Period.Start))
	}
	if filter.NewestFirst {
		query.WriteString(" ORDER BY shift_start DESC")
	} else {
		query.WriteString(" ORDER BY shift_start ASC")
	}

	return s.queryShifts(ctx, query.String(), args...)
}

// ShiftsOverlapping returns shifts with shift_start <= to AND shift_end > from.
func (s *Store) ShiftsOverlapping(ctx context.Context, from, to time.Time) ([]payroll.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, shift_start, shift_end
		FROM shifts
		WHERE shift_start <= ? AND shift_end > ?
		ORDER BY shift_start ASC
	`
	return s.queryShifts(ctx, query, payroll.FormatTimestamp(to), payroll.FormatTimestamp(from))
}

// DropShifts deletes every shift. Summaries are kept.
func (s *Store) DropShifts(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM shifts")
	return err
}

func (s *Store) queryShifts(ctx context.Context, query string, args ...any) ([]payroll.Shift, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShift(row rowScanner) (payroll.Shift, error) {
	var id, start, end string
	if err := row.Scan(&id, &start, &end); err != nil {
		return payroll.Shift{}, err
	}

	startAt, err := time.Parse(payroll.TimestampLayout, start)
	if err != nil {
		return payroll.Shift{}, fmt.Errorf("shift %s: bad shift_start %q: %w", id, start, err)
	}
	endAt, err := time.Parse(payroll.TimestampLayout, end)
	if err != nil {
		return payroll.Shift{}, fmt.Errorf("shift %s: bad shift_end %q: %w", id, end, err)
	}
	return payroll.Shift{ID: payroll.ShiftID(id), Start: startAt, End: endAt}, nil
}

// =============================================================================
// SUMMARY STORE (payroll.SummaryStore interface)
// =============================================================================

// SaveSummary stores a period summary, replacing any earlier one for the
// same period.
func (s *Store) SaveSummary(ctx context.Context, sum payroll.PeriodSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO period_summaries
		(id, period_start, period_end, worked_seconds, earned, shift_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(period_start, period_end) DO UPDATE SET
			worked_seconds = excluded.worked_seconds,
			earned = excluded.earned,
			shift_count = excluded.shift_count,
			created_at = excluded.created_at
	`
	_, err := s.db.ExecContext(ctx, query,
		sum.ID,
		payroll.FormatTimestamp(sum.Period.Start),
		payroll.FormatTimestamp(sum.Period.End),
		int64(sum.Worked/time.Second),
		sum.Earned.String(),
		sum.ShiftCount,
		sum.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}

// HasSummary reports whether the period has already been closed.
func (s *Store) HasSummary(ctx context.Context, period payroll.ReportingPeriod) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM period_summaries WHERE period_start = ? AND period_end = ?",
		payroll.FormatTimestamp(period.Start), payroll.FormatTimestamp(period.End),
	).Scan(&count)
	return count > 0, err
}

// ListSummaries returns every summary, most recent period first.
func (s *Store) ListSummaries(ctx context.Context) ([]payroll.PeriodSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
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
			sum                           payroll.PeriodSummary
			periodStart, periodEnd, since string
			workedSeconds                 int64
		)
		if err := rows.Scan(&sum.ID, &periodStart, &periodEnd, &workedSeconds, &sum.Earned, &sum.ShiftCount, &since); err != nil {
			return nil, err
		}
		sum.Period.Start, _ = time.Parse(payroll.TimestampLayout, periodStart)
		sum.Period.End, _ = time.Parse(payroll.TimestampLayout, periodEnd)
		sum.Worked = time.Duration(workedSeconds) * time.Second
		sum.CreatedAt, _ = time.Parse(time.RFC3339, since)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
