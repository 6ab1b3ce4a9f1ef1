/*
store.go - Persistence interfaces for shift records

PURPOSE:
  Defines the interface between the calculation engine and the database.
  The engine only ever reads; editing shifts is the record store's business
  and is exposed through ShiftRepository for the CLI and HTTP API.

KEY INTERFACES:
  ShiftStore:      Overlap query used by the calculator
  ShiftRepository: Full record management (add, edit, remove, list, drop)
  SummaryStore:    Persisted period-close summaries

OVERLAP QUERY:
  ShiftsOverlapping(from, to) returns every shift with
    shift_start <= to AND shift_end > from
  Stores keep timestamps as "YYYY-MM-DD HH:MM:SS" text so the comparison
  can be done lexically in SQL.

IMPLEMENTATIONS:
  - payroll/store/memory.go: In-memory for testing
  - store/sqlite/sqlite.go:  SQLite
  - store/postgres/postgres.go: PostgreSQL

SEE ALSO:
  - calculator.go: Consumes ShiftStore
*/
package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SHIFT STORE - Read side used by calculations
// =============================================================================

// ShiftStore produces the shifts a calculation needs.
type ShiftStore interface {
	// ShiftsOverlapping returns shifts with Start <= to and End > from,
	// ordered by Start.
	ShiftsOverlapping(ctx context.Context, from, to time.Time) ([]Shift, error)
}

// ShiftRepository extends ShiftStore with record management.
type ShiftRepository interface {
	ShiftStore

	// AddShift stores a validated shift. An empty ID is replaced with a new one.
	AddShift(ctx context.Context, s Shift) (Shift, error)

	// UpdateShift replaces the start and/or end of a shift. At least one
	// must be given; the result is validated.
	UpdateShift(ctx context.Context, id ShiftID, start, end *time.Time) (Shift, error)

	// RemoveShift deletes one shift. Returns ErrShiftNotFound if absent.
	RemoveShift(ctx context.Context, id ShiftID) error

	// ListShifts returns shifts matching the filter.
	ListShifts(ctx context.Context, filter ListFilter) ([]Shift, error)

	// DropShifts deletes every shift.
	DropShifts(ctx context.Context) error
}

// ListFilter narrows ListShifts. A nil Period lists everything.
type ListFilter struct {
	Period      *ReportingPeriod
	NewestFirst bool
}

// Matches applies the listing test: Start <= period.End AND End >= period.Start.
func (f ListFilter) Matches(s Shift) bool {
	if f.Period == nil {
		return true
	}
	return !s.Start.After(f.Period.End) && !s.End.Before(f.Period.Start)
}

// ApplyEdit returns s with the given replacements, validated. Used by every
// ShiftRepository implementation so the rules stay identical.
func ApplyEdit(s Shift, start, end *time.Time) (Shift, error) {
	if start == nil && end == nil {
		return Shift{}, &ShiftError{Start: s.Start, End: s.End, Reason: "edit the start and/or the end of the shift"}
	}
	if start != nil {
		s.Start = Naive(*start)
	}
	if end != nil {
		s.End = Naive(*end)
	}
	if err := s.Validate(); err != nil {
		return Shift{}, err
	}
	return s, nil
}

// =============================================================================
// SUMMARY STORE - Period-close snapshots
// =============================================================================

// PeriodSummary is a calculation persisted once its period has ended.
type PeriodSummary struct {
	ID         string
	Period     ReportingPeriod
	Worked     time.Duration
	Earned     decimal.Decimal
	ShiftCount int
	CreatedAt  time.Time
}

// SummaryStore persists period summaries. One summary per period.
type SummaryStore interface {
	SaveSummary(ctx context.Context, s PeriodSummary) error
	HasSummary(ctx context.Context, period ReportingPeriod) (bool, error)
	ListSummaries(ctx context.Context) ([]PeriodSummary, error)
}
