/*
Package payroll provides the shift-to-earnings calculation engine.

PURPOSE:
  Turns recorded work shifts, a base wage and a set of time-conditional bonus
  rules into worked time and earned money for a reporting period. The hard
  part is allocation: a shift may cross midnight, may only partly fall in the
  reporting period and may overlap any number of bonus windows.

KEY CONCEPTS IN THIS FILE (types.go):
  - Shift: An immutable [Start, End) interval of worked wall-clock time
  - Entry: A (duration, rate) pair produced by decomposition
  - ShiftID: Opaque identifier assigned by the record store

DESIGN PRINCIPLES:
  1. Purity: The engine never samples the clock or touches storage. Callers
     pass "today" and an already-fetched shift list.
  2. Additive bonuses: A minute is paid once at the base rate plus once for
     every bonus window it falls in.
  3. Fail fast: A malformed configuration is rejected at load time. Only
     unknown weekday tokens degrade gracefully (DegradedRuleWarning).
  4. Precision: Money is summed with decimal.Decimal.

USAGE:
  period, _ := payroll.ReportingPeriodFor(wage.Period, today, 0)
  var entries []payroll.Entry
  for _, s := range shifts {
      entries = append(entries, payroll.Decompose(s, period, wage)...)
  }
  earned := payroll.TotalEarned(entries)

SEE ALSO:
  - period.go: Reporting period math
  - bonus.go: Bonus rules and wage configuration
  - decompose.go: Midnight split and bonus allocation
  - aggregate.go: Totals
  - calculator.go: Store-backed calculation
*/
package payroll

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SHIFT - A recorded worked interval
// =============================================================================

type ShiftID string

// NewShiftID returns a fresh opaque id.
func NewShiftID() ShiftID { return ShiftID(uuid.NewString()) }

// Shift is a worked interval [Start, End). Timestamps are naive wall-clock.
type Shift struct {
	ID    ShiftID
	Start time.Time
	End   time.Time
}

// NewShift builds a validated shift, taking the break off the end.
func NewShift(start, end time.Time, breakDuration time.Duration) (Shift, error) {
	if start.After(end) {
		return Shift{}, &ShiftError{Start: start, End: end, Reason: "the end of the shift should be after the start"}
	}
	if breakDuration < 0 {
		return Shift{}, &ShiftError{Start: start, End: end, Reason: "break cannot be negative"}
	}
	s := Shift{Start: Naive(start), End: Naive(end).Add(-breakDuration)}
	if err := s.Validate(); err != nil {
		return Shift{}, err
	}
	return s, nil
}

// Validate enforces Start < End and that the shift crosses at most one
// midnight. Longer shifts must be recorded as several shifts.
func (s Shift) Validate() error {
	if !s.Start.Before(s.End) {
		return &ShiftError{Start: s.Start, End: s.End, Reason: "the end of the shift should be after the start"}
	}
	if daysSpanned(s.Start, s.End) > 1 {
		return &ShiftError{Start: s.Start, End: s.End, Reason: "a shift may cross at most one midnight"}
	}
	return nil
}

// Duration is the wall-clock length of the shift.
func (s Shift) Duration() time.Duration { return s.End.Sub(s.Start) }

// =============================================================================
// ENTRY - One rate bucket of a decomposed shift
// =============================================================================

type EntryKind string

const (
	EntryBase    EntryKind = "base"    // whole sub-shift at the base rate
	EntryGeneral EntryKind = "general" // overlap with an every-day bonus window
	EntryWeekday EntryKind = "weekday" // overlap with a day-restricted bonus window
)

// Entry is worked time paid at RatePerHour. Entries are additive.
type Entry struct {
	Duration    time.Duration
	RatePerHour float64
	Kind        EntryKind
}
