/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Stores, the wage loader and the HTTP layer wrap these with context.

ERROR CATEGORIES:
  1. Configuration errors - invalid period bounds, time-of-day or weekday text
  2. Record errors - the shift store failed, or a shift is malformed
  3. Warnings - a weekday token was dropped from a bonus rule (non-fatal)

USAGE:
  if errors.Is(err, payroll.ErrInvalidConfiguration) {
      // fix the wage file, calculation cannot proceed
  }

SEE ALSO:
  - bonus.go: Produces ErrInvalidTimeFormat / ErrInvalidWeekdayName
  - period.go: Produces ErrInvalidConfiguration
  - calculator.go: Produces RecordFetchError
*/
package payroll

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidConfiguration is returned when the wage configuration cannot be
	// used for a calculation (period day bounds, missing fields, bad rates).
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidTimeFormat is returned when a time-of-day is not HH:MM.
	ErrInvalidTimeFormat = errors.New("invalid time of day, expected HH:MM")

	// ErrInvalidWeekdayName is returned when a weekday token is not recognised.
	ErrInvalidWeekdayName = errors.New("invalid weekday name")

	// ErrRecordFetch is returned when the shift store could not produce shifts.
	ErrRecordFetch = errors.New("failed to fetch shift records")

	// ErrInvalidShift is returned when a shift interval is malformed.
	ErrInvalidShift = errors.New("invalid shift")

	// ErrShiftNotFound is returned when a referenced shift doesn't exist.
	ErrShiftNotFound = errors.New("shift not found")

	// ErrInvalidTimestamp is returned when no supported layout parses the input.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigurationError names the offending field and value.
type ConfigurationError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is lets every ConfigurationError match ErrInvalidConfiguration as well as
// the more specific cause it wraps.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// WithFieldPrefix returns a copy whose Field is qualified by prefix.
func (e *ConfigurationError) WithFieldPrefix(prefix string) *ConfigurationError {
	field := e.Field
	if prefix != "" {
		field = prefix + "." + field
	}
	return &ConfigurationError{Field: field, Value: e.Value, Err: e.Err}
}

// RecordFetchError reports which period the store failed to produce.
type RecordFetchError struct {
	Period ReportingPeriod
	Err    error
}

func (e *RecordFetchError) Error() string {
	return fmt.Sprintf("fetch shifts for %s: %v", e.Period, e.Err)
}

func (e *RecordFetchError) Unwrap() []error {
	return []error{ErrRecordFetch, e.Err}
}

// ShiftError describes why a shift interval was rejected.
type ShiftError struct {
	Start  time.Time
	End    time.Time
	Reason string
}

func (e *ShiftError) Error() string {
	return fmt.Sprintf("invalid shift [%s, %s]: %s",
		FormatTimestamp(e.Start), FormatTimestamp(e.End), e.Reason)
}

func (e *ShiftError) Unwrap() error {
	return ErrInvalidShift
}

// TimestampError lists every layout that was attempted.
type TimestampError struct {
	Input    string
	Attempts []string
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("cannot parse %q as a timestamp (tried %s)",
		e.Input, strings.Join(e.Attempts, ", "))
}

func (e *TimestampError) Unwrap() error {
	return ErrInvalidTimestamp
}

// =============================================================================
// WARNINGS - Non-fatal, returned next to a valid configuration
// =============================================================================

// DegradedRuleWarning records a weekday token dropped from a bonus rule.
// The rule keeps working with its remaining valid weekdays.
type DegradedRuleWarning struct {
	Category string // "general_time_periods" or "day_of_week_rates"
	Index    int
	Token    string
}

func (w DegradedRuleWarning) String() string {
	return fmt.Sprintf("%s[%d]: ignoring unknown weekday %q", w.Category, w.Index, w.Token)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidShift) ||
		errors.Is(err, ErrInvalidTimestamp) ||
		errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrInvalidTimeFormat) ||
		errors.Is(err, ErrInvalidWeekdayName)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrShiftNotFound)
}
