package payroll

import (
	"fmt"
	"time"
)

// =============================================================================
// REPORTING PERIOD - The payroll window a calculation covers
// =============================================================================

// ReportingPeriod is the window worked time and earnings are aggregated over.
// End is inclusive to the minute: by convention 23:59 of the last day.
//
// Examples:
//   - Calendar month: Mar 1 00:00 - Mar 31 23:59
//   - Custom day 21:  Feb 21 00:00 - Mar 20 23:59
type ReportingPeriod struct {
	Start time.Time
	End   time.Time
}

// Contains returns true if t is within [Start, End].
func (p ReportingPeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Overlaps is the true interval overlap test used by the record store query
// and by TotalDuration: shift.Start <= End AND shift.End > Start.
func (p ReportingPeriod) Overlaps(s Shift) bool {
	return !s.Start.After(p.End) && s.End.After(p.Start)
}

// String returns a string representation of the period.
func (p ReportingPeriod) String() string {
	return "[" + FormatTimestamp(p.Start) + ", " + FormatTimestamp(p.End) + "]"
}

// PeriodKind defines how periods are calculated
type PeriodKind string

const (
	PeriodMonth  PeriodKind = "month"  // 1st - last day of the month
	PeriodCustom PeriodKind = "custom" // StartDay of one month - EndDay of the next
)

// Custom periods must start between these days; EndDay is always StartDay-1.
const (
	MinCustomStartDay = 2
	MaxCustomStartDay = 29
)

// PeriodDefinition is the configured shape of a reporting period.
type PeriodDefinition struct {
	Kind     PeriodKind
	StartDay int // custom only
	EndDay   int // custom only
}

// MonthPeriod runs calendar month to calendar month.
func MonthPeriod() PeriodDefinition {
	return PeriodDefinition{Kind: PeriodMonth}
}

// CustomPeriod runs from startDay of one month to startDay-1 of the next.
func CustomPeriod(startDay int) PeriodDefinition {
	return PeriodDefinition{Kind: PeriodCustom, StartDay: startDay, EndDay: startDay - 1}
}

// Validate checks the day bounds. A start day that does not exist in some
// month (29 in a non-leap February) passes here and is reported by
// ReportingPeriodFor for that month.
func (d PeriodDefinition) Validate() error {
	switch d.Kind {
	case PeriodMonth:
		return nil
	case PeriodCustom:
		if d.StartDay < MinCustomStartDay || d.StartDay > MaxCustomStartDay {
			return &ConfigurationError{
				Field: "period.start_day",
				Value: fmt.Sprint(d.StartDay),
				Err:   fmt.Errorf("must be between %d and %d", MinCustomStartDay, MaxCustomStartDay),
			}
		}
		if d.EndDay != d.StartDay-1 {
			return &ConfigurationError{
				Field: "period.end_day",
				Value: fmt.Sprint(d.EndDay),
				Err:   fmt.Errorf("must be start_day-1 (%d)", d.StartDay-1),
			}
		}
		return nil
	default:
		return &ConfigurationError{Field: "period", Value: string(d.Kind), Err: fmt.Errorf("unknown period kind")}
	}
}

func (d PeriodDefinition) String() string {
	if d.Kind == PeriodCustom {
		return fmt.Sprintf("custom(%d-%d)", d.StartDay, d.EndDay)
	}
	return string(d.Kind)
}

// =============================================================================
// PERIOD CALCULATOR - Determines which period a date falls into
// =============================================================================

// ReportingPeriodFor returns the period containing today, moved offset periods
// back (0 = current). today is supplied by the caller, never sampled here.
func ReportingPeriodFor(def PeriodDefinition, today time.Time, offset int) (ReportingPeriod, error) {
	if err := def.Validate(); err != nil {
		return ReportingPeriod{}, err
	}
	if offset < 0 {
		return ReportingPeriod{}, &ConfigurationError{Field: "offset", Value: fmt.Sprint(offset), Err: fmt.Errorf("must not be negative")}
	}

	var start, end time.Time
	switch def.Kind {
	case PeriodMonth:
		start = AddMonths(Date(today.Year(), today.Month(), 1), -offset)
		end = Date(start.Year(), start.Month(), DaysIn(start.Year(), start.Month()))

	case PeriodCustom:
		year, month := today.Year(), today.Month()
		endThisMonth, ok := calendarDate(year, month, def.EndDay)
		if !ok {
			return ReportingPeriod{}, invalidDay("period.end_day", def.EndDay, year, month)
		}
		startThisMonth, ok := calendarDate(year, month, def.StartDay)
		if !ok {
			return ReportingPeriod{}, invalidDay("period.start_day", def.StartDay, year, month)
		}
		start = AddMonths(startThisMonth, -1)
		end = endThisMonth

		// Past this month's end day, the period has rolled over
		if StartOfDay(today).After(endThisMonth) {
			start = AddMonths(start, 1)
			end = AddMonths(end, 1)
		}
		start = AddMonths(start, -offset)
		end = AddMonths(end, -offset)
	}

	return ReportingPeriod{
		Start: start,
		End:   end.Add(23*time.Hour + 59*time.Minute),
	}, nil
}

func invalidDay(field string, day, year int, month time.Month) error {
	return &ConfigurationError{
		Field: field,
		Value: fmt.Sprint(day),
		Err:   fmt.Errorf("no such day in %s %d", month, year),
	}
}
