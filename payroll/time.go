package payroll

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// NAIVE TIMESTAMPS - Wall-clock date+time, no timezone
// =============================================================================
// Every timestamp handled by the engine is a wall-clock reading stored in
// time.UTC purely as a carrier. No zone conversion ever happens.

// TimestampLayout is the textual form used by the shift stores. It sorts
// lexically in chronological order.
const TimestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string { return t.Format(TimestampLayout) }

// Naive drops the location of t and keeps its wall-clock reading.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// Date builds a naive timestamp at midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateTime builds a naive timestamp with hour and minute.
func DateTime(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

// StartOfDay returns midnight of t's date.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths moves t by n calendar months, clamping the day to the last day of
// the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	idx := int(month) - 1 + n
	year += idx / 12
	idx %= 12
	if idx < 0 {
		idx += 12
		year--
	}
	target := time.Month(idx + 1)
	if last := DaysIn(year, target); day > last {
		day = last
	}
	return time.Date(year, target, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// calendarDate is time.Date without normalisation: day must exist in month.
func calendarDate(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > DaysIn(year, month) {
		return time.Time{}, false
	}
	return Date(year, month, day), true
}

// daysSpanned counts date boundaries between a and b (b >= a).
func daysSpanned(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}

// =============================================================================
// TIMESTAMP PARSING
// =============================================================================

// inputLayouts are tried in order; the first match wins.
var inputLayouts = []string{
	"02-01-2006 15:04",    // day-month-year
	"2006-02-01 15:04",    // year-day-month
	"02-01-2006 15:04:05", // day-month-year with seconds
	"2006-02-01 15:04:05", // year-day-month with seconds
	"2006-01-02 15:04",    // ISO
	"2006-01-02 15:04:05", // ISO with seconds
}

// ParseTimestamp reads a user supplied timestamp. When no layout matches, the
// year of reference is prefixed and every layout is tried again, so "12-24 18:00"
// means 18:00 on the 24th of December of the reference year.
func ParseTimestamp(input string, reference time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	var attempts []string

	try := func(s string) (time.Time, bool) {
		for _, layout := range inputLayouts {
			t, err := time.Parse(layout, s)
			if err == nil {
				return t, true
			}
			attempts = append(attempts, fmt.Sprintf("%q as %q", s, layout))
		}
		return time.Time{}, false
	}

	if t, ok := try(input); ok {
		return t, nil
	}
	if t, ok := try(fmt.Sprintf("%d-%s", reference.Year(), input)); ok {
		return t, nil
	}
	return time.Time{}, &TimestampError{Input: input, Attempts: attempts}
}

// =============================================================================
// TIME OF DAY - Clock reading without a date
// =============================================================================

// TimeOfDay is an offset from midnight. 24:00 is allowed and means the end of
// the day.
type TimeOfDay time.Duration

// EndOfDay is 24:00.
const EndOfDay = TimeOfDay(24 * time.Hour)

// Clock builds a TimeOfDay from hour and minute.
func Clock(hour, minute int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// ClockOf returns the wall-clock reading of t.
func ClockOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Sub(StartOfDay(t)))
}

// ParseTimeOfDay reads "HH:MM" (hour may be a single digit). "24:00" is the
// only reading past 23:59 that is accepted.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, ErrInvalidTimeFormat
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return 0, ErrInvalidTimeFormat
	}
	minute, err := strconv.Atoi(mm)
	if err != nil {
		return 0, ErrInvalidTimeFormat
	}
	if hour == 24 && minute == 0 {
		return EndOfDay, nil
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, ErrInvalidTimeFormat
	}
	return Clock(hour, minute), nil
}

func (t TimeOfDay) Duration() time.Duration { return time.Duration(t) }

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}

func maxClock(a, b TimeOfDay) TimeOfDay {
	if a > b {
		return a
	}
	return b
}

func minClock(a, b TimeOfDay) TimeOfDay {
	if a < b {
		return a
	}
	return b
}
