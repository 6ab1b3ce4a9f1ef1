package payroll

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// =============================================================================
// WEEKDAYS
// =============================================================================

var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday,
}

// ParseWeekday reads an English weekday name or its three-letter abbreviation,
// case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeekdayName, s)
	}
	return wd, nil
}

// WeekdaySet is a set of weekdays, one bit per time.Weekday.
type WeekdaySet uint8

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

func (s WeekdaySet) With(d time.Weekday) WeekdaySet { return s | 1<<uint(d) }
func (s WeekdaySet) Contains(d time.Weekday) bool { return s&(1<<uint(d)) != 0 }
func (s WeekdaySet) IsEmpty() bool { return s == 0 }

// Days returns the members in Sunday..Saturday order.
func (s WeekdaySet) Days() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// ParseWeekdays keeps every token that names a weekday and returns the rest
// as rejected. Rejected tokens are not an error: the rule degrades to the
// weekdays that did parse.
func ParseWeekdays(tokens []string) (WeekdaySet, []string) {
	var (
		set      WeekdaySet
		rejected []string
	)
	for _, tok := range tokens {
		wd, err := ParseWeekday(tok)
		if err != nil {
			rejected = append(rejected, tok)
			continue
		}
		set = set.With(wd)
	}
	return set, rejected
}

// =============================================================================
// BONUS RULE - A rate added during a daily window
// =============================================================================

// BonusRule adds RatePerHour for every minute worked between DailyStart and
// DailyEnd. Weekdays == nil makes it a general bonus (every day); otherwise it
// applies only on the listed weekdays. Rates may be negative.
type BonusRule struct {
	RatePerHour float64
	DailyStart  TimeOfDay
	DailyEnd    TimeOfDay
	Weekdays    *WeekdaySet
}

// IsGeneral returns true when the rule has no weekday restriction.
func (r BonusRule) IsGeneral() bool { return r.Weekdays == nil }

// AppliesOn reports whether a day-restricted rule covers wd. A general rule
// returns false: it is never evaluated as a weekday rule.
func (r BonusRule) AppliesOn(wd time.Weekday) bool {
	return r.Weekdays != nil && r.Weekdays.Contains(wd)
}

// Overlap returns how much of [from, to] falls inside the rule's window.
// Touching windows (end == start) overlap by nothing.
func (r BonusRule) Overlap(from, to TimeOfDay) time.Duration {
	beginning := maxClock(from, r.DailyStart)
	ending := minClock(to, r.DailyEnd)
	if ending > beginning {
		return time.Duration(ending - beginning)
	}
	return 0
}

// ParseBonusRule builds a rule from its stored text form. days == nil gives a
// general rule. Unknown weekday tokens are returned in rejected; malformed
// times and an inverted window are configuration errors.
func ParseBonusRule(rate float64, start, end string, days []string) (rule BonusRule, rejected []string, err error) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return BonusRule{}, nil, &ConfigurationError{Field: "bonus_pr_hour", Value: fmt.Sprint(rate), Err: fmt.Errorf("must be a finite number")}
	}
	rule.RatePerHour = rate

	if rule.DailyStart, err = ParseTimeOfDay(start); err != nil {
		return BonusRule{}, nil, &ConfigurationError{Field: "start", Value: start, Err: err}
	}
	if rule.DailyEnd, err = ParseTimeOfDay(end); err != nil {
		return BonusRule{}, nil, &ConfigurationError{Field: "end", Value: end, Err: err}
	}
	if rule.DailyStart > rule.DailyEnd {
		return BonusRule{}, nil, &ConfigurationError{
			Field: "end",
			Value: end,
			Err:   fmt.Errorf("window ends before it starts (%s); split it at midnight into two rules", start),
		}
	}

	if days != nil {
		set, bad := ParseWeekdays(days)
		rule.Weekdays = &set
		rejected = bad
	}
	return rule, rejected, nil
}

// =============================================================================
// WAGE CONFIGURATION - Everything a calculation needs besides shifts
// =============================================================================

// WageConfiguration is loaded once and read-only for a calculation.
type WageConfiguration struct {
	BaseRatePerHour float64
	Period          PeriodDefinition
	GeneralBonuses  []BonusRule
	WeekdayBonuses  []BonusRule

	// Warnings lists weekday tokens dropped while loading.
	Warnings []DegradedRuleWarning
}

// Validate checks a configuration built in code. Configurations produced by
// the wage loader are already valid.
func (c WageConfiguration) Validate() error {
	if math.IsNaN(c.BaseRatePerHour) || math.IsInf(c.BaseRatePerHour, 0) {
		return &ConfigurationError{Field: "base_rate", Value: fmt.Sprint(c.BaseRatePerHour), Err: fmt.Errorf("must be a finite number")}
	}
	if err := c.Period.Validate(); err != nil {
		return err
	}
	for i, r := range c.GeneralBonuses {
		if err := validateWindow(r); err != nil {
			return err.WithFieldPrefix(fmt.Sprintf("general_time_periods[%d]", i))
		}
	}
	for i, r := range c.WeekdayBonuses {
		prefix := fmt.Sprintf("day_of_week_rates[%d]", i)
		if err := validateWindow(r); err != nil {
			return err.WithFieldPrefix(prefix)
		}
		if r.Weekdays == nil {
			return &ConfigurationError{Field: prefix + ".days", Value: "", Err: fmt.Errorf("a day-of-week bonus needs days")}
		}
	}
	return nil
}

func validateWindow(r BonusRule) *ConfigurationError {
	if r.DailyStart < 0 || r.DailyEnd > EndOfDay || r.DailyStart > r.DailyEnd {
		return &ConfigurationError{Field: "end", Value: r.DailyEnd.String(), Err: fmt.Errorf("window must satisfy 00:00 <= start <= end <= 24:00")}
	}
	return nil
}
