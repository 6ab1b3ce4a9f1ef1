/*
Package factory provides JSON to Go wage configuration conversion.

PURPOSE:
  Converts the wage file (base rate, reporting period and bonus tables) into
  a validated payroll.WageConfiguration. Every malformed value is rejected
  here, at load time, so a calculation never starts on a broken config.

JSON SCHEMA:
  {
    "base_rate": 136.74,
    "period": {"start_day": 21, "end_day": 20},
    "general_time_periods": [
      {"bonus_pr_hour": 20.77, "start": "18:00", "end": "23:59"}
    ],
    "day_of_week_rates": [
      {"bonus_pr_hour": 28.38, "start": "06:00", "end": "24:00", "days": ["sunday"]}
    ]
  }

  "period" is either the string "month" (case-insensitive) or an object
  whose end_day is start_day - 1.

DEGRADED RULES:
  An unknown weekday in "days" does not fail the load. The token is dropped,
  the rule keeps its other days and a payroll.DegradedRuleWarning is added
  to the configuration.

USAGE:
  wage, err := factory.Load("wage.json")
  if err != nil {
      log.Fatal(err)
  }
  for _, w := range wage.Warnings {
      log.Println(w)
  }

SEE ALSO:
  - payroll/bonus.go: WageConfiguration and BonusRule
  - payroll/period.go: PeriodDefinition
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warp/shift-payroll/payroll"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// WageJSON is the JSON representation of a wage configuration.
type WageJSON struct {
	BaseRate           *float64    `json:"base_rate"`
	Period             *PeriodJSON `json:"period"`
	GeneralTimePeriods []BonusJSON `json:"general_time_periods"`
	DayOfWeekRates     []BonusJSON `json:"day_of_week_rates"`
}

// PeriodJSON is either the string "month" or {start_day, end_day}.
type PeriodJSON struct {
	Month    bool
	StartDay int
	EndDay   int
}

type periodBoundsJSON struct {
	StartDay int `json:"start_day"`
	EndDay   int `json:"end_day"`
}

func (p *PeriodJSON) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var kind string
		if err := json.Unmarshal(data, &kind); err != nil {
			return err
		}
		if !strings.EqualFold(kind, "month") {
			return &payroll.ConfigurationError{Field: "period", Value: kind, Err: fmt.Errorf(`expected "month" or {"start_day", "end_day"}`)}
		}
		*p = PeriodJSON{Month: true}
		return nil
	}

	var bounds periodBoundsJSON
	if err := json.Unmarshal(data, &bounds); err != nil {
		return &payroll.ConfigurationError{Field: "period", Value: string(data), Err: err}
	}
	*p = PeriodJSON{StartDay: bounds.StartDay, EndDay: bounds.EndDay}
	return nil
}

func (p PeriodJSON) MarshalJSON() ([]byte, error) {
	if p.Month {
		return json.Marshal("Month")
	}
	return json.Marshal(periodBoundsJSON{StartDay: p.StartDay, EndDay: p.EndDay})
}

// BonusJSON is one row of general_time_periods or day_of_week_rates.
type BonusJSON struct {
	BonusPrHour float64  `json:"bonus_pr_hour"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Days        []string `json:"days,omitempty"`
}

const (
	categoryGeneral = "general_time_periods"
	categoryWeekday = "day_of_week_rates"
)

// =============================================================================
// LOADING
// =============================================================================

// Load reads and parses a wage file.
func Load(path string) (payroll.WageConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return payroll.WageConfiguration{}, fmt.Errorf("read wage file: %w", err)
	}
	cfg, err := ParseWage(data)
	if err != nil {
		return payroll.WageConfiguration{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseWage parses a wage document into a validated configuration.
func ParseWage(data []byte) (payroll.WageConfiguration, error) {
	var wj WageJSON
	if err := json.Unmarshal(data, &wj); err != nil {
		// keep the ConfigurationError raised by PeriodJSON reachable
		return payroll.WageConfiguration{}, fmt.Errorf("failed to parse wage JSON: %w", err)
	}
	return FromJSON(wj)
}

// FromJSON converts the decoded document. Each error names the offending
// field path, e.g. "day_of_week_rates[1].start".
func FromJSON(wj WageJSON) (payroll.WageConfiguration, error) {
	var cfg payroll.WageConfiguration

	if wj.BaseRate == nil {
		return cfg, &payroll.ConfigurationError{Field: "base_rate", Err: fmt.Errorf("required")}
	}
	cfg.BaseRatePerHour = *wj.BaseRate

	if wj.Period == nil {
		return cfg, &payroll.ConfigurationError{Field: "period", Err: fmt.Errorf("required")}
	}
	cfg.Period = parsePeriod(*wj.Period)

	for i, bj := range wj.GeneralTimePeriods {
		prefix := fmt.Sprintf("%s[%d]", categoryGeneral, i)
		if len(bj.Days) > 0 {
			return cfg, &payroll.ConfigurationError{
				Field: prefix + ".days",
				Value: strings.Join(bj.Days, ","),
				Err:   fmt.Errorf("general bonuses apply every day; move the rule to %s", categoryWeekday),
			}
		}
		rule, _, err := payroll.ParseBonusRule(bj.BonusPrHour, bj.Start, bj.End, nil)
		if err != nil {
			return cfg, prefixed(err, prefix)
		}
		cfg.GeneralBonuses = append(cfg.GeneralBonuses, rule)
	}

	for i, bj := range wj.DayOfWeekRates {
		prefix := fmt.Sprintf("%s[%d]", categoryWeekday, i)
		if bj.Days == nil {
			return cfg, &payroll.ConfigurationError{Field: prefix + ".days", Err: fmt.Errorf("required")}
		}
		rule, rejected, err := payroll.ParseBonusRule(bj.BonusPrHour, bj.Start, bj.End, bj.Days)
		if err != nil {
			return cfg, prefixed(err, prefix)
		}
		for _, token := range rejected {
			cfg.Warnings = append(cfg.Warnings, payroll.DegradedRuleWarning{Category: categoryWeekday, Index: i, Token: token})
		}
		cfg.WeekdayBonuses = append(cfg.WeekdayBonuses, rule)
	}

	if err := cfg.Validate(); err != nil {
		return payroll.WageConfiguration{}, err
	}
	return cfg, nil
}

func parsePeriod(pj PeriodJSON) payroll.PeriodDefinition {
	if pj.Month {
		return payroll.MonthPeriod()
	}
	return payroll.PeriodDefinition{Kind: payroll.PeriodCustom, StartDay: pj.StartDay, EndDay: pj.EndDay}
}

func prefixed(err error, prefix string) error {
	if cfgErr, ok := err.(*payroll.ConfigurationError); ok {
		return cfgErr.WithFieldPrefix(prefix)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// =============================================================================
// SAVING
// =============================================================================

// ToJSON converts a configuration back to its document form.
func ToJSON(cfg payroll.WageConfiguration) WageJSON {
	base := cfg.BaseRatePerHour
	wj := WageJSON{BaseRate: &base}

	if cfg.Period.Kind == payroll.PeriodMonth {
		wj.Period = &PeriodJSON{Month: true}
	} else {
		wj.Period = &PeriodJSON{StartDay: cfg.Period.StartDay, EndDay: cfg.Period.EndDay}
	}

	wj.GeneralTimePeriods = make([]BonusJSON, 0, len(cfg.GeneralBonuses))
	for _, r := range cfg.GeneralBonuses {
		wj.GeneralTimePeriods = append(wj.GeneralTimePeriods, bonusToJSON(r))
	}
	wj.DayOfWeekRates = make([]BonusJSON, 0, len(cfg.WeekdayBonuses))
	for _, r := range cfg.WeekdayBonuses {
		wj.DayOfWeekRates = append(wj.DayOfWeekRates, bonusToJSON(r))
	}
	return wj
}

func bonusToJSON(r payroll.BonusRule) BonusJSON {
	bj := BonusJSON{BonusPrHour: r.RatePerHour, Start: r.DailyStart.String(), End: r.DailyEnd.String()}
	if r.Weekdays != nil {
		bj.Days = []string{}
		for _, d := range r.Weekdays.Days() {
			bj.Days = append(bj.Days, strings.ToLower(d.String()))
		}
	}
	return bj
}

// Save writes cfg to path as indented JSON, creating parent directories.
func Save(path string, cfg payroll.WageConfiguration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(ToJSON(cfg), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode wage JSON: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create wage directory: %w", err)
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
