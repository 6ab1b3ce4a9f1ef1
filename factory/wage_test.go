package factory_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-payroll/factory"
	"github.com/warp/shift-payroll/payroll"
)

const sampleWage = `{
  "base_rate": 136.74,
  "period": {"start_day": 21, "end_day": 20},
  "general_time_periods": [
    {"bonus_pr_hour": 20.77, "start": "18:00", "end": "23:59"},
    {"bonus_pr_hour": 30, "start": "00:00", "end": "06:00"}
  ],
  "day_of_week_rates": [
    {"bonus_pr_hour": 28.38, "start": "06:00", "end": "24:00", "days": ["saturday", "lørdag"]},
    {"bonus_pr_hour": 55.12, "start": "00:00", "end": "24:00", "days": ["sunday"]}
  ]
}`

func TestParseWage(t *testing.T) {
	// GIVEN: A wage file with one Norwegian weekday name
	// WHEN: Parsing it
	// THEN: The configuration loads, the bad token becomes a warning

	cfg, err := factory.ParseWage([]byte(sampleWage))
	require.NoError(t, err)

	assert.Equal(t, 136.74, cfg.BaseRatePerHour)
	assert.Equal(t, payroll.CustomPeriod(21), cfg.Period)
	require.Len(t, cfg.GeneralBonuses, 2)
	assert.True(t, cfg.GeneralBonuses[0].IsGeneral())
	assert.Equal(t, payroll.Clock(18, 0), cfg.GeneralBonuses[0].DailyStart)

	require.Len(t, cfg.WeekdayBonuses, 2)
	assert.True(t, cfg.WeekdayBonuses[0].AppliesOn(time.Saturday))
	assert.Equal(t, payroll.EndOfDay, cfg.WeekdayBonuses[0].DailyEnd)

	require.Len(t, cfg.Warnings, 1)
	assert.Equal(t, payroll.DegradedRuleWarning{Category: "day_of_week_rates", Index: 0, Token: "lørdag"}, cfg.Warnings[0])
}

func TestParseWage_MonthPeriod(t *testing.T) {
	for _, period := range []string{`"month"`, `"Month"`, `"MONTH"`} {
		cfg, err := factory.ParseWage([]byte(`{"base_rate": 100, "period": ` + period + `}`))
		require.NoError(t, err, period)
		assert.Equal(t, payroll.MonthPeriod(), cfg.Period)
		assert.Empty(t, cfg.GeneralBonuses)
	}
}

func TestParseWage_Errors(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantField string
		wantErr   error
	}{
		{
			name:      "missing base rate",
			doc:       `{"period": "month"}`,
			wantField: "base_rate",
		},
		{
			name:      "missing period",
			doc:       `{"base_rate": 100}`,
			wantField: "period",
		},
		{
			name:      "unknown period string",
			doc:       `{"base_rate": 100, "period": "weekly"}`,
			wantField: "period",
		},
		{
			name:      "start day out of range",
			doc:       `{"base_rate": 100, "period": {"start_day": 31, "end_day": 30}}`,
			wantField: "period.start_day",
		},
		{
			name:      "end day not start-1",
			doc:       `{"base_rate": 100, "period": {"start_day": 15, "end_day": 10}}`,
			wantField: "period.end_day",
		},
		{
			name:      "malformed time of day",
			doc:       `{"base_rate": 100, "period": "month", "day_of_week_rates": [{"bonus_pr_hour": 1, "start": "6", "end": "10:00", "days": ["monday"]}]}`,
			wantField: "day_of_week_rates[0].start",
			wantErr:   payroll.ErrInvalidTimeFormat,
		},
		{
			name:      "inverted general window",
			doc:       `{"base_rate": 100, "period": "month", "general_time_periods": [{"bonus_pr_hour": 1, "start": "22:00", "end": "06:00"}]}`,
			wantField: "general_time_periods[0].end",
		},
		{
			name:      "weekday rule without days",
			doc:       `{"base_rate": 100, "period": "month", "day_of_week_rates": [{"bonus_pr_hour": 1, "start": "06:00", "end": "10:00"}]}`,
			wantField: "day_of_week_rates[0].days",
		},
		{
			name:      "general rule with days",
			doc:       `{"base_rate": 100, "period": "month", "general_time_periods": [{"bonus_pr_hour": 1, "start": "06:00", "end": "10:00", "days": ["monday"]}]}`,
			wantField: "general_time_periods[0].days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.ParseWage([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, payroll.ErrInvalidConfiguration)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			var cfgErr *payroll.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestParseWage_BadJSON(t *testing.T) {
	_, err := factory.ParseWage([]byte(`{"base_rate": `))
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	cfg, err := factory.ParseWage([]byte(sampleWage))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "conf", "wage.json")
	require.NoError(t, factory.Save(path, cfg))

	loaded, err := factory.Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.BaseRatePerHour, loaded.BaseRatePerHour)
	assert.Equal(t, cfg.Period, loaded.Period)
	assert.Equal(t, cfg.GeneralBonuses, loaded.GeneralBonuses)
	assert.Equal(t, cfg.WeekdayBonuses, loaded.WeekdayBonuses)
	assert.Empty(t, loaded.Warnings, "dropped tokens are not written back")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := factory.Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
