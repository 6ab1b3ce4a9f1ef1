package payroll

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CALCULATOR - Store-backed calculation for one reporting period
// =============================================================================

// Report is the result of one calculation run.
type Report struct {
	Period     ReportingPeriod
	Worked     time.Duration   // TotalDuration over the fetched shifts
	Earned     decimal.Decimal // TotalEarned over the decomposed entries
	ShiftCount int
	Entries    []Entry
	ByRate     []RateBucket
}

// EarnedFloat returns Earned as a float64.
func (r Report) EarnedFloat() float64 { return r.Earned.InexactFloat64() }

// Calculator fetches shifts for a period and runs the engine over them.
// It holds no mutable state; concurrent use is safe if the store is.
type Calculator struct {
	Store  ShiftStore
	Wage   WageConfiguration
	Logger *slog.Logger
}

// NewCalculator logs the configuration's degraded-rule warnings once.
func NewCalculator(store ShiftStore, wage WageConfiguration, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	for _, w := range wage.Warnings {
		logger.Warn("bonus rule degraded",
			slog.String("category", w.Category),
			slog.Int("index", w.Index),
			slog.String("token", w.Token),
		)
	}
	return &Calculator{Store: store, Wage: wage, Logger: logger}
}

// Period returns the reporting period offset periods before the one
// containing today.
func (c *Calculator) Period(today time.Time, offset int) (ReportingPeriod, error) {
	return ReportingPeriodFor(c.Wage.Period, today, offset)
}

// Calculate fetches the period's shifts and computes worked time and
// earnings. A fetch failure aborts the run; no partial report is returned.
func (c *Calculator) Calculate(ctx context.Context, period ReportingPeriod) (Report, error) {
	shifts, err := c.Store.ShiftsOverlapping(ctx, period.Start, period.End)
	if err != nil {
		c.Logger.Error("fetch shifts", slog.String("period", period.String()), slog.String("error", err.Error()))
		return Report{}, &RecordFetchError{Period: period, Err: err}
	}

	var entries []Entry
	for _, s := range shifts {
		entries = append(entries, Decompose(s, period, c.Wage)...)
	}

	report := Report{
		Period:     period,
		Worked:     TotalDuration(shifts, period),
		Earned:     TotalEarned(entries),
		ShiftCount: len(shifts),
		Entries:    entries,
		ByRate:     GroupByRate(entries),
	}
	c.Logger.Debug("calculated period",
		slog.String("period", period.String()),
		slog.Int("shifts", report.ShiftCount),
		slog.Int("entries", len(entries)),
		slog.String("earned", report.Earned.StringFixed(2)),
	)
	return report, nil
}

// CalculateTotal returns the amount earned in the period.
func (c *Calculator) CalculateTotal(ctx context.Context, period ReportingPeriod) (float64, error) {
	report, err := c.Calculate(ctx, period)
	if err != nil {
		return 0, err
	}
	return report.EarnedFloat(), nil
}

// TotalDuration returns the wall-clock time worked in the period.
func (c *Calculator) TotalDuration(ctx context.Context, period ReportingPeriod) (time.Duration, error) {
	shifts, err := c.Store.ShiftsOverlapping(ctx, period.Start, period.End)
	if err != nil {
		return 0, &RecordFetchError{Period: period, Err: err}
	}
	return TotalDuration(shifts, period), nil
}

// Summarize turns a report into a persistable summary.
func (r Report) Summarize(id string, now time.Time) PeriodSummary {
	return PeriodSummary{
		ID:         id,
		Period:     r.Period,
		Worked:     r.Worked,
		Earned:     r.Earned,
		ShiftCount: r.ShiftCount,
		CreatedAt:  now,
	}
}
