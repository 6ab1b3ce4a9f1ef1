/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupled from the
  payroll types so the engine can change without breaking clients.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TIMESTAMPS:
  Responses use "2006-01-02T15:04:05" (wall clock, no zone). Requests accept
  that form, the same with a space instead of "T", with or without seconds,
  and RFC 3339 (the zone is dropped, the wall clock kept).

MONEY:
  Amounts are decimal strings with two places ("4218.75").

SEE ALSO:
  - handlers.go: Uses these types
  - factory/wage.go: WageJSON type
*/
package api

import (
	"strings"
	"time"

	"github.com/warp/shift-payroll/factory"
	"github.com/warp/shift-payroll/payroll"
)

const wireLayout = "2006-01-02T15:04:05"

var requestLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// parseWireTime reads a request timestamp as a naive wall-clock reading.
func parseWireTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return payroll.Naive(t), nil
	}
	for _, layout := range requestLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &payroll.TimestampError{Input: s, Attempts: append([]string{time.RFC3339}, requestLayouts...)}
}

func formatWireTime(t time.Time) string { return t.Format(wireLayout) }

// =============================================================================
// SHIFTS
// =============================================================================

// ShiftDTO represents a shift in API responses.
type ShiftDTO struct {
	ID              string `json:"id"`
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int64  `json:"duration_minutes"`
}

func toShiftDTO(s payroll.Shift) ShiftDTO {
	return ShiftDTO{
		ID:              string(s.ID),
		Start:           formatWireTime(s.Start),
		End:             formatWireTime(s.End),
		DurationMinutes: int64(s.Duration() / time.Minute),
	}
}

// CreateShiftRequest records a worked shift. The break is taken off the end.
type CreateShiftRequest struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	BreakMinutes int    `json:"break_minutes"`
}

// UpdateShiftRequest changes one or both bounds of a shift.
type UpdateShiftRequest struct {
	Start *string `json:"start,omitempty"`
	End   *string `json:"end,omitempty"`
}

// =============================================================================
// PERIODS AND SALARY
// =============================================================================

// PeriodDTO represents a reporting period.
type PeriodDTO struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Offset int    `json:"offset"`
	Kind   string `json:"kind"`
}

// RateBucketDTO is the time paid at one rate.
type RateBucketDTO struct {
	Kind        string  `json:"kind"`
	RatePerHour float64 `json:"rate_per_hour"`
	Minutes     int64   `json:"minutes"`
	Earned      string  `json:"earned"`
}

// SalaryDTO is a calculation report.
type SalaryDTO struct {
	Period        PeriodDTO       `json:"period"`
	WorkedMinutes int64           `json:"worked_minutes"`
	WorkedHours   int64           `json:"worked_hours"`
	WorkedRemMins int64           `json:"worked_remainder_minutes"`
	Earned        string          `json:"earned"`
	ShiftCount    int             `json:"shift_count"`
	ByRate        []RateBucketDTO `json:"by_rate"`
}

func toPeriodDTO(p payroll.ReportingPeriod, offset int, def payroll.PeriodDefinition) PeriodDTO {
	return PeriodDTO{
		Start:  formatWireTime(p.Start),
		End:    formatWireTime(p.End),
		Offset: offset,
		Kind:   def.String(),
	}
}

func toSalaryDTO(r payroll.Report, offset int, def payroll.PeriodDefinition) SalaryDTO {
	hours, minutes := payroll.HoursMinutes(r.Worked)
	dto := SalaryDTO{
		Period:        toPeriodDTO(r.Period, offset, def),
		WorkedMinutes: int64(r.Worked / time.Minute),
		WorkedHours:   hours,
		WorkedRemMins: minutes,
		Earned:        r.Earned.StringFixed(2),
		ShiftCount:    r.ShiftCount,
		ByRate:        make([]RateBucketDTO, 0, len(r.ByRate)),
	}
	for _, b := range r.ByRate {
		dto.ByRate = append(dto.ByRate, RateBucketDTO{
			Kind:        string(b.Kind),
			RatePerHour: b.RatePerHour,
			Minutes:     int64(b.Duration / time.Minute),
			Earned:      b.Earned.StringFixed(2),
		})
	}
	return dto
}

// =============================================================================
// CONFIGURATION AND SUMMARIES
// =============================================================================

// ConfigDTO is the effective wage configuration plus load warnings.
type ConfigDTO struct {
	Wage     factory.WageJSON `json:"wage"`
	Warnings []string         `json:"warnings"`
}

// SummaryDTO is a persisted period-close summary.
type SummaryDTO struct {
	ID            string `json:"id"`
	PeriodStart   string `json:"period_start"`
	PeriodEnd     string `json:"period_end"`
	WorkedMinutes int64  `json:"worked_minutes"`
	Earned        string `json:"earned"`
	ShiftCount    int    `json:"shift_count"`
	CreatedAt     string `json:"created_at"`
}

func toSummaryDTO(s payroll.PeriodSummary) SummaryDTO {
	return SummaryDTO{
		ID:            s.ID,
		PeriodStart:   formatWireTime(s.Period.Start),
		PeriodEnd:     formatWireTime(s.Period.End),
		WorkedMinutes: int64(s.Worked / time.Minute),
		Earned:        s.Earned.StringFixed(2),
		ShiftCount:    s.ShiftCount,
		CreatedAt:     s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// =============================================================================
// SCENARIOS AND ERRORS
// =============================================================================

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
