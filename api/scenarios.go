/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built shift sets that populate the database with realistic
	records for demos. Each scenario is laid out relative to the start of the
	current reporting period, so it always shows up in GET /api/salary.

AVAILABLE SCENARIOS:

	day-shifts:      Two weeks of 08:00-16:00 with a 30 minute break
	evening-shifts:  Weekday evenings that run into the evening bonus window
	night-shifts:    Shifts crossing midnight
	weekend:         Saturday and Sunday shifts for day-of-week bonuses
	period-boundary: Shifts straddling the start and the end of the period

HOW SCENARIOS WORK:
 1. Drop every shift (summaries are kept)
 2. Resolve the current reporting period
 3. Add the scenario's shifts through the normal validation path

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "night-shifts"}

NOTE:

	Scenarios drop all shifts. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Shift handlers
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/warp/shift-payroll/payroll"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "day-shifts",
		Name:        "Day Shifts",
		Description: "Ten 08:00-16:00 shifts with a 30 minute break, base rate only",
	},
	{
		ID:          "evening-shifts",
		Name:        "Evening Shifts",
		Description: "15:00-23:00 shifts that overlap evening bonus windows",
	},
	{
		ID:          "night-shifts",
		Name:        "Night Shifts",
		Description: "22:00-06:00 shifts split at midnight",
	},
	{
		ID:          "weekend",
		Name:        "Weekend",
		Description: "Saturday and Sunday shifts for day-of-week bonuses",
	},
	{
		ID:          "period-boundary",
		Name:        "Period Boundary",
		Description: "Night shifts straddling the start and the end of the period",
	},
}

// shiftTemplate is a shift relative to a reference date.
type shiftTemplate struct {
	dayOffset int
	start     payroll.TimeOfDay
	length    time.Duration
	breakTime time.Duration
}

func (t shiftTemplate) build(ref time.Time) (payroll.Shift, error) {
	start := ref.AddDate(0, 0, t.dayOffset).Add(t.start.Duration())
	return payroll.NewShift(start, start.Add(t.length), t.breakTime)
}

// scenarioShifts returns the templates for a scenario and the date they are
// relative to.
func scenarioShifts(id string, period payroll.ReportingPeriod) ([]shiftTemplate, time.Time, bool) {
	ref := period.Start
	switch id {
	case "day-shifts":
		var out []shiftTemplate
		for day := 0; day < 14; day++ {
			if wd := ref.AddDate(0, 0, day).Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}
			out = append(out, shiftTemplate{day, payroll.Clock(8, 0), 8 * time.Hour, 30 * time.Minute})
		}
		return out, ref, true

	case "evening-shifts":
		return []shiftTemplate{
			{1, payroll.Clock(15, 0), 8 * time.Hour, 0},
			{2, payroll.Clock(15, 0), 8 * time.Hour, 0},
			{3, payroll.Clock(17, 30), 6 * time.Hour, 30 * time.Minute},
		}, ref, true

	case "night-shifts":
		return []shiftTemplate{
			{3, payroll.Clock(22, 0), 8 * time.Hour, 0},
			{4, payroll.Clock(22, 0), 8 * time.Hour, 0},
			{5, payroll.Clock(23, 30), 4 * time.Hour, 0},
		}, ref, true

	case "weekend":
		// first Saturday on or after the period start
		for ref.Weekday() != time.Saturday {
			ref = ref.AddDate(0, 0, 1)
		}
		return []shiftTemplate{
			{0, payroll.Clock(10, 0), 6 * time.Hour, 0},
			{1, payroll.Clock(6, 0), 10 * time.Hour, 45 * time.Minute},
			{7, payroll.Clock(18, 0), 5 * time.Hour, 0},
		}, ref, true

	case "period-boundary":
		// the first shift starts before the period and only its second half
		// counts towards earnings; the last one ends after the period
		end := payroll.StartOfDay(period.End)
		return []shiftTemplate{
			{-1, payroll.Clock(20, 0), 8 * time.Hour, 0},
			{int(end.Sub(ref).Hours() / 24), payroll.Clock(20, 0), 8 * time.Hour, 0},
		}, ref, true
	}
	return nil, time.Time{}, false
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario replaces all shifts with a scenario's shifts.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shifts, err := h.loadScenario(r.Context(), req.ScenarioID)
	if err != nil {
		if errors.Is(err, errUnknownScenario) {
			writeError(w, http.StatusNotFound, "Unknown scenario", fmt.Errorf("%s: %w", req.ScenarioID, err))
			return
		}
		writeServiceError(w, "Failed to load scenario", err)
		return
	}

	dtos := make([]ShiftDTO, 0, len(shifts))
	for _, s := range shifts {
		dtos = append(dtos, toShiftDTO(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scenario": req.ScenarioID,
		"shifts":   dtos,
	})
}

var errUnknownScenario = errors.New("unknown scenario")

func (h *Handler) loadScenario(ctx context.Context, id string) ([]payroll.Shift, error) {
	period, err := h.Calculator.Period(h.today(), 0)
	if err != nil {
		return nil, err
	}
	templates, ref, ok := scenarioShifts(id, period)
	if !ok {
		return nil, errUnknownScenario
	}

	if err := h.Store.DropShifts(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear shifts: %w", err)
	}

	added := make([]payroll.Shift, 0, len(templates))
	for _, t := range templates {
		shift, err := t.build(ref)
		if err != nil {
			return added, err
		}
		shift, err = h.Store.AddShift(ctx, shift)
		if err != nil {
			return added, err
		}
		added = append(added, shift)
	}

	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()

	h.Logger.Info("scenario loaded", slog.String("scenario", id), slog.Int("shifts", len(added)))
	return added, nil
}
