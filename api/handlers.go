/*
handlers.go - HTTP API handlers for the shift payroll service

PURPOSE:
  Exposes shift records and salary calculations via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the payroll engine.

ENDPOINTS:
  Shifts:
    GET    /api/shifts               List shifts (?all=true, ?offset=N, ?sort=desc)
    POST   /api/shifts               Record a shift
    PUT    /api/shifts/{id}          Change start and/or end
    DELETE /api/shifts/{id}          Remove one shift
    DELETE /api/shifts               Remove every shift

  Calculations:
    GET    /api/period?offset=N      Reporting period N periods back
    GET    /api/salary?offset=N      Worked time and earnings for that period
    GET    /api/config               Effective wage configuration
    GET    /api/summaries            Period-close summaries

  Scenarios:
    GET    /api/scenarios            List demo scenarios
    POST   /api/scenarios/load       Replace all shifts with a demo scenario

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Shift and summary persistence
  - Calculator: Runs the engine over the store
  - Now: Clock used for "today"; replaced in tests

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid timestamps, malformed shifts, bad offsets
  - 404: Shift not found
  - 500: Store failures

SECURITY NOTE:
  No authentication. The service is meant for one person's own records.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/shift-payroll/factory"
	"github.com/warp/shift-payroll/payroll"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Repository is what the API needs from a store.
type Repository interface {
	payroll.ShiftRepository
	payroll.SummaryStore
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      Repository
	Calculator *payroll.Calculator
	Wage       payroll.WageConfiguration
	Metrics    *Metrics
	Logger     *slog.Logger

	// Now returns the current wall-clock time.
	Now func() time.Time

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler over the given store and wage configuration.
func NewHandler(store Repository, wage payroll.WageConfiguration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:      store,
		Calculator: payroll.NewCalculator(store, wage, logger),
		Wage:       wage,
		Metrics:    NewMetrics(),
		Logger:     logger,
		Now:        time.Now,
	}
}

func (h *Handler) today() time.Time {
	return payroll.Naive(h.Now())
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns shifts in the current period, a past period, or all.
// GET /api/shifts?all=true|offset=N&sort=desc
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := payroll.ListFilter{NewestFirst: strings.EqualFold(q.Get("sort"), "desc")}

	if all, _ := strconv.ParseBool(q.Get("all")); !all {
		offset, err := parseOffset(q.Get("offset"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid offset", err)
			return
		}
		period, err := h.Calculator.Period(h.today(), offset)
		if err != nil {
			writeServiceError(w, "Failed to resolve period", err)
			return
		}
		filter.Period = &period
	}

	shifts, err := h.Store.ListShifts(r.Context(), filter)
	if err != nil {
		writeServiceError(w, "Failed to list shifts", err)
		return
	}

	dtos := make([]ShiftDTO, 0, len(shifts))
	for _, s := range shifts {
		dtos = append(dtos, toShiftDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateShift records a shift.
// POST /api/shifts
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := parseWireTime(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start", err)
		return
	}
	end, err := parseWireTime(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end", err)
		return
	}

	shift, err := payroll.NewShift(start, end, time.Duration(req.BreakMinutes)*time.Minute)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift", err)
		return
	}

	shift, err = h.Store.AddShift(r.Context(), shift)
	if err != nil {
		writeServiceError(w, "Failed to add shift", err)
		return
	}

	h.Metrics.ShiftWrites.WithLabelValues("add").Inc()
	h.Logger.Info("shift added", slog.String("id", string(shift.ID)), slog.Duration("duration", shift.Duration()))
	writeJSON(w, http.StatusCreated, toShiftDTO(shift))
}

// UpdateShift changes the start and/or end of a shift.
// PUT /api/shifts/{id}
func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	id := payroll.ShiftID(chi.URLParam(r, "id"))

	var req UpdateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var start, end *time.Time
	if req.Start != nil {
		t, err := parseWireTime(*req.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start", err)
			return
		}
		start = &t
	}
	if req.End != nil {
		t, err := parseWireTime(*req.End)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end", err)
			return
		}
		end = &t
	}

	shift, err := h.Store.UpdateShift(r.Context(), id, start, end)
	if err != nil {
		writeServiceError(w, "Failed to update shift", err)
		return
	}

	h.Metrics.ShiftWrites.WithLabelValues("update").Inc()
	writeJSON(w, http.StatusOK, toShiftDTO(shift))
}

// DeleteShift removes one shift.
// DELETE /api/shifts/{id}
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id := payroll.ShiftID(chi.URLParam(r, "id"))

	if err := h.Store.RemoveShift(r.Context(), id); err != nil {
		writeServiceError(w, "Failed to remove shift", err)
		return
	}

	h.Metrics.ShiftWrites.WithLabelValues("remove").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// DropShifts removes every shift. Summaries are kept.
// DELETE /api/shifts
func (h *Handler) DropShifts(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DropShifts(r.Context()); err != nil {
		writeServiceError(w, "Failed to drop shifts", err)
		return
	}

	h.Metrics.ShiftWrites.WithLabelValues("drop").Inc()
	h.Logger.Warn("all shifts dropped")
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// GetPeriod returns the reporting period offset periods back.
// GET /api/period?offset=N
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	offset, err := parseOffset(r.URL.Query().Get("offset"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid offset", err)
		return
	}

	period, err := h.Calculator.Period(h.today(), offset)
	if err != nil {
		writeServiceError(w, "Failed to resolve period", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(period, offset, h.Wage.Period))
}

// GetSalary calculates worked time and earnings for a period.
// GET /api/salary?offset=N
func (h *Handler) GetSalary(w http.ResponseWriter, r *http.Request) {
	offset, err := parseOffset(r.URL.Query().Get("offset"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid offset", err)
		return
	}

	period, err := h.Calculator.Period(h.today(), offset)
	if err != nil {
		writeServiceError(w, "Failed to resolve period", err)
		return
	}

	started := time.Now()
	report, err := h.Calculator.Calculate(r.Context(), period)
	h.Metrics.CalculationDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		h.Metrics.Calculations.WithLabelValues("error").Inc()
		writeServiceError(w, "Failed to calculate salary", err)
		return
	}

	h.Metrics.Calculations.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, toSalaryDTO(report, offset, h.Wage.Period))
}

// GetConfig returns the effective wage configuration.
// GET /api/config
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	warnings := make([]string, 0, len(h.Wage.Warnings))
	for _, warning := range h.Wage.Warnings {
		warnings = append(warnings, warning.String())
	}
	writeJSON(w, http.StatusOK, ConfigDTO{Wage: factory.ToJSON(h.Wage), Warnings: warnings})
}

// ListSummaries returns persisted period-close summaries, newest first.
// GET /api/summaries
func (h *Handler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Store.ListSummaries(r.Context())
	if err != nil {
		writeServiceError(w, "Failed to list summaries", err)
		return
	}

	dtos := make([]SummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		dtos = append(dtos, toSummaryDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Health reports whether the store is reachable.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(interface{ Ping(ctx context.Context) error }); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func parseOffset(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("offset must not be negative")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError picks the status from the error's kind.
func writeServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case payroll.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case payroll.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
