/*
scheduler.go - Period-close summary scheduler

PURPOSE:
  Periodically checks whether the previous reporting period has been
  summarised and, if not, calculates it and stores the result. Summaries
  give a stable record of what a closed period paid even if shifts are
  edited later.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Looks only at the period immediately before the current one
  - Skips periods that already have a summary
  - Runs once immediately on start

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewPeriodCloseScheduler(store, calculator, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: ListSummaries endpoint
  - payroll/calculator.go: Report.Summarize
*/
package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/shift-payroll/payroll"
)

// PeriodCloseScheduler stores a summary for each period once it has ended.
type PeriodCloseScheduler struct {
	Store         payroll.SummaryStore
	Calculator    *payroll.Calculator
	Metrics       *Metrics
	Logger        *slog.Logger
	CheckInterval time.Duration
	Enabled       bool

	// Now returns the current wall-clock time.
	Now func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewPeriodCloseScheduler creates a new scheduler.
func NewPeriodCloseScheduler(store payroll.SummaryStore, calc *payroll.Calculator, logger *slog.Logger) *PeriodCloseScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PeriodCloseScheduler{
		Store:         store,
		Calculator:    calc,
		Logger:        logger.With(slog.String("component", "scheduler")),
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Now:           time.Now,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (s *PeriodCloseScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Logger.Info("disabled, not starting")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run()

	s.Logger.Info("started", slog.Duration("interval", s.CheckInterval))
}

// Stop stops the scheduler and waits for an in-flight check to finish.
func (s *PeriodCloseScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Logger.Info("stopped")
	}
}

func (s *PeriodCloseScheduler) run() {
	defer s.wg.Done()

	s.checkAndProcess()

	for {
		select {
		case <-s.ticker.C:
			s.checkAndProcess()
		case <-s.stop:
			return
		}
	}
}

func (s *PeriodCloseScheduler) checkAndProcess() {
	ctx, cancel := context.WithTimeout(context.Background(), s.CheckInterval)
	defer cancel()

	if _, err := s.RunNow(ctx); err != nil {
		s.Logger.Error("period close failed", slog.String("error", err.Error()))
	}
}

// RunNow summarises the previous period if that has not happened yet. It
// reports whether a new summary was stored.
func (s *PeriodCloseScheduler) RunNow(ctx context.Context) (bool, error) {
	period, err := s.Calculator.Period(payroll.Naive(s.Now()), 1)
	if err != nil {
		return false, err
	}

	done, err := s.Store.HasSummary(ctx, period)
	if err != nil {
		return false, fmt.Errorf("check summary for %s: %w", period, err)
	}
	if done {
		return false, nil
	}

	report, err := s.Calculator.Calculate(ctx, period)
	if err != nil {
		return false, err
	}

	summary := report.Summarize(uuid.NewString(), time.Now().UTC())
	if err := s.Store.SaveSummary(ctx, summary); err != nil {
		return false, err
	}
	if s.Metrics != nil {
		s.Metrics.SummariesSaved.Inc()
	}

	s.Logger.Info("summary saved",
		slog.String("period", period.String()),
		slog.Int("shifts", report.ShiftCount),
		slog.String("earned", report.Earned.StringFixed(2)),
	)
	return true, nil
}
