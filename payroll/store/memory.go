// Package store provides in-memory payroll store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/shift-payroll/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	shifts    []payroll.Shift // ordered by Start
	summaries map[string]payroll.PeriodSummary

	// FailWith, when set, is returned by ShiftsOverlapping.
	FailWith error
}

func NewMemory() *Memory {
	return &Memory{summaries: make(map[string]payroll.PeriodSummary)}
}

// AddShift inserts a shift keeping Start order.
func (m *Memory) AddShift(_ context.Context, s payroll.Shift) (payroll.Shift, error) {
	if err := s.Validate(); err != nil {
		return payroll.Shift{}, err
	}
	if s.ID == "" {
		s.ID = payroll.NewShiftID()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertLocked(s)
	return s, nil
}

func (m *Memory) insertLocked(s payroll.Shift) {
	// Binary search for insertion point
	i := sort.Search(len(m.shifts), func(i int) bool {
		return m.shifts[i].Start.After(s.Start)
	})
	m.shifts = append(m.shifts, payroll.Shift{})
	copy(m.shifts[i+1:], m.shifts[i:])
	m.shifts[i] = s
}

func (m *Memory) removeLocked(id payroll.ShiftID) (payroll.Shift, bool) {
	for i, s := range m.shifts {
		if s.ID == id {
			m.shifts = append(m.shifts[:i], m.shifts[i+1:]...)
			return s, true
		}
	}
	return payroll.Shift{}, false
}

func (m *Memory) UpdateShift(_ context.Context, id payroll.ShiftID, start, end *time.Time) (payroll.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current payroll.Shift
	found := false
	for _, s := range m.shifts {
		if s.ID == id {
			current, found = s, true
			break
		}
	}
	if !found {
		return payroll.Shift{}, payroll.ErrShiftNotFound
	}
	updated, err := payroll.ApplyEdit(current, start, end)
	if err != nil {
		return payroll.Shift{}, err
	}
	m.removeLocked(id)
	m.insertLocked(updated)
	return updated, nil
}

func (m *Memory) RemoveShift(_ context.Context, id payroll.ShiftID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.removeLocked(id); !ok {
		return payroll.ErrShiftNotFound
	}
	return nil
}

func (m *Memory) ListShifts(_ context.Context, filter payroll.ListFilter) ([]payroll.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []payroll.Shift
	for _, s := range m.shifts {
		if filter.Matches(s) {
			result = append(result, s)
		}
	}
	if filter.NewestFirst {
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
	}
	return result, nil
}

func (m *Memory) ShiftsOverlapping(_ context.Context, from, to time.Time) ([]payroll.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailWith != nil {
		return nil, m.FailWith
	}
	period := payroll.ReportingPeriod{Start: from, End: to}
	var result []payroll.Shift
	for _, s := range m.shifts {
		if period.Overlaps(s) {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *Memory) DropShifts(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts = nil
	return nil
}

// =============================================================================
// SUMMARIES
// =============================================================================

func summaryKey(p payroll.ReportingPeriod) string {
	return payroll.FormatTimestamp(p.Start) + "|" + payroll.FormatTimestamp(p.End)
}

func (m *Memory) SaveSummary(_ context.Context, s payroll.PeriodSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[summaryKey(s.Period)] = s
	return nil
}

func (m *Memory) HasSummary(_ context.Context, period payroll.ReportingPeriod) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.summaries[summaryKey(period)]
	return ok, nil
}

func (m *Memory) ListSummaries(_ context.Context) ([]payroll.PeriodSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]payroll.PeriodSummary, 0, len(m.summaries))
	for _, s := range m.summaries {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Period.Start.After(result[j].Period.Start)
	})
	return result, nil
}
