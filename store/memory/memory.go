// Package memory provides an in-memory Store (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/hours-engine/generic"
	"github.com/warp/hours-engine/timekeeping"
)

// =============================================================================
// MEMORY STORE - In-memory implementation of every timekeeping provider
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[generic.EmployeeID]timekeeping.Employee
	periods   map[generic.EmployeeID][]timekeeping.EmploymentPeriod
	weeks     map[weekKey]timekeeping.WeeklyRecord
	expected  map[expectedKey]timekeeping.ExpectedImpact
	absences  []timekeeping.AbsenceType
	contracts []timekeeping.ContractType
}

type weekKey struct {
	EmployeeID generic.EmployeeID
	Week       generic.WeekID
}

type expectedKey struct {
	Week        generic.WeekID
	DisplayName string
}

var _ timekeeping.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		employees: make(map[generic.EmployeeID]timekeeping.Employee),
		periods:   make(map[generic.EmployeeID][]timekeeping.EmploymentPeriod),
		weeks:     make(map[weekKey]timekeeping.WeeklyRecord),
		expected:  make(map[expectedKey]timekeeping.ExpectedImpact),
	}
}

// -----------------------------------------------------------------------------
// Rules
// -----------------------------------------------------------------------------

func (m *Memory) SaveRules(_ context.Context, absences []timekeeping.AbsenceType, contracts []timekeeping.ContractType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.absences = append([]timekeeping.AbsenceType(nil), absences...)
	m.contracts = append([]timekeeping.ContractType(nil), contracts...)
	return nil
}

func (m *Memory) LoadRules(_ context.Context) (timekeeping.RuleTables, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return timekeeping.NewRuleTables(m.absences, m.contracts), nil
}

// -----------------------------------------------------------------------------
// Employees and employment periods
// -----------------------------------------------------------------------------

func (m *Memory) SaveEmployee(_ context.Context, e timekeeping.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id generic.EmployeeID) (timekeeping.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.employees[id]
	if !ok {
		return timekeeping.Employee{}, generic.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]timekeeping.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]timekeeping.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SavePeriod inserts or replaces a period by ID.
func (m *Memory) SavePeriod(_ context.Context, p timekeeping.EmploymentPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[p.EmployeeID]; !ok {
		return generic.ErrEmployeeNotFound
	}
	list := m.periods[p.EmployeeID]
	for i := range list {
		if list[i].ID == p.ID {
			list[i] = p
			return nil
		}
	}
	m.periods[p.EmployeeID] = append(list, p)
	return nil
}

func (m *Memory) ListPeriods(_ context.Context, employeeID generic.EmployeeID) ([]timekeeping.EmploymentPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]timekeeping.EmploymentPeriod(nil), m.periods[employeeID]...), nil
}

// -----------------------------------------------------------------------------
// Weekly records
// -----------------------------------------------------------------------------

func (m *Memory) ListWeeks(_ context.Context, employeeID generic.EmployeeID) ([]timekeeping.WeeklyRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []timekeeping.WeeklyRecord
	for k, rec := range m.weeks {
		if k.EmployeeID == employeeID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week.Before(out[j].Week) })
	return out, nil
}

func (m *Memory) GetWeek(_ context.Context, employeeID generic.EmployeeID, week generic.WeekID) (timekeeping.WeeklyRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.weeks[weekKey{employeeID, week}]
	if !ok {
		return timekeeping.WeeklyRecord{}, generic.ErrWeekNotFound
	}
	return rec, nil
}

func (m *Memory) SaveWeek(_ context.Context, rec timekeeping.WeeklyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := weekKey{rec.EmployeeID, rec.Week}
	if existing, ok := m.weeks[k]; ok && existing.Confirmed {
		return &generic.WeekStateError{EmployeeID: rec.EmployeeID, Week: rec.Week, Err: generic.ErrWeekConfirmed}
	}
	rec.Confirmed = false
	m.weeks[k] = rec
	return nil
}

// ConfirmWeek writes and confirms under one lock.
func (m *Memory) ConfirmWeek(_ context.Context, rec timekeeping.WeeklyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := weekKey{rec.EmployeeID, rec.Week}
	if existing, ok := m.weeks[k]; ok && existing.Confirmed {
		return &generic.WeekStateError{EmployeeID: rec.EmployeeID, Week: rec.Week, Err: generic.ErrWeekConfirmed}
	}
	rec.Confirmed = true
	m.weeks[k] = rec
	return nil
}

func (m *Memory) UnlockWeek(_ context.Context, employeeID generic.EmployeeID, week generic.WeekID) (timekeeping.WeeklyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := weekKey{employeeID, week}
	rec, ok := m.weeks[k]
	if !ok {
		return timekeeping.WeeklyRecord{}, generic.ErrWeekNotFound
	}
	if !rec.Confirmed {
		return timekeeping.WeeklyRecord{}, &generic.WeekStateError{EmployeeID: employeeID, Week: week, Err: generic.ErrWeekNotConfirmed}
	}
	rec.Confirmed = false
	rec.ConfirmedAt = nil
	rec.Impact = nil
	m.weeks[k] = rec
	return rec, nil
}

func (m *Memory) UpdateAudit(_ context.Context, employeeID generic.EmployeeID, week generic.WeekID, hasDifference bool, comment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := weekKey{employeeID, week}
	rec, ok := m.weeks[k]
	if !ok {
		return generic.ErrWeekNotFound
	}
	rec.HasDifference = hasDifference
	rec.Comment = comment
	m.weeks[k] = rec
	return nil
}

// -----------------------------------------------------------------------------
// Legacy audit dataset
// -----------------------------------------------------------------------------

// SaveExpected replaces rows with the same week and display name.
func (m *Memory) SaveExpected(_ context.Context, rows []timekeeping.ExpectedImpact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.expected[expectedKey{r.Week, r.DisplayName}] = r
	}
	return nil
}

func (m *Memory) ExpectedImpact(_ context.Context, week generic.WeekID, displayName string) (timekeeping.ExpectedImpact, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.expected[expectedKey{week, displayName}]
	return r, ok, nil
}

// Reset clears all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = make(map[generic.EmployeeID]timekeeping.Employee)
	m.periods = make(map[generic.EmployeeID][]timekeeping.EmploymentPeriod)
	m.weeks = make(map[weekKey]timekeeping.WeeklyRecord)
	m.expected = make(map[expectedKey]timekeeping.ExpectedImpact)
	m.absences = nil
	m.contracts = nil
	return nil
}
