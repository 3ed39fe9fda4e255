/*
service.go - I/O orchestration around the pure calculators

PURPOSE:
  The calculators never touch storage. Service loads rule tables,
  employment history and weekly records through the provider interfaces
  below, calls the calculators, and writes back only through the
  WeeklyRecordStore (open, save, confirm, unlock, audit annotations).

PROVIDERS:
  RuleSource            current AbsenceType and ContractType tables
  EmploymentSource      employment periods with nested histories
  WeeklyRecordStore     weekly records keyed by ISO week
  EmployeeSource        display names for the audit dataset
  ExpectedImpactSource  legacy "expected impact" rows

  store/memory and store/sqlite implement all of them.

CONFIRMATION:
  ConfirmWeek takes the starting balance from the ledger replay, or from
  the persisted snapshot when the week was unlocked for correction, and
  hands the record, its PreviousBalances snapshot and its impact to the
  store in one ConfirmWeek call. Stores make that write atomic.

SEE ALSO:
  - ledger.go, weekly.go, annual.go, vacation.go, audit.go
  - api/handlers.go: the HTTP surface over Service
*/
package timekeeping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/hours-engine/generic"
)

// =============================================================================
// PROVIDER INTERFACES
// =============================================================================

type RuleSource interface {
	LoadRules(ctx context.Context) (RuleTables, error)
}

type EmploymentSource interface {
	ListPeriods(ctx context.Context, employeeID generic.EmployeeID) ([]EmploymentPeriod, error)
}

type EmployeeSource interface {
	GetEmployee(ctx context.Context, employeeID generic.EmployeeID) (Employee, error)
}

type ExpectedImpactSource interface {
	// ExpectedImpact returns ok=false when the dataset has no row.
	ExpectedImpact(ctx context.Context, week generic.WeekID, displayName string) (impact ExpectedImpact, ok bool, err error)
}

type WeeklyRecordSource interface {
	ListWeeks(ctx context.Context, employeeID generic.EmployeeID) ([]WeeklyRecord, error)
	// GetWeek returns generic.ErrWeekNotFound when absent.
	GetWeek(ctx context.Context, employeeID generic.EmployeeID, week generic.WeekID) (WeeklyRecord, error)
}

type WeeklyRecordStore interface {
	WeeklyRecordSource

	// SaveWeek upserts an unconfirmed record. Fails with ErrWeekConfirmed
	// if the stored record is confirmed.
	SaveWeek(ctx context.Context, rec WeeklyRecord) error

	// ConfirmWeek atomically writes rec (with PreviousBalances and Impact)
	// and marks it confirmed. Fails with ErrWeekConfirmed if already confirmed.
	ConfirmWeek(ctx context.Context, rec WeeklyRecord) error

	// UnlockWeek clears the confirmed flag, keeping PreviousBalances.
	// Fails with ErrWeekNotConfirmed if the record is open.
	UnlockWeek(ctx context.Context, employeeID generic.EmployeeID, week generic.WeekID) (WeeklyRecord, error)

	// UpdateAudit stores the reconciliation annotation, confirmed or not.
	UpdateAudit(ctx context.Context, employeeID generic.EmployeeID, week generic.WeekID, hasDifference bool, comment string) error
}

// Store is everything Service needs.
type Store interface {
	RuleSource
	EmploymentSource
	EmployeeSource
	ExpectedImpactSource
	WeeklyRecordStore
}

// =============================================================================
// SERVICE
// =============================================================================

// Service wires the stores to the calculators.
type Service struct {
	Store       Store
	Annual      AnnualPolicy
	Vacation    VacationPolicy
	Holidays    generic.HolidayCalendar
	AuditCutoff generic.TimePoint
	Log         logrus.FieldLogger
	Now         func() time.Time
}

// NewService creates a service with default policies.
func NewService(store Store, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		Store:    store,
		Annual:   DefaultAnnualPolicy(),
		Vacation: DefaultVacationPolicy(),
		Log:      log,
		Now:      time.Now,
	}
}

func (s *Service) calculator(ctx context.Context) (*Calculator, error) {
	rules, err := s.Store.LoadRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return NewCalculator(rules, s.Log), nil
}

// employeeData loads the calculator, history and every weekly record.
func (s *Service) employeeData(ctx context.Context, employeeID generic.EmployeeID) (*Calculator, EmploymentHistory, []WeeklyRecord, error) {
	calc, err := s.calculator(ctx)
	if err != nil {
		return nil, EmploymentHistory{}, nil, err
	}
	periods, err := s.Store.ListPeriods(ctx, employeeID)
	if err != nil {
		return nil, EmploymentHistory{}, nil, fmt.Errorf("load employment periods: %w", err)
	}
	records, err := s.Store.ListWeeks(ctx, employeeID)
	if err != nil {
		return nil, EmploymentHistory{}, nil, fmt.Errorf("load weekly records: %w", err)
	}
	return calc, NewEmploymentHistory(periods), records, nil
}

func (s *Service) logger(employeeID generic.EmployeeID) logrus.FieldLogger {
	return s.Log.WithField("employee_id", employeeID)
}

// -----------------------------------------------------------------------------
// Ledger
// -----------------------------------------------------------------------------

// Timeline returns the memoizable fold over all confirmed weeks.
func (s *Service) Timeline(ctx context.Context, employeeID generic.EmployeeID) (Timeline, error) {
	calc, history, records, err := s.employeeData(ctx, employeeID)
	if err != nil {
		return Timeline{}, err
	}
	return calc.Walk(history, records), nil
}

// BalancesAsOf returns the balances at the start of week.
func (s *Service) BalancesAsOf(ctx context.Context, employeeID generic.EmployeeID, week generic.WeekID) (Balances, error) {
	calc, history, records, err := s.employeeData(ctx, employeeID)
	if err != nil {
		return Balances{}, err
	}
	return calc.BalancesAsOf(history, records, week), nil
}

// FinalBalances returns the balances after every confirmed week.
func (s *Service) FinalBalances(ctx context.Context, employeeID generic.EmployeeID) (FinalBalances, error) {
	calc, history, records, err := s.employeeData(ctx, employeeID)
	if err != nil {
		return FinalBalances{}, err
	}
	return calc.FinalBalances(history, records), nil
}

// -----------------------------------------------------------------------------
// Data entry
// -----------------------------------------------------------------------------

// OpenWeek returns the stored week, creating it from the schedule if absent.
func (s *Service) OpenWeek(ctx context.Context, employeeID generic.EmployeeID, week generic.WeekID) (WeeklyRecord, error) {
	rec, err := s.Store.GetWeek(ctx, employeeID, week)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, generic.ErrWeekNotFound) {
		return WeeklyRecord{}, err
	}
	if _, err := generic.ParseWeekID(string(week)); err != nil {
		return WeeklyRecord{}, err
	}
	if _, err := s.Store.GetEmployee(ctx, employeeID); err != nil {
		return WeeklyRecord{}, err
	}
	periods, err := s.Store.ListPeriods(ctx, employeeID)
	if err != nil {
		return WeeklyRecord{}, fmt.Errorf("load employment periods: %w", err)
	}
	rec = OpenWeek(employeeID, week, NewEmploymentHistory(periods), s.Holidays)
	if err := s.Store.SaveWeek(ctx, rec); err != nil {
		return WeeklyRecord{}, err
	}
	s.logger(employeeID).WithField("week", week).Info("week opened for data entry")
	return rec, nil
}

// SaveWeek validates and stores an unconfirmed week.
func (s *Service) SaveWeek(ctx context.Context, rec WeeklyRecord) error {
	if err := ValidateWeek(rec); err != nil {
		return err
	}
	return s.Store.SaveWeek(ctx, rec)
}

// EditWeek applies edit to the stored (or freshly opened) week and saves it.
func (s *Service) EditWeek(ctx context.Context, employeeID generic.EmployeeID, week generic.WeekID, edit WeekEdit) (WeeklyRecord, error) {
	calc, err := s.calculator(ctx)
	if err != nil {
		return WeeklyRecord{}, err
	}
	rec, err := s.OpenWeek(ctx, employeeID, week)
	if err != nil {
		return WeeklyRecord{}, err
	}
	if rec.Confirmed {
		return WeeklyRecord{}, &generic.WeekStateError{EmployeeID: employeeID, Week: week, Err: generic.ErrWeekConfirmed}
	}
	edited, err := edit.Apply(rec, calc.Rules)
	if err != nil {
		return WeeklyRecord{}, err
	}
	if err := s.Store.SaveWeek(ctx, edited); err != nil {
		return WeeklyRecord{}, err
	}
	return edited, nil
}

// PreviewResult is a live projection of an unsaved week.
type PreviewResult struct {
	Record   WeeklyRecord `json:"record"`
	Starting Balances     `json:"starting"`
	Impact   WeeklyImpact `json:"impact"`
}

// Preview applies unsaved edits over the stored (or freshly opened) week
// and projects the balances. Nothing is written.
func (s *Service) Preview(ctx context.Context, employeeID generic.EmployeeID, week generic.WeekID, edit WeekEdit) (PreviewResult, error) {
	calc, history, records, err := s.employeeData(ctx, employeeID)
	if err != nil {
		return PreviewResult{}, err
	}
	rec, err := s.Store.GetWeek(ctx, employeeID, week)
	if errors.Is(err, generic.ErrWeekNotFound) {
		if _, err := generic.ParseWeekID(string(week)); err != nil {
			return PreviewResult{}, err
		}
		rec = OpenWeek(employeeID, week, history, s.Holidays)
	} else if err != nil {
		return PreviewResult{}, err
	}
	edited, err := edit.Apply(rec, calc.Rules)
	if err != nil {
		return PreviewResult{}, err
	}
	starting := startingBalances(calc, history, records, rec)
	return PreviewResult{
		Record:   edited,
		Starting: starting,
		Impact:   calc.ComputeWeek(edited, starting, history),
	}, nil
}

// startingBalances is the snapshot of an unlocked week, else the replayed
// balance before it.
func startingBalances(calc *Calculator, history EmploymentHistory, records []WeeklyRecord, rec WeeklyRecord) Balances {
	if !rec.Confirmed && rec.PreviousBalances != nil {
		return *rec.PreviousBalances
	}
	return calc.BalancesAsOf(history, records, rec.Week)
}

// -----------------------------------------------------------------------------
// Confirmation
// -----------------------------------------------------------------------------

// ConfirmWeek applies the week to the ledger.
func (s *Service) ConfirmWeek(ctx context.Context, employeeID generic.EmployeeID, week generic.WeekID) (WeeklyRecord, error) {
	calc, history, records, err := s.employeeData(ctx, employeeID)
	if err != nil {
		return WeeklyRecord{}, err
	}
	rec, err := s.Store.GetWeek(ctx, employeeID, week)
	if err != nil {
		return WeeklyRecord{}, err
	}
	if rec.Confirmed {
		return WeeklyRecord{}, &generic.WeekStateError{EmployeeID: employeeID, Week: week, Err: generic.ErrWeekConfirmed}
	}
	if err := ValidateWeek(rec); err != nil {
		return WeeklyRecord{}, err
	}

	starting := startingBalances(calc, history, records, rec)
	impact := calc.ComputeWeek(rec, starting, history)
	now := s.Now().UTC()

	rec.PreviousBalances = &starting
	rec.Impact = &impact
	rec.Confirmed = true
	rec.ConfirmedAt = &now
	if err := s.Store.ConfirmWeek(ctx, rec); err != nil {
		return WeeklyRecord{}, err
	}

	s.logger(employeeID).WithFields(logrus.Fields{
		"week":           week,
		"ordinary_delta": impact.OrdinaryDelta.String(),
		"holiday_delta":  impact.HolidayDelta.String(),
		"leave_delta":    impact.LeaveDelta.String(),
	}).Info("week confirmed")
	return rec, nil
}

// EnableCorrection un-confirms the week. The returned record carries the
// persisted PreviousBalances snapshot, which editing resumes from.
func (s *Service) EnableCorrection(ctx context.Context, employeeID generic.EmployeeID, week generic.WeekID) (WeeklyRecord, error) {
	rec, err := s.Store.UnlockWeek(ctx, employeeID, week)
	if err != nil {
		return WeeklyRecord{}, err
	}
	s.logger(employeeID).WithField("week", week).Info("week unlocked for correction")
	return rec, nil
}

// -----------------------------------------------------------------------------
// Yearly figures
// -----------------------------------------------------------------------------

// TheoreticalAnnualHours returns the year's target with its breakdown.
func (s *Service) TheoreticalAnnualHours(ctx context.Context, employeeID generic.EmployeeID, year int) (AnnualHours, error) {
	calc, history, records, err := s.employeeData(ctx, employeeID)
	if err != nil {
		return AnnualHours{}, err
	}
	return calc.TheoreticalAnnualHours(history, records, year, s.Annual.For(year)), nil
}

// AbsenceBudgetUsage reports absence hours against annual budgets.
func (s *Service) AbsenceBudgetUsage(ctx context.Context, employeeID generic.EmployeeID, year int) ([]BudgetUsage, error) {
	calc, _, records, err := s.employeeData(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return calc.AbsenceBudgetUsage(records, year), nil
}

// VacationEntitlement returns the year's vacation position.
func (s *Service) VacationEntitlement(ctx context.Context, employeeID generic.EmployeeID, year int) (VacationEntitlement, error) {
	calc, history, records, err := s.employeeData(ctx, employeeID)
	if err != nil {
		return VacationEntitlement{}, err
	}
	return calc.VacationEntitlement(history, records, year, s.Vacation), nil
}

// -----------------------------------------------------------------------------
// Audit
// -----------------------------------------------------------------------------

// ReconcileWeek checks one week against the legacy dataset and stores the
// annotation when the check ran.
func (s *Service) ReconcileWeek(ctx context.Context, employeeID generic.EmployeeID, week generic.WeekID) (AuditResult, error) {
	calc, history, _, err := s.employeeData(ctx, employeeID)
	if err != nil {
		return AuditResult{}, err
	}
	rec, err := s.Store.GetWeek(ctx, employeeID, week)
	if err != nil {
		return AuditResult{}, err
	}
	return s.reconcile(ctx, calc, history, rec)
}

// ReconcileAll checks every stored week of the employee, oldest first.
func (s *Service) ReconcileAll(ctx context.Context, employeeID generic.EmployeeID) (map[generic.WeekID]AuditResult, error) {
	calc, history, records, err := s.employeeData(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	out := make(map[generic.WeekID]AuditResult, len(records))
	for _, rec := range records {
		res, err := s.reconcile(ctx, calc, history, rec)
		if err != nil {
			return nil, err
		}
		out[rec.Week] = res
	}
	return out, nil
}

func (s *Service) reconcile(ctx context.Context, calc *Calculator, history EmploymentHistory, rec WeeklyRecord) (AuditResult, error) {
	emp, err := s.Store.GetEmployee(ctx, rec.EmployeeID)
	if err != nil {
		return AuditResult{}, err
	}
	var expected *ExpectedImpact
	if row, ok, err := s.Store.ExpectedImpact(ctx, rec.Week, emp.DisplayName); err != nil {
		return AuditResult{}, fmt.Errorf("load expected impact: %w", err)
	} else if ok {
		expected = &row
	}

	res := calc.ReconcileWeek(rec, history, expected, s.AuditCutoff)
	if res.Skipped {
		return res, nil
	}
	if res.HasDifference != rec.HasDifference || res.Comment != rec.Comment {
		if err := s.Store.UpdateAudit(ctx, rec.EmployeeID, rec.Week, res.HasDifference, res.Comment); err != nil {
			return AuditResult{}, err
		}
	}
	if res.HasDifference {
		s.logger(rec.EmployeeID).WithFields(logrus.Fields{
			"week":  rec.Week,
			"lines": len(res.Lines),
		}).Warn("audit difference found")
	}
	return res, nil
}
