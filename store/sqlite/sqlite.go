/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements timekeeping.Store (rules, employment periods, employees,
  weekly records, legacy expected impacts) plus the admin writes used by
  the API and the seed command.

KEY TABLES:
  employees:          ID and display name
  contract_types:     bag gating flags per contract code
  absence_types:      absence rule flags per code
  employment_periods: one row per period, nested histories as JSON
  weekly_records:     one row per (employee, ISO week)
  expected_impacts:   legacy audit dataset keyed by (week, display name)

CONFIRMATION:
  ConfirmWeek runs inside a SQL transaction: the confirmed flag is checked
  and the record, its PreviousBalances snapshot and its impact are written
  together, so a failure leaves the week open.

NUMBERS:
  Hours are stored as decimal strings and parsed back with shopspring/decimal.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.
  ":memory:" databases are pinned to a single connection so every query
  sees the same database.

MIGRATION:
  Versioned migrations are embedded from migrations/*.sql and applied with
  golang-migrate on New().

USAGE:
  store, err := sqlite.New("./data/hours.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - timekeeping/service.go: interface definitions
  - store/memory/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/hours-engine/generic"
	"github.com/warp/hours-engine/timekeeping"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements timekeeping.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ timekeeping.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path and applies
// pending migrations. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrator() (*migrate.Migrate, error) {
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return nil, err
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", source, "sqlite3", driver)
}

// migrate applies all pending migrations.
func (s *Store) migrate() error {
	m, err := s.migrator()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// MigrationVersion reports the applied schema version.
func (s *Store) MigrationVersion() (version uint, dirty bool, err error) {
	m, err := s.migrator()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// =============================================================================
// RULE TABLES
// =============================================================================

// SaveRules replaces both rule tables.
func (s *Store) SaveRules(ctx context.Context, absences []timekeeping.AbsenceType, contracts []timekeeping.ContractType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM absence_types`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM contract_types`); err != nil {
		return err
	}
	for _, a := range absences {
		var budget sql.NullString
		if a.AnnualHourBudget != nil {
			budget = nullString(a.AnnualHourBudget.String())
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO absence_types (code, name, computes_to_weekly_hours, computes_to_annual_hours,
				suspends_contract, annual_hour_budget, deducts_theoretical_hours, computes_full_day,
				affected_bag, allows_partial_hours, is_vacation)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(a.Code), a.Name, a.ComputesToWeeklyHours, a.ComputesToAnnualHours,
			a.SuspendsContract, budget, a.DeductsTheoreticalHours, a.ComputesFullDay,
			string(a.AffectedBag), a.AllowsPartialHours, a.IsVacation,
		)
		if err != nil {
			return fmt.Errorf("failed to save absence type %s: %w", a.Code, err)
		}
	}
	for _, c := range contracts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contract_types (code, name, computes_ordinary_bag, computes_holiday_bag, computes_leave_bag)
			VALUES (?, ?, ?, ?, ?)`,
			string(c.Code), c.Name, c.ComputesOrdinaryBag, c.ComputesHolidayBag, c.ComputesLeaveBag,
		)
		if err != nil {
			return fmt.Errorf("failed to save contract type %s: %w", c.Code, err)
		}
	}
	return tx.Commit()
}

// LoadRules reads both rule tables.
func (s *Store) LoadRules(ctx context.Context) (timekeeping.RuleTables, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name, computes_to_weekly_hours, computes_to_annual_hours, suspends_contract,
			annual_hour_budget, deducts_theoretical_hours, computes_full_day, affected_bag,
			allows_partial_hours, is_vacation
		FROM absence_types ORDER BY code`)
	if err != nil {
		return timekeeping.RuleTables{}, err
	}
	defer rows.Close()

	var absences []timekeeping.AbsenceType
	for rows.Next() {
		var a timekeeping.AbsenceType
		var code, bag string
		var budget sql.NullString
		if err := rows.Scan(&code, &a.Name, &a.ComputesToWeeklyHours, &a.ComputesToAnnualHours,
			&a.SuspendsContract, &budget, &a.DeductsTheoreticalHours, &a.ComputesFullDay, &bag,
			&a.AllowsPartialHours, &a.IsVacation); err != nil {
			return timekeeping.RuleTables{}, err
		}
		a.Code = timekeeping.AbsenceCode(code)
		a.AffectedBag = timekeeping.Bag(bag)
		if budget.Valid {
			b, err := parseDecimal(budget.String)
			if err != nil {
				return timekeeping.RuleTables{}, err
			}
			a.AnnualHourBudget = &b
		}
		absences = append(absences, a)
	}
	if err := rows.Err(); err != nil {
		return timekeeping.RuleTables{}, err
	}

	crows, err := s.db.QueryContext(ctx, `
		SELECT code, name, computes_ordinary_bag, computes_holiday_bag, computes_leave_bag
		FROM contract_types ORDER BY code`)
	if err != nil {
		return timekeeping.RuleTables{}, err
	}
	defer crows.Close()

	var contracts []timekeeping.ContractType
	for crows.Next() {
		var c timekeeping.ContractType
		var code string
		if err := crows.Scan(&code, &c.Name, &c.ComputesOrdinaryBag, &c.ComputesHolidayBag, &c.ComputesLeaveBag); err != nil {
			return timekeeping.RuleTables{}, err
		}
		c.Code = timekeeping.ContractCode(code)
		contracts = append(contracts, c)
	}
	if err := crows.Err(); err != nil {
		return timekeeping.RuleTables{}, err
	}

	return timekeeping.NewRuleTables(absences, contracts), nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee inserts or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, e timekeeping.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, display_name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name`,
		string(e.ID), e.DisplayName, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetEmployee returns generic.ErrEmployeeNotFound when absent.
func (s *Store) GetEmployee(ctx context.Context, id generic.EmployeeID) (timekeeping.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var e timekeeping.Employee
	var eid string
	err := s.db.QueryRowContext(ctx, `SELECT id, display_name FROM employees WHERE id = ?`, string(id)).
		Scan(&eid, &e.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return timekeeping.Employee{}, generic.ErrEmployeeNotFound
	}
	if err != nil {
		return timekeeping.Employee{}, err
	}
	e.ID = generic.EmployeeID(eid)
	return e, nil
}

// ListEmployees returns all employees ordered by ID.
func (s *Store) ListEmployees(ctx context.Context) ([]timekeeping.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, display_name FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []timekeeping.Employee{}
	for rows.Next() {
		var e timekeeping.Employee
		var id string
		if err := rows.Scan(&id, &e.DisplayName); err != nil {
			return nil, err
		}
		e.ID = generic.EmployeeID(id)
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// EMPLOYMENT PERIODS
// =============================================================================

// SavePeriod inserts or replaces a period by ID.
func (s *Store) SavePeriod(ctx context.Context, p timekeeping.EmploymentPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees WHERE id = ?`, string(p.EmployeeID)).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return generic.ErrEmployeeNotFound
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode period: %w", err)
	}
	var end sql.NullString
	if p.End != nil {
		end = nullString(p.End.String())
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO employment_periods (id, employee_id, start_date, end_date, period_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			period_json = excluded.period_json`,
		string(p.ID), string(p.EmployeeID), p.Start.String(), end, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to save period: %w", err)
	}
	return nil
}

// ListPeriods returns the employee's periods ordered by start date.
func (s *Store) ListPeriods(ctx context.Context, employeeID generic.EmployeeID) ([]timekeeping.EmploymentPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT period_json FROM employment_periods
		WHERE employee_id = ? ORDER BY start_date, id`, string(employeeID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timekeeping.EmploymentPeriod
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var p timekeeping.EmploymentPeriod
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("failed to decode period: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// WEEKLY RECORDS
// =============================================================================

const weekColumns = `employee_id, week, days_json, weekly_hours_override, complementary_hours,
	confirmed, confirmed_at, comment, has_difference, previous_balances_json, impact_json`

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ListWeeks returns every stored week of the employee, oldest first.
func (s *Store) ListWeeks(ctx context.Context, employeeID generic.EmployeeID) ([]timekeeping.WeeklyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+weekColumns+` FROM weekly_records WHERE employee_id = ? ORDER BY week`, string(employeeID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timekeeping.WeeklyRecord
	for rows.Next() {
		rec, err := scanWeek(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetWeek returns generic.ErrWeekNotFound when absent.
func (s *Store) GetWeek(ctx context.Context, employeeID generic.EmployeeID, week generic.WeekID) (timekeeping.WeeklyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getWeek(ctx, s.db, employeeID, week)
}

func getWeek(ctx context.Context, q queryer, employeeID generic.EmployeeID, week generic.WeekID) (timekeeping.WeeklyRecord, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+weekColumns+` FROM weekly_records WHERE employee_id = ? AND week = ?`,
		string(employeeID), string(week))
	rec, err := scanWeek(row)
	if errors.Is(err, sql.ErrNoRows) {
		return timekeeping.WeeklyRecord{}, generic.ErrWeekNotFound
	}
	return rec, err
}

// SaveWeek upserts an open week.
func (s *Store) SaveWeek(ctx context.Context, rec timekeeping.WeeklyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkOpen(ctx, tx, rec.EmployeeID, rec.Week); err != nil {
		return err
	}
	rec.Confirmed = false
	if err := upsertWeek(ctx, tx, rec); err != nil {
		return err
	}
	return tx.Commit()
}

// ConfirmWeek writes rec with its snapshot and impact and marks it
// confirmed, all in one transaction.
func (s *Store) ConfirmWeek(ctx context.Context, rec timekeeping.WeeklyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkOpen(ctx, tx, rec.EmployeeID, rec.Week); err != nil {
		return err
	}
	rec.Confirmed = true
	if err := upsertWeek(ctx, tx, rec); err != nil {
		return err
	}
	return tx.Commit()
}

// UnlockWeek reopens a confirmed week. The PreviousBalances snapshot is kept.
func (s *Store) UnlockWeek(ctx context.Context, employeeID generic.EmployeeID, week generic.WeekID) (timekeeping.WeeklyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return timekeeping.WeeklyRecord{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rec, err := getWeek(ctx, tx, employeeID, week)
	if err != nil {
		return timekeeping.WeeklyRecord{}, err
	}
	if !rec.Confirmed {
		return timekeeping.WeeklyRecord{}, &generic.WeekStateError{EmployeeID: employeeID, Week: week, Err: generic.ErrWeekNotConfirmed}
	}
	rec.Confirmed = false
	rec.ConfirmedAt = nil
	rec.Impact = nil
	if err := upsertWeek(ctx, tx, rec); err != nil {
		return timekeeping.WeeklyRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return timekeeping.WeeklyRecord{}, err
	}
	return rec, nil
}

// UpdateAudit stores the reconciliation annotation.
func (s *Store) UpdateAudit(ctx context.Context, employeeID generic.EmployeeID, week generic.WeekID, hasDifference bool, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE weekly_records SET has_difference = ?, comment = ?, updated_at = ?
		WHERE employee_id = ? AND week = ?`,
		hasDifference, comment, time.Now().UTC().Format(time.RFC3339), string(employeeID), string(week))
	if err != nil {
		return fmt.Errorf("failed to update audit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return generic.ErrWeekNotFound
	}
	return nil
}

func checkOpen(ctx context.Context, q queryer, employeeID generic.EmployeeID, week generic.WeekID) error {
	var confirmed bool
	err := q.QueryRowContext(ctx,
		`SELECT confirmed FROM weekly_records WHERE employee_id = ? AND week = ?`,
		string(employeeID), string(week)).Scan(&confirmed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	if confirmed {
		return &generic.WeekStateError{EmployeeID: employeeID, Week: week, Err: generic.ErrWeekConfirmed}
	}
	return nil
}

func upsertWeek(ctx context.Context, q queryer, rec timekeeping.WeeklyRecord) error {
	days, err := json.Marshal(rec.Days)
	if err != nil {
		return fmt.Errorf("failed to encode days: %w", err)
	}
	var override, confirmedAt, previous, impact sql.NullString
	if rec.WeeklyHoursOverride != nil {
		override = nullString(rec.WeeklyHoursOverride.String())
	}
	if rec.ConfirmedAt != nil {
		confirmedAt = nullString(rec.ConfirmedAt.UTC().Format(time.RFC3339Nano))
	}
	if rec.PreviousBalances != nil {
		b, err := json.Marshal(rec.PreviousBalances)
		if err != nil {
			return err
		}
		previous = nullString(string(b))
	}
	if rec.Impact != nil {
		b, err := json.Marshal(rec.Impact)
		if err != nil {
			return err
		}
		impact = nullString(string(b))
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO weekly_records (`+weekColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, week) DO UPDATE SET
			days_json = excluded.days_json,
			weekly_hours_override = excluded.weekly_hours_override,
			complementary_hours = excluded.complementary_hours,
			confirmed = excluded.confirmed,
			confirmed_at = excluded.confirmed_at,
			comment = excluded.comment,
			has_difference = excluded.has_difference,
			previous_balances_json = excluded.previous_balances_json,
			impact_json = excluded.impact_json,
			updated_at = excluded.updated_at`,
		string(rec.EmployeeID), string(rec.Week), string(days), override, rec.ComplementaryHours.String(),
		rec.Confirmed, confirmedAt, rec.Comment, rec.HasDifference, previous, impact,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save week %s: %w", rec.Week, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWeek(row scanner) (timekeeping.WeeklyRecord, error) {
	var (
		rec                                     timekeeping.WeeklyRecord
		employeeID, week, days, complementary   string
		override, confirmedAt, previous, impact sql.NullString
	)
	if err := row.Scan(&employeeID, &week, &days, &override, &complementary,
		&rec.Confirmed, &confirmedAt, &rec.Comment, &rec.HasDifference, &previous, &impact); err != nil {
		return timekeeping.WeeklyRecord{}, err
	}
	rec.EmployeeID = generic.EmployeeID(employeeID)
	rec.Week = generic.WeekID(week)
	if err := json.Unmarshal([]byte(days), &rec.Days); err != nil {
		return timekeeping.WeeklyRecord{}, fmt.Errorf("failed to decode days: %w", err)
	}

	var err error
	if rec.ComplementaryHours, err = parseDecimal(complementary); err != nil {
		return timekeeping.WeeklyRecord{}, err
	}
	if override.Valid {
		v, err := parseDecimal(override.String)
		if err != nil {
			return timekeeping.WeeklyRecord{}, err
		}
		rec.WeeklyHoursOverride = &v
	}
	if confirmedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, confirmedAt.String)
		if err != nil {
			return timekeeping.WeeklyRecord{}, fmt.Errorf("failed to parse confirmed_at: %w", err)
		}
		rec.ConfirmedAt = &t
	}
	if previous.Valid {
		var b timekeeping.Balances
		if err := json.Unmarshal([]byte(previous.String), &b); err != nil {
			return timekeeping.WeeklyRecord{}, fmt.Errorf("failed to decode previous balances: %w", err)
		}
		rec.PreviousBalances = &b
	}
	if impact.Valid {
		var wi timekeeping.WeeklyImpact
		if err := json.Unmarshal([]byte(impact.String), &wi); err != nil {
			return timekeeping.WeeklyRecord{}, fmt.Errorf("failed to decode impact: %w", err)
		}
		rec.Impact = &wi
	}
	return rec, nil
}

// =============================================================================
// LEGACY AUDIT DATASET
// =============================================================================

// SaveExpected upserts legacy rows keyed by week and display name.
func (s *Store) SaveExpected(ctx context.Context, rows []timekeeping.ExpectedImpact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO expected_impacts (week, display_name, ordinary, holiday, leave)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(week, display_name) DO UPDATE SET
				ordinary = excluded.ordinary,
				holiday = excluded.holiday,
				leave = excluded.leave`,
			string(r.Week), r.DisplayName, r.Ordinary.String(), r.Holiday.String(), r.Leave.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to save expected impact %s/%s: %w", r.Week, r.DisplayName, err)
		}
	}
	return tx.Commit()
}

// ExpectedImpact returns ok=false when there is no row.
func (s *Store) ExpectedImpact(ctx context.Context, week generic.WeekID, displayName string) (timekeeping.ExpectedImpact, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ordinary, holiday, leave string
	err := s.db.QueryRowContext(ctx, `
		SELECT ordinary, holiday, leave FROM expected_impacts
		WHERE week = ? AND display_name = ?`, string(week), displayName).
		Scan(&ordinary, &holiday, &leave)
	if errors.Is(err, sql.ErrNoRows) {
		return timekeeping.ExpectedImpact{}, false, nil
	}
	if err != nil {
		return timekeeping.ExpectedImpact{}, false, err
	}

	row := timekeeping.ExpectedImpact{Week: week, DisplayName: displayName}
	if row.Ordinary, err = parseDecimal(ordinary); err != nil {
		return timekeeping.ExpectedImpact{}, false, err
	}
	if row.Holiday, err = parseDecimal(holiday); err != nil {
		return timekeeping.ExpectedImpact{}, false, err
	}
	if row.Leave, err = parseDecimal(leave); err != nil {
		return timekeeping.ExpectedImpact{}, false, err
	}
	return row, true, nil
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset deletes all data. Use only in development.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"weekly_records",
		"employment_periods",
		"expected_impacts",
		"employees",
		"absence_types",
		"contract_types",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid stored number %q: %w", s, err)
	}
	return d, nil
}
