/*
handlers.go - HTTP API handlers for the hours engine

PURPOSE:
  Exposes timekeeping.Service via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the service.

ENDPOINTS:
  Employees:
    GET    /api/employees                          List employees
    POST   /api/employees                          Create employee
    GET    /api/employees/{id}                     Get employee
    GET    /api/employees/{id}/periods             List employment periods
    POST   /api/employees/{id}/periods             Create or replace a period

  Weeks:
    GET    /api/employees/{id}/weeks               List stored weeks
    GET    /api/employees/{id}/weeks/{week}        Open week (created from schedule)
    PUT    /api/employees/{id}/weeks/{week}        Save edits to an open week
    POST   /api/employees/{id}/weeks/{week}/preview    Live projection, nothing saved
    POST   /api/employees/{id}/weeks/{week}/confirm    Apply week to the ledger
    POST   /api/employees/{id}/weeks/{week}/unlock     Enable correction
    POST   /api/employees/{id}/weeks/{week}/reconcile  Audit one week

  Figures:
    GET    /api/employees/{id}/balances[?week=]    Balances as of week, or final
    GET    /api/employees/{id}/timeline            Ledger replay entries
    GET    /api/employees/{id}/annual/{year}       Theoretical annual hours
    GET    /api/employees/{id}/vacation/{year}     Vacation entitlement
    GET    /api/employees/{id}/budgets/{year}      Absence budget usage
    POST   /api/employees/{id}/reconcile           Audit every stored week

  Configuration:
    GET    /api/rules                              Rule tables
    PUT    /api/rules                              Replace rule tables (JSON doc)
    GET    /api/holidays                           Holiday calendar
    POST   /api/audit/expected                     Import legacy CSV

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid numbers, week identifiers, periods, bodies
  - 404: Employee or week not found
  - 409: Week already confirmed / not confirmed
  - 500: Internal errors (logged with the request ID)

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/warp/hours-engine/factory"
	"github.com/warp/hours-engine/generic"
	"github.com/warp/hours-engine/timekeeping"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the service store plus the admin writes the API exposes.
type Store interface {
	timekeeping.Store
	SaveEmployee(ctx context.Context, e timekeeping.Employee) error
	ListEmployees(ctx context.Context) ([]timekeeping.Employee, error)
	SavePeriod(ctx context.Context, p timekeeping.EmploymentPeriod) error
	SaveRules(ctx context.Context, absences []timekeeping.AbsenceType, contracts []timekeeping.ContractType) error
	SaveExpected(ctx context.Context, rows []timekeeping.ExpectedImpact) error
	Reset(ctx context.Context) error
}

// Handler holds all HTTP dependencies.
type Handler struct {
	Store   Store
	Service *timekeeping.Service
	Rules   *factory.RuleFactory
	Log     logrus.FieldLogger

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler. svc must use the same store.
func NewHandler(store Store, svc *timekeeping.Service, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Store:   store,
		Service: svc,
		Rules:   factory.NewRuleFactory(),
		Log:     log,
	}
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list employees", err)
		return
	}
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns one employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), employeeID(r))
	if err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// CreateEmployee creates or renames an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "display_name is required", nil)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	emp := timekeeping.Employee{ID: generic.EmployeeID(req.ID), DisplayName: req.DisplayName}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.fail(w, r, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// ListPeriods returns the employee's employment periods.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Store.ListPeriods(r.Context(), employeeID(r))
	if err != nil {
		h.fail(w, r, "Failed to list periods", err)
		return
	}
	if periods == nil {
		periods = []timekeeping.EmploymentPeriod{}
	}
	writeJSON(w, http.StatusOK, periods)
}

// SavePeriod creates or replaces an employment period.
func (h *Handler) SavePeriod(w http.ResponseWriter, r *http.Request) {
	var req PeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	period, err := req.ToPeriod(employeeID(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employment period", err)
		return
	}
	if err := h.Store.SavePeriod(r.Context(), period); err != nil {
		h.fail(w, r, "Failed to save period", err)
		return
	}
	writeJSON(w, http.StatusCreated, period)
}

// =============================================================================
// WEEK ENDPOINTS
// =============================================================================

// ListWeeks returns every stored week, oldest first.
func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.Store.ListWeeks(r.Context(), employeeID(r))
	if err != nil {
		h.fail(w, r, "Failed to list weeks", err)
		return
	}
	if weeks == nil {
		weeks = []timekeeping.WeeklyRecord{}
	}
	writeJSON(w, http.StatusOK, weeks)
}

// GetWeek opens the week for data entry.
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	week, ok := weekParam(w, r)
	if !ok {
		return
	}
	rec, err := h.Service.OpenWeek(r.Context(), employeeID(r), week)
	if err != nil {
		h.fail(w, r, "Failed to open week", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// EditWeek saves edits to an open week.
func (h *Handler) EditWeek(w http.ResponseWriter, r *http.Request) {
	week, edit, ok := h.decodeEdit(w, r)
	if !ok {
		return
	}
	rec, err := h.Service.EditWeek(r.Context(), employeeID(r), week, edit)
	if err != nil {
		h.fail(w, r, "Failed to save week", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// PreviewWeek projects unsaved edits without writing anything.
func (h *Handler) PreviewWeek(w http.ResponseWriter, r *http.Request) {
	week, edit, ok := h.decodeEdit(w, r)
	if !ok {
		return
	}
	res, err := h.Service.Preview(r.Context(), employeeID(r), week, edit)
	if err != nil {
		h.fail(w, r, "Failed to preview week", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ConfirmWeek applies the week to the ledger.
func (h *Handler) ConfirmWeek(w http.ResponseWriter, r *http.Request) {
	week, ok := weekParam(w, r)
	if !ok {
		return
	}
	rec, err := h.Service.ConfirmWeek(r.Context(), employeeID(r), week)
	if err != nil {
		h.fail(w, r, "Failed to confirm week", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// UnlockWeek enables correction of a confirmed week.
func (h *Handler) UnlockWeek(w http.ResponseWriter, r *http.Request) {
	week, ok := weekParam(w, r)
	if !ok {
		return
	}
	rec, err := h.Service.EnableCorrection(r.Context(), employeeID(r), week)
	if err != nil {
		h.fail(w, r, "Failed to unlock week", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ReconcileWeek audits one week against the legacy dataset.
func (h *Handler) ReconcileWeek(w http.ResponseWriter, r *http.Request) {
	week, ok := weekParam(w, r)
	if !ok {
		return
	}
	res, err := h.Service.ReconcileWeek(r.Context(), employeeID(r), week)
	if err != nil {
		h.fail(w, r, "Failed to reconcile week", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ReconcileAll audits every stored week of the employee.
func (h *Handler) ReconcileAll(w http.ResponseWriter, r *http.Request) {
	id := employeeID(r)
	results, err := h.Service.ReconcileAll(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to reconcile weeks", err)
		return
	}
	resp := ReconcileAllResponse{EmployeeID: string(id), Weeks: results}
	for _, res := range results {
		if res.HasDifference {
			resp.Differences++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) decodeEdit(w http.ResponseWriter, r *http.Request) (generic.WeekID, timekeeping.WeekEdit, bool) {
	week, ok := weekParam(w, r)
	if !ok {
		return "", timekeeping.WeekEdit{}, false
	}
	var req EditWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return "", timekeeping.WeekEdit{}, false
	}
	edit, err := req.ToEdit()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week edit", err)
		return "", timekeeping.WeekEdit{}, false
	}
	return week, edit, true
}

// =============================================================================
// FIGURES
// =============================================================================

// GetBalances returns balances at the start of ?week=, or the final balances.
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := employeeID(r)
	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}

	if raw := r.URL.Query().Get("week"); raw != "" {
		week, err := generic.ParseWeekID(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid week", err)
			return
		}
		b, err := h.Service.BalancesAsOf(ctx, id, week)
		if err != nil {
			h.fail(w, r, "Failed to compute balances", err)
			return
		}
		writeJSON(w, http.StatusOK, BalancesDTO{EmployeeID: string(id), AsOfWeek: string(week), Balances: b, Total: b.Total()})
		return
	}

	final, err := h.Service.FinalBalances(ctx, id)
	if err != nil {
		h.fail(w, r, "Failed to compute balances", err)
		return
	}
	writeJSON(w, http.StatusOK, BalancesDTO{EmployeeID: string(id), Balances: final.Balances, Total: final.Total})
}

// GetTimeline returns the ledger replay.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	tl, err := h.Service.Timeline(r.Context(), employeeID(r))
	if err != nil {
		h.fail(w, r, "Failed to build timeline", err)
		return
	}
	writeJSON(w, http.StatusOK, tl)
}

// GetAnnualHours returns the theoretical annual hours for {year}.
func (h *Handler) GetAnnualHours(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	res, err := h.Service.TheoreticalAnnualHours(r.Context(), employeeID(r), year)
	if err != nil {
		h.fail(w, r, "Failed to compute annual hours", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetVacation returns the vacation entitlement for {year}.
func (h *Handler) GetVacation(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	res, err := h.Service.VacationEntitlement(r.Context(), employeeID(r), year)
	if err != nil {
		h.fail(w, r, "Failed to compute vacation entitlement", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetBudgets returns absence budget usage for {year}.
func (h *Handler) GetBudgets(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	res, err := h.Service.AbsenceBudgetUsage(r.Context(), employeeID(r), year)
	if err != nil {
		h.fail(w, r, "Failed to compute budget usage", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// =============================================================================
// CONFIGURATION ENDPOINTS
// =============================================================================

// GetRules returns the rule tables as a rule document.
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	tables, err := h.Store.LoadRules(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to load rules", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Rules.ToDocument(tables))
}

// PutRules replaces the rule tables.
func (h *Handler) PutRules(w http.ResponseWriter, r *http.Request) {
	var doc factory.RulesDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	tables, err := h.Rules.FromDocument(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rules", err)
		return
	}
	if err := h.Store.SaveRules(r.Context(), tables.AbsenceList(), tables.ContractList()); err != nil {
		h.fail(w, r, "Failed to save rules", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Rules.ToDocument(tables))
}

// ListHolidays returns the configured holiday calendar.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	lister, ok := h.Service.Holidays.(interface{ List() []generic.Holiday })
	if !ok {
		writeJSON(w, http.StatusOK, []generic.Holiday{})
		return
	}
	writeJSON(w, http.StatusOK, lister.List())
}

// ImportExpected loads the legacy dataset from a CSV body.
func (h *Handler) ImportExpected(w http.ResponseWriter, r *http.Request) {
	rows, err := timekeeping.ParseExpectedCSV(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid CSV", err)
		return
	}
	if err := h.Store.SaveExpected(r.Context(), rows); err != nil {
		h.fail(w, r, "Failed to import expected impacts", err)
		return
	}
	h.Log.WithField("rows", len(rows)).Info("legacy expected impacts imported")
	writeJSON(w, http.StatusOK, ImportResponse{Imported: len(rows)})
}

// =============================================================================
// HELPERS
// =============================================================================

func employeeID(r *http.Request) generic.EmployeeID {
	return generic.EmployeeID(chi.URLParam(r, "id"))
}

func weekParam(w http.ResponseWriter, r *http.Request) (generic.WeekID, bool) {
	week, err := generic.ParseWeekID(chi.URLParam(r, "week"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week", err)
		return "", false
	}
	return week, true
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return 0, false
	}
	return year, true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case generic.IsClientError(err):
		return http.StatusBadRequest
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case generic.IsConflict(err):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail writes a service error, logging the ones that map to 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Log.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"path":       r.URL.Path,
		}).WithError(err).Error(message)
	}
	writeError(w, status, message, err)
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
