/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for testing and demos. Each scenario creates employees, employment
	periods and weekly records that demonstrate specific features. Weeks
	are entered and confirmed through timekeeping.Service, the same path
	the API uses.

AVAILABLE SCENARIOS:

	full-time-year: One full-time employee, three confirmed weeks
	transfer:       Mid-year transfer with suspension and an hours change
	legacy-audit:   Confirmed weeks checked against an imported dataset

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Seed the built-in rule tables (factory.DefaultRulesJSON)
 3. Create employees and employment periods
 4. Open, fill and confirm weeks

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "full-time-year"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: the endpoints the scenarios exercise
  - factory/presets.go: rule definitions
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/hours-engine/generic"
	"github.com/warp/hours-engine/timekeeping"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "full-time-year",
		Name:        "Full-Time Year",
		Description: "40h contract, one balanced week, one short week, one week with a vacation day",
	},
	{
		ID:          "transfer",
		Name:        "Mid-Year Transfer",
		Description: "Transfer in March with vacation taken elsewhere, a July suspension and a drop to 30h",
	},
	{
		ID:          "legacy-audit",
		Name:        "Legacy Audit",
		Description: "Confirmed weeks compared with an imported legacy dataset, one mismatch",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var load func(context.Context) error
	switch req.ScenarioID {
	case "full-time-year":
		load = h.loadFullTimeYearScenario
	case "transfer":
		load = h.loadTransferScenario
	case "legacy-audit":
		load = h.loadLegacyAuditScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	h.currentScenario = ""
	if err := h.Store.Reset(ctx); err != nil {
		h.fail(w, r, "Failed to reset store", err)
		return
	}
	if err := h.seedRules(ctx); err != nil {
		h.fail(w, r, "Failed to seed rules", err)
		return
	}
	if err := load(ctx); err != nil {
		h.fail(w, r, fmt.Sprintf("Failed to load scenario %s", req.ScenarioID), err)
		return
	}
	h.currentScenario = req.ScenarioID
	h.Log.WithField("scenario", req.ScenarioID).Info("scenario loaded")

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadFullTimeYearScenario(ctx context.Context) error {
	emp := generic.EmployeeID("emp-ana")
	if err := h.Store.SaveEmployee(ctx, timekeeping.Employee{ID: emp, DisplayName: "Ana Example"}); err != nil {
		return err
	}
	period := standardPeriod("per-ana-2025", emp, generic.NewTimePoint(2025, 1, 1), "FT", 40)
	if err := h.Store.SavePeriod(ctx, period); err != nil {
		return err
	}

	// 40h worked: no change
	if err := h.enterWeek(ctx, emp, "2025-W02", [7]float64{8, 8, 8, 8, 8, 0, 0}, nil); err != nil {
		return err
	}
	// Friday not worked: -8 ordinary
	if err := h.enterWeek(ctx, emp, "2025-W03", [7]float64{8, 8, 8, 8, 0, 0, 0}, nil); err != nil {
		return err
	}
	// Monday on vacation, 2h on Saturday: +2 ordinary
	return h.enterWeek(ctx, emp, "2025-W04", [7]float64{0, 8, 8, 8, 8, 2, 0}, map[int]string{0: "VAC"})
}

func (h *Handler) loadTransferScenario(ctx context.Context) error {
	emp := generic.EmployeeID("emp-bruno")
	if err := h.Store.SaveEmployee(ctx, timekeeping.Employee{ID: emp, DisplayName: "Bruno Transfer"}); err != nil {
		return err
	}

	period := standardPeriod("per-bruno-2025", emp, generic.NewTimePoint(2025, 3, 1), "FT", 40)
	period.IsTransfer = true
	period.VacationDaysTakenElsewhere = decimal.NewFromInt(10)
	period.WeeklyHours = append(period.WeeklyHours, timekeeping.WeeklyHoursChange{
		EffectiveFrom: generic.NewTimePoint(2025, 9, 1),
		Hours:         decimal.NewFromInt(30),
	})
	period.Schedules = append(period.Schedules, schedule(generic.NewTimePoint(2025, 9, 1), 6))
	period.Absences = []timekeeping.ScheduledAbsence{{
		ID:      "abs-bruno-susp",
		Start:   generic.NewTimePoint(2025, 7, 1),
		End:     generic.NewTimePoint(2025, 7, 30),
		Absence: "SUSP",
	}}
	if err := h.Store.SavePeriod(ctx, period); err != nil {
		return err
	}

	if err := h.enterWeek(ctx, emp, "2025-W10", [7]float64{8, 8, 8, 8, 8, 0, 0}, nil); err != nil {
		return err
	}
	// Two vacation days
	return h.enterWeek(ctx, emp, "2025-W11", [7]float64{0, 0, 8, 8, 8, 0, 0}, map[int]string{0: "VAC", 1: "VAC"})
}

func (h *Handler) loadLegacyAuditScenario(ctx context.Context) error {
	emp := generic.EmployeeID("emp-carla")
	if err := h.Store.SaveEmployee(ctx, timekeeping.Employee{ID: emp, DisplayName: "Carla Legacy"}); err != nil {
		return err
	}
	period := standardPeriod("per-carla-2024", emp, generic.NewTimePoint(2024, 1, 1), "FT", 40)
	if err := h.Store.SavePeriod(ctx, period); err != nil {
		return err
	}

	if err := h.enterWeek(ctx, emp, "2024-W10", [7]float64{8, 8, 8, 8, 8, 0, 0}, nil); err != nil {
		return err
	}
	if err := h.enterWeek(ctx, emp, "2024-W11", [7]float64{8, 8, 8, 8, 0, 0, 0}, nil); err != nil {
		return err
	}

	legacy := strings.Join([]string{
		"week,employee,ordinary,holiday,leave",
		"2024-W10,Carla Legacy,0,0,0",
		"2024-W11,Carla Legacy,-4,0,0",
	}, "\n")
	rows, err := timekeeping.ParseExpectedCSV(strings.NewReader(legacy))
	if err != nil {
		return err
	}
	if err := h.Store.SaveExpected(ctx, rows); err != nil {
		return err
	}
	_, err = h.Service.ReconcileAll(ctx, emp)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) seedRules(ctx context.Context) error {
	tables, err := h.Rules.DefaultRules()
	if err != nil {
		return err
	}
	return h.Store.SaveRules(ctx, tables.AbsenceList(), tables.ContractList())
}

// standardPeriod is an open-ended period with a Monday-to-Friday schedule.
func standardPeriod(id string, emp generic.EmployeeID, start generic.TimePoint, contract string, weeklyHours int64) timekeeping.EmploymentPeriod {
	return timekeeping.EmploymentPeriod{
		ID:           generic.PeriodID(id),
		EmployeeID:   emp,
		Start:        start,
		ContractType: timekeeping.ContractCode(contract),
		WeeklyHours: []timekeeping.WeeklyHoursChange{
			{EffectiveFrom: start, Hours: decimal.NewFromInt(weeklyHours)},
		},
		Schedules: []timekeeping.ScheduleCalendar{schedule(start, weeklyHours/5)},
	}
}

func schedule(from generic.TimePoint, dailyHours int64) timekeeping.ScheduleCalendar {
	sc := timekeeping.ScheduleCalendar{EffectiveFrom: from}
	for d := 0; d < 5; d++ {
		sc.Hours[d] = decimal.NewFromInt(dailyHours)
	}
	for d := 5; d < 7; d++ {
		sc.Hours[d] = decimal.Zero
	}
	return sc
}

// enterWeek fills worked hours Monday to Sunday, sets absences by weekday
// index and confirms the week.
func (h *Handler) enterWeek(ctx context.Context, emp generic.EmployeeID, week string, worked [7]float64, absences map[int]string) error {
	id, err := generic.ParseWeekID(week)
	if err != nil {
		return err
	}
	var edit timekeeping.WeekEdit
	for i, date := range id.Days() {
		hours := decimal.NewFromFloat(worked[i])
		patch := timekeeping.DayPatch{Date: date, WorkedHours: &hours}
		if code, ok := absences[i]; ok {
			ac := timekeeping.AbsenceCode(code)
			patch.Absence = &ac
		}
		edit.Days = append(edit.Days, patch)
	}
	if _, err := h.Service.EditWeek(ctx, emp, id, edit); err != nil {
		return fmt.Errorf("week %s: %w", week, err)
	}
	if _, err := h.Service.ConfirmWeek(ctx, emp, id); err != nil {
		return fmt.Errorf("confirm %s: %w", week, err)
	}
	return nil
}
