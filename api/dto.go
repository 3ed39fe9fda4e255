/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Request bodies carry
  plain JSON numbers; conversion to decimal hours happens here, so negative
  or non-finite values are rejected at the entry boundary with
  *timekeeping.InvalidNumericError before anything reaches the service.

  Responses reuse the timekeeping result types directly (they carry their
  own JSON tags).

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Employee:  EmployeeDTO, CreateEmployeeRequest
  Period:    PeriodRequest (+ nested history requests)
  Week:      DayPatchRequest, EditWeekRequest
  Balances:  BalancesDTO
  Audit:     ImportResponse
  Scenarios: ScenarioDTO, LoadScenarioRequest

SEE ALSO:
  - handlers.go: Uses these types
  - timekeeping/entry.go: validation and WeekEdit
*/
package api

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/hours-engine/generic"
	"github.com/warp/hours-engine/timekeeping"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// CreateEmployeeRequest is the request to create an employee. A missing ID
// is generated.
type CreateEmployeeRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

func toEmployeeDTO(e timekeeping.Employee) EmployeeDTO {
	return EmployeeDTO{ID: string(e.ID), DisplayName: e.DisplayName}
}

// =============================================================================
// EMPLOYMENT PERIODS
// =============================================================================

// BalancesRequest carries signed bag balances.
type BalancesRequest struct {
	Ordinary float64 `json:"ordinary"`
	Holiday  float64 `json:"holiday"`
	Leave    float64 `json:"leave"`
}

type WeeklyHoursRequest struct {
	EffectiveFrom string  `json:"effective_from"`
	Hours         float64 `json:"hours"`
}

type ScheduleRequest struct {
	EffectiveFrom string     `json:"effective_from"`
	Hours         [7]float64 `json:"hours"`
}

type ScheduledAbsenceRequest struct {
	ID      string `json:"id"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Absence string `json:"absence"`
}

type CarryOverRequest struct {
	Year int     `json:"year"`
	Days float64 `json:"days"`
}

// PeriodRequest creates or replaces an employment period.
type PeriodRequest struct {
	ID                         string                    `json:"id"`
	Start                      string                    `json:"start"`
	End                        *string                   `json:"end,omitempty"`
	ContractType               string                    `json:"contract_type"`
	InitialBalances            BalancesRequest           `json:"initial_balances"`
	WeeklyHours                []WeeklyHoursRequest      `json:"weekly_hours"`
	Schedules                  []ScheduleRequest         `json:"schedules"`
	Absences                   []ScheduledAbsenceRequest `json:"absences"`
	IsTransfer                 bool                      `json:"is_transfer"`
	VacationDaysTakenElsewhere float64                   `json:"vacation_days_taken_elsewhere"`
	PendingVacationDays        float64                   `json:"pending_vacation_days"`
	CarryOver                  []CarryOverRequest        `json:"carry_over"`
}

// ToPeriod converts and validates the request. Missing IDs are generated.
func (r PeriodRequest) ToPeriod(employeeID generic.EmployeeID) (timekeeping.EmploymentPeriod, error) {
	p := timekeeping.EmploymentPeriod{
		ID:           generic.PeriodID(r.ID),
		EmployeeID:   employeeID,
		ContractType: timekeeping.ContractCode(r.ContractType),
		IsTransfer:   r.IsTransfer,
	}
	if p.ID == "" {
		p.ID = generic.PeriodID(uuid.NewString())
	}

	var err error
	if p.Start, err = generic.ParseDate(r.Start); err != nil {
		return p, fmt.Errorf("start: %w", err)
	}
	if r.End != nil && *r.End != "" {
		end, err := generic.ParseDate(*r.End)
		if err != nil {
			return p, fmt.Errorf("end: %w", err)
		}
		p.End = &end
	}

	if p.InitialBalances, err = r.InitialBalances.toBalances(); err != nil {
		return p, err
	}
	for i, wh := range r.WeeklyHours {
		from, err := generic.ParseDate(wh.EffectiveFrom)
		if err != nil {
			return p, fmt.Errorf("weekly_hours[%d].effective_from: %w", i, err)
		}
		hours, err := timekeeping.HoursFromFloat(fmt.Sprintf("weekly_hours[%d].hours", i), wh.Hours)
		if err != nil {
			return p, err
		}
		p.WeeklyHours = append(p.WeeklyHours, timekeeping.WeeklyHoursChange{EffectiveFrom: from, Hours: hours})
	}
	for i, sr := range r.Schedules {
		from, err := generic.ParseDate(sr.EffectiveFrom)
		if err != nil {
			return p, fmt.Errorf("schedules[%d].effective_from: %w", i, err)
		}
		sc := timekeeping.ScheduleCalendar{EffectiveFrom: from}
		for d, h := range sr.Hours {
			if sc.Hours[d], err = timekeeping.HoursFromFloat(fmt.Sprintf("schedules[%d].hours[%d]", i, d), h); err != nil {
				return p, err
			}
		}
		p.Schedules = append(p.Schedules, sc)
	}
	for i, ar := range r.Absences {
		a := timekeeping.ScheduledAbsence{ID: ar.ID, Absence: timekeeping.AbsenceCode(ar.Absence)}
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.Start, err = generic.ParseDate(ar.Start); err != nil {
			return p, fmt.Errorf("absences[%d].start: %w", i, err)
		}
		if a.End, err = generic.ParseDate(ar.End); err != nil {
			return p, fmt.Errorf("absences[%d].end: %w", i, err)
		}
		p.Absences = append(p.Absences, a)
	}
	if p.VacationDaysTakenElsewhere, err = timekeeping.HoursFromFloat("vacation_days_taken_elsewhere", r.VacationDaysTakenElsewhere); err != nil {
		return p, err
	}
	if p.PendingVacationDays, err = timekeeping.BalanceFromFloat("pending_vacation_days", r.PendingVacationDays); err != nil {
		return p, err
	}
	for i, co := range r.CarryOver {
		days, err := timekeeping.BalanceFromFloat(fmt.Sprintf("carry_over[%d].days", i), co.Days)
		if err != nil {
			return p, err
		}
		p.CarryOver = append(p.CarryOver, timekeeping.VacationCarryOver{Year: co.Year, Days: days})
	}

	return p, timekeeping.ValidatePeriod(p)
}

func (r BalancesRequest) toBalances() (timekeeping.Balances, error) {
	var b timekeeping.Balances
	var err error
	if b.Ordinary, err = timekeeping.BalanceFromFloat("initial_balances.ordinary", r.Ordinary); err != nil {
		return b, err
	}
	if b.Holiday, err = timekeeping.BalanceFromFloat("initial_balances.holiday", r.Holiday); err != nil {
		return b, err
	}
	if b.Leave, err = timekeeping.BalanceFromFloat("initial_balances.leave", r.Leave); err != nil {
		return b, err
	}
	return b, nil
}

// =============================================================================
// WEEKS
// =============================================================================

// DayPatchRequest edits one day. Omitted fields keep the stored value.
type DayPatchRequest struct {
	Date             string   `json:"date"`
	TheoreticalHours *float64 `json:"theoretical_hours,omitempty"`
	WorkedHours      *float64 `json:"worked_hours,omitempty"`
	Absence          *string  `json:"absence,omitempty"`
	AbsenceHours     *float64 `json:"absence_hours,omitempty"`
	LeaveHours       *float64 `json:"leave_hours,omitempty"`
	DoublePay        *bool    `json:"double_pay,omitempty"`
}

// EditWeekRequest is the body of PUT /weeks/{week} and POST .../preview.
type EditWeekRequest struct {
	Days                []DayPatchRequest `json:"days"`
	WeeklyHoursOverride *float64          `json:"weekly_hours_override,omitempty"`
	ClearOverride       bool              `json:"clear_override,omitempty"`
	ComplementaryHours  *float64          `json:"complementary_hours,omitempty"`
	Comment             *string           `json:"comment,omitempty"`
}

// ToEdit converts and validates the request.
func (r EditWeekRequest) ToEdit() (timekeeping.WeekEdit, error) {
	edit := timekeeping.WeekEdit{ClearOverride: r.ClearOverride, Comment: r.Comment}
	for _, d := range r.Days {
		p, err := d.toPatch()
		if err != nil {
			return timekeeping.WeekEdit{}, err
		}
		edit.Days = append(edit.Days, p)
	}
	var err error
	if edit.WeeklyHoursOverride, err = optionalHours("weekly_hours_override", r.WeeklyHoursOverride); err != nil {
		return timekeeping.WeekEdit{}, err
	}
	if edit.ComplementaryHours, err = optionalHours("complementary_hours", r.ComplementaryHours); err != nil {
		return timekeeping.WeekEdit{}, err
	}
	return edit, nil
}

func (d DayPatchRequest) toPatch() (timekeeping.DayPatch, error) {
	date, err := generic.ParseDate(d.Date)
	if err != nil {
		return timekeeping.DayPatch{}, fmt.Errorf("date: %w", err)
	}
	p := timekeeping.DayPatch{Date: date, DoublePay: d.DoublePay}
	if d.Absence != nil {
		code := timekeeping.AbsenceCode(*d.Absence)
		p.Absence = &code
	}
	fields := []struct {
		name string
		in   *float64
		out  **decimal.Decimal
	}{
		{"theoretical_hours", d.TheoreticalHours, &p.TheoreticalHours},
		{"worked_hours", d.WorkedHours, &p.WorkedHours},
		{"absence_hours", d.AbsenceHours, &p.AbsenceHours},
		{"leave_hours", d.LeaveHours, &p.LeaveHours},
	}
	for _, f := range fields {
		if *f.out, err = optionalHours(d.Date+"."+f.name, f.in); err != nil {
			return timekeeping.DayPatch{}, err
		}
	}
	return p, nil
}

func optionalHours(field string, f *float64) (*decimal.Decimal, error) {
	if f == nil {
		return nil, nil
	}
	v, err := timekeeping.HoursFromFloat(field, *f)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// =============================================================================
// BALANCES
// =============================================================================

// BalancesDTO is a balance read: as of a week, or final.
type BalancesDTO struct {
	EmployeeID string               `json:"employee_id"`
	AsOfWeek   string               `json:"as_of_week,omitempty"`
	Balances   timekeeping.Balances `json:"balances"`
	Total      decimal.Decimal      `json:"total"`
}

// =============================================================================
// AUDIT
// =============================================================================

// ImportResponse reports a legacy dataset import.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// ReconcileAllResponse lists results per week.
type ReconcileAllResponse struct {
	EmployeeID  string                                     `json:"employee_id"`
	Weeks       map[generic.WeekID]timekeeping.AuditResult `json:"weeks"`
	Differences int                                        `json:"differences"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
