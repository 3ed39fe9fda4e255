// Package timekeeping implements the hour-bag accounting of the engine.
// It uses the generic primitives with bag, contract and absence rules.
package timekeeping

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/hours-engine/generic"
)

// =============================================================================
// BAGS
// =============================================================================

// Bag identifies one of the three independent hour ledgers.
type Bag string

const (
	BagNone     Bag = ""
	BagOrdinary Bag = "ordinary"
	BagHoliday  Bag = "holiday"
	BagLeave    Bag = "leave"
)

// Balances is the {ordinary, holiday, leave} triple, always in hours.
type Balances struct {
	Ordinary decimal.Decimal `json:"ordinary"`
	Holiday  decimal.Decimal `json:"holiday"`
	Leave    decimal.Decimal `json:"leave"`
}

func (b Balances) Add(o Balances) Balances {
	return Balances{
		Ordinary: b.Ordinary.Add(o.Ordinary),
		Holiday:  b.Holiday.Add(o.Holiday),
		Leave:    b.Leave.Add(o.Leave),
	}
}

// Rounded rounds each bag to the nearest quarter hour.
func (b Balances) Rounded() Balances {
	return Balances{
		Ordinary: generic.RoundQuarter(b.Ordinary),
		Holiday:  generic.RoundQuarter(b.Holiday),
		Leave:    generic.RoundQuarter(b.Leave),
	}
}

func (b Balances) Total() decimal.Decimal {
	return b.Ordinary.Add(b.Holiday).Add(b.Leave)
}

func (b Balances) Equal(o Balances) bool {
	return b.Ordinary.Equal(o.Ordinary) && b.Holiday.Equal(o.Holiday) && b.Leave.Equal(o.Leave)
}

// Get returns the value of one bag.
func (b Balances) Get(bag Bag) decimal.Decimal {
	switch bag {
	case BagOrdinary:
		return b.Ordinary
	case BagHoliday:
		return b.Holiday
	case BagLeave:
		return b.Leave
	}
	return decimal.Zero
}

// =============================================================================
// DAILY AND WEEKLY RECORDS
// =============================================================================

// AbsenceCode references an AbsenceType. NoAbsence marks a day without one.
type AbsenceCode string

const NoAbsence AbsenceCode = "none"

// DailyRecord is one calendar day for one employee. ScheduledHours is the
// day's hours before any absence deduction; nil means TheoreticalHours.
type DailyRecord struct {
	Date             generic.TimePoint       `json:"date"`
	TheoreticalHours decimal.Decimal         `json:"theoretical_hours"`
	ScheduledHours   *decimal.Decimal        `json:"scheduled_hours,omitempty"`
	WorkedHours      decimal.Decimal         `json:"worked_hours"`
	Absence          AbsenceCode             `json:"absence"`
	AbsenceHours     decimal.Decimal         `json:"absence_hours"`
	LeaveHours       decimal.Decimal         `json:"leave_hours"`
	DoublePay        bool                    `json:"double_pay"`
	IsHoliday        bool                    `json:"is_holiday"`
	HolidayCategory  generic.HolidayCategory `json:"holiday_category,omitempty"`
}

// Scheduled returns the day's hours before any absence deduction.
func (d DailyRecord) Scheduled() decimal.Decimal {
	if d.ScheduledHours != nil {
		return *d.ScheduledHours
	}
	return d.TheoreticalHours
}

// HasAbsence reports whether the day references an absence type.
func (d DailyRecord) HasAbsence() bool {
	return d.Absence != "" && d.Absence != NoAbsence
}

// IsOpeningHoliday reports an "opening" holiday, on which the business stays open.
func (d DailyRecord) IsOpeningHoliday() bool {
	return d.IsHoliday && d.HolidayCategory == generic.HolidayOpening
}

// WeeklyRecord holds seven days plus week-level overrides.
type WeeklyRecord struct {
	EmployeeID          generic.EmployeeID `json:"employee_id"`
	Week                generic.WeekID     `json:"week"`
	Days                []DailyRecord      `json:"days"`
	WeeklyHoursOverride *decimal.Decimal   `json:"weekly_hours_override,omitempty"`
	ComplementaryHours  decimal.Decimal    `json:"complementary_hours"`
	Confirmed           bool               `json:"confirmed"`
	ConfirmedAt         *time.Time         `json:"confirmed_at,omitempty"`
	Comment             string             `json:"comment"`
	HasDifference       bool               `json:"has_difference"`

	// Balances before this week was applied. Kept after unlock so a
	// correction restores exactly what later weeks were confirmed against.
	PreviousBalances *Balances `json:"previous_balances,omitempty"`

	// Impact recorded at confirmation.
	Impact *WeeklyImpact `json:"impact,omitempty"`
}

// =============================================================================
// EMPLOYMENT HISTORY
// =============================================================================

type ContractCode string

// WeeklyHoursChange sets the nominal weekly hours from EffectiveFrom on.
type WeeklyHoursChange struct {
	EffectiveFrom generic.TimePoint `json:"effective_from"`
	Hours         decimal.Decimal   `json:"hours"`
}

func (c WeeklyHoursChange) EffectiveDate() generic.TimePoint { return c.EffectiveFrom }

// ScheduleCalendar gives theoretical hours per weekday, Monday first.
type ScheduleCalendar struct {
	EffectiveFrom generic.TimePoint  `json:"effective_from"`
	Hours         [7]decimal.Decimal `json:"hours"`
}

func (s ScheduleCalendar) EffectiveDate() generic.TimePoint { return s.EffectiveFrom }

// HoursOn returns the scheduled hours for the weekday of date.
func (s ScheduleCalendar) HoursOn(date generic.TimePoint) decimal.Decimal {
	return s.Hours[date.WeekdayIndex()]
}

// ScheduledAbsence is a long absence planned in advance (leave, suspension).
type ScheduledAbsence struct {
	ID      string            `json:"id"`
	Start   generic.TimePoint `json:"start"`
	End     generic.TimePoint `json:"end"`
	Absence AbsenceCode       `json:"absence"`
}

func (a ScheduledAbsence) Period() generic.Period {
	return generic.Period{Start: a.Start, End: a.End}
}

// VacationCarryOver are vacation days carried into Year.
type VacationCarryOver struct {
	Year int             `json:"year"`
	Days decimal.Decimal `json:"days"`
}

// EmploymentPeriod is one contiguous contract span.
type EmploymentPeriod struct {
	ID              generic.PeriodID   `json:"id"`
	EmployeeID      generic.EmployeeID `json:"employee_id"`
	Start           generic.TimePoint  `json:"start"`
	End             *generic.TimePoint `json:"end,omitempty"`
	ContractType    ContractCode       `json:"contract_type"`
	InitialBalances Balances           `json:"initial_balances"`

	WeeklyHours []WeeklyHoursChange `json:"weekly_hours"`
	Schedules   []ScheduleCalendar  `json:"schedules"`
	Absences    []ScheduledAbsence  `json:"absences"`

	// Vacation bookkeeping
	IsTransfer                 bool                `json:"is_transfer"`
	VacationDaysTakenElsewhere decimal.Decimal     `json:"vacation_days_taken_elsewhere"`
	PendingVacationDays        decimal.Decimal     `json:"pending_vacation_days"`
	CarryOver                  []VacationCarryOver `json:"carry_over"`
}

// Active reports whether the period covers date.
func (p EmploymentPeriod) Active(date generic.TimePoint) bool {
	if date.Before(p.Start) {
		return false
	}
	return p.End == nil || !date.After(*p.End)
}

// Span returns the period clamped to "until" when still open.
func (p EmploymentPeriod) Span(until generic.TimePoint) generic.Period {
	return generic.OpenPeriod(p.Start, p.End, until)
}

// WeeklyHoursAt returns the nominal weekly hours effective on date.
func (p EmploymentPeriod) WeeklyHoursAt(date generic.TimePoint) (decimal.Decimal, bool) {
	c, ok := generic.EffectiveAt(p.WeeklyHours, date)
	if !ok {
		return decimal.Zero, false
	}
	return c.Hours, true
}

// ScheduleAt returns the schedule calendar effective on date.
func (p EmploymentPeriod) ScheduleAt(date generic.TimePoint) (ScheduleCalendar, bool) {
	return generic.EffectiveAt(p.Schedules, date)
}

// normalize sorts the nested histories by effective date.
func (p EmploymentPeriod) normalize() EmploymentPeriod {
	p.WeeklyHours = append([]WeeklyHoursChange(nil), p.WeeklyHours...)
	p.Schedules = append([]ScheduleCalendar(nil), p.Schedules...)
	generic.SortByEffectiveDate(p.WeeklyHours)
	generic.SortByEffectiveDate(p.Schedules)
	return p
}

// Employee is the identity used to key the legacy audit dataset.
type Employee struct {
	ID          generic.EmployeeID `json:"id"`
	DisplayName string             `json:"display_name"`
}
