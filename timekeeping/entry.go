package timekeeping

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/warp/hours-engine/generic"
)

// =============================================================================
// INPUT BOUNDARY - numbers are validated here, never inside the calculators
// =============================================================================

// InvalidNumericError reports a rejected hour value.
type InvalidNumericError struct {
	Field string
	Value string
}

func (e *InvalidNumericError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s (hours must be finite and non-negative)", e.Field, e.Value)
}

func (e *InvalidNumericError) Unwrap() error { return generic.ErrInvalidNumeric }

// HoursFromFloat converts an external number, rejecting NaN, infinities and
// negative values.
func HoursFromFloat(field string, f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return decimal.Zero, &InvalidNumericError{Field: field, Value: fmt.Sprint(f)}
	}
	return decimal.NewFromFloat(f), nil
}

// BalanceFromFloat converts a signed balance, rejecting NaN and infinities.
func BalanceFromFloat(field string, f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, &InvalidNumericError{Field: field, Value: fmt.Sprint(f)}
	}
	return decimal.NewFromFloat(f), nil
}

func checkNonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return &InvalidNumericError{Field: field, Value: d.String()}
	}
	return nil
}

// ValidateDay rejects negative hour values.
func ValidateDay(d DailyRecord) error {
	date := d.Date.String()
	for field, v := range map[string]decimal.Decimal{
		"scheduled_hours":   d.Scheduled(),
		"theoretical_hours": d.TheoreticalHours,
		"worked_hours":      d.WorkedHours,
		"absence_hours":     d.AbsenceHours,
		"leave_hours":       d.LeaveHours,
	} {
		if err := checkNonNegative(date+"."+field, v); err != nil {
			return err
		}
	}
	return nil
}

// ValidateWeek checks the week's identifier, days and overrides.
func ValidateWeek(rec WeeklyRecord) error {
	if _, err := generic.ParseWeekID(string(rec.Week)); err != nil {
		return err
	}
	week := generic.Period{Start: rec.Week.Start(), End: rec.Week.End()}
	for _, d := range rec.Days {
		if !week.Contains(d.Date) {
			return fmt.Errorf("day %s is outside week %s: %w", d.Date, rec.Week, generic.ErrInvalidPeriod)
		}
		if err := ValidateDay(d); err != nil {
			return err
		}
	}
	if rec.WeeklyHoursOverride != nil {
		if err := checkNonNegative("weekly_hours_override", *rec.WeeklyHoursOverride); err != nil {
			return err
		}
	}
	return checkNonNegative("complementary_hours", rec.ComplementaryHours)
}

// ValidatePeriod checks an employment period before it is stored.
func ValidatePeriod(p EmploymentPeriod) error {
	if p.Start.IsZero() {
		return fmt.Errorf("period %s has no start: %w", p.ID, generic.ErrInvalidPeriod)
	}
	if p.End != nil {
		if err := (generic.Period{Start: p.Start, End: *p.End}).Validate(); err != nil {
			return err
		}
	}
	for _, c := range p.WeeklyHours {
		if err := checkNonNegative("weekly_hours", c.Hours); err != nil {
			return err
		}
	}
	for _, sc := range p.Schedules {
		for i, h := range sc.Hours {
			if err := checkNonNegative(fmt.Sprintf("schedules[%s].hours[%d]", sc.EffectiveFrom, i), h); err != nil {
				return err
			}
		}
	}
	for _, a := range p.Absences {
		if err := a.Period().Validate(); err != nil {
			return err
		}
	}
	if err := checkNonNegative("vacation_days_taken_elsewhere", p.VacationDaysTakenElsewhere); err != nil {
		return err
	}
	return nil
}

// NormalizeDay applies the absence rule to an entered day: a type that
// cannot be partial covers the whole scheduled day, and a type that deducts
// theoretical hours removes its hours from the schedule. Both work from the
// scheduled hours, so normalizing a day again changes nothing.
func NormalizeDay(d DailyRecord, rules RuleTables) DailyRecord {
	scheduled := d.Scheduled()
	d.ScheduledHours = &scheduled
	d.TheoreticalHours = scheduled
	if !d.HasAbsence() {
		d.Absence = NoAbsence
		return d
	}
	rule, ok := rules.Absence(d.Absence)
	if !ok {
		return d
	}
	if !rule.AllowsPartialHours {
		d.AbsenceHours = scheduled
	}
	if rule.DeductsTheoreticalHours {
		d.TheoreticalHours = decimal.Max(decimal.Zero, scheduled.Sub(d.AbsenceHours))
	}
	return d
}

// =============================================================================
// OPENING A WEEK FOR DATA ENTRY
// =============================================================================

// OpenWeek builds the seven blank days of week from the schedule calendar in
// effect on each date and the holiday calendar. Days outside any employment
// period get zero theoretical hours.
func OpenWeek(employeeID generic.EmployeeID, week generic.WeekID, history EmploymentHistory, holidays generic.HolidayCalendar) WeeklyRecord {
	rec := WeeklyRecord{EmployeeID: employeeID, Week: week}
	for _, date := range week.Days() {
		day := DailyRecord{Date: date, Absence: NoAbsence}
		if p, ok := history.ActiveAt(date); ok {
			if sched, ok := p.ScheduleAt(date); ok {
				day.TheoreticalHours = sched.HoursOn(date)
			}
		}
		if holidays != nil {
			if h, ok := holidays.HolidayOn(date); ok {
				day.IsHoliday = true
				day.HolidayCategory = h.Category
			}
		}
		scheduled := day.TheoreticalHours
		day.ScheduledHours = &scheduled
		rec.Days = append(rec.Days, day)
	}
	return rec
}

// DayPatch is an unsaved edit of one day. Nil fields keep the stored value.
// TheoreticalHours replaces the day's schedule.
type DayPatch struct {
	Date             generic.TimePoint `json:"date"`
	WorkedHours      *decimal.Decimal  `json:"worked_hours,omitempty"`
	Absence          *AbsenceCode      `json:"absence,omitempty"`
	AbsenceHours     *decimal.Decimal  `json:"absence_hours,omitempty"`
	LeaveHours       *decimal.Decimal  `json:"leave_hours,omitempty"`
	DoublePay        *bool             `json:"double_pay,omitempty"`
	TheoreticalHours *decimal.Decimal  `json:"theoretical_hours,omitempty"`
}

// ApplyPatches returns a copy of rec with the patches applied and the
// touched days normalized. A patch for a date outside the week is an error.
func ApplyPatches(rec WeeklyRecord, patches []DayPatch, rules RuleTables) (WeeklyRecord, error) {
	out := rec
	out.Days = make([]DailyRecord, len(rec.Days))
	copy(out.Days, rec.Days)

	index := map[string]int{}
	for i, d := range out.Days {
		index[d.Date.String()] = i
	}
	for _, p := range patches {
		i, ok := index[p.Date.String()]
		if !ok {
			return WeeklyRecord{}, fmt.Errorf("day %s is outside week %s: %w", p.Date, rec.Week, generic.ErrInvalidPeriod)
		}
		d := out.Days[i]
		if p.TheoreticalHours != nil {
			scheduled := *p.TheoreticalHours
			d.TheoreticalHours = scheduled
			d.ScheduledHours = &scheduled
		}
		if p.WorkedHours != nil {
			d.WorkedHours = *p.WorkedHours
		}
		if p.Absence != nil {
			d.Absence = *p.Absence
		}
		if p.AbsenceHours != nil {
			d.AbsenceHours = *p.AbsenceHours
		}
		if p.LeaveHours != nil {
			d.LeaveHours = *p.LeaveHours
		}
		if p.DoublePay != nil {
			d.DoublePay = *p.DoublePay
		}
		if p.Absence != nil || p.AbsenceHours != nil || p.TheoreticalHours != nil {
			d = NormalizeDay(d, rules)
		}
		if err := ValidateDay(d); err != nil {
			return WeeklyRecord{}, err
		}
		out.Days[i] = d
	}
	return out, nil
}

// WeekEdit is a set of unsaved changes to a week. Nil fields keep the
// stored value.
type WeekEdit struct {
	Days                []DayPatch
	WeeklyHoursOverride *decimal.Decimal
	ClearOverride       bool
	ComplementaryHours  *decimal.Decimal
	Comment             *string
}

// Apply returns a validated copy of rec with the edit applied.
func (e WeekEdit) Apply(rec WeeklyRecord, rules RuleTables) (WeeklyRecord, error) {
	out, err := ApplyPatches(rec, e.Days, rules)
	if err != nil {
		return WeeklyRecord{}, err
	}
	switch {
	case e.ClearOverride:
		out.WeeklyHoursOverride = nil
	case e.WeeklyHoursOverride != nil:
		v := *e.WeeklyHoursOverride
		out.WeeklyHoursOverride = &v
	}
	if e.ComplementaryHours != nil {
		out.ComplementaryHours = *e.ComplementaryHours
	}
	if e.Comment != nil {
		out.Comment = *e.Comment
	}
	if err := ValidateWeek(out); err != nil {
		return WeeklyRecord{}, err
	}
	return out, nil
}
