package timekeeping

import (
	"github.com/shopspring/decimal"
	"github.com/warp/hours-engine/generic"
)

// =============================================================================
// VACATION POLICY
// =============================================================================

// VacationPolicy holds the entitlement constants.
type VacationPolicy struct {
	// BaseDays is the yearly allotment in calendar days.
	BaseDays decimal.Decimal
	// A month-equivalent of suspension is SuspensionDaysPerMonth days and
	// costs DeductionPerMonth vacation days.
	SuspensionDaysPerMonth decimal.Decimal
	DeductionPerMonth      decimal.Decimal
}

func DefaultVacationPolicy() VacationPolicy {
	return VacationPolicy{
		BaseDays:               decimal.NewFromInt(31),
		SuspensionDaysPerMonth: decimal.NewFromInt(30),
		DeductionPerMonth:      decimal.NewFromFloat(2.5),
	}
}

// VacationEntitlement is the year's vacation-day position.
type VacationEntitlement struct {
	Year                  int             `json:"year"`
	VacationDaysTaken     decimal.Decimal `json:"vacation_days_taken"`
	SuspensionDays        int             `json:"suspension_days"`
	VacationDaysAvailable decimal.Decimal `json:"vacation_days_available"`
	VacationDaysRemaining decimal.Decimal `json:"vacation_days_remaining"`
	BaseDays              decimal.Decimal `json:"base_days"`
	CarryOverDays         decimal.Decimal `json:"carry_over_days"`
	LegacyCarriedDays     decimal.Decimal `json:"legacy_carried_days"`
	SuspensionDeduction   decimal.Decimal `json:"suspension_deduction"`
	ProratedDays          decimal.Decimal `json:"prorated_days"`
	ContractDays          int             `json:"contract_days"`
	IsTransfer            bool            `json:"is_transfer"`
}

type dayTag byte

const (
	tagVacation   dayTag = 'V'
	tagSuspension dayTag = 'S'
)

// dayMap tags calendar days. A suspension always overwrites a vacation tag.
type dayMap map[string]dayTag

func (m dayMap) mark(day generic.TimePoint, tag dayTag) {
	key := day.String()
	if tag == tagSuspension || m[key] != tagSuspension {
		m[key] = tag
	}
}

func (m dayMap) count(tag dayTag) int {
	n := 0
	for _, t := range m {
		if t == tag {
			n++
		}
	}
	return n
}

func (c *Calculator) tagFor(code AbsenceCode) (dayTag, bool) {
	rule, ok := c.Rules.Absence(code)
	switch {
	case !ok:
		return 0, false
	case rule.SuspendsContract:
		return tagSuspension, true
	case rule.IsVacation:
		return tagVacation, true
	}
	return 0, false
}

// VacationEntitlement computes how many vacation days the employee may take
// in year. Only confirmed records contribute daily absences.
func (c *Calculator) VacationEntitlement(history EmploymentHistory, records []WeeklyRecord, year int, policy VacationPolicy) VacationEntitlement {
	yp := generic.YearPeriod(year)
	result := VacationEntitlement{Year: year, BaseDays: policy.BaseDays}

	periods := history.InYear(year)
	if len(periods) == 0 {
		return result
	}
	first := periods[0]
	result.IsTransfer = first.IsTransfer
	result.ContractDays = history.ContractDaysIn(yp)

	if first.IsTransfer {
		result.ProratedDays = policy.BaseDays
	} else {
		result.ProratedDays = policy.BaseDays.
			Mul(decimal.NewFromInt(int64(result.ContractDays))).
			Div(decimal.NewFromInt(int64(yp.Len())))
	}

	days := dayMap{}
	for _, period := range history.Periods {
		for _, abs := range period.Absences {
			tag, ok := c.tagFor(abs.Absence)
			if !ok {
				continue
			}
			overlap, ok := abs.Period().Intersect(yp)
			if !ok {
				continue
			}
			for _, d := range overlap.Days() {
				days.mark(d, tag)
			}
		}
	}
	for _, rec := range ConfirmedWeeks(records) {
		for _, day := range rec.Days {
			if !yp.Contains(day.Date) || !day.HasAbsence() {
				continue
			}
			if tag, ok := c.tagFor(day.Absence); ok {
				days.mark(day.Date, tag)
			}
		}
	}

	taken := decimal.NewFromInt(int64(days.count(tagVacation)))
	if first.IsTransfer {
		taken = taken.Add(first.VacationDaysTakenElsewhere)
	}
	result.VacationDaysTaken = taken
	result.SuspensionDays = days.count(tagSuspension)

	deduction := decimal.Zero
	if !policy.SuspensionDaysPerMonth.IsZero() {
		deduction = decimal.NewFromInt(int64(result.SuspensionDays)).
			Div(policy.SuspensionDaysPerMonth).
			Mul(policy.DeductionPerMonth)
	}

	carry := decimal.Zero
	for _, p := range periods {
		for _, co := range p.CarryOver {
			if co.Year == year {
				carry = carry.Add(co.Days)
			}
		}
	}
	result.CarryOverDays = carry
	result.LegacyCarriedDays = first.PendingVacationDays

	available := result.ProratedDays.Sub(deduction).Add(carry).Add(first.PendingVacationDays).Ceil()
	result.VacationDaysAvailable = available
	result.VacationDaysRemaining = available.Sub(taken)
	result.SuspensionDeduction = generic.RoundCents(deduction)
	result.ProratedDays = generic.RoundCents(result.ProratedDays)
	return result
}
