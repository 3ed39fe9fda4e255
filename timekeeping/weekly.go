/*
weekly.go - Weekly balance calculator

PURPOSE:
  Folds one week's daily records into three bag impacts (deltas) and the
  resulting balances. Pure: no I/O, inputs are never mutated.

ALGORITHM:
  1. Active employment period as of the week's first day. None: neutral result.
  2. Weekly target: explicit override, else weekly hours effective that day.
  3. Contract rules: unmapped contract computes every bag.
  4. Per day, in date order:
     - Worked opening holiday, non-Sunday, no absence: theoretical hours count
       toward the weekly total; worked hours credit the holiday bag unless
       double pay. An unworked opening holiday is an ordinary day.
     - Other non-Sunday days: worked hours count; absence hours count too when
       the absence type computes to weekly hours or full day.
     - Sundays add nothing to the weekly total. A worked ordinary holiday on a
       Sunday still credits the holiday bag (same double-pay exception).
     - Holiday with no absence and positive leave hours credits the leave bag.
     - Absence types with an AffectedBag debit that bag by the absence hours.
  5. Settlement: ordinary += total - target - complementary hours.
  6. Each delta is rounded to the quarter hour once, then added to the
     starting balances.

  Every bag movement is gated by the contract's flag for that bag.

EXAMPLE:
  Mon-Fri 8h worked, target 40h      -> ordinary 0
  Same week with 32h worked          -> ordinary -8
  Monday opening holiday, 8h worked  -> holiday +8, 8h still count weekly
  Same with double pay               -> holiday 0, 8h still count weekly

SEE ALSO:
  - ledger.go: replays confirmed weeks through this calculator
  - audit.go: recomputes impacts from zero balances
*/
package timekeeping

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/hours-engine/generic"
)

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

// WeeklyInput is everything one week's calculation needs.
type WeeklyInput struct {
	EmployeeID          generic.EmployeeID
	Days                []DailyRecord
	Starting            Balances
	History             EmploymentHistory
	WeeklyHoursOverride *decimal.Decimal
	ComplementaryHours  decimal.Decimal
}

// WeeklyImpact is the rounded movement of each bag and the resulting balances.
type WeeklyImpact struct {
	OrdinaryDelta decimal.Decimal `json:"ordinary_delta"`
	HolidayDelta  decimal.Decimal `json:"holiday_delta"`
	LeaveDelta    decimal.Decimal `json:"leave_delta"`
	Resulting     Balances        `json:"resulting"`

	// Diagnostics, not part of the ledger.
	WeeklyTotal    decimal.Decimal `json:"weekly_total"`
	WeeklyTarget   decimal.Decimal `json:"weekly_target"`
	NoActivePeriod bool            `json:"no_active_period,omitempty"`
}

// Deltas returns the impact as a Balances triple.
func (w WeeklyImpact) Deltas() Balances {
	return Balances{Ordinary: w.OrdinaryDelta, Holiday: w.HolidayDelta, Leave: w.LeaveDelta}
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator applies the rule tables. Safe for concurrent use; it holds no
// mutable state.
type Calculator struct {
	Rules RuleTables
	Log   logrus.FieldLogger
}

// NewCalculator creates a calculator. A nil logger uses the logrus standard logger.
func NewCalculator(rules RuleTables, log logrus.FieldLogger) *Calculator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Calculator{Rules: rules, Log: log}
}

// ComputeWeeklyImpact folds the week's days into bag impacts.
func (c *Calculator) ComputeWeeklyImpact(in WeeklyInput) WeeklyImpact {
	if len(in.Days) == 0 {
		return WeeklyImpact{Resulting: in.Starting}
	}

	days := make([]DailyRecord, len(in.Days))
	copy(days, in.Days)
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })

	weekStart := days[0].Date
	period, ok := in.History.ActiveAt(weekStart)
	if !ok {
		c.Log.WithFields(logrus.Fields{
			"employee_id": in.EmployeeID,
			"date":        weekStart.String(),
		}).Debug("no active employment period, returning neutral impact")
		return WeeklyImpact{Resulting: in.Starting, NoActivePeriod: true}
	}

	target := decimal.Zero
	if in.WeeklyHoursOverride != nil {
		target = *in.WeeklyHoursOverride
	} else if h, ok := period.WeeklyHoursAt(weekStart); ok {
		target = h
	}

	contract, mapped := c.Rules.Contract(period.ContractType)
	if !mapped {
		c.Log.WithFields(logrus.Fields{
			"employee_id":   in.EmployeeID,
			"contract_type": period.ContractType,
		}).Warn("unmapped contract type, computing all bags")
	}

	var (
		total    = decimal.Zero
		ordinary = decimal.Zero
		holiday  = decimal.Zero
		leave    = decimal.Zero
	)

	for _, day := range days {
		rule, hasRule := c.absenceRule(in.EmployeeID, day)
		sunday := day.Date.IsSunday()

		switch {
		case sunday:
			// Excluded from the weekly total.
		case day.IsOpeningHoliday() && !day.HasAbsence() && day.WorkedHours.IsPositive():
			total = total.Add(day.TheoreticalHours)
			if !day.DoublePay && contract.ComputesHolidayBag {
				holiday = holiday.Add(day.WorkedHours)
			}
		default:
			total = total.Add(day.WorkedHours)
			if hasRule && rule.CountsTowardWeek() {
				total = total.Add(day.AbsenceHours)
			}
		}

		if sunday && day.IsHoliday && !day.IsOpeningHoliday() && day.WorkedHours.IsPositive() &&
			!day.DoublePay && contract.ComputesHolidayBag {
			holiday = holiday.Add(day.WorkedHours)
		}

		if day.IsHoliday && !day.HasAbsence() && day.LeaveHours.IsPositive() && contract.ComputesLeaveBag {
			leave = leave.Add(day.LeaveHours)
		}

		if hasRule && rule.AffectedBag != BagNone && contract.Computes(rule.AffectedBag) {
			switch rule.AffectedBag {
			case BagOrdinary:
				ordinary = ordinary.Sub(day.AbsenceHours)
			case BagHoliday:
				holiday = holiday.Sub(day.AbsenceHours)
			case BagLeave:
				leave = leave.Sub(day.AbsenceHours)
			}
		}
	}

	if contract.ComputesOrdinaryBag {
		ordinary = ordinary.Add(total.Sub(target).Sub(in.ComplementaryHours))
	}

	impact := WeeklyImpact{
		OrdinaryDelta: generic.RoundQuarter(ordinary),
		HolidayDelta:  generic.RoundQuarter(holiday),
		LeaveDelta:    generic.RoundQuarter(leave),
		WeeklyTotal:   total,
		WeeklyTarget:  target,
	}
	impact.Resulting = in.Starting.Add(impact.Deltas()).Rounded()
	return impact
}

// absenceRule resolves the day's absence type, logging unmapped codes.
func (c *Calculator) absenceRule(employeeID generic.EmployeeID, day DailyRecord) (AbsenceType, bool) {
	if !day.HasAbsence() {
		return AbsenceType{}, false
	}
	rule, ok := c.Rules.Absence(day.Absence)
	if !ok {
		c.Log.WithFields(logrus.Fields{
			"employee_id": employeeID,
			"date":        day.Date.String(),
			"absence":     day.Absence,
		}).Warn("unmapped absence type, ignoring absence rules for day")
	}
	return rule, ok
}

// ComputeWeek runs the calculator over a stored weekly record.
func (c *Calculator) ComputeWeek(rec WeeklyRecord, starting Balances, history EmploymentHistory) WeeklyImpact {
	return c.ComputeWeeklyImpact(WeeklyInput{
		EmployeeID:          rec.EmployeeID,
		Days:                rec.Days,
		Starting:            starting,
		History:             history,
		WeeklyHoursOverride: rec.WeeklyHoursOverride,
		ComplementaryHours:  rec.ComplementaryHours,
	})
}
