/*
annual.go - Theoretical annual work-hour target

PURPOSE:
  Derives how many hours an employee must work in a calendar year. The
  configured maximum annual hours for the year applies to a reference
  weekly-hour contract; an employee on other weekly hours gets it scaled.

ALGORITHM:
  rate = MaxAnnualHours / ReferenceWeeklyHours     (annual hours per weekly hour)
  base = rate * weekly hours in effect on Jan 1

  Weekly-hours changes after Jan 1 (including contract starts and ends,
  where weekly hours go from or to zero):
    impact = (new - old) * rate * remainingDays / daysInYear

  Suspending scheduled absences overlapping the year:
    impact = -weeklyHours * rate * suspendedDays / daysInYear

  theoretical = max(0, base + sum(impacts))

  Each event is reported in WorkHoursChangeDetails or SuspensionDetails.
  Values are rounded to cents.

HOURS ALREADY COMPUTED:
  ComputedHours sums, over confirmed weeks, the days inside the year:
  worked hours plus absence hours of types that compute to annual hours.

SEE ALSO:
  - vacation.go: the day-based counterpart for vacation entitlement
  - service.go: loads the history and confirmed weeks
*/
package timekeeping

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/hours-engine/generic"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// YearSettings are the statutory annual figures for one year.
type YearSettings struct {
	Year                 int             `json:"year"`
	MaxAnnualHours       decimal.Decimal `json:"max_annual_hours"`
	ReferenceWeeklyHours decimal.Decimal `json:"reference_weekly_hours"`
}

// AnnualPolicy holds per-year settings with a fallback for unlisted years.
type AnnualPolicy struct {
	Years    map[int]YearSettings
	Fallback YearSettings
}

// DefaultAnnualPolicy is 1800 hours for a 40-hour week.
func DefaultAnnualPolicy() AnnualPolicy {
	return AnnualPolicy{
		Years: map[int]YearSettings{},
		Fallback: YearSettings{
			MaxAnnualHours:       decimal.NewFromInt(1800),
			ReferenceWeeklyHours: decimal.NewFromInt(40),
		},
	}
}

// For returns the settings of year.
func (p AnnualPolicy) For(year int) YearSettings {
	if s, ok := p.Years[year]; ok {
		return s
	}
	s := p.Fallback
	s.Year = year
	return s
}

// rate is annual hours per nominal weekly hour.
func (s YearSettings) rate() decimal.Decimal {
	if s.ReferenceWeeklyHours.IsZero() {
		return decimal.Zero
	}
	return s.MaxAnnualHours.Div(s.ReferenceWeeklyHours)
}

// =============================================================================
// RESULT
// =============================================================================

type WorkHoursChangeDetail struct {
	EffectiveDate generic.TimePoint `json:"effective_date"`
	PreviousHours decimal.Decimal   `json:"previous_hours"`
	NewHours      decimal.Decimal   `json:"new_hours"`
	HoursImpact   decimal.Decimal   `json:"hours_impact"`
}

type SuspensionDetail struct {
	AbsenceID   string            `json:"absence_id"`
	Absence     AbsenceCode       `json:"absence"`
	Start       generic.TimePoint `json:"start"`
	End         generic.TimePoint `json:"end"`
	Days        int               `json:"days"`
	WeeklyHours decimal.Decimal   `json:"weekly_hours"`
	HoursImpact decimal.Decimal   `json:"hours_impact"`
}

// AnnualHours is the theoretical annual target and its breakdown.
type AnnualHours struct {
	Year                   int                     `json:"year"`
	TheoreticalHours       decimal.Decimal         `json:"theoretical_hours"`
	BaseTheoreticalHours   decimal.Decimal         `json:"base_theoretical_hours"`
	SuspensionDetails      []SuspensionDetail      `json:"suspension_details"`
	WorkHoursChangeDetails []WorkHoursChangeDetail `json:"work_hours_change_details"`
	ComputedHours          decimal.Decimal         `json:"computed_hours"`
	RemainingHours         decimal.Decimal         `json:"remaining_hours"`
}

// =============================================================================
// CALCULATION
// =============================================================================

// TheoreticalAnnualHours computes the year's target. records may include
// unconfirmed weeks; only confirmed ones count toward ComputedHours.
func (c *Calculator) TheoreticalAnnualHours(history EmploymentHistory, records []WeeklyRecord, year int, settings YearSettings) AnnualHours {
	yp := generic.YearPeriod(year)
	daysInYear := decimal.NewFromInt(int64(yp.Len()))
	rate := settings.rate()

	current := history.WeeklyHoursAt(yp.Start)
	result := AnnualHours{
		Year:                   year,
		BaseTheoreticalHours:   generic.RoundCents(current.Mul(rate)),
		SuspensionDetails:      []SuspensionDetail{},
		WorkHoursChangeDetails: []WorkHoursChangeDetail{},
	}
	total := current.Mul(rate)

	for _, date := range weeklyHoursEventDates(history, yp) {
		next := history.WeeklyHoursAt(date)
		if next.Equal(current) {
			continue
		}
		remaining := decimal.NewFromInt(int64(generic.Period{Start: date, End: yp.End}.Len()))
		impact := next.Sub(current).Mul(rate).Mul(remaining).Div(daysInYear)
		result.WorkHoursChangeDetails = append(result.WorkHoursChangeDetails, WorkHoursChangeDetail{
			EffectiveDate: date,
			PreviousHours: current,
			NewHours:      next,
			HoursImpact:   generic.RoundCents(impact),
		})
		total = total.Add(impact)
		current = next
	}

	seen := map[string]bool{}
	for _, period := range history.Periods {
		for _, abs := range period.Absences {
			rule, ok := c.Rules.Absence(abs.Absence)
			if !ok || !rule.SuspendsContract || (abs.ID != "" && seen[abs.ID]) {
				continue
			}
			overlap, ok := abs.Period().Intersect(yp)
			if !ok {
				continue
			}
			seen[abs.ID] = true
			weekly := history.WeeklyHoursAt(overlap.Start)
			days := overlap.Len()
			impact := weekly.Mul(rate).Mul(decimal.NewFromInt(int64(days))).Div(daysInYear).Neg()
			result.SuspensionDetails = append(result.SuspensionDetails, SuspensionDetail{
				AbsenceID:   abs.ID,
				Absence:     abs.Absence,
				Start:       overlap.Start,
				End:         overlap.End,
				Days:        days,
				WeeklyHours: weekly,
				HoursImpact: generic.RoundCents(impact),
			})
			total = total.Add(impact)
		}
	}
	sort.SliceStable(result.SuspensionDetails, func(i, j int) bool {
		return result.SuspensionDetails[i].Start.Before(result.SuspensionDetails[j].Start)
	})

	if total.IsNegative() {
		total = decimal.Zero
	}
	result.TheoreticalHours = generic.RoundCents(total)
	result.ComputedHours = c.computedHours(records, yp)
	result.RemainingHours = result.TheoreticalHours.Sub(result.ComputedHours)
	return result
}

// weeklyHoursEventDates lists the dates after Jan 1 where weekly hours may
// change: history entries, period starts and the day after period ends.
func weeklyHoursEventDates(history EmploymentHistory, yp generic.Period) []generic.TimePoint {
	inside := func(d generic.TimePoint) bool { return d.After(yp.Start) && d.BeforeOrEqual(yp.End) }
	seen := map[string]bool{}
	var dates []generic.TimePoint
	add := func(d generic.TimePoint) {
		if inside(d) && !seen[d.String()] {
			seen[d.String()] = true
			dates = append(dates, d)
		}
	}
	for _, p := range history.Periods {
		add(p.Start)
		for _, c := range generic.ChangesWithin(p.WeeklyHours, yp) {
			add(c.EffectiveFrom)
		}
		if p.End != nil {
			add(p.End.AddDays(1))
		}
	}
	generic.SortTimePoints(dates)
	return dates
}

// computedHours sums hours already done in the year from confirmed weeks.
func (c *Calculator) computedHours(records []WeeklyRecord, yp generic.Period) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range ConfirmedWeeks(records) {
		for _, day := range rec.Days {
			if !yp.Contains(day.Date) {
				continue
			}
			total = total.Add(day.WorkedHours)
			if rule, ok := c.Rules.Absence(day.Absence); ok && rule.ComputesToAnnualHours {
				total = total.Add(day.AbsenceHours)
			}
		}
	}
	return generic.RoundCents(total)
}

// =============================================================================
// ABSENCE BUDGETS
// =============================================================================

// BudgetUsage reports hours recorded against an absence type's annual budget.
type BudgetUsage struct {
	Absence   AbsenceCode     `json:"absence"`
	Name      string          `json:"name"`
	Budget    decimal.Decimal `json:"budget"`
	Used      decimal.Decimal `json:"used"`
	Remaining decimal.Decimal `json:"remaining"`
	Exceeded  bool            `json:"exceeded"`
}

// AbsenceBudgetUsage sums confirmed absence hours in year for every absence
// type carrying an annual hour budget. Sorted by code.
func (c *Calculator) AbsenceBudgetUsage(records []WeeklyRecord, year int) []BudgetUsage {
	yp := generic.YearPeriod(year)
	used := map[AbsenceCode]decimal.Decimal{}
	for _, rec := range ConfirmedWeeks(records) {
		for _, day := range rec.Days {
			if yp.Contains(day.Date) && day.HasAbsence() {
				used[day.Absence] = used[day.Absence].Add(day.AbsenceHours)
			}
		}
	}

	out := []BudgetUsage{}
	for _, rule := range c.Rules.AbsenceList() {
		if rule.AnnualHourBudget == nil {
			continue
		}
		u := used[rule.Code]
		out = append(out, BudgetUsage{
			Absence:   rule.Code,
			Name:      rule.Name,
			Budget:    *rule.AnnualHourBudget,
			Used:      u,
			Remaining: rule.AnnualHourBudget.Sub(u),
			Exceeded:  u.GreaterThan(*rule.AnnualHourBudget),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Absence < out[j].Absence })
	return out
}
