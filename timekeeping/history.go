package timekeeping

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/hours-engine/generic"
)

// EmploymentHistory is an employee's periods sorted by start date, with
// nested histories sorted by effective date.
type EmploymentHistory struct {
	Periods []EmploymentPeriod
}

// NewEmploymentHistory copies and sorts the periods. The input is not modified.
func NewEmploymentHistory(periods []EmploymentPeriod) EmploymentHistory {
	sorted := make([]EmploymentPeriod, len(periods))
	for i, p := range periods {
		sorted[i] = p.normalize()
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})
	return EmploymentHistory{Periods: sorted}
}

// ActiveAt returns the period covering date. When periods overlap the one
// that started last wins.
func (h EmploymentHistory) ActiveAt(date generic.TimePoint) (EmploymentPeriod, bool) {
	for i := len(h.Periods) - 1; i >= 0; i-- {
		if h.Periods[i].Active(date) {
			return h.Periods[i], true
		}
	}
	return EmploymentPeriod{}, false
}

// Earliest returns the chronologically first period.
func (h EmploymentHistory) Earliest() (EmploymentPeriod, bool) {
	if len(h.Periods) == 0 {
		return EmploymentPeriod{}, false
	}
	return h.Periods[0], true
}

// InYear returns the periods overlapping the calendar year, in start order.
func (h EmploymentHistory) InYear(year int) []EmploymentPeriod {
	yp := generic.YearPeriod(year)
	var out []EmploymentPeriod
	for _, p := range h.Periods {
		if _, ok := p.Span(yp.End).Intersect(yp); ok {
			out = append(out, p)
		}
	}
	return out
}

// WeeklyHoursAt returns the nominal weekly hours on date, zero outside any period.
func (h EmploymentHistory) WeeklyHoursAt(date generic.TimePoint) decimal.Decimal {
	p, ok := h.ActiveAt(date)
	if !ok {
		return decimal.Zero
	}
	hours, _ := p.WeeklyHoursAt(date)
	return hours
}

// ContractDaysIn counts the days of p covered by at least one period.
func (h EmploymentHistory) ContractDaysIn(p generic.Period) int {
	count := 0
	for _, day := range p.Days() {
		if _, ok := h.ActiveAt(day); ok {
			count++
		}
	}
	return count
}
