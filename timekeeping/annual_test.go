package timekeeping_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hours-engine/generic"
	"github.com/warp/hours-engine/timekeeping"
)

func settings2025() timekeeping.YearSettings {
	return timekeeping.DefaultAnnualPolicy().For(2025)
}

func annualFor(t *testing.T, periods []timekeeping.EmploymentPeriod, records []timekeeping.WeeklyRecord) timekeeping.AnnualHours {
	t.Helper()
	calc, _ := newCalculator()
	return calc.TheoreticalAnnualHours(timekeeping.NewEmploymentHistory(periods), records, 2025, settings2025())
}

func TestTheoreticalAnnualHours_FullYear(t *testing.T) {
	// GIVEN: A 40h contract covering the whole year
	result := annualFor(t, []timekeeping.EmploymentPeriod{standardPeriod(date(2025, time.January, 1))}, nil)

	// THEN: The full configured maximum applies
	assertHours(t, 1800, result.TheoreticalHours)
	assertHours(t, 1800, result.BaseTheoreticalHours)
	assert.Empty(t, result.WorkHoursChangeDetails)
	assert.Empty(t, result.SuspensionDetails)
}

func TestTheoreticalAnnualHours_WeeklyHoursChange(t *testing.T) {
	// GIVEN: 40h until August, 30h from 2025-09-01 (122 days remain)
	p := standardPeriod(date(2025, time.January, 1))
	p.WeeklyHours = append(p.WeeklyHours, timekeeping.WeeklyHoursChange{
		EffectiveFrom: date(2025, time.September, 1), Hours: h(30),
	})

	result := annualFor(t, []timekeeping.EmploymentPeriod{p}, nil)

	// THEN: -10h x 45 x 122 / 365
	require.Len(t, result.WorkHoursChangeDetails, 1)
	d := result.WorkHoursChangeDetails[0]
	assert.Equal(t, "2025-09-01", d.EffectiveDate.String())
	assertHours(t, 40, d.PreviousHours)
	assertHours(t, 30, d.NewHours)
	assertHours(t, -150.41, d.HoursImpact)
	assertHours(t, 1649.59, result.TheoreticalHours)
}

func TestTheoreticalAnnualHours_IgnoresChangesOutsideYear(t *testing.T) {
	// GIVEN: Changes in 2024, 2025 and 2026
	p := standardPeriod(date(2024, time.January, 1))
	p.WeeklyHours = append(p.WeeklyHours,
		timekeeping.WeeklyHoursChange{EffectiveFrom: date(2024, time.June, 1), Hours: h(32)},
		timekeeping.WeeklyHoursChange{EffectiveFrom: date(2025, time.September, 1), Hours: h(30)},
		timekeeping.WeeklyHoursChange{EffectiveFrom: date(2026, time.February, 1), Hours: h(20)},
	)

	result := annualFor(t, []timekeeping.EmploymentPeriod{p}, nil)

	// THEN: Only the 2025 change is detailed, starting from the 2024 hours
	require.Len(t, result.WorkHoursChangeDetails, 1)
	d := result.WorkHoursChangeDetails[0]
	assert.Equal(t, "2025-09-01", d.EffectiveDate.String())
	assertHours(t, 32, d.PreviousHours)
	assertHours(t, 30, d.NewHours)
}

func TestTheoreticalAnnualHours_MidYearStartAndEnd(t *testing.T) {
	// Hired 2025-07-01: 184 days remain
	hired := annualFor(t, []timekeeping.EmploymentPeriod{standardPeriod(date(2025, time.July, 1))}, nil)
	assertHours(t, 0, hired.BaseTheoreticalHours)
	require.Len(t, hired.WorkHoursChangeDetails, 1)
	assertHours(t, 907.40, hired.WorkHoursChangeDetails[0].HoursImpact)
	assertHours(t, 907.40, hired.TheoreticalHours)

	// Left after 2025-06-30
	p := standardPeriod(date(2025, time.January, 1))
	end := date(2025, time.June, 30)
	p.End = &end
	left := annualFor(t, []timekeeping.EmploymentPeriod{p}, nil)
	require.Len(t, left.WorkHoursChangeDetails, 1)
	assert.Equal(t, "2025-07-01", left.WorkHoursChangeDetails[0].EffectiveDate.String())
	assertHours(t, 0, left.WorkHoursChangeDetails[0].NewHours)
	assertHours(t, 892.60, left.TheoreticalHours)
}

func TestTheoreticalAnnualHours_Suspensions(t *testing.T) {
	// GIVEN: A 30-day suspension in July, one crossing into the year for 10
	// days, and a vacation block that must be ignored
	p := standardPeriod(date(2024, time.January, 1))
	p.Absences = []timekeeping.ScheduledAbsence{
		{ID: "s-jul", Start: date(2025, time.July, 1), End: date(2025, time.July, 30), Absence: "SUSP"},
		{ID: "s-jan", Start: date(2024, time.December, 20), End: date(2025, time.January, 10), Absence: "SUSP"},
		{ID: "v-aug", Start: date(2025, time.August, 4), End: date(2025, time.August, 15), Absence: "VAC"},
	}

	result := annualFor(t, []timekeeping.EmploymentPeriod{p}, nil)

	// THEN: Details are sorted by start and clamped to the year
	require.Len(t, result.SuspensionDetails, 2)
	assert.Equal(t, "s-jan", result.SuspensionDetails[0].AbsenceID)
	assert.Equal(t, "2025-01-01", result.SuspensionDetails[0].Start.String())
	assert.Equal(t, 10, result.SuspensionDetails[0].Days)
	assertHours(t, -49.32, result.SuspensionDetails[0].HoursImpact)
	assert.Equal(t, 30, result.SuspensionDetails[1].Days)
	assertHours(t, -147.95, result.SuspensionDetails[1].HoursImpact)
	assertHours(t, 1602.74, result.TheoreticalHours)
}

func TestTheoreticalAnnualHours_NeverNegative(t *testing.T) {
	p := standardPeriod(date(2025, time.January, 1))
	p.Absences = []timekeeping.ScheduledAbsence{
		{ID: "s-1", Start: date(2025, time.January, 1), End: date(2025, time.December, 31), Absence: "SUSP"},
		{ID: "s-2", Start: date(2025, time.January, 1), End: date(2025, time.December, 31), Absence: "SUSP"},
	}
	result := annualFor(t, []timekeeping.EmploymentPeriod{p}, nil)
	assertHours(t, 0, result.TheoreticalHours)
}

func TestTheoreticalAnnualHours_ComputedHoursFromConfirmedWeeks(t *testing.T) {
	vacation := weekRecord("2025-W11", true, 8, 8, 8, 8, 0)
	vacation.Days[4].Absence = "VAC"
	vacation.Days[4].AbsenceHours = h(8)

	medical := weekRecord("2025-W12", true, 8, 8, 8, 8, 0)
	medical.Days[4].Absence = "MED"
	medical.Days[4].AbsenceHours = h(8)

	records := []timekeeping.WeeklyRecord{
		weekRecord("2025-W10", true, 8, 8, 8, 8, 8),
		vacation,
		medical,
		weekRecord("2025-W13", false, 8, 8, 8, 8, 8),
	}

	result := annualFor(t, []timekeeping.EmploymentPeriod{standardPeriod(date(2025, time.January, 1))}, records)

	// 40 worked + 32 worked + 8 vacation + 32 worked; medical hours do not count
	assertHours(t, 112, result.ComputedHours)
	assertHours(t, 1688, result.RemainingHours)
}

func TestAnnualPolicy_PerYearSettings(t *testing.T) {
	policy := timekeeping.DefaultAnnualPolicy()
	policy.Years[2026] = timekeeping.YearSettings{Year: 2026, MaxAnnualHours: h(1792), ReferenceWeeklyHours: h(40)}

	assertHours(t, 1792, policy.For(2026).MaxAnnualHours)
	fallback := policy.For(2027)
	assert.Equal(t, 2027, fallback.Year)
	assertHours(t, 1800, fallback.MaxAnnualHours)
}

func TestAbsenceBudgetUsage(t *testing.T) {
	calc, _ := newCalculator()

	week := func(id string, confirmed bool, medicalDays ...int) timekeeping.WeeklyRecord {
		rec := weekRecord(generic.WeekID(id), confirmed, 8, 8, 8, 8, 8)
		for _, i := range medicalDays {
			rec.Days[i].WorkedHours = h(0)
			rec.Days[i].Absence = "MED"
			rec.Days[i].AbsenceHours = h(8)
		}
		return rec
	}

	records := []timekeeping.WeeklyRecord{
		week("2025-W10", true, 3, 4),
		week("2025-W11", false, 0),
	}
	usage := calc.AbsenceBudgetUsage(records, 2025)
	require.Len(t, usage, 1)
	assert.Equal(t, timekeeping.AbsenceCode("MED"), usage[0].Absence)
	assertHours(t, 16, usage[0].Used)
	assertHours(t, 4, usage[0].Remaining)
	assert.False(t, usage[0].Exceeded)

	records = append(records, week("2025-W12", true, 0))
	usage = calc.AbsenceBudgetUsage(records, 2025)
	assertHours(t, 24, usage[0].Used)
	assert.True(t, usage[0].Exceeded)
}
