package timekeeping_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hours-engine/generic"
	"github.com/warp/hours-engine/timekeeping"
)

const w10 generic.WeekID = "2025-W10" // Mon 2025-03-03 - Sun 2025-03-09

func compute(t *testing.T, days []timekeeping.DailyRecord) timekeeping.WeeklyImpact {
	t.Helper()
	calc, _ := newCalculator()
	return calc.ComputeWeeklyImpact(timekeeping.WeeklyInput{
		EmployeeID: empID,
		Days:       days,
		History:    standardHistory(),
	})
}

// =============================================================================
// WEEKLY TOTAL VS TARGET
// =============================================================================

func TestWeeklyImpact_FullWeekBalancesToZero(t *testing.T) {
	// GIVEN: 8h worked Monday to Friday on a 40h contract
	// WHEN: Computing the week
	impact := compute(t, workedWeek(w10, 8, 8, 8, 8, 8))

	// THEN: No bag moves
	assertHours(t, 0, impact.OrdinaryDelta)
	assertHours(t, 0, impact.HolidayDelta)
	assertHours(t, 0, impact.LeaveDelta)
	assertHours(t, 40, impact.WeeklyTotal)
	assertHours(t, 40, impact.WeeklyTarget)
}

func TestWeeklyImpact_ShortWeekDebitsOrdinary(t *testing.T) {
	impact := compute(t, workedWeek(w10, 8, 8, 8, 8, 0))
	assertHours(t, -8, impact.OrdinaryDelta)
	assertHours(t, -8, impact.Resulting.Ordinary)
}

func TestWeeklyImpact_SundayExcludedFromTotal(t *testing.T) {
	// GIVEN: A full week plus 5h on a regular Sunday
	impact := compute(t, workedWeek(w10, 8, 8, 8, 8, 8, 0, 5))

	// THEN: Sunday adds nothing
	assertHours(t, 0, impact.OrdinaryDelta)
	assertHours(t, 40, impact.WeeklyTotal)
}

func TestWeeklyImpact_WorkedSundayHolidayCreditsHolidayBag(t *testing.T) {
	days := workedWeek(w10, 8, 8, 8, 8, 8, 0, 5)
	days[6].IsHoliday = true
	days[6].HolidayCategory = generic.HolidayOrdinary

	impact := compute(t, days)
	assertHours(t, 0, impact.OrdinaryDelta)
	assertHours(t, 5, impact.HolidayDelta)

	days[6].DoublePay = true
	impact = compute(t, days)
	assertHours(t, 0, impact.HolidayDelta, "double pay settles the hours")
}

func TestWeeklyImpact_OverrideAndComplementaryHours(t *testing.T) {
	calc, _ := newCalculator()

	// GIVEN: 44h worked with 4h paid out as complementary hours
	impact := calc.ComputeWeeklyImpact(timekeeping.WeeklyInput{
		EmployeeID:         empID,
		Days:               workedWeek(w10, 9, 9, 9, 9, 8),
		History:            standardHistory(),
		ComplementaryHours: h(4),
	})
	assertHours(t, 0, impact.OrdinaryDelta)

	// GIVEN: A 35h override on a 40h contract
	impact = calc.ComputeWeeklyImpact(timekeeping.WeeklyInput{
		EmployeeID:          empID,
		Days:                workedWeek(w10, 8, 8, 8, 8, 8),
		History:             standardHistory(),
		WeeklyHoursOverride: hp(35),
	})
	assertHours(t, 5, impact.OrdinaryDelta)
	assertHours(t, 35, impact.WeeklyTarget)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func openingMonday(doublePay bool) []timekeeping.DailyRecord {
	days := workedWeek(w10, 8, 8, 8, 8, 8)
	days[0].IsHoliday = true
	days[0].HolidayCategory = generic.HolidayOpening
	days[0].DoublePay = doublePay
	return days
}

func TestWeeklyImpact_OpeningHoliday(t *testing.T) {
	tests := []struct {
		name      string
		worked    float64
		doublePay bool
		absence   timekeeping.AbsenceCode
		ordinary  float64
		holiday   float64
		total     float64
	}{
		// Theoretical 8h count toward the week, worked 8h credit the holiday bag
		{"worked", 8, false, "", 0, 8, 40},
		{"worked with double pay", 8, true, "", 0, 0, 40},
		// Nothing worked: an ordinary day, the missing 8h debit the ordinary bag
		{"not worked", 0, false, "", -8, 0, 32},
		{"not worked with double pay", 0, true, "", -8, 0, 32},
		{"absence uses the regular branch", 0, false, "VAC", 0, 0, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN: Monday is an opening holiday with 8 theoretical hours
			days := openingMonday(tt.doublePay)
			days[0].WorkedHours = h(tt.worked)
			if tt.absence != "" {
				days[0].Absence = tt.absence
				days[0].AbsenceHours = h(8)
			}

			// WHEN: Computing the week
			impact := compute(t, days)

			// THEN
			assertHours(t, tt.ordinary, impact.OrdinaryDelta)
			assertHours(t, tt.holiday, impact.HolidayDelta)
			assertHours(t, tt.total, impact.WeeklyTotal)
		})
	}
}

func TestWeeklyImpact_HolidayLeaveHours(t *testing.T) {
	days := workedWeek(w10, 0, 8, 8, 8, 8)
	days[0].IsHoliday = true
	days[0].HolidayCategory = generic.HolidayOrdinary
	days[0].TheoreticalHours = h(0)
	days[0].LeaveHours = h(4)

	calc, _ := newCalculator()
	impact := calc.ComputeWeeklyImpact(timekeeping.WeeklyInput{
		EmployeeID:          empID,
		Days:                days,
		History:             standardHistory(),
		WeeklyHoursOverride: hp(32),
	})
	assertHours(t, 4, impact.LeaveDelta)
	assertHours(t, 0, impact.OrdinaryDelta)
}

// =============================================================================
// ABSENCES
// =============================================================================

func TestWeeklyImpact_Absences(t *testing.T) {
	tests := []struct {
		name     string
		weekday  int
		absence  timekeeping.AbsenceCode
		ordinary float64
		holiday  float64
		leave    float64
	}{
		{"full-day vacation counts toward week", 4, "VAC", 0, 0, 0},
		{"sick leave counts toward week", 4, "SICK", 0, 0, 0},
		{"holiday compensation debits holiday bag", 4, "COMP_HOL", 0, -8, 0},
		{"leave compensation debits leave bag", 4, "COMP_LEAVE", 0, 0, -8},
		{"suspension does not count", 4, "SUSP", -8, 0, 0},
		{"unmapped absence is ignored", 4, "XYZ", -8, 0, 0},
		// Sunday is out of the weekly total but still debits bags directly
		{"sunday vacation adds nothing to the week", 6, "VAC", -8, 0, 0},
		{"sunday holiday compensation still debits", 6, "COMP_HOL", -8, -8, 0},
		{"sunday leave compensation still debits", 6, "COMP_LEAVE", -8, 0, -8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Friday is never worked; the absence lands on tt.weekday
			days := workedWeek(w10, 8, 8, 8, 8, 0)
			days[tt.weekday].Absence = tt.absence
			days[tt.weekday].AbsenceHours = h(8)

			impact := compute(t, days)
			assertHours(t, tt.ordinary, impact.OrdinaryDelta)
			assertHours(t, tt.holiday, impact.HolidayDelta)
			assertHours(t, tt.leave, impact.LeaveDelta)
		})
	}
}

func TestWeeklyImpact_UnmappedAbsenceIsLogged(t *testing.T) {
	calc, hook := newCalculator()
	days := workedWeek(w10, 8, 8, 8, 8, 0)
	days[4].Absence = "XYZ"
	days[4].AbsenceHours = h(8)

	calc.ComputeWeeklyImpact(timekeeping.WeeklyInput{EmployeeID: empID, Days: days, History: standardHistory()})

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, timekeeping.AbsenceCode("XYZ"), hook.LastEntry().Data["absence"])
}

// =============================================================================
// CONTRACTS
// =============================================================================

func historyWithContract(code timekeeping.ContractCode) timekeeping.EmploymentHistory {
	p := standardPeriod(date(2025, time.January, 1))
	p.ContractType = code
	return timekeeping.NewEmploymentHistory([]timekeeping.EmploymentPeriod{p})
}

func TestWeeklyImpact_ContractGatesBags(t *testing.T) {
	calc, _ := newCalculator()

	// GIVEN: A part-time contract without the holiday bag
	impact := calc.ComputeWeeklyImpact(timekeeping.WeeklyInput{
		EmployeeID: empID,
		Days:       openingMonday(false),
		History:    historyWithContract("PT"),
	})
	assertHours(t, 0, impact.HolidayDelta)
	assertHours(t, 0, impact.OrdinaryDelta)
}

func TestWeeklyImpact_UnmappedContractComputesAllBags(t *testing.T) {
	calc, hook := newCalculator()

	impact := calc.ComputeWeeklyImpact(timekeeping.WeeklyInput{
		EmployeeID: empID,
		Days:       openingMonday(false),
		History:    historyWithContract("GHOST"),
	})
	assertHours(t, 8, impact.HolidayDelta)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["contract_type"] == timekeeping.ContractCode("GHOST") {
			warned = true
		}
	}
	assert.True(t, warned, "unmapped contract should be logged")
}

func TestWeeklyImpact_NoActivePeriodIsNeutral(t *testing.T) {
	calc, _ := newCalculator()
	starting := timekeeping.Balances{Ordinary: h(3), Holiday: h(1), Leave: h(2)}

	impact := calc.ComputeWeeklyImpact(timekeeping.WeeklyInput{
		EmployeeID: empID,
		Days:       workedWeek("2024-W10", 8, 8, 8, 8, 8),
		Starting:   starting,
		History:    standardHistory(),
	})

	assert.True(t, impact.NoActivePeriod)
	assert.True(t, impact.Deltas().Equal(timekeeping.Balances{}))
	assert.True(t, impact.Resulting.Equal(starting))
}

// =============================================================================
// ROUNDING AND PURITY
// =============================================================================

func TestWeeklyImpact_RoundsOnceToQuarterHour(t *testing.T) {
	// 5 x 8.13 = 40.65, +0.65 rounds to +0.75
	impact := compute(t, workedWeek(w10, 8.13, 8.13, 8.13, 8.13, 8.13))
	assertHours(t, 0.75, impact.OrdinaryDelta)

	// 5 x 7.9 = 39.5, -0.5 stays -0.5
	impact = compute(t, workedWeek(w10, 7.9, 7.9, 7.9, 7.9, 7.9))
	assertHours(t, -0.5, impact.OrdinaryDelta)
}

func TestWalk_BalancesStayOnQuarterHours(t *testing.T) {
	// GIVEN: Initial balances off the quarter grid and odd weekly hours
	p := standardPeriod(date(2025, time.January, 1))
	p.InitialBalances = timekeeping.Balances{Ordinary: h(1.1), Holiday: h(0.3), Leave: h(-0.6)}
	history := timekeeping.NewEmploymentHistory([]timekeeping.EmploymentPeriod{p})

	records := []timekeeping.WeeklyRecord{
		weekRecord("2025-W10", true, 8.13, 8.13, 8.13, 8.13, 8.13),
		weekRecord("2025-W11", true, 7.9, 7.9, 7.9, 7.9, 7.9),
		weekRecord("2025-W12", true, 8.07, 7.31, 9.02, 8, 6.66),
	}
	sunday := &records[2].Days[6]
	sunday.IsHoliday = true
	sunday.HolidayCategory = generic.HolidayOrdinary
	sunday.WorkedHours = h(2.2)
	sunday.LeaveHours = h(1.35)

	// WHEN: Walking the ledger
	calc, _ := newCalculator()
	tl := calc.Walk(history, records)

	// THEN: Every resulting balance is a multiple of 0.25
	require.Len(t, tl.Entries, 3)
	for _, e := range tl.Entries {
		for _, v := range []decimal.Decimal{e.Impact.Resulting.Ordinary, e.Impact.Resulting.Holiday, e.Impact.Resulting.Leave} {
			assert.True(t, generic.IsQuarterMultiple(v), "week %s: %s is not a quarter hour", e.Week, v)
		}
	}
}

func TestWeeklyImpact_DeterministicAndInputUntouched(t *testing.T) {
	days := workedWeek(w10, 8, 7, 9, 8, 6)
	// Reverse so the calculator has to sort.
	for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
		days[i], days[j] = days[j], days[i]
	}
	snapshot := make([]timekeeping.DailyRecord, len(days))
	copy(snapshot, days)

	first := compute(t, days)
	second := compute(t, days)

	assert.True(t, first.Resulting.Equal(second.Resulting))
	assertHours(t, -2, first.OrdinaryDelta)
	assert.Equal(t, snapshot, days, "input days must not be reordered")
}

func TestWeeklyImpact_EmptyWeekKeepsStartingBalances(t *testing.T) {
	calc, _ := newCalculator()
	starting := timekeeping.Balances{Ordinary: h(-4)}
	impact := calc.ComputeWeeklyImpact(timekeeping.WeeklyInput{EmployeeID: empID, Starting: starting, History: standardHistory()})
	assert.True(t, impact.Resulting.Equal(starting))
}
