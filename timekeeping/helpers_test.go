package timekeeping_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/warp/hours-engine/generic"
	"github.com/warp/hours-engine/timekeeping"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const empID generic.EmployeeID = "emp-1"

func h(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func hp(f float64) *decimal.Decimal {
	d := h(f)
	return &d
}

func date(year int, month time.Month, day int) generic.TimePoint {
	return generic.NewTimePoint(year, month, day)
}

func assertHours(t *testing.T, want float64, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !h(want).Equal(got) {
		assert.Fail(t, fmt.Sprintf("want %v hours, got %s", want, got), msgAndArgs...)
	}
}

func testRules() timekeeping.RuleTables {
	return timekeeping.NewRuleTables(
		[]timekeeping.AbsenceType{
			{Code: "VAC", Name: "Vacation", ComputesFullDay: true, ComputesToAnnualHours: true, IsVacation: true},
			{Code: "SICK", Name: "Sick leave", ComputesToWeeklyHours: true, ComputesToAnnualHours: true, AllowsPartialHours: true},
			{Code: "MED", Name: "Medical", ComputesToWeeklyHours: true, AllowsPartialHours: true, AnnualHourBudget: hp(20)},
			{Code: "SUSP", Name: "Unpaid leave", SuspendsContract: true},
			{Code: "COMP_HOL", Name: "Holiday compensation", ComputesToWeeklyHours: true, AllowsPartialHours: true, AffectedBag: timekeeping.BagHoliday},
			{Code: "COMP_LEAVE", Name: "Leave compensation", ComputesToWeeklyHours: true, AllowsPartialHours: true, AffectedBag: timekeeping.BagLeave},
			{Code: "REDUCED", Name: "Reduced schedule", DeductsTheoreticalHours: true, AllowsPartialHours: true},
		},
		[]timekeeping.ContractType{
			{Code: "FT", ComputesOrdinaryBag: true, ComputesHolidayBag: true, ComputesLeaveBag: true},
			{Code: "PT", ComputesOrdinaryBag: true, ComputesHolidayBag: false, ComputesLeaveBag: false},
		},
	)
}

func newCalculator() (*timekeeping.Calculator, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return timekeeping.NewCalculator(testRules(), log), hook
}

func fullWeekSchedule(from generic.TimePoint, perDay float64) timekeeping.ScheduleCalendar {
	sc := timekeeping.ScheduleCalendar{EffectiveFrom: from}
	for i := 0; i < 5; i++ {
		sc.Hours[i] = h(perDay)
	}
	return sc
}

// standardPeriod is a 40h full-time contract from start with an 8h Mon-Fri schedule.
func standardPeriod(start generic.TimePoint) timekeeping.EmploymentPeriod {
	return timekeeping.EmploymentPeriod{
		ID:           "p-1",
		EmployeeID:   empID,
		Start:        start,
		ContractType: "FT",
		WeeklyHours:  []timekeeping.WeeklyHoursChange{{EffectiveFrom: start, Hours: h(40)}},
		Schedules:    []timekeeping.ScheduleCalendar{fullWeekSchedule(start, 8)},
	}
}

func standardHistory() timekeeping.EmploymentHistory {
	return timekeeping.NewEmploymentHistory([]timekeeping.EmploymentPeriod{
		standardPeriod(date(2025, time.January, 1)),
	})
}

// workedWeek builds the seven days of week with the given worked hours,
// Monday first. Missing days are zero. Theoretical hours are 8h Mon-Fri.
func workedWeek(week generic.WeekID, worked ...float64) []timekeeping.DailyRecord {
	days := make([]timekeeping.DailyRecord, 7)
	for i, d := range week.Days() {
		days[i] = timekeeping.DailyRecord{Date: d, Absence: timekeeping.NoAbsence}
		if i < 5 {
			days[i].TheoreticalHours = h(8)
		}
		if i < len(worked) {
			days[i].WorkedHours = h(worked[i])
		}
	}
	return days
}

func weekRecord(week generic.WeekID, confirmed bool, worked ...float64) timekeeping.WeeklyRecord {
	return timekeeping.WeeklyRecord{
		EmployeeID: empID,
		Week:       week,
		Days:       workedWeek(week, worked...),
		Confirmed:  confirmed,
	}
}
