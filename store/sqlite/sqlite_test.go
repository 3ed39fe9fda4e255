package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hours-engine/generic"
	"github.com/warp/hours-engine/timekeeping"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedEmployee(t *testing.T, store *Store) {
	t.Helper()
	err := store.SaveEmployee(context.Background(), timekeeping.Employee{ID: "emp-1", DisplayName: "Ana Ruiz"})
	require.NoError(t, err)
}

func openWeek(id generic.WeekID) timekeeping.WeeklyRecord {
	rec := timekeeping.WeeklyRecord{EmployeeID: "emp-1", Week: id, Comment: "entered"}
	for i, d := range id.Days() {
		day := timekeeping.DailyRecord{Date: d, Absence: timekeeping.NoAbsence}
		if i < 5 {
			day.TheoreticalHours = decimal.NewFromInt(8)
			day.WorkedHours = decimal.NewFromFloat(7.5)
		}
		rec.Days = append(rec.Days, day)
	}
	return rec
}

func TestNew_AppliesMigrations(t *testing.T) {
	store := newTestStore(t)

	version, dirty, err := store.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestRules_ReplaceAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	budget := decimal.NewFromInt(20)

	err := store.SaveRules(ctx,
		[]timekeeping.AbsenceType{
			{Code: "MED", Name: "Medical", ComputesToWeeklyHours: true, AnnualHourBudget: &budget},
			{Code: "COMP_HOL", AffectedBag: timekeeping.BagHoliday},
		},
		[]timekeeping.ContractType{{Code: "PT", ComputesOrdinaryBag: true}},
	)
	require.NoError(t, err)

	tables, err := store.LoadRules(ctx)
	require.NoError(t, err)

	med, ok := tables.Absence("MED")
	require.True(t, ok)
	require.NotNil(t, med.AnnualHourBudget)
	assert.True(t, budget.Equal(*med.AnnualHourBudget))
	assert.True(t, med.ComputesToWeeklyHours)

	comp, _ := tables.Absence("COMP_HOL")
	assert.Equal(t, timekeeping.BagHoliday, comp.AffectedBag)
	assert.Nil(t, comp.AnnualHourBudget)

	pt, mapped := tables.Contract("PT")
	require.True(t, mapped)
	assert.False(t, pt.ComputesLeaveBag)

	// Saving again replaces, not merges.
	require.NoError(t, store.SaveRules(ctx, nil, nil))
	tables, err = store.LoadRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables.Absences)
}

func TestEmployeesAndPeriods(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetEmployee(ctx, "emp-1")
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)

	start := generic.NewTimePoint(2025, time.January, 1)
	period := timekeeping.EmploymentPeriod{ID: "p-1", EmployeeID: "emp-1", Start: start, ContractType: "FT"}
	assert.ErrorIs(t, store.SavePeriod(ctx, period), generic.ErrEmployeeNotFound)

	seedEmployee(t, store)
	emp, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Ruiz", emp.DisplayName)

	// GIVEN: A period with nested histories
	period.WeeklyHours = []timekeeping.WeeklyHoursChange{{EffectiveFrom: start, Hours: decimal.NewFromInt(40)}}
	period.InitialBalances = timekeeping.Balances{Ordinary: decimal.NewFromFloat(-2.5)}
	require.NoError(t, store.SavePeriod(ctx, period))

	// WHEN: Updating it by ID
	end := generic.NewTimePoint(2025, time.December, 31)
	period.End = &end
	require.NoError(t, store.SavePeriod(ctx, period))

	// THEN: One period comes back with every field
	periods, err := store.ListPeriods(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, periods, 1)
	require.NotNil(t, periods[0].End)
	assert.Equal(t, "2025-12-31", periods[0].End.String())
	assert.True(t, periods[0].InitialBalances.Ordinary.Equal(decimal.NewFromFloat(-2.5)))
	require.Len(t, periods[0].WeeklyHours, 1)
}

func TestWeeks_ConfirmAndUnlock(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store)

	_, err := store.GetWeek(ctx, "emp-1", "2025-W10")
	assert.ErrorIs(t, err, generic.ErrWeekNotFound)

	// GIVEN: An open week with an override
	rec := openWeek("2025-W10")
	override := decimal.NewFromInt(35)
	rec.WeeklyHoursOverride = &override
	require.NoError(t, store.SaveWeek(ctx, rec))

	got, err := store.GetWeek(ctx, "emp-1", "2025-W10")
	require.NoError(t, err)
	require.Len(t, got.Days, 7)
	assert.True(t, got.Days[0].WorkedHours.Equal(decimal.NewFromFloat(7.5)))
	require.NotNil(t, got.WeeklyHoursOverride)
	assert.False(t, got.Confirmed)

	// WHEN: Confirming with snapshot and impact
	confirmedAt := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	previous := timekeeping.Balances{Ordinary: decimal.NewFromInt(3)}
	got.PreviousBalances = &previous
	got.Impact = &timekeeping.WeeklyImpact{OrdinaryDelta: decimal.NewFromFloat(2.5)}
	got.ConfirmedAt = &confirmedAt
	require.NoError(t, store.ConfirmWeek(ctx, got))

	confirmed, err := store.GetWeek(ctx, "emp-1", "2025-W10")
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed)
	require.NotNil(t, confirmed.Impact)
	assert.True(t, confirmed.Impact.OrdinaryDelta.Equal(decimal.NewFromFloat(2.5)))
	require.NotNil(t, confirmed.ConfirmedAt)
	assert.True(t, confirmed.ConfirmedAt.Equal(confirmedAt))

	// THEN: The confirmed week is frozen
	assert.ErrorIs(t, store.SaveWeek(ctx, rec), generic.ErrWeekConfirmed)
	assert.ErrorIs(t, store.ConfirmWeek(ctx, got), generic.ErrWeekConfirmed)

	// AND: Unlocking keeps the snapshot and drops the impact
	unlocked, err := store.UnlockWeek(ctx, "emp-1", "2025-W10")
	require.NoError(t, err)
	assert.False(t, unlocked.Confirmed)
	assert.Nil(t, unlocked.Impact)
	require.NotNil(t, unlocked.PreviousBalances)
	assert.True(t, unlocked.PreviousBalances.Ordinary.Equal(decimal.NewFromInt(3)))

	reloaded, err := store.GetWeek(ctx, "emp-1", "2025-W10")
	require.NoError(t, err)
	require.NotNil(t, reloaded.PreviousBalances)
	assert.Nil(t, reloaded.ConfirmedAt)

	_, err = store.UnlockWeek(ctx, "emp-1", "2025-W10")
	assert.ErrorIs(t, err, generic.ErrWeekNotConfirmed)
}

func TestWeeks_ListedInWeekOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store)

	for _, w := range []generic.WeekID{"2025-W12", "2024-W52", "2025-W01"} {
		require.NoError(t, store.SaveWeek(ctx, openWeek(w)))
	}

	weeks, err := store.ListWeeks(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, weeks, 3)
	assert.Equal(t, generic.WeekID("2024-W52"), weeks[0].Week)
	assert.Equal(t, generic.WeekID("2025-W12"), weeks[2].Week)
}

func TestUpdateAudit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store)

	assert.ErrorIs(t, store.UpdateAudit(ctx, "emp-1", "2025-W10", true, "x"), generic.ErrWeekNotFound)

	require.NoError(t, store.SaveWeek(ctx, openWeek("2025-W10")))
	require.NoError(t, store.UpdateAudit(ctx, "emp-1", "2025-W10", true, "entered\n[audit] diff"))

	got, err := store.GetWeek(ctx, "emp-1", "2025-W10")
	require.NoError(t, err)
	assert.True(t, got.HasDifference)
	assert.Equal(t, "entered\n[audit] diff", got.Comment)
}

func TestExpectedImpacts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.ExpectedImpact(ctx, "2024-W10", "Ana Ruiz")
	require.NoError(t, err)
	assert.False(t, ok)

	rows := []timekeeping.ExpectedImpact{
		{Week: "2024-W10", DisplayName: "Ana Ruiz", Ordinary: decimal.NewFromInt(-4)},
	}
	require.NoError(t, store.SaveExpected(ctx, rows))

	// Upsert by week and name.
	rows[0].Leave = decimal.NewFromFloat(1.25)
	require.NoError(t, store.SaveExpected(ctx, rows))

	row, ok, err := store.ExpectedImpact(ctx, "2024-W10", "Ana Ruiz")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, row.Ordinary.Equal(decimal.NewFromInt(-4)))
	assert.True(t, row.Leave.Equal(decimal.NewFromFloat(1.25)))
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store)
	require.NoError(t, store.SaveWeek(ctx, openWeek("2025-W10")))

	require.NoError(t, store.Reset(ctx))

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, employees)
	weeks, err := store.ListWeeks(ctx, "emp-1")
	require.NoError(t, err)
	assert.Empty(t, weeks)
}
