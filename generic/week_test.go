package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hours-engine/generic"
)

// =============================================================================
// WEEK IDENTIFIERS
// =============================================================================

func TestParseWeekID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"regular week", "2025-W10", true},
		{"first week", "2025-W01", true},
		{"week 53 in a long year", "2026-W53", true},
		{"week 53 in a short year", "2025-W53", false},
		{"week zero", "2025-W00", false},
		{"missing W", "2025-10", false},
		{"unpadded", "2025-W1", false},
		{"lowercase", "2025-w10", false},
		{"garbage", "last week", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := generic.ParseWeekID(tt.input)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, generic.WeekID(tt.input), w)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, generic.ErrInvalidWeekID)
			assert.True(t, generic.IsClientError(err))
		})
	}
}

func TestWeekID_StartAndEnd(t *testing.T) {
	// GIVEN: ISO week 1 of 2025, which begins in December 2024
	w := generic.WeekID("2025-W01")

	// THEN: Monday and Sunday bracket the week
	assert.Equal(t, "2024-12-30", w.Start().String())
	assert.Equal(t, "2025-01-05", w.End().String())

	days := w.Days()
	require.Len(t, days, 7)
	assert.Equal(t, time.Monday, days[0].Weekday())
	assert.True(t, days[6].IsSunday())
}

func TestWeekOf_YearBoundaries(t *testing.T) {
	assert.Equal(t, generic.WeekID("2025-W01"), generic.WeekOf(generic.NewTimePoint(2024, time.December, 31)))
	assert.Equal(t, generic.WeekID("2026-W53"), generic.WeekOf(generic.NewTimePoint(2027, time.January, 3)))
	assert.Equal(t, generic.WeekID("2027-W01"), generic.WeekOf(generic.NewTimePoint(2027, time.January, 4)))
}

func TestWeekID_NextAndPreviousCrossLongYear(t *testing.T) {
	// GIVEN: The last week of a 53-week year
	last := generic.WeekID("2026-W53")

	// THEN: Stepping moves across the year boundary without skipping
	assert.Equal(t, generic.WeekID("2027-W01"), last.Next())
	assert.Equal(t, last, generic.WeekID("2027-W01").Previous())
	assert.Equal(t, generic.WeekID("2026-W52"), last.Previous())
}

func TestSortWeekIDs(t *testing.T) {
	weeks := []generic.WeekID{"2026-W02", "2025-W52", "2026-W01", "2025-W03"}
	generic.SortWeekIDs(weeks)
	assert.Equal(t, []generic.WeekID{"2025-W03", "2025-W52", "2026-W01", "2026-W02"}, weeks)
	assert.True(t, generic.WeekID("2025-W52").Before("2026-W01"))
	assert.Equal(t, 0, generic.WeekID("2025-W10").Compare("2025-W10"))
}
