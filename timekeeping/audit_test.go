package timekeeping_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hours-engine/generic"
	"github.com/warp/hours-engine/timekeeping"
)

// =============================================================================
// COMPARISON
// =============================================================================

func TestCompareImpacts_WithinTolerance(t *testing.T) {
	computed := timekeeping.Balances{Ordinary: h(-4)}
	expected := timekeeping.Balances{Ordinary: h(-4.005)}

	res := timekeeping.CompareImpacts(computed, expected, "entered late")

	assert.False(t, res.HasDifference)
	assert.Empty(t, res.Lines)
	assert.Equal(t, "entered late", res.Comment)
}

func TestCompareImpacts_AppendsDiagnosticLines(t *testing.T) {
	computed := timekeeping.Balances{Ordinary: h(-4), Leave: h(2)}
	expected := timekeeping.Balances{}

	res := timekeeping.CompareImpacts(computed, expected, "entered late")

	require.True(t, res.HasDifference)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, "[audit] ordinary bag: expected 0.00, computed -4.00 (diff -4.00)", res.Lines[0])
	assert.True(t, strings.HasPrefix(res.Comment, "entered late\n[audit] ordinary bag"))
}

func TestCompareImpacts_Idempotent(t *testing.T) {
	computed := timekeeping.Balances{Ordinary: h(-4)}
	expected := timekeeping.Balances{}

	first := timekeeping.CompareImpacts(computed, expected, "note")
	second := timekeeping.CompareImpacts(computed, expected, first.Comment)

	assert.Equal(t, first.Comment, second.Comment)
	assert.Equal(t, 1, strings.Count(second.Comment, "[audit]"))
}

func TestCompareImpacts_CleanWeekDropsOldLines(t *testing.T) {
	stale := "note\n[audit] ordinary bag: expected 0.00, computed -4.00 (diff -4.00)"

	res := timekeeping.CompareImpacts(timekeeping.Balances{}, timekeeping.Balances{}, stale)

	assert.False(t, res.HasDifference)
	assert.Equal(t, "note", res.Comment)
}

// =============================================================================
// RECONCILE WEEK
// =============================================================================

func TestReconcileWeek(t *testing.T) {
	calc, _ := newCalculator()
	history := standardHistory()
	rec := weekRecord("2025-W10", true, 8, 8, 8, 8, 4) // computes ordinary -4
	rec.Comment = "note"

	cutoff := date(2025, time.June, 1)

	t.Run("matching row", func(t *testing.T) {
		expected := &timekeeping.ExpectedImpact{Week: rec.Week, DisplayName: "Ana", Ordinary: h(-4)}
		res := calc.ReconcileWeek(rec, history, expected, cutoff)
		assert.False(t, res.Skipped)
		assert.False(t, res.HasDifference)
		assert.Equal(t, "note", res.Comment)
	})

	t.Run("differing row", func(t *testing.T) {
		expected := &timekeeping.ExpectedImpact{Week: rec.Week, DisplayName: "Ana"}
		res := calc.ReconcileWeek(rec, history, expected, cutoff)
		assert.True(t, res.HasDifference)
		assert.Contains(t, res.Comment, "computed -4.00")
	})

	t.Run("starting balance does not matter", func(t *testing.T) {
		withHistory := historyWithInitial(timekeeping.Balances{Ordinary: h(100)})
		expected := &timekeeping.ExpectedImpact{Week: rec.Week, DisplayName: "Ana", Ordinary: h(-4)}
		res := calc.ReconcileWeek(rec, withHistory, expected, cutoff)
		assert.False(t, res.HasDifference)
	})

	t.Run("no expected row", func(t *testing.T) {
		res := calc.ReconcileWeek(rec, history, nil, cutoff)
		assert.True(t, res.Skipped)
		assert.Equal(t, rec.Comment, res.Comment)
	})

	t.Run("week after cutoff", func(t *testing.T) {
		expected := &timekeeping.ExpectedImpact{Week: rec.Week, DisplayName: "Ana"}
		res := calc.ReconcileWeek(rec, history, expected, date(2025, time.March, 3))
		assert.True(t, res.Skipped, "a week starting on the cutoff is not audited")
	})
}

// =============================================================================
// LEGACY CSV
// =============================================================================

func TestParseExpectedCSV(t *testing.T) {
	input := `week,employee,ordinary,holiday,leave
2024-W10,Carla Diaz,0,,
2024-W11, Carla Diaz ,-4,1.5,0.25
`
	rows, err := timekeeping.ParseExpectedCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, generic.WeekID("2024-W10"), rows[0].Week)
	assert.True(t, rows[0].Holiday.IsZero())
	assert.Equal(t, "Carla Diaz", rows[1].DisplayName)
	assertHours(t, -4, rows[1].Ordinary)
	assertHours(t, 1.5, rows[1].Holiday)
	assertHours(t, 0.25, rows[1].Leave)
}

func TestParseExpectedCSV_HeaderOptional(t *testing.T) {
	rows, err := timekeeping.ParseExpectedCSV(strings.NewReader("2024-W10,Carla Diaz,1,2,3\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assertHours(t, 3, rows[0].Leave)
}

func TestParseExpectedCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		is    error
	}{
		{"bad week", "2024-W99,Carla,0,0,0\n", generic.ErrInvalidWeekID},
		{"bad number", "2024-W10,Carla,abc,0,0\n", generic.ErrInvalidNumeric},
		{"missing employee", "2024-W10,,0,0,0\n", nil},
		{"wrong field count", "2024-W10,Carla,0,0\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := timekeeping.ParseExpectedCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}
