/*
Package generic provides the domain-agnostic primitives of the hours engine.

PURPOSE:
  This package contains the value types every calculator builds on: hour
  quantities with quarter-hour rounding, day-granular time points, ISO week
  identifiers, periods and effective-dated histories. It knows nothing about
  bags, contracts or absences; that lives in the timekeeping package.

KEY CONCEPTS IN THIS FILE (types.go):
  - Hours helpers: decimal.Decimal constructors and quarter-hour rounding
  - Identifiers: type-safe employee and period IDs

DESIGN PRINCIPLES:
  1. Precision: hours are decimal.Decimal, never float64, inside the engine
  2. Rounding once: callers round a fully accumulated value, not partial sums
  3. Type Safety: distinct ID types prevent mixing employees and periods

USAGE:
  worked := generic.Hours(7.5)
  delta := generic.RoundQuarter(worked.Sub(generic.Hours(7.4)))  // 0.00

SEE ALSO:
  - time.go: TimePoint, WeekID, holiday calendar
  - history.go: "effective as of date" lookups
  - errors.go: sentinel and structured errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// HOURS - decimal quantities in hours
// =============================================================================

var (
	quarter  = decimal.NewFromInt(4)
	hundred  = decimal.NewFromInt(100)
	zeroHour = decimal.Zero
)

// Hours builds an hour quantity from a float literal.
func Hours(h float64) decimal.Decimal { return decimal.NewFromFloat(h) }

// HoursFromInt builds an hour quantity from an integer.
func HoursFromInt(h int) decimal.Decimal { return decimal.NewFromInt(int64(h)) }

// RoundQuarter rounds to the nearest quarter hour. Halves round away from zero.
func RoundQuarter(h decimal.Decimal) decimal.Decimal {
	return h.Mul(quarter).Round(0).Div(quarter)
}

// RoundCents rounds to two decimals, the display precision of reports.
func RoundCents(h decimal.Decimal) decimal.Decimal {
	return h.Mul(hundred).Round(0).Div(hundred)
}

// IsQuarterMultiple reports whether h is an exact multiple of 0.25.
func IsQuarterMultiple(h decimal.Decimal) bool {
	return h.Mul(quarter).Equal(h.Mul(quarter).Truncate(0))
}

// SumHours adds all values.
func SumHours(values ...decimal.Decimal) decimal.Decimal {
	total := zeroHour
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type PeriodID string
