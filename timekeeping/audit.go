/*
audit.go - Reconciliation against the legacy spreadsheet dataset

PURPOSE:
  One-time check of imported historical weeks. The week's impact is
  recomputed from zero balances (an impact does not depend on the starting
  balance) and compared bag by bag with the expected impact from the legacy
  import. Differences above AuditTolerance become diagnostic lines in the
  week's comment; a clean week has earlier diagnostic lines removed.

  Only weeks starting before the audit cut-off are checked. Later weeks and
  weeks with no legacy row are left untouched.

IDEMPOTENCE:
  Diagnostic lines carry auditLinePrefix and are always stripped before new
  ones are appended, so re-running on unchanged data yields the same comment.
*/
package timekeeping

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/hours-engine/generic"
)

// AuditTolerance is the largest accepted difference per bag, in hours.
var AuditTolerance = decimal.NewFromFloat(0.01)

const auditLinePrefix = "[audit] "

// ExpectedImpact is one row of the legacy dataset.
type ExpectedImpact struct {
	Week        generic.WeekID  `json:"week"`
	DisplayName string          `json:"display_name"`
	Ordinary    decimal.Decimal `json:"ordinary"`
	Holiday     decimal.Decimal `json:"holiday"`
	Leave       decimal.Decimal `json:"leave"`
}

func (e ExpectedImpact) Deltas() Balances {
	return Balances{Ordinary: e.Ordinary, Holiday: e.Holiday, Leave: e.Leave}
}

// AuditResult is the annotation to store on the weekly record.
type AuditResult struct {
	HasDifference bool     `json:"has_difference"`
	Comment       string   `json:"comment"`
	Lines         []string `json:"lines"`
	Skipped       bool     `json:"skipped"`
	SkipReason    string   `json:"skip_reason,omitempty"`
}

// CompareImpacts builds the diagnostic lines for computed vs expected deltas
// and merges them into comment.
func CompareImpacts(computed, expected Balances, comment string) AuditResult {
	lines := []string{}
	for _, bag := range []Bag{BagOrdinary, BagHoliday, BagLeave} {
		got, want := computed.Get(bag), expected.Get(bag)
		if got.Sub(want).Abs().GreaterThan(AuditTolerance) {
			lines = append(lines, fmt.Sprintf("%s%s bag: expected %s, computed %s (diff %s)",
				auditLinePrefix, bag, want.StringFixed(2), got.StringFixed(2), got.Sub(want).StringFixed(2)))
		}
	}
	return AuditResult{
		HasDifference: len(lines) > 0,
		Comment:       mergeAuditLines(comment, lines),
		Lines:         lines,
	}
}

// mergeAuditLines drops previous diagnostic lines and appends the new ones.
func mergeAuditLines(comment string, lines []string) string {
	var kept []string
	for _, l := range strings.Split(comment, "\n") {
		if strings.HasPrefix(l, auditLinePrefix) {
			continue
		}
		kept = append(kept, l)
	}
	base := strings.TrimRight(strings.Join(kept, "\n"), "\n")
	if len(lines) == 0 {
		return base
	}
	if base == "" {
		return strings.Join(lines, "\n")
	}
	return base + "\n" + strings.Join(lines, "\n")
}

// ReconcileWeek checks rec against expected. expected may be nil when the
// legacy dataset has no row for the week.
func (c *Calculator) ReconcileWeek(rec WeeklyRecord, history EmploymentHistory, expected *ExpectedImpact, cutoff generic.TimePoint) AuditResult {
	unchanged := AuditResult{HasDifference: rec.HasDifference, Comment: rec.Comment, Lines: []string{}, Skipped: true}
	if !cutoff.IsZero() && !rec.Week.Start().Before(cutoff) {
		unchanged.SkipReason = "week is on or after the audit cut-off"
		return unchanged
	}
	if expected == nil {
		unchanged.SkipReason = "no expected impact for week"
		return unchanged
	}
	impact := c.ComputeWeek(rec, Balances{}, history)
	return CompareImpacts(impact.Deltas(), expected.Deltas(), rec.Comment)
}

// =============================================================================
// LEGACY DATASET IMPORT
// =============================================================================

var expectedCSVHeader = []string{"week", "employee", "ordinary", "holiday", "leave"}

// ParseExpectedCSV reads week,employee,ordinary,holiday,leave rows. A header
// row is optional. Blank lines are skipped by the CSV reader.
func ParseExpectedCSV(r io.Reader) ([]ExpectedImpact, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(expectedCSVHeader)
	reader.TrimLeadingSpace = true

	var rows []ExpectedImpact
	for line := 1; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("expected impacts csv: %w", err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), expectedCSVHeader[0]) {
			continue
		}
		row, err := parseExpectedRow(rec)
		if err != nil {
			return nil, fmt.Errorf("expected impacts csv line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseExpectedRow(rec []string) (ExpectedImpact, error) {
	week, err := generic.ParseWeekID(strings.TrimSpace(rec[0]))
	if err != nil {
		return ExpectedImpact{}, err
	}
	row := ExpectedImpact{Week: week, DisplayName: strings.TrimSpace(rec[1])}
	if row.DisplayName == "" {
		return ExpectedImpact{}, fmt.Errorf("employee is required")
	}
	for i, out := range []*decimal.Decimal{&row.Ordinary, &row.Holiday, &row.Leave} {
		raw := strings.TrimSpace(rec[i+2])
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return ExpectedImpact{}, &InvalidNumericError{Field: expectedCSVHeader[i+2], Value: raw}
		}
		*out = v
	}
	return row, nil
}
