/*
ledger.go - Balance ledger walker

PURPOSE:
  The "current balance" is never stored. It is derived by replaying every
  confirmed week, in week order, through the weekly calculator, starting
  from the earliest employment period's initial balances. Each week's
  resulting balances become the next week's starting balances.

CRITICAL INVARIANTS:
  1. Only confirmed weeks move the ledger
  2. Weeks are folded in ascending ISO-week order
  3. No confirmed weeks: the earliest period's initial balances, unmodified

CORRECTIONS:
  Unlocking a confirmed week ("enable correction") does not re-derive its
  starting balance. It restores the PreviousBalances snapshot persisted at
  confirmation, because later weeks may already have been confirmed
  against the old result.

PERFORMANCE:
  A walk is O(confirmed weeks). Walk returns the whole fold as a Timeline
  so callers answering many as-of queries reuse it instead of re-walking.

SEE ALSO:
  - weekly.go: the per-week fold step
  - service.go: loads records from the stores and calls Walk
*/
package timekeeping

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/hours-engine/generic"
)

// =============================================================================
// TIMELINE - Memoized fold over confirmed weeks
// =============================================================================

// LedgerEntry is one folded week.
type LedgerEntry struct {
	Week     generic.WeekID `json:"week"`
	Starting Balances       `json:"starting"`
	Impact   WeeklyImpact   `json:"impact"`
}

// Timeline is the result of a walk, ascending by week.
type Timeline struct {
	Initial Balances      `json:"initial"`
	Entries []LedgerEntry `json:"entries"`
}

// Before returns the balances in effect at the start of week: the result of
// every confirmed week strictly before it.
func (t Timeline) Before(week generic.WeekID) Balances {
	i := sort.Search(len(t.Entries), func(i int) bool {
		return !t.Entries[i].Week.Before(week)
	})
	if i == 0 {
		return t.Initial
	}
	return t.Entries[i-1].Impact.Resulting
}

// Final returns the balances after every confirmed week.
func (t Timeline) Final() Balances {
	if len(t.Entries) == 0 {
		return t.Initial
	}
	return t.Entries[len(t.Entries)-1].Impact.Resulting
}

// FinalBalances is Final plus the sum of the three bags.
type FinalBalances struct {
	Balances
	Total decimal.Decimal `json:"total"`
}

func newFinalBalances(b Balances) FinalBalances {
	return FinalBalances{Balances: b, Total: b.Total()}
}

// =============================================================================
// WALK
// =============================================================================

// InitialBalances returns the earliest period's declared balances.
func InitialBalances(history EmploymentHistory) Balances {
	first, ok := history.Earliest()
	if !ok {
		return Balances{}
	}
	return first.InitialBalances
}

// ConfirmedWeeks filters and sorts the confirmed records. Input is not modified.
func ConfirmedWeeks(records []WeeklyRecord) []WeeklyRecord {
	var confirmed []WeeklyRecord
	for _, r := range records {
		if r.Confirmed {
			confirmed = append(confirmed, r)
		}
	}
	sort.SliceStable(confirmed, func(i, j int) bool {
		return confirmed[i].Week.Before(confirmed[j].Week)
	})
	return confirmed
}

// Walk folds the calculator over the confirmed records.
func (c *Calculator) Walk(history EmploymentHistory, records []WeeklyRecord) Timeline {
	tl := Timeline{Initial: InitialBalances(history)}
	current := tl.Initial
	for _, rec := range ConfirmedWeeks(records) {
		impact := c.ComputeWeek(rec, current, history)
		tl.Entries = append(tl.Entries, LedgerEntry{Week: rec.Week, Starting: current, Impact: impact})
		current = impact.Resulting
	}
	return tl
}

// BalancesAsOf replays confirmed weeks strictly before week.
func (c *Calculator) BalancesAsOf(history EmploymentHistory, records []WeeklyRecord, week generic.WeekID) Balances {
	var before []WeeklyRecord
	for _, r := range records {
		if r.Week.Before(week) {
			before = append(before, r)
		}
	}
	return c.Walk(history, before).Final()
}

// FinalBalances replays every confirmed week.
func (c *Calculator) FinalBalances(history EmploymentHistory, records []WeeklyRecord) FinalBalances {
	return newFinalBalances(c.Walk(history, records).Final())
}
