package generic

import "sort"

// =============================================================================
// EFFECTIVE-DATED HISTORY - "latest entry with effective date <= D"
// =============================================================================

// Dated is implemented by history entries (weekly hours, schedules).
type Dated interface {
	EffectiveDate() TimePoint
}

// SortByEffectiveDate sorts a history ascending. Stable, so entries sharing a
// date keep their insertion order and the later one wins lookups.
func SortByEffectiveDate[T Dated](history []T) {
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].EffectiveDate().Before(history[j].EffectiveDate())
	})
}

// EffectiveAt returns the latest entry effective on or before date.
// history must be sorted ascending by effective date.
func EffectiveAt[T Dated](history []T, date TimePoint) (T, bool) {
	// First index whose date is after the target.
	i := sort.Search(len(history), func(i int) bool {
		return history[i].EffectiveDate().After(date)
	})
	if i == 0 {
		var zero T
		return zero, false
	}
	return history[i-1], true
}

// ChangesWithin returns entries whose effective date falls in p.
func ChangesWithin[T Dated](history []T, p Period) []T {
	var out []T
	for _, h := range history {
		if p.Contains(h.EffectiveDate()) {
			out = append(out, h)
		}
	}
	return out
}
