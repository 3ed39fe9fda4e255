package generic

// =============================================================================
// PERIOD - Closed calendar range [Start, End]
// =============================================================================

// Period is an inclusive range of calendar days.
//
// Examples:
//   - Calendar year 2025: Jan 1 - Dec 31
//   - A leave of absence: Mar 3 - Apr 13
//   - One ISO week: Monday - Sunday
type Period struct {
	Start TimePoint
	End   TimePoint
}

// YearPeriod returns Jan 1 - Dec 31 of year.
func YearPeriod(year int) Period {
	return Period{Start: StartOfYear(year), End: EndOfYear(year)}
}

// Validate rejects periods ending before they start.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Len returns the number of calendar days in the period, 0 when empty.
func (p Period) Len() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// Intersect returns the overlap of two periods. ok is false if they are disjoint.
func (p Period) Intersect(other Period) (overlap Period, ok bool) {
	overlap = p
	if other.Start.After(overlap.Start) {
		overlap.Start = other.Start
	}
	if other.End.Before(overlap.End) {
		overlap.End = other.End
	}
	if overlap.End.Before(overlap.Start) {
		return Period{}, false
	}
	return overlap, true
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// OpenPeriod builds a period whose end may be unset (still running).
// A nil end is clamped to "until".
func OpenPeriod(start TimePoint, end *TimePoint, until TimePoint) Period {
	if end == nil {
		return Period{Start: start, End: until}
	}
	return Period{Start: start, End: *end}
}
