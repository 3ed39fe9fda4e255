package generic

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// =============================================================================
// WEEK ID - ISO-8601 week identifier "YYYY-Www"
// =============================================================================

// WeekID keys weekly records. The zero-padded form sorts lexically in
// chronological order, but Compare goes through Start to stay exact.
type WeekID string

// NewWeekID formats an ISO year and week number.
func NewWeekID(isoYear, isoWeek int) WeekID {
	return WeekID(fmt.Sprintf("%04d-W%02d", isoYear, isoWeek))
}

// WeekOf returns the ISO week containing tp.
func WeekOf(tp TimePoint) WeekID {
	y, w := tp.Time.ISOWeek()
	return NewWeekID(y, w)
}

// ParseWeekID validates an identifier of the form YYYY-Www.
func ParseWeekID(s string) (WeekID, error) {
	if len(s) != 8 || s[4] != '-' || s[5] != 'W' {
		return "", &InvalidWeekIDError{Value: s}
	}
	year, yerr := strconv.Atoi(s[:4])
	week, werr := strconv.Atoi(s[6:])
	if yerr != nil || werr != nil || week < 1 || week > isoWeeksInYear(year) {
		return "", &InvalidWeekIDError{Value: s}
	}
	return NewWeekID(year, week), nil
}

func isoWeeksInYear(year int) int {
	// Dec 28 always falls in the last ISO week of its year.
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

func (w WeekID) parts() (int, int) {
	if len(w) != 8 {
		return 0, 0
	}
	year, _ := strconv.Atoi(string(w[:4]))
	week, _ := strconv.Atoi(string(w[6:]))
	return year, week
}

// Start returns the Monday of the week.
func (w WeekID) Start() TimePoint {
	year, week := w.parts()
	// Jan 4 is always in ISO week 1.
	jan4 := NewTimePoint(year, time.January, 4)
	monday := jan4.AddDays(-jan4.WeekdayIndex())
	return monday.AddDays((week - 1) * 7)
}

// End returns the Sunday of the week.
func (w WeekID) End() TimePoint { return w.Start().AddDays(6) }

// Days returns Monday through Sunday.
func (w WeekID) Days() []TimePoint {
	start := w.Start()
	days := make([]TimePoint, 7)
	for i := range days {
		days[i] = start.AddDays(i)
	}
	return days
}

func (w WeekID) Next() WeekID     { return WeekOf(w.Start().AddDays(7)) }
func (w WeekID) Previous() WeekID { return WeekOf(w.Start().AddDays(-7)) }

// Compare returns -1, 0 or 1.
func (w WeekID) Compare(other WeekID) int {
	a, b := w.Start(), other.Start()
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func (w WeekID) Before(other WeekID) bool { return w.Compare(other) < 0 }

func (w WeekID) String() string { return string(w) }

// SortWeekIDs sorts ascending in place.
func SortWeekIDs(weeks []WeekID) {
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
}
