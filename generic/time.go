package generic

import (
	"fmt"
	"sort"
	"time"
)

// =============================================================================
// TIME POINT - Calendar day abstraction (all bookkeeping is per day)
// =============================================================================

type TimePoint struct {
	Time time.Time
}

const dateLayout = "2006-01-02"

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func FromTime(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return TimePoint{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint  { return FromTime(tp.normalize().AddDate(0, 0, n)) }
func (tp TimePoint) AddYears(n int) TimePoint { return FromTime(tp.normalize().AddDate(n, 0, 0)) }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsSunday() bool        { return tp.Weekday() == time.Sunday }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

// WeekdayIndex returns 0 for Monday through 6 for Sunday.
func (tp TimePoint) WeekdayIndex() int {
	return (int(tp.Weekday()) + 6) % 7
}

func (tp TimePoint) String() string {
	return tp.Time.Format(dateLayout)
}

// MarshalText keeps dates as YYYY-MM-DD in JSON and TOML.
func (tp TimePoint) MarshalText() ([]byte, error) {
	return []byte(tp.String()), nil
}

func (tp *TimePoint) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

// SortTimePoints sorts ascending in place.
func SortTimePoints(points []TimePoint) {
	sort.Slice(points, func(i, j int) bool { return points[i].Before(points[j]) })
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween returns the number of calendar days from "from" to "to" (exclusive of "to").
func DaysBetween(from, to TimePoint) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

func StartOfYear(year int) TimePoint { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint   { return NewTimePoint(year, time.December, 31) }

// DaysInYear returns 365 or 366.
func DaysInYear(year int) int {
	return DaysBetween(StartOfYear(year), StartOfYear(year+1))
}

// =============================================================================
// HOLIDAY CALENDAR - Public holidays by category
// =============================================================================

// HolidayCategory distinguishes holidays on which the business stays open.
type HolidayCategory string

const (
	HolidayNone     HolidayCategory = ""
	HolidayOrdinary HolidayCategory = "ordinary"
	HolidayOpening  HolidayCategory = "opening"
)

// Holiday represents a public holiday.
type Holiday struct {
	Date     TimePoint       `json:"date"`
	Name     string          `json:"name"`
	Category HolidayCategory `json:"category"`
}

// HolidayCalendar provides holiday lookup functionality.
type HolidayCalendar interface {
	// HolidayOn returns the holiday on date, if any.
	HolidayOn(date TimePoint) (Holiday, bool)
}

// StaticHolidayCalendar is a fixed list of holidays keyed by date.
type StaticHolidayCalendar struct {
	byDate map[string]Holiday
}

func NewStaticHolidayCalendar(holidays []Holiday) *StaticHolidayCalendar {
	c := &StaticHolidayCalendar{byDate: make(map[string]Holiday, len(holidays))}
	for _, h := range holidays {
		if h.Category == HolidayNone {
			h.Category = HolidayOrdinary
		}
		c.byDate[h.Date.String()] = h
	}
	return c
}

func (c *StaticHolidayCalendar) HolidayOn(date TimePoint) (Holiday, bool) {
	if c == nil {
		return Holiday{}, false
	}
	h, ok := c.byDate[date.String()]
	return h, ok
}

// List returns the holidays in date order.
func (c *StaticHolidayCalendar) List() []Holiday {
	if c == nil {
		return []Holiday{}
	}
	out := make([]Holiday, 0, len(c.byDate))
	for _, h := range c.byDate {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
