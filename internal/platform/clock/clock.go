package clock

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Clinic resolves wall-clock time and calendar days in the clinic's time zone.
// Day ranges are half-open: [00:00, next day 00:00).
type Clinic struct {
	loc *time.Location
	now func() time.Time
}

// New returns a clinic clock for loc. A nil loc means UTC.
func New(loc *time.Location) *Clinic {
	if loc == nil {
		loc = time.UTC
	}
	return &Clinic{loc: loc, now: time.Now}
}

// Fixed returns a clock frozen at t, for tests.
func Fixed(loc *time.Location, t time.Time) *Clinic {
	c := New(loc)
	c.now = func() time.Time { return t }
	return c
}

func (c *Clinic) Location() *time.Location { return c.loc }

// Now returns the current time in the clinic zone.
func (c *Clinic) Now() time.Time { return c.now().In(c.loc) }

func (c *Clinic) cfg() *now.Config {
	return &now.Config{WeekStartDay: time.Sunday, TimeLocation: c.loc}
}

// StartOfDay returns local midnight of the day containing t.
func (c *Clinic) StartOfDay(t time.Time) time.Time {
	return c.cfg().With(t.In(c.loc)).BeginningOfDay()
}

// DayBounds returns [start, end) of the day containing t.
func (c *Clinic) DayBounds(t time.Time) (time.Time, time.Time) {
	start := c.StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

// Today returns local midnight of the current day.
func (c *Clinic) Today() time.Time { return c.StartOfDay(c.Now()) }

// IsPastDay reports whether the calendar day of t is before today.
func (c *Clinic) IsPastDay(t time.Time) bool {
	return c.StartOfDay(t).Before(c.Today())
}

// MonthBounds returns [first day 00:00, first day of next month 00:00).
func (c *Clinic) MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, c.loc)
	return start, start.AddDate(0, 1, 0)
}

// CalendarBounds widens a month to whole Sunday-first weeks, as a 7-column
// calendar renders it.
func (c *Clinic) CalendarBounds(year int, month time.Month) (time.Time, time.Time) {
	first, next := c.MonthBounds(year, month)
	start := c.cfg().With(first).BeginningOfWeek()
	end := c.StartOfDay(c.cfg().With(next.AddDate(0, 0, -1)).EndOfWeek()).AddDate(0, 0, 1)
	return start, end
}

// ParseDate parses YYYY-MM-DD as local midnight. An empty string means today.
func (c *Clinic) ParseDate(s string) (time.Time, error) {
	if s == "" {
		return c.Today(), nil
	}
	t, err := time.ParseInLocation(DateLayout, s, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// DateKey formats the local calendar day of t.
func (c *Clinic) DateKey(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}
