// Package servicedate answers "what day is it" for the collection service.
//
// Collection and payment statuses are only meaningful for the day they were
// recorded, and the day boundary is the municipality's local midnight, not
// UTC. Every workflow that needs "today" takes a *Calendar so tests can pin
// the clock.
package servicedate

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zone data for hosts without /usr/share/zoneinfo

	"cloud.google.com/go/civil"
)

// DefaultTimeZone is the service's time zone unless configured otherwise.
const DefaultTimeZone = "Asia/Kolkata"

// Calendar computes calendar days in a fixed location.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// New returns a Calendar using the wall clock in loc.
func New(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc, now: time.Now}
}

// Load returns a Calendar for the named IANA zone. Blank means DefaultTimeZone.
func Load(name string) (*Calendar, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", name, err)
	}
	return New(loc), nil
}

// Fixed returns a Calendar whose clock is stuck at t, in t's location.
// Useful for testing.
func Fixed(t time.Time) *Calendar {
	return &Calendar{loc: t.Location(), now: func() time.Time { return t }}
}

// Location returns the calendar's time zone.
func (c *Calendar) Location() *time.Location { return c.loc }

// Now returns the current instant in the calendar's location.
func (c *Calendar) Now() time.Time { return c.now().In(c.loc) }

// Today returns the current calendar day.
func (c *Calendar) Today() civil.Date { return civil.DateOf(c.Now()) }

// DaysBack returns the n days ending today, oldest first.
func (c *Calendar) DaysBack(n int) []civil.Date {
	return DaysEnding(c.Today(), n)
}

// DaysEnding returns the n days ending on end, oldest first.
func DaysEnding(end civil.Date, n int) []civil.Date {
	if n <= 0 {
		return nil
	}
	out := make([]civil.Date, n)
	for i := 0; i < n; i++ {
		out[i] = end.AddDays(i - n + 1)
	}
	return out
}

// Parse reads a YYYY-MM-DD day.
func Parse(s string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}

// ParseOrToday reads a YYYY-MM-DD day. Blank and "today" mean c.Today().
func (c *Calendar) ParseOrToday(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "today") {
		return c.Today(), nil
	}
	return Parse(s)
}

// MonthStart returns the first day of d's month.
func MonthStart(d civil.Date) civil.Date {
	return civil.Date{Year: d.Year, Month: d.Month, Day: 1}
}

// AddMonths moves a first-of-month day by n months.
func AddMonths(first civil.Date, n int) civil.Date {
	t := time.Date(first.Year, first.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return civil.DateOf(t)
}
