// Package dates holds the day-granularity calendar helpers shared by the timeline,
// filters and template expansion. Every value is reduced to local midnight so that
// DST shifts and time-of-day never leak into day counts.
package dates

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// Day strips the time of day, keeping the calendar date in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of calendar days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// AddDays moves t by n calendar days and strips the time of day.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location())
}

func FormatDay(t time.Time) string {
	return t.Format(Layout)
}

// ParseDay parses YYYY-MM-DD in the local time zone.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}

// MustDay is ParseDay for literals in tests and catalogs.
func MustDay(s string) time.Time {
	t, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Min returns the earlier of a and b.
func Min(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

// Max returns the later of a and b.
func Max(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
