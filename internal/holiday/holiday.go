// Package holiday is the fixed holiday calendar consulted for every rendered timeline day
// and by the weekend/holiday aware template expansion.
package holiday

import (
	"sync"
	"time"
)

// Result is what a lookup reports for one date.
type Result struct {
	IsHoliday bool   `json:"is_holiday"`
	Name      string `json:"name,omitempty"`
}

// Lookup is satisfied by *Calendar and by test doubles.
type Lookup interface {
	Lookup(date time.Time) Result
}

// Rule yields the month and day of a holiday for a year; ok is false when the rule
// does not apply to that year.
type Rule struct {
	Name string
	Date func(year int) (month time.Month, day int, ok bool)
}

// Calendar is a table of rules with a per-year cache.
type Calendar struct {
	rules      []Rule
	substitute bool

	mtx   sync.Mutex
	years map[int]map[key]string
}

type key struct {
	month time.Month
	day   int
}

// New builds a calendar from rules. With substitute set, a holiday falling on Sunday moves
// its day off to the next non-holiday, and a single day sandwiched between two holidays is
// itself a holiday.
func New(rules []Rule, substitute bool) *Calendar {
	return &Calendar{
		rules:      rules,
		substitute: substitute,
		years:      make(map[int]map[key]string),
	}
}

// Japan is the national holiday calendar used by the timeline.
func Japan() *Calendar {
	return New(japaneseRules, true)
}

func (c *Calendar) Lookup(date time.Time) Result {
	y, m, d := date.Date()

	c.mtx.Lock()
	table, ok := c.years[y]
	if !ok {
		table = c.build(y)
		c.years[y] = table
	}
	c.mtx.Unlock()

	name, ok := table[key{m, d}]
	if !ok {
		return Result{}
	}
	return Result{IsHoliday: true, Name: name}
}

func (c *Calendar) build(year int) map[key]string {
	table := make(map[key]string)
	for _, r := range c.rules {
		m, d, ok := r.Date(year)
		if !ok {
			continue
		}
		table[key{m, d}] = r.Name
	}
	if !c.substitute {
		return table
	}

	base := make([]time.Time, 0, len(table))
	for k := range table {
		base = append(base, time.Date(year, k.month, k.day, 0, 0, 0, 0, time.UTC))
	}

	for _, day := range base {
		if day.Weekday() != time.Sunday {
			continue
		}
		next := day.AddDate(0, 0, 1)
		for next.Year() == year {
			if _, taken := table[key{next.Month(), next.Day()}]; !taken {
				table[key{next.Month(), next.Day()}] = "Substitute Holiday"
				break
			}
			next = next.AddDate(0, 0, 1)
		}
	}

	for _, day := range base {
		between := day.AddDate(0, 0, 1)
		after := day.AddDate(0, 0, 2)
		if between.Year() != year || between.Weekday() == time.Sunday {
			continue
		}
		_, betweenTaken := table[key{between.Month(), between.Day()}]
		_, afterTaken := table[key{after.Month(), after.Day()}]
		if !betweenTaken && afterTaken && after.Year() == year {
			table[key{between.Month(), between.Day()}] = "Citizens' Holiday"
		}
	}
	return table
}

func fixed(month time.Month, day int, from, to int) func(int) (time.Month, int, bool) {
	return func(year int) (time.Month, int, bool) {
		if year < from || (to > 0 && year > to) {
			return 0, 0, false
		}
		return month, day, true
	}
}

// nthMonday returns the day of the nth Monday of month.
func nthMonday(month time.Month, n int) func(int) (time.Month, int, bool) {
	return func(year int) (time.Month, int, bool) {
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		offset := (int(time.Monday) - int(first.Weekday()) + 7) % 7
		return month, 1 + offset + 7*(n-1), true
	}
}

// Equinox days follow the approximation published for 1980-2099.
func vernalEquinox(year int) (time.Month, int, bool) {
	if year < 1980 || year > 2099 {
		return 0, 0, false
	}
	d := int(20.8431+0.242194*float64(year-1980)) - (year-1980)/4
	return time.March, d, true
}

func autumnalEquinox(year int) (time.Month, int, bool) {
	if year < 1980 || year > 2099 {
		return 0, 0, false
	}
	d := int(23.2488+0.242194*float64(year-1980)) - (year-1980)/4
	return time.September, d, true
}

var japaneseRules = []Rule{
	{Name: "New Year's Day", Date: fixed(time.January, 1, 1949, 0)},
	{Name: "Coming of Age Day", Date: nthMonday(time.January, 2)},
	{Name: "National Foundation Day", Date: fixed(time.February, 11, 1967, 0)},
	{Name: "Emperor's Birthday", Date: fixed(time.February, 23, 2020, 0)},
	{Name: "Vernal Equinox Day", Date: vernalEquinox},
	{Name: "Showa Day", Date: fixed(time.April, 29, 2007, 0)},
	{Name: "Constitution Memorial Day", Date: fixed(time.May, 3, 1949, 0)},
	{Name: "Greenery Day", Date: fixed(time.May, 4, 2007, 0)},
	{Name: "Children's Day", Date: fixed(time.May, 5, 1949, 0)},
	{Name: "Marine Day", Date: nthMonday(time.July, 3)},
	{Name: "Mountain Day", Date: fixed(time.August, 11, 2016, 0)},
	{Name: "Respect for the Aged Day", Date: nthMonday(time.September, 3)},
	{Name: "Autumnal Equinox Day", Date: autumnalEquinox},
	{Name: "Sports Day", Date: nthMonday(time.October, 2)},
	{Name: "Culture Day", Date: fixed(time.November, 3, 1948, 0)},
	{Name: "Labor Thanksgiving Day", Date: fixed(time.November, 23, 1948, 0)},
}

// None is a calendar without holidays.
type None struct{}

func (None) Lookup(time.Time) Result { return Result{} }
