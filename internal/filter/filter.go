// Package filter partitions and filters entity lists for presentation. Every function
// is pure: inputs are never modified and results are new slices.
package filter

import (
	"planboard/internal/dates"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

const MonthLayout = "2006-01"

// MonthKey is the zero-padded YYYY-MM of t's local calendar date.
func MonthKey(t time.Time) string {
	return t.In(time.Local).Format(MonthLayout)
}

// GroupByMonth is a stable partition by month. Items whose date is zero are left out.
func GroupByMonth[T any](items []T, date func(T) time.Time) map[string][]T {
	groups := make(map[string][]T)
	for _, it := range items {
		d := date(it)
		if d.IsZero() {
			continue
		}
		k := MonthKey(d)
		groups[k] = append(groups[k], it)
	}
	return groups
}

// SortMonthKeys orders keys newest first. Lexical order of YYYY-MM is chronological.
func SortMonthKeys(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)
	slices.Reverse(out)
	return out
}

// MonthKeys returns the keys of groups newest first.
func MonthKeys[T any](groups map[string][]T) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	return SortMonthKeys(keys)
}

// FilterByQuery keeps items where any field contains query, ignoring case. fields returns
// every searchable string of an item. An empty query keeps everything.
func FilterByQuery[T any](items []T, query string, fields func(T) []string) []T {
	q := strings.TrimSpace(query)
	if q == "" {
		return slices.Clone(items)
	}
	fold := cases.Fold()
	needle := fold.String(q)

	out := make([]T, 0, len(items))
	for _, it := range items {
		for _, f := range fields(it) {
			if strings.Contains(fold.String(f), needle) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// FilterByDateRange compares YYYY-MM-DD strings, both bounds inclusive. With any bound
// set, undated items are dropped.
func FilterByDateRange[T any](items []T, start, end *time.Time, date func(T) *time.Time) []T {
	if start == nil && end == nil {
		return slices.Clone(items)
	}
	var lo, hi string
	if start != nil {
		lo = dates.FormatDay(start.In(time.Local))
	}
	if end != nil {
		hi = dates.FormatDay(end.In(time.Local))
	}

	out := make([]T, 0, len(items))
	for _, it := range items {
		d := date(it)
		if d == nil {
			continue
		}
		day := dates.FormatDay(d.In(time.Local))
		if lo != "" && day < lo {
			continue
		}
		if hi != "" && day > hi {
			continue
		}
		out = append(out, it)
	}
	return out
}

// FilterByFacet is for multi-valued facets such as tags: an item passes when it has at
// least one selected value. An empty selection passes everything.
func FilterByFacet[T any, V comparable](items []T, selected []V, values func(T) []V) []T {
	if len(selected) == 0 {
		return slices.Clone(items)
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		for _, v := range values(it) {
			if slices.Contains(selected, v) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// FilterByScalarFacet is for single-valued facets such as mood or status. Items without
// a value only pass an empty selection.
func FilterByScalarFacet[T any, V comparable](items []T, selected []V, value func(T) (V, bool)) []T {
	if len(selected) == 0 {
		return slices.Clone(items)
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if v, ok := value(it); ok && slices.Contains(selected, v) {
			out = append(out, it)
		}
	}
	return out
}
