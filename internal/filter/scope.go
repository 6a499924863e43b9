package filter

import (
	"fmt"
	"planboard/internal/dates"
	"planboard/internal/models/task"
	"slices"
	"time"
)

type Scope string

const (
	ScopeToday Scope = "today"
	ScopeWeek  Scope = "week"
	ScopeMonth Scope = "month"
	ScopeAll   Scope = "all"
)

func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeToday, ScopeWeek, ScopeMonth, ScopeAll:
		return Scope(s), nil
	case "":
		return ScopeAll, nil
	}
	return "", fmt.Errorf("unknown time scope %q", s)
}

// Window returns [from, to) for a narrow scope; ok is false for ScopeAll.
func (s Scope) Window(now time.Time) (from, to time.Time, ok bool) {
	today := dates.Day(now)
	switch s {
	case ScopeToday:
		return today, dates.AddDays(today, 1), true
	case ScopeWeek:
		return today, dates.AddDays(today, 7), true
	case ScopeMonth:
		return today, today.AddDate(0, 1, 0), true
	}
	return time.Time{}, time.Time{}, false
}

// FilterByTimeScope keeps undated items only for ScopeAll. A dated item passes a narrow
// scope when it falls in the window, or when it is before today and not done, so overdue
// work shows up in every scope.
func FilterByTimeScope[T any](items []T, scope Scope, now time.Time, date func(T) *time.Time, done func(T) bool) []T {
	from, to, narrow := scope.Window(now)
	if !narrow {
		return slices.Clone(items)
	}

	out := make([]T, 0, len(items))
	for _, it := range items {
		d := date(it)
		if d == nil {
			continue
		}
		day := dates.Day(d.In(now.Location()))
		inWindow := !day.Before(from) && day.Before(to)
		overdue := day.Before(from) && !done(it)
		if inWindow || overdue {
			out = append(out, it)
		}
	}
	return out
}

// SortByDateThenPriority orders by date ascending, then high before medium before low.
// Undated items go last. The sort is stable.
func SortByDateThenPriority(tasks []task.Task) []task.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b task.Task) int {
		da, db := a.Date(), b.Date()
		switch {
		case da == nil && db == nil:
		case da == nil:
			return 1
		case db == nil:
			return -1
		default:
			if c := dates.Day(*da).Compare(dates.Day(*db)); c != 0 {
				return c
			}
		}
		return b.Priority.Rank() - a.Priority.Rank()
	})
	return out
}

// TaskDate and TaskDone are the accessors used with the generic filters.
func TaskDate(t task.Task) *time.Time { return t.Date() }

func TaskDone(t task.Task) bool { return t.Status == task.StatusDone }
