// Package timeline maps dated tasks and milestones onto a fixed-pitch day grid.
// All comparisons happen at day granularity; callers must use the same min date
// for every offset within one render pass.
package timeline

import (
	"planboard/internal/dates"
	"planboard/internal/holiday"
	"time"
)

const (
	PadBefore       = 3
	PadAfter        = 7
	DefaultDayWidth = 50.0
)

// Span is one entity's extent. Either side may be missing.
type Span struct {
	Start *time.Time
	End   *time.Time
}

// RangeOf returns the padded display range. The minimum covers now, explicitStart and
// every present span start; the maximum covers now, explicitEnd and every present span end.
func RangeOf(spans []Span, explicitStart, explicitEnd *time.Time, now time.Time) (time.Time, time.Time) {
	lo := dates.Day(now)
	hi := lo

	if explicitStart != nil {
		lo = dates.Min(lo, dates.Day(*explicitStart))
	}
	if explicitEnd != nil {
		hi = dates.Max(hi, dates.Day(*explicitEnd))
	}
	for _, s := range spans {
		if s.Start != nil {
			lo = dates.Min(lo, dates.Day(*s.Start))
		}
		if s.End != nil {
			hi = dates.Max(hi, dates.Day(*s.End))
		}
	}
	return dates.AddDays(lo, -PadBefore), dates.AddDays(hi, PadAfter)
}

// TotalDays is the number of day columns between min and max.
func TotalDays(min, max time.Time) int {
	n := dates.DaysBetween(min, max)
	if n < 0 {
		return 0
	}
	return n
}

func OffsetOf(date, min time.Time, dayWidth float64) float64 {
	return float64(dates.DaysBetween(min, date)) * dayWidth
}

// WidthOf never returns less than one day.
func WidthOf(start, end time.Time, dayWidth float64) float64 {
	w := float64(dates.DaysBetween(start, end)) * dayWidth
	if w < dayWidth {
		return dayWidth
	}
	return w
}

type DayInfo struct {
	Date        time.Time `json:"date"`
	IsWeekend   bool      `json:"is_weekend"`
	IsHoliday   bool      `json:"is_holiday"`
	HolidayName string    `json:"holiday_name,omitempty"`
}

func ClassifyDay(date time.Time, holidays holiday.Lookup) DayInfo {
	day := dates.Day(date)
	info := DayInfo{Date: day, IsWeekend: dates.IsWeekend(day)}
	if holidays != nil {
		h := holidays.Lookup(day)
		info.IsHoliday = h.IsHoliday
		info.HolidayName = h.Name
	}
	return info
}

// Days lists the TotalDays(min, max) rendered columns starting at min.
func Days(min, max time.Time, holidays holiday.Lookup) []DayInfo {
	n := TotalDays(min, max)
	out := make([]DayInfo, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ClassifyDay(dates.AddDays(min, i), holidays))
	}
	return out
}

// TodayOffset reports where the today line goes and whether it falls on the grid.
func TodayOffset(now, min time.Time, totalDays int, dayWidth float64) (float64, bool) {
	off := OffsetOf(now, min, dayWidth)
	return off, off >= 0 && off <= float64(totalDays)*dayWidth
}
