package timeline_test

import (
	"math/rand"
	"planboard/internal/dates"
	"planboard/internal/holiday"
	"planboard/internal/models/project"
	"planboard/internal/models/task"
	"planboard/internal/timeline"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) *time.Time {
	d := dates.MustDay(s)
	return &d
}

func scenarioTasks() []task.Task {
	return []task.Task{
		{Text: "T1", Status: task.StatusTodo},
		{Text: "T2", Status: task.StatusInProgress, StartDate: day("2024-01-10"), EndDate: day("2024-01-12")},
		{Text: "T3", Status: task.StatusDone, StartDate: day("2024-01-05"), EndDate: day("2024-01-05")},
	}
}

func TestRangeOf_Scenario(t *testing.T) {
	now := dates.MustDay("2024-01-08").Add(15 * time.Hour)

	lo, hi := timeline.RangeOf(timeline.Spans(scenarioTasks(), nil), nil, nil, now)

	assert.Equal(t, dates.MustDay("2024-01-02"), lo)
	assert.Equal(t, dates.MustDay("2024-01-19"), hi)
	assert.Equal(t, 17, timeline.TotalDays(lo, hi))
	assert.Equal(t, 3*timeline.DefaultDayWidth, timeline.OffsetOf(*scenarioTasks()[2].StartDate, lo, timeline.DefaultDayWidth))
}

func TestRangeOf_PartialSpans(t *testing.T) {
	now := dates.MustDay("2024-03-01")

	tests := []struct {
		name    string
		spans   []timeline.Span
		start   *time.Time
		end     *time.Time
		wantMin string
		wantMax string
	}{
		{
			name:    "only now",
			wantMin: "2024-02-27",
			wantMax: "2024-03-08",
		},
		{
			name:    "start only widens the minimum",
			spans:   []timeline.Span{{Start: day("2024-02-10")}},
			wantMin: "2024-02-07",
			wantMax: "2024-03-08",
		},
		{
			name:    "end only widens the maximum",
			spans:   []timeline.Span{{End: day("2024-04-01")}},
			wantMin: "2024-02-27",
			wantMax: "2024-04-08",
		},
		{
			name:    "explicit project range",
			start:   day("2024-01-15"),
			end:     day("2024-03-20"),
			wantMin: "2024-01-12",
			wantMax: "2024-03-27",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := timeline.RangeOf(tt.spans, tt.start, tt.end, now)
			assert.Equal(t, tt.wantMin, dates.FormatDay(lo))
			assert.Equal(t, tt.wantMax, dates.FormatDay(hi))
		})
	}
}

func TestWidthOf_MinimumOneDay(t *testing.T) {
	d := dates.MustDay("2024-01-05")
	assert.Equal(t, 50.0, timeline.WidthOf(d, d, 50))
	assert.Equal(t, 100.0, timeline.WidthOf(d, dates.AddDays(d, 2), 50))
	assert.Equal(t, 50.0, timeline.WidthOf(dates.AddDays(d, 2), d, 50))
}

func TestGeometryInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := dates.MustDay("2024-01-01")
	const dw = 37.0

	for i := 0; i < 200; i++ {
		var tasks []task.Task
		for n := 0; n < 1+rng.Intn(8); n++ {
			start := dates.AddDays(base, rng.Intn(400))
			end := dates.AddDays(start, rng.Intn(30))
			tasks = append(tasks, task.Task{StartDate: &start, EndDate: &end})
		}
		now := dates.AddDays(base, rng.Intn(500))

		lo, hi := timeline.RangeOf(timeline.Spans(tasks, nil), nil, nil, now)
		total := float64(timeline.TotalDays(lo, hi)) * dw

		for _, tk := range tasks {
			off := timeline.OffsetOf(*tk.StartDate, lo, dw)
			w := timeline.WidthOf(*tk.StartDate, *tk.EndDate, dw)
			require.GreaterOrEqual(t, off, 0.0)
			require.LessOrEqual(t, off+w, total)
		}
	}
}

func TestTodayOffset(t *testing.T) {
	lo := dates.MustDay("2024-01-02")

	off, ok := timeline.TodayOffset(dates.MustDay("2024-01-08"), lo, 17, 50)
	assert.True(t, ok)
	assert.Equal(t, 300.0, off)

	_, ok = timeline.TodayOffset(dates.MustDay("2024-01-01"), lo, 17, 50)
	assert.False(t, ok)

	_, ok = timeline.TodayOffset(dates.MustDay("2024-01-20"), lo, 17, 50)
	assert.False(t, ok)
}

func TestDays_Classification(t *testing.T) {
	lo := dates.MustDay("2024-01-02")
	hi := dates.MustDay("2024-01-19")

	days := timeline.Days(lo, hi, holiday.Japan())
	require.Len(t, days, 17)

	assert.True(t, days[4].IsWeekend) // 2024-01-06
	assert.False(t, days[4].IsHoliday)
	assert.True(t, days[6].IsHoliday) // 2024-01-08
	assert.Equal(t, "Coming of Age Day", days[6].HolidayName)
	assert.False(t, days[7].IsWeekend)
}

func TestLayout_Rows(t *testing.T) {
	wfTasks := []task.Task{
		{Text: "solo", StartDate: day("2024-02-01"), EndDate: day("2024-02-02")},
		{Text: "Design: research", WorkflowID: "wf-1", WorkflowName: "Design", StartDate: day("2024-02-01"), EndDate: day("2024-02-03")},
		{Text: "undated"},
		{Text: "Design: mockups", WorkflowID: "wf-1", WorkflowName: "Design", StartDate: day("2024-02-04"), EndDate: day("2024-02-05")},
	}
	milestones := []project.Milestone{{Title: "Launch", Date: dates.MustDay("2024-02-10")}}
	now := dates.MustDay("2024-02-01")

	grid := timeline.Layout(wfTasks, milestones, timeline.Options{Now: now, DayWidth: 10})

	require.Len(t, grid.Rows, 5)
	assert.Equal(t, timeline.RowTask, grid.Rows[0].Kind)
	assert.Equal(t, timeline.RowWorkflow, grid.Rows[1].Kind)
	assert.Equal(t, 2, grid.Rows[1].TaskCount)
	require.NotNil(t, grid.Rows[1].Bar)
	assert.Equal(t, 40.0, grid.Rows[1].Bar.Width)
	assert.Equal(t, "Design: research", grid.Rows[2].Task.Text)
	assert.Equal(t, "Design: mockups", grid.Rows[3].Task.Text)
	assert.Equal(t, "undated", grid.Rows[4].Task.Text)
	assert.Nil(t, grid.Rows[4].Bar)

	require.Len(t, grid.Milestones, 1)
	assert.Equal(t, 120.0, grid.Milestones[0].Offset)
	assert.True(t, grid.TodayVisible)
	assert.Equal(t, 30.0, grid.Today)

	collapsed := timeline.Layout(wfTasks, milestones, timeline.Options{
		Now:       now,
		DayWidth:  10,
		Collapsed: map[string]bool{"wf-1": true},
	})
	require.Len(t, collapsed.Rows, 3)
	assert.True(t, collapsed.Rows[1].Collapsed)
}
