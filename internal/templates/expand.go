// Package templates holds the workflow and milestone catalogs and turns a dropped
// workflow into a sequential task plan.
package templates

import (
	"planboard/internal/dates"
	"planboard/internal/holiday"
	"time"

	"github.com/google/uuid"
)

// PlannedTask is one task produced by expanding a workflow.
type PlannedTask struct {
	Text         string
	Description  string
	Color        string
	Start        time.Time
	End          time.Time
	WorkflowID   string
	WorkflowName string
}

type ExpandOptions struct {
	// WorkflowID groups the produced tasks. Generated when empty.
	WorkflowID string
	// SkipNonWorkingDays stretches a task over weekends and holidays: only working days
	// after the start count towards its duration.
	SkipNonWorkingDays bool
	Holidays           holiday.Lookup
}

// Expand lays the workflow's tasks end to end starting at drop. Each task ends
// duration-1 days after it starts and the next one starts the following day.
func Expand(w Workflow, drop time.Time, opts ExpandOptions) []PlannedTask {
	wfID := opts.WorkflowID
	if wfID == "" {
		wfID = "wf-" + uuid.NewString()
	}

	current := dates.Day(drop)
	out := make([]PlannedTask, 0, len(w.Tasks))
	for _, step := range w.Tasks {
		end := endOf(current, step.Duration, opts)
		out = append(out, PlannedTask{
			Text:         w.Name + ": " + step.Title,
			Description:  step.Description,
			Color:        step.Color,
			Start:        current,
			End:          end,
			WorkflowID:   wfID,
			WorkflowName: w.Name,
		})
		current = dates.AddDays(end, 1)
	}
	return out
}

func endOf(start time.Time, duration int, opts ExpandOptions) time.Time {
	remaining := duration - 1
	if remaining < 0 {
		remaining = 0
	}
	if !opts.SkipNonWorkingDays {
		return dates.AddDays(start, remaining)
	}

	lookup := opts.Holidays
	if lookup == nil {
		lookup = holiday.None{}
	}
	day := start
	for remaining > 0 {
		day = dates.AddDays(day, 1)
		if dates.IsWeekend(day) || lookup.Lookup(day).IsHoliday {
			continue
		}
		remaining--
	}
	return day
}
