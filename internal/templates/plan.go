package templates

import (
	"planboard/internal/dates"
	"planboard/internal/models/task"
	"time"
)

// Plan is the structured project plan returned by the plan generator.
type Plan struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Milestones  []PlanMilestone `json:"milestones"`
	Risks       []string        `json:"risks"`
}

type PlanMilestone struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Tasks       []PlanTask `json:"tasks"`
}

type PlanTask struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
}

type PlannedMilestone struct {
	Title string
	Date  time.Time
	Tasks []PlannedPlanTask
}

type PlannedPlanTask struct {
	Text     string
	Priority task.Priority
	Start    time.Time
	End      time.Time
}

// ExpandPlan spreads the plan's milestones evenly over [start, end]. The tasks of a
// milestone run from the previous milestone (or start) up to its own date.
func ExpandPlan(p Plan, start, end time.Time) []PlannedMilestone {
	start, end = dates.Day(start), dates.Day(end)
	if end.Before(start) {
		end = start
	}
	n := len(p.Milestones)
	span := dates.DaysBetween(start, end)

	out := make([]PlannedMilestone, 0, n)
	prev := start
	for i, m := range p.Milestones {
		date := dates.AddDays(start, span*(i+1)/n)
		if date.Before(prev) {
			date = prev
		}
		pm := PlannedMilestone{Title: m.Title, Date: date}
		for _, t := range m.Tasks {
			prio := task.Priority(t.Priority)
			if !prio.Valid() {
				prio = task.PriorityMedium
			}
			pm.Tasks = append(pm.Tasks, PlannedPlanTask{Text: t.Text, Priority: prio, Start: prev, End: date})
		}
		out = append(out, pm)
		prev = dates.AddDays(date, 1)
		if prev.After(end) {
			prev = end
		}
	}
	return out
}
