package timeline

import (
	"planboard/internal/holiday"
	"planboard/internal/models/project"
	"planboard/internal/models/task"
	"time"
)

type RowKind string

const (
	RowTask     RowKind = "task"
	RowWorkflow RowKind = "workflow"
)

type Bar struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Offset float64   `json:"offset"`
	Width  float64   `json:"width"`
}

// Row is a task row or a workflow header. Tasks without both dates get a row with no bar.
type Row struct {
	Kind         RowKind    `json:"kind"`
	Task         *task.Task `json:"task,omitempty"`
	WorkflowID   string     `json:"workflow_id,omitempty"`
	WorkflowName string     `json:"workflow_name,omitempty"`
	TaskCount    int        `json:"task_count,omitempty"`
	Collapsed    bool       `json:"collapsed,omitempty"`
	Bar          *Bar       `json:"bar,omitempty"`
}

type Marker struct {
	Milestone project.Milestone `json:"milestone"`
	Offset    float64           `json:"offset"`
}

type Grid struct {
	Min          time.Time `json:"min"`
	Max          time.Time `json:"max"`
	TotalDays    int       `json:"total_days"`
	DayWidth     float64   `json:"day_width"`
	Days         []DayInfo `json:"days"`
	Rows         []Row     `json:"rows"`
	Milestones   []Marker  `json:"milestones"`
	Today        float64   `json:"today"`
	TodayVisible bool      `json:"today_visible"`
}

// Width is the pixel width of the whole grid.
func (g Grid) Width() float64 {
	return float64(g.TotalDays) * g.DayWidth
}

type Options struct {
	Now          time.Time
	DayWidth     float64
	Holidays     holiday.Lookup
	ProjectStart *time.Time
	ProjectEnd   *time.Time
	// Collapsed holds workflow ids whose task rows are hidden.
	Collapsed map[string]bool
}

// Spans converts tasks and milestones into range inputs. A milestone is a one-day span.
func Spans(tasks []task.Task, milestones []project.Milestone) []Span {
	spans := make([]Span, 0, len(tasks)+len(milestones))
	for i := range tasks {
		spans = append(spans, Span{Start: tasks[i].StartDate, End: tasks[i].EndDate})
	}
	for i := range milestones {
		d := milestones[i].Date
		spans = append(spans, Span{Start: &d, End: &d})
	}
	return spans
}

// Layout computes the whole grid for one render pass.
func Layout(tasks []task.Task, milestones []project.Milestone, opts Options) Grid {
	dw := opts.DayWidth
	if dw <= 0 {
		dw = DefaultDayWidth
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	lo, hi := RangeOf(Spans(tasks, milestones), opts.ProjectStart, opts.ProjectEnd, now)
	total := TotalDays(lo, hi)
	today, visible := TodayOffset(now, lo, total, dw)

	grid := Grid{
		Min:          lo,
		Max:          hi,
		TotalDays:    total,
		DayWidth:     dw,
		Days:         Days(lo, hi, opts.Holidays),
		Today:        today,
		TodayVisible: visible,
	}
	grid.Rows = rows(tasks, lo, dw, opts.Collapsed)

	for _, m := range milestones {
		grid.Milestones = append(grid.Milestones, Marker{Milestone: m, Offset: OffsetOf(m.Date, lo, dw)})
	}
	return grid
}

func rows(tasks []task.Task, lo time.Time, dw float64, collapsed map[string]bool) []Row {
	byWorkflow := make(map[string][]int)
	for i, t := range tasks {
		if t.WorkflowID != "" {
			byWorkflow[t.WorkflowID] = append(byWorkflow[t.WorkflowID], i)
		}
	}

	out := make([]Row, 0, len(tasks)+len(byWorkflow))
	emitted := make(map[string]bool)
	for i := range tasks {
		t := tasks[i]
		if t.WorkflowID == "" {
			out = append(out, taskRow(t, lo, dw))
			continue
		}
		if emitted[t.WorkflowID] {
			continue
		}
		emitted[t.WorkflowID] = true

		members := byWorkflow[t.WorkflowID]
		header := Row{
			Kind:         RowWorkflow,
			WorkflowID:   t.WorkflowID,
			WorkflowName: t.WorkflowName,
			TaskCount:    len(members),
			Collapsed:    collapsed[t.WorkflowID],
		}
		header.Bar = workflowBar(tasks, members, lo, dw)
		out = append(out, header)

		if header.Collapsed {
			continue
		}
		for _, idx := range members {
			out = append(out, taskRow(tasks[idx], lo, dw))
		}
	}
	return out
}

func taskRow(t task.Task, lo time.Time, dw float64) Row {
	c := t.Clone()
	row := Row{Kind: RowTask, Task: &c, WorkflowID: t.WorkflowID, WorkflowName: t.WorkflowName}
	if t.StartDate != nil && t.EndDate != nil {
		row.Bar = &Bar{
			Start:  *t.StartDate,
			End:    *t.EndDate,
			Offset: OffsetOf(*t.StartDate, lo, dw),
			Width:  WidthOf(*t.StartDate, *t.EndDate, dw),
		}
	}
	return row
}

// workflowBar spans from the earliest start to the latest end among the fully dated members.
func workflowBar(tasks []task.Task, members []int, lo time.Time, dw float64) *Bar {
	var start, end *time.Time
	for _, idx := range members {
		t := tasks[idx]
		if t.StartDate == nil || t.EndDate == nil {
			continue
		}
		if start == nil || t.StartDate.Before(*start) {
			start = t.StartDate
		}
		if end == nil || t.EndDate.After(*end) {
			end = t.EndDate
		}
	}
	if start == nil {
		return nil
	}
	return &Bar{
		Start:  *start,
		End:    *end,
		Offset: OffsetOf(*start, lo, dw),
		Width:  WidthOf(*start, *end, dw),
	}
}
