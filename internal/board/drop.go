package board

import (
	"context"
	"errors"
	"fmt"
	"planboard/internal/models/task"
	"planboard/internal/optimistic"
	"planboard/internal/templates"
	"strings"
	"time"
)

var ErrUnknownPayload = errors.New("unknown drag payload")

// DragPayload is what the user picked up. The set of kinds is closed.
type DragPayload interface {
	dragPayload()
}

// TaskDrag moves an existing task between kanban columns.
type TaskDrag struct {
	TaskID string
}

// MilestoneTemplateDrag drops a catalog milestone on a timeline day.
type MilestoneTemplateDrag struct {
	TemplateID string
}

// WorkflowTemplateDrag drops a whole workflow on a timeline day.
type WorkflowTemplateDrag struct {
	TemplateID string
	// SkipNonWorkingDays stretches each step over weekends and holidays.
	SkipNonWorkingDays bool
}

func (TaskDrag) dragPayload()              {}
func (MilestoneTemplateDrag) dragPayload() {}
func (WorkflowTemplateDrag) dragPayload()  {}

// Target is where the payload landed: a kanban column or a timeline day.
type Target struct {
	Status task.Status
	Date   time.Time
}

// Drop dispatches a finished drag.
func (b *Board) Drop(ctx context.Context, payload DragPayload, target Target) error {
	switch p := payload.(type) {
	case TaskDrag:
		if target.Status == "" {
			return fmt.Errorf("%w: task dropped outside a column", optimistic.ErrValidation)
		}
		return b.MoveTask(ctx, p.TaskID, target.Status)

	case MilestoneTemplateDrag:
		tpl, ok := templates.FindMilestone(p.TemplateID)
		if !ok {
			return fmt.Errorf("%w: unknown milestone template %q", optimistic.ErrValidation, p.TemplateID)
		}
		if target.Date.IsZero() {
			return fmt.Errorf("%w: milestone dropped outside the timeline", optimistic.ErrValidation)
		}
		_, err := b.AddMilestone(ctx, tpl.Name, target.Date)
		return err

	case WorkflowTemplateDrag:
		_, err := b.ApplyWorkflow(ctx, p.TemplateID, target.Date, p.SkipNonWorkingDays)
		return err
	}
	return fmt.Errorf("%w: %T", ErrUnknownPayload, payload)
}

// ApplyWorkflow lays the template's steps end to end from start and creates them as one batch.
func (b *Board) ApplyWorkflow(ctx context.Context, templateID string, start time.Time, skipNonWorkingDays bool) (optimistic.BatchResult[task.Task], error) {
	wf, ok := templates.FindWorkflow(templateID, b.customWorkflows()...)
	if !ok {
		return optimistic.BatchResult[task.Task]{}, fmt.Errorf("%w: unknown workflow template %q", optimistic.ErrValidation, templateID)
	}
	if start.IsZero() {
		return optimistic.BatchResult[task.Task]{}, fmt.Errorf("%w: workflow dropped outside the timeline", optimistic.ErrValidation)
	}

	planned := templates.Expand(wf, start, templates.ExpandOptions{
		SkipNonWorkingDays: skipNonWorkingDays,
		Holidays:           b.holidays,
	})
	drafts := make([]Draft, 0, len(planned))
	for _, pt := range planned {
		s, e := pt.Start, pt.End
		drafts = append(drafts, Draft{
			Text:         pt.Text,
			Description:  pt.Description,
			Color:        pt.Color,
			Start:        &s,
			End:          &e,
			WorkflowID:   pt.WorkflowID,
			WorkflowName: pt.WorkflowName,
		})
	}
	return b.addTasks(ctx, drafts)
}

// ApplyPlan turns a generated plan into milestones spread over [start, end] and their
// tasks. The first failing milestone aborts the rest.
func (b *Board) ApplyPlan(ctx context.Context, plan templates.Plan, start, end time.Time) error {
	var errs []error
	for _, pm := range templates.ExpandPlan(plan, start, end) {
		if _, err := b.AddMilestone(ctx, pm.Title, pm.Date); err != nil {
			return errors.Join(append(errs, fmt.Errorf("milestone %q: %w", pm.Title, err))...)
		}
		drafts := make([]Draft, 0, len(pm.Tasks))
		for _, pt := range pm.Tasks {
			if strings.TrimSpace(pt.Text) == "" {
				continue
			}
			s, e := pt.Start, pt.End
			drafts = append(drafts, Draft{Text: pt.Text, Priority: pt.Priority, Start: &s, End: &e})
		}
		if len(drafts) == 0 {
			continue
		}
		if _, err := b.addTasks(ctx, drafts); err != nil {
			errs = append(errs, fmt.Errorf("tasks of %q: %w", pm.Title, err))
		}
	}
	return errors.Join(errs...)
}
