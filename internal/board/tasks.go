package board

import (
	"context"
	"fmt"
	"planboard/internal/dates"
	"planboard/internal/handlers/dto"
	"planboard/internal/models/task"
	"planboard/internal/optimistic"
	"planboard/internal/richtext"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Draft is a task about to be created.
type Draft struct {
	Text         string
	Description  string
	Status       task.Status
	Priority     task.Priority
	Color        string
	Start        *time.Time
	End          *time.Time
	WorkflowID   string
	WorkflowName string
}

func (d Draft) request() dto.CreateTaskRequest {
	req := dto.CreateTaskRequest{
		Text:         d.Text,
		Status:       strPtr(string(d.Status)),
		Priority:     strPtr(string(d.Priority)),
		StartDate:    datePtr(d.Start),
		EndDate:      datePtr(d.End),
		WorkflowID:   d.WorkflowID,
		WorkflowName: d.WorkflowName,
	}
	if d.Description != "" {
		req.Description = &d.Description
	}
	if d.Color != "" {
		req.Color = &d.Color
	}
	return req
}

// local is the optimistic copy shown until the server answers with its own.
func (b *Board) local(d Draft) task.Task {
	pid := b.projectID
	t := task.Task{
		UUID:           uuid.New(),
		ProjectID:      &pid,
		Text:           d.Text,
		Description:    d.Description,
		Priority:       d.Priority,
		Color:          d.Color,
		StartDate:      dayPtr(d.Start),
		EndDate:        dayPtr(d.End),
		WorkflowID:     d.WorkflowID,
		WorkflowName:   d.WorkflowName,
		ApprovalStatus: task.ApprovalNone,
		CreatedAt:      b.now(),
	}
	t.SetStatus(d.Status)
	t.Normalize()
	return t
}

func (b *Board) createMutation(d Draft) (optimistic.Mutation[task.Task], error) {
	d.Text = strings.TrimSpace(d.Text)
	if d.Text == "" {
		return optimistic.Mutation[task.Task]{}, ErrEmptyText
	}
	if d.Status == "" {
		d.Status = task.StatusTodo
	}
	if d.Priority == "" {
		d.Priority = task.PriorityMedium
	}
	if d.Start != nil && d.End != nil && dates.Day(*d.End).Before(dates.Day(*d.Start)) {
		return optimistic.Mutation[task.Task]{}, fmt.Errorf("%w: end date before start date", optimistic.ErrValidation)
	}

	req := d.request()
	return optimistic.Create(b.local(d), func(ctx context.Context) (*task.Task, error) {
		created, err := b.backend.CreateProjectTask(ctx, b.projectID, req)
		if err != nil {
			return nil, err
		}
		created.Normalize()
		return &created, nil
	}), nil
}

// AddTask shows the task at once and replaces it with the server copy when the write lands.
func (b *Board) AddTask(ctx context.Context, d Draft) (*task.Task, error) {
	m, err := b.createMutation(d)
	if err != nil {
		return nil, err
	}
	return b.tasks.Do(ctx, m)
}

// MoveTask changes the kanban column of a task.
func (b *Board) MoveTask(ctx context.Context, id string, status task.Status) error {
	st, ok := task.ParseStatus(string(status))
	if !ok {
		return fmt.Errorf("%w: unknown status %q", optimistic.ErrValidation, status)
	}
	return b.EditTask(ctx, id, dto.UpdateTaskRequest{Status: strPtr(string(st))})
}

// EditTask applies a partial update locally and sends only the changed fields.
func (b *Board) EditTask(ctx context.Context, id string, patch dto.UpdateTaskRequest) error {
	if patch.Text != nil && strings.TrimSpace(*patch.Text) == "" {
		return ErrEmptyText
	}
	tid, err := parseID(id)
	if err != nil {
		return err
	}
	_, err = b.tasks.Do(ctx, optimistic.Update(id,
		func(t task.Task) task.Task {
			t = t.Clone()
			task.Apply(&t, patch.Options()...)
			t.Normalize()
			return t
		},
		func(ctx context.Context) error {
			_, err := b.backend.UpdateProjectTask(ctx, b.projectID, tid, patch)
			return err
		}))
	return err
}

func (b *Board) DeleteTask(ctx context.Context, id string) error {
	tid, err := parseID(id)
	if err != nil {
		return err
	}
	_, err = b.tasks.Do(ctx, optimistic.Delete[task.Task](id, func(ctx context.Context) error {
		return b.backend.DeleteProjectTask(ctx, b.projectID, tid)
	}))
	return err
}

// ToggleSubtask flips one checkbox of the task's description.
func (b *Board) ToggleSubtask(ctx context.Context, id string, index int, checked bool) error {
	t, err := b.task(id)
	if err != nil {
		return err
	}
	html, err := richtext.ToggleSubtask(t.Description, index, checked)
	if err != nil {
		return fmt.Errorf("%w: %v", optimistic.ErrValidation, err)
	}
	return b.EditTask(ctx, id, dto.UpdateTaskRequest{Description: &html})
}

// DeleteWorkflow removes every task of the workflow at once. Tasks whose delete fails
// come back; the others stay deleted.
func (b *Board) DeleteWorkflow(ctx context.Context, workflowID string) (optimistic.BatchResult[task.Task], error) {
	var ms []optimistic.Mutation[task.Task]
	for _, t := range b.tasks.Store().Snapshot() {
		if t.WorkflowID != workflowID {
			continue
		}
		tid := t.UUID
		ms = append(ms, optimistic.Delete[task.Task](t.ID(), func(ctx context.Context) error {
			return b.backend.DeleteProjectTask(ctx, b.projectID, tid)
		}))
	}
	if len(ms) == 0 {
		return optimistic.BatchResult[task.Task]{}, fmt.Errorf("%w: unknown workflow %s", optimistic.ErrValidation, workflowID)
	}

	res, err := b.tasks.DoBatch(ctx, ms)
	if err != nil {
		return res, err
	}
	b.mtx.Lock()
	delete(b.collapsed, workflowID)
	b.mtx.Unlock()
	return res, res.Err()
}

func (b *Board) addTasks(ctx context.Context, drafts []Draft) (optimistic.BatchResult[task.Task], error) {
	ms := make([]optimistic.Mutation[task.Task], 0, len(drafts))
	for _, d := range drafts {
		m, err := b.createMutation(d)
		if err != nil {
			return optimistic.BatchResult[task.Task]{}, err
		}
		ms = append(ms, m)
	}
	res, err := b.tasks.DoBatch(ctx, ms)
	if err != nil {
		return res, err
	}
	return res, res.Err()
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func datePtr(t *time.Time) *dto.Date {
	if t == nil {
		return nil
	}
	return &dto.Date{Time: dates.Day(*t)}
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := dates.Day(*t)
	return &d
}
