package service

import (
	"context"
	"fmt"
	"planboard/internal/calendar"
	"planboard/internal/dates"
	"planboard/internal/events"
	"planboard/internal/logger"
	"planboard/internal/models/task"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Daily tasks belong to a user and have no project.

func (s *Service) ListTasks(ctx context.Context, userID string) ([]*task.Task, error) {
	tasks, err := s.repo.ListUserTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	for _, t := range tasks {
		t.Normalize()
	}
	return tasks, nil
}

func (s *Service) CreateTask(ctx context.Context, userID, text string, options ...task.TaskOption) (*task.Task, error) {
	t := s.newTask(userID, nil, text)
	task.Apply(t, options...)
	if err := checkTask(t); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.publish(events.Event{Type: events.TaskCreated, UserID: userID, Payload: t})
	return t, nil
}

func (s *Service) UpdateTask(ctx context.Context, userID string, id uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	t, err := s.ownTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.saveTask(ctx, t, options...)
}

func (s *Service) DeleteTask(ctx context.Context, userID string, id uuid.UUID) error {
	t, err := s.ownTask(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTask(ctx, t.UUID); err != nil {
		return translate(err, ResourceTask, id.String(), "delete task")
	}
	s.publish(events.Event{Type: events.TaskDeleted, UserID: userID, Payload: map[string]string{"id": id.String()}})
	return nil
}

// ImportTasks creates a todo task per calendar event. Events that fail to store are
// logged and skipped.
func (s *Service) ImportTasks(ctx context.Context, userID string, evts []calendar.Event) ([]*task.Task, error) {
	created := make([]*task.Task, 0, len(evts))
	for _, e := range evts {
		var opts []task.TaskOption
		if e.Start != nil {
			day := dates.Day(*e.Start)
			opts = append(opts, task.WithScheduledDate(&day))
		}
		t, err := s.CreateTask(ctx, userID, e.Summary, opts...)
		if err != nil {
			if ctx.Err() != nil {
				return created, ctx.Err()
			}
			logger.Warn("Service: calendar event skipped", zap.String("uid", e.UID), zap.Error(err))
			continue
		}
		created = append(created, t)
	}
	return created, nil
}

func (s *Service) newTask(userID string, projectID *uuid.UUID, text string) *task.Task {
	return &task.Task{
		UUID:           uuid.New(),
		UserID:         userID,
		ProjectID:      projectID,
		Text:           strings.TrimSpace(text),
		Status:         task.StatusTodo,
		Priority:       task.PriorityMedium,
		ApprovalStatus: task.ApprovalNone,
		CreatedAt:      s.now(),
	}
}

// saveTask applies options to a loaded task and writes it with a version check.
func (s *Service) saveTask(ctx context.Context, t *task.Task, options ...task.TaskOption) (*task.Task, error) {
	task.Apply(t, options...)
	t.Text = strings.TrimSpace(t.Text)
	if err := checkTask(t); err != nil {
		return nil, err
	}
	now := s.now()
	t.UpdatedAt = &now

	if err := s.repo.UpdateTask(ctx, t); err != nil {
		return nil, translate(err, ResourceTask, t.ID(), "update task")
	}
	e := events.Event{Type: events.TaskUpdated, UserID: t.UserID, Payload: t}
	if t.ProjectID != nil {
		e.ProjectID = t.ProjectID.String()
	}
	s.publish(e)
	return t, nil
}

func (s *Service) ownTask(ctx context.Context, userID string, id uuid.UUID) (*task.Task, error) {
	t, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, translate(err, ResourceTask, id.String(), "get task")
	}
	if t.ProjectID != nil {
		return nil, NewNotFound(ResourceTask, id.String())
	}
	if t.UserID != userID {
		return nil, NewForbidden(ResourceTask, id.String())
	}
	t.Normalize()
	return t, nil
}

// checkTask normalizes t and rejects empty text and inverted date ranges.
func checkTask(t *task.Task) error {
	if t.Text == "" {
		return NewValidationError("text", "must not be empty")
	}
	if t.Status != "" && !t.Status.Valid() {
		return NewValidationError("status", fmt.Sprintf("unknown status %q", t.Status))
	}
	t.Normalize()
	if t.StartDate != nil && t.EndDate != nil && dates.Day(*t.EndDate).Before(dates.Day(*t.StartDate)) {
		return NewValidationError("end_date", "must not be before start_date")
	}
	return nil
}
