package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"planboard/internal/dates"
	"planboard/internal/models/task"
	repo "planboard/internal/repository"
	"time"

	"github.com/google/uuid"
)

const taskColumns = `uuid, user_id, project_id, text, description, status, completed, priority, color,
	scheduled_date, start_date, end_date, workflow_id, workflow_name, approval_status,
	rejection_reason, created_at, updated_at, version`

func scanTask(s scanner) (*task.Task, error) {
	var (
		t                              task.Task
		projectID                      uuid.NullUUID
		scheduled, start, end, updated sql.NullTime
	)
	err := s.Scan(
		&t.UUID, &t.UserID, &projectID, &t.Text, &t.Description, &t.Status, &t.Completed,
		&t.Priority, &t.Color, &scheduled, &start, &end, &t.WorkflowID, &t.WorkflowName,
		&t.ApprovalStatus, &t.RejectionReason, &t.CreatedAt, &updated, &t.Version,
	)
	if err != nil {
		return nil, err
	}
	if projectID.Valid {
		id := projectID.UUID
		t.ProjectID = &id
	}
	t.ScheduledDate = fromNullTime(scheduled)
	t.StartDate = fromNullTime(start)
	t.EndDate = fromNullTime(end)
	t.UpdatedAt = fromNullTime(updated)
	return &t, nil
}

func (s *Storage) queryTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Storage) CreateTask(ctx context.Context, t *task.Task) error {
	t.CreatedAt = time.Now().UTC()
	t.Version = 1

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.UUID.String(), t.UserID, nullUUID(t.ProjectID), t.Text, t.Description, string(t.Status),
		t.Completed, string(t.Priority), t.Color,
		nullTime(t.ScheduledDate), nullTime(t.StartDate), nullTime(t.EndDate),
		t.WorkflowID, t.WorkflowName, string(t.ApprovalStatus), t.RejectionReason,
		t.CreatedAt, nil, t.Version,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *Storage) UpdateTask(ctx context.Context, t *task.Task) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			text=?, description=?, status=?, completed=?, priority=?, color=?,
			scheduled_date=?, start_date=?, end_date=?, workflow_id=?, workflow_name=?,
			approval_status=?, rejection_reason=?, updated_at=?, version=version+1
		WHERE uuid=? AND version=?`,
		t.Text, t.Description, string(t.Status), t.Completed, string(t.Priority), t.Color,
		nullTime(t.ScheduledDate), nullTime(t.StartDate), nullTime(t.EndDate),
		t.WorkflowID, t.WorkflowName, string(t.ApprovalStatus), t.RejectionReason,
		now, t.UUID.String(), t.Version,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.GetTask(ctx, t.UUID); errors.Is(err, repo.ErrNotFound) {
			return repo.ErrNotFound
		}
		return repo.ErrVersionConflict
	}
	t.UpdatedAt = &now
	t.Version++
	return nil
}

func (s *Storage) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE uuid = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *Storage) DeleteTask(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE uuid = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) ListUserTasks(ctx context.Context, userID string) ([]*task.Task, error) {
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE project_id IS NULL AND user_id = ? ORDER BY rowid DESC`, userID)
}

func (s *Storage) ListProjectTasks(ctx context.Context, projectID uuid.UUID) ([]*task.Task, error) {
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE project_id = ? ORDER BY rowid`, projectID.String())
}

func (s *Storage) DeleteWorkflowTasks(ctx context.Context, projectID uuid.UUID, workflowID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ? AND workflow_id = ?`,
		projectID.String(), workflowID)
	if err != nil {
		return 0, fmt.Errorf("delete workflow tasks: %w", err)
	}
	n, err := rowsAffected(res)
	return int(n), err
}

// ListOverdueTasks filters in Go: stored timestamps carry their zone, so a string
// comparison in SQL would be wrong across offsets.
func (s *Storage) ListOverdueTasks(ctx context.Context, before time.Time, limit int) ([]*task.Task, error) {
	candidates, err := s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE status <> ? AND (end_date IS NOT NULL OR scheduled_date IS NOT NULL)
		ORDER BY rowid`, string(task.StatusDone))
	if err != nil {
		return nil, err
	}
	day := dates.Day(before)
	res := []*task.Task{}
	for _, t := range candidates {
		if limit > 0 && len(res) >= limit {
			break
		}
		if t.DueDate().Before(day) {
			res = append(res, t)
		}
	}
	return res, nil
}
