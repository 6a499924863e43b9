package postgres

import (
	"context"
	"errors"
	"fmt"
	"planboard/internal/dates"
	"planboard/internal/logger"
	"planboard/internal/models/task"
	repo "planboard/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskColumns = `uuid, user_id, project_id, text, description, status, completed, priority, color,
	scheduled_date, start_date, end_date, workflow_id, workflow_name, approval_status,
	rejection_reason, created_at, updated_at, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.UUID,
		&t.UserID,
		&t.ProjectID,
		&t.Text,
		&t.Description,
		&t.Status,
		&t.Completed,
		&t.Priority,
		&t.Color,
		&t.ScheduledDate,
		&t.StartDate,
		&t.EndDate,
		&t.WorkflowID,
		&t.WorkflowName,
		&t.ApprovalStatus,
		&t.RejectionReason,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.Version,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Storage) queryTasks(ctx context.Context, op, query string, args ...any) ([]*task.Task, error) {
	start := time.Now()
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: failed to list tasks", err, zap.String("operation", op))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: failed to scan task", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: row iteration failed", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	warnIfSlow(op, start, 100*time.Millisecond)
	return tasks, nil
}

func (s *Storage) CreateTask(ctx context.Context, t *task.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(uuid, user_id, project_id, text, description, status, completed, priority, color,
				 scheduled_date, start_date, end_date, workflow_id, workflow_name, approval_status,
				 rejection_reason, created_at, version)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, 1)
				RETURNING created_at, version`

	err := s.pool.QueryRow(ctx, query,
		t.UUID,
		t.UserID,
		t.ProjectID,
		t.Text,
		t.Description,
		t.Status,
		t.Completed,
		t.Priority,
		t.Color,
		t.ScheduledDate,
		t.StartDate,
		t.EndDate,
		t.WorkflowID,
		t.WorkflowName,
		t.ApprovalStatus,
		t.RejectionReason,
		time.Now(),
	).Scan(&t.CreatedAt, &t.Version)
	if err != nil {
		logger.Error("Repository: failed to insert task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("insert task: %w", err)
	}

	warnIfSlow("create_task", start, 50*time.Millisecond)
	return nil
}

// UpdateTask writes every column guarded by the version the caller read.
func (s *Storage) UpdateTask(ctx context.Context, t *task.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET text = $1,
				description = $2,
				status = $3,
				completed = $4,
				priority = $5,
				color = $6,
				scheduled_date = $7,
				start_date = $8,
				end_date = $9,
				workflow_id = $10,
				workflow_name = $11,
				approval_status = $12,
				rejection_reason = $13,
				version = version + 1,
				updated_at = NOW()
			WHERE uuid = $14 AND version = $15
			RETURNING updated_at, version`

	err := s.pool.QueryRow(ctx, query,
		t.Text,
		t.Description,
		t.Status,
		t.Completed,
		t.Priority,
		t.Color,
		t.ScheduledDate,
		t.StartDate,
		t.EndDate,
		t.WorkflowID,
		t.WorkflowName,
		t.ApprovalStatus,
		t.RejectionReason,
		t.UUID,
		t.Version,
	).Scan(&t.UpdatedAt, &t.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn("Repository: version conflict on task update",
				zap.String("task_id", t.UUID.String()),
				zap.Int("expected_version", t.Version))
			return repo.ErrVersionConflict
		}
		logger.Error("Repository: failed to update task", err)
		return fmt.Errorf("update task: %w", err)
	}

	warnIfSlow("update_task", start, 100*time.Millisecond)
	return nil
}

func (s *Storage) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()

	t, err := scanTask(s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE uuid = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to get task", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("get task: %w", err)
	}

	warnIfSlow("get_task", start, 100*time.Millisecond)
	return t, nil
}

func (s *Storage) DeleteTask(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE uuid = $1`, id)
	if err != nil {
		logger.Error("Repository: failed to delete task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow("delete_task", start, 100*time.Millisecond)
	return nil
}

func (s *Storage) ListUserTasks(ctx context.Context, userID string) ([]*task.Task, error) {
	return s.queryTasks(ctx, "list_user_tasks",
		`SELECT `+taskColumns+` FROM tasks
			WHERE project_id IS NULL AND user_id = $1
			ORDER BY seq DESC`, userID)
}

func (s *Storage) ListProjectTasks(ctx context.Context, projectID uuid.UUID) ([]*task.Task, error) {
	return s.queryTasks(ctx, "list_project_tasks",
		`SELECT `+taskColumns+` FROM tasks
			WHERE project_id = $1
			ORDER BY seq`, projectID)
}

func (s *Storage) DeleteWorkflowTasks(ctx context.Context, projectID uuid.UUID, workflowID string) (int, error) {
	start := time.Now()

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE project_id = $1 AND workflow_id = $2`, projectID, workflowID)
	if err != nil {
		logger.Error("Repository: failed to delete workflow tasks", err, zap.String("workflow_id", workflowID))
		return 0, fmt.Errorf("delete workflow tasks: %w", err)
	}

	warnIfSlow("delete_workflow_tasks", start, 100*time.Millisecond)
	return int(tag.RowsAffected()), nil
}

func (s *Storage) ListOverdueTasks(ctx context.Context, before time.Time, limit int) ([]*task.Task, error) {
	return s.queryTasks(ctx, "list_overdue_tasks",
		`SELECT `+taskColumns+` FROM tasks
			WHERE status <> $1 AND COALESCE(end_date, scheduled_date) < $2
			ORDER BY seq
			LIMIT $3`, task.StatusDone, dates.Day(before), limit)
}
