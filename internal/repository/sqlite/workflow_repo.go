package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"planboard/internal/models/workflow"
	repo "planboard/internal/repository"
	"time"

	"github.com/google/uuid"
)

const templateColumns = `uuid, user_id, name, description, tasks, created_at, updated_at`

func scanTemplate(s scanner) (*workflow.Template, error) {
	var (
		t       workflow.Template
		tasks   string
		updated sql.NullTime
	)
	if err := s.Scan(&t.UUID, &t.UserID, &t.Name, &t.Description, &tasks, &t.CreatedAt, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tasks), &t.Tasks); err != nil {
		return nil, fmt.Errorf("decode template tasks: %w", err)
	}
	t.UpdatedAt = fromNullTime(updated)
	return &t, nil
}

func templateTasks(t *workflow.Template) (string, error) {
	if t.Tasks == nil {
		return "[]", nil
	}
	b, err := json.Marshal(t.Tasks)
	if err != nil {
		return "", fmt.Errorf("encode template tasks: %w", err)
	}
	return string(b), nil
}

func (s *Storage) CreateWorkflowTemplate(ctx context.Context, t *workflow.Template) error {
	tasks, err := templateTasks(t)
	if err != nil {
		return err
	}
	t.CreatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflow_templates (uuid, user_id, name, description, tasks, created_at)
		VALUES (?,?,?,?,?,?)`,
		t.UUID.String(), t.UserID, t.Name, t.Description, tasks, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert workflow template: %w", err)
	}
	return nil
}

func (s *Storage) UpdateWorkflowTemplate(ctx context.Context, t *workflow.Template) error {
	tasks, err := templateTasks(t)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE workflow_templates SET name=?, description=?, tasks=?, updated_at=? WHERE uuid=?`,
		t.Name, t.Description, tasks, now, t.UUID.String(),
	)
	if err != nil {
		return fmt.Errorf("update workflow template: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	t.UpdatedAt = &now
	return nil
}

func (s *Storage) GetWorkflowTemplate(ctx context.Context, id uuid.UUID) (*workflow.Template, error) {
	t, err := scanTemplate(s.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM workflow_templates WHERE uuid = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow template: %w", err)
	}
	return t, nil
}

func (s *Storage) DeleteWorkflowTemplate(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workflow_templates WHERE uuid = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete workflow template: %w", err)
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

func (s *Storage) ListWorkflowTemplates(ctx context.Context, userID string) ([]*workflow.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM workflow_templates
			WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list workflow templates: %w", err)
	}
	defer rows.Close()

	list := []*workflow.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workflow template: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list workflow templates: %w", err)
	}
	return list, nil
}
