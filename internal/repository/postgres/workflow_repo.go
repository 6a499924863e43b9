package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"planboard/internal/logger"
	"planboard/internal/models/workflow"
	repo "planboard/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const templateColumns = `uuid, user_id, name, description, tasks, created_at, updated_at`

func scanTemplate(row rowScanner) (*workflow.Template, error) {
	t := &workflow.Template{}
	var tasks []byte
	if err := row.Scan(&t.UUID, &t.UserID, &t.Name, &t.Description, &tasks, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tasks, &t.Tasks); err != nil {
		return nil, fmt.Errorf("decode template tasks: %w", err)
	}
	return t, nil
}

func encodeTasks(t *workflow.Template) ([]byte, error) {
	if t.Tasks == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal(t.Tasks)
	if err != nil {
		return nil, fmt.Errorf("encode template tasks: %w", err)
	}
	return b, nil
}

func (s *Storage) CreateWorkflowTemplate(ctx context.Context, t *workflow.Template) error {
	start := time.Now()
	tasks, err := encodeTasks(t)
	if err != nil {
		return err
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO workflow_templates (uuid, user_id, name, description, tasks, created_at)
			VALUES ($1, $2, $3, $4, $5::jsonb, $6)
			RETURNING created_at`,
		t.UUID, t.UserID, t.Name, t.Description, string(tasks), time.Now(),
	).Scan(&t.CreatedAt)
	if err != nil {
		logger.Error("Repository: failed to insert workflow template", err)
		return fmt.Errorf("insert workflow template: %w", err)
	}

	warnIfSlow("create_workflow_template", start, 50*time.Millisecond)
	return nil
}

func (s *Storage) UpdateWorkflowTemplate(ctx context.Context, t *workflow.Template) error {
	tasks, err := encodeTasks(t)
	if err != nil {
		return err
	}

	err = s.pool.QueryRow(ctx,
		`UPDATE workflow_templates
			SET name = $1, description = $2, tasks = $3::jsonb, updated_at = NOW()
			WHERE uuid = $4
			RETURNING updated_at`,
		t.Name, t.Description, string(tasks), t.UUID,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: failed to update workflow template", err)
		return fmt.Errorf("update workflow template: %w", err)
	}
	return nil
}

func (s *Storage) GetWorkflowTemplate(ctx context.Context, id uuid.UUID) (*workflow.Template, error) {
	t, err := scanTemplate(s.pool.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM workflow_templates WHERE uuid = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to get workflow template", err)
		return nil, fmt.Errorf("get workflow template: %w", err)
	}
	return t, nil
}

func (s *Storage) DeleteWorkflowTemplate(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM workflow_templates WHERE uuid = $1`, id)
	if err != nil {
		logger.Error("Repository: failed to delete workflow template", err)
		return fmt.Errorf("delete workflow template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) ListWorkflowTemplates(ctx context.Context, userID string) ([]*workflow.Template, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+templateColumns+` FROM workflow_templates
			WHERE user_id = $1 ORDER BY created_at DESC, uuid`, userID)
	if err != nil {
		logger.Error("Repository: failed to list workflow templates", err)
		return nil, fmt.Errorf("list workflow templates: %w", err)
	}
	defer rows.Close()

	list := []*workflow.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			logger.Warn("Repository: failed to scan workflow template", zap.Error(err))
			continue
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list workflow templates: %w", err)
	}
	return list, nil
}
