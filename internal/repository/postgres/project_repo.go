package postgres

import (
	"context"
	"errors"
	"fmt"
	"planboard/internal/logger"
	"planboard/internal/models/project"
	repo "planboard/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const projectColumns = `uuid, user_id, title, description, status, start_date, end_date,
	COALESCE(share_token, ''), is_public, shared_at, created_at, updated_at`

func scanProject(row rowScanner) (*project.Project, error) {
	p := &project.Project{}
	err := row.Scan(
		&p.UUID,
		&p.UserID,
		&p.Title,
		&p.Description,
		&p.Status,
		&p.StartDate,
		&p.EndDate,
		&p.ShareToken,
		&p.IsPublic,
		&p.SharedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Storage) CreateProject(ctx context.Context, p *project.Project) error {
	start := time.Now()

	query := `INSERT INTO projects
				(uuid, user_id, title, description, status, start_date, end_date, share_token, is_public, shared_at, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11)
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		p.UUID, p.UserID, p.Title, p.Description, p.Status, p.StartDate, p.EndDate,
		p.ShareToken, p.IsPublic, p.SharedAt, time.Now(),
	).Scan(&p.CreatedAt)
	if err != nil {
		logger.Error("Repository: failed to insert project", err)
		return fmt.Errorf("insert project: %w", err)
	}

	warnIfSlow("create_project", start, 50*time.Millisecond)
	return nil
}

func (s *Storage) UpdateProject(ctx context.Context, p *project.Project) error {
	start := time.Now()

	query := `UPDATE projects
			SET title = $1,
				description = $2,
				status = $3,
				start_date = $4,
				end_date = $5,
				share_token = NULLIF($6, ''),
				is_public = $7,
				shared_at = $8,
				updated_at = NOW()
			WHERE uuid = $9
			RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query,
		p.Title, p.Description, p.Status, p.StartDate, p.EndDate,
		p.ShareToken, p.IsPublic, p.SharedAt, p.UUID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: failed to update project", err)
		return fmt.Errorf("update project: %w", err)
	}

	warnIfSlow("update_project", start, 100*time.Millisecond)
	return nil
}

func (s *Storage) getProject(ctx context.Context, where string, arg any) (*project.Project, error) {
	p, err := scanProject(s.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to get project", err)
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *Storage) GetProject(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	return s.getProject(ctx, "uuid = $1", id)
}

func (s *Storage) GetProjectByShareToken(ctx context.Context, token string) (*project.Project, error) {
	if token == "" {
		return nil, repo.ErrNotFound
	}
	return s.getProject(ctx, "share_token = $1", token)
}

func (s *Storage) ListProjects(ctx context.Context, userID string) ([]*project.Project, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		logger.Error("Repository: failed to list projects", err)
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []*project.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			logger.Warn("Repository: failed to scan project", zap.Error(err))
			continue
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	warnIfSlow("list_projects", start, 100*time.Millisecond)
	return projects, nil
}

// DeleteProject relies on ON DELETE CASCADE for tasks, milestones and comments.
func (s *Storage) DeleteProject(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE uuid = $1`, id)
	if err != nil {
		logger.Error("Repository: failed to delete project", err)
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) CreateMilestone(ctx context.Context, m *project.Milestone) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO milestones (uuid, project_id, title, date, completed, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at`,
		m.UUID, m.ProjectID, m.Title, m.Date, m.Completed, time.Now(),
	).Scan(&m.CreatedAt)
	if err != nil {
		logger.Error("Repository: failed to insert milestone", err)
		return fmt.Errorf("insert milestone: %w", err)
	}
	return nil
}

func (s *Storage) UpdateMilestone(ctx context.Context, m *project.Milestone) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE milestones SET title = $1, date = $2, completed = $3 WHERE uuid = $4`,
		m.Title, m.Date, m.Completed, m.UUID)
	if err != nil {
		logger.Error("Repository: failed to update milestone", err)
		return fmt.Errorf("update milestone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) GetMilestone(ctx context.Context, id uuid.UUID) (*project.Milestone, error) {
	m := &project.Milestone{}
	err := s.pool.QueryRow(ctx,
		`SELECT uuid, project_id, title, date, completed, created_at FROM milestones WHERE uuid = $1`, id,
	).Scan(&m.UUID, &m.ProjectID, &m.Title, &m.Date, &m.Completed, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("get milestone: %w", err)
	}
	return m, nil
}

func (s *Storage) DeleteMilestone(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM milestones WHERE uuid = $1`, id)
	if err != nil {
		logger.Error("Repository: failed to delete milestone", err)
		return fmt.Errorf("delete milestone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) ListMilestones(ctx context.Context, projectID uuid.UUID) ([]*project.Milestone, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT uuid, project_id, title, date, completed, created_at FROM milestones
			WHERE project_id = $1 ORDER BY date, created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	milestones := []*project.Milestone{}
	for rows.Next() {
		m := &project.Milestone{}
		if err := rows.Scan(&m.UUID, &m.ProjectID, &m.Title, &m.Date, &m.Completed, &m.CreatedAt); err != nil {
			logger.Warn("Repository: failed to scan milestone", zap.Error(err))
			continue
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

func (s *Storage) CreateComment(ctx context.Context, c *project.Comment) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO comments (uuid, project_id, content, author_name, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at`,
		c.UUID, c.ProjectID, c.Content, c.AuthorName, time.Now(),
	).Scan(&c.CreatedAt)
	if err != nil {
		logger.Error("Repository: failed to insert comment", err)
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *Storage) ListComments(ctx context.Context, projectID uuid.UUID) ([]*project.Comment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT uuid, project_id, content, author_name, created_at FROM comments
			WHERE project_id = $1 ORDER BY seq DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []*project.Comment{}
	for rows.Next() {
		c := &project.Comment{}
		if err := rows.Scan(&c.UUID, &c.ProjectID, &c.Content, &c.AuthorName, &c.CreatedAt); err != nil {
			logger.Warn("Repository: failed to scan comment", zap.Error(err))
			continue
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
