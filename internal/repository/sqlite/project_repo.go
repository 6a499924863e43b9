package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"planboard/internal/models/project"
	repo "planboard/internal/repository"
	"time"

	"github.com/google/uuid"
)

const projectColumns = `uuid, user_id, title, description, status, start_date, end_date,
	COALESCE(share_token, ''), is_public, shared_at, created_at, updated_at`

func scanProject(s scanner) (*project.Project, error) {
	var (
		p                             project.Project
		start, end, sharedAt, updated sql.NullTime
	)
	err := s.Scan(&p.UUID, &p.UserID, &p.Title, &p.Description, &p.Status, &start, &end,
		&p.ShareToken, &p.IsPublic, &sharedAt, &p.CreatedAt, &updated)
	if err != nil {
		return nil, err
	}
	p.StartDate = fromNullTime(start)
	p.EndDate = fromNullTime(end)
	p.SharedAt = fromNullTime(sharedAt)
	p.UpdatedAt = fromNullTime(updated)
	return &p, nil
}

func (s *Storage) CreateProject(ctx context.Context, p *project.Project) error {
	p.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (uuid, user_id, title, description, status, start_date, end_date,
			share_token, is_public, shared_at, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		p.UUID.String(), p.UserID, p.Title, p.Description, string(p.Status),
		nullTime(p.StartDate), nullTime(p.EndDate), nullString(p.ShareToken), p.IsPublic,
		nullTime(p.SharedAt), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *Storage) UpdateProject(ctx context.Context, p *project.Project) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET title=?, description=?, status=?, start_date=?, end_date=?,
			share_token=?, is_public=?, shared_at=?, updated_at=?
		WHERE uuid=?`,
		p.Title, p.Description, string(p.Status), nullTime(p.StartDate), nullTime(p.EndDate),
		nullString(p.ShareToken), p.IsPublic, nullTime(p.SharedAt), now, p.UUID.String(),
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	p.UpdatedAt = &now
	return nil
}

func (s *Storage) getProject(ctx context.Context, where string, arg any) (*project.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *Storage) GetProject(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	return s.getProject(ctx, "uuid = ?", id.String())
}

func (s *Storage) GetProjectByShareToken(ctx context.Context, token string) (*project.Project, error) {
	if token == "" {
		return nil, repo.ErrNotFound
	}
	return s.getProject(ctx, "share_token = ?", token)
}

func (s *Storage) ListProjects(ctx context.Context, userID string) ([]*project.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = ? ORDER BY rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []*project.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// DeleteProject removes the project and everything hanging off it in one transaction.
func (s *Storage) DeleteProject(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	key := id.String()
	for _, q := range []string{
		`DELETE FROM tasks WHERE project_id = ?`,
		`DELETE FROM milestones WHERE project_id = ?`,
		`DELETE FROM comments WHERE project_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, key); err != nil {
			return fmt.Errorf("delete project children: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE uuid = ?`, key)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return tx.Commit()
}

const milestoneColumns = `uuid, project_id, title, date, completed, created_at`

func scanMilestone(s scanner) (*project.Milestone, error) {
	var m project.Milestone
	if err := s.Scan(&m.UUID, &m.ProjectID, &m.Title, &m.Date, &m.Completed, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Storage) CreateMilestone(ctx context.Context, m *project.Milestone) error {
	if _, err := s.GetProject(ctx, m.ProjectID); err != nil {
		return err
	}
	m.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `INSERT INTO milestones (`+milestoneColumns+`) VALUES (?,?,?,?,?,?)`,
		m.UUID.String(), m.ProjectID.String(), m.Title, m.Date.UTC(), m.Completed, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert milestone: %w", err)
	}
	return nil
}

func (s *Storage) UpdateMilestone(ctx context.Context, m *project.Milestone) error {
	res, err := s.db.ExecContext(ctx, `UPDATE milestones SET title=?, date=?, completed=? WHERE uuid=?`,
		m.Title, m.Date.UTC(), m.Completed, m.UUID.String())
	if err != nil {
		return fmt.Errorf("update milestone: %w", err)
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

func (s *Storage) GetMilestone(ctx context.Context, id uuid.UUID) (*project.Milestone, error) {
	m, err := scanMilestone(s.db.QueryRowContext(ctx, `SELECT `+milestoneColumns+` FROM milestones WHERE uuid = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get milestone: %w", err)
	}
	return m, nil
}

func (s *Storage) DeleteMilestone(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM milestones WHERE uuid = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete milestone: %w", err)
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

func (s *Storage) ListMilestones(ctx context.Context, projectID uuid.UUID) ([]*project.Milestone, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+milestoneColumns+` FROM milestones
		WHERE project_id = ? ORDER BY date, rowid`, projectID.String())
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	milestones := []*project.Milestone{}
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

func (s *Storage) CreateComment(ctx context.Context, c *project.Comment) error {
	if _, err := s.GetProject(ctx, c.ProjectID); err != nil {
		return err
	}
	c.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `INSERT INTO comments (uuid, project_id, content, author_name, created_at)
		VALUES (?,?,?,?,?)`, c.UUID.String(), c.ProjectID.String(), c.Content, c.AuthorName, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *Storage) ListComments(ctx context.Context, projectID uuid.UUID) ([]*project.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT uuid, project_id, content, author_name, created_at
		FROM comments WHERE project_id = ? ORDER BY rowid DESC`, projectID.String())
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []*project.Comment{}
	for rows.Next() {
		var c project.Comment
		if err := rows.Scan(&c.UUID, &c.ProjectID, &c.Content, &c.AuthorName, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
