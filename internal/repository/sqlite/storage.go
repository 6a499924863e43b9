// Package sqlite is the single-file storage backend used by local installs.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"planboard/internal/logger"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	uuid        TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'active',
	start_date  DATETIME,
	end_date    DATETIME,
	share_token TEXT UNIQUE,
	is_public   INTEGER NOT NULL DEFAULT 0,
	shared_at   DATETIME,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME
);

CREATE TABLE IF NOT EXISTS tasks (
	uuid             TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL DEFAULT '',
	project_id       TEXT,
	text             TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'todo',
	completed        INTEGER NOT NULL DEFAULT 0,
	priority         TEXT NOT NULL DEFAULT 'medium',
	color            TEXT NOT NULL DEFAULT '',
	scheduled_date   DATETIME,
	start_date       DATETIME,
	end_date         DATETIME,
	workflow_id      TEXT NOT NULL DEFAULT '',
	workflow_name    TEXT NOT NULL DEFAULT '',
	approval_status  TEXT NOT NULL DEFAULT 'none',
	rejection_reason TEXT NOT NULL DEFAULT '',
	created_at       DATETIME NOT NULL,
	updated_at       DATETIME,
	version          INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id);

CREATE TABLE IF NOT EXISTS milestones (
	uuid       TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	title      TEXT NOT NULL,
	date       DATETIME NOT NULL,
	completed  INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS comments (
	uuid        TEXT PRIMARY KEY,
	project_id  TEXT NOT NULL,
	content     TEXT NOT NULL,
	author_name TEXT NOT NULL,
	created_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS workflow_templates (
	uuid        TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	tasks       TEXT NOT NULL DEFAULT '[]',
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME
);

CREATE INDEX IF NOT EXISTS idx_workflow_templates_user ON workflow_templates(user_id);
`

type Storage struct {
	db *sql.DB
}

// New opens (or creates) the database at path and ensures the schema exists.
func New(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // prevent SQLITE_BUSY
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	logger.Info("Repository: opened SQLite database", zap.String("path", path))
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error { return s.db.Close() }

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: sqlite ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
