package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"planboard/internal/events"
	"planboard/internal/models/project"
	"planboard/internal/models/task"
	repo "planboard/internal/repository"
	"strings"

	"github.com/google/uuid"
)

const shareTokenBytes = 16

type ShareInfo struct {
	Token string `json:"share_token"`
	URL   string `json:"share_url"`
}

// ShareProject issues a fresh token; a previously shared link stops working.
func (s *Service) ShareProject(ctx context.Context, userID string, projectID uuid.UUID) (*ShareInfo, error) {
	p, err := s.ownProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	token, err := newShareToken()
	if err != nil {
		return nil, err
	}
	now := s.now()
	p.ShareToken = token
	p.IsPublic = true
	p.SharedAt = &now
	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, translate(err, ResourceProject, projectID.String(), "share project")
	}
	return &ShareInfo{Token: token, URL: s.shareBase + token}, nil
}

func (s *Service) UnshareProject(ctx context.Context, userID string, projectID uuid.UUID) error {
	p, err := s.ownProject(ctx, userID, projectID)
	if err != nil {
		return err
	}
	p.ShareToken = ""
	p.IsPublic = false
	p.SharedAt = nil
	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return translate(err, ResourceProject, projectID.String(), "unshare project")
	}
	return nil
}

// GetSharedProject is the read-only view behind a share link.
func (s *Service) GetSharedProject(ctx context.Context, token string) (*project.Project, error) {
	p, err := s.sharedProject(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.loadChildren(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListComments(ctx context.Context, token string) ([]*project.Comment, error) {
	p, err := s.sharedProject(ctx, token)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, p.UUID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *Service) AddComment(ctx context.Context, token, content, author string) (*project.Comment, error) {
	content, author = strings.TrimSpace(content), strings.TrimSpace(author)
	if content == "" {
		return nil, NewValidationError("content", "must not be empty")
	}
	if author == "" {
		return nil, NewValidationError("author_name", "must not be empty")
	}
	p, err := s.sharedProject(ctx, token)
	if err != nil {
		return nil, err
	}
	c := &project.Comment{
		UUID:       uuid.New(),
		ProjectID:  p.UUID,
		Content:    content,
		AuthorName: author,
		CreatedAt:  s.now(),
	}
	if err := s.repo.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	s.publish(events.Event{Type: events.CommentCreated, ProjectID: p.UUID.String(), Payload: c})
	return c, nil
}

// SetApproval records a reviewer's decision on a task of a shared project.
func (s *Service) SetApproval(ctx context.Context, token string, taskID uuid.UUID, status task.ApprovalStatus, reason string) (*task.Task, error) {
	if !status.Valid() {
		return nil, NewValidationError("approval_status", fmt.Sprintf("unknown status %q", status))
	}
	p, err := s.sharedProject(ctx, token)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, translate(err, ResourceTask, taskID.String(), "get task")
	}
	if t.ProjectID == nil || *t.ProjectID != p.UUID {
		return nil, NewForbidden(ResourceTask, taskID.String())
	}
	t.Normalize()
	return s.saveTask(ctx, t, task.WithApproval(status, strings.TrimSpace(reason)))
}

func (s *Service) sharedProject(ctx context.Context, token string) (*project.Project, error) {
	if token == "" {
		return nil, NewNotShared()
	}
	p, err := s.repo.GetProjectByShareToken(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotShared()
		}
		return nil, fmt.Errorf("get shared project: %w", err)
	}
	if !p.IsPublic {
		return nil, NewNotShared()
	}
	return p, nil
}

func newShareToken() (string, error) {
	b := make([]byte, shareTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
