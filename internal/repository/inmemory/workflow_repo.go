package inmemory

import (
	"context"
	"planboard/internal/models/workflow"
	repo "planboard/internal/repository"
	"slices"
	"time"

	"github.com/google/uuid"
)

func (s *Storage) CreateWorkflowTemplate(ctx context.Context, t *workflow.Template) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t.CreatedAt = time.Now()
	s.templates[t.UUID] = t.Clone()
	s.templateIDs = append(s.templateIDs, t.UUID)
	return nil
}

func (s *Storage) UpdateWorkflowTemplate(ctx context.Context, t *workflow.Template) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.templates[t.UUID]; !ok {
		return repo.ErrNotFound
	}
	now := time.Now()
	t.UpdatedAt = &now
	s.templates[t.UUID] = t.Clone()
	return nil
}

func (s *Storage) GetWorkflowTemplate(ctx context.Context, id uuid.UUID) (*workflow.Template, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := t.Clone()
	return &c, nil
}

func (s *Storage) DeleteWorkflowTemplate(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.templates[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.templates, id)
	s.templateIDs = slices.DeleteFunc(s.templateIDs, func(v uuid.UUID) bool { return v == id })
	return nil
}

func (s *Storage) ListWorkflowTemplates(ctx context.Context, userID string) ([]*workflow.Template, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*workflow.Template{}
	for _, id := range s.templateIDs {
		if t := s.templates[id]; t.UserID == userID {
			c := t.Clone()
			res = append(res, &c)
		}
	}
	slices.Reverse(res)
	return res, nil
}
