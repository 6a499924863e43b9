package inmemory

import (
	"context"
	"planboard/internal/models/project"
	repo "planboard/internal/repository"
	"sort"
	"time"

	"github.com/google/uuid"
)

func cloneProject(p project.Project) *project.Project {
	c := p
	c.Tasks = nil
	c.Milestones = nil
	return &c
}

func (s *Storage) CreateProject(ctx context.Context, p *project.Project) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	p.CreatedAt = time.Now()
	s.projects[p.UUID] = *cloneProject(*p)
	return nil
}

func (s *Storage) UpdateProject(ctx context.Context, p *project.Project) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.projects[p.UUID]; !ok {
		return repo.ErrNotFound
	}
	now := time.Now()
	p.UpdatedAt = &now
	s.projects[p.UUID] = *cloneProject(*p)
	return nil
}

func (s *Storage) GetProject(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneProject(p), nil
}

func (s *Storage) GetProjectByShareToken(ctx context.Context, token string) (*project.Project, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if token == "" {
		return nil, repo.ErrNotFound
	}
	for _, p := range s.projects {
		if p.ShareToken == token {
			return cloneProject(p), nil
		}
	}
	return nil, repo.ErrNotFound
}

// ListProjects returns the user's projects, newest first.
func (s *Storage) ListProjects(ctx context.Context, userID string) ([]*project.Project, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*project.Project{}
	for _, p := range s.projects {
		if p.UserID == userID {
			res = append(res, cloneProject(p))
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

// DeleteProject removes the project with its tasks, milestones and comments.
func (s *Storage) DeleteProject(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.projects[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.projects, id)
	delete(s.comments, id)
	for mid, m := range s.milestones {
		if m.ProjectID == id {
			delete(s.milestones, mid)
		}
	}
	var taskIDs []uuid.UUID
	for _, tid := range s.taskIDs {
		if pid := s.tasks[tid].ProjectID; pid != nil && *pid == id {
			taskIDs = append(taskIDs, tid)
		}
	}
	for _, tid := range taskIDs {
		s.deleteTaskLocked(tid)
	}
	return nil
}

func (s *Storage) CreateMilestone(ctx context.Context, m *project.Milestone) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.projects[m.ProjectID]; !ok {
		return repo.ErrNotFound
	}
	m.CreatedAt = time.Now()
	s.milestones[m.UUID] = *m
	return nil
}

func (s *Storage) UpdateMilestone(ctx context.Context, m *project.Milestone) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.milestones[m.UUID]; !ok {
		return repo.ErrNotFound
	}
	s.milestones[m.UUID] = *m
	return nil
}

func (s *Storage) GetMilestone(ctx context.Context, id uuid.UUID) (*project.Milestone, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	m, ok := s.milestones[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &m, nil
}

func (s *Storage) DeleteMilestone(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.milestones[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.milestones, id)
	return nil
}

// ListMilestones orders by date, then creation.
func (s *Storage) ListMilestones(ctx context.Context, projectID uuid.UUID) ([]*project.Milestone, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*project.Milestone{}
	for _, m := range s.milestones {
		if m.ProjectID == projectID {
			c := m
			res = append(res, &c)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].Date.Equal(res[j].Date) {
			return res[i].Date.Before(res[j].Date)
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res, nil
}

func (s *Storage) CreateComment(ctx context.Context, c *project.Comment) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.projects[c.ProjectID]; !ok {
		return repo.ErrNotFound
	}
	c.CreatedAt = time.Now()
	s.comments[c.ProjectID] = append(s.comments[c.ProjectID], *c)
	return nil
}

// ListComments returns newest first.
func (s *Storage) ListComments(ctx context.Context, projectID uuid.UUID) ([]*project.Comment, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stored := s.comments[projectID]
	res := make([]*project.Comment, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		c := stored[i]
		res = append(res, &c)
	}
	return res, nil
}
