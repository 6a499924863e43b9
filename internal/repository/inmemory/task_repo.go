package inmemory

import (
	"context"
	"planboard/internal/dates"
	"planboard/internal/logger"
	"planboard/internal/models/project"
	"planboard/internal/models/task"
	"planboard/internal/models/workflow"
	repo "planboard/internal/repository"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Storage keeps every entity in maps guarded by one RWMutex. Values are copied in and
// out so callers never share memory with the store.
type Storage struct {
	mtx        *sync.RWMutex
	tasks      map[uuid.UUID]task.Task
	taskIDs    []uuid.UUID
	projects   map[uuid.UUID]project.Project
	milestones map[uuid.UUID]project.Milestone
	comments   map[uuid.UUID][]project.Comment
	// workflow templates, in insertion order
	templates   map[uuid.UUID]workflow.Template
	templateIDs []uuid.UUID
}

func New() *Storage {
	return &Storage{
		mtx:        &sync.RWMutex{},
		tasks:      make(map[uuid.UUID]task.Task),
		taskIDs:    []uuid.UUID{},
		projects:   make(map[uuid.UUID]project.Project),
		milestones: make(map[uuid.UUID]project.Milestone),
		comments:   make(map[uuid.UUID][]project.Comment),
		templates:  make(map[uuid.UUID]workflow.Template),
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: in-memory storage is healthy")
	return nil
}

func (s *Storage) CreateTask(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	taskToCreate.CreatedAt = time.Now()
	taskToCreate.Version = 1

	s.tasks[taskToCreate.UUID] = taskToCreate.Clone()
	s.taskIDs = append(s.taskIDs, taskToCreate.UUID)
	return nil
}

func (s *Storage) UpdateTask(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.tasks[taskToUpdate.UUID]
	if !ok {
		return repo.ErrNotFound
	}
	if stored.Version != taskToUpdate.Version {
		logger.Warn("Repository: version conflict on task update",
			zap.String("task_id", taskToUpdate.UUID.String()),
			zap.Int("expected_version", taskToUpdate.Version),
			zap.Int("stored_version", stored.Version))
		return repo.ErrVersionConflict
	}

	now := time.Now()
	taskToUpdate.UpdatedAt = &now
	taskToUpdate.Version++
	s.tasks[taskToUpdate.UUID] = taskToUpdate.Clone()
	return nil
}

func (s *Storage) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := t.Clone()
	return &c, nil
}

func (s *Storage) DeleteTask(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return repo.ErrNotFound
	}
	s.deleteTaskLocked(id)
	return nil
}

func (s *Storage) deleteTaskLocked(id uuid.UUID) {
	delete(s.tasks, id)
	for ind, val := range s.taskIDs {
		if val == id {
			s.taskIDs = append(s.taskIDs[:ind], s.taskIDs[ind+1:]...)
			break
		}
	}
}

// selectTasks walks tasks in insertion order.
func (s *Storage) selectTasks(keep func(task.Task) bool, limit int) []*task.Task {
	res := []*task.Task{}
	for _, id := range s.taskIDs {
		if limit > 0 && len(res) >= limit {
			break
		}
		t := s.tasks[id]
		if !keep(t) {
			continue
		}
		c := t.Clone()
		res = append(res, &c)
	}
	return res
}

// ListUserTasks returns the user's standalone tasks, newest first.
func (s *Storage) ListUserTasks(ctx context.Context, userID string) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := s.selectTasks(func(t task.Task) bool {
		return t.ProjectID == nil && t.UserID == userID
	}, 0)
	slices.Reverse(res)
	return res, nil
}

// ListProjectTasks keeps creation order so workflow members stay together.
func (s *Storage) ListProjectTasks(ctx context.Context, projectID uuid.UUID) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.selectTasks(func(t task.Task) bool {
		return t.ProjectID != nil && *t.ProjectID == projectID
	}, 0), nil
}

func (s *Storage) DeleteWorkflowTasks(ctx context.Context, projectID uuid.UUID, workflowID string) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var ids []uuid.UUID
	for _, id := range s.taskIDs {
		t := s.tasks[id]
		if t.ProjectID != nil && *t.ProjectID == projectID && t.WorkflowID == workflowID {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		s.deleteTaskLocked(id)
	}
	return len(ids), nil
}

func (s *Storage) ListOverdueTasks(ctx context.Context, before time.Time, limit int) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	day := dates.Day(before)
	return s.selectTasks(func(t task.Task) bool {
		due := t.DueDate()
		return t.Status != task.StatusDone && due != nil && due.Before(day)
	}, limit), nil
}
