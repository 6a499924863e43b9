package service

import (
	"context"
	"fmt"
	"planboard/internal/dates"
	"planboard/internal/events"
	"planboard/internal/models/project"
	"planboard/internal/models/task"
	"planboard/internal/templates"
	"planboard/internal/timeline"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (s *Service) ListProjects(ctx context.Context, userID string) ([]*project.Project, error) {
	projects, err := s.repo.ListProjects(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	for _, p := range projects {
		if err := s.loadChildren(ctx, p); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

// GetProject returns the project with its tasks and milestones.
func (s *Service) GetProject(ctx context.Context, userID string, id uuid.UUID) (*project.Project, error) {
	p, err := s.ownProject(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.loadChildren(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) CreateProject(ctx context.Context, userID, title string, options ...project.ProjectOption) (*project.Project, error) {
	p := &project.Project{
		UUID:       uuid.New(),
		UserID:     userID,
		Title:      strings.TrimSpace(title),
		Status:     project.StatusActive,
		Tasks:      []task.Task{},
		Milestones: []project.Milestone{},
		CreatedAt:  s.now(),
	}
	applyProject(p, options...)
	if err := checkProject(p); err != nil {
		return nil, err
	}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

func (s *Service) UpdateProject(ctx context.Context, userID string, id uuid.UUID, options ...project.ProjectOption) (*project.Project, error) {
	p, err := s.ownProject(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applyProject(p, options...)
	p.Title = strings.TrimSpace(p.Title)
	if err := checkProject(p); err != nil {
		return nil, err
	}
	now := s.now()
	p.UpdatedAt = &now
	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, translate(err, ResourceProject, id.String(), "update project")
	}
	if err := s.loadChildren(ctx, p); err != nil {
		return nil, err
	}
	s.publish(events.Event{Type: events.ProjectUpdated, ProjectID: id.String(), Payload: p})
	return p, nil
}

func (s *Service) DeleteProject(ctx context.Context, userID string, id uuid.UUID) error {
	if _, err := s.ownProject(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return translate(err, ResourceProject, id.String(), "delete project")
	}
	s.publish(events.Event{Type: events.ProjectDeleted, ProjectID: id.String(), Payload: map[string]string{"id": id.String()}})
	return nil
}

func (s *Service) ListProjectTasks(ctx context.Context, userID string, projectID uuid.UUID) ([]*task.Task, error) {
	if _, err := s.ownProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListProjectTasks(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project tasks: %w", err)
	}
	for _, t := range tasks {
		t.Normalize()
	}
	return tasks, nil
}

func (s *Service) CreateProjectTask(ctx context.Context, userID string, projectID uuid.UUID, text string, options ...task.TaskOption) (*task.Task, error) {
	p, err := s.ownProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	t := s.newTask(p.UserID, &p.UUID, text)
	task.Apply(t, options...)
	if err := checkTask(t); err != nil {
		return nil, err
	}
	if err := s.repo.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("create project task: %w", err)
	}
	s.publish(events.Event{Type: events.TaskCreated, ProjectID: projectID.String(), Payload: t})
	return t, nil
}

func (s *Service) UpdateProjectTask(ctx context.Context, userID string, projectID, taskID uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	t, err := s.projectTask(ctx, userID, projectID, taskID)
	if err != nil {
		return nil, err
	}
	return s.saveTask(ctx, t, options...)
}

func (s *Service) DeleteProjectTask(ctx context.Context, userID string, projectID, taskID uuid.UUID) error {
	if _, err := s.projectTask(ctx, userID, projectID, taskID); err != nil {
		return err
	}
	if err := s.repo.DeleteTask(ctx, taskID); err != nil {
		return translate(err, ResourceTask, taskID.String(), "delete project task")
	}
	s.publish(events.Event{Type: events.TaskDeleted, ProjectID: projectID.String(), Payload: map[string]string{"id": taskID.String()}})
	return nil
}

// ApplyWorkflowTemplate expands a workflow template from start into project tasks that
// share one workflow id.
func (s *Service) ApplyWorkflowTemplate(ctx context.Context, userID string, projectID uuid.UUID, templateID string, start *time.Time, opts templates.ExpandOptions) ([]*task.Task, error) {
	p, err := s.ownProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	wf, err := s.findWorkflow(ctx, userID, templateID)
	if err != nil {
		return nil, err
	}
	day := dates.Day(s.now())
	if start != nil && !start.IsZero() {
		day = dates.Day(*start)
	}
	if opts.SkipNonWorkingDays && opts.Holidays == nil {
		opts.Holidays = s.holidays
	}

	planned := templates.Expand(wf, day, opts)
	created := make([]*task.Task, 0, len(planned))
	for _, pt := range planned {
		t := s.newTask(p.UserID, &p.UUID, pt.Text)
		t.Description = pt.Description
		t.Color = pt.Color
		startDay, endDay := pt.Start, pt.End
		t.StartDate, t.EndDate = &startDay, &endDay
		t.WorkflowID, t.WorkflowName = pt.WorkflowID, pt.WorkflowName
		t.Normalize()
		if err := s.repo.CreateTask(ctx, t); err != nil {
			return created, fmt.Errorf("create workflow task: %w", err)
		}
		s.publish(events.Event{Type: events.TaskCreated, ProjectID: projectID.String(), Payload: t})
		created = append(created, t)
	}
	return created, nil
}

// DeleteWorkflow removes every task of the workflow and returns how many were deleted.
func (s *Service) DeleteWorkflow(ctx context.Context, userID string, projectID uuid.UUID, workflowID string) (int, error) {
	if _, err := s.ownProject(ctx, userID, projectID); err != nil {
		return 0, err
	}
	n, err := s.repo.DeleteWorkflowTasks(ctx, projectID, workflowID)
	if err != nil {
		return 0, fmt.Errorf("delete workflow: %w", err)
	}
	if n == 0 {
		return 0, NewNotFound(ResourceWorkflow, workflowID)
	}
	s.publish(events.Event{Type: events.WorkflowDeleted, ProjectID: projectID.String(),
		Payload: map[string]any{"workflow_id": workflowID, "deleted": n}})
	return n, nil
}

type TimelineOptions struct {
	DayWidth float64
	// Collapsed holds workflow ids rendered as a header only.
	Collapsed map[string]bool
}

// Timeline loads the project and lays out its grid.
func (s *Service) Timeline(ctx context.Context, userID string, projectID uuid.UUID, opts TimelineOptions) (*project.Project, timeline.Grid, error) {
	p, err := s.GetProject(ctx, userID, projectID)
	if err != nil {
		return nil, timeline.Grid{}, err
	}
	return p, s.layout(p, opts), nil
}

func (s *Service) layout(p *project.Project, opts TimelineOptions) timeline.Grid {
	return timeline.Layout(p.Tasks, p.Milestones, timeline.Options{
		Now:          s.now(),
		DayWidth:     opts.DayWidth,
		Holidays:     s.holidays,
		ProjectStart: p.StartDate,
		ProjectEnd:   p.EndDate,
		Collapsed:    opts.Collapsed,
	})
}

func (s *Service) ownProject(ctx context.Context, userID string, id uuid.UUID) (*project.Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, translate(err, ResourceProject, id.String(), "get project")
	}
	if p.UserID != userID {
		return nil, NewForbidden(ResourceProject, id.String())
	}
	return p, nil
}

func (s *Service) projectTask(ctx context.Context, userID string, projectID, taskID uuid.UUID) (*task.Task, error) {
	if _, err := s.ownProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	t, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, translate(err, ResourceTask, taskID.String(), "get task")
	}
	if t.ProjectID == nil || *t.ProjectID != projectID {
		return nil, NewNotFound(ResourceTask, taskID.String())
	}
	t.Normalize()
	return t, nil
}

func (s *Service) loadChildren(ctx context.Context, p *project.Project) error {
	tasks, err := s.repo.ListProjectTasks(ctx, p.UUID)
	if err != nil {
		return fmt.Errorf("load project tasks: %w", err)
	}
	milestones, err := s.repo.ListMilestones(ctx, p.UUID)
	if err != nil {
		return fmt.Errorf("load milestones: %w", err)
	}
	p.Tasks = make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		t.Normalize()
		p.Tasks = append(p.Tasks, *t)
	}
	p.Milestones = make([]project.Milestone, 0, len(milestones))
	for _, m := range milestones {
		p.Milestones = append(p.Milestones, *m)
	}
	return nil
}

func applyProject(p *project.Project, options ...project.ProjectOption) {
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
}

func checkProject(p *project.Project) error {
	if p.Title == "" {
		return NewValidationError("title", "must not be empty")
	}
	if p.StartDate != nil && p.EndDate != nil && dates.Day(*p.EndDate).Before(dates.Day(*p.StartDate)) {
		return NewValidationError("end_date", "must not be before start_date")
	}
	return nil
}
