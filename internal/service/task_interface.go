package service

import (
	"context"
	"planboard/internal/models/project"
	"planboard/internal/models/task"
	"planboard/internal/models/workflow"
	"time"

	"github.com/google/uuid"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	CreateTask(context.Context, *task.Task) error
	UpdateTask(context.Context, *task.Task) error
	GetTask(context.Context, uuid.UUID) (*task.Task, error)
	DeleteTask(context.Context, uuid.UUID) error
	ListUserTasks(ctx context.Context, userID string) ([]*task.Task, error)
	ListProjectTasks(ctx context.Context, projectID uuid.UUID) ([]*task.Task, error)
	DeleteWorkflowTasks(ctx context.Context, projectID uuid.UUID, workflowID string) (int, error)
	// ListOverdueTasks returns unfinished tasks whose end (or scheduled) date is before the given day.
	ListOverdueTasks(ctx context.Context, before time.Time, limit int) ([]*task.Task, error)
}

type ProjectRepository interface {
	CreateProject(context.Context, *project.Project) error
	UpdateProject(context.Context, *project.Project) error
	GetProject(context.Context, uuid.UUID) (*project.Project, error)
	GetProjectByShareToken(ctx context.Context, token string) (*project.Project, error)
	ListProjects(ctx context.Context, userID string) ([]*project.Project, error)
	DeleteProject(context.Context, uuid.UUID) error
}

type MilestoneRepository interface {
	CreateMilestone(context.Context, *project.Milestone) error
	UpdateMilestone(context.Context, *project.Milestone) error
	GetMilestone(context.Context, uuid.UUID) (*project.Milestone, error)
	DeleteMilestone(context.Context, uuid.UUID) error
	ListMilestones(ctx context.Context, projectID uuid.UUID) ([]*project.Milestone, error)
}

type CommentRepository interface {
	CreateComment(context.Context, *project.Comment) error
	ListComments(ctx context.Context, projectID uuid.UUID) ([]*project.Comment, error)
}

type WorkflowTemplateRepository interface {
	CreateWorkflowTemplate(context.Context, *workflow.Template) error
	UpdateWorkflowTemplate(context.Context, *workflow.Template) error
	GetWorkflowTemplate(context.Context, uuid.UUID) (*workflow.Template, error)
	DeleteWorkflowTemplate(context.Context, uuid.UUID) error
	// ListWorkflowTemplates returns the user's templates, newest first.
	ListWorkflowTemplates(ctx context.Context, userID string) ([]*workflow.Template, error)
}

// Repository is implemented by every storage backend.
type Repository interface {
	TaskRepository
	ProjectRepository
	MilestoneRepository
	CommentRepository
	WorkflowTemplateRepository
}
