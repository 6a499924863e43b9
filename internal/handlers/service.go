package handlers

import (
	"context"
	"planboard/internal/calendar"
	"planboard/internal/models/project"
	"planboard/internal/models/task"
	"planboard/internal/models/workflow"
	"planboard/internal/service"
	"planboard/internal/templates"
	"planboard/internal/timeline"
	"time"

	"github.com/google/uuid"
)

type Service interface {
	HealthCheck(context.Context) error

	ListTasks(ctx context.Context, userID string) ([]*task.Task, error)
	CreateTask(ctx context.Context, userID, text string, options ...task.TaskOption) (*task.Task, error)
	UpdateTask(ctx context.Context, userID string, id uuid.UUID, options ...task.TaskOption) (*task.Task, error)
	DeleteTask(ctx context.Context, userID string, id uuid.UUID) error
	ImportTasks(ctx context.Context, userID string, evts []calendar.Event) ([]*task.Task, error)

	ListProjects(ctx context.Context, userID string) ([]*project.Project, error)
	GetProject(ctx context.Context, userID string, id uuid.UUID) (*project.Project, error)
	CreateProject(ctx context.Context, userID, title string, options ...project.ProjectOption) (*project.Project, error)
	UpdateProject(ctx context.Context, userID string, id uuid.UUID, options ...project.ProjectOption) (*project.Project, error)
	DeleteProject(ctx context.Context, userID string, id uuid.UUID) error

	ListProjectTasks(ctx context.Context, userID string, projectID uuid.UUID) ([]*task.Task, error)
	CreateProjectTask(ctx context.Context, userID string, projectID uuid.UUID, text string, options ...task.TaskOption) (*task.Task, error)
	UpdateProjectTask(ctx context.Context, userID string, projectID, taskID uuid.UUID, options ...task.TaskOption) (*task.Task, error)
	DeleteProjectTask(ctx context.Context, userID string, projectID, taskID uuid.UUID) error
	ApplyWorkflowTemplate(ctx context.Context, userID string, projectID uuid.UUID, templateID string, start *time.Time, opts templates.ExpandOptions) ([]*task.Task, error)
	DeleteWorkflow(ctx context.Context, userID string, projectID uuid.UUID, workflowID string) (int, error)
	Timeline(ctx context.Context, userID string, projectID uuid.UUID, opts service.TimelineOptions) (*project.Project, timeline.Grid, error)

	ListMilestones(ctx context.Context, userID string, projectID uuid.UUID) ([]*project.Milestone, error)
	CreateMilestone(ctx context.Context, userID string, projectID uuid.UUID, title string, date time.Time) (*project.Milestone, error)
	UpdateMilestone(ctx context.Context, userID string, projectID, milestoneID uuid.UUID, options ...project.MilestoneOption) (*project.Milestone, error)
	DeleteMilestone(ctx context.Context, userID string, projectID, milestoneID uuid.UUID) error

	ListWorkflowTemplates(ctx context.Context, userID string) ([]*workflow.Template, error)
	CreateWorkflowTemplate(ctx context.Context, userID, name string, options ...workflow.TemplateOption) (*workflow.Template, error)
	UpdateWorkflowTemplate(ctx context.Context, userID string, id uuid.UUID, options ...workflow.TemplateOption) (*workflow.Template, error)
	DeleteWorkflowTemplate(ctx context.Context, userID string, id uuid.UUID) error

	ShareProject(ctx context.Context, userID string, projectID uuid.UUID) (*service.ShareInfo, error)
	UnshareProject(ctx context.Context, userID string, projectID uuid.UUID) error
	GetSharedProject(ctx context.Context, token string) (*project.Project, error)
	ListComments(ctx context.Context, token string) ([]*project.Comment, error)
	AddComment(ctx context.Context, token, content, author string) (*project.Comment, error)
	SetApproval(ctx context.Context, token string, taskID uuid.UUID, status task.ApprovalStatus, reason string) (*task.Task, error)
}

var _ Service = (*service.Service)(nil)
