package client

import (
	"context"
	"net/http"
	"planboard/internal/handlers/dto"
	"planboard/internal/models/project"
	"planboard/internal/models/task"
	"planboard/internal/models/workflow"
	"planboard/internal/timeline"
	"strconv"

	"github.com/google/uuid"
)

type taskEnvelope struct {
	Task task.Task `json:"task"`
}

type tasksEnvelope struct {
	Tasks []task.Task `json:"tasks"`
}

type projectEnvelope struct {
	Project project.Project `json:"project"`
}

type projectsEnvelope struct {
	Projects []project.Project `json:"projects"`
}

type milestoneEnvelope struct {
	Milestone project.Milestone `json:"milestone"`
}

type milestonesEnvelope struct {
	Milestones []project.Milestone `json:"milestones"`
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.url("health"), nil, nil)
}

func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	var out tasksEnvelope
	if err := c.do(ctx, http.MethodGet, c.url("tasks"), nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (task.Task, error) {
	var out taskEnvelope
	err := c.do(ctx, http.MethodPost, c.url("tasks"), req, &out)
	return out.Task, err
}

func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, patch dto.UpdateTaskRequest) (task.Task, error) {
	var out taskEnvelope
	err := c.do(ctx, http.MethodPatch, c.url("tasks", id.String()), patch, &out)
	return out.Task, err
}

func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, c.url("tasks", id.String()), nil, nil)
}

func (c *Client) ListProjects(ctx context.Context) ([]project.Project, error) {
	var out projectsEnvelope
	if err := c.do(ctx, http.MethodGet, c.url("projects"), nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

func (c *Client) GetProject(ctx context.Context, id uuid.UUID) (project.Project, error) {
	var out projectEnvelope
	err := c.do(ctx, http.MethodGet, c.url("projects", id.String()), nil, &out)
	return out.Project, err
}

func (c *Client) CreateProject(ctx context.Context, req dto.CreateProjectRequest) (project.Project, error) {
	var out projectEnvelope
	err := c.do(ctx, http.MethodPost, c.url("projects"), req, &out)
	return out.Project, err
}

func (c *Client) UpdateProject(ctx context.Context, id uuid.UUID, patch dto.UpdateProjectRequest) (project.Project, error) {
	var out projectEnvelope
	err := c.do(ctx, http.MethodPatch, c.url("projects", id.String()), patch, &out)
	return out.Project, err
}

func (c *Client) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, c.url("projects", id.String()), nil, nil)
}

func (c *Client) ListProjectTasks(ctx context.Context, projectID uuid.UUID) ([]task.Task, error) {
	var out tasksEnvelope
	if err := c.do(ctx, http.MethodGet, c.url("projects", projectID.String(), "tasks"), nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (c *Client) CreateProjectTask(ctx context.Context, projectID uuid.UUID, req dto.CreateTaskRequest) (task.Task, error) {
	var out taskEnvelope
	err := c.do(ctx, http.MethodPost, c.url("projects", projectID.String(), "tasks"), req, &out)
	return out.Task, err
}

func (c *Client) UpdateProjectTask(ctx context.Context, projectID, taskID uuid.UUID, patch dto.UpdateTaskRequest) (task.Task, error) {
	var out taskEnvelope
	err := c.do(ctx, http.MethodPatch, c.url("projects", projectID.String(), "tasks", taskID.String()), patch, &out)
	return out.Task, err
}

func (c *Client) DeleteProjectTask(ctx context.Context, projectID, taskID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, c.url("projects", projectID.String(), "tasks", taskID.String()), nil, nil)
}

// DeleteWorkflow removes every task of the workflow and returns how many were deleted.
func (c *Client) DeleteWorkflow(ctx context.Context, projectID uuid.UUID, workflowID string) (int, error) {
	var out struct {
		Deleted int `json:"deleted"`
	}
	err := c.do(ctx, http.MethodDelete, c.url("projects", projectID.String(), "workflows", workflowID), nil, &out)
	return out.Deleted, err
}

func (c *Client) ListMilestones(ctx context.Context, projectID uuid.UUID) ([]project.Milestone, error) {
	var out milestonesEnvelope
	if err := c.do(ctx, http.MethodGet, c.url("projects", projectID.String(), "milestones"), nil, &out); err != nil {
		return nil, err
	}
	return out.Milestones, nil
}

func (c *Client) CreateMilestone(ctx context.Context, projectID uuid.UUID, req dto.CreateMilestoneRequest) (project.Milestone, error) {
	var out milestoneEnvelope
	err := c.do(ctx, http.MethodPost, c.url("projects", projectID.String(), "milestones"), req, &out)
	return out.Milestone, err
}

func (c *Client) UpdateMilestone(ctx context.Context, projectID, milestoneID uuid.UUID, patch dto.UpdateMilestoneRequest) (project.Milestone, error) {
	var out milestoneEnvelope
	err := c.do(ctx, http.MethodPatch, c.url("projects", projectID.String(), "milestones", milestoneID.String()), patch, &out)
	return out.Milestone, err
}

func (c *Client) DeleteMilestone(ctx context.Context, projectID, milestoneID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, c.url("projects", projectID.String(), "milestones", milestoneID.String()), nil, nil)
}

// Timeline fetches the server-side layout; dayWidth <= 0 uses the server default.
func (c *Client) Timeline(ctx context.Context, projectID uuid.UUID, dayWidth float64) (timeline.Grid, error) {
	u := c.url("projects", projectID.String(), "timeline")
	if dayWidth > 0 {
		u += "?day_width=" + strconv.FormatFloat(dayWidth, 'f', -1, 64)
	}
	var out struct {
		Timeline timeline.Grid `json:"timeline"`
	}
	err := c.do(ctx, http.MethodGet, u, nil, &out)
	return out.Timeline, err
}

type templateEnvelope struct {
	Template workflow.Template `json:"workflow_template"`
}

// ListWorkflowTemplates returns the caller's saved templates; the built-in catalog ships
// with the binary.
func (c *Client) ListWorkflowTemplates(ctx context.Context) ([]workflow.Template, error) {
	var out struct {
		Custom []workflow.Template `json:"custom_workflows"`
	}
	if err := c.do(ctx, http.MethodGet, c.url("templates", "workflows"), nil, &out); err != nil {
		return nil, err
	}
	return out.Custom, nil
}

func (c *Client) CreateWorkflowTemplate(ctx context.Context, req dto.CreateWorkflowTemplateRequest) (workflow.Template, error) {
	var out templateEnvelope
	err := c.do(ctx, http.MethodPost, c.url("templates", "workflows"), req, &out)
	return out.Template, err
}

func (c *Client) UpdateWorkflowTemplate(ctx context.Context, id uuid.UUID, patch dto.UpdateWorkflowTemplateRequest) (workflow.Template, error) {
	var out templateEnvelope
	err := c.do(ctx, http.MethodPatch, c.url("templates", "workflows", id.String()), patch, &out)
	return out.Template, err
}

func (c *Client) DeleteWorkflowTemplate(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, c.url("templates", "workflows", id.String()), nil, nil)
}
