package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"planboard/internal/dates"
	"planboard/internal/models/project"
	"planboard/internal/models/task"
	"planboard/internal/models/workflow"
	"planboard/internal/richtext"
	"planboard/internal/templates"
	"strings"
	"time"
)

// Date accepts "2006-01-02" as well as RFC 3339 timestamps.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := dates.ParseDay(s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	d.Time = t
	return nil
}

// Ptr returns nil for a missing or empty date.
func (d *Date) Ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

type CreateTaskRequest struct {
	Text          string  `json:"text" validate:"required"`
	Description   *string `json:"description"`
	Status        *string `json:"status" validate:"omitempty,oneof=todo in-progress in_progress done"`
	Priority      *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Color         *string `json:"color" validate:"omitempty,hexcolor"`
	ScheduledDate *Date   `json:"scheduled_date"`
	StartDate     *Date   `json:"start_date"`
	EndDate       *Date   `json:"end_date"`
	WorkflowID    string  `json:"workflow_id,omitempty" validate:"omitempty,max=64"`
	WorkflowName  string  `json:"workflow_name,omitempty"`
}

func (r CreateTaskRequest) Options() []task.TaskOption {
	opts := taskOptions(nil, r.Description, r.Status, nil, r.Priority, r.Color, r.ScheduledDate, r.StartDate, r.EndDate)
	return append(opts, task.WithWorkflow(r.WorkflowID, r.WorkflowName))
}

// UpdateTaskRequest carries only the fields that changed.
type UpdateTaskRequest struct {
	Text          *string `json:"text" validate:"omitempty,min=1"`
	Description   *string `json:"description"`
	Status        *string `json:"status" validate:"omitempty,oneof=todo in-progress in_progress done"`
	Completed     *bool   `json:"completed"`
	Priority      *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Color         *string `json:"color" validate:"omitempty,hexcolor"`
	ScheduledDate *Date   `json:"scheduled_date"`
	StartDate     *Date   `json:"start_date"`
	EndDate       *Date   `json:"end_date"`
}

func (r UpdateTaskRequest) Options() []task.TaskOption {
	return taskOptions(r.Text, r.Description, r.Status, r.Completed, r.Priority, r.Color, r.ScheduledDate, r.StartDate, r.EndDate)
}

func taskOptions(text, description, status *string, completed *bool, priority, color *string, scheduled, start, end *Date) []task.TaskOption {
	var st *task.Status
	if status != nil {
		if parsed, ok := task.ParseStatus(*status); ok {
			st = &parsed
		}
	}
	var prio *task.Priority
	if priority != nil {
		p := task.Priority(*priority)
		prio = &p
	}
	return []task.TaskOption{
		task.WithText(text),
		task.WithDescription(description),
		task.WithStatus(st),
		task.WithCompleted(completed, st),
		task.WithPriority(prio),
		task.WithColor(color),
		task.WithScheduledDate(scheduled.Ptr()),
		task.WithStartDate(start.Ptr()),
		task.WithEndDate(end.Ptr()),
	}
}

type SubtaskProgress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

type TaskResponse struct {
	task.Task
	IsOverdue bool             `json:"is_overdue"`
	Subtasks  *SubtaskProgress `json:"subtasks,omitempty"`
}

func FromTask(t *task.Task, now time.Time) TaskResponse {
	resp := TaskResponse{Task: *t, IsOverdue: t.IsOverdue(now)}
	if strings.Contains(t.Description, "checkbox") {
		if done, total := richtext.SubtaskProgress(t.Description); total > 0 {
			resp.Subtasks = &SubtaskProgress{Done: done, Total: total}
		}
	}
	return resp
}

func FromTaskList(tasks []*task.Task, now time.Time) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, now)
	}
	return result
}

type CreateProjectRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=active completed archived"`
	StartDate   *Date   `json:"start_date"`
	EndDate     *Date   `json:"end_date"`
}

func (r CreateProjectRequest) Options() []project.ProjectOption {
	return projectOptions(nil, r.Description, r.Status, r.StartDate, r.EndDate)
}

type UpdateProjectRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=active completed archived"`
	StartDate   *Date   `json:"start_date"`
	EndDate     *Date   `json:"end_date"`
}

func (r UpdateProjectRequest) Options() []project.ProjectOption {
	return projectOptions(r.Title, r.Description, r.Status, r.StartDate, r.EndDate)
}

func projectOptions(title, description, status *string, start, end *Date) []project.ProjectOption {
	var st *project.Status
	if status != nil {
		s := project.Status(*status)
		st = &s
	}
	return []project.ProjectOption{
		project.WithTitle(title),
		project.WithDescription(description),
		project.WithStatus(st),
		project.WithDates(start.Ptr(), end.Ptr()),
	}
}

type Progress struct {
	Done    int `json:"done"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

type ProjectResponse struct {
	*project.Project
	Progress Progress `json:"progress"`
}

func FromProject(p *project.Project) ProjectResponse {
	done, total, percent := p.Progress()
	return ProjectResponse{Project: p, Progress: Progress{Done: done, Total: total, Percent: percent}}
}

func FromProjectList(projects []*project.Project) []ProjectResponse {
	result := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		result[i] = FromProject(p)
	}
	return result
}

type CreateMilestoneRequest struct {
	Title string `json:"title" validate:"required"`
	Date  *Date  `json:"date" validate:"required"`
}

type UpdateMilestoneRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=1"`
	Date      *Date   `json:"date"`
	Completed *bool   `json:"completed"`
}

func (r UpdateMilestoneRequest) Options() []project.MilestoneOption {
	return []project.MilestoneOption{
		project.WithMilestoneTitle(r.Title),
		project.WithMilestoneDate(r.Date.Ptr()),
		project.WithMilestoneCompleted(r.Completed),
	}
}

type ApplyWorkflowRequest struct {
	TemplateID         string `json:"template_id" validate:"required"`
	StartDate          *Date  `json:"start_date"`
	SkipNonWorkingDays bool   `json:"skip_non_working_days"`
}

type WorkflowStep struct {
	Title       string `json:"title" validate:"required"`
	Duration    int    `json:"duration" validate:"required,min=1,max=365"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	Description string `json:"description,omitempty"`
}

func steps(in []WorkflowStep) []templates.WorkflowTask {
	if in == nil {
		return nil
	}
	out := make([]templates.WorkflowTask, len(in))
	for i, s := range in {
		out[i] = templates.WorkflowTask{Title: s.Title, Duration: s.Duration, Color: s.Color, Description: s.Description}
	}
	return out
}

type CreateWorkflowTemplateRequest struct {
	Name        string         `json:"name" validate:"required"`
	Description string         `json:"description"`
	Tasks       []WorkflowStep `json:"tasks" validate:"required,min=1,dive"`
}

func (r CreateWorkflowTemplateRequest) Options() []workflow.TemplateOption {
	return []workflow.TemplateOption{
		workflow.WithDescription(&r.Description),
		workflow.WithTasks(steps(r.Tasks)),
	}
}

// UpdateWorkflowTemplateRequest replaces the step list only when tasks is sent.
type UpdateWorkflowTemplateRequest struct {
	Name        *string        `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string        `json:"description,omitempty"`
	Tasks       []WorkflowStep `json:"tasks,omitempty" validate:"omitempty,min=1,dive"`
}

func (r UpdateWorkflowTemplateRequest) Options() []workflow.TemplateOption {
	return []workflow.TemplateOption{
		workflow.WithName(r.Name),
		workflow.WithDescription(r.Description),
		workflow.WithTasks(steps(r.Tasks)),
	}
}

type CommentRequest struct {
	Content    string `json:"content" validate:"required"`
	AuthorName string `json:"author_name" validate:"required"`
}

type ApprovalRequest struct {
	Status string `json:"approval_status" validate:"required,oneof=none pending approved rejected"`
	Reason string `json:"rejection_reason"`
}
