package sqlite_test

import (
	"context"
	"path/filepath"
	"planboard/internal/dates"
	"planboard/internal/models/project"
	"planboard/internal/models/task"
	"planboard/internal/models/workflow"
	"planboard/internal/repository"
	"planboard/internal/repository/sqlite"
	"planboard/internal/service"
	"planboard/internal/templates"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ service.Repository = (*sqlite.Storage)(nil)

func openStorage(t *testing.T) *sqlite.Storage {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "planboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorage_TaskRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStorage(t)
	require.NoError(t, s.HealthCheck(ctx))

	scheduled := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	tk := &task.Task{
		UUID:           uuid.New(),
		UserID:         "u1",
		Text:           "Dentist",
		Status:         task.StatusInProgress,
		Priority:       task.PriorityHigh,
		ScheduledDate:  &scheduled,
		ApprovalStatus: task.ApprovalNone,
	}
	require.NoError(t, s.CreateTask(ctx, tk))

	got, err := s.GetTask(ctx, tk.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Dentist", got.Text)
	assert.Equal(t, task.StatusInProgress, got.Status)
	assert.Equal(t, task.PriorityHigh, got.Priority)
	assert.Nil(t, got.ProjectID)
	require.NotNil(t, got.ScheduledDate)
	assert.True(t, scheduled.Equal(*got.ScheduledDate))
	assert.Equal(t, 1, got.Version)

	got.SetStatus(task.StatusDone)
	require.NoError(t, s.UpdateTask(ctx, got))
	assert.Equal(t, 2, got.Version)

	reread, err := s.GetTask(ctx, tk.UUID)
	require.NoError(t, err)
	assert.True(t, reread.Completed)
	assert.NotNil(t, reread.UpdatedAt)

	assert.ErrorIs(t, s.UpdateTask(ctx, tk), repository.ErrVersionConflict)
	assert.ErrorIs(t, s.UpdateTask(ctx, &task.Task{UUID: uuid.New()}), repository.ErrNotFound)

	require.NoError(t, s.DeleteTask(ctx, tk.UUID))
	_, err = s.GetTask(ctx, tk.UUID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStorage_ProjectTasksAndCascade(t *testing.T) {
	ctx := context.Background()
	s := openStorage(t)

	p := &project.Project{UUID: uuid.New(), UserID: "u1", Title: "Site", Status: project.StatusActive}
	require.NoError(t, s.CreateProject(ctx, p))

	for _, text := range []string{"a", "b", "c"} {
		tk := &task.Task{UUID: uuid.New(), ProjectID: &p.UUID, Text: text, Status: task.StatusTodo,
			Priority: task.PriorityMedium, ApprovalStatus: task.ApprovalNone, WorkflowID: "wf"}
		require.NoError(t, s.CreateTask(ctx, tk))
	}
	tasks, err := s.ListProjectTasks(ctx, p.UUID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "a", tasks[0].Text)
	require.NotNil(t, tasks[0].ProjectID)
	assert.Equal(t, p.UUID, *tasks[0].ProjectID)

	m := &project.Milestone{UUID: uuid.New(), ProjectID: p.UUID, Title: "Go live", Date: dates.MustDay("2024-06-01")}
	require.NoError(t, s.CreateMilestone(ctx, m))
	require.NoError(t, s.CreateComment(ctx, &project.Comment{UUID: uuid.New(), ProjectID: p.UUID, Content: "nice", AuthorName: "Kim"}))

	projects, err := s.ListProjects(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, projects, 1)

	require.NoError(t, s.DeleteProject(ctx, p.UUID))
	tasks, err = s.ListProjectTasks(ctx, p.UUID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	_, err = s.GetMilestone(ctx, m.UUID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.DeleteProject(ctx, p.UUID), repository.ErrNotFound)
}

func TestStorage_ShareToken(t *testing.T) {
	ctx := context.Background()
	s := openStorage(t)

	a := &project.Project{UUID: uuid.New(), UserID: "u1", Title: "A", Status: project.StatusActive}
	b := &project.Project{UUID: uuid.New(), UserID: "u1", Title: "B", Status: project.StatusActive}
	require.NoError(t, s.CreateProject(ctx, a))
	// two unshared projects must not collide on the unique token
	require.NoError(t, s.CreateProject(ctx, b))

	now := time.Now()
	a.ShareToken, a.IsPublic, a.SharedAt = "token-a", true, &now
	require.NoError(t, s.UpdateProject(ctx, a))

	got, err := s.GetProjectByShareToken(ctx, "token-a")
	require.NoError(t, err)
	assert.Equal(t, a.UUID, got.UUID)
	assert.True(t, got.IsPublic)
	assert.NotNil(t, got.SharedAt)

	_, err = s.GetProjectByShareToken(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStorage_OverdueAndWorkflow(t *testing.T) {
	ctx := context.Background()
	s := openStorage(t)
	p := &project.Project{UUID: uuid.New(), UserID: "u1", Title: "P", Status: project.StatusActive}
	require.NoError(t, s.CreateProject(ctx, p))

	late := dates.MustDay("2024-03-01")
	future := dates.MustDay("2024-04-01")
	for _, tk := range []*task.Task{
		{UUID: uuid.New(), ProjectID: &p.UUID, Text: "late", Status: task.StatusTodo, Priority: task.PriorityLow, ApprovalStatus: task.ApprovalNone, StartDate: &late, EndDate: &late, WorkflowID: "wf"},
		{UUID: uuid.New(), ProjectID: &p.UUID, Text: "future", Status: task.StatusTodo, Priority: task.PriorityLow, ApprovalStatus: task.ApprovalNone, StartDate: &future, EndDate: &future, WorkflowID: "wf"},
		{UUID: uuid.New(), ProjectID: &p.UUID, Text: "done", Status: task.StatusDone, Completed: true, Priority: task.PriorityLow, ApprovalStatus: task.ApprovalNone, EndDate: &late},
	} {
		require.NoError(t, s.CreateTask(ctx, tk))
	}

	overdue, err := s.ListOverdueTasks(ctx, dates.MustDay("2024-03-10"), 10)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "late", overdue[0].Text)

	n, err := s.DeleteWorkflowTasks(ctx, p.UUID, "wf")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStorage_WorkflowTemplates(t *testing.T) {
	ctx := context.Background()
	s := openStorage(t)

	tpl := &workflow.Template{
		UUID:        uuid.New(),
		UserID:      "u1",
		Name:        "Release",
		Description: "cut and ship",
		Tasks:       []templates.WorkflowTask{{Title: "Cut branch", Duration: 1, Color: "#3b82f6"}, {Title: "Ship", Duration: 2}},
	}
	require.NoError(t, s.CreateWorkflowTemplate(ctx, tpl))
	require.NoError(t, s.CreateWorkflowTemplate(ctx, &workflow.Template{UUID: uuid.New(), UserID: "u1", Name: "Empty"}))
	require.NoError(t, s.CreateWorkflowTemplate(ctx, &workflow.Template{UUID: uuid.New(), UserID: "u2", Name: "Other"}))

	got, err := s.GetWorkflowTemplate(ctx, tpl.UUID)
	require.NoError(t, err)
	assert.Equal(t, tpl.Tasks, got.Tasks)
	assert.Nil(t, got.UpdatedAt)

	got.Name = "Hotfix"
	require.NoError(t, s.UpdateWorkflowTemplate(ctx, got))

	list, err := s.ListWorkflowTemplates(ctx, "u1")
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, l := range list {
		names = append(names, l.Name)
	}
	assert.ElementsMatch(t, []string{"Hotfix", "Empty"}, names)

	require.NoError(t, s.DeleteWorkflowTemplate(ctx, tpl.UUID))
	_, err = s.GetWorkflowTemplate(ctx, tpl.UUID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.UpdateWorkflowTemplate(ctx, tpl), repository.ErrNotFound)
}
