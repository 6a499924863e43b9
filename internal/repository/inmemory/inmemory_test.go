package inmemory_test

import (
	"context"
	"fmt"
	"planboard/internal/dates"
	"planboard/internal/models/project"
	"planboard/internal/models/task"
	"planboard/internal/models/workflow"
	"planboard/internal/repository"
	"planboard/internal/repository/inmemory"
	"planboard/internal/service"
	"planboard/internal/templates"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ service.Repository = (*inmemory.Storage)(nil)

func day(s string) *time.Time {
	d := dates.MustDay(s)
	return &d
}

func newTask(text string) *task.Task {
	return &task.Task{UUID: uuid.New(), UserID: "u1", Text: text, Status: task.StatusTodo, Priority: task.PriorityMedium}
}

func TestStorage_HealthCheck(t *testing.T) {
	assert.NoError(t, inmemory.New().HealthCheck(context.Background()))
}

func TestStorage_CreateAndGetTask(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.New()

	taskToCreate := newTask("Write report")
	require.NoError(t, storage.CreateTask(ctx, taskToCreate))
	assert.False(t, taskToCreate.CreatedAt.IsZero())
	assert.Equal(t, 1, taskToCreate.Version)

	got, err := storage.GetTask(ctx, taskToCreate.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Text)

	// returned values are copies
	got.Text = "mutated"
	again, err := storage.GetTask(ctx, taskToCreate.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", again.Text)

	_, err = storage.GetTask(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStorage_UpdateTask_Versioning(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.New()

	taskToCreate := newTask("Versioned")
	require.NoError(t, storage.CreateTask(ctx, taskToCreate))

	v1, err := storage.GetTask(ctx, taskToCreate.UUID)
	require.NoError(t, err)
	stale := v1.Clone()

	v1.Text = "Updated"
	require.NoError(t, storage.UpdateTask(ctx, v1))
	assert.Equal(t, 2, v1.Version)
	assert.NotNil(t, v1.UpdatedAt)

	stale.Text = "Stale write"
	err = storage.UpdateTask(ctx, &stale)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)

	err = storage.UpdateTask(ctx, newTask("missing"))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStorage_ListUserTasks(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.New()
	projectID := uuid.New()

	first, second := newTask("first"), newTask("second")
	other := newTask("other user")
	other.UserID = "u2"
	inProject := newTask("project task")
	inProject.ProjectID = &projectID
	for _, tk := range []*task.Task{first, second, other, inProject} {
		require.NoError(t, storage.CreateTask(ctx, tk))
	}

	got, err := storage.ListUserTasks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Text)
	assert.Equal(t, "first", got[1].Text)

	byProject, err := storage.ListProjectTasks(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, byProject, 1)
	assert.Equal(t, "project task", byProject[0].Text)
}

func TestStorage_DeleteWorkflowTasks(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.New()
	projectID := uuid.New()

	for i := 0; i < 5; i++ {
		tk := newTask(fmt.Sprintf("Task %d", i))
		tk.ProjectID = &projectID
		if i%2 == 0 {
			tk.WorkflowID = "wf-1"
		}
		require.NoError(t, storage.CreateTask(ctx, tk))
	}

	n, err := storage.DeleteWorkflowTasks(ctx, projectID, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rest, err := storage.ListProjectTasks(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, "Task 1", rest[0].Text)
	assert.Equal(t, "Task 3", rest[1].Text)
}

func TestStorage_ListOverdueTasks(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.New()

	late := newTask("late")
	late.ScheduledDate = day("2024-03-01")
	done := newTask("done")
	done.ScheduledDate = day("2024-03-01")
	done.SetStatus(task.StatusDone)
	endsToday := newTask("ends today")
	endsToday.StartDate = day("2024-02-01")
	endsToday.EndDate = day("2024-03-10")
	undated := newTask("undated")
	for _, tk := range []*task.Task{late, done, endsToday, undated} {
		require.NoError(t, storage.CreateTask(ctx, tk))
	}

	got, err := storage.ListOverdueTasks(ctx, dates.MustDay("2024-03-10").Add(9*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "late", got[0].Text)
}

func TestStorage_ProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.New()

	p := &project.Project{UUID: uuid.New(), UserID: "u1", Title: "Launch", Status: project.StatusActive}
	require.NoError(t, storage.CreateProject(ctx, p))

	p.ShareToken = "tok"
	p.IsPublic = true
	require.NoError(t, storage.UpdateProject(ctx, p))

	shared, err := storage.GetProjectByShareToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, p.UUID, shared.UUID)
	_, err = storage.GetProjectByShareToken(ctx, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	m1 := &project.Milestone{UUID: uuid.New(), ProjectID: p.UUID, Title: "Beta", Date: dates.MustDay("2024-05-01")}
	m2 := &project.Milestone{UUID: uuid.New(), ProjectID: p.UUID, Title: "Alpha", Date: dates.MustDay("2024-04-01")}
	require.NoError(t, storage.CreateMilestone(ctx, m1))
	require.NoError(t, storage.CreateMilestone(ctx, m2))
	ms, err := storage.ListMilestones(ctx, p.UUID)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "Alpha", ms[0].Title)

	require.NoError(t, storage.CreateComment(ctx, &project.Comment{UUID: uuid.New(), ProjectID: p.UUID, Content: "one", AuthorName: "A"}))
	require.NoError(t, storage.CreateComment(ctx, &project.Comment{UUID: uuid.New(), ProjectID: p.UUID, Content: "two", AuthorName: "B"}))
	comments, err := storage.ListComments(ctx, p.UUID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "two", comments[0].Content)

	tk := newTask("in project")
	tk.ProjectID = &p.UUID
	require.NoError(t, storage.CreateTask(ctx, tk))

	require.NoError(t, storage.DeleteProject(ctx, p.UUID))
	_, err = storage.GetTask(ctx, tk.UUID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = storage.GetMilestone(ctx, m1.UUID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	comments, err = storage.ListComments(ctx, p.UUID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	err = storage.CreateMilestone(ctx, &project.Milestone{UUID: uuid.New(), ProjectID: p.UUID})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStorage_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tk := newTask(fmt.Sprintf("Task %d", i))
			assert.NoError(t, storage.CreateTask(ctx, tk))
			_, err := storage.ListUserTasks(ctx, "u1")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := storage.ListUserTasks(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 50)
}

func TestStorage_WorkflowTemplates(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.New()

	first := &workflow.Template{UUID: uuid.New(), UserID: "u1", Name: "First",
		Tasks: []templates.WorkflowTask{{Title: "A", Duration: 1}}}
	second := &workflow.Template{UUID: uuid.New(), UserID: "u1", Name: "Second"}
	other := &workflow.Template{UUID: uuid.New(), UserID: "u2", Name: "Other"}
	for _, tpl := range []*workflow.Template{first, second, other} {
		require.NoError(t, storage.CreateWorkflowTemplate(ctx, tpl))
	}

	list, err := storage.ListWorkflowTemplates(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].Name)
	assert.Equal(t, "First", list[1].Name)

	// Returned values do not alias the stored copy.
	list[1].Tasks[0].Title = "mutated"
	got, err := storage.GetWorkflowTemplate(ctx, first.UUID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Tasks[0].Title)

	got.Name = "Renamed"
	require.NoError(t, storage.UpdateWorkflowTemplate(ctx, got))
	assert.NotNil(t, got.UpdatedAt)
	got, err = storage.GetWorkflowTemplate(ctx, first.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	require.NoError(t, storage.DeleteWorkflowTemplate(ctx, first.UUID))
	_, err = storage.GetWorkflowTemplate(ctx, first.UUID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, storage.DeleteWorkflowTemplate(ctx, first.UUID), repository.ErrNotFound)
	assert.ErrorIs(t, storage.UpdateWorkflowTemplate(ctx, first), repository.ErrNotFound)

	list, err = storage.ListWorkflowTemplates(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
