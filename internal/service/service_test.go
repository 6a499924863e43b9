package service_test

import (
	"context"
	"errors"
	"planboard/internal/calendar"
	"planboard/internal/dates"
	"planboard/internal/events"
	"planboard/internal/models/project"
	"planboard/internal/models/task"
	"planboard/internal/models/workflow"
	repo "planboard/internal/repository"
	"planboard/internal/repository/inmemory"
	"planboard/internal/service"
	"planboard/internal/templates"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a testify mock of the storage layer.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRepository) CreateTask(ctx context.Context, t *task.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockRepository) UpdateTask(ctx context.Context, t *task.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockRepository) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockRepository) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ListUserTasks(ctx context.Context, userID string) ([]*task.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockRepository) ListProjectTasks(ctx context.Context, projectID uuid.UUID) ([]*task.Task, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockRepository) DeleteWorkflowTasks(ctx context.Context, projectID uuid.UUID, workflowID string) (int, error) {
	args := m.Called(ctx, projectID, workflowID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ListOverdueTasks(ctx context.Context, before time.Time, limit int) ([]*task.Task, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockRepository) CreateProject(ctx context.Context, p *project.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) UpdateProject(ctx context.Context, p *project.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) GetProject(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockRepository) GetProjectByShareToken(ctx context.Context, token string) (*project.Project, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockRepository) ListProjects(ctx context.Context, userID string) ([]*project.Project, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*project.Project), args.Error(1)
}

func (m *MockRepository) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) CreateMilestone(ctx context.Context, ms *project.Milestone) error {
	return m.Called(ctx, ms).Error(0)
}

func (m *MockRepository) UpdateMilestone(ctx context.Context, ms *project.Milestone) error {
	return m.Called(ctx, ms).Error(0)
}

func (m *MockRepository) GetMilestone(ctx context.Context, id uuid.UUID) (*project.Milestone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Milestone), args.Error(1)
}

func (m *MockRepository) DeleteMilestone(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ListMilestones(ctx context.Context, projectID uuid.UUID) ([]*project.Milestone, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*project.Milestone), args.Error(1)
}

func (m *MockRepository) CreateComment(ctx context.Context, c *project.Comment) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockRepository) ListComments(ctx context.Context, projectID uuid.UUID) ([]*project.Comment, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*project.Comment), args.Error(1)
}

func (m *MockRepository) CreateWorkflowTemplate(ctx context.Context, t *workflow.Template) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockRepository) UpdateWorkflowTemplate(ctx context.Context, t *workflow.Template) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockRepository) GetWorkflowTemplate(ctx context.Context, id uuid.UUID) (*workflow.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Template), args.Error(1)
}

func (m *MockRepository) DeleteWorkflowTemplate(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ListWorkflowTemplates(ctx context.Context, userID string) ([]*workflow.Template, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workflow.Template), args.Error(1)
}

var _ service.Repository = (*MockRepository)(nil)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

var fixedNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)

func newService(t *testing.T) (*service.Service, *recorder) {
	t.Helper()
	rec := &recorder{}
	svc := service.NewService(inmemory.New(),
		service.WithPublisher(rec),
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithShareBaseURL("https://planboard.test/shared/"),
	)
	return svc, rec
}

func ptr[T any](v T) *T { return &v }

func businessCode(t *testing.T, err error) string {
	t.Helper()
	var busErr *service.BusinessError
	require.True(t, errors.As(err, &busErr), "expected business error, got %v", err)
	return busErr.Code
}

func TestService_HealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockRepository)
		expectError bool
	}{
		{
			name: "success - health check passes",
			setupMock: func(m *MockRepository) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
		},
		{
			name: "error - health check fails",
			setupMock: func(m *MockRepository) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("db connection failed"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			tt.setupMock(mockRepo)

			err := service.NewService(mockRepo).HealthCheck(context.Background())

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestService_CreateTask(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		options  []task.TaskOption
		wantCode string
	}{
		{name: "success", text: "  Write report "},
		{name: "empty text", text: "   ", wantCode: service.CodeValidation},
		{
			name:     "end before start",
			text:     "Inverted",
			options:  []task.TaskOption{task.WithStartDate(ptr(dates.MustDay("2024-03-05"))), task.WithEndDate(ptr(dates.MustDay("2024-03-01")))},
			wantCode: service.CodeValidation,
		},
		{
			name:     "unknown status",
			text:     "Bad status",
			options:  []task.TaskOption{task.WithStatus(ptr(task.Status("blocked")))},
			wantCode: service.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, rec := newService(t)

			got, err := svc.CreateTask(context.Background(), "u1", tt.text, tt.options...)

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, businessCode(t, err))
				assert.Empty(t, rec.types())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Write report", got.Text)
			assert.Equal(t, task.StatusTodo, got.Status)
			assert.Equal(t, task.PriorityMedium, got.Priority)
			assert.Equal(t, []events.Type{events.TaskCreated}, rec.types())
		})
	}
}

func TestService_UpdateTask_KeepsCompletedInSync(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	created, err := svc.CreateTask(ctx, "u1", "Stretch")
	require.NoError(t, err)

	got, err := svc.UpdateTask(ctx, "u1", created.UUID, task.WithStatus(ptr(task.Status("in_progress"))))
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, got.Status)
	assert.False(t, got.Completed)

	got, err = svc.UpdateTask(ctx, "u1", created.UUID, task.WithCompleted(ptr(true), nil))
	require.NoError(t, err)
	assert.Equal(t, task.StatusDone, got.Status)
	assert.True(t, got.Completed)
}

func TestService_UpdateTask_Errors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	created, err := svc.CreateTask(ctx, "u1", "Mine")
	require.NoError(t, err)

	_, err = svc.UpdateTask(ctx, "u2", created.UUID, task.WithText(ptr("hijack")))
	assert.Equal(t, service.CodeForbidden, businessCode(t, err))

	_, err = svc.UpdateTask(ctx, "u1", uuid.New(), task.WithText(ptr("x")))
	assert.Equal(t, service.CodeNotFound, businessCode(t, err))

	_, err = svc.UpdateTask(ctx, "u1", created.UUID, task.WithText(ptr(" ")))
	assert.Equal(t, service.CodeValidation, businessCode(t, err))
}

func TestService_UpdateTask_VersionConflict(t *testing.T) {
	mockRepo := new(MockRepository)
	id := uuid.New()
	mockRepo.On("GetTask", mock.Anything, id).Return(&task.Task{UUID: id, UserID: "u1", Text: "a", Version: 1}, nil)
	mockRepo.On("UpdateTask", mock.Anything, mock.Anything).Return(repo.ErrVersionConflict)

	_, err := service.NewService(mockRepo).UpdateTask(context.Background(), "u1", id, task.WithText(ptr("b")))

	assert.Equal(t, service.CodeVersionConflict, businessCode(t, err))
	assert.ErrorIs(t, err, repo.ErrVersionConflict)
	mockRepo.AssertExpectations(t)
}

func TestService_DeleteTask_RepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	id := uuid.New()
	mockRepo.On("GetTask", mock.Anything, id).Return(&task.Task{UUID: id, UserID: "u1", Text: "a"}, nil)
	mockRepo.On("DeleteTask", mock.Anything, id).Return(errors.New("connection reset"))

	err := service.NewService(mockRepo).DeleteTask(context.Background(), "u1", id)

	require.Error(t, err)
	var busErr *service.BusinessError
	assert.False(t, errors.As(err, &busErr))
	mockRepo.AssertExpectations(t)
}

func TestService_ImportTasks(t *testing.T) {
	svc, _ := newService(t)
	start := time.Date(2024, 3, 12, 15, 0, 0, 0, time.Local)

	got, err := svc.ImportTasks(context.Background(), "u1", []calendar.Event{
		{UID: "1", Summary: "Dentist", Start: &start},
		{UID: "2", Summary: "   "},
		{UID: "3", Summary: "Call mom"},
	})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-03-12", dates.FormatDay(*got[0].ScheduledDate))
	assert.Nil(t, got[1].ScheduledDate)

	all, err := svc.ListTasks(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestService_ProjectLifecycle(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, "u1", "Website", project.WithDates(ptr(dates.MustDay("2024-03-01")), ptr(dates.MustDay("2024-03-31"))))
	require.NoError(t, err)

	tk, err := svc.CreateProjectTask(ctx, "u1", p.UUID, "Wireframes",
		task.WithStartDate(ptr(dates.MustDay("2024-03-04"))), task.WithEndDate(ptr(dates.MustDay("2024-03-06"))))
	require.NoError(t, err)
	assert.Equal(t, p.UUID, *tk.ProjectID)

	_, err = svc.CreateMilestone(ctx, "u1", p.UUID, "Launch", dates.MustDay("2024-03-29"))
	require.NoError(t, err)

	got, err := svc.GetProject(ctx, "u1", p.UUID)
	require.NoError(t, err)
	assert.Len(t, got.Tasks, 1)
	assert.Len(t, got.Milestones, 1)

	_, err = svc.UpdateProjectTask(ctx, "u1", p.UUID, tk.UUID, task.WithStatus(ptr(task.StatusDone)))
	require.NoError(t, err)
	got, err = svc.GetProject(ctx, "u1", p.UUID)
	require.NoError(t, err)
	done, total, percent := got.Progress()
	assert.Equal(t, []int{1, 1, 100}, []int{done, total, percent})

	_, err = svc.GetProject(ctx, "u2", p.UUID)
	assert.Equal(t, service.CodeForbidden, businessCode(t, err))

	require.NoError(t, svc.DeleteProject(ctx, "u1", p.UUID))
	_, err = svc.GetProject(ctx, "u1", p.UUID)
	assert.Equal(t, service.CodeNotFound, businessCode(t, err))

	assert.Equal(t, []events.Type{
		events.TaskCreated, events.MilestoneCreated, events.TaskUpdated, events.ProjectDeleted,
	}, rec.types())
}

func TestService_ProjectTaskMustBelongToProject(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	a, err := svc.CreateProject(ctx, "u1", "A")
	require.NoError(t, err)
	b, err := svc.CreateProject(ctx, "u1", "B")
	require.NoError(t, err)
	tk, err := svc.CreateProjectTask(ctx, "u1", a.UUID, "only in A")
	require.NoError(t, err)

	_, err = svc.UpdateProjectTask(ctx, "u1", b.UUID, tk.UUID, task.WithText(ptr("moved")))
	assert.Equal(t, service.CodeNotFound, businessCode(t, err))

	_, err = svc.UpdateTask(ctx, "u1", tk.UUID, task.WithText(ptr("via daily route")))
	assert.Equal(t, service.CodeNotFound, businessCode(t, err))
}

func TestService_WorkflowTemplate(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()
	p, err := svc.CreateProject(ctx, "u1", "App")
	require.NoError(t, err)

	created, err := svc.ApplyWorkflowTemplate(ctx, "u1", p.UUID, "software-dev", ptr(dates.MustDay("2024-04-01")), templates.ExpandOptions{})
	require.NoError(t, err)
	wf, _ := templates.FindWorkflow("software-dev")
	require.Len(t, created, len(wf.Tasks))
	assert.Equal(t, "2024-04-01", dates.FormatDay(*created[0].StartDate))
	for _, c := range created {
		assert.Equal(t, created[0].WorkflowID, c.WorkflowID)
	}

	_, err = svc.ApplyWorkflowTemplate(ctx, "u1", p.UUID, "nope", nil, templates.ExpandOptions{})
	assert.Equal(t, service.CodeNotFound, businessCode(t, err))

	n, err := svc.DeleteWorkflow(ctx, "u1", p.UUID, created[0].WorkflowID)
	require.NoError(t, err)
	assert.Equal(t, len(wf.Tasks), n)
	assert.Contains(t, rec.types(), events.WorkflowDeleted)

	_, err = svc.DeleteWorkflow(ctx, "u1", p.UUID, created[0].WorkflowID)
	assert.Equal(t, service.CodeNotFound, businessCode(t, err))
}

func TestService_Timeline(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p, err := svc.CreateProject(ctx, "u1", "Plan")
	require.NoError(t, err)
	_, err = svc.CreateProjectTask(ctx, "u1", p.UUID, "A",
		task.WithStartDate(ptr(dates.MustDay("2024-03-08"))), task.WithEndDate(ptr(dates.MustDay("2024-03-12"))))
	require.NoError(t, err)

	_, grid, err := svc.Timeline(ctx, "u1", p.UUID, service.TimelineOptions{DayWidth: 20})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", dates.FormatDay(grid.Min))
	assert.Equal(t, "2024-03-19", dates.FormatDay(grid.Max))
	assert.Equal(t, 20.0, grid.DayWidth)
	assert.True(t, grid.TodayVisible)
}

func TestService_Milestones(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p, err := svc.CreateProject(ctx, "u1", "Plan")
	require.NoError(t, err)

	_, err = svc.CreateMilestone(ctx, "u1", p.UUID, "", dates.MustDay("2024-03-01"))
	assert.Equal(t, service.CodeValidation, businessCode(t, err))
	_, err = svc.CreateMilestone(ctx, "u1", p.UUID, "No date", time.Time{})
	assert.Equal(t, service.CodeValidation, businessCode(t, err))

	m, err := svc.CreateMilestone(ctx, "u1", p.UUID, "Beta", dates.MustDay("2024-03-15"))
	require.NoError(t, err)
	got, err := svc.UpdateMilestone(ctx, "u1", p.UUID, m.UUID, project.WithMilestoneCompleted(ptr(true)))
	require.NoError(t, err)
	assert.True(t, got.Completed)

	other, err := svc.CreateProject(ctx, "u1", "Other")
	require.NoError(t, err)
	err = svc.DeleteMilestone(ctx, "u1", other.UUID, m.UUID)
	assert.Equal(t, service.CodeNotFound, businessCode(t, err))

	require.NoError(t, svc.DeleteMilestone(ctx, "u1", p.UUID, m.UUID))
	ms, err := svc.ListMilestones(ctx, "u1", p.UUID)
	require.NoError(t, err)
	assert.Empty(t, ms)
}

func TestService_Sharing(t *testing.T) {
	svc, rec := newService(t)
	ctx := context.Background()
	p, err := svc.CreateProject(ctx, "u1", "Shared")
	require.NoError(t, err)
	tk, err := svc.CreateProjectTask(ctx, "u1", p.UUID, "Review copy")
	require.NoError(t, err)

	info, err := svc.ShareProject(ctx, "u1", p.UUID)
	require.NoError(t, err)
	assert.Len(t, info.Token, 32)
	assert.Equal(t, "https://planboard.test/shared/"+info.Token, info.URL)

	shared, err := svc.GetSharedProject(ctx, info.Token)
	require.NoError(t, err)
	assert.Len(t, shared.Tasks, 1)

	_, err = svc.AddComment(ctx, info.Token, "Looks good", "")
	assert.Equal(t, service.CodeValidation, businessCode(t, err))
	c, err := svc.AddComment(ctx, info.Token, " Looks good ", "Aki")
	require.NoError(t, err)
	assert.Equal(t, "Looks good", c.Content)
	comments, err := svc.ListComments(ctx, info.Token)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	got, err := svc.SetApproval(ctx, info.Token, tk.UUID, task.ApprovalRejected, "typo in title")
	require.NoError(t, err)
	assert.Equal(t, "typo in title", got.RejectionReason)
	got, err = svc.SetApproval(ctx, info.Token, tk.UUID, task.ApprovalApproved, "ignored")
	require.NoError(t, err)
	assert.Empty(t, got.RejectionReason)

	_, err = svc.SetApproval(ctx, info.Token, tk.UUID, task.ApprovalStatus("maybe"), "")
	assert.Equal(t, service.CodeValidation, businessCode(t, err))

	daily, err := svc.CreateTask(ctx, "u1", "not in project")
	require.NoError(t, err)
	_, err = svc.SetApproval(ctx, info.Token, daily.UUID, task.ApprovalApproved, "")
	assert.Equal(t, service.CodeForbidden, businessCode(t, err))

	require.NoError(t, svc.UnshareProject(ctx, "u1", p.UUID))
	_, err = svc.GetSharedProject(ctx, info.Token)
	assert.Equal(t, service.CodeNotShared, businessCode(t, err))
	_, err = svc.GetSharedProject(ctx, "")
	assert.Equal(t, service.CodeNotShared, businessCode(t, err))

	assert.Contains(t, rec.types(), events.CommentCreated)
}

func TestService_CustomWorkflowTemplates(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	steps := []templates.WorkflowTask{{Title: " Cut branch ", Duration: 1}, {Title: "Ship", Duration: 2}}
	tpl, err := svc.CreateWorkflowTemplate(ctx, "u1", "Release", workflow.WithTasks(steps))
	require.NoError(t, err)
	assert.Equal(t, "Cut branch", tpl.Tasks[0].Title)

	list, err := svc.ListWorkflowTemplates(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	list, err = svc.ListWorkflowTemplates(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, list)

	p, err := svc.CreateProject(ctx, "u1", "App")
	require.NoError(t, err)
	created, err := svc.ApplyWorkflowTemplate(ctx, "u1", p.UUID, tpl.ID(), ptr(dates.MustDay("2024-04-01")), templates.ExpandOptions{})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "Release", created[0].WorkflowName)
	assert.Equal(t, "2024-04-02", dates.FormatDay(*created[1].StartDate))
	assert.Equal(t, "2024-04-03", dates.FormatDay(*created[1].EndDate))

	// Another user can neither see nor use it.
	other, err := svc.CreateProject(ctx, "u2", "Theirs")
	require.NoError(t, err)
	_, err = svc.ApplyWorkflowTemplate(ctx, "u2", other.UUID, tpl.ID(), nil, templates.ExpandOptions{})
	assert.Equal(t, service.CodeNotFound, businessCode(t, err))
	_, err = svc.UpdateWorkflowTemplate(ctx, "u2", tpl.UUID, workflow.WithName(ptr("Stolen")))
	assert.Equal(t, service.CodeNotFound, businessCode(t, err))

	updated, err := svc.UpdateWorkflowTemplate(ctx, "u1", tpl.UUID, workflow.WithName(ptr("Hotfix")))
	require.NoError(t, err)
	assert.Equal(t, "Hotfix", updated.Name)
	assert.Len(t, updated.Tasks, 2)

	require.NoError(t, svc.DeleteWorkflowTemplate(ctx, "u1", tpl.UUID))
	err = svc.DeleteWorkflowTemplate(ctx, "u1", tpl.UUID)
	assert.Equal(t, service.CodeNotFound, businessCode(t, err))
}

func TestService_WorkflowTemplateValidation(t *testing.T) {
	tests := []struct {
		name      string
		tplName   string
		steps     []templates.WorkflowTask
		wantField string
	}{
		{"empty name", "  ", []templates.WorkflowTask{{Title: "A", Duration: 1}}, "name"},
		{"no steps", "Release", nil, "tasks"},
		{"blank step title", "Release", []templates.WorkflowTask{{Title: " ", Duration: 1}}, "tasks[0].title"},
		{"zero duration", "Release", []templates.WorkflowTask{{Title: "A", Duration: 1}, {Title: "B"}}, "tasks[1].duration"},
		{"too long", "Release", []templates.WorkflowTask{{Title: "A", Duration: 400}}, "tasks[0].duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t)
			_, err := svc.CreateWorkflowTemplate(context.Background(), "u1", tt.tplName, workflow.WithTasks(tt.steps))

			var busErr *service.BusinessError
			require.ErrorAs(t, err, &busErr)
			assert.Equal(t, service.CodeValidation, busErr.Code)
			assert.Equal(t, tt.wantField, busErr.Details["field"])
		})
	}
}
