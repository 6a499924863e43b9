// Package board owns the canonical task and milestone collections of one project and
// derives every view from them after each change.
package board

import (
	"context"
	"errors"
	"fmt"
	"planboard/internal/filter"
	"planboard/internal/handlers/dto"
	"planboard/internal/holiday"
	"planboard/internal/logger"
	"planboard/internal/models/project"
	"planboard/internal/models/task"
	"planboard/internal/models/workflow"
	"planboard/internal/optimistic"
	"planboard/internal/templates"
	"planboard/internal/timeline"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrEmptyText = fmt.Errorf("%w: task text is empty", optimistic.ErrValidation)

// Backend is the remote side of the board. *client.Client implements it.
type Backend interface {
	GetProject(ctx context.Context, id uuid.UUID) (project.Project, error)
	ListProjectTasks(ctx context.Context, projectID uuid.UUID) ([]task.Task, error)
	CreateProjectTask(ctx context.Context, projectID uuid.UUID, req dto.CreateTaskRequest) (task.Task, error)
	UpdateProjectTask(ctx context.Context, projectID, taskID uuid.UUID, patch dto.UpdateTaskRequest) (task.Task, error)
	DeleteProjectTask(ctx context.Context, projectID, taskID uuid.UUID) error
	ListMilestones(ctx context.Context, projectID uuid.UUID) ([]project.Milestone, error)
	CreateMilestone(ctx context.Context, projectID uuid.UUID, req dto.CreateMilestoneRequest) (project.Milestone, error)
	UpdateMilestone(ctx context.Context, projectID, milestoneID uuid.UUID, patch dto.UpdateMilestoneRequest) (project.Milestone, error)
	DeleteMilestone(ctx context.Context, projectID, milestoneID uuid.UUID) error
	ListWorkflowTemplates(ctx context.Context) ([]workflow.Template, error)
}

type Kanban struct {
	Todo       []task.Task
	InProgress []task.Task
	Done       []task.Task
}

// Column returns the tasks shown under status s.
func (k Kanban) Column(s task.Status) []task.Task {
	switch s {
	case task.StatusTodo:
		return k.Todo
	case task.StatusInProgress:
		return k.InProgress
	case task.StatusDone:
		return k.Done
	}
	return nil
}

type Progress struct {
	Done    int
	Total   int
	Percent int
}

// View is everything derived from one snapshot of the stores.
type View struct {
	Project    project.Project
	Tasks      []task.Task
	Milestones []project.Milestone
	Kanban     Kanban
	Progress   Progress
	Timeline   timeline.Grid
	Scopes     map[filter.Scope][]task.Task
	// Workflows are the user's saved workflow templates, droppable next to the catalog.
	Workflows []templates.Workflow
	// Err is the last failed load. The collections keep their previous contents.
	Err error
}

type Option func(*Board)

func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

func WithHolidays(h holiday.Lookup) Option {
	return func(b *Board) { b.holidays = h }
}

func WithDayWidth(w float64) Option {
	return func(b *Board) {
		if w > 0 {
			b.dayWidth = w
		}
	}
}

type Board struct {
	backend   Backend
	projectID uuid.UUID

	tasks      *optimistic.Controller[task.Task]
	milestones *optimistic.Controller[project.Milestone]
	unsub      []func()

	now      func() time.Time
	holidays holiday.Lookup

	// refreshMtx is held from snapshot to publish so
	// an older snapshot never replaces a newer view.
	refreshMtx sync.Mutex

	mtx       sync.Mutex
	project   project.Project
	dayWidth  float64
	collapsed map[string]bool
	loadErr   error
	workflows []templates.Workflow
	view      View
	subs      map[int]func(View)
	nextSub   int
}

func New(backend Backend, projectID uuid.UUID, options ...Option) *Board {
	b := &Board{
		backend:    backend,
		projectID:  projectID,
		tasks:      optimistic.NewController(optimistic.NewStore(task.Task.ID, nil), "task"),
		milestones: optimistic.NewController(optimistic.NewStore(project.Milestone.ID, nil), "milestone"),
		now:        time.Now,
		holidays:   holiday.Japan(),
		dayWidth:   timeline.DefaultDayWidth,
		collapsed:  make(map[string]bool),
		subs:       make(map[int]func(View)),
	}
	for _, opt := range options {
		opt(b)
	}
	b.unsub = append(b.unsub,
		b.tasks.Store().Subscribe(func([]task.Task) { b.refresh() }),
		b.milestones.Store().Subscribe(func([]project.Milestone) { b.refresh() }),
	)
	b.refresh()
	return b
}

func (b *Board) ProjectID() uuid.UUID { return b.projectID }

// Reload fetches the project, its tasks and milestones. On failure the error is kept
// on the view and the collections stay as they were.
func (b *Board) Reload(ctx context.Context) error {
	p, err := b.backend.GetProject(ctx, b.projectID)
	if err == nil {
		var tasks []task.Task
		var milestones []project.Milestone
		if tasks, err = b.backend.ListProjectTasks(ctx, b.projectID); err == nil {
			if milestones, err = b.backend.ListMilestones(ctx, b.projectID); err == nil {
				b.loadWorkflows(ctx)
				return b.loaded(p, tasks, milestones)
			}
		}
	}

	logger.Warn("Board: load failed", zap.String("project_id", b.projectID.String()), zap.Error(err))
	b.mtx.Lock()
	b.loadErr = err
	b.mtx.Unlock()
	b.refresh()
	return err
}

// loadWorkflows refreshes the saved templates. A failure keeps the previous list since
// the catalog alone still works.
func (b *Board) loadWorkflows(ctx context.Context) {
	list, err := b.backend.ListWorkflowTemplates(ctx)
	if err != nil {
		logger.Warn("Board: workflow templates unavailable", zap.Error(err))
		return
	}
	b.mtx.Lock()
	b.workflows = workflow.Workflows(list)
	b.mtx.Unlock()
}

// customWorkflows returns a copy of the saved templates.
func (b *Board) customWorkflows() []templates.Workflow {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return append([]templates.Workflow(nil), b.workflows...)
}

func (b *Board) loaded(p project.Project, tasks []task.Task, milestones []project.Milestone) error {
	for i := range tasks {
		tasks[i].Normalize()
	}
	b.mtx.Lock()
	p.Tasks, p.Milestones = nil, nil
	b.project = p
	b.loadErr = nil
	b.mtx.Unlock()

	if err := b.tasks.Store().Replace(tasks); err != nil {
		return err
	}
	return b.milestones.Store().Replace(milestones)
}

// View returns the latest derived view.
func (b *Board) View() View {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.view
}

// Subscribe calls fn with every new view and returns the function that removes it.
// fn runs while the board is publishing and must not call back into the board.
func (b *Board) Subscribe(fn func(View)) func() {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	return func() {
		b.mtx.Lock()
		defer b.mtx.Unlock()
		delete(b.subs, id)
	}
}

// SetCollapsed hides or shows the task rows of a workflow in the timeline.
func (b *Board) SetCollapsed(workflowID string, collapsed bool) {
	b.mtx.Lock()
	if collapsed {
		b.collapsed[workflowID] = true
	} else {
		delete(b.collapsed, workflowID)
	}
	b.mtx.Unlock()
	b.refresh()
}

func (b *Board) SetDayWidth(w float64) {
	if w <= 0 {
		return
	}
	b.mtx.Lock()
	b.dayWidth = w
	b.mtx.Unlock()
	b.refresh()
}

// Close detaches the board. Remote writes still in flight no longer touch its state.
func (b *Board) Close() {
	for _, u := range b.unsub {
		u()
	}
	b.tasks.Store().Close()
	b.milestones.Store().Close()

	b.mtx.Lock()
	b.subs = make(map[int]func(View))
	b.mtx.Unlock()
}

// refresh rebuilds the view from the current snapshots and notifies subscribers.
func (b *Board) refresh() {
	b.refreshMtx.Lock()
	defer b.refreshMtx.Unlock()

	tasks := b.tasks.Store().Snapshot()
	milestones := b.milestones.Store().Snapshot()

	b.mtx.Lock()
	v := derive(b.project, tasks, milestones, b.derivation())
	v.Err = b.loadErr
	v.Workflows = b.workflows
	b.view = v
	subs := make([]func(View), 0, len(b.subs))
	for i := 0; i < b.nextSub; i++ {
		if fn, ok := b.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	b.mtx.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

type derivation struct {
	now       time.Time
	dayWidth  float64
	holidays  holiday.Lookup
	collapsed map[string]bool
}

func (b *Board) derivation() derivation {
	collapsed := make(map[string]bool, len(b.collapsed))
	for k, v := range b.collapsed {
		collapsed[k] = v
	}
	return derivation{now: b.now(), dayWidth: b.dayWidth, holidays: b.holidays, collapsed: collapsed}
}

var scopes = []filter.Scope{filter.ScopeToday, filter.ScopeWeek, filter.ScopeMonth, filter.ScopeAll}

func derive(p project.Project, tasks []task.Task, milestones []project.Milestone, d derivation) View {
	v := View{Project: p, Tasks: tasks, Milestones: milestones}

	for _, t := range tasks {
		switch t.Status {
		case task.StatusDone:
			v.Kanban.Done = append(v.Kanban.Done, t)
		case task.StatusInProgress:
			v.Kanban.InProgress = append(v.Kanban.InProgress, t)
		default:
			v.Kanban.Todo = append(v.Kanban.Todo, t)
		}
	}

	withTasks := p
	withTasks.Tasks = tasks
	done, total, percent := withTasks.Progress()
	v.Progress = Progress{Done: done, Total: total, Percent: percent}

	v.Timeline = timeline.Layout(tasks, milestones, timeline.Options{
		Now:          d.now,
		DayWidth:     d.dayWidth,
		Holidays:     d.holidays,
		ProjectStart: p.StartDate,
		ProjectEnd:   p.EndDate,
		Collapsed:    d.collapsed,
	})

	v.Scopes = make(map[filter.Scope][]task.Task, len(scopes))
	for _, s := range scopes {
		scoped := filter.FilterByTimeScope(tasks, s, d.now, filter.TaskDate, filter.TaskDone)
		v.Scopes[s] = filter.SortByDateThenPriority(scoped)
	}
	return v
}

func (b *Board) task(id string) (task.Task, error) {
	t, ok := b.tasks.Store().Get(id)
	if !ok {
		return task.Task{}, fmt.Errorf("%w: unknown task %s", optimistic.ErrValidation, id)
	}
	return t, nil
}

func parseID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", optimistic.ErrValidation, id)
	}
	return u, nil
}

// IsValidation reports errors raised before any remote call.
func IsValidation(err error) bool {
	return errors.Is(err, optimistic.ErrValidation)
}
