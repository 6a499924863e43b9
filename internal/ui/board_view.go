package ui

import (
	"context"
	"fmt"
	"planboard/internal/board"
	"planboard/internal/models/project"
	"planboard/internal/models/task"
	"planboard/internal/richtext"
	"planboard/internal/templates"
	"planboard/internal/timeline"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type tab int

const (
	tabKanban tab = iota
	tabTimeline
)

const (
	minCell = 1
	maxCell = 6
)

type viewMsg struct {
	view board.View
}

type opDoneMsg struct {
	action string
	err    error
}

// BackToProjects is sent when the user leaves a board.
type BackToProjects struct{}

// pick is one draggable catalog entry.
type pick struct {
	label   string
	payload board.DragPayload
}

// catalog lists the built-in templates, then the user's saved workflows.
func catalog(saved []templates.Workflow) []pick {
	var out []pick
	for _, w := range templates.Workflows() {
		out = append(out, pick{label: "workflow: " + w.Name, payload: board.WorkflowTemplateDrag{TemplateID: w.ID}})
	}
	for _, w := range saved {
		out = append(out, pick{label: "my workflow: " + w.Name, payload: board.WorkflowTemplateDrag{TemplateID: w.ID}})
	}
	for _, m := range templates.Milestones() {
		out = append(out, pick{label: "milestone: " + m.Name, payload: board.MilestoneTemplateDrag{TemplateID: m.ID}})
	}
	return out
}

type BoardView struct {
	ctx     context.Context
	board   *board.Board
	updates chan board.View
	done    chan struct{}
	closed  sync.Once
	unsub   func()
	styles  *Styles
	keys    KeyMap
	now     func() time.Time

	view    board.View
	loading bool
	status  string
	err     error

	tab    tab
	column int
	row    int

	adding bool
	input  textinput.Model

	timelineRow int
	dayCursor   int
	cell        int
	picks       []pick
	pickIdx     int

	width  int
	height int
}

func NewBoardView(ctx context.Context, b *board.Board, s *Styles, now func() time.Time) *BoardView {
	in := textinput.New()
	in.Placeholder = "New task"
	in.CharLimit = 200

	v := &BoardView{
		ctx:     ctx,
		board:   b,
		updates: make(chan board.View, 1),
		done:    make(chan struct{}),
		styles:  s,
		keys:    DefaultKeyMap(),
		now:     now,
		view:    b.View(),
		loading: true,
		input:   in,
		cell:    3,
		picks:   catalog(nil),
	}
	v.unsub = b.Subscribe(v.push)
	return v
}

// push keeps only the newest view in the channel.
func (v *BoardView) push(bv board.View) {
	for {
		select {
		case v.updates <- bv:
			return
		default:
		}
		select {
		case <-v.updates:
		default:
		}
	}
}

func (v *BoardView) waitForView() tea.Msg {
	select {
	case bv := <-v.updates:
		return viewMsg{view: bv}
	case <-v.done:
		return nil
	}
}

func (v *BoardView) Init() tea.Cmd {
	return tea.Batch(v.waitForView, v.run("reload", v.board.Reload))
}

// Close detaches from the board; in-flight writes finish without touching the screen.
func (v *BoardView) Close() {
	v.closed.Do(func() {
		v.unsub()
		close(v.done)
		v.board.Close()
	})
}

func (v *BoardView) run(action string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		return opDoneMsg{action: action, err: fn(ctx)}
	}
}

func (v *BoardView) Update(msg tea.Msg) (*BoardView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
		return v, nil

	case viewMsg:
		v.view = msg.view
		v.picks = catalog(msg.view.Workflows)
		v.pickIdx = min(v.pickIdx, len(v.picks)-1)
		v.clamp()
		return v, v.waitForView

	case opDoneMsg:
		if msg.action == "reload" {
			v.loading = false
		}
		v.err = msg.err
		if msg.err == nil {
			v.status = msg.action + " ok"
		} else {
			v.status = ""
		}
		return v, nil

	case tea.KeyMsg:
		if v.adding {
			return v.updateAdding(msg)
		}
		switch {
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return BackToProjects{} }
		case key.Matches(msg, v.keys.Tab):
			if v.tab == tabKanban {
				v.tab = tabTimeline
			} else {
				v.tab = tabKanban
			}
			return v, nil
		case key.Matches(msg, v.keys.Reload):
			v.loading = true
			return v, v.run("reload", v.board.Reload)
		}
		if v.tab == tabKanban {
			return v.updateKanban(msg)
		}
		return v.updateTimeline(msg)
	}
	return v, nil
}

func (v *BoardView) updateAdding(msg tea.KeyMsg) (*BoardView, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.adding = false
		v.input.Blur()
		return v, nil
	case tea.KeyEnter:
		text := v.input.Value()
		status := task.Statuses[v.column]
		v.adding = false
		v.input.Blur()
		v.input.Reset()
		return v, v.run("add", func(ctx context.Context) error {
			_, err := v.board.AddTask(ctx, board.Draft{Text: text, Status: status})
			return err
		})
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *BoardView) selected() (task.Task, bool) {
	col := v.view.Kanban.Column(task.Statuses[v.column])
	if v.row < 0 || v.row >= len(col) {
		return task.Task{}, false
	}
	return col[v.row], true
}

func (v *BoardView) updateKanban(msg tea.KeyMsg) (*BoardView, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Left):
		v.column = max(v.column-1, 0)
		v.row = 0
	case key.Matches(msg, v.keys.Right):
		v.column = min(v.column+1, len(task.Statuses)-1)
		v.row = 0
	case key.Matches(msg, v.keys.Up):
		v.row = max(v.row-1, 0)
	case key.Matches(msg, v.keys.Down):
		v.row++
		v.clamp()
	case key.Matches(msg, v.keys.New):
		v.adding = true
		return v, v.input.Focus()
	case key.Matches(msg, v.keys.MoveLeft), key.Matches(msg, v.keys.MoveRight):
		t, ok := v.selected()
		if !ok {
			return v, nil
		}
		target := v.column + 1
		if key.Matches(msg, v.keys.MoveLeft) {
			target = v.column - 1
		}
		if target < 0 || target >= len(task.Statuses) {
			return v, nil
		}
		status := task.Statuses[target]
		v.column, v.row = target, len(v.view.Kanban.Column(status))
		return v, v.run("move", func(ctx context.Context) error {
			return v.board.Drop(ctx, board.TaskDrag{TaskID: t.ID()}, board.Target{Status: status})
		})
	case key.Matches(msg, v.keys.Delete):
		if t, ok := v.selected(); ok {
			return v, v.run("delete", func(ctx context.Context) error {
				return v.board.DeleteTask(ctx, t.ID())
			})
		}
	case key.Matches(msg, v.keys.Subtask):
		t, ok := v.selected()
		if !ok {
			return v, nil
		}
		done, total := richtext.SubtaskProgress(t.Description)
		if total == 0 {
			v.status = "no subtasks"
			return v, nil
		}
		idx, checked := done, true
		if done == total {
			idx, checked = total-1, false
		}
		return v, v.run("subtask", func(ctx context.Context) error {
			return v.board.ToggleSubtask(ctx, t.ID(), idx, checked)
		})
	}
	return v, nil
}

func (v *BoardView) updateTimeline(msg tea.KeyMsg) (*BoardView, tea.Cmd) {
	rows := v.view.Timeline.Rows
	switch {
	case key.Matches(msg, v.keys.Up):
		v.timelineRow = max(v.timelineRow-1, 0)
	case key.Matches(msg, v.keys.Down):
		v.timelineRow = min(v.timelineRow+1, max(len(rows)-1, 0))
	case key.Matches(msg, v.keys.Left):
		v.dayCursor = max(v.dayCursor-1, 0)
	case key.Matches(msg, v.keys.Right):
		v.dayCursor = min(v.dayCursor+1, max(v.view.Timeline.TotalDays-1, 0))
	case key.Matches(msg, v.keys.ZoomIn):
		v.cell = min(v.cell+1, maxCell)
	case key.Matches(msg, v.keys.ZoomOut):
		v.cell = max(v.cell-1, minCell)
	case key.Matches(msg, v.keys.NextTpl):
		v.pickIdx = (v.pickIdx + 1) % len(v.picks)
	case key.Matches(msg, v.keys.PrevTpl):
		v.pickIdx = (v.pickIdx - 1 + len(v.picks)) % len(v.picks)
	case key.Matches(msg, v.keys.Enter):
		if v.timelineRow < len(rows) && rows[v.timelineRow].WorkflowID != "" {
			r := rows[v.timelineRow]
			collapsed := true
			if r.Kind == timeline.RowWorkflow {
				collapsed = !r.Collapsed
			}
			v.board.SetCollapsed(r.WorkflowID, collapsed)
		}
	case key.Matches(msg, v.keys.Delete):
		if v.timelineRow >= len(rows) {
			return v, nil
		}
		r := rows[v.timelineRow]
		if r.Kind == timeline.RowWorkflow {
			return v, v.run("delete workflow", func(ctx context.Context) error {
				_, err := v.board.DeleteWorkflow(ctx, r.WorkflowID)
				return err
			})
		}
		if r.Task != nil {
			id := r.Task.ID()
			return v, v.run("delete", func(ctx context.Context) error {
				return v.board.DeleteTask(ctx, id)
			})
		}
	case key.Matches(msg, v.keys.Drop):
		if len(v.view.Timeline.Days) == 0 {
			return v, nil
		}
		day := v.view.Timeline.Days[min(v.dayCursor, len(v.view.Timeline.Days)-1)].Date
		p := v.picks[v.pickIdx]
		return v, v.run("drop", func(ctx context.Context) error {
			return v.board.Drop(ctx, p.payload, board.Target{Date: day})
		})
	case msg.String() == "t":
		if m, ok := v.milestoneOnCursor(); ok {
			return v, v.run("milestone", func(ctx context.Context) error {
				return v.board.ToggleMilestone(ctx, m.ID())
			})
		}
	}
	return v, nil
}

func (v *BoardView) milestoneOnCursor() (project.Milestone, bool) {
	for _, m := range v.view.Timeline.Milestones {
		if int(m.Offset/v.view.Timeline.DayWidth+0.5) == v.dayCursor {
			return m.Milestone, true
		}
	}
	return project.Milestone{}, false
}

func (v *BoardView) clamp() {
	n := len(v.view.Kanban.Column(task.Statuses[v.column]))
	if v.row >= n {
		v.row = max(n-1, 0)
	}
	if v.timelineRow >= len(v.view.Timeline.Rows) {
		v.timelineRow = max(len(v.view.Timeline.Rows)-1, 0)
	}
	if v.dayCursor >= v.view.Timeline.TotalDays {
		v.dayCursor = max(v.view.Timeline.TotalDays-1, 0)
	}
}

func (v *BoardView) View() string {
	s := v.styles
	header := s.Title.Render(v.view.Project.Title) + "  " +
		s.TitleMuted.Render(fmt.Sprintf("%d/%d done (%d%%)", v.view.Progress.Done, v.view.Progress.Total, v.view.Progress.Percent))

	tabs := s.Tab.Render("Kanban")
	timelineTab := s.Tab.Render("Timeline")
	if v.tab == tabKanban {
		tabs = s.TabActive.Render("Kanban")
	} else {
		timelineTab = s.TabActive.Render("Timeline")
	}

	var body string
	switch {
	case v.loading && len(v.view.Tasks) == 0:
		body = s.TitleMuted.Render("Loading...")
	case v.view.Err != nil && len(v.view.Tasks) == 0:
		body = s.Error.Render("Could not load the project: " + v.view.Err.Error())
	case v.tab == tabKanban:
		body = renderKanban(v.view.Kanban, v.column, v.row, v.width, v.now(), s)
	default:
		body = renderTimeline(v.view.Timeline, timelineState{
			row:    v.timelineRow,
			cursor: v.dayCursor,
			cell:   v.cell,
			width:  v.width,
			now:    v.now(),
		}, s)
		body += "\n" + s.TitleMuted.Render("template: ") + s.Milestone.Render(v.picks[v.pickIdx].label)
	}

	footer := v.status
	if v.err != nil {
		footer = s.Error.Render(v.err.Error())
	}
	if v.adding {
		footer = s.Input.Render(v.input.View())
	}
	return header + "\n" + tabs + timelineTab + "\n\n" + body + "\n" + s.StatusBar.Render(footer)
}
