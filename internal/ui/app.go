// Package ui is the terminal board: a project list, then a kanban and a timeline tab
// for the chosen project.
package ui

import (
	"context"
	"fmt"
	"io"
	"planboard/internal/board"
	"planboard/internal/holiday"
	"planboard/internal/models/project"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Backend is everything the terminal board needs from the API. *client.Client implements it.
type Backend interface {
	board.Backend
	ListProjects(ctx context.Context) ([]project.Project, error)
}

type screen int

const (
	screenProjects screen = iota
	screenBoard
)

type projectItem struct {
	project project.Project
}

func (i projectItem) Title() string       { return i.project.Title }
func (i projectItem) Description() string { return i.project.Description }
func (i projectItem) FilterValue() string { return i.project.Title }

type projectDelegate struct {
	styles *Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}
	width := max(d.width-4, 20)
	title := d.styles.Card.Width(width)
	if index == m.Index() {
		title = d.styles.CardSelected.Width(width)
	}
	desc := fmt.Sprintf("%s · %s", p.project.Status, truncate(p.Description(), width-12))
	fmt.Fprintf(w, "%s\n%s", title.Render(p.Title()), d.styles.TitleMuted.Width(width).Render(desc))
}

type projectsLoadedMsg struct {
	projects []project.Project
}

type loadFailedMsg struct {
	err error
}

type App struct {
	ctx      context.Context
	backend  Backend
	styles   *Styles
	keys     KeyMap
	help     help.Model
	spinner  spinner.Model
	projects list.Model
	delegate *projectDelegate
	board    *BoardView
	screen   screen
	loading  bool
	err      error
	now      func() time.Time
	holidays holiday.Lookup

	width  int
	height int
}

type AppOption func(*App)

func WithClock(now func() time.Time) AppOption {
	return func(a *App) { a.now = now }
}

func WithHolidays(h holiday.Lookup) AppOption {
	return func(a *App) { a.holidays = h }
}

func NewApp(ctx context.Context, backend Backend, options ...AppOption) *App {
	s := NewStyles()
	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.Styles.Title = s.Title

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(Current.Primary)

	a := &App{
		ctx:      ctx,
		backend:  backend,
		styles:   s,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		projects: l,
		delegate: delegate,
		loading:  true,
		now:      time.Now,
		holidays: holiday.Japan(),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.loadProjects)
}

func (a *App) loadProjects() tea.Msg {
	projects, err := a.backend.ListProjects(a.ctx)
	if err != nil {
		return loadFailedMsg{err: err}
	}
	return projectsLoadedMsg{projects: projects}
}

func (a *App) openProject(p project.Project) tea.Cmd {
	b := board.New(a.backend, p.UUID,
		board.WithClock(a.now),
		board.WithHolidays(a.holidays),
		board.WithDayWidth(timelineDayWidth))
	a.board = NewBoardView(a.ctx, b, a.styles, a.now)
	a.screen = screenBoard

	size := tea.WindowSizeMsg{Width: a.width, Height: a.height}
	return tea.Batch(a.board.Init(), func() tea.Msg { return size })
}

func (a *App) closeBoard() {
	if a.board != nil {
		a.board.Close()
		a.board = nil
	}
	a.screen = screenProjects
}

// timelineDayWidth is the grid pitch used by the terminal; rendering divides it back out.
const timelineDayWidth = 10

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.delegate.width = msg.Width
		a.projects.SetSize(msg.Width-2, msg.Height-4)
		a.help.Width = msg.Width

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case projectsLoadedMsg:
		a.loading = false
		a.err = nil
		items := make([]list.Item, len(msg.projects))
		for i, p := range msg.projects {
			items[i] = projectItem{project: p}
		}
		return a, a.projects.SetItems(items)

	case loadFailedMsg:
		a.loading = false
		a.err = msg.err
		return a, nil

	case BackToProjects:
		a.closeBoard()
		a.loading = true
		return a, tea.Batch(a.spinner.Tick, a.loadProjects)

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Help) && !a.typing() {
			a.help.ShowAll = !a.help.ShowAll
			return a, nil
		}
		if msg.Type == tea.KeyCtrlC || (key.Matches(msg, a.keys.Quit) && !a.typing()) {
			a.closeBoard()
			return a, tea.Quit
		}
		if a.screen == screenProjects && !a.typing() {
			switch {
			case key.Matches(msg, a.keys.Enter):
				if item, ok := a.projects.SelectedItem().(projectItem); ok {
					return a, a.openProject(item.project)
				}
			case key.Matches(msg, a.keys.Reload):
				a.loading = true
				return a, tea.Batch(a.spinner.Tick, a.loadProjects)
			}
		}
	}

	var cmd tea.Cmd
	switch a.screen {
	case screenBoard:
		a.board, cmd = a.board.Update(msg)
	default:
		a.projects, cmd = a.projects.Update(msg)
	}
	return a, cmd
}

// typing reports whether keys go to a text input rather than to shortcuts.
func (a *App) typing() bool {
	if a.screen == screenBoard {
		return a.board != nil && a.board.adding
	}
	return a.projects.FilterState() == list.Filtering
}

func (a *App) View() string {
	var body string
	switch {
	case a.screen == screenBoard && a.board != nil:
		body = a.board.View()
	case a.loading:
		body = a.spinner.View() + " Loading projects..."
	case a.err != nil:
		body = a.styles.Error.Render("Could not load projects: "+a.err.Error()) + "\n" +
			a.styles.TitleMuted.Render("press r to retry")
	default:
		body = a.projects.View()
	}
	return body + "\n" + a.help.View(a.keys)
}
