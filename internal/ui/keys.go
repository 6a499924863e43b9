package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	MoveLeft  key.Binding
	MoveRight key.Binding
	Enter     key.Binding
	Back      key.Binding
	Tab       key.Binding
	New       key.Binding
	Delete    key.Binding
	Subtask   key.Binding
	Reload    key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	NextTpl   key.Binding
	PrevTpl   key.Binding
	Drop      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		MoveLeft:  key.NewBinding(key.WithKeys("H", "shift+left"), key.WithHelp("H", "move task left")),
		MoveRight: key.NewBinding(key.WithKeys("L", "shift+right"), key.WithHelp("L", "move task right")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open/collapse")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "kanban/timeline")),
		New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		Delete:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Subtask:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "check next subtask")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		NextTpl:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next template")),
		PrevTpl:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous template")),
		Drop:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "drop template on day")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.New, k.Delete, k.Reload, k.Back, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.MoveLeft, k.MoveRight, k.New, k.Delete, k.Subtask},
		{k.Enter, k.ZoomIn, k.ZoomOut, k.PrevTpl, k.NextTpl, k.Drop},
		{k.Tab, k.Reload, k.Back, k.Quit},
	}
}
