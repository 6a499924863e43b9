package ui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
	Weekend     lipgloss.Color
	Holiday     lipgloss.Color
}

var TokyoNight = Theme{
	Background:    lipgloss.Color("#1a1b26"),
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary:   lipgloss.Color("#7aa2f7"),
	Secondary: lipgloss.Color("#bb9af7"),
	Accent:    lipgloss.Color("#7dcfff"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),

	Border:      lipgloss.Color("#3b4261"),
	BorderFocus: lipgloss.Color("#7aa2f7"),
	Selection:   lipgloss.Color("#33467c"),
	Weekend:     lipgloss.Color("#414868"),
	Holiday:     lipgloss.Color("#db4b4b"),
}

var Current = TokyoNight

type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	Tab       lipgloss.Style
	TabActive lipgloss.Style

	Column        lipgloss.Style
	ColumnFocused lipgloss.Style
	ColumnTitle   lipgloss.Style

	Card         lipgloss.Style
	CardSelected lipgloss.Style
	Overdue      lipgloss.Style

	RowLabel    lipgloss.Style
	RowSelected lipgloss.Style
	Header      lipgloss.Style
	Weekend     lipgloss.Style
	Holiday     lipgloss.Style
	Today       lipgloss.Style
	Cursor      lipgloss.Style
	Milestone   lipgloss.Style

	Input     lipgloss.Style
	Error     lipgloss.Style
	StatusBar lipgloss.Style
}

func NewStyles() *Styles {
	t := Current

	return &Styles{
		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),
		TitleMuted: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Tab: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 2),
		TabActive: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 2).
			Bold(true),

		Column: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		ColumnFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),
		ColumnTitle: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true),

		Card: lipgloss.NewStyle().
			Foreground(t.Foreground),
		CardSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Bold(true),
		Overdue: lipgloss.NewStyle().
			Foreground(t.Error),

		RowLabel: lipgloss.NewStyle().
			Foreground(t.Foreground),
		RowSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection),
		Header: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),
		Weekend: lipgloss.NewStyle().
			Foreground(t.Weekend),
		Holiday: lipgloss.NewStyle().
			Foreground(t.Holiday),
		Today: lipgloss.NewStyle().
			Foreground(t.Warning).
			Bold(true),
		Cursor: lipgloss.NewStyle().
			Background(t.Selection),
		Milestone: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true),

		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),
		Error: lipgloss.NewStyle().
			Foreground(t.Error),
		StatusBar: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 1),
	}
}

// barStyle colors a timeline bar with the task's own color when it has one.
func barStyle(color string, done bool) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(Current.Primary)
	if color != "" {
		s = s.Foreground(lipgloss.Color(color))
	}
	if done {
		s = s.Foreground(Current.Success)
	}
	return s
}
