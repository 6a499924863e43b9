package ui

import (
	"fmt"
	"planboard/internal/board"
	"planboard/internal/dates"
	"planboard/internal/models/task"
	"planboard/internal/timeline"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const labelWidth = 24

var columnTitles = map[task.Status]string{
	task.StatusTodo:       "To do",
	task.StatusInProgress: "In progress",
	task.StatusDone:       "Done",
}

func renderKanban(k board.Kanban, column, row, width int, now time.Time, s *Styles) string {
	colWidth := 28
	if width > 0 {
		colWidth = max((width-6)/len(task.Statuses)-4, 16)
	}

	cols := make([]string, 0, len(task.Statuses))
	for ci, status := range task.Statuses {
		tasks := k.Column(status)
		lines := []string{s.ColumnTitle.Render(fmt.Sprintf("%s (%d)", columnTitles[status], len(tasks)))}
		for ri, t := range tasks {
			lines = append(lines, card(t, colWidth, ci == column && ri == row, now, s))
		}
		style := s.Column
		if ci == column {
			style = s.ColumnFocused
		}
		cols = append(cols, style.Width(colWidth).Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func card(t task.Task, width int, selected bool, now time.Time, s *Styles) string {
	text := truncate(t.Text, width-2)
	meta := string(t.Priority)
	if d := t.DueDate(); d != nil {
		meta += " · " + dates.FormatDay(*d)
	}
	style := s.Card
	if selected {
		style = s.CardSelected
	}
	line := style.Render(text) + "\n" + s.TitleMuted.Render(meta)
	if t.IsOverdue(now) {
		line += " " + s.Overdue.Render("overdue")
	}
	return line
}

type timelineState struct {
	row    int
	cursor int
	cell   int
	width  int
	now    time.Time
}

// renderTimeline draws one character row per grid row. Each day is st.cell characters
// wide; columns come from the grid's offsets divided by its day width.
func renderTimeline(g timeline.Grid, st timelineState, s *Styles) string {
	if g.TotalDays == 0 || g.DayWidth <= 0 {
		return s.TitleMuted.Render("Nothing scheduled")
	}
	cell := max(st.cell, 1)
	visible := g.TotalDays
	if st.width > 0 {
		visible = max((st.width-labelWidth-2)/cell, 1)
	}
	first := 0
	if st.cursor >= visible {
		first = st.cursor - visible + 1
	}
	last := min(first+visible, g.TotalDays)

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelWidth))
	for i := first; i < last; i++ {
		b.WriteString(dayHeader(g.Days[i], i, cell, st, g, s))
	}
	b.WriteString("\n")

	b.WriteString(pad(s.Milestone.Render("◆ milestones"), labelWidth))
	marks := make(map[int]bool, len(g.Milestones))
	for _, m := range g.Milestones {
		marks[dayIndex(m.Offset, g.DayWidth)] = true
	}
	for i := first; i < last; i++ {
		if marks[i] {
			b.WriteString(s.Milestone.Render(pad("◆", cell)))
		} else {
			b.WriteString(strings.Repeat(" ", cell))
		}
	}
	b.WriteString("\n")

	for ri, r := range g.Rows {
		label := rowLabel(r)
		if ri == st.row {
			b.WriteString(s.RowSelected.Render(pad(label, labelWidth)))
		} else {
			b.WriteString(s.RowLabel.Render(pad(label, labelWidth)))
		}
		b.WriteString(barLine(r, first, last, cell, g.DayWidth))
		b.WriteString("\n")
	}
	return b.String()
}

func dayHeader(d timeline.DayInfo, idx, cell int, st timelineState, g timeline.Grid, s *Styles) string {
	text := pad(d.Date.Format("2")[:min(cell, len(d.Date.Format("2")))], cell)
	style := s.Header
	switch {
	case d.IsHoliday:
		style = s.Holiday
	case d.IsWeekend:
		style = s.Weekend
	}
	if g.TodayVisible && idx == dayIndex(g.Today, g.DayWidth) {
		style = s.Today
	}
	if idx == st.cursor {
		style = style.Inherit(s.Cursor)
	}
	return style.Render(text)
}

func rowLabel(r timeline.Row) string {
	if r.Kind == timeline.RowWorkflow {
		marker := "▾ "
		if r.Collapsed {
			marker = "▸ "
		}
		return truncate(fmt.Sprintf("%s%s (%d)", marker, r.WorkflowName, r.TaskCount), labelWidth-1)
	}
	text := r.Task.Text
	if r.WorkflowID != "" {
		text = "  " + text
	}
	return truncate(text, labelWidth-1)
}

func barLine(r timeline.Row, first, last, cell int, dayWidth float64) string {
	if r.Bar == nil {
		return ""
	}
	start := dayIndex(r.Bar.Offset, dayWidth)
	end := start + max(dayIndex(r.Bar.Width, dayWidth), 1)
	glyph := "█"
	if r.Kind == timeline.RowWorkflow {
		glyph = "▔"
	}
	color, done := "", false
	if r.Task != nil {
		color, done = r.Task.Color, r.Task.Status == task.StatusDone
	}

	var b strings.Builder
	for i := first; i < last; i++ {
		if i >= start && i < end {
			b.WriteString(strings.Repeat(glyph, cell))
		} else {
			b.WriteString(strings.Repeat(" ", cell))
		}
	}
	return barStyle(color, done).Render(b.String())
}

// dayIndex converts a grid offset back to a day column.
func dayIndex(offset, dayWidth float64) int {
	return int(offset/dayWidth + 0.5)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func pad(s string, n int) string {
	w := lipgloss.Width(s)
	if w >= n {
		return s
	}
	return s + strings.Repeat(" ", n-w)
}
