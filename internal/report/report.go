// Package report exports a project timeline as an XLSX workbook.
package report

import (
	"fmt"
	"io"
	"math"
	"planboard/internal/dates"
	"planboard/internal/models/project"
	"planboard/internal/timeline"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	SheetTasks      = "Tasks"
	SheetMilestones = "Milestones"
	SheetTimeline   = "Timeline"

	defaultBarColor = "#4F81BD"
	headerColor     = "#DDEBF7"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type builder struct {
	f         *excelize.File
	barStyles map[string]int
}

// Build fills one sheet per concern: the task list, the milestones and a day-by-day
// gantt grid taken from the layout.
func Build(p project.Project, grid timeline.Grid) (*excelize.File, error) {
	b := &builder{f: excelize.NewFile(), barStyles: map[string]int{}}

	steps := []func(project.Project, timeline.Grid) error{b.tasks, b.milestones, b.timeline}
	for _, step := range steps {
		if err := step(p, grid); err != nil {
			_ = b.f.Close()
			return nil, err
		}
	}
	if err := b.f.DeleteSheet("Sheet1"); err != nil {
		_ = b.f.Close()
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	return b.f, nil
}

// Write builds the workbook and streams it to w.
func Write(w io.Writer, p project.Project, grid timeline.Grid) error {
	f, err := Build(p, grid)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (b *builder) sheet(name string, headers []string, widths []float64) error {
	index, err := b.f.NewSheet(name)
	if err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	if name == SheetTasks {
		b.f.SetActiveSheet(index)
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := b.f.SetCellValue(name, cell, h); err != nil {
			return err
		}
	}

	style, err := b.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := b.f.SetRowStyle(name, 1, 1, style); err != nil {
		return err
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := b.f.SetColWidth(name, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) row(sheet string, row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := b.f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func (b *builder) tasks(p project.Project, _ timeline.Grid) error {
	headers := []string{"Task", "Workflow", "Status", "Priority", "Start", "End", "Days"}
	if err := b.sheet(SheetTasks, headers, []float64{40, 20, 14, 10, 12, 12, 8}); err != nil {
		return err
	}
	for i, t := range p.Tasks {
		start, end, days := "", "", 0
		if t.StartDate != nil {
			start = dates.FormatDay(*t.StartDate)
		}
		if t.EndDate != nil {
			end = dates.FormatDay(*t.EndDate)
		}
		if t.StartDate != nil && t.EndDate != nil {
			days = dates.DaysBetween(*t.StartDate, *t.EndDate) + 1
		}
		err := b.row(SheetTasks, i+2, t.Text, t.WorkflowName, string(t.Status), string(t.Priority), start, end, days)
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) milestones(p project.Project, _ timeline.Grid) error {
	if err := b.sheet(SheetMilestones, []string{"Milestone", "Date", "Completed"}, []float64{40, 12, 12}); err != nil {
		return err
	}
	for i, m := range p.Milestones {
		done := "no"
		if m.Completed {
			done = "yes"
		}
		if err := b.row(SheetMilestones, i+2, m.Title, dates.FormatDay(m.Date), done); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) barStyle(color string) (int, error) {
	if !hexColor.MatchString(color) {
		color = defaultBarColor
	}
	color = strings.ToUpper(color)
	if id, ok := b.barStyles[color]; ok {
		return id, nil
	}
	id, err := b.f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("bar style: %w", err)
	}
	b.barStyles[color] = id
	return id, nil
}

// timeline writes one column per grid day; bar cells are filled with the task colour.
func (b *builder) timeline(_ project.Project, grid timeline.Grid) error {
	headers := make([]string, 0, len(grid.Days)+1)
	headers = append(headers, "Task")
	for _, d := range grid.Days {
		headers = append(headers, d.Date.Format("01-02"))
	}
	widths := make([]float64, len(headers))
	widths[0] = 40
	for i := 1; i < len(widths); i++ {
		widths[i] = 6
	}
	if err := b.sheet(SheetTimeline, headers, widths); err != nil {
		return err
	}

	for i, r := range grid.Rows {
		rowNum := i + 2
		label, color := r.WorkflowName, defaultBarColor
		if r.Kind == timeline.RowTask && r.Task != nil {
			label, color = r.Task.Text, r.Task.Color
		}
		if err := b.row(SheetTimeline, rowNum, label); err != nil {
			return err
		}
		if r.Bar == nil || grid.DayWidth <= 0 {
			continue
		}

		first := int(math.Round(r.Bar.Offset/grid.DayWidth)) + 2
		last := first + int(math.Round(r.Bar.Width/grid.DayWidth)) - 1
		if first < 2 || last > len(grid.Days)+1 {
			continue
		}
		style, err := b.barStyle(color)
		if err != nil {
			return err
		}
		from, _ := excelize.CoordinatesToCellName(first, rowNum)
		to, _ := excelize.CoordinatesToCellName(last, rowNum)
		if err := b.f.SetCellStyle(SheetTimeline, from, to, style); err != nil {
			return fmt.Errorf("style bar %s:%s: %w", from, to, err)
		}
	}
	return nil
}
