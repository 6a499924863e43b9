package templates_test

import (
	"planboard/internal/dates"
	"planboard/internal/holiday"
	"planboard/internal/models/task"
	"planboard/internal/templates"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand_Sequential(t *testing.T) {
	wf := templates.Workflow{
		ID:   "two-step",
		Name: "Two step",
		Tasks: []templates.WorkflowTask{
			{Title: "A", Duration: 3},
			{Title: "B", Duration: 2},
		},
	}

	got := templates.Expand(wf, dates.MustDay("2024-02-01"), templates.ExpandOptions{WorkflowID: "wf-1"})

	require.Len(t, got, 2)
	assert.Equal(t, "2024-02-01", dates.FormatDay(got[0].Start))
	assert.Equal(t, "2024-02-03", dates.FormatDay(got[0].End))
	assert.Equal(t, "2024-02-04", dates.FormatDay(got[1].Start))
	assert.Equal(t, "2024-02-05", dates.FormatDay(got[1].End))
	assert.Equal(t, "Two step: A", got[0].Text)
	assert.Equal(t, "wf-1", got[1].WorkflowID)
	assert.Equal(t, "Two step", got[1].WorkflowName)
}

func TestExpand_GeneratesWorkflowID(t *testing.T) {
	wf, ok := templates.FindWorkflow("software-dev")
	require.True(t, ok)

	got := templates.Expand(wf, dates.MustDay("2024-04-01"), templates.ExpandOptions{})

	require.Len(t, got, len(wf.Tasks))
	assert.NotEmpty(t, got[0].WorkflowID)
	for i := 1; i < len(got); i++ {
		assert.Equal(t, got[0].WorkflowID, got[i].WorkflowID)
		assert.Equal(t, dates.AddDays(got[i-1].End, 1), got[i].Start)
	}
}

func TestExpand_SkipNonWorkingDays(t *testing.T) {
	wf := templates.Workflow{
		Name: "Skip",
		Tasks: []templates.WorkflowTask{
			{Title: "A", Duration: 2},
			{Title: "B", Duration: 1},
		},
	}

	// Friday 2024-02-09; Monday 2024-02-12 is a substitute holiday.
	got := templates.Expand(wf, dates.MustDay("2024-02-09"), templates.ExpandOptions{
		SkipNonWorkingDays: true,
		Holidays:           holiday.Japan(),
	})

	assert.Equal(t, "2024-02-13", dates.FormatDay(got[0].End))
	assert.Equal(t, "2024-02-14", dates.FormatDay(got[1].Start))
	assert.Equal(t, "2024-02-14", dates.FormatDay(got[1].End))
}

func TestCatalogs(t *testing.T) {
	assert.Len(t, templates.Workflows(), 3)
	assert.Len(t, templates.Milestones(), 18)

	m, ok := templates.FindMilestone("kickoff")
	require.True(t, ok)
	assert.Equal(t, templates.CategoryGeneral, m.Category)

	_, ok = templates.FindWorkflow("missing")
	assert.False(t, ok)

	wfs := templates.Workflows()
	wfs[0].Tasks[0].Title = "changed"
	assert.NotEqual(t, "changed", templates.Workflows()[0].Tasks[0].Title)
}

func TestExpandPlan(t *testing.T) {
	plan := templates.Plan{
		Title: "Run a marathon",
		Milestones: []templates.PlanMilestone{
			{Title: "Base", Tasks: []templates.PlanTask{{Text: "Run 5k", Priority: "high"}}},
			{Title: "Build", Tasks: []templates.PlanTask{{Text: "Run 20k", Priority: "urgent"}}},
		},
	}

	got := templates.ExpandPlan(plan, dates.MustDay("2024-01-01"), dates.MustDay("2024-01-21"))

	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-11", dates.FormatDay(got[0].Date))
	assert.Equal(t, "2024-01-21", dates.FormatDay(got[1].Date))
	assert.Equal(t, "2024-01-01", dates.FormatDay(got[0].Tasks[0].Start))
	assert.Equal(t, "2024-01-12", dates.FormatDay(got[1].Tasks[0].Start))
	assert.Equal(t, task.PriorityHigh, got[0].Tasks[0].Priority)
	assert.Equal(t, task.PriorityMedium, got[1].Tasks[0].Priority)
}

func TestFindWorkflow_CustomTemplates(t *testing.T) {
	custom := templates.Workflow{
		ID:    "2b7c0e7e-5b6f-4c3a-9a59-0d1f3c2b9e11",
		Name:  "Release train",
		Tasks: []templates.WorkflowTask{{Title: "Cut branch", Duration: 1}},
	}

	tests := []struct {
		name     string
		id       string
		custom   []templates.Workflow
		wantName string
		wantOK   bool
	}{
		{"catalog only", "marketing", nil, "Marketing", true},
		{"custom", custom.ID, []templates.Workflow{custom}, "Release train", true},
		{"catalog with custom present", "uiux-design", []templates.Workflow{custom}, "UI/UX Design", true},
		{"custom not passed", custom.ID, nil, "", false},
		{"unknown", "nope", []templates.Workflow{custom}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := templates.FindWorkflow(tt.id, tt.custom...)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}

	got, _ := templates.FindWorkflow(custom.ID, custom)
	got.Tasks[0].Title = "changed"
	assert.Equal(t, "Cut branch", custom.Tasks[0].Title)
}
