package templates

import "strings"

// WorkflowTask is one step of a workflow template. Duration is in days, start day included.
type WorkflowTask struct {
	Title       string `json:"title"`
	Duration    int    `json:"duration"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

type Workflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Tasks       []WorkflowTask `json:"tasks"`
}

type MilestoneCategory string

const (
	CategoryDevelopment MilestoneCategory = "development"
	CategoryDesign      MilestoneCategory = "design"
	CategoryMarketing   MilestoneCategory = "marketing"
	CategoryGeneral     MilestoneCategory = "general"
)

type Milestone struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    MilestoneCategory `json:"category"`
	Color       string            `json:"color"`
}

// checklist renders subtasks in the task-list markup understood by the rich-text editor.
func checklist(items ...string) string {
	var b strings.Builder
	b.WriteString(`<ul data-type="taskList">`)
	for _, it := range items {
		b.WriteString(`<li data-type="taskItem" data-checked="false"><label><input type="checkbox"><span></span></label><div>`)
		b.WriteString(it)
		b.WriteString(`</div></li>`)
	}
	b.WriteString(`</ul>`)
	return b.String()
}

var workflows = []Workflow{
	{
		ID:          "uiux-design",
		Name:        "UI/UX Design",
		Description: "Standard flow from research to prototype",
		Tasks: []WorkflowTask{
			{Title: "User research", Duration: 3, Color: "#3b82f6", Description: checklist("Competitor analysis", "User interviews", "Personas")},
			{Title: "Wireframes", Duration: 5, Color: "#8b5cf6", Description: checklist("Information architecture", "Low-fidelity wireframes")},
			{Title: "Design mockups", Duration: 7, Color: "#ec4899", Description: checklist("High-fidelity design", "Apply design system")},
			{Title: "Prototyping", Duration: 4, Color: "#f97316", Description: checklist("Interactions", "Screen transitions")},
			{Title: "User testing", Duration: 3, Color: "#22c55e", Description: checklist("Usability testing", "Collect feedback")},
			{Title: "Design revisions", Duration: 3, Color: "#eab308", Description: checklist("Apply feedback", "Final polish")},
		},
	},
	{
		ID:          "software-dev",
		Name:        "Software Development",
		Description: "Development cycle from requirements to release",
		Tasks: []WorkflowTask{
			{Title: "Requirements", Duration: 5, Color: "#3b82f6", Description: checklist("Business requirements", "Functional requirements", "Non-functional requirements", "Requirements document")},
			{Title: "Basic design", Duration: 5, Color: "#8b5cf6", Description: checklist("System diagram", "Database design", "API design", "Screen flow")},
			{Title: "Detailed design", Duration: 5, Color: "#6366f1", Description: checklist("Class diagrams", "Sequence diagrams", "Table definitions", "API specification")},
			{Title: "Implementation", Duration: 10, Color: "#ec4899", Description: checklist("Development environment", "Backend", "Frontend", "Code review")},
			{Title: "Unit testing", Duration: 3, Color: "#f43f5e", Description: checklist("Test cases", "Run unit tests", "Fix bugs")},
			{Title: "Integration testing", Duration: 5, Color: "#f97316", Description: checklist("Test scenarios", "Run integration tests", "Fix and retest", "Test report")},
			{Title: "Release preparation", Duration: 2, Color: "#22c55e", Description: checklist("Production environment", "Deployment runbook", "Go/no-go meeting", "Deploy")},
		},
	},
	{
		ID:          "marketing",
		Name:        "Marketing",
		Description: "From campaign planning to measuring results",
		Tasks: []WorkflowTask{
			{Title: "Planning", Duration: 3, Color: "#3b82f6", Description: checklist("Market research", "Target audience", "Campaign goals", "Budget")},
			{Title: "Content production", Duration: 7, Color: "#ec4899", Description: checklist("Content plan", "Copywriting", "Images and video", "Proofreading")},
			{Title: "Landing page", Duration: 5, Color: "#8b5cf6", Description: checklist("Wireframe", "Design", "Build", "A/B test setup")},
			{Title: "Ad setup", Duration: 2, Color: "#f97316", Description: checklist("Ad accounts", "Ad creatives", "Targeting", "Budget allocation")},
			{Title: "Campaign run", Duration: 14, Color: "#eab308", Description: checklist("Launch", "Daily monitoring", "Ad optimization", "Customer support")},
			{Title: "Measurement and analysis", Duration: 3, Color: "#22c55e", Description: checklist("Collect data", "KPI analysis", "Report", "Improvement proposals")},
		},
	},
}

var milestones = []Milestone{
	{ID: "requirements-freeze", Name: "Requirements freeze", Description: "Requirements signed off and frozen", Category: CategoryDevelopment, Color: "#3b82f6"},
	{ID: "design-approval", Name: "Design approval", Description: "Basic and detailed design reviewed", Category: CategoryDevelopment, Color: "#6366f1"},
	{ID: "alpha-release", Name: "Alpha release", Description: "Internal test build", Category: CategoryDevelopment, Color: "#8b5cf6"},
	{ID: "beta-release", Name: "Beta release", Description: "Limited public test build", Category: CategoryDevelopment, Color: "#a855f7"},
	{ID: "code-freeze", Name: "Code freeze", Description: "Bug fixes only", Category: CategoryDevelopment, Color: "#c026d3"},
	{ID: "production-release", Name: "Production release", Description: "General availability", Category: CategoryDevelopment, Color: "#22c55e"},

	{ID: "wireframe-approval", Name: "Wireframe approval", Description: "Screen design approved", Category: CategoryDesign, Color: "#ec4899"},
	{ID: "design-system-complete", Name: "Design system complete", Description: "Components and style guide done", Category: CategoryDesign, Color: "#f43f5e"},
	{ID: "prototype-review", Name: "Prototype review", Description: "Interactive prototype walkthrough", Category: CategoryDesign, Color: "#fb7185"},
	{ID: "design-handoff", Name: "Design handoff", Description: "Design delivered to engineering", Category: CategoryDesign, Color: "#fda4af"},

	{ID: "campaign-launch", Name: "Campaign launch", Description: "Marketing campaign starts", Category: CategoryMarketing, Color: "#f97316"},
	{ID: "content-publish", Name: "Content published", Description: "Landing pages, articles and videos live", Category: CategoryMarketing, Color: "#fb923c"},
	{ID: "ad-start", Name: "Ads start", Description: "Web and social ads running", Category: CategoryMarketing, Color: "#fdba74"},
	{ID: "campaign-end", Name: "Campaign end", Description: "Campaign over, measurement begins", Category: CategoryMarketing, Color: "#fed7aa"},

	{ID: "kickoff", Name: "Kickoff meeting", Description: "Project start", Category: CategoryGeneral, Color: "#eab308"},
	{ID: "milestone-review", Name: "Midpoint review", Description: "Progress check and course correction", Category: CategoryGeneral, Color: "#facc15"},
	{ID: "stakeholder-demo", Name: "Stakeholder demo", Description: "Demo for stakeholders", Category: CategoryGeneral, Color: "#fde047"},
	{ID: "retrospective", Name: "Retrospective", Description: "Look back and collect improvements", Category: CategoryGeneral, Color: "#fef08a"},
}

// Workflows returns a copy of the workflow catalog.
func Workflows() []Workflow {
	out := make([]Workflow, len(workflows))
	for i, w := range workflows {
		w.Tasks = append([]WorkflowTask(nil), w.Tasks...)
		out[i] = w
	}
	return out
}

func Milestones() []Milestone {
	return append([]Milestone(nil), milestones...)
}

// FindWorkflow looks id up in the user's own templates first, then in the catalog.
func FindWorkflow(id string, custom ...Workflow) (Workflow, bool) {
	for _, w := range custom {
		if w.ID == id {
			w.Tasks = append([]WorkflowTask(nil), w.Tasks...)
			return w, true
		}
	}
	for _, w := range Workflows() {
		if w.ID == id {
			return w, true
		}
	}
	return Workflow{}, false
}

func FindMilestone(id string) (Milestone, bool) {
	for _, m := range milestones {
		if m.ID == id {
			return m, true
		}
	}
	return Milestone{}, false
}
