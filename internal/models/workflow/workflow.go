// Package workflow holds the workflow templates users save for themselves.
package workflow

import (
	"planboard/internal/templates"
	"time"

	"github.com/google/uuid"
)

type Template struct {
	UUID        uuid.UUID                `json:"id" db:"uuid"`
	UserID      string                   `json:"user_id" db:"user_id"`
	Name        string                   `json:"name" db:"name"`
	Description string                   `json:"description" db:"description"`
	Tasks       []templates.WorkflowTask `json:"tasks" db:"tasks"`
	CreatedAt   time.Time                `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time               `json:"updated_at,omitempty" db:"updated_at"`
}

func (t Template) ID() string { return t.UUID.String() }

func (t Template) Clone() Template {
	c := t
	c.Tasks = append([]templates.WorkflowTask(nil), t.Tasks...)
	return c
}

// Workflow is the template in the shape the expander takes; its ID is the template UUID.
func (t Template) Workflow() templates.Workflow {
	return templates.Workflow{
		ID:          t.ID(),
		Name:        t.Name,
		Description: t.Description,
		Tasks:       append([]templates.WorkflowTask(nil), t.Tasks...),
	}
}

// Workflows converts a list of saved templates.
func Workflows(list []Template) []templates.Workflow {
	out := make([]templates.Workflow, len(list))
	for i, t := range list {
		out[i] = t.Workflow()
	}
	return out
}

// TemplateOption is one field of a partial update; nil means the field was not sent.
type TemplateOption func(*Template)

func WithName(name *string) TemplateOption {
	if name == nil {
		return nil
	}
	return func(t *Template) { t.Name = *name }
}

func WithDescription(description *string) TemplateOption {
	if description == nil {
		return nil
	}
	return func(t *Template) { t.Description = *description }
}

func WithTasks(tasks []templates.WorkflowTask) TemplateOption {
	if tasks == nil {
		return nil
	}
	return func(t *Template) {
		t.Tasks = append([]templates.WorkflowTask(nil), tasks...)
	}
}

func Apply(t *Template, options ...TemplateOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
}
