package service

import (
	"context"
	"fmt"
	"planboard/internal/logger"
	"planboard/internal/models/workflow"
	"planboard/internal/templates"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxStepDays bounds a single template step.
const maxStepDays = 365

func (s *Service) ListWorkflowTemplates(ctx context.Context, userID string) ([]*workflow.Template, error) {
	list, err := s.repo.ListWorkflowTemplates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list workflow templates: %w", err)
	}
	return list, nil
}

func (s *Service) CreateWorkflowTemplate(ctx context.Context, userID, name string, options ...workflow.TemplateOption) (*workflow.Template, error) {
	t := &workflow.Template{
		UUID:      uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: s.now(),
	}
	workflow.Apply(t, options...)
	if err := checkTemplate(t); err != nil {
		return nil, err
	}
	if err := s.repo.CreateWorkflowTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("create workflow template: %w", err)
	}
	logger.Info("Service: workflow template saved", zap.String("template_id", t.ID()), zap.Int("steps", len(t.Tasks)))
	return t, nil
}

func (s *Service) UpdateWorkflowTemplate(ctx context.Context, userID string, id uuid.UUID, options ...workflow.TemplateOption) (*workflow.Template, error) {
	t, err := s.ownTemplate(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	workflow.Apply(t, options...)
	if err := checkTemplate(t); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateWorkflowTemplate(ctx, t); err != nil {
		return nil, translate(err, ResourceTemplate, id.String(), "update workflow template")
	}
	return t, nil
}

func (s *Service) DeleteWorkflowTemplate(ctx context.Context, userID string, id uuid.UUID) error {
	if _, err := s.ownTemplate(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteWorkflowTemplate(ctx, id); err != nil {
		return translate(err, ResourceTemplate, id.String(), "delete workflow template")
	}
	return nil
}

// ownTemplate hides other users' templates behind NOT_FOUND.
func (s *Service) ownTemplate(ctx context.Context, userID string, id uuid.UUID) (*workflow.Template, error) {
	t, err := s.repo.GetWorkflowTemplate(ctx, id)
	if err != nil {
		return nil, translate(err, ResourceTemplate, id.String(), "get workflow template")
	}
	if t.UserID != userID {
		return nil, NewNotFound(ResourceTemplate, id.String())
	}
	return t, nil
}

// findWorkflow resolves a template id against the user's saved templates and the catalog.
func (s *Service) findWorkflow(ctx context.Context, userID, templateID string) (templates.Workflow, error) {
	var custom []templates.Workflow
	if id, err := uuid.Parse(templateID); err == nil {
		t, err := s.ownTemplate(ctx, userID, id)
		if err != nil {
			return templates.Workflow{}, err
		}
		custom = append(custom, t.Workflow())
	}
	wf, ok := templates.FindWorkflow(templateID, custom...)
	if !ok {
		return templates.Workflow{}, NewNotFound(ResourceTemplate, templateID)
	}
	return wf, nil
}

func checkTemplate(t *workflow.Template) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return NewValidationError("name", "must not be empty")
	}
	if len(t.Tasks) == 0 {
		return NewValidationError("tasks", "at least one task is required")
	}
	for i := range t.Tasks {
		step := &t.Tasks[i]
		step.Title = strings.TrimSpace(step.Title)
		if step.Title == "" {
			return NewValidationError(fmt.Sprintf("tasks[%d].title", i), "must not be empty")
		}
		if step.Duration < 1 || step.Duration > maxStepDays {
			return NewValidationError(fmt.Sprintf("tasks[%d].duration", i), fmt.Sprintf("must be between 1 and %d days", maxStepDays))
		}
	}
	return nil
}
