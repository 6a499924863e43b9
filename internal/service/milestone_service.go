package service

import (
	"context"
	"fmt"
	"planboard/internal/dates"
	"planboard/internal/events"
	"planboard/internal/models/project"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (s *Service) ListMilestones(ctx context.Context, userID string, projectID uuid.UUID) ([]*project.Milestone, error) {
	if _, err := s.ownProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	ms, err := s.repo.ListMilestones(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	return ms, nil
}

func (s *Service) CreateMilestone(ctx context.Context, userID string, projectID uuid.UUID, title string, date time.Time) (*project.Milestone, error) {
	if _, err := s.ownProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	m := &project.Milestone{
		UUID:      uuid.New(),
		ProjectID: projectID,
		Title:     strings.TrimSpace(title),
		Date:      date,
		CreatedAt: s.now(),
	}
	if err := checkMilestone(m); err != nil {
		return nil, err
	}
	if err := s.repo.CreateMilestone(ctx, m); err != nil {
		return nil, translate(err, ResourceProject, projectID.String(), "create milestone")
	}
	s.publish(events.Event{Type: events.MilestoneCreated, ProjectID: projectID.String(), Payload: m})
	return m, nil
}

func (s *Service) UpdateMilestone(ctx context.Context, userID string, projectID, milestoneID uuid.UUID, options ...project.MilestoneOption) (*project.Milestone, error) {
	m, err := s.projectMilestone(ctx, userID, projectID, milestoneID)
	if err != nil {
		return nil, err
	}
	for _, opt := range options {
		if opt != nil {
			opt(m)
		}
	}
	m.Title = strings.TrimSpace(m.Title)
	if err := checkMilestone(m); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateMilestone(ctx, m); err != nil {
		return nil, translate(err, ResourceMilestone, milestoneID.String(), "update milestone")
	}
	s.publish(events.Event{Type: events.MilestoneUpdated, ProjectID: projectID.String(), Payload: m})
	return m, nil
}

func (s *Service) DeleteMilestone(ctx context.Context, userID string, projectID, milestoneID uuid.UUID) error {
	if _, err := s.projectMilestone(ctx, userID, projectID, milestoneID); err != nil {
		return err
	}
	if err := s.repo.DeleteMilestone(ctx, milestoneID); err != nil {
		return translate(err, ResourceMilestone, milestoneID.String(), "delete milestone")
	}
	s.publish(events.Event{Type: events.MilestoneDeleted, ProjectID: projectID.String(), Payload: map[string]string{"id": milestoneID.String()}})
	return nil
}

func (s *Service) projectMilestone(ctx context.Context, userID string, projectID, milestoneID uuid.UUID) (*project.Milestone, error) {
	if _, err := s.ownProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	m, err := s.repo.GetMilestone(ctx, milestoneID)
	if err != nil {
		return nil, translate(err, ResourceMilestone, milestoneID.String(), "get milestone")
	}
	if m.ProjectID != projectID {
		return nil, NewNotFound(ResourceMilestone, milestoneID.String())
	}
	return m, nil
}

func checkMilestone(m *project.Milestone) error {
	if m.Title == "" {
		return NewValidationError("title", "must not be empty")
	}
	if m.Date.IsZero() {
		return NewValidationError("date", "is required")
	}
	m.Date = dates.Day(m.Date)
	return nil
}
