package board

import (
	"context"
	"fmt"
	"planboard/internal/dates"
	"planboard/internal/handlers/dto"
	"planboard/internal/models/project"
	"planboard/internal/optimistic"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (b *Board) AddMilestone(ctx context.Context, title string, date time.Time) (*project.Milestone, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: milestone title is empty", optimistic.ErrValidation)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: milestone date is missing", optimistic.ErrValidation)
	}
	day := dates.Day(date)
	m := project.Milestone{
		UUID:      uuid.New(),
		ProjectID: b.projectID,
		Title:     title,
		Date:      day,
		CreatedAt: b.now(),
	}
	req := dto.CreateMilestoneRequest{Title: title, Date: &dto.Date{Time: day}}

	return b.milestones.Do(ctx, optimistic.Create(m, func(ctx context.Context) (*project.Milestone, error) {
		created, err := b.backend.CreateMilestone(ctx, b.projectID, req)
		if err != nil {
			return nil, err
		}
		return &created, nil
	}))
}

func (b *Board) ToggleMilestone(ctx context.Context, id string) error {
	mid, err := parseID(id)
	if err != nil {
		return err
	}
	current, ok := b.milestones.Store().Get(id)
	if !ok {
		return fmt.Errorf("%w: unknown milestone %s", optimistic.ErrValidation, id)
	}
	completed := !current.Completed

	_, err = b.milestones.Do(ctx, optimistic.Update(id,
		func(m project.Milestone) project.Milestone {
			m.Completed = completed
			return m
		},
		func(ctx context.Context) error {
			_, err := b.backend.UpdateMilestone(ctx, b.projectID, mid, dto.UpdateMilestoneRequest{Completed: &completed})
			return err
		}))
	return err
}

// MoveMilestone reschedules a milestone to another day.
func (b *Board) MoveMilestone(ctx context.Context, id string, date time.Time) error {
	mid, err := parseID(id)
	if err != nil {
		return err
	}
	day := dates.Day(date)
	_, err = b.milestones.Do(ctx, optimistic.Update(id,
		func(m project.Milestone) project.Milestone {
			m.Date = day
			return m
		},
		func(ctx context.Context) error {
			_, err := b.backend.UpdateMilestone(ctx, b.projectID, mid, dto.UpdateMilestoneRequest{Date: &dto.Date{Time: day}})
			return err
		}))
	return err
}

func (b *Board) DeleteMilestone(ctx context.Context, id string) error {
	mid, err := parseID(id)
	if err != nil {
		return err
	}
	_, err = b.milestones.Do(ctx, optimistic.Delete[project.Milestone](id, func(ctx context.Context) error {
		return b.backend.DeleteMilestone(ctx, b.projectID, mid)
	}))
	return err
}
