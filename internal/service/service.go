package service

import (
	"context"
	"errors"
	"fmt"
	"planboard/internal/events"
	"planboard/internal/holiday"
	"planboard/internal/logger"
	repo "planboard/internal/repository"
	"time"

	"go.uber.org/zap"
)

// Service holds the business rules of the planning API.
type Service struct {
	repo      Repository
	events    events.Publisher
	now       func() time.Time
	holidays  holiday.Lookup
	shareBase string
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithHolidays(h holiday.Lookup) Option {
	return func(s *Service) {
		if h != nil {
			s.holidays = h
		}
	}
}

// WithShareBaseURL sets the prefix of generated share links, e.g. "https://example.com/shared/".
func WithShareBaseURL(base string) Option {
	return func(s *Service) {
		s.shareBase = base
	}
}

func NewService(repository Repository, options ...Option) *Service {
	s := &Service{
		repo:      repository,
		events:    events.Nop{},
		now:       time.Now,
		holidays:  holiday.Japan(),
		shareBase: "/shared/",
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("service health check: %w", err)
	}
	return nil
}

// translate turns repository sentinels into business errors.
func translate(err error, resource Resource, id string, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		logger.Info("Service: record not found", zap.String("resource", string(resource)), zap.String("target_id", id))
		return NewNotFound(resource, id)
	case errors.Is(err, repo.ErrVersionConflict):
		return NewVersionConflict(resource, id, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) publish(e events.Event) {
	s.events.Publish(e)
}
