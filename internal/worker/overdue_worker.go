package worker

import (
	"context"
	"fmt"
	"planboard/internal/dates"
	"planboard/internal/events"
	"planboard/internal/logger"
	"planboard/internal/models/task"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OverdueSource interface {
	ListOverdueTasks(ctx context.Context, before time.Time, limit int) ([]*task.Task, error)
}

// OverdueWorker periodically looks for unfinished tasks past their due day and
// announces each one once on the change feed.
type OverdueWorker struct {
	repo      OverdueSource
	publisher events.Publisher
	interval  time.Duration
	batchSize int
	now       func() time.Time

	mu       sync.Mutex
	notified map[uuid.UUID]struct{}
}

func NewOverdueWorker(repo OverdueSource, publisher events.Publisher, interval *time.Duration, batchSize *int) *OverdueWorker {
	var intervalToSet time.Duration
	if interval == nil || *interval <= 0 {
		intervalToSet = 5 * time.Minute
	} else {
		intervalToSet = *interval
	}

	var batchToSet int
	if batchSize == nil || *batchSize <= 0 {
		batchToSet = 100
	} else {
		batchToSet = *batchSize
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &OverdueWorker{
		repo:      repo,
		publisher: publisher,
		interval:  intervalToSet,
		batchSize: batchToSet,
		now:       time.Now,
		notified:  make(map[uuid.UUID]struct{}),
	}
}

func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("Worker: overdue scan started", zap.Time("started_at", time.Now()))
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: overdue scan stopping")
			return
		}
	}
}

// Check publishes task_overdue for every newly overdue task and returns how many were announced.
func (w *OverdueWorker) Check(ctx context.Context) int {
	start := time.Now()

	tasks, err := w.overdueTasks(ctx)
	if err != nil {
		logger.Warn("Worker: failed to load tasks", zap.Error(err))
		return 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	seen := make(map[uuid.UUID]struct{}, len(tasks))
	announced := 0
	for _, t := range tasks {
		if !t.IsOverdue(now) {
			continue
		}
		seen[t.UUID] = struct{}{}
		if _, ok := w.notified[t.UUID]; ok {
			continue
		}
		w.publisher.Publish(overdueEvent(t))
		w.notified[t.UUID] = struct{}{}
		announced++
	}
	// A task that left the overdue set (done, rescheduled, deleted) may be announced again later.
	if len(tasks) < w.batchSize {
		for id := range w.notified {
			if _, ok := seen[id]; !ok {
				delete(w.notified, id)
			}
		}
	}

	logger.Info(
		"Worker: overdue scan finished",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", len(tasks)),
		zap.Int("overdue", announced),
	)
	return announced
}

func (w *OverdueWorker) overdueTasks(ctx context.Context) ([]*task.Task, error) {
	tasks, err := w.repo.ListOverdueTasks(ctx, dates.Day(w.now()), w.batchSize)
	if err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}
	return tasks, nil
}

func overdueEvent(t *task.Task) events.Event {
	e := events.Event{Type: events.TaskOverdue, UserID: t.UserID, Payload: t}
	if t.ProjectID != nil {
		e.ProjectID = t.ProjectID.String()
	}
	return e
}
