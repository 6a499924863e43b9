package optimistic

import (
	"context"
	"errors"
	"planboard/internal/logger"

	"go.uber.org/zap"
)

// Controller runs mutations against one store. It never retries and never serializes
// edits of the same entity: the last local edit stays visible and the transport decides
// which write lands last.
type Controller[T any] struct {
	store  *Store[T]
	entity string
}

func NewController[T any](store *Store[T], entity string) *Controller[T] {
	return &Controller[T]{store: store, entity: entity}
}

func (c *Controller[T]) Store() *Store[T] { return c.store }

// Do applies m locally, commits it and rolls it back on failure. Validation errors are
// returned before any remote call.
func (c *Controller[T]) Do(ctx context.Context, m Mutation[T]) (*T, error) {
	undo, err := c.apply(m)
	if err != nil {
		return nil, err
	}
	return c.commit(ctx, m, undo)
}

func (c *Controller[T]) apply(m Mutation[T]) (Undo[T], error) {
	var undo Undo[T]
	err := c.store.Update(func(items []T) ([]T, error) {
		next, u, err := Apply(items, m, c.store.key)
		undo = u
		return next, err
	})
	return undo, err
}

func (c *Controller[T]) commit(ctx context.Context, m Mutation[T], undo Undo[T]) (*T, error) {
	if m.Commit == nil {
		return nil, nil
	}

	result, err := m.Commit(ctx)
	if err != nil {
		logger.Error("Optimistic: remote write failed, rolling back", err,
			zap.String("entity", c.entity),
			zap.String("kind", string(undo.Kind)),
			zap.String("id", undo.ID))

		rerr := c.store.Update(func(items []T) ([]T, error) {
			return Restore(items, undo, c.store.key), nil
		})
		if errors.Is(rerr, ErrClosed) {
			logger.Info("Optimistic: store closed, rollback skipped", zap.String("entity", c.entity))
		}
		return nil, &CommitError{Kind: undo.Kind, ID: undo.ID, Err: err}
	}

	if m.Kind == KindCreate && result != nil {
		_ = c.store.Update(func(items []T) ([]T, error) {
			return replace(items, undo.ID, *result, c.store.key), nil
		})
	}
	return result, nil
}

// BatchResult reports a batch whose commits may have partially failed.
type BatchResult[T any] struct {
	Committed []T
	Failed    []*CommitError
}

func (r BatchResult[T]) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// DoBatch applies every mutation as one local change, then commits them one at a time in
// order. Failed commits are rolled back individually; successful ones stay.
func (c *Controller[T]) DoBatch(ctx context.Context, ms []Mutation[T]) (BatchResult[T], error) {
	undos := make([]Undo[T], len(ms))
	err := c.store.Update(func(items []T) ([]T, error) {
		next := items
		for i, m := range ms {
			applied, u, err := Apply(next, m, c.store.key)
			if err != nil {
				return nil, err
			}
			next, undos[i] = applied, u
		}
		return next, nil
	})
	if err != nil {
		return BatchResult[T]{}, err
	}

	var res BatchResult[T]
	for i, m := range ms {
		out, err := c.commit(ctx, m, undos[i])
		if err != nil {
			var ce *CommitError
			if errors.As(err, &ce) {
				res.Failed = append(res.Failed, ce)
			}
			continue
		}
		if out != nil {
			res.Committed = append(res.Committed, *out)
		}
	}

	if len(res.Failed) > 0 {
		logger.Warn("Optimistic: batch partially failed",
			zap.String("entity", c.entity),
			zap.Int("total", len(ms)),
			zap.Int("failed", len(res.Failed)))
	}
	return res, nil
}
