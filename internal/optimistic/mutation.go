// Package optimistic applies mutations to a local collection before the remote write
// and compensates exactly when the write fails.
package optimistic

import (
	"context"
	"errors"
	"fmt"
)

type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// ErrValidation marks a mutation rejected before anything was dispatched.
var ErrValidation = errors.New("validation error")

// Mutation is one optimistic change. Value is the entity for creates, Patch derives the
// new entity for updates. Commit performs the remote write; for creates it may return
// the server's copy, which replaces the local one.
type Mutation[T any] struct {
	Kind   Kind
	ID     string
	Value  T
	Patch  func(T) T
	Commit func(ctx context.Context) (*T, error)
}

// Undo is the compensation for one applied mutation.
type Undo[T any] struct {
	Kind  Kind
	ID    string
	Index int
	Prev  T
}

func Create[T any](value T, commit func(ctx context.Context) (*T, error)) Mutation[T] {
	return Mutation[T]{Kind: KindCreate, Value: value, Commit: commit}
}

func Update[T any](id string, patch func(T) T, commit func(ctx context.Context) error) Mutation[T] {
	return Mutation[T]{Kind: KindUpdate, ID: id, Patch: patch, Commit: discardResult[T](commit)}
}

func Delete[T any](id string, commit func(ctx context.Context) error) Mutation[T] {
	return Mutation[T]{Kind: KindDelete, ID: id, Commit: discardResult[T](commit)}
}

func discardResult[T any](commit func(ctx context.Context) error) func(ctx context.Context) (*T, error) {
	if commit == nil {
		return nil
	}
	return func(ctx context.Context) (*T, error) {
		return nil, commit(ctx)
	}
}

// Apply returns the post-mutation collection and its compensation. items is not modified.
func Apply[T any](items []T, m Mutation[T], key func(T) string) ([]T, Undo[T], error) {
	switch m.Kind {
	case KindCreate:
		id := key(m.Value)
		if id == "" {
			return nil, Undo[T]{}, fmt.Errorf("%w: create without id", ErrValidation)
		}
		next := make([]T, 0, len(items)+1)
		next = append(next, items...)
		next = append(next, m.Value)
		return next, Undo[T]{Kind: KindCreate, ID: id, Index: len(items)}, nil

	case KindUpdate:
		if m.Patch == nil {
			return nil, Undo[T]{}, fmt.Errorf("%w: update %s without patch", ErrValidation, m.ID)
		}
		idx := indexOf(items, m.ID, key)
		if idx < 0 {
			return nil, Undo[T]{}, fmt.Errorf("%w: unknown id %s", ErrValidation, m.ID)
		}
		next := make([]T, len(items))
		copy(next, items)
		next[idx] = m.Patch(items[idx])
		return next, Undo[T]{Kind: KindUpdate, ID: m.ID, Index: idx, Prev: items[idx]}, nil

	case KindDelete:
		idx := indexOf(items, m.ID, key)
		if idx < 0 {
			return nil, Undo[T]{}, fmt.Errorf("%w: unknown id %s", ErrValidation, m.ID)
		}
		next := make([]T, 0, len(items)-1)
		next = append(next, items[:idx]...)
		next = append(next, items[idx+1:]...)
		return next, Undo[T]{Kind: KindDelete, ID: m.ID, Index: idx, Prev: items[idx]}, nil
	}
	return nil, Undo[T]{}, fmt.Errorf("%w: unknown mutation kind %q", ErrValidation, m.Kind)
}

// Restore compensates one mutation against the current collection, leaving every other
// entity as it is now. An updated entity that has since been removed stays removed.
func Restore[T any](items []T, u Undo[T], key func(T) string) []T {
	switch u.Kind {
	case KindCreate:
		idx := indexOf(items, u.ID, key)
		if idx < 0 {
			return items
		}
		next := make([]T, 0, len(items)-1)
		next = append(next, items[:idx]...)
		return append(next, items[idx+1:]...)

	case KindUpdate:
		idx := indexOf(items, u.ID, key)
		if idx < 0 {
			return items
		}
		next := make([]T, len(items))
		copy(next, items)
		next[idx] = u.Prev
		return next

	case KindDelete:
		if indexOf(items, u.ID, key) >= 0 {
			return items
		}
		at := u.Index
		if at > len(items) {
			at = len(items)
		}
		next := make([]T, 0, len(items)+1)
		next = append(next, items[:at]...)
		next = append(next, u.Prev)
		return append(next, items[at:]...)
	}
	return items
}

// replace swaps the entity stored under id for v, used when a create returns the server copy.
func replace[T any](items []T, id string, v T, key func(T) string) []T {
	idx := indexOf(items, id, key)
	if idx < 0 {
		return items
	}
	next := make([]T, len(items))
	copy(next, items)
	next[idx] = v
	return next
}

func indexOf[T any](items []T, id string, key func(T) string) int {
	for i := range items {
		if key(items[i]) == id {
			return i
		}
	}
	return -1
}

// CommitError is returned after a failed remote write has been rolled back.
type CommitError struct {
	Kind Kind
	ID   string
	Err  error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.ID, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
