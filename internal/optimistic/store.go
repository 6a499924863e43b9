package optimistic

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("store closed")

// Store is the canonical collection for one entity type. Subscribers receive a fresh
// snapshot after every change; derived views are rebuilt from it, never edited in place.
type Store[T any] struct {
	key func(T) string

	mtx    sync.Mutex
	items  []T
	subs   map[int]func([]T)
	nextID int
	closed bool
}

func NewStore[T any](key func(T) string, items []T) *Store[T] {
	initial := make([]T, len(items))
	copy(initial, items)
	return &Store[T]{
		key:   key,
		items: initial,
		subs:  make(map[int]func([]T)),
	}
}

func (s *Store[T]) Key(v T) string { return s.key(v) }

func (s *Store[T]) Snapshot() []T {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.snapshotLocked()
}

func (s *Store[T]) snapshotLocked() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the entity stored under id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	idx := indexOf(s.items, id, s.key)
	if idx < 0 {
		var zero T
		return zero, false
	}
	return s.items[idx], true
}

// Update replaces the collection with fn's result. fn runs under the lock and must not block.
func (s *Store[T]) Update(fn func(items []T) ([]T, error)) error {
	s.mtx.Lock()
	if s.closed {
		s.mtx.Unlock()
		return ErrClosed
	}
	next, err := fn(s.snapshotLocked())
	if err != nil {
		s.mtx.Unlock()
		return err
	}
	s.items = next
	snap, subs := s.snapshotLocked(), s.subscribersLocked()
	s.mtx.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return nil
}

// Replace swaps in a freshly loaded collection.
func (s *Store[T]) Replace(items []T) error {
	return s.Update(func([]T) ([]T, error) {
		next := make([]T, len(items))
		copy(next, items)
		return next, nil
	})
}

// Subscribe registers fn and returns the function that removes it.
func (s *Store[T]) Subscribe(fn func([]T)) func() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mtx.Lock()
		defer s.mtx.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store[T]) subscribersLocked() []func([]T) {
	out := make([]func([]T), 0, len(s.subs))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

// Close tears the store down. Completions that arrive afterwards are ignored.
func (s *Store[T]) Close() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.closed = true
	s.subs = make(map[int]func([]T))
}

func (s *Store[T]) Closed() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.closed
}
