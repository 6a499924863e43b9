package optimistic_test

import (
	"context"
	"errors"
	"planboard/internal/dates"
	"planboard/internal/models/task"
	"planboard/internal/optimistic"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(t task.Task) string { return t.ID() }

func ptr(t time.Time) *time.Time { return &t }

var errRemote = errors.New("500 internal server error")

func scenario() []task.Task {
	return []task.Task{
		{UUID: uuid.New(), Text: "T1", Status: task.StatusTodo, Priority: task.PriorityMedium},
		{UUID: uuid.New(), Text: "T2", Status: task.StatusInProgress, Priority: task.PriorityHigh,
			StartDate: ptr(dates.MustDay("2024-01-10")), EndDate: ptr(dates.MustDay("2024-01-12"))},
		{UUID: uuid.New(), Text: "T3", Status: task.StatusDone, Completed: true, Priority: task.PriorityLow,
			StartDate: ptr(dates.MustDay("2024-01-05")), EndDate: ptr(dates.MustDay("2024-01-05"))},
	}
}

func setStatus(s task.Status) func(task.Task) task.Task {
	return func(t task.Task) task.Task {
		t.SetStatus(s)
		return t
	}
}

func failing(context.Context) error { return errRemote }

func TestApply_DoesNotModifyInput(t *testing.T) {
	items := scenario()
	before := scenario()
	for i := range before {
		before[i].UUID = items[i].UUID
	}

	next, undo, err := optimistic.Apply(items, optimistic.Update[task.Task](items[1].ID(), setStatus(task.StatusDone), nil), key)
	require.NoError(t, err)

	assert.Equal(t, before, items)
	assert.Equal(t, task.StatusDone, next[1].Status)
	assert.True(t, next[1].Completed)
	assert.Equal(t, task.StatusInProgress, undo.Prev.Status)
}

func TestApply_UnknownID(t *testing.T) {
	items := scenario()

	_, _, err := optimistic.Apply(items, optimistic.Update[task.Task]("missing", setStatus(task.StatusDone), nil), key)
	assert.ErrorIs(t, err, optimistic.ErrValidation)

	_, _, err = optimistic.Apply(items, optimistic.Delete[task.Task]("missing", nil), key)
	assert.ErrorIs(t, err, optimistic.ErrValidation)
}

func TestRestore_Exact(t *testing.T) {
	tests := []struct {
		name string
		m    func(items []task.Task) optimistic.Mutation[task.Task]
	}{
		{
			name: "create",
			m: func([]task.Task) optimistic.Mutation[task.Task] {
				return optimistic.Create(task.Task{UUID: uuid.New(), Text: "new"}, nil)
			},
		},
		{
			name: "update",
			m: func(items []task.Task) optimistic.Mutation[task.Task] {
				return optimistic.Update[task.Task](items[1].ID(), setStatus(task.StatusDone), nil)
			},
		},
		{
			name: "delete in the middle",
			m: func(items []task.Task) optimistic.Mutation[task.Task] {
				return optimistic.Delete[task.Task](items[1].ID(), nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := scenario()
			next, undo, err := optimistic.Apply(items, tt.m(items), key)
			require.NoError(t, err)

			assert.Equal(t, items, optimistic.Restore(next, undo, key))
		})
	}
}

func TestController_RollbackOnFailure(t *testing.T) {
	items := scenario()
	store := optimistic.NewStore(key, items)
	ctrl := optimistic.NewController(store, "task")

	var seen []task.Status
	unsubscribe := store.Subscribe(func(snap []task.Task) {
		seen = append(seen, snap[1].Status)
	})
	defer unsubscribe()

	_, err := ctrl.Do(context.Background(), optimistic.Update[task.Task](items[1].ID(), setStatus(task.StatusDone), failing))

	var ce *optimistic.CommitError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, errRemote)
	assert.Equal(t, items, store.Snapshot())
	assert.Equal(t, task.StatusInProgress, store.Snapshot()[1].Status)
	assert.Equal(t, []task.Status{task.StatusDone, task.StatusInProgress}, seen)
}

func TestController_ValidationSkipsCommit(t *testing.T) {
	store := optimistic.NewStore(key, scenario())
	ctrl := optimistic.NewController(store, "task")

	called := false
	_, err := ctrl.Do(context.Background(), optimistic.Delete[task.Task]("nope", func(context.Context) error {
		called = true
		return nil
	}))

	assert.ErrorIs(t, err, optimistic.ErrValidation)
	assert.False(t, called)
}

func TestController_RollbackIsPerMutation(t *testing.T) {
	items := scenario()
	store := optimistic.NewStore(key, items)
	ctrl := optimistic.NewController(store, "task")

	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = ctrl.Do(context.Background(), optimistic.Update[task.Task](items[0].ID(), setStatus(task.StatusInProgress), func(context.Context) error {
			<-release
			return errRemote
		}))
	}()

	require.Eventually(t, func() bool {
		return store.Snapshot()[0].Status == task.StatusInProgress
	}, time.Second, 5*time.Millisecond)

	_, err := ctrl.Do(context.Background(), optimistic.Update[task.Task](items[1].ID(), setStatus(task.StatusDone), func(context.Context) error { return nil }))
	require.NoError(t, err)

	close(release)
	wg.Wait()

	snap := store.Snapshot()
	assert.Equal(t, task.StatusTodo, snap[0].Status)
	assert.Equal(t, task.StatusDone, snap[1].Status)
}

func TestController_SlowSuccessKeepsLaterEdit(t *testing.T) {
	items := scenario()
	store := optimistic.NewStore(key, items)
	ctrl := optimistic.NewController(store, "task")
	id := items[0].ID()

	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = ctrl.Do(context.Background(), optimistic.Mutation[task.Task]{
			Kind:  optimistic.KindUpdate,
			ID:    id,
			Patch: func(t task.Task) task.Task { t.Text = "first"; return t },
			Commit: func(context.Context) (*task.Task, error) {
				<-release
				stale := items[0]
				stale.Text = "first"
				return &stale, nil
			},
		})
	}()

	require.Eventually(t, func() bool {
		return store.Snapshot()[0].Text == "first"
	}, time.Second, 5*time.Millisecond)

	_, err := ctrl.Do(context.Background(), optimistic.Update[task.Task](id, func(t task.Task) task.Task {
		t.Text = "second"
		return t
	}, func(context.Context) error { return nil }))
	require.NoError(t, err)

	close(release)
	wg.Wait()

	assert.Equal(t, "second", store.Snapshot()[0].Text)
}

func TestController_CreateAdoptsServerEntity(t *testing.T) {
	store := optimistic.NewStore(key, nil)
	ctrl := optimistic.NewController(store, "task")

	temp := task.Task{UUID: uuid.New(), Text: "draft"}
	server := task.Task{UUID: uuid.New(), Text: "draft", Version: 1}

	got, err := ctrl.Do(context.Background(), optimistic.Create(temp, func(context.Context) (*task.Task, error) {
		return &server, nil
	}))
	require.NoError(t, err)
	assert.Equal(t, server.UUID, got.UUID)

	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, server, snap[0])
}

func TestController_DoBatchPartialFailure(t *testing.T) {
	store := optimistic.NewStore(key, nil)
	ctrl := optimistic.NewController(store, "task")

	var order []string
	mk := func(text string, fail bool) optimistic.Mutation[task.Task] {
		tk := task.Task{UUID: uuid.New(), Text: text}
		return optimistic.Create(tk, func(context.Context) (*task.Task, error) {
			order = append(order, text)
			if fail {
				return nil, errRemote
			}
			saved := tk
			saved.Version = 1
			return &saved, nil
		})
	}

	res, err := ctrl.DoBatch(context.Background(), []optimistic.Mutation[task.Task]{
		mk("A", false), mk("B", true), mk("C", false),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, order)
	assert.Len(t, res.Committed, 2)
	require.Len(t, res.Failed, 1)
	assert.ErrorIs(t, res.Err(), errRemote)

	snap := store.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "A", snap[0].Text)
	assert.Equal(t, "C", snap[1].Text)
}

func TestController_ClosedStoreIgnoresLateCompletion(t *testing.T) {
	items := scenario()
	store := optimistic.NewStore(key, items)
	ctrl := optimistic.NewController(store, "task")

	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Do(context.Background(), optimistic.Update[task.Task](items[1].ID(), setStatus(task.StatusDone), func(context.Context) error {
			<-release
			return errRemote
		}))
		done <- err
	}()

	require.Eventually(t, func() bool {
		return store.Snapshot()[1].Status == task.StatusDone
	}, time.Second, 5*time.Millisecond)

	store.Close()
	close(release)

	assert.Error(t, <-done)
	assert.Equal(t, task.StatusDone, store.Snapshot()[1].Status)
	assert.ErrorIs(t, store.Replace(nil), optimistic.ErrClosed)
}
