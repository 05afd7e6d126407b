package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/powersched/powersched/internal/task"
)

// CreateTask schedules action at executeAt (epoch seconds). An empty action
// selects the default action from settings. Past instants are accepted and
// fire on the scheduler's next wake.
func (s *Api) CreateTask(ctx context.Context, action string, executeAt int64) (task.Snapshot, error) {
	var (
		a   task.Action
		err error
	)
	if strings.TrimSpace(action) == "" {
		a = s.settings.Get().DefaultAction
	} else if a, err = task.ParseAction(action); err != nil {
		return task.Snapshot{}, err
	}

	t, err := s.store.Create(ctx, a, executeAt)
	if err != nil {
		return task.Snapshot{}, err
	}
	snap, err := s.store.Get(t.ID)
	if err != nil {
		return task.Snapshot{}, err
	}
	s.log.Info("api: created task %s (%s) in %ds", t.ID, t.Action, snap.RemainingSeconds)
	s.events.Publish(task.Event{Kind: task.EventCreated, Task: snap})
	return snap, nil
}

// ListTasks returns every task ordered by execute_at, created_at, id, each
// with a freshly computed remaining time. With activeOnly, completed and
// cancelled tasks are left out.
func (s *Api) ListTasks(_ context.Context, activeOnly bool) []task.Snapshot {
	all := s.store.List()
	if !activeOnly {
		return all
	}
	out := all[:0]
	for _, t := range all {
		if !t.Status.Terminal() {
			out = append(out, t)
		}
	}
	return out
}

// GetTask returns one task snapshot.
func (s *Api) GetTask(_ context.Context, id string) (task.Snapshot, error) {
	return s.store.Get(strings.TrimSpace(id))
}

// CancelTask cancels a pending task. A task that is executing, completed or
// already cancelled is refused with task.ErrInvalidState.
func (s *Api) CancelTask(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: missing task id", task.ErrInvalidInput)
	}
	t, err := s.store.Cancel(ctx, id)
	if t.Status == task.StatusCancelled && !errors.Is(err, task.ErrInvalidState) {
		// Cancelled in memory even when the write failed.
		snap, _ := s.store.Get(id)
		s.log.Info("api: cancelled task %s (%s)", id, t.Action)
		s.events.Publish(task.Event{Kind: task.EventCancelled, Task: snap})
	}
	return err
}
