package store

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/powersched/powersched/internal/storage"
	"github.com/powersched/powersched/internal/task"
	"github.com/powersched/powersched/pkg/logger"
)

// ErrClosed is returned by mutations after Close.
var ErrClosed = errors.New("store closed")

// Options configures a Store. Zero values select the defaults.
type Options struct {
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
	// NewID generates task ids. Defaults to uuid.NewString.
	NewID func() string
	Log   logger.Logger
}

// Store holds every task, indexes the pending ones and persists mutations.
type Store struct {
	mu      sync.Mutex
	tasks   map[string]*task.Task
	pending pendingIndex
	closed  bool

	backend storage.Backend
	now     func() time.Time
	newID   func() string
	log     logger.Logger
	wake    chan struct{}
}

// Open loads the task set from backend and returns a ready Store.
//
// Pending tasks whose deadline already passed stay Pending and become due on
// the scheduler's first wake. Tasks persisted as Executing were interrupted
// by a crash mid-dispatch; they are finalized to Completed with an
// interrupted outcome and never retried.
func Open(ctx context.Context, backend storage.Backend, opts Options) (*Store, error) {
	s := &Store{
		tasks:   make(map[string]*task.Task),
		backend: backend,
		now:     opts.Clock,
		newID:   opts.NewID,
		log:     opts.Log,
		wake:    make(chan struct{}, 1),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.log == nil {
		s.log = logger.NewNopLogger()
	}

	loaded, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	now := s.now().Unix()
	interrupted := 0
	for i := range loaded {
		t := loaded[i]
		if _, dup := s.tasks[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate task id %s", task.ErrPersistence, t.ID)
		}
		if t.Status == task.StatusExecuting {
			t.Status = task.StatusCompleted
			t.FinishedAt = now
			t.Outcome = task.Outcome{Kind: task.OutcomeInterrupted, Error: "daemon stopped during execution"}
			interrupted++
			s.log.Warning("store: task %s (%s) was interrupted mid-execution, marked completed", t.ID, t.Action)
		}
		s.tasks[t.ID] = &t
		if t.Status == task.StatusPending {
			s.pending = append(s.pending, &t)
		}
	}
	heap.Init(&s.pending)

	if interrupted > 0 {
		if err := s.persistLocked(ctx); err != nil {
			return nil, err
		}
	}
	s.log.Info("store: loaded %d tasks (%d pending)", len(s.tasks), s.pending.Len())
	return s, nil
}

// Wake is signalled after every Create and Cancel.
func (s *Store) Wake() <-chan struct{} { return s.wake }

func (s *Store) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Create adds a Pending task and persists it.
// If the write fails the task is not kept, so a retry cannot duplicate it.
func (s *Store) Create(ctx context.Context, action task.Action, executeAt int64) (task.Task, error) {
	if !action.Valid() {
		return task.Task{}, fmt.Errorf("%w: unknown action %q", task.ErrInvalidInput, action)
	}
	if err := task.ValidateExecuteAt(executeAt); err != nil {
		return task.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return task.Task{}, ErrClosed
	}

	var id string
	for id == "" || s.tasks[id] != nil {
		id = s.newID()
	}
	t := &task.Task{
		ID:        id,
		Action:    action,
		ExecuteAt: executeAt,
		Status:    task.StatusPending,
		CreatedAt: s.now().Unix(),
	}
	s.tasks[id] = t
	indexPush(&s.pending, t)

	if err := s.persistLocked(ctx); err != nil {
		delete(s.tasks, id)
		indexRemove(&s.pending, id)
		return task.Task{}, err
	}
	s.signal()
	return *t, nil
}

// Get returns a snapshot of one task.
func (s *Store) Get(id string) (task.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return task.Snapshot{}, fmt.Errorf("%w: task %s", task.ErrNotFound, id)
	}
	return t.Snapshot(s.now()), nil
}

// List returns snapshots of every task ordered by execute_at, created_at, id.
func (s *Store) List() []task.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	out := make([]task.Snapshot, 0, len(s.tasks))
	for _, t := range s.sortedLocked() {
		out = append(out, t.Snapshot(now))
	}
	return out
}

// Cancel moves a Pending task to Cancelled.
// Tasks in any other state are refused with ErrInvalidState.
// On a write failure the task stays Cancelled in memory and ErrPersistence
// is returned.
func (s *Store) Cancel(ctx context.Context, id string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return task.Task{}, ErrClosed
	}
	t, ok := s.tasks[id]
	if !ok {
		return task.Task{}, fmt.Errorf("%w: task %s", task.ErrNotFound, id)
	}
	if !t.Status.CanTransition(task.StatusCancelled) {
		return *t, fmt.Errorf("%w: task %s is %s", task.ErrInvalidState, id, t.Status)
	}
	t.Status = task.StatusCancelled
	t.FinishedAt = s.now().Unix()
	indexRemove(&s.pending, id)
	s.signal()
	return *t, s.persistLocked(ctx)
}

// TryBeginExecution atomically moves a task from Pending to Executing.
// It returns false when the task is not Pending, for example because a
// cancel was serialized first. A write failure does not undo the transition:
// the caller owns the execution either way.
func (s *Store) TryBeginExecution(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	t, ok := s.tasks[id]
	if !ok || t.Status != task.StatusPending {
		return false, nil
	}
	t.Status = task.StatusExecuting
	indexRemove(&s.pending, id)
	return true, s.persistLocked(ctx)
}

// FinishExecution moves an Executing task to Completed and records outcome.
// The transition happens for failed outcomes too.
func (s *Store) FinishExecution(ctx context.Context, id string, outcome task.Outcome) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return task.Task{}, fmt.Errorf("%w: task %s", task.ErrNotFound, id)
	}
	if !t.Status.CanTransition(task.StatusCompleted) {
		return *t, fmt.Errorf("%w: task %s is %s", task.ErrInvalidState, id, t.Status)
	}
	t.Status = task.StatusCompleted
	t.FinishedAt = s.now().Unix()
	t.Outcome = outcome
	return *t, s.persistLocked(ctx)
}

// NextDeadline returns the execute_at of the earliest Pending task.
func (s *Store) NextDeadline() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := indexPeek(&s.pending); t != nil {
		return t.ExecuteAt, true
	}
	return 0, false
}

// Due returns copies of the Pending tasks with execute_at <= now, in
// execution order.
func (s *Store) Due(now time.Time) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*task.Task
	for _, t := range s.pending {
		if t.Due(now) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool { return task.Less(due[i], due[j]) })
	out := make([]task.Task, len(due))
	for i, t := range due {
		out[i] = *t
	}
	return out
}

// Pending returns copies of every Pending task in execution order.
func (s *Store) Pending() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]task.Task, 0, s.pending.Len())
	for _, t := range s.pending {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return task.Less(&out[i], &out[j]) })
	return out
}

// Compact drops Completed and Cancelled tasks finished before cutoff and
// returns how many were removed.
func (s *Store) Compact(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	removed := 0
	for id, t := range s.tasks {
		if t.Status.Terminal() && t.FinishedAt > 0 && t.FinishedAt < cutoff.Unix() {
			delete(s.tasks, id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.persistLocked(ctx)
}

// Close flushes the task set to the backend and closes it.
// Further mutations fail with ErrClosed. The scheduler must be stopped
// first so an in-flight execution is finalized before the flush.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return errors.Join(s.saveLocked(ctx), s.backend.Close())
}

func (s *Store) sortedLocked() []task.Task {
	out := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return task.Less(&out[i], &out[j]) })
	return out
}

func (s *Store) saveLocked(ctx context.Context) error {
	return s.backend.Save(ctx, s.sortedLocked())
}

func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.saveLocked(ctx); err != nil {
		s.log.Error("store: persist tasks: %v", err)
		return fmt.Errorf("%w: %w", task.ErrPersistence, err)
	}
	return nil
}
