package scheduler

import (
	"context"
	"sort"
	"time"

	"github.com/powersched/powersched/internal/executor"
	"github.com/powersched/powersched/internal/task"
	"github.com/powersched/powersched/pkg/logger"
)

// DefaultWakeCeiling is the default upper bound on one sleep.
const DefaultWakeCeiling = 5 * time.Second

// minSleep keeps the loop from spinning when a deadline is a few
// milliseconds away.
const minSleep = 10 * time.Millisecond

// Scheduler runs the background loop that executes due tasks.
type Scheduler struct {
	store Store
	exec  executor.Executor
	cfg   Config
	log   logger.Logger
	done  chan struct{}

	// reminded holds the smallest reminder offset announced per task.
	// Owned by the loop goroutine.
	reminded map[string]int64
}

// New creates and starts a Scheduler. The loop exits when ctx is cancelled;
// an execution already in flight is finalized first.
func New(ctx context.Context, st Store, exec executor.Executor, cfg Config) *Scheduler {
	if cfg.WakeCeiling <= 0 {
		cfg.WakeCeiling = DefaultWakeCeiling
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Events == nil {
		cfg.Events = task.NopPublisher{}
	}
	if cfg.Reminders == nil {
		cfg.Reminders = func() []int64 { return nil }
	}
	if cfg.Log == nil {
		cfg.Log = logger.NewNopLogger()
	}
	s := &Scheduler{
		store:    st,
		exec:     exec,
		cfg:      cfg,
		log:      cfg.Log,
		done:     make(chan struct{}),
		reminded: make(map[string]int64),
	}
	go s.run(ctx)
	return s
}

// Done is closed once the loop has exited.
func (s *Scheduler) Done() <-chan struct{} { return s.done }

// Wait blocks until the loop has exited.
func (s *Scheduler) Wait() { <-s.done }

// run is the scheduler goroutine. Every iteration processes what is due,
// then sleeps until the next deadline capped by the wake ceiling, or until
// the store or the resume source signals.
func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	timer := time.NewTimer(s.cfg.WakeCeiling)
	defer timer.Stop()

	for {
		s.tick(ctx)
		if ctx.Err() != nil {
			return
		}
		timer.Reset(s.sleepFor())

		select {
		case <-ctx.Done():
			return
		case <-s.store.Wake():
		case <-s.cfg.Resume:
			s.log.Info("scheduler: resumed from sleep, re-checking deadlines")
		case <-timer.C:
		}
	}
}

func (s *Scheduler) sleepFor() time.Duration {
	d := s.cfg.WakeCeiling
	if next, ok := s.store.NextDeadline(); ok {
		if until := time.Unix(next, 0).Sub(s.cfg.Clock()); until < d {
			d = until
		}
	}
	if d < minSleep {
		d = minSleep
	}
	return d
}

// tick executes every due task in order, then emits reminders.
func (s *Scheduler) tick(ctx context.Context) {
	for _, t := range s.store.Due(s.cfg.Clock()) {
		if ctx.Err() != nil {
			return
		}
		s.fire(ctx, t)
	}
	s.remind(s.cfg.Clock())
}

func (s *Scheduler) fire(ctx context.Context, t task.Task) {
	began, err := s.store.TryBeginExecution(ctx, t.ID)
	if err != nil {
		s.log.Error("scheduler: task %s: %v", t.ID, err)
	}
	if !began {
		s.log.Info("scheduler: task %s no longer pending, skipped", t.ID)
		return
	}
	delete(s.reminded, t.ID)

	t.Status = task.StatusExecuting
	s.publish(task.EventExecuting, t, 0)
	s.log.Info("scheduler: executing task %s (%s)", t.ID, t.Action)

	// Shutdown of the daemon does not abort a dispatched action; only the
	// executor's own timeout bounds it.
	execCtx := context.WithoutCancel(ctx)
	out := s.exec.Execute(execCtx, t.Action)
	if out.OK() {
		s.log.Info("scheduler: task %s (%s) succeeded", t.ID, t.Action)
	} else {
		s.log.Error("scheduler: task %s (%s) failed: %s", t.ID, t.Action, out.Error)
	}

	done, err := s.store.FinishExecution(execCtx, t.ID, out)
	if err != nil {
		s.log.Error("scheduler: finish task %s: %v", t.ID, err)
	}
	if done.ID == "" {
		done = t
		done.Status = task.StatusCompleted
		done.Outcome = out
	}
	s.publish(task.EventCompleted, done, 0)
}

// remind announces, once per task, the smallest reminder offset the task's
// remaining time has crossed. Offsets crossed together fold into one event.
func (s *Scheduler) remind(now time.Time) {
	offsets := s.cfg.Reminders()
	pending := s.store.Pending()
	live := make(map[string]struct{}, len(pending))
	for _, t := range pending {
		live[t.ID] = struct{}{}
		remaining := t.Remaining(now)
		if remaining <= 0 {
			continue
		}
		o, ok := crossedOffset(offsets, remaining)
		if !ok {
			continue
		}
		if last, seen := s.reminded[t.ID]; seen && last <= o {
			continue
		}
		s.reminded[t.ID] = o
		s.log.Info("scheduler: task %s (%s) fires in %ds", t.ID, t.Action, remaining)
		s.publish(task.EventReminder, t, o)
	}
	for id := range s.reminded {
		if _, ok := live[id]; !ok {
			delete(s.reminded, id)
		}
	}
}

// crossedOffset returns the smallest positive offset >= remaining.
func crossedOffset(offsets []int64, remaining int64) (int64, bool) {
	sorted := append([]int64(nil), offsets...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for _, o := range sorted {
		if o > 0 && remaining <= o {
			return o, true
		}
	}
	return 0, false
}

func (s *Scheduler) publish(kind task.EventKind, t task.Task, offset int64) {
	s.cfg.Events.Publish(task.Event{Kind: kind, Task: t.Snapshot(s.cfg.Clock()), Offset: offset})
}
