package scheduler

import (
	"context"
	"time"

	"github.com/powersched/powersched/internal/task"
	"github.com/powersched/powersched/pkg/logger"
)

// Store is the part of store.Store the scheduler drives.
type Store interface {
	NextDeadline() (int64, bool)
	Due(now time.Time) []task.Task
	Pending() []task.Task
	TryBeginExecution(ctx context.Context, id string) (bool, error)
	FinishExecution(ctx context.Context, id string, outcome task.Outcome) (task.Task, error)
	Wake() <-chan struct{}
}

// Config configures a Scheduler. Zero values select the defaults.
type Config struct {
	// WakeCeiling is the longest the loop sleeps between clock checks.
	WakeCeiling time.Duration
	// Reminders returns the current reminder offsets in seconds.
	Reminders func() []int64
	// Resume receives after the system wakes from sleep. May be nil.
	Resume <-chan struct{}
	Events task.Publisher
	Clock  func() time.Time
	Log    logger.Logger
}
