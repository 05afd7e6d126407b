// Package task defines the scheduled power task model shared by the store,
// the scheduler and the command boundary.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Action is one of the closed set of power actions a task can trigger.
type Action string

const (
	ActionShutdown  Action = "shutdown"
	ActionRestart   Action = "restart"
	ActionSleep     Action = "sleep"
	ActionHibernate Action = "hibernate"
	ActionLock      Action = "lock"
)

// Actions lists every supported action in display order.
var Actions = []Action{
	ActionShutdown,
	ActionRestart,
	ActionSleep,
	ActionHibernate,
	ActionLock,
}

// ParseAction converts a user supplied name into an Action.
// Matching is case-insensitive; unknown names return ErrInvalidInput.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionShutdown, ActionRestart, ActionSleep, ActionHibernate, ActionLock:
		return a, nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidInput, s)
	}
}

// Valid reports whether a is a member of the closed action set.
func (a Action) Valid() bool {
	switch a {
	case ActionShutdown, ActionRestart, ActionSleep, ActionHibernate, ActionLock:
		return true
	default:
		return false
	}
}

func (a Action) String() string { return string(a) }

// Status is the lifecycle state of a task.
//
//	Pending -> Executing -> Completed
//	Pending -> Cancelled
type Status string

const (
	StatusPending   Status = "pending"
	StatusExecuting Status = "executing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus converts a persisted status string into a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusExecuting, StatusCompleted, StatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
	}
}

// CanTransition reports whether moving from s to next follows the state graph.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusExecuting || next == StatusCancelled
	case StatusExecuting:
		return next == StatusCompleted
	case StatusCompleted, StatusCancelled:
		return false
	default:
		return false
	}
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled:
		return true
	case StatusPending, StatusExecuting:
		return false
	default:
		return false
	}
}

func (s Status) String() string { return string(s) }

// OutcomeKind classifies how an execution ended.
type OutcomeKind string

const (
	// OutcomeNone is recorded on tasks that never executed.
	OutcomeNone OutcomeKind = ""
	// OutcomeSuccess means the platform accepted the directive.
	OutcomeSuccess OutcomeKind = "success"
	// OutcomeFailure means the platform call failed.
	OutcomeFailure OutcomeKind = "failure"
	// OutcomeTimeout means the platform call did not return in time.
	OutcomeTimeout OutcomeKind = "timeout"
	// OutcomeInterrupted marks a task found Executing after a restart.
	OutcomeInterrupted OutcomeKind = "interrupted"
)

// Outcome is the result of dispatching one action.
type Outcome struct {
	Kind  OutcomeKind
	Error string
}

// Success returns a successful outcome.
func Success() Outcome { return Outcome{Kind: OutcomeSuccess} }

// Failure returns a failed outcome carrying err's message. Errors wrapping
// ErrTimeout are recorded as OutcomeTimeout.
func Failure(err error) Outcome {
	if err == nil {
		return Outcome{Kind: OutcomeFailure}
	}
	if errors.Is(err, ErrTimeout) {
		return Outcome{Kind: OutcomeTimeout, Error: err.Error()}
	}
	return Outcome{Kind: OutcomeFailure, Error: err.Error()}
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool { return o.Kind == OutcomeSuccess }

// MaxExecuteAt is the largest accepted execute_at (9999-12-31T23:59:59Z).
const MaxExecuteAt int64 = 253402300799

// ValidateExecuteAt rejects malformed or overflowed timestamps.
// Past instants are accepted and mean "fire immediately".
func ValidateExecuteAt(executeAt int64) error {
	if executeAt <= 0 || executeAt > MaxExecuteAt {
		return fmt.Errorf("%w: execute_at %d out of range", ErrInvalidTime, executeAt)
	}
	return nil
}

// Task is the persisted record of one scheduled action.
type Task struct {
	ID         string
	Action     Action
	ExecuteAt  int64
	Status     Status
	CreatedAt  int64
	FinishedAt int64
	Outcome    Outcome
}

// Due reports whether a pending task should fire at now.
func (t *Task) Due(now time.Time) bool {
	return t.Status == StatusPending && t.ExecuteAt <= now.Unix()
}

// Remaining returns max(0, execute_at - now) in seconds.
func (t *Task) Remaining(now time.Time) int64 {
	if r := t.ExecuteAt - now.Unix(); r > 0 {
		return r
	}
	return 0
}

// Snapshot returns a read-only copy with the derived countdown filled in.
func (t *Task) Snapshot(now time.Time) Snapshot {
	return Snapshot{Task: *t, RemainingSeconds: t.Remaining(now)}
}

// Less orders tasks by execute_at, then created_at, then id.
func Less(a, b *Task) bool {
	if a.ExecuteAt != b.ExecuteAt {
		return a.ExecuteAt < b.ExecuteAt
	}
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt < b.CreatedAt
	}
	return a.ID < b.ID
}

// Snapshot is a task as returned to callers, never persisted.
type Snapshot struct {
	Task
	RemainingSeconds int64
}
