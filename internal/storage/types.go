package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/powersched/powersched/internal/task"
	"github.com/spf13/afero"
)

// Backend persists the full task set.
type Backend interface {
	// Load returns every persisted task. A missing store is not an error.
	Load(ctx context.Context) ([]task.Task, error)
	// Save atomically replaces the persisted task set.
	Save(ctx context.Context, tasks []task.Task) error
	Close() error
}

// Config configures storage.
//
// Driver values:
//   - "file": JSON snapshot (default)
//   - "sqlite": SQLite database file
//   - "memory": nothing is written to disk
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default

	// Recover skips malformed records on load instead of failing.
	// Every skipped record is logged as a warning.
	Recover bool

	// Fs is the filesystem used by the file driver. Nil means the OS filesystem.
	Fs afero.Fs
}

var ErrClosed = errors.New("storage closed")

// record is the on-disk shape of a task. Field names are stable.
type record struct {
	ID         string `json:"id"`
	Action     string `json:"action"`
	ExecuteAt  int64  `json:"execute_at"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
	FinishedAt int64  `json:"finished_at,omitempty"`
	Outcome    string `json:"outcome,omitempty"`
	Error      string `json:"error,omitempty"`
}

func toRecord(t task.Task) record {
	return record{
		ID:         t.ID,
		Action:     string(t.Action),
		ExecuteAt:  t.ExecuteAt,
		Status:     string(t.Status),
		CreatedAt:  t.CreatedAt,
		FinishedAt: t.FinishedAt,
		Outcome:    string(t.Outcome.Kind),
		Error:      t.Outcome.Error,
	}
}

func (r record) toTask() (task.Task, error) {
	if r.ID == "" {
		return task.Task{}, errors.New("missing id")
	}
	if !task.Action(r.Action).Valid() {
		return task.Task{}, fmt.Errorf("task %s: unknown action %q", r.ID, r.Action)
	}
	st, err := task.ParseStatus(r.Status)
	if err != nil {
		return task.Task{}, fmt.Errorf("task %s: %w", r.ID, err)
	}
	if err := task.ValidateExecuteAt(r.ExecuteAt); err != nil {
		return task.Task{}, fmt.Errorf("task %s: %w", r.ID, err)
	}
	var kind task.OutcomeKind
	switch k := task.OutcomeKind(r.Outcome); k {
	case task.OutcomeNone, task.OutcomeSuccess, task.OutcomeFailure, task.OutcomeTimeout, task.OutcomeInterrupted:
		kind = k
	default:
		return task.Task{}, fmt.Errorf("task %s: unknown outcome %q", r.ID, r.Outcome)
	}
	return task.Task{
		ID:         r.ID,
		Action:     task.Action(r.Action),
		ExecuteAt:  r.ExecuteAt,
		Status:     st,
		CreatedAt:  r.CreatedAt,
		FinishedAt: r.FinishedAt,
		Outcome:    task.Outcome{Kind: kind, Error: r.Error},
	}, nil
}
