package storage

import (
	"context"
	"sync"

	"github.com/powersched/powersched/internal/task"
)

// Memory is a non-durable Backend used by dry runs and tests.
// SaveErr, when set, is returned by every Save.
type Memory struct {
	mu      sync.Mutex
	tasks   []task.Task
	saves   int
	SaveErr error
}

// NewMemory returns an empty in-memory backend seeded with tasks.
func NewMemory(tasks ...task.Task) *Memory {
	return &Memory{tasks: append([]task.Task(nil), tasks...)}
}

func (m *Memory) Load(context.Context) ([]task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]task.Task(nil), m.tasks...), nil
}

func (m *Memory) Save(_ context.Context, tasks []task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.tasks = append(m.tasks[:0:0], tasks...)
	m.saves++
	return nil
}

// SetSaveErr changes the error returned by Save.
func (m *Memory) SetSaveErr(err error) {
	m.mu.Lock()
	m.SaveErr = err
	m.mu.Unlock()
}

// Saves returns how many successful saves have happened.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Tasks returns the last saved task set.
func (m *Memory) Tasks() []task.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]task.Task(nil), m.tasks...)
}

func (m *Memory) Close() error { return nil }
