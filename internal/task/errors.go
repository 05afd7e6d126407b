package task

import "errors"

var (
	// ErrInvalidInput is returned for a malformed action, time or settings value.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidTime is returned when execute_at is malformed or overflowed.
	ErrInvalidTime = errors.New("invalid time")
	// ErrNotFound is returned when a task id is absent from the store.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidState is returned when the task's status forbids the operation.
	ErrInvalidState = errors.New("invalid task state")
	// ErrPersistence is returned when durable storage could not be read or written.
	ErrPersistence = errors.New("persistence error")
	// ErrExecution is returned when the platform call for an action failed.
	ErrExecution = errors.New("execution error")
	// ErrTimeout is returned when the platform call did not finish in time.
	ErrTimeout = errors.New("execution timed out")
)
