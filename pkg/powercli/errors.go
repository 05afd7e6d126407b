package powercli

import (
	"errors"
	"fmt"

	"github.com/creachadair/jrpc2"
	"github.com/powersched/powersched/common"
	"github.com/powersched/powersched/internal/task"
)

// fromRPCError restores the error category from a JSON-RPC error code so
// callers can use errors.Is with the task package sentinels.
func fromRPCError(err error) error {
	var rerr *jrpc2.Error
	if !errors.As(err, &rerr) {
		return err
	}
	var kind error
	switch int(rerr.Code) {
	case common.CodeInvalidInput:
		kind = task.ErrInvalidInput
	case common.CodeInvalidTime:
		kind = task.ErrInvalidTime
	case common.CodeNotFound:
		kind = task.ErrNotFound
	case common.CodeInvalidState:
		kind = task.ErrInvalidState
	case common.CodePersistence:
		kind = task.ErrPersistence
	default:
		return err
	}
	return &remoteError{kind: kind, msg: rerr.Message}
}

// remoteError carries the daemon's message while matching its category.
type remoteError struct {
	kind error
	msg  string
}

func (e *remoteError) Error() string {
	if e.msg == "" {
		return e.kind.Error()
	}
	return e.msg
}

func (e *remoteError) Unwrap() error { return e.kind }

// ExitCode maps an error returned by the client to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, task.ErrInvalidInput), errors.Is(err, task.ErrInvalidTime):
		return 2
	case errors.Is(err, task.ErrNotFound):
		return 3
	case errors.Is(err, task.ErrInvalidState):
		return 4
	case errors.Is(err, task.ErrPersistence):
		return 5
	default:
		return 1
	}
}

// Describe renders err for terminal output.
func Describe(err error) string {
	var rerr *remoteError
	if errors.As(err, &rerr) {
		return fmt.Sprintf("%s: %s", categoryName(rerr.kind), rerr.Error())
	}
	return err.Error()
}

func categoryName(kind error) string {
	switch kind {
	case task.ErrInvalidInput:
		return "InvalidInput"
	case task.ErrInvalidTime:
		return "InvalidTime"
	case task.ErrNotFound:
		return "NotFound"
	case task.ErrInvalidState:
		return "InvalidState"
	case task.ErrPersistence:
		return "PersistenceError"
	}
	return "Error"
}
