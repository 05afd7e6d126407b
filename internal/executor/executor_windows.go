//go:build windows

package executor

import (
	"context"
	"fmt"

	"github.com/powersched/powersched/internal/task"
	"github.com/powersched/powersched/pkg/logger"
	"golang.org/x/sys/windows"
)

var (
	user32              = windows.NewLazySystemDLL("user32.dll")
	procLockWorkStation = user32.NewProc("LockWorkStation")

	powrprof            = windows.NewLazySystemDLL("powrprof.dll")
	procSetSuspendState = powrprof.NewProc("SetSuspendState")
)

var shutdownArgs = map[task.Action][]string{
	task.ActionShutdown:  {"shutdown.exe", "/s", "/t", "0"},
	task.ActionRestart:   {"shutdown.exe", "/r", "/t", "0"},
	task.ActionHibernate: {"shutdown.exe", "/h"},
}

type windowsExecutor struct {
	log logger.Logger
}

func newPlatform(log logger.Logger) Executor {
	return &windowsExecutor{log: log}
}

func (e *windowsExecutor) Execute(ctx context.Context, action task.Action) task.Outcome {
	switch action {
	case task.ActionShutdown, task.ActionRestart, task.ActionHibernate:
		return runCommand(ctx, shutdownArgs[action]...)
	case task.ActionSleep:
		// SetSuspendState(bHibernate=FALSE, bForce=TRUE, bWakeupEventsDisabled=FALSE)
		return callProc(procSetSuspendState, 0, 1, 0)
	case task.ActionLock:
		return callProc(procLockWorkStation)
	default:
		return unsupported(action)
	}
}

func callProc(proc *windows.LazyProc, args ...uintptr) task.Outcome {
	if err := proc.Find(); err != nil {
		return task.Failure(fmt.Errorf("%w: %s: %v", task.ErrExecution, proc.Name, err))
	}
	r1, _, lastErr := proc.Call(args...)
	if r1 == 0 {
		return task.Failure(fmt.Errorf("%w: %s: %v", task.ErrExecution, proc.Name, lastErr))
	}
	return task.Success()
}
