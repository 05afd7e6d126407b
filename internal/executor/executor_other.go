//go:build !linux && !darwin && !windows

package executor

import (
	"context"

	"github.com/powersched/powersched/internal/task"
	"github.com/powersched/powersched/pkg/logger"
)

// BSD style commands. Hibernate and lock have no portable directive.
var otherCommands = map[task.Action][]string{
	task.ActionShutdown: {"shutdown", "-p", "now"},
	task.ActionRestart:  {"shutdown", "-r", "now"},
	task.ActionSleep:    {"zzz"},
}

type commandExecutor struct {
	log      logger.Logger
	commands map[task.Action][]string
}

func newPlatform(log logger.Logger) Executor {
	return &commandExecutor{log: log, commands: otherCommands}
}

func (e *commandExecutor) Execute(ctx context.Context, action task.Action) task.Outcome {
	argv, ok := e.commands[action]
	if !ok {
		return unsupported(action)
	}
	return runCommand(ctx, argv...)
}
