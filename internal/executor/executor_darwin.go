//go:build darwin

package executor

import (
	"context"

	"github.com/powersched/powersched/internal/task"
	"github.com/powersched/powersched/pkg/logger"
)

// darwinCommands go through osascript where macOS needs the user's session
// or administrator privileges.
var darwinCommands = map[task.Action][]string{
	task.ActionShutdown:  {"osascript", "-e", `tell application "System Events" to shut down`},
	task.ActionRestart:   {"osascript", "-e", `tell application "System Events" to restart`},
	task.ActionSleep:     {"pmset", "sleepnow"},
	task.ActionHibernate: {"osascript", "-e", `do shell script "pmset -a hibernatemode 25 && pmset sleepnow" with administrator privileges`},
	task.ActionLock:      {"osascript", "-e", `tell application "System Events" to keystroke "q" using {control down, command down}`},
}

type commandExecutor struct {
	log      logger.Logger
	commands map[task.Action][]string
}

func newPlatform(log logger.Logger) Executor {
	return &commandExecutor{log: log, commands: darwinCommands}
}

func (e *commandExecutor) Execute(ctx context.Context, action task.Action) task.Outcome {
	argv, ok := e.commands[action]
	if !ok {
		return unsupported(action)
	}
	return runCommand(ctx, argv...)
}
