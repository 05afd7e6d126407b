//go:build linux

package executor

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/powersched/powersched/internal/task"
	"github.com/powersched/powersched/pkg/logger"
)

const (
	logindDest  = "org.freedesktop.login1"
	logindPath  = dbus.ObjectPath("/org/freedesktop/login1")
	logindIface = "org.freedesktop.login1.Manager"
)

// logindMethods maps actions to org.freedesktop.login1.Manager methods.
// The power methods take a single "interactive" boolean so polkit may ask
// for authorization; LockSessions takes none.
var logindMethods = map[task.Action]string{
	task.ActionShutdown:  "PowerOff",
	task.ActionRestart:   "Reboot",
	task.ActionSleep:     "Suspend",
	task.ActionHibernate: "Hibernate",
	task.ActionLock:      "LockSessions",
}

// fallbackCommands are used only when the system bus cannot be reached.
var fallbackCommands = map[task.Action][]string{
	task.ActionShutdown:  {"systemctl", "poweroff"},
	task.ActionRestart:   {"systemctl", "reboot"},
	task.ActionSleep:     {"systemctl", "suspend"},
	task.ActionHibernate: {"systemctl", "hibernate"},
	task.ActionLock:      {"loginctl", "lock-sessions"},
}

type logindExecutor struct {
	log     logger.Logger
	connect func(ctx context.Context) (*dbus.Conn, error)
}

func newPlatform(log logger.Logger) Executor {
	return &logindExecutor{
		log: log,
		connect: func(ctx context.Context) (*dbus.Conn, error) {
			return dbus.ConnectSystemBus(dbus.WithContext(ctx))
		},
	}
}

func (e *logindExecutor) Execute(ctx context.Context, action task.Action) task.Outcome {
	method, ok := logindMethods[action]
	if !ok {
		return unsupported(action)
	}

	conn, err := e.connect(ctx)
	if err != nil {
		// Nothing was sent yet, so one fallback directive is still a single call.
		e.log.Warning("executor: system bus unavailable (%v), using %v", err, fallbackCommands[action])
		return runCommand(ctx, fallbackCommands[action]...)
	}
	defer conn.Close()

	obj := conn.Object(logindDest, logindPath)
	var call *dbus.Call
	switch action {
	case task.ActionLock:
		call = obj.CallWithContext(ctx, logindIface+"."+method, 0)
	case task.ActionShutdown, task.ActionRestart, task.ActionSleep, task.ActionHibernate:
		call = obj.CallWithContext(ctx, logindIface+"."+method, 0, true)
	default:
		return unsupported(action)
	}
	if call.Err != nil {
		return task.Failure(fmt.Errorf("%w: logind %s: %v", task.ErrExecution, method, call.Err))
	}
	return task.Success()
}
