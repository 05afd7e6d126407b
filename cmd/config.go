package cmd

import "time"

const (
	DEF_WAKE_CEILING = 5 * time.Second
	DEF_EXEC_TIMEOUT = 30 * time.Second
)

const DESCRIPTION = `
powersched schedules one-shot power actions (shutdown, restart, sleep,
hibernate, lock) for a future moment. A background daemon keeps the
schedule across restarts and fires each task exactly once.
`

const (
	CreateDescription = `The create command schedules an action for a future moment.
Give either an absolute local time with --at or a delay with --in.
Without an action the default action from settings is used.

Actions: shutdown, restart, sleep, hibernate, lock

Example:
        powersched create restart --in 1h30m
        powersched schedule lock --at "2026-01-02 22:30"

`
	NowDescription = `The now command runs an action immediately through the daemon.

Example:
        powersched now lock

`
	ListDescription = `The list command displays scheduled tasks ordered by the
time they fire, with the remaining time for pending ones.

Example:
        powersched list
        powersched list --active

`
	CancelDescription = `The cancel command cancels a pending task using its id,
which you can retrieve with "powersched list".

Example:
        powersched cancel <task id>

`
	WatchDescription = `The watch command shows a countdown for a pending task and
returns once it fires or is cancelled.

Example:
        powersched watch <task id>

`
	SettingsDescription = `The settings command prints the current settings.
Use "settings set" to change them.

Example:
        powersched settings
        powersched settings set --default-action sleep --reminders 600,60

`
	DaemonDescription = `The daemon command runs the scheduler in the foreground.
Other commands start it in the background when it is not running.

Example:
        powersched daemon --store-driver sqlite

`
)
