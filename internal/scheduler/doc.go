// Package scheduler drives Pending tasks to execution.
//
// A single goroutine sleeps until the earliest pending deadline, but never
// longer than the wake ceiling, so wall-clock time is re-read regularly even
// across NTP steps, manual clock changes and system sleep (during which the
// monotonic clock may pause). The loop also wakes early on store changes and
// on resume signals.
//
// On every wake the due tasks are executed one at a time in execute_at,
// created_at, id order. Each one is claimed with Store.TryBeginExecution so
// a concurrent cancel either wins outright or loses cleanly. Outcomes are
// recorded and never retried; a failed action does not stop the loop.
package scheduler
