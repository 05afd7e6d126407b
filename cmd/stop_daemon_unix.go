//go:build !windows

package cmd

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/powersched/powersched/internal/daemon"
)

var (
	stopTimeout  = daemon.DefaultShutdownTimeout + 5*time.Second
	pollInterval = 100 * time.Millisecond
)

// killDaemon sends SIGTERM and waits for the process to exit, falling back
// to SIGKILL after stopTimeout.
func killDaemon(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("process not found: %w", err)
	}
	if err := process.Signal(syscall.Signal(0)); err != nil {
		return fmt.Errorf("daemon not running (pid %d): %w", pid, err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("send SIGTERM: %w", err)
	}

	deadline := time.Now().Add(stopTimeout)
	for time.Now().Before(deadline) {
		if err := process.Signal(syscall.Signal(0)); err != nil {
			return nil
		}
		time.Sleep(pollInterval)
	}

	fmt.Fprintln(stdout, "Graceful shutdown timed out, forcing kill...")
	if err := process.Signal(syscall.SIGKILL); err != nil {
		return fmt.Errorf("send SIGKILL: %w", err)
	}
	return nil
}
