//go:build windows

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/powersched/powersched/internal/daemon"
)

var stopTimeout = daemon.DefaultShutdownTimeout + 5*time.Second

// killDaemon interrupts the daemon and kills it if it has not exited after
// stopTimeout. Processes that cannot be interrupted are killed directly.
func killDaemon(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("process not found: %w", err)
	}
	if err := process.Signal(os.Interrupt); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("stop daemon: %w", err)
		}
		return nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := process.Wait()
		done <- err
	}()

	select {
	case <-done:
		return nil
	case <-time.After(stopTimeout):
		fmt.Fprintln(stdout, "Graceful shutdown timed out, forcing kill...")
		if err := process.Kill(); err != nil {
			return fmt.Errorf("kill daemon: %w", err)
		}
		return nil
	}
}
