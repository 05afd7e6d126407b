package powercli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

const (
	daemonStartTimeout = 3 * time.Second
	socketPollInterval = 50 * time.Millisecond
	socketDialTimeout  = 100 * time.Millisecond
)

// spawnDaemonFunc starts the daemon in the background; tests replace it.
var spawnDaemonFunc = spawnDaemon

// ensureDaemon checks if the daemon is running and spawns it if not.
func ensureDaemon(path string) error {
	if isDaemonRunning(path) {
		return nil
	}
	if err := spawnDaemonFunc(); err != nil {
		return err
	}
	return waitForSocket(path, daemonStartTimeout)
}

// isDaemonRunning reports whether something accepts connections at path.
func isDaemonRunning(path string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), socketDialTimeout)
	defer cancel()
	conn, err := dial(ctx, path)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// waitForSocket polls until the socket/pipe becomes available or timeout expires.
func waitForSocket(path string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if isDaemonRunning(path) {
			return nil
		}
		time.Sleep(socketPollInterval)
	}
	return fmt.Errorf("daemon failed to start within %v", timeout)
}

// spawnDaemon re-executes the current binary as "daemon" in the background.
func spawnDaemon() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	cmd := exec.Command(executable, "daemon")
	cmd.SysProcAttr = detachAttr()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	// Release so the daemon is not left a zombie when it exits.
	_ = cmd.Process.Release()
	return nil
}
