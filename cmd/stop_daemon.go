package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/powersched/powersched/common"
	"github.com/powersched/powersched/internal/daemon"
	"github.com/urfave/cli"
)

func stopDaemon(ctx *cli.Context) error {
	dir, err := common.ConfigDir()
	if err != nil {
		return exitErr(ctx, "stop-daemon", "config", err)
	}
	pid, err := daemon.NewPidFile(dir).Read()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(stdout, "powersched: daemon is not running")
			return nil
		}
		return exitErr(ctx, "stop-daemon", "pidfile", err)
	}
	if _, running := daemon.Running(dir); !running {
		fmt.Fprintf(stdout, "powersched: daemon is not running (stale pid %d)\n", pid)
		return nil
	}

	fmt.Fprintf(stdout, "Stopping daemon (pid %d)...\n", pid)
	if err := killDaemon(pid); err != nil {
		return exitErr(ctx, "stop-daemon", "signal", err)
	}
	fmt.Fprintln(stdout, "Daemon stopped")
	return nil
}
