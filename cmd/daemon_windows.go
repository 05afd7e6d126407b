//go:build windows

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/powersched/powersched/common"
	"github.com/powersched/powersched/internal/daemon"
	"github.com/powersched/powersched/internal/service"
	"github.com/powersched/powersched/pkg/logger"
)

func defaultSocketPath() string {
	return common.PipePath()
}

// setupShutdownHandler returns a context cancelled on interrupt. SIGTERM
// does not exist on Windows.
func setupShutdownHandler() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// runAsService hands r to the Service Control Manager when the process was
// started by it. Events go to the Windows Event Log as well as l.
func runAsService(r *daemon.Runner, l logger.Logger, stopTimeout time.Duration) (bool, error) {
	isService, err := service.IsWindowsService()
	if err != nil || !isService {
		return false, err
	}
	elog, err := service.NewEventLogger(common.AppName)
	if err != nil {
		l.Warning("daemon: event log unavailable: %v", err)
	} else {
		defer elog.Close()
		l = logger.NewMultiLogger(l, elog)
	}
	h := service.NewHandler(r, l, stopTimeout+5*time.Second)
	if err := service.Run(common.AppName, h); err != nil {
		return true, fmt.Errorf("run service: %w", err)
	}
	return true, nil
}
