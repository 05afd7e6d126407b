//go:build !windows

package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/powersched/powersched/common"
	"github.com/powersched/powersched/internal/daemon"
	"github.com/powersched/powersched/pkg/logger"
)

func defaultSocketPath() string {
	return common.SocketPath()
}

// setupShutdownHandler returns a context cancelled on SIGTERM or SIGINT.
func setupShutdownHandler() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// runAsService is a no-op outside Windows; systemd units run the daemon in
// the foreground.
func runAsService(*daemon.Runner, logger.Logger, time.Duration) (bool, error) {
	return false, nil
}
