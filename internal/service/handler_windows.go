//go:build windows

// Package service runs the powersched daemon under the Windows Service
// Control Manager.
package service

import (
	"context"
	"time"

	"github.com/powersched/powersched/pkg/logger"
	"golang.org/x/sys/windows/svc"
)

const acceptedCommands = svc.AcceptStop | svc.AcceptShutdown

// startGrace is how long Execute waits for an immediate start failure
// before reporting Running.
var startGrace = 50 * time.Millisecond

// Runner is the part of the daemon runner the service host drives. Start
// blocks until ctx is cancelled.
type Runner interface {
	Start(ctx context.Context) error
}

// Handler implements svc.Handler on top of a Runner.
type Handler struct {
	runner      Runner
	log         logger.Logger
	stopTimeout time.Duration
}

// NewHandler returns a handler that waits up to stopTimeout for the runner
// to return after a stop request.
func NewHandler(r Runner, l logger.Logger, stopTimeout time.Duration) *Handler {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Handler{runner: r, log: l, stopTimeout: stopTimeout}
}

// Execute follows StartPending, Running, StopPending, Stopped. Service
// start arguments are ignored; configuration comes from the environment
// and the config directory.
func (h *Handler) Execute(_ []string, requests <-chan svc.ChangeRequest, status chan<- svc.Status) (bool, uint32) {
	status <- svc.Status{State: svc.StartPending}
	h.log.Info("service: starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- h.runner.Start(ctx) }()

	select {
	case err := <-errc:
		h.log.Error("service: start failed: %v", err)
		status <- svc.Status{State: svc.Stopped}
		return false, 1
	case <-time.After(startGrace):
	}

	running := svc.Status{State: svc.Running, Accepts: acceptedCommands}
	status <- running
	h.log.Info("service: running")

	for {
		select {
		case req := <-requests:
			switch req.Cmd {
			case svc.Interrogate:
				status <- running
			case svc.Stop, svc.Shutdown:
				return h.stop(cancel, errc, status)
			}
		case err := <-errc:
			// The runner exited without being asked to.
			code := uint32(0)
			if err != nil {
				h.log.Error("service: daemon exited: %v", err)
				code = 1
			}
			status <- svc.Status{State: svc.Stopped}
			return false, code
		}
	}
}

func (h *Handler) stop(cancel context.CancelFunc, errc <-chan error, status chan<- svc.Status) (bool, uint32) {
	h.log.Info("service: stopping")
	status <- svc.Status{State: svc.StopPending}
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			h.log.Error("service: shutdown: %v", err)
			status <- svc.Status{State: svc.Stopped}
			return false, 1
		}
	case <-time.After(h.stopTimeout):
		h.log.Error("service: daemon did not stop within %s", h.stopTimeout)
		status <- svc.Status{State: svc.Stopped}
		return false, 1
	}
	h.log.Info("service: stopped")
	status <- svc.Status{State: svc.Stopped}
	return false, 0
}

// IsWindowsService reports whether the process was started by the SCM.
func IsWindowsService() (bool, error) {
	return svc.IsWindowsService()
}

// Run hands the process to the SCM under name until the service stops.
func Run(name string, h *Handler) error {
	return svc.Run(name, h)
}
