//go:build linux

package wake

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/powersched/powersched/pkg/logger"
)

const (
	logindPath   = dbus.ObjectPath("/org/freedesktop/login1")
	logindIface  = "org.freedesktop.login1.Manager"
	sleepSignal  = "PrepareForSleep"
	signalBuffer = 8
)

// Watch subscribes to logind's PrepareForSleep signal and sends on the
// returned channel each time the system resumes. The subscription ends
// when ctx is done.
func Watch(ctx context.Context, log logger.Logger) (<-chan struct{}, error) {
	conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}
	if err := conn.AddMatchSignalContext(ctx,
		dbus.WithMatchObjectPath(logindPath),
		dbus.WithMatchInterface(logindIface),
		dbus.WithMatchMember(sleepSignal),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe %s: %w", sleepSignal, err)
	}

	sigs := make(chan *dbus.Signal, signalBuffer)
	conn.Signal(sigs)

	out := make(chan struct{}, 1)
	go func() {
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				conn.RemoveSignal(sigs)
				return
			case sig, ok := <-sigs:
				if !ok {
					return
				}
				if resumed(sig) {
					log.Info("wake: system resumed from sleep")
					notify(out)
				}
			}
		}
	}()
	return out, nil
}

// resumed reports whether sig is PrepareForSleep(false), sent after resume.
func resumed(sig *dbus.Signal) bool {
	if sig == nil || sig.Name != logindIface+"."+sleepSignal || len(sig.Body) != 1 {
		return false
	}
	start, ok := sig.Body[0].(bool)
	return ok && !start
}
