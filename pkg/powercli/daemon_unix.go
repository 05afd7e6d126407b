//go:build !windows

package powercli

import "syscall"

// detachAttr puts the daemon in its own process group so it survives the
// CLI exiting.
func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
