//go:build windows

package powercli

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// detachAttr starts the daemon without a console in a new process group.
func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP | windows.DETACHED_PROCESS,
		HideWindow:    true,
	}
}
