//go:build !windows

package server

import "os"

// setSocketPermissions limits the socket to the daemon's user.
func setSocketPermissions(path string) {
	_ = os.Chmod(path, 0o700)
}
