//go:build !windows

package server

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// createListener creates the Unix socket listener. A stale socket file left
// by a crashed daemon is removed first; the pidfile guard ensures no live
// daemon owns it.
func createListener(path string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	_ = os.Remove(path)
	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", path, err)
	}
	setSocketPermissions(path)
	return l, nil
}
