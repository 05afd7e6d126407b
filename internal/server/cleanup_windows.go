//go:build windows

package server

// cleanupSocket is a no-op on Windows since named pipes are removed by the
// OS when the last handle is closed.
func cleanupSocket(path string) error {
	return nil
}
