//go:build !windows

package server

import "os"

// cleanupSocket removes the Unix socket file.
// A socket that is already gone is not an error.
func cleanupSocket(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
