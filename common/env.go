// Package common provides shared types and constants used across the
// powersched client-server communication layer.
package common

import (
	"os"
	"path/filepath"
)

// Environment variable names for configuration.
const (
	// SocketPathEnv is the environment variable for a custom socket path.
	SocketPathEnv = "POWERSCHED_SOCKET_PATH"

	// PipeNameEnv is the environment variable for a custom Windows pipe name.
	PipeNameEnv = "POWERSCHED_PIPE_NAME"

	// ConfigDirEnv overrides the configuration directory.
	ConfigDirEnv = "POWERSCHED_CONFIG_DIR"

	// RPCSecretEnv supplies the HTTP RPC bearer token.
	RPCSecretEnv = "POWERSCHED_RPC_SECRET"

	// DebugEnv enables debug logging.
	DebugEnv = "POWERSCHED_DEBUG"
)

// SocketPath returns the Unix socket path the daemon listens on.
func SocketPath() string {
	if path := os.Getenv(SocketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), AppName+".sock")
}

// ConfigDir returns the directory holding settings, tasks and the pidfile.
func ConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}
