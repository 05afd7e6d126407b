package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const pidFileName = "daemon.pid"

// PidFile guards against two daemons sharing a config directory.
type PidFile struct {
	path string
}

func NewPidFile(configDir string) *PidFile {
	return &PidFile{path: filepath.Join(configDir, pidFileName)}
}

// Path returns the pidfile location.
func (p *PidFile) Path() string { return p.path }

// Acquire writes the current pid. A pidfile naming a live process other
// than this one fails with ErrAlreadyRunning; a stale one is replaced.
func (p *PidFile) Acquire() error {
	if pid, err := p.Read(); err == nil && pid != os.Getpid() && isProcessRunning(pid) {
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}
	return os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// Read returns the pid stored in the file.
func (p *PidFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("invalid PID: %d", pid)
	}
	return pid, nil
}

// Release removes the pidfile if it still names this process.
func (p *PidFile) Release() error {
	if pid, err := p.Read(); err == nil && pid != os.Getpid() {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Running returns the pid of a live daemon owning configDir.
func Running(configDir string) (int, bool) {
	pid, err := NewPidFile(configDir).Read()
	if err != nil || !isProcessRunning(pid) {
		return 0, false
	}
	return pid, true
}
