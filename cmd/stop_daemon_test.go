//go:build !windows

package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/powersched/powersched/common"
)

func TestStopDaemon_NoPidFile(t *testing.T) {
	t.Setenv(common.ConfigDirEnv, t.TempDir())
	out, err := runApp(t, "stop-daemon")
	if err != nil {
		t.Fatalf("stop-daemon: %v", err)
	}
	if !strings.Contains(out, "not running") {
		t.Fatalf("output = %q", out)
	}
}

func TestStopDaemon_StalePid(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(common.ConfigDirEnv, dir)
	if err := os.WriteFile(filepath.Join(dir, "daemon.pid"), []byte("999999999"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := runApp(t, "stop-daemon")
	if err != nil {
		t.Fatalf("stop-daemon: %v", err)
	}
	if !strings.Contains(out, "stale pid 999999999") {
		t.Fatalf("output = %q", out)
	}
}

func TestKillDaemon_ProcessNotFound(t *testing.T) {
	if err := killDaemon(999999999); err == nil {
		t.Fatal("expected error for a missing process")
	}
}
