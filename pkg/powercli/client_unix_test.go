//go:build !windows

package powercli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/powersched/powersched/common"
	"github.com/powersched/powersched/internal/api"
	"github.com/powersched/powersched/internal/server"
	"github.com/powersched/powersched/internal/settings"
	"github.com/powersched/powersched/internal/storage"
	"github.com/powersched/powersched/internal/store"
	"github.com/powersched/powersched/internal/task"
)

// startDaemon serves the full method table on a temporary socket.
func startDaemon(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "pc")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	path := filepath.Join(dir, "d.sock")

	st, err := store.Open(context.Background(), storage.NewMemory(), store.Options{})
	if err != nil {
		t.Fatal(err)
	}
	sm := settings.NewManager(filepath.Join(dir, settings.FileName), nil)
	notifier := server.NewRPCNotifier(nil)
	a := api.NewApi(nil, st, sm, notifier)
	srv := server.NewServer(nil, server.NewMethods(a, server.RPCConfig{Version: "9.9.9"}), notifier, path)
	if err := srv.Listen(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = srv.Serve(ctx)
		close(done)
	}()
	go notifier.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return path
}

func TestClient_RoundTrip(t *testing.T) {
	path := startDaemon(t)
	ctx := context.Background()

	var mu sync.Mutex
	var events []Event
	c, err := Dial(ctx, Options{Path: path, OnEvent: func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	v, err := c.Version(ctx)
	if err != nil || v.Version != "9.9.9" {
		t.Fatalf("version = %+v, %v", v, err)
	}

	res, err := c.Create(ctx, "sleep", time.Now().Add(time.Hour).Unix())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := c.Get(ctx, res.ID)
	if err != nil || got.Action != "sleep" || got.Status != "pending" {
		t.Fatalf("get = %+v, %v", got, err)
	}
	if err := c.Cancel(ctx, res.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := c.Cancel(ctx, res.ID); !errors.Is(err, task.ErrInvalidState) {
		t.Fatalf("second cancel err = %v, want InvalidState", err)
	}
	if _, err := c.Get(ctx, "missing"); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("get missing err = %v, want NotFound", err)
	}
	if _, err := c.Create(ctx, "lock", 0); !errors.Is(err, task.ErrInvalidTime) {
		t.Fatalf("create zero err = %v, want InvalidTime", err)
	}

	active, err := c.List(ctx, true)
	if err != nil || len(active) != 0 {
		t.Fatalf("active list = %+v, %v", active, err)
	}
	all, err := c.List(ctx, false)
	if err != nil || len(all) != 1 {
		t.Fatalf("full list = %+v, %v", all, err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(events)
		mu.Unlock()
		if n >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("received %d events, want 2", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
	mu.Lock()
	defer mu.Unlock()
	if events[0].Method != common.NotifyTaskCreated || events[1].Method != common.NotifyTaskCancelled {
		t.Fatalf("unexpected events %+v", events)
	}
	if events[1].Task.ID != res.ID {
		t.Fatalf("cancel event for %q, want %q", events[1].Task.ID, res.ID)
	}
}

func TestClient_Settings(t *testing.T) {
	path := startDaemon(t)
	ctx := context.Background()
	c, err := Dial(ctx, Options{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	s, err := c.GetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	s.DefaultAction = "lock"
	s.ReminderOffsets = []int64{10, 600, 10}
	saved, err := c.SaveSettings(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if saved.DefaultAction != "lock" || len(saved.ReminderOffsets) != 2 || saved.ReminderOffsets[0] != 600 {
		t.Fatalf("unexpected normalized settings %+v", saved)
	}

	s.Theme = "neon"
	if _, err := c.SaveSettings(ctx, s); !errors.Is(err, task.ErrInvalidInput) {
		t.Fatalf("err = %v, want InvalidInput", err)
	}
}

func TestDial_NoDaemon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.sock")
	if _, err := Dial(context.Background(), Options{Path: path}); err == nil {
		t.Fatal("expected error with no daemon")
	}
	if isDaemonRunning(path) {
		t.Fatal("expected daemon to not be running")
	}
}

func TestEnsureDaemon_SpawnFailure(t *testing.T) {
	orig := spawnDaemonFunc
	defer func() { spawnDaemonFunc = orig }()
	spawnDaemonFunc = func() error { return errors.New("no binary") }

	path := filepath.Join(t.TempDir(), "none.sock")
	if _, err := Dial(context.Background(), Options{Path: path, AutoStart: true}); err == nil {
		t.Fatal("expected spawn error")
	}
}

func TestEnsureDaemon_AlreadyRunning(t *testing.T) {
	path := startDaemon(t)
	orig := spawnDaemonFunc
	defer func() { spawnDaemonFunc = orig }()
	spawnDaemonFunc = func() error {
		t.Fatal("spawn should not be called")
		return nil
	}
	c, err := Dial(context.Background(), Options{Path: path, AutoStart: true})
	if err != nil {
		t.Fatal(err)
	}
	_ = c.Close()
}
