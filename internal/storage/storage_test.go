package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/powersched/powersched/internal/task"
	"github.com/powersched/powersched/pkg/logger"
	"github.com/spf13/afero"
)

func sampleTasks() []task.Task {
	return []task.Task{
		{ID: "a", Action: task.ActionShutdown, ExecuteAt: 2000, Status: task.StatusPending, CreatedAt: 1000},
		{ID: "b", Action: task.ActionLock, ExecuteAt: 1500, Status: task.StatusCompleted, CreatedAt: 1000,
			FinishedAt: 1501, Outcome: task.Outcome{Kind: task.OutcomeFailure, Error: "denied"}},
		{ID: "c", Action: task.ActionSleep, ExecuteAt: 3000, Status: task.StatusCancelled, CreatedAt: 1100, FinishedAt: 1200},
		{ID: "d", Action: task.ActionRestart, ExecuteAt: 1600, Status: task.StatusCompleted, CreatedAt: 1000,
			FinishedAt: 1631, Outcome: task.Outcome{Kind: task.OutcomeTimeout, Error: "execution timed out"}},
	}
}

func byID(tasks []task.Task) map[string]task.Task {
	m := make(map[string]task.Task, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t
	}
	return m
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	b, err := Open(Config{Driver: "file", Path: "/data/tasks.json", Fs: afero.NewMemMapFs()}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()
	tasks, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(tasks))
	}
}

func TestFileStore_SaveLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := Config{Path: "/data/tasks.json", Fs: fs}
	b, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	want := sampleTasks()
	if err := b.Save(context.Background(), want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	_ = b.Close()

	if ok, _ := afero.Exists(fs, "/data/tasks.json.tmp"); ok {
		t.Fatal("temp file left behind after save")
	}

	b2, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b2.Close()
	got, err := b2.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(got), len(want))
	}
	m := byID(got)
	for _, w := range want {
		if m[w.ID] != w {
			t.Errorf("task %s: got %+v, want %+v", w.ID, m[w.ID], w)
		}
	}
}

func TestFileStore_CorruptDocumentFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/data/tasks.json", []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	b, err := Open(Config{Path: "/data/tasks.json", Fs: fs, Recover: true}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, err = b.Load(context.Background())
	if !errors.Is(err, task.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

const mixedDoc = `{"version":1,"tasks":[
 {"id":"ok","action":"restart","execute_at":5000,"status":"pending","created_at":4000},
 {"id":"bad","action":"explode","execute_at":5000,"status":"pending","created_at":4000}
]}`

func TestFileStore_MalformedRecordFailsWithoutRecover(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/data/tasks.json", []byte(mixedDoc), 0o600)
	b, err := Open(Config{Path: "/data/tasks.json", Fs: fs}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := b.Load(context.Background()); !errors.Is(err, task.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestFileStore_RecoverSkipsMalformedRecord(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/data/tasks.json", []byte(mixedDoc), 0o600)
	log := logger.NewMockLogger()
	b, err := Open(Config{Path: "/data/tasks.json", Fs: fs, Recover: true}, log)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].ID != "ok" {
		t.Fatalf("expected only task ok, got %+v", got)
	}
	if len(log.Warnings()) != 1 {
		t.Fatalf("expected one warning, got %v", log.Warnings())
	}
}

func TestFileStore_RemovesStaleTemp(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/data/tasks.json.tmp", []byte("partial"), 0o600)
	if _, err := Open(Config{Path: "/data/tasks.json", Fs: fs}, nil); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ok, _ := afero.Exists(fs, "/data/tasks.json.tmp"); ok {
		t.Fatal("stale temp file not removed")
	}
}

func TestFileStore_Closed(t *testing.T) {
	b, _ := Open(Config{Path: "/data/tasks.json", Fs: afero.NewMemMapFs()}, nil)
	_ = b.Close()
	if err := b.Save(context.Background(), nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	cfg := Config{Driver: "sqlite", Path: path, BusyTimeout: time.Second}
	b, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	if err := b.Save(ctx, sampleTasks()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// A second save replaces the set.
	if err := b.Save(ctx, sampleTasks()[:2]); err != nil {
		t.Fatalf("Save: %v", err)
	}
	_ = b.Close()

	b2, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b2.Close()
	got, err := b2.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d tasks, want 2", len(got))
	}
	// Ordered by execute_at.
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Outcome.Error != "denied" {
		t.Fatalf("outcome not persisted: %+v", got[0].Outcome)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "redis", Path: "x"}, nil); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
