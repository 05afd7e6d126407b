package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/powersched/powersched/internal/task"
	"github.com/powersched/powersched/pkg/logger"
	"github.com/spf13/afero"
)

const fileFormatVersion = 1

// fileStore keeps the task set in a single JSON document.
//
// Files:
//   - <path>     (current snapshot)
//   - <path>.tmp (in-flight write, renamed over <path>)
type fileStore struct {
	fs      afero.Fs
	path    string
	log     logger.Logger
	recover bool

	mu     sync.Mutex
	closed bool
}

type fileDocument struct {
	Version int               `json:"version"`
	Tasks   []json.RawMessage `json:"tasks"`
}

type fileSnapshot struct {
	Version int      `json:"version"`
	Tasks   []record `json:"tasks"`
}

func openFile(cfg Config, log logger.Logger) (Backend, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage path is required for file driver")
	}
	fsys := cfg.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// A leftover tmp file is an interrupted write; the snapshot is still intact.
	if err := fsys.Remove(path + ".tmp"); err != nil && !os.IsNotExist(err) {
		log.Warning("storage: remove stale temp file: %v", err)
	}
	return &fileStore{fs: fsys, path: path, log: log, recover: cfg.Recover}, nil
}

func (s *fileStore) Load(ctx context.Context) ([]task.Task, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	b, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", task.ErrPersistence, s.path, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}

	var doc fileDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", task.ErrPersistence, s.path, err)
	}
	if doc.Version > fileFormatVersion {
		return nil, fmt.Errorf("%w: %s has unsupported version %d", task.ErrPersistence, s.path, doc.Version)
	}

	tasks := make([]task.Task, 0, len(doc.Tasks))
	seen := make(map[string]struct{}, len(doc.Tasks))
	for i, raw := range doc.Tasks {
		t, err := decodeRecord(raw)
		if err == nil {
			if _, dup := seen[t.ID]; dup {
				err = fmt.Errorf("duplicate id %s", t.ID)
			}
		}
		if err != nil {
			if !s.recover {
				return nil, fmt.Errorf("%w: %s record %d: %v", task.ErrPersistence, s.path, i, err)
			}
			s.log.Warning("storage: skipping malformed record %d in %s: %v", i, s.path, err)
			continue
		}
		seen[t.ID] = struct{}{}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func decodeRecord(raw json.RawMessage) (task.Task, error) {
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return task.Task{}, err
	}
	return r.toTask()
}

// Save writes the snapshot to <path>.tmp, syncs it, then renames it over
// <path>. A crash at any point leaves either the old or the new snapshot.
func (s *fileStore) Save(ctx context.Context, tasks []task.Task) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	snap := fileSnapshot{Version: fileFormatVersion, Tasks: make([]record, 0, len(tasks))}
	for _, t := range tasks {
		snap.Tasks = append(snap.Tasks, toRecord(t))
	}
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("sync %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
