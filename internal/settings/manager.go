package settings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/powersched/powersched/internal/task"
	"github.com/powersched/powersched/pkg/logger"
	yaml "go.yaml.in/yaml/v3"
)

// FileName is the settings file name inside the config directory.
const FileName = "settings.yaml"

const reloadDebounce = 250 * time.Millisecond

// Manager owns the settings file and the settings currently in effect.
type Manager struct {
	path string
	log  logger.Logger

	mu  sync.RWMutex
	cur Settings
}

// NewManager returns a Manager for path holding the defaults until Load.
func NewManager(path string, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Manager{path: path, log: log, cur: Default()}
}

// Path returns the settings file path.
func (m *Manager) Path() string { return m.path }

// Get returns the settings currently in effect.
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.cur
	s.ReminderOffsets = slices.Clone(m.cur.ReminderOffsets)
	return s
}

// ReminderOffsets returns the current reminder offsets in seconds.
func (m *Manager) ReminderOffsets() []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.cur.ReminderOffsets)
}

// Parse reads the settings file. Keys absent from the file keep their
// default values; a missing file yields the defaults. Read and decode
// failures wrap task.ErrPersistence.
func (m *Manager) Parse() (Settings, error) {
	b, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("%w: read settings: %v", task.ErrPersistence, err)
	}
	s := Default()
	if len(bytes.TrimSpace(b)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && err != io.EOF {
			return Settings{}, fmt.Errorf("%w: decode %s: %v", task.ErrPersistence, m.path, err)
		}
	}
	s, err = s.Normalize()
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %s: %v", task.ErrPersistence, m.path, err)
	}
	return s, nil
}

// Load parses the file and makes the result current. On failure the
// previous settings stay in effect.
func (m *Manager) Load() (Settings, error) {
	s, err := m.Parse()
	if err != nil {
		return Settings{}, err
	}
	m.commit(s)
	return s, nil
}

// Save validates s, writes it atomically and makes it current.
func (m *Manager) Save(s Settings) (Settings, error) {
	s, err := s.Normalize()
	if err != nil {
		return Settings{}, err
	}
	b, err := yaml.Marshal(&s)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: encode settings: %v", task.ErrPersistence, err)
	}
	if err := writeAtomic(m.path, b); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", task.ErrPersistence, err)
	}
	m.commit(s)
	return s, nil
}

func writeAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// commit swaps in s as the settings in effect.
func (m *Manager) commit(s Settings) {
	m.mu.Lock()
	changed := !Equal(m.cur, s)
	m.cur = s
	m.mu.Unlock()
	if changed {
		m.log.Info("settings: now in effect: action=%s reminders=%v theme=%s", s.DefaultAction, s.ReminderOffsets, s.Theme)
	}
}

// Watch reloads the file whenever it changes on disk until ctx is done.
// Edits are debounced so a burst of writes triggers one reload; a file that
// fails to parse is logged and ignored.
func (m *Manager) Watch(ctx context.Context) error {
	dir := filepath.Dir(m.path)
	file := filepath.Base(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("settings watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(reloadDebounce, m.reload)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if strings.EqualFold(filepath.Base(ev.Name), file) &&
				ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				debounce()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			m.log.Warning("settings: watch error: %v", err)
		}
	}
}

func (m *Manager) reload() {
	before := m.Get()
	s, err := m.Load()
	if err != nil {
		m.log.Warning("settings: reload %s: %v", m.path, err)
		return
	}
	if !Equal(before, s) {
		m.log.Info("settings: reloaded %s", m.path)
	}
}
