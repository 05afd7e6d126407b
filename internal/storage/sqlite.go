package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/powersched/powersched/internal/task"
	"github.com/powersched/powersched/pkg/logger"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

type sqliteStore struct {
	db      *sql.DB
	log     logger.Logger
	recover bool
}

func openSQLite(cfg Config, log logger.Logger) (Backend, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = FULL")

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &sqliteStore{db: db, log: log, recover: cfg.Recover}, nil
}

func (s *sqliteStore) Load(ctx context.Context) ([]task.Task, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action, execute_at, status, created_at, finished_at, outcome, error
		 FROM tasks ORDER BY execute_at, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query tasks: %v", task.ErrPersistence, err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var r record
		if err := rows.Scan(&r.ID, &r.Action, &r.ExecuteAt, &r.Status, &r.CreatedAt, &r.FinishedAt, &r.Outcome, &r.Error); err != nil {
			return nil, fmt.Errorf("%w: scan task: %v", task.ErrPersistence, err)
		}
		t, err := r.toTask()
		if err != nil {
			if !s.recover {
				return nil, fmt.Errorf("%w: %v", task.ErrPersistence, err)
			}
			s.log.Warning("storage: skipping malformed row %q: %v", r.ID, err)
			continue
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", task.ErrPersistence, err)
	}
	return tasks, nil
}

// Save replaces every row inside one transaction.
func (s *sqliteStore) Save(ctx context.Context, tasks []task.Task) (err error) {
	if s.db == nil {
		return ErrClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tasks(id, action, execute_at, status, created_at, finished_at, outcome, error)
		 VALUES(?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, t := range tasks {
		r := toRecord(t)
		if _, err = stmt.ExecContext(ctx, r.ID, r.Action, r.ExecuteAt, r.Status, r.CreatedAt, r.FinishedAt, r.Outcome, r.Error); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
