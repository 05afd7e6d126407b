package storage

import (
	"errors"
	"strings"

	"github.com/powersched/powersched/pkg/logger"
)

// Open initializes the configured backend.
func Open(cfg Config, log logger.Logger) (Backend, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
