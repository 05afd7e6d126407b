package secret

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	fileName = "rpc.secret"
	fileMode = 0o600
)

// File stores the token in the config directory with 0600 permissions.
type File struct {
	dir string
}

func NewFile(configDir string) *File {
	return &File{dir: configDir}
}

func (f *File) path() string {
	return filepath.Join(f.dir, fileName)
}

func (f *File) Get() (string, error) {
	data, err := os.ReadFile(f.path())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

// Set writes the token through a temporary file and rename.
func (f *File) Set(token string) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(f.dir, ".rpc.secret.tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write secret: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, fileMode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, f.path()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename secret file: %w", err)
	}
	return nil
}

func (f *File) Delete() error {
	if err := os.Remove(f.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
