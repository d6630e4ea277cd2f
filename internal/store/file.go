package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	fileSuffix    = ".json"
	partialSuffix = ".part"
)

// FileBackend keeps one JSON file per key inside a directory.
type FileBackend struct {
	dir string
}

// NewFileBackend creates dir when needed and returns a backend rooted there.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileBackend{dir: dir}, nil
}

// Dir reports the directory holding the documents.
func (f *FileBackend) Dir() string {
	return f.dir
}

func (f *FileBackend) Get(key string) ([]byte, error) {
	path, err := f.pathFor(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Put writes to a partial file first and renames it into place so a crash
// mid-write never leaves a truncated document behind.
func (f *FileBackend) Put(key string, value []byte) error {
	path, err := f.pathFor(key)
	if err != nil {
		return err
	}
	partial := path + partialSuffix
	if err := os.WriteFile(partial, value, 0o644); err != nil {
		return err
	}
	if err := os.Rename(partial, path); err != nil {
		_ = os.Remove(partial)
		return err
	}
	return nil
}

func (f *FileBackend) Delete(key string) error {
	path, err := f.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (f *FileBackend) pathFor(key string) (string, error) {
	clean := sanitizeKey(key)
	if clean == "" {
		return "", fmt.Errorf("invalid document key %q", key)
	}
	return filepath.Join(f.dir, clean+fileSuffix), nil
}

func sanitizeKey(value string) string {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, "/", "-")
	value = strings.ReplaceAll(value, "\\", "-")
	value = strings.ReplaceAll(value, ":", "-")
	value = strings.ReplaceAll(value, "..", "-")
	return value
}
