package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Logical document names. Only the legacy note key is a compatibility
// contract; the rest are free to change.
const (
	KeyChats         = "chat_sessions"
	KeyActiveChat    = "active_chat_id"
	KeyLegacyNote    = "travel_note"
	KeyNotes         = "travel_notes"
	KeyActiveNote    = "active_note_id"
	KeyNotesMigrated = "travel_notes_migrated"
	KeyItineraries   = "itineraries"
)

const sqliteDatabaseFile = "tripnotes.db"

// Drivers accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// ErrNotFound is returned by Get when no document exists under the key.
var ErrNotFound = errors.New("document not found")

// Backend is a flat key/value document store.
type Backend interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// Open returns the backend for driver rooted at dataDir.
func Open(driver, dataDir string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverFile:
		backend, err := NewFileBackend(filepath.Join(dataDir, "documents"))
		if err != nil {
			return nil, err
		}
		return backend, nil
	case DriverSQLite:
		backend, err := NewSQLiteBackend(filepath.Join(dataDir, sqliteDatabaseFile))
		if err != nil {
			return nil, err
		}
		return backend, nil
	case DriverMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// LoadJSON decodes the document under key into v. It reports false when the
// document does not exist or is blank.
func LoadJSON(b Backend, key string, v any) (bool, error) {
	data, err := b.Get(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(b Backend, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := b.Put(key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// LoadString reads a plain string document such as an active pointer.
func LoadString(b Backend, key string) (string, error) {
	var value string
	if _, err := LoadJSON(b, key, &value); err != nil {
		return "", err
	}
	return value, nil
}

// SaveString stores value under key, deleting the key when value is empty.
func SaveString(b Backend, key, value string) error {
	if value == "" {
		if err := b.Delete(key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
		return nil
	}
	return SaveJSON(b, key, value)
}
