// Package store provides the durable key-value adapters the studio
// synchronizes its collections to. Values are JSON-serialized; every
// write replaces the whole value (last-write-wins, no dirty tracking).
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"larchstudio/internal/logging"
)

// Well-known keys for the persisted collections.
const (
	KeySavedPrompts  = "saved_prompts"
	KeyGalleryItems  = "gallery_items"
	KeyTheme         = "theme_preference"
	KeyRecentSession = "recent_session"
)

// SQLite is a key-value adapter backed by a single SQLite table.
type SQLite struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// NewSQLite creates or opens the studio database at dbPath.
func NewSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLite{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Store("[Store] opened %s", dbPath)
	return s, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.dbPath
}

func (s *SQLite) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Put stores value under key as JSON, replacing any previous value.
func (s *SQLite) Put(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC())
	if err != nil {
		logging.StoreError("[Store] put %s failed: %v", key, err)
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	logging.Store("[Store] put %s (%d bytes)", key, len(data))
	return nil
}

// Get loads the value stored under key into out. The bool reports
// whether the key existed.
func (s *SQLite) Get(key string, out any) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *SQLite) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
