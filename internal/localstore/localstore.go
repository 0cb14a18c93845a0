// Package localstore provides SQLite-backed on-device persistence for
// taskdeck: a durable key→text mapping used for the task snapshot in the
// offline variant and the session credential in the remote variant.
package localstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mfraser/taskdeck/internal/model"
	_ "modernc.org/sqlite"
)

// TasksKey is the fixed entry the full task collection serializes to.
const TasksKey = "tasks"

// SessionKey is the entry holding the cached session credential.
const SessionKey = "session"

// Store is a durable key-value store on a single SQLite file.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Open with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer at a time
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put writes a value under key, replacing any existing entry. The write
// is durable once Put returns.
func (s *Store) Put(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Get returns the value under key and whether it exists.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Delete removes the entry under key, if any.
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// --- Task Snapshot ---

// SaveTasks serializes the full collection to the tasks entry.
// Timestamps are stored as RFC 3339 text.
func (s *Store) SaveTasks(tasks []model.Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	return s.Put(TasksKey, string(data))
}

// LoadTasks deserializes the persisted snapshot. Records missing
// required fields are dropped with a warning rather than failing the
// whole load.
func (s *Store) LoadTasks() ([]model.Task, error) {
	value, ok, err := s.Get(TasksKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(raw))
	for i, r := range raw {
		var t model.Task
		if err := json.Unmarshal(r, &t); err != nil {
			log.Printf("Warning: dropping unreadable task record %d: %v", i, err)
			continue
		}
		if t.ID == "" || t.Title == "" || t.CreatedAt.IsZero() {
			log.Printf("Warning: dropping malformed task record %d (missing required fields)", i)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
