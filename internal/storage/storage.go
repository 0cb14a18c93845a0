// Package storage provides SQLite-backed persistence for the taskdeck
// reference backend.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mfraser/taskdeck/internal/model"
	_ "modernc.org/sqlite"
)

// Store provides access to the backend's SQLite database.
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

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		completed INTEGER NOT NULL DEFAULT 0,
		priority TEXT NOT NULL DEFAULT 'medium',
		category TEXT NOT NULL DEFAULT 'General',
		due_date DATETIME,
		starred INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		completed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks(completed);
	CREATE INDEX IF NOT EXISTS idx_tasks_category ON tasks(category);
	`

	_, err := s.db.Exec(schema)
	return err
}

const taskColumns = `id, title, description, completed, priority, category, due_date, starred, created_at, completed_at`

// CreateTask inserts a new task, assigning the id and creation time.
func (s *Store) CreateTask(t model.Task) (model.Task, error) {
	t.ID = uuid.New().String()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, t.Completed, string(t.Priority), t.Category,
		nullTime(t.DueDate), t.Starred, t.CreatedAt, nullTime(t.CompletedAt),
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// GetTask retrieves a task by ID. Returns nil when the id is unknown.
func (s *Store) GetTask(id string) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return task, nil
}

// ListTasks returns all tasks, newest-first.
func (s *Store) ListTasks() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// UpdateTask applies a partial patch inside a transaction and returns
// the merged record. Returns nil when the id is unknown.
func (s *Store) UpdateTask(id string, p model.Patch) (*model.Task, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}

	model.Apply(task, p, time.Now().UTC())

	_, err = tx.Exec(
		`UPDATE tasks SET title = ?, description = ?, completed = ?, priority = ?,
		 category = ?, due_date = ?, starred = ?, completed_at = ? WHERE id = ?`,
		task.Title, task.Description, task.Completed, string(task.Priority),
		task.Category, nullTime(task.DueDate), task.Starred, nullTime(task.CompletedAt), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return task, nil
}

// DeleteTask removes a task. Returns false when the id is unknown.
func (s *Store) DeleteTask(id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return affected > 0, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row scanner) (*model.Task, error) {
	var t model.Task
	var priority string
	var dueDate, completedAt sql.NullTime

	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &priority,
		&t.Category, &dueDate, &t.Starred, &t.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	t.Priority = model.Priority(priority)
	if dueDate.Valid {
		due := dueDate.Time
		t.DueDate = &due
	}
	if completedAt.Valid {
		done := completedAt.Time
		t.CompletedAt = &done
	}
	return &t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
