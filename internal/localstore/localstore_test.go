package localstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mfraser/taskdeck/internal/model"
)

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	// Verify file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestPutGetDelete(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	if err := s.Put("session", `{"token":"abc"}`); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	value, ok, err := s.Get("session")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected key to exist")
	}
	if value != `{"token":"abc"}` {
		t.Errorf("Unexpected value: %s", value)
	}

	// Put replaces
	if err := s.Put("session", `{"token":"def"}`); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	value, _, _ = s.Get("session")
	if value != `{"token":"def"}` {
		t.Errorf("Expected replaced value, got %s", value)
	}

	if err := s.Delete("session"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, ok, _ = s.Get("session")
	if ok {
		t.Error("Expected key to be gone after delete")
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	_, ok, err := s.Get("nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Expected missing key")
	}
}

func TestTaskSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	created := time.Date(2025, 6, 2, 15, 4, 5, 0, time.UTC)
	due := created.Add(72 * time.Hour)
	completedAt := created.Add(time.Hour)
	tasks := []model.Task{
		{ID: "b", Title: "Write report", Priority: model.PriorityHigh, Category: "Work", CreatedAt: created.Add(time.Minute), DueDate: &due},
		{ID: "a", Title: "Buy milk", Priority: model.PriorityMedium, Category: "Shopping", Completed: true, CompletedAt: &completedAt, CreatedAt: created},
	}

	if err := s.SaveTasks(tasks); err != nil {
		t.Fatalf("SaveTasks failed: %v", err)
	}

	got, err := s.LoadTasks()
	if err != nil {
		t.Fatalf("LoadTasks failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(got))
	}
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Error("Snapshot must preserve order")
	}
	if !got[0].CreatedAt.Equal(created.Add(time.Minute)) {
		t.Errorf("CreatedAt did not round-trip: %v", got[0].CreatedAt)
	}
	if got[0].DueDate == nil || !got[0].DueDate.Equal(due) {
		t.Error("DueDate did not round-trip the instant")
	}
	if got[1].CompletedAt == nil || !got[1].CompletedAt.Equal(completedAt) {
		t.Error("CompletedAt did not round-trip the instant")
	}
}

func TestLoadTasks_Empty(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	got, err := s.LoadTasks()
	if err != nil {
		t.Fatalf("LoadTasks failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no tasks, got %d", len(got))
	}
}

func TestLoadTasks_DropsMalformedRecords(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	// One valid record, one missing its title, one missing created_at.
	snapshot := `[
		{"id":"a","title":"Buy milk","priority":"medium","category":"General","created_at":"2025-06-02T15:04:05Z"},
		{"id":"b","priority":"medium","category":"General","created_at":"2025-06-02T15:04:05Z"},
		{"id":"c","title":"No timestamp","priority":"medium","category":"General"}
	]`
	if err := s.Put(TasksKey, snapshot); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.LoadTasks()
	if err != nil {
		t.Fatalf("LoadTasks failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 surviving task, got %d", len(got))
	}
	if got[0].ID != "a" {
		t.Errorf("Expected task a to survive, got %s", got[0].ID)
	}
}

func newTestStore(t *testing.T) *Store {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return s
}
