package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mfraser/taskdeck/internal/engine"
	"github.com/mfraser/taskdeck/internal/model"
)

func TestListTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/todos" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Expected bearer credential, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 42, "title": "Buy milk", "completed": false, "priority": "high",
			 "category": "Shopping", "due_date": "2025-06-05", "starred": true,
			 "created_at": "2025-06-02T15:04:05.123456"},
			{"id": "abc", "title": "Write report", "completed": true,
			 "created_at": "2025-06-01T10:00:00Z", "completed_at": "2025-06-01T12:30:00Z"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken("secret"))
	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}

	first := tasks[0]
	if first.ID != "42" {
		t.Errorf("Numeric id should map to string, got %q", first.ID)
	}
	if first.Priority != model.PriorityHigh || !first.Starred {
		t.Errorf("Fields not mapped: %+v", first)
	}
	if first.DueDate == nil {
		t.Fatal("Expected due date to be parsed")
	}
	if first.CreatedAt.IsZero() {
		t.Error("Expected fractional no-offset timestamp to parse")
	}

	second := tasks[1]
	if second.ID != "abc" {
		t.Errorf("String id should pass through, got %q", second.ID)
	}
	if second.Priority != model.PriorityMedium || second.Category != model.DefaultCategory {
		t.Errorf("Missing wire fields should get defaults: %+v", second)
	}
	if second.CompletedAt == nil || !second.CompletedAt.Equal(time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)) {
		t.Error("CompletedAt did not round-trip the instant")
	}
}

func TestCreateTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/todos" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Bad request body: %v", err)
		}
		if req["title"] != "Buy milk" || req["priority"] != "medium" {
			t.Errorf("Unexpected body: %v", req)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 7, "title": "Buy milk", "priority": "medium",
			"category": "General", "created_at": "2025-06-02T15:04:05Z"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken("secret"))
	created, err := c.CreateTask(context.Background(), model.Task{
		ID:       "local-placeholder",
		Title:    "Buy milk",
		Priority: model.PriorityMedium,
		Category: model.DefaultCategory,
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if created.ID != "7" {
		t.Errorf("Expected server-assigned id, got %q", created.ID)
	}
}

func TestUpdateTask_PartialPatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/todos/7" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req) != 1 {
			t.Errorf("Patch must only carry set fields, got %v", req)
		}
		if req["completed"] != true {
			t.Errorf("Expected completed=true, got %v", req)
		}
		w.Write([]byte(`{"id": 7, "title": "Buy milk", "completed": true,
			"created_at": "2025-06-02T15:04:05Z", "completed_at": "2025-06-03T09:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken("secret"))
	completed := true
	updated, err := c.UpdateTask(context.Background(), "7", model.Patch{Completed: &completed})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if !updated.Completed || updated.CompletedAt == nil {
		t.Error("Expected merged record with completion pair")
	}
}

func TestDeleteTask(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.Method != http.MethodDelete || r.URL.Path != "/todos/7" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken("secret"))
	if err := c.DeleteTask(context.Background(), "7"); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if !called {
		t.Error("Expected DELETE request")
	}
}

func TestUnauthorizedMapsToAuthRequired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"token expired"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken("stale"))
	_, err := c.ListTasks(context.Background())
	if !errors.Is(err, engine.ErrAuthRequired) {
		t.Errorf("Expected ErrAuthRequired, got %v", err)
	}
}

func TestMissingTokenIsAuthRequired(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", StaticToken(""))
	_, err := c.ListTasks(context.Background())
	if !errors.Is(err, engine.ErrAuthRequired) {
		t.Errorf("Expected ErrAuthRequired before any request, got %v", err)
	}
}

func TestServerErrorIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Failed to process todos"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken("secret"))
	_, err := c.ListTasks(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", apiErr.Status)
	}
	if apiErr.Message != "Failed to process todos" {
		t.Errorf("Expected extracted error message, got %q", apiErr.Message)
	}
}

func TestProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/profile" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"user": {"id": 3, "name": "Dana", "email": "dana@example.com"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken("secret"))
	user, err := c.Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if user.ID != "3" || user.Name != "Dana" || user.Email != "dana@example.com" {
		t.Errorf("Unexpected user: %+v", user)
	}
}
