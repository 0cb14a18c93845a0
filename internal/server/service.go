// Package server provides the HTTP API and service layer for the
// taskdeck reference backend.
package server

import (
	"fmt"

	"github.com/mfraser/taskdeck/internal/model"
	"github.com/mfraser/taskdeck/internal/storage"
)

// Service provides the backend business logic over the task store.
type Service struct {
	store *storage.Store
}

// NewService creates a new backend service.
func NewService(s *storage.Store) *Service {
	return &Service{store: s}
}

// CreateTask validates and stores a new task, applying defaults.
func (s *Service) CreateTask(t model.Task) (model.Task, error) {
	t.Title = model.NormalizeTitle(t.Title)
	if t.Title == "" {
		return model.Task{}, ErrTitleRequired
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if !t.Priority.Valid() {
		return model.Task{}, fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if t.Category == "" {
		t.Category = model.DefaultCategory
	}
	t.Completed = false
	t.CompletedAt = nil

	return s.store.CreateTask(t)
}

// ListTasks returns all tasks, newest-first.
func (s *Service) ListTasks() ([]model.Task, error) {
	return s.store.ListTasks()
}

// UpdateTask validates and applies a partial patch.
func (s *Service) UpdateTask(id string, p model.Patch) (model.Task, error) {
	if p.Title != nil {
		title := model.NormalizeTitle(*p.Title)
		if title == "" {
			return model.Task{}, ErrTitleRequired
		}
		p.Title = &title
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return model.Task{}, fmt.Errorf("%w: %q", ErrInvalidPriority, *p.Priority)
	}

	updated, err := s.store.UpdateTask(id, p)
	if err != nil {
		return model.Task{}, err
	}
	if updated == nil {
		return model.Task{}, ErrTaskNotFound
	}
	return *updated, nil
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(id string) error {
	deleted, err := s.store.DeleteTask(id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTaskNotFound
	}
	return nil
}
