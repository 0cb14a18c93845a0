// Package views derives filtered lists and aggregate statistics from a
// task collection snapshot. Every function is pure: it never mutates its
// input and identical inputs yield identical outputs, so views are
// recomputed from scratch on every change.
package views

import (
	"strings"
	"time"

	"github.com/mfraser/taskdeck/internal/model"
)

// Status selects a completion/star slice of the collection.
type Status string

const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusStarred   Status = "starred"
)

// Valid reports whether s is a known status filter.
func (s Status) Valid() bool {
	switch s {
	case StatusAll, StatusActive, StatusCompleted, StatusStarred:
		return true
	}
	return false
}

// AllCategories is the category filter value that matches everything.
const AllCategories = "all"

// Stats aggregates counts over a collection. completed + pending always
// equals total, and overdue never exceeds pending.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Starred   int `json:"starred"`
	Overdue   int `json:"overdue"`
}

// FilterByStatus returns the tasks matching the status filter, in the
// order they appear in the input.
func FilterByStatus(tasks []model.Task, status Status) []model.Task {
	if status == StatusAll || status == "" {
		return tasks
	}
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		switch status {
		case StatusActive:
			if !t.Completed {
				out = append(out, t)
			}
		case StatusCompleted:
			if t.Completed {
				out = append(out, t)
			}
		case StatusStarred:
			if t.Starred {
				out = append(out, t)
			}
		}
	}
	return out
}

// FilterByCategory returns the tasks whose category matches exactly
// (case-sensitive). The "all" category is the identity.
func FilterByCategory(tasks []model.Task, category string) []model.Task {
	if category == AllCategories || category == "" {
		return tasks
	}
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Search returns the tasks whose title contains the term,
// case-insensitively. An empty term is the identity.
func Search(tasks []model.Task, term string) []model.Task {
	if term == "" {
		return tasks
	}
	needle := strings.ToLower(term)
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), needle) {
			out = append(out, t)
		}
	}
	return out
}

// Query composes the three filters, preserving collection order.
func Query(tasks []model.Task, status Status, category, term string) []model.Task {
	return Search(FilterByCategory(FilterByStatus(tasks, status), category), term)
}

// Count returns the aggregate statistics for the collection. Overdue
// counts incomplete tasks whose due date is strictly before now.
func Count(tasks []model.Task, now time.Time) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
		if t.Starred {
			s.Starred++
		}
		if t.Overdue(now) {
			s.Overdue++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}

// Categories returns the distinct category labels in first-seen order.
func Categories(tasks []model.Task) []string {
	seen := make(map[string]bool, len(tasks))
	var out []string
	for _, t := range tasks {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	return out
}
