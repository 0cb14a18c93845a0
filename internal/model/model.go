// Package model defines the core domain types for taskdeck.
package model

import (
	"strings"
	"time"
)

// DefaultCategory is assigned to tasks created without an explicit category.
const DefaultCategory = "General"

// Priority represents the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Next returns the priority that follows p in the low → medium → high cycle.
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// Task represents a single to-do item.
//
// The JSON field names match the backend wire format, so the same struct
// serves both the local snapshot and the HTTP API. Timestamps marshal as
// RFC 3339 and round-trip the full instant.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	Category    string     `json:"category"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Starred     bool       `json:"starred"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Overdue reports whether the task has a due date strictly before now
// and is not yet completed.
func (t Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Completed
}

// SetCompleted flips the completion flag and keeps CompletedAt paired
// with it: set on the false→true transition, cleared on true→false.
func (t *Task) SetCompleted(completed bool, now time.Time) {
	t.Completed = completed
	if completed {
		if t.CompletedAt == nil {
			at := now
			t.CompletedAt = &at
		}
	} else {
		t.CompletedAt = nil
	}
}

// Patch describes a partial update to a task's mutable fields.
// Nil pointers mean "leave unchanged".
type Patch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *Priority
	Category    *string
	DueDate     *time.Time
	Starred     *bool
}

// Apply merges a patch into the task. CompletedAt is kept paired with
// the completed flag; now is used when the flag transitions to true.
func Apply(t *Task, p Patch, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Starred != nil {
		t.Starred = *p.Starred
	}
	if p.Completed != nil {
		t.SetCompleted(*p.Completed, now)
	}
}

// User identifies the authenticated account, for display only.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NormalizeTitle trims surrounding whitespace from a candidate title.
// An empty result means the title is invalid.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}
