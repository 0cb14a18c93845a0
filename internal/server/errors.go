package server

import "errors"

// Sentinel errors for backend operations.
var (
	ErrTitleRequired   = errors.New("task title is required")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrTaskNotFound    = errors.New("task not found")
)
