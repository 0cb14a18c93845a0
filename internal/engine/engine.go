// Package engine holds the authoritative in-memory task collection.
// Mutations commit locally with write-through persistence, or only
// after remote confirmation when a gateway is configured.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mfraser/taskdeck/internal/model"
)

// Gateway abstracts the backend's task CRUD API. Implementations return
// ErrAuthRequired (possibly wrapped) when the credential is missing or
// rejected.
type Gateway interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, t model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, id string, p model.Patch) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Snapshotter persists the full task collection durably.
type Snapshotter interface {
	SaveTasks(tasks []model.Task) error
	LoadTasks() ([]model.Task, error)
}

// Engine is the sole mutator of the task collection. The collection is
// ordered newest-first. Exactly one of store or gateway is set: with a
// store the engine persists write-through locally; with a gateway every
// mutation is confirmed remotely before it commits.
type Engine struct {
	mu       sync.Mutex
	tasks    []model.Task
	inFlight map[string]bool

	store   Snapshotter
	gateway Gateway

	now   func() time.Time
	newID func() string
}

// NewLocal creates an engine persisting through the given store.
func NewLocal(store Snapshotter) *Engine {
	return newEngine(store, nil)
}

// NewRemote creates an engine mirroring the given gateway.
func NewRemote(gw Gateway) *Engine {
	return newEngine(nil, gw)
}

func newEngine(store Snapshotter, gw Gateway) *Engine {
	return &Engine{
		inFlight: make(map[string]bool),
		store:    store,
		gateway:  gw,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// CreateRequest carries the caller-supplied fields for a new task.
// Zero values fall back to the documented defaults.
type CreateRequest struct {
	Title       string
	Description string
	Priority    model.Priority
	Category    string
	DueDate     *time.Time
}

// Create validates the request, builds a task with defaults applied,
// and prepends it to the collection. With a gateway configured the
// create is sent remotely first; the placeholder id is replaced by the
// server-assigned record. A failed remote create leaves the collection
// untouched.
func (e *Engine) Create(ctx context.Context, req CreateRequest) (model.Task, error) {
	title := model.NormalizeTitle(req.Title)
	if title == "" {
		return model.Task{}, ErrTitleRequired
	}
	if req.Priority == "" {
		req.Priority = model.PriorityMedium
	}
	if !req.Priority.Valid() {
		return model.Task{}, fmt.Errorf("%w: %q", ErrInvalidPriority, req.Priority)
	}
	if req.Category == "" {
		req.Category = model.DefaultCategory
	}

	task := model.Task{
		ID:          e.newID(),
		Title:       title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
		DueDate:     req.DueDate,
		CreatedAt:   e.now().UTC(),
	}

	if e.gateway != nil {
		created, err := e.gateway.CreateTask(ctx, task)
		if err != nil {
			return model.Task{}, remoteErr("create", err)
		}
		task = created
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := make([]model.Task, 0, len(e.tasks)+1)
	next = append(next, task)
	next = append(next, e.tasks...)
	if err := e.persist(next); err != nil {
		return model.Task{}, err
	}
	e.tasks = next
	return task, nil
}

// Update applies a partial patch to the task with the given id. With a
// gateway configured the patch is confirmed remotely before it commits;
// a failure leaves the prior state unchanged.
func (e *Engine) Update(ctx context.Context, id string, p model.Patch) (model.Task, error) {
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

	e.mu.Lock()
	idx := e.indexOf(id)
	if idx < 0 {
		e.mu.Unlock()
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	if e.gateway == nil {
		defer e.mu.Unlock()
		next := e.cloneTasks()
		model.Apply(&next[idx], p, e.now().UTC())
		if err := e.persist(next); err != nil {
			return model.Task{}, err
		}
		e.tasks = next
		return next[idx], nil
	}

	if e.inFlight[id] {
		e.mu.Unlock()
		return model.Task{}, fmt.Errorf("%w: %s", ErrMutationPending, id)
	}
	e.inFlight[id] = true
	e.mu.Unlock()
	defer e.clearInFlight(id)

	updated, err := e.gateway.UpdateTask(ctx, id, p)
	if err != nil {
		return model.Task{}, remoteErr("update", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if idx := e.indexOf(id); idx >= 0 {
		e.tasks[idx] = updated
	}
	return updated, nil
}

// Rename changes the task title, re-validating non-empty after trim.
func (e *Engine) Rename(ctx context.Context, id, title string) (model.Task, error) {
	return e.Update(ctx, id, model.Patch{Title: &title})
}

// ToggleComplete flips the completion flag, setting or clearing
// CompletedAt per the model invariant.
func (e *Engine) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	task, err := e.Get(id)
	if err != nil {
		return model.Task{}, err
	}
	completed := !task.Completed
	return e.Update(ctx, id, model.Patch{Completed: &completed})
}

// ToggleStar flips the starred flag.
func (e *Engine) ToggleStar(ctx context.Context, id string) (model.Task, error) {
	task, err := e.Get(id)
	if err != nil {
		return model.Task{}, err
	}
	starred := !task.Starred
	return e.Update(ctx, id, model.Patch{Starred: &starred})
}

// SetPriority sets an explicit priority level.
func (e *Engine) SetPriority(ctx context.Context, id string, p model.Priority) (model.Task, error) {
	return e.Update(ctx, id, model.Patch{Priority: &p})
}

// CyclePriority advances the priority one step in the
// low → medium → high → low cycle.
func (e *Engine) CyclePriority(ctx context.Context, id string) (model.Task, error) {
	task, err := e.Get(id)
	if err != nil {
		return model.Task{}, err
	}
	next := task.Priority.Next()
	return e.Update(ctx, id, model.Patch{Priority: &next})
}

// Delete removes the task with the given id. With a gateway configured
// the removal is confirmed remotely first; on failure the task stays in
// the visible list so it never desynchronizes from the server's view.
func (e *Engine) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	idx := e.indexOf(id)
	if idx < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	if e.gateway == nil {
		defer e.mu.Unlock()
		next := make([]model.Task, 0, len(e.tasks)-1)
		next = append(next, e.tasks[:idx]...)
		next = append(next, e.tasks[idx+1:]...)
		if err := e.persist(next); err != nil {
			return err
		}
		e.tasks = next
		return nil
	}

	if e.inFlight[id] {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrMutationPending, id)
	}
	e.inFlight[id] = true
	e.mu.Unlock()
	defer e.clearInFlight(id)

	if err := e.gateway.DeleteTask(ctx, id); err != nil {
		return remoteErr("delete", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if idx := e.indexOf(id); idx >= 0 {
		e.tasks = append(e.tasks[:idx], e.tasks[idx+1:]...)
	}
	return nil
}

// Load replaces the collection with the gateway's full listing or, for
// the local variant, the persisted snapshot.
func (e *Engine) Load(ctx context.Context) error {
	var tasks []model.Task
	var err error

	if e.gateway != nil {
		tasks, err = e.gateway.ListTasks(ctx)
		if err != nil {
			return remoteErr("load", err)
		}
	} else {
		tasks, err = e.store.LoadTasks()
		if err != nil {
			return fmt.Errorf("load tasks: %w", err)
		}
	}

	e.mu.Lock()
	e.tasks = tasks
	e.mu.Unlock()
	return nil
}

// Tasks returns a snapshot copy of the collection, newest-first.
func (e *Engine) Tasks() []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cloneTasks()
}

// Get returns the task with the given id.
func (e *Engine) Get(id string) (model.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if idx := e.indexOf(id); idx >= 0 {
		return e.tasks[idx], nil
	}
	return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

// indexOf must be called with the mutex held.
func (e *Engine) indexOf(id string) int {
	for i := range e.tasks {
		if e.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// cloneTasks must be called with the mutex held.
func (e *Engine) cloneTasks() []model.Task {
	out := make([]model.Task, len(e.tasks))
	copy(out, e.tasks)
	return out
}

// persist writes the candidate collection through to the local store.
// Called with the mutex held, before the in-memory commit, so a failed
// write leaves the collection unchanged.
func (e *Engine) persist(tasks []model.Task) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.SaveTasks(tasks); err != nil {
		return fmt.Errorf("persist tasks: %w", err)
	}
	return nil
}

func (e *Engine) clearInFlight(id string) {
	e.mu.Lock()
	delete(e.inFlight, id)
	e.mu.Unlock()
}
