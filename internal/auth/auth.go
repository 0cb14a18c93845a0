// Package auth caches the session credential used for remote requests.
// Token acquisition happens outside taskdeck; this package only stores,
// serves, and clears what the user brings.
package auth

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mfraser/taskdeck/internal/engine"
	"github.com/mfraser/taskdeck/internal/localstore"
	"github.com/mfraser/taskdeck/internal/model"
)

// Session holds the bearer credential and the user it belongs to.
type Session struct {
	Token     string     `json:"token"`
	User      model.User `json:"user"`
	CreatedAt int64      `json:"created_at"`
}

// KV is the slice of the local store the manager needs.
type KV interface {
	Put(key, value string) error
	Get(key string) (string, bool, error)
	Delete(key string) error
}

// Manager loads and persists the session through the local store.
type Manager struct {
	store   KV
	mu      sync.RWMutex
	session *Session
}

// NewManager creates a manager and loads any cached session.
func NewManager(store KV) (*Manager, error) {
	m := &Manager{store: store}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

// IsAuthenticated reports whether a session credential is cached.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session != nil && m.session.Token != ""
}

// Session returns the cached session, or nil.
func (m *Manager) Session() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Token returns the bearer credential for remote requests, satisfying
// the remote client's token source. A missing credential surfaces as
// engine.ErrAuthRequired.
func (m *Manager) Token() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil || m.session.Token == "" {
		return "", engine.ErrAuthRequired
	}
	return m.session.Token, nil
}

// Save caches a new session credential.
func (m *Manager) Save(token string, user model.User) error {
	session := &Session{
		Token:     token,
		User:      user,
		CreatedAt: time.Now().Unix(),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.Put(localstore.SessionKey, string(data)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	m.mu.Lock()
	m.session = session
	m.mu.Unlock()
	return nil
}

// Clear removes the cached session.
func (m *Manager) Clear() error {
	if err := m.store.Delete(localstore.SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
	return nil
}

func (m *Manager) load() error {
	value, ok, err := m.store.Get(localstore.SessionKey)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil
	}

	var session Session
	if err := json.Unmarshal([]byte(value), &session); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}

	m.mu.Lock()
	m.session = &session
	m.mu.Unlock()
	return nil
}
