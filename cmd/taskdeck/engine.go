package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mfraser/taskdeck/internal/auth"
	"github.com/mfraser/taskdeck/internal/engine"
	"github.com/mfraser/taskdeck/internal/localstore"
	"github.com/mfraser/taskdeck/internal/remote"
)

// commandTimeout bounds a single CLI invocation, including any remote
// calls it makes.
const commandTimeout = 30 * time.Second

// session bundles the engine with the resources behind it.
type session struct {
	engine *engine.Engine
	store  *localstore.Store
	auth   *auth.Manager
	remote *remote.Client
}

func (s *session) Close() {
	if s.store != nil {
		s.store.Close()
	}
}

// openSession builds the engine for the configured variant: local
// SQLite persistence by default, remote-backed when --api is set (the
// local store then only caches the session credential).
func openSession() (*session, error) {
	store, err := localstore.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	if apiAddr == "" {
		return &session{engine: engine.NewLocal(store), store: store}, nil
	}

	mgr, err := auth.NewManager(store)
	if err != nil {
		store.Close()
		return nil, err
	}
	client := remote.NewClient(apiAddr, mgr)
	return &session{
		engine: engine.NewRemote(client),
		store:  store,
		auth:   mgr,
		remote: client,
	}, nil
}

// openLoadedSession opens a session and loads the task collection.
func openLoadedSession(ctx context.Context) (*session, error) {
	s, err := openSession()
	if err != nil {
		return nil, err
	}
	if err := s.engine.Load(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// resolveID matches a full task id or a unique prefix against the
// loaded collection.
func resolveID(s *session, arg string) (string, error) {
	var match string
	for _, t := range s.engine.Tasks() {
		if t.ID == arg {
			return t.ID, nil
		}
		if len(arg) >= 4 && len(arg) < len(t.ID) && t.ID[:len(arg)] == arg {
			if match != "" {
				return "", fmt.Errorf("task id prefix %q is ambiguous", arg)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", engine.ErrTaskNotFound, arg)
	}
	return match, nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}
