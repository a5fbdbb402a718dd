package personalize

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrProfileNotFound = errors.New("profile not found")

// Registry hands out one Session per profile ID, loading it from the store on
// first use.
type Registry struct {
	store Store
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(store Store, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		store:    store,
		now:      now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a fresh profile with a random ID and writes its defaults.
func (r *Registry) Create(ctx context.Context) *Session {
	session := NewSession(uuid.NewString(), r.store, r.now)

	session.mu.Lock()
	session.persist(ctx)
	session.mu.Unlock()

	r.mu.Lock()
	r.sessions[session.id] = session
	r.mu.Unlock()

	return session
}

func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrProfileNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[id]; ok {
		return session, nil
	}

	session, found, err := LoadSession(ctx, id, r.store, r.now)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %w", id, err)
	}
	if !found {
		return nil, ErrProfileNotFound
	}

	r.sessions[id] = session
	return session, nil
}

// Delete resets the profile's stored state and forgets the session.
func (r *Registry) Delete(ctx context.Context, id string) error {
	session, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	session.Reset(ctx)

	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()

	return nil
}
