package repositories

import (
	"fmt"
	"sync"

	"github.com/coreagentic/swarm/pkg/domain"
)

// SessionRepository is a thread-safe, in-memory store of domain.Session,
// grounded on the teacher's session_service.go method shapes (Create/Get/
// Update/List) translated from ent queries to guarded-map lookups.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewSessionRepository builds an empty SessionRepository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]*domain.Session)}
}

// Create inserts a new session. It is an error to Create an ID that
// already exists.
func (r *SessionRepository) Create(s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[s.ID]; exists {
		return fmt.Errorf("session %s: %w", s.ID, ErrAlreadyExists)
	}
	r.sessions[s.ID] = s.Clone()
	return nil
}

// Get returns a defensive copy of the session by ID.
func (r *SessionRepository) Get(id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return s.Clone(), nil
}

// Update replaces the stored session with s (matched by ID).
func (r *SessionRepository) Update(s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return fmt.Errorf("session %s: %w", s.ID, ErrNotFound)
	}
	r.sessions[s.ID] = s.Clone()
	return nil
}

// List returns a defensive copy of every stored session, used by
// RecoveryTask's startup scan and by retention cleanup.
func (r *SessionRepository) List() ([]*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.Clone())
	}
	return out, nil
}

// Delete removes a session by ID. Deleting an absent ID is not an error.
func (r *SessionRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}
