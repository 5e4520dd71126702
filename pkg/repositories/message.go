package repositories

import (
	"fmt"
	"sort"
	"sync"

	"github.com/coreagentic/swarm/pkg/domain"
)

// MessageRepository is a thread-safe, in-memory, append-mostly store of
// domain.Message, scoped per session (spec.md §4.6: "messages by session
// (chronological), messages by id, recent messages by session (limit N)").
type MessageRepository struct {
	mu   sync.RWMutex
	byID map[string]*domain.Message
}

// NewMessageRepository builds an empty MessageRepository.
func NewMessageRepository() *MessageRepository {
	return &MessageRepository{byID: make(map[string]*domain.Message)}
}

// Create appends a new message. It is an error to Create an ID that
// already exists.
func (r *MessageRepository) Create(m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[m.ID]; exists {
		return fmt.Errorf("message %s: %w", m.ID, ErrAlreadyExists)
	}
	r.byID[m.ID] = m.Clone()
	return nil
}

// ByID returns a defensive copy of the message with the given ID.
func (r *MessageRepository) ByID(id string) (*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", id, ErrNotFound)
	}
	return m.Clone(), nil
}

// BySession returns every message for sessionID in chronological order.
func (r *MessageRepository) BySession(sessionID string) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chronological(sessionID, 0), nil
}

// Recent returns the n most recent messages for sessionID, chronologically
// ordered (oldest of the window first), matching PersonaEngine's "last 10
// messages" history window (spec.md §4.3 step 3).
func (r *MessageRepository) Recent(sessionID string, n int) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chronological(sessionID, n), nil
}

// chronological returns sessionID's messages ordered by Timestamp
// ascending, optionally windowed to the last limit entries (limit<=0
// means unbounded). Caller must hold r.mu.
func (r *MessageRepository) chronological(sessionID string, limit int) []*domain.Message {
	var matched []*domain.Message
	for _, m := range r.byID {
		if m.SessionID == sessionID {
			matched = append(matched, m)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Timestamp.Before(matched[j].Timestamp) })

	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}

	out := make([]*domain.Message, len(matched))
	for i, m := range matched {
		out[i] = m.Clone()
	}
	return out
}

// DeleteBySession removes all messages for sessionID, used by retention cleanup.
func (r *MessageRepository) DeleteBySession(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.byID {
		if m.SessionID == sessionID {
			delete(r.byID, id)
		}
	}
	return nil
}
