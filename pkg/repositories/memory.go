package repositories

import (
	"strings"
	"sync"

	"github.com/coreagentic/swarm/pkg/domain"
)

// MemoryRepository is a thread-safe, in-memory store of domain.Memory. It
// satisfies pkg/memory.Repository (ByKey/ListByPersona/Upsert/Delete) and
// additionally exposes the substring-search and identifier-exact-match
// queries named in spec.md §4.6, for callers that want repository-level
// access without going through the MemoryStore service layer.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]*domain.Memory
}

// NewMemoryRepository builds an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]*domain.Memory)}
}

// ByKey returns the row for (sessionID, persona, identifier), if any.
func (r *MemoryRepository) ByKey(sessionID string, persona domain.PersonaName, identifier string) (*domain.Memory, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.rows {
		if m.SessionID == sessionID && m.Persona == persona && m.Identifier == identifier {
			cp := *m
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

// ListByPersona returns every row for (sessionID, persona), unordered.
func (r *MemoryRepository) ListByPersona(sessionID string, persona domain.PersonaName) ([]*domain.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Memory, 0)
	for _, m := range r.rows {
		if m.SessionID == sessionID && m.Persona == persona {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Search performs a case-insensitive substring match over identifier and
// content for (sessionID, persona), with no ranking or capping applied —
// pkg/memory.Store.Search owns ranking/capping/access-bumping.
func (r *MemoryRepository) Search(sessionID string, persona domain.PersonaName, query string) ([]*domain.Memory, error) {
	rows, err := r.ListByPersona(sessionID, persona)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := make([]*domain.Memory, 0, len(rows))
	for _, m := range rows {
		if strings.Contains(strings.ToLower(m.Identifier), q) || strings.Contains(strings.ToLower(m.Content), q) {
			out = append(out, m)
		}
	}
	return out, nil
}

// Upsert inserts or replaces a row, keyed by ID.
func (r *MemoryRepository) Upsert(m *domain.Memory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.rows[m.ID] = &cp
	return nil
}

// Delete removes a row by ID. Deleting an absent ID is not an error.
func (r *MemoryRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

// DeleteBySession removes every row for sessionID, used by retention
// cleanup.
func (r *MemoryRepository) DeleteBySession(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.rows {
		if m.SessionID == sessionID {
			delete(r.rows, id)
		}
	}
	return nil
}
