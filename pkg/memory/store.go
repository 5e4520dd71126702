// Package memory implements MemoryStore (spec.md §4.2): the per-session,
// per-persona bounded associative memory, as a service layer over a
// Repository. Cap enforcement, LRU-by-createdAt eviction, access-count
// bumping, and word-count validation all live here; Repository is pure
// CRUD.
package memory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coreagentic/swarm/pkg/config"
	"github.com/coreagentic/swarm/pkg/domain"
)

// ErrWordCountExceeded indicates an identifier or content string exceeded
// its configured word-count cap.
var ErrWordCountExceeded = errors.New("word count exceeds configured cap")

// searchResultCap bounds Search's returned rows regardless of match count
// (spec.md §4.2).
const searchResultCap = 10

// Repository is the persistence contract MemoryStore is a service layer
// over. pkg/repositories provides the in-memory reference implementation.
type Repository interface {
	// ByKey returns the row for (sessionID, persona, identifier), if any.
	ByKey(sessionID string, persona domain.PersonaName, identifier string) (*domain.Memory, bool, error)
	// ListByPersona returns every row for (sessionID, persona), in no
	// particular order; MemoryStore does its own sorting/bounding.
	ListByPersona(sessionID string, persona domain.PersonaName) ([]*domain.Memory, error)
	// Upsert inserts or replaces a row, keyed by ID.
	Upsert(m *domain.Memory) error
	// Delete removes a row by ID. Deleting an absent ID is not an error.
	Delete(id string) error
}

// Store is the MemoryStore service.
type Store struct {
	repo Repository
	cfg  *config.MemoryConfig
}

// NewStore builds a Store over repo. A nil cfg falls back to
// config.DefaultMemoryConfig.
func NewStore(repo Repository, cfg *config.MemoryConfig) *Store {
	if cfg == nil {
		cfg = config.DefaultMemoryConfig()
	}
	return &Store{repo: repo, cfg: cfg}
}

func (s *Store) cap() int {
	if s.cfg.PerPersonaCap <= 0 {
		return config.DefaultMemoryConfig().PerPersonaCap
	}
	return s.cfg.PerPersonaCap
}

// Store inserts or overwrites a memory row for (sessionID, persona,
// identifier). On overwrite, content is replaced and accessCount/
// lastAccessedAt are bumped as on a read. On insert, if the
// (sessionID, persona) row count is already at cap, the oldest row by
// createdAt is evicted first.
func (s *Store) Store(sessionID string, persona domain.PersonaName, identifier, content string) (*domain.Memory, error) {
	if wc := wordCount(identifier); wc > s.cfg.IdentifierMaxWords {
		return nil, config.NewValidationError("memory", identifier, "identifier",
			fmt.Errorf("%w: %d words exceeds cap of %d", ErrWordCountExceeded, wc, s.cfg.IdentifierMaxWords))
	}
	if wc := wordCount(content); wc > s.cfg.ContentMaxWords {
		return nil, config.NewValidationError("memory", identifier, "content",
			fmt.Errorf("%w: %d words exceeds cap of %d", ErrWordCountExceeded, wc, s.cfg.ContentMaxWords))
	}

	now := time.Now().UTC()

	existing, ok, err := s.repo.ByKey(sessionID, persona, identifier)
	if err != nil {
		return nil, err
	}
	if ok {
		existing.Content = content
		existing.AccessCount++
		existing.LastAccessedAt = &now
		if err := s.repo.Upsert(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	rows, err := s.repo.ListByPersona(sessionID, persona)
	if err != nil {
		return nil, err
	}
	if len(rows) >= s.cap() {
		if oldest := oldestByCreatedAt(rows); oldest != nil {
			if err := s.repo.Delete(oldest.ID); err != nil {
				return nil, err
			}
		}
	}

	m := &domain.Memory{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Persona:    persona,
		Identifier: identifier,
		Content:    content,
		CreatedAt:  now,
	}
	if err := s.repo.Upsert(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Search performs a case-insensitive substring match over identifier and
// content, ranked by accessCount desc then createdAt desc, capped at 10
// rows. Every returned row has its accessCount bumped and lastAccessedAt
// set.
func (s *Store) Search(sessionID string, persona domain.PersonaName, query string) ([]*domain.Memory, error) {
	rows, err := s.repo.ListByPersona(sessionID, persona)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	matched := make([]*domain.Memory, 0, len(rows))
	for _, m := range rows {
		if strings.Contains(strings.ToLower(m.Identifier), q) || strings.Contains(strings.ToLower(m.Content), q) {
			matched = append(matched, m)
		}
	}

	sortByAccessThenRecency(matched)
	if len(matched) > searchResultCap {
		matched = matched[:searchResultCap]
	}
	return s.bumpAccess(matched)
}

// Recent returns the n most recently created rows (bounded by the
// configured per-persona cap), bumping access on each.
func (s *Store) Recent(sessionID string, persona domain.PersonaName, n int) ([]*domain.Memory, error) {
	rows, err := s.repo.ListByPersona(sessionID, persona)
	if err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })

	limit := n
	if c := s.cap(); c < limit {
		limit = c
	}
	if limit > len(rows) {
		limit = len(rows)
	}
	if limit < 0 {
		limit = 0
	}
	return s.bumpAccess(rows[:limit])
}

// ByIdentifier returns the row with an exact identifier match, bumping
// access on a hit.
func (s *Store) ByIdentifier(sessionID string, persona domain.PersonaName, identifier string) (*domain.Memory, error) {
	m, ok, err := s.repo.ByKey(sessionID, persona, identifier)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	bumped, err := s.bumpAccess([]*domain.Memory{m})
	if err != nil {
		return nil, err
	}
	return bumped[0], nil
}

// Delete removes a row by its row ID.
func (s *Store) Delete(id string) error {
	return s.repo.Delete(id)
}

func (s *Store) bumpAccess(rows []*domain.Memory) ([]*domain.Memory, error) {
	now := time.Now().UTC()
	for _, m := range rows {
		m.AccessCount++
		m.LastAccessedAt = &now
		if err := s.repo.Upsert(m); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func sortByAccessThenRecency(rows []*domain.Memory) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AccessCount != rows[j].AccessCount {
			return rows[i].AccessCount > rows[j].AccessCount
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
}

func oldestByCreatedAt(rows []*domain.Memory) *domain.Memory {
	if len(rows) == 0 {
		return nil
	}
	oldest := rows[0]
	for _, m := range rows[1:] {
		if m.CreatedAt.Before(oldest.CreatedAt) {
			oldest = m
		}
	}
	return oldest
}

// wordCount splits on whitespace; an empty string counts as zero words
// (spec.md §4.2).
func wordCount(s string) int {
	return len(strings.Fields(s))
}
