// Package persona owns the fixed persona roster: the PersonaConfiguration
// registry, built-in seed defaults, and tolerant name resolution for
// delegation targets named in model output.
package persona

import (
	"fmt"
	"sync"

	"github.com/coreagentic/swarm/pkg/domain"
)

// ErrNotFound indicates a persona was not found in the registry.
var ErrNotFound = fmt.Errorf("persona not found")

// Registry stores PersonaConfiguration in memory with thread-safe access,
// grounded on the teacher's AgentRegistry: defensive copy in, defensive copy
// out, read-only to the Orchestrator/PersonaEngine (spec.md §3).
type Registry struct {
	mu       sync.RWMutex
	personas map[domain.PersonaName]*domain.PersonaConfiguration
}

// NewRegistry creates a Registry from a resolved configuration set.
func NewRegistry(personas map[domain.PersonaName]*domain.PersonaConfiguration) *Registry {
	copied := make(map[domain.PersonaName]*domain.PersonaConfiguration, len(personas))
	for k, v := range personas {
		copied[k] = v
	}
	return &Registry{personas: copied}
}

// NewRegistryWithBuiltins creates a Registry pre-seeded with the ten default
// persona configurations (spec.md §3 "seeded at initialization with ten
// defaults").
func NewRegistryWithBuiltins() *Registry {
	return NewRegistry(Builtins())
}

// Get retrieves a persona's configuration by name.
func (r *Registry) Get(name domain.PersonaName) (*domain.PersonaConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.personas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return cfg, nil
}

// GetAll returns a defensive copy of every registered persona configuration.
func (r *Registry) GetAll() map[domain.PersonaName]*domain.PersonaConfiguration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[domain.PersonaName]*domain.PersonaConfiguration, len(r.personas))
	for k, v := range r.personas {
		result[k] = v
	}
	return result
}

// Set installs or replaces a persona's configuration (the administrative
// mutation path named in spec.md §3; the Orchestrator/PersonaEngine never
// call this).
func (r *Registry) Set(cfg *domain.PersonaConfiguration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfgCopy := *cfg
	r.personas[cfg.Persona] = &cfgCopy
}

// Len returns the number of registered personas.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.personas)
}
