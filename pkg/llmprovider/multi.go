package llmprovider

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MultiProvider dispatches Generate to an underlying Provider selected by a
// request's model-name prefix, grounded on pkg/config.LLMProviderRegistry's
// thread-safe map pattern.
type MultiProvider struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewMultiProvider builds an empty registry. Register providers with Register.
func NewMultiProvider() *MultiProvider {
	return &MultiProvider{providers: make(map[string]Provider)}
}

// Register associates a provider with a model-name prefix, e.g. "claude-" or
// "gpt-". Registering the same prefix twice replaces the prior provider.
func (m *MultiProvider) Register(modelPrefix string, p Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[modelPrefix] = p
}

// Generate selects a registered provider whose prefix matches req.Model and
// delegates to it. An unmatched model yields a Success:false Result rather
// than an error, consistent with the LlmProvider contract's "surface errors
// as success=false" requirement.
func (m *MultiProvider) Generate(ctx context.Context, req Request) (Result, error) {
	p, ok := m.resolve(req.Model)
	if !ok {
		return Result{Success: false, Error: fmt.Sprintf("no provider registered for model %q", req.Model), Model: req.Model}, nil
	}
	return p.Generate(ctx, req)
}

func (m *MultiProvider) resolve(model string) (Provider, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for prefix, p := range m.providers {
		if strings.HasPrefix(model, prefix) {
			return p, true
		}
	}
	return nil, false
}
