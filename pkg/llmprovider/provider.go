// Package llmprovider implements the LlmProvider contract (spec.md §6): a
// single Generate call translating a model-agnostic request into a concrete
// SDK call, surfacing transport and API failures as a plain result rather
// than an error where feasible, so the caller (pkg/engine) can turn a failed
// call into a Stuck response instead of propagating a panic or an error up
// through the delegation loop.
package llmprovider

import "context"

// ChatMessage is one turn of conversational context passed to Generate.
// Role is "system", "user", or "assistant".
type ChatMessage struct {
	Role    string
	Content string
}

// Request is the model-agnostic shape of a single generation call.
type Request struct {
	Model        string
	SystemPrompt string
	Messages     []ChatMessage
	Temperature  float64
	MaxTokens    int
}

// Result is what Generate always returns, even on failure: callers branch on
// Success rather than a non-nil error, matching spec.md §6's "must surface
// network and server errors as success=false rather than throwing where
// feasible."
type Result struct {
	Success     bool
	Content     string
	Error       string
	Model       string
	TotalTokens int
	DurationMs  int64
}

// Provider is the LlmProvider contract.
type Provider interface {
	Generate(ctx context.Context, req Request) (Result, error)
}
