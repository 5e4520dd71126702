package config

import "time"

// LLMProviderType identifies which SDK-backed LlmProvider adapter serves a
// given provider configuration.
type LLMProviderType string

const (
	LLMProviderTypeAnthropic LLMProviderType = "anthropic"
	LLMProviderTypeOpenAI    LLMProviderType = "openai"
)

// IsValid reports whether t is a supported provider type.
func (t LLMProviderType) IsValid() bool {
	switch t {
	case LLMProviderTypeAnthropic, LLMProviderTypeOpenAI:
		return true
	default:
		return false
	}
}

// LLMProviderConfig configures one named LLM backend.
type LLMProviderConfig struct {
	Type LLMProviderType `yaml:"type" validate:"required"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env" validate:"required"`

	// Model is the default model identifier used when a persona does not
	// override it (e.g. "claude-sonnet-4-5", "gpt-4.1").
	Model string `yaml:"model" validate:"required"`

	// BaseURL overrides the SDK's default API base, for gateways/proxies.
	BaseURL string `yaml:"base_url,omitempty"`

	// Timeout bounds a single Generate call.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// MemoryConfig bounds the per-(session,persona) associative memory store.
type MemoryConfig struct {
	// IdentifierMaxWords is the word-count cap for a memory identifier (spec default 10).
	IdentifierMaxWords int `yaml:"identifier_max_words" validate:"omitempty,min=1"`

	// ContentMaxWords is the word-count cap for memory content (spec default 2000).
	ContentMaxWords int `yaml:"content_max_words" validate:"omitempty,min=1"`

	// PerPersonaCap is the maximum number of memory rows kept per (session,persona) (spec default 10).
	PerPersonaCap int `yaml:"per_persona_cap" validate:"omitempty,min=1"`
}

// WorkspaceConfig configures the filesystem-backed WorkspaceSink.
type WorkspaceConfig struct {
	// Root is the directory FILE directives are written beneath. Required.
	Root string `yaml:"root" validate:"required"`
}
