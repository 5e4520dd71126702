package config

import "time"

// builtinLLMProviders returns the built-in provider configurations available
// before any user YAML is merged in. These name the two shipped LlmProvider
// adapters (pkg/llmprovider) so a fresh checkout works with nothing more
// than an API key in the environment.
func builtinLLMProviders() map[string]LLMProviderConfig {
	return map[string]LLMProviderConfig{
		"anthropic-default": {
			Type:      LLMProviderTypeAnthropic,
			APIKeyEnv: "ANTHROPIC_API_KEY",
			Model:     "claude-sonnet-4-5",
			Timeout:   60 * time.Second,
		},
		"openai-default": {
			Type:      LLMProviderTypeOpenAI,
			APIKeyEnv: "OPENAI_API_KEY",
			Model:     "gpt-4.1",
			Timeout:   60 * time.Second,
		},
	}
}
