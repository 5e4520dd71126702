package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	providers := NewLLMProviderRegistry(map[string]*LLMProviderConfig{
		"anthropic-default": {
			Type:      LLMProviderTypeAnthropic,
			APIKeyEnv: "ANTHROPIC_API_KEY",
			Model:     "claude-sonnet-4-5",
		},
	})
	return &Config{
		Defaults: &Defaults{
			LLMProvider: "anthropic-default",
			Memory:      DefaultMemoryConfig(),
		},
		Retention:    DefaultRetentionConfig(),
		LLMProviders: providers,
	}
}

func TestValidateAll_Valid(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, NewValidator(cfg).ValidateAll())
}

func TestValidateAll_NoProviders(t *testing.T) {
	cfg := validConfig()
	cfg.LLMProviders = NewLLMProviderRegistry(nil)

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)

	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.NotEmpty(t, verrs.Errors)
}

func TestValidateAll_UnknownDefaultProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Defaults.LLMProvider = "does-not-exist"

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)

	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	found := false
	for _, e := range verrs.Errors {
		if e.Field == "llm_provider" && errors.Is(e.Err, ErrInvalidValue) {
			found = true
		}
	}
	assert.True(t, found, "expected an invalid-value error on defaults.llm_provider")
}

func TestValidateAll_AccumulatesMultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Defaults.Memory.IdentifierMaxWords = 0
	cfg.Defaults.Memory.PerPersonaCap = 0

	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)

	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.GreaterOrEqual(t, len(verrs.Errors), 2)
}
