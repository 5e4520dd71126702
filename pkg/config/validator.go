package config

import "fmt"

// Validator performs ordered, fail-accumulating validation over a loaded
// Config. Grounded on the teacher's pkg/config/validator.go: hand-written,
// not reflection/tag-driven, even though struct tags document intent.
type Validator struct {
	cfg    *Config
	errors *ValidationErrors
}

// NewValidator creates a Validator for cfg.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg, errors: &ValidationErrors{}}
}

// ValidateAll runs every validation pass and returns the accumulated errors,
// or nil if configuration is valid.
func (v *Validator) ValidateAll() error {
	v.validateLLMProviders()
	v.validateMemory()
	v.validateDefaults()
	return v.errors.asError()
}

func (v *Validator) validateLLMProviders() {
	providers := v.cfg.LLMProviders.GetAll()
	if len(providers) == 0 {
		v.errors.add("llm_provider", "*", "", fmt.Errorf("%w: at least one provider must be configured", ErrMissingRequiredField))
		return
	}
	for name, p := range providers {
		if !p.Type.IsValid() {
			v.errors.add("llm_provider", name, "type", fmt.Errorf("%w: %q", ErrInvalidValue, p.Type))
		}
		if p.APIKeyEnv == "" {
			v.errors.add("llm_provider", name, "api_key_env", ErrMissingRequiredField)
		}
		if p.Model == "" {
			v.errors.add("llm_provider", name, "model", ErrMissingRequiredField)
		}
		if p.Timeout < 0 {
			v.errors.add("llm_provider", name, "timeout", fmt.Errorf("%w: must not be negative", ErrInvalidValue))
		}
	}
}

func (v *Validator) validateMemory() {
	m := v.cfg.Memory()
	if m.IdentifierMaxWords <= 0 {
		v.errors.add("memory", "defaults", "identifier_max_words", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if m.ContentMaxWords <= 0 {
		v.errors.add("memory", "defaults", "content_max_words", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if m.PerPersonaCap <= 0 {
		v.errors.add("memory", "defaults", "per_persona_cap", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
}

func (v *Validator) validateDefaults() {
	d := v.cfg.Defaults
	if d.LLMProvider == "" {
		v.errors.add("defaults", "defaults", "llm_provider", ErrMissingRequiredField)
		return
	}
	if _, err := v.cfg.LLMProviders.Get(d.LLMProvider); err != nil {
		v.errors.add("defaults", "defaults", "llm_provider", fmt.Errorf("%w: references unknown provider %q", ErrInvalidValue, d.LLMProvider))
	}
	if d.Workspace != nil && d.Workspace.Root == "" {
		v.errors.add("defaults", "defaults", "workspace.root", ErrMissingRequiredField)
	}
}
