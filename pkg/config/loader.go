package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// swarmYAMLConfig is the shape of swarm.yaml: system-wide defaults plus
// retention overrides.
type swarmYAMLConfig struct {
	Defaults  *Defaults        `yaml:"defaults"`
	Retention *RetentionConfig `yaml:"retention"`
}

// llmProvidersYAMLConfig is the shape of llm-providers.yaml.
type llmProvidersYAMLConfig struct {
	LLMProviders map[string]LLMProviderConfig `yaml:"llm_providers"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
//
// Steps:
//  1. Load swarm.yaml and llm-providers.yaml from configDir.
//  2. Expand environment variables.
//  3. Merge built-in + user-defined LLM providers.
//  4. Apply defaults for anything YAML left unset.
//  5. Validate all configuration.
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Info("configuration initialized", "llm_providers", cfg.Stats().LLMProviders)
	return cfg, nil
}

func load(_ context.Context, configDir string) (*Config, error) {
	loader := &fileLoader{configDir: configDir}

	swarmCfg, err := loader.loadSwarmYAML()
	if err != nil {
		return nil, NewLoadError("swarm.yaml", err)
	}

	userProviders, err := loader.loadLLMProvidersYAML()
	if err != nil {
		return nil, NewLoadError("llm-providers.yaml", err)
	}

	providers := mergeLLMProviders(builtinLLMProviders(), userProviders)
	registry := NewLLMProviderRegistry(providers)

	defaults := swarmCfg.Defaults
	if defaults == nil {
		defaults = &Defaults{}
	}
	if defaults.Memory == nil {
		defaults.Memory = DefaultMemoryConfig()
	}
	if defaults.LLMProvider == "" {
		defaults.LLMProvider = "anthropic-default"
	}

	retentionCfg := DefaultRetentionConfig()
	if swarmCfg.Retention != nil {
		if err := mergo.Merge(retentionCfg, swarmCfg.Retention, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge retention config: %w", err)
		}
	}

	return &Config{
		configDir:    configDir,
		Defaults:     defaults,
		Retention:    retentionCfg,
		LLMProviders: registry,
	}, nil
}

func validateConfig(cfg *Config) error {
	return NewValidator(cfg).ValidateAll()
}

type fileLoader struct {
	configDir string
}

func (l *fileLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return nil
}

func (l *fileLoader) loadSwarmYAML() (*swarmYAMLConfig, error) {
	var cfg swarmYAMLConfig
	if err := l.loadYAML("swarm.yaml", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (l *fileLoader) loadLLMProvidersYAML() (map[string]LLMProviderConfig, error) {
	cfg := llmProvidersYAMLConfig{LLMProviders: make(map[string]LLMProviderConfig)}
	if err := l.loadYAML("llm-providers.yaml", &cfg); err != nil {
		return nil, err
	}
	return cfg.LLMProviders, nil
}
