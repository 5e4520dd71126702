// Command swarmd is the composition root for the swarm orchestrator: it
// loads configuration, wires the persona engine, orchestrator, retention
// service, and startup recovery task together, then blocks until signaled
// to shut down. Grounded on the teacher's cmd/tarsy/main.go shape (flag
// parsing, godotenv load, config.Initialize, service construction,
// signal-driven shutdown) with the HTTP/gin surface dropped: this binary
// drives sessions through the in-process Orchestrator API rather than
// serving requests.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/coreagentic/swarm/pkg/cleanup"
	"github.com/coreagentic/swarm/pkg/config"
	"github.com/coreagentic/swarm/pkg/engine"
	"github.com/coreagentic/swarm/pkg/events"
	"github.com/coreagentic/swarm/pkg/llmprovider"
	"github.com/coreagentic/swarm/pkg/memory"
	"github.com/coreagentic/swarm/pkg/orchestrator"
	"github.com/coreagentic/swarm/pkg/persona"
	"github.com/coreagentic/swarm/pkg/recovery"
	"github.com/coreagentic/swarm/pkg/repositories"
	"github.com/coreagentic/swarm/pkg/workspace"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("SWARM_CONFIG_DIR", "./config"),
		"Path to configuration directory")
	problem := flag.String("problem", "",
		"If set, starts a single session with this problem statement and exits")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("warning: could not load %s: %v", envPath, err)
		log.Printf("continuing with existing environment variables")
	} else {
		log.Printf("loaded environment from %s", envPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("failed to initialize configuration: %v", err)
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		log.Fatalf("failed to build LLM provider: %v", err)
	}

	ws, err := workspace.NewFileSink(cfg.Workspace().Root)
	if err != nil {
		log.Fatalf("failed to initialize workspace: %v", err)
	}

	personas := persona.NewRegistryWithBuiltins()
	if err := applyDefaultModel(personas, cfg); err != nil {
		log.Fatalf("failed to resolve default persona model: %v", err)
	}

	sessions := repositories.NewSessionRepository()
	messages := repositories.NewMessageRepository()
	memRepo := repositories.NewMemoryRepository()
	memStore := memory.NewStore(memRepo, cfg.Memory())
	sink := events.NewInMemorySink()

	eng := engine.New(personas, provider, memStore, ws, messages)
	orch := orchestrator.New(sessions, messages, memStore, eng, sink)

	recovery.NewTask(sessions).Run()

	retention := cleanup.NewService(cfg.Retention, sessions, messages, memRepo)
	retention.Start(ctx)
	defer retention.Stop()

	slog.Info("swarm orchestrator started",
		"config_dir", *configDir,
		"llm_providers", cfg.Stats().LLMProviders,
		"workspace_root", cfg.Workspace().Root)

	if *problem != "" {
		sess, err := orch.StartSession(ctx, *problem)
		if err != nil {
			log.Fatalf("session failed: %v", err)
		}
		slog.Info("session finished", "session_id", sess.ID, "status", sess.Status)
		return
	}

	<-ctx.Done()
	slog.Info("shutdown signal received, exiting")
}

// applyDefaultModel fills in ModelName for every persona configuration that
// doesn't override it, from the default LLM provider's configured Model
// (pkg/config/types.go: "Model is the default model identifier used when a
// persona does not override it"). Without this, MultiProvider.resolve has
// nothing to prefix-match against and every Generate call fails.
func applyDefaultModel(personas *persona.Registry, cfg *config.Config) error {
	defaultProvider, err := cfg.LLMProviders.Get(cfg.Defaults.LLMProvider)
	if err != nil {
		return err
	}
	for _, p := range personas.GetAll() {
		if p.ModelName != "" {
			continue
		}
		updated := *p
		updated.ModelName = defaultProvider.Model
		personas.Set(&updated)
	}
	return nil
}

// buildProvider assembles a MultiProvider dispatching on model-name prefix,
// one underlying adapter per configured LLM provider type.
func buildProvider(cfg *config.Config) (llmprovider.Provider, error) {
	multi := llmprovider.NewMultiProvider()
	for name, p := range cfg.LLMProviders.GetAll() {
		apiKey := os.Getenv(p.APIKeyEnv)
		httpClient := &http.Client{Timeout: p.Timeout}
		var adapter llmprovider.Provider
		switch p.Type {
		case config.LLMProviderTypeAnthropic:
			adapter = llmprovider.NewAnthropicProvider(apiKey, httpClient, p.BaseURL)
			multi.Register("claude-", adapter)
		case config.LLMProviderTypeOpenAI:
			adapter = llmprovider.NewOpenAIProvider(apiKey, httpClient, p.BaseURL)
			multi.Register("gpt-", adapter)
			multi.Register("o1-", adapter)
			multi.Register("o3-", adapter)
		default:
			slog.Warn("unrecognized provider type, skipping", "provider", name, "type", p.Type)
		}
	}
	return multi, nil
}
