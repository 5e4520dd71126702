// Package engine implements the PersonaEngine contract (spec.md §4.3): for
// one incoming message, assemble a prompt, invoke the LlmProvider, parse the
// response, and execute its STORE/FILE side effects before returning.
// Grounded on the teacher's BaseAgent/SingleShotController shape
// (pkg/agent/base_agent.go, pkg/agent/controller/single_shot.go):
// build-messages → single LLM call → parse/record result → return, with
// every failure mode turned into a typed result rather than a thrown error.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coreagentic/swarm/pkg/domain"
	"github.com/coreagentic/swarm/pkg/llmprovider"
	"github.com/coreagentic/swarm/pkg/memory"
	"github.com/coreagentic/swarm/pkg/parser"
	"github.com/coreagentic/swarm/pkg/persona"
	"github.com/coreagentic/swarm/pkg/workspace"
)

// maxHistoryMessages bounds the chronological window of prior session
// messages folded into the prompt (spec.md §4.3 step 3).
const maxHistoryMessages = 10

// MessageHistoryReader is the slice of the message repository the engine
// needs: the last N messages of a session, oldest first.
type MessageHistoryReader interface {
	Recent(sessionID string, n int) ([]*domain.Message, error)
}

// Engine is the reference PersonaEngine.
type Engine struct {
	personas  *persona.Registry
	provider  llmprovider.Provider
	memory    *memory.Store
	workspace workspace.Sink
	messages  MessageHistoryReader
}

// New builds an Engine from its collaborators.
func New(personas *persona.Registry, provider llmprovider.Provider, mem *memory.Store, ws workspace.Sink, messages MessageHistoryReader) *Engine {
	return &Engine{personas: personas, provider: provider, memory: mem, workspace: ws, messages: messages}
}

// Process runs the six-step algorithm of spec.md §4.3 and returns the
// resulting PersonaResponse. It never returns an error: every failure mode
// (missing/disabled configuration, transport failure, empty response) is
// absorbed into a Stuck or Decline PersonaResponse so the Orchestrator's
// loop has a uniform result to route on.
func (e *Engine) Process(ctx context.Context, p domain.PersonaName, incoming *domain.Message, session *domain.Session, memories []*domain.Memory) *parser.PersonaResponse {
	cfg, err := e.personas.Get(p)
	if err != nil {
		return stuckResponse("configuration error")
	}
	if !cfg.Enabled {
		return declineResponse("unavailable")
	}

	systemPrompt := e.buildSystemPrompt(cfg, session, memories)
	history, err := e.buildMessageHistory(session.ID, incoming)
	if err != nil {
		return stuckResponseWithReasoning("error processing", err.Error())
	}

	result, err := e.provider.Generate(ctx, llmprovider.Request{
		Model:        cfg.ModelName,
		SystemPrompt: systemPrompt,
		Messages:     history,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
	})
	if err != nil {
		return stuckResponseWithReasoning("error processing", err.Error())
	}
	if !result.Success {
		return stuckResponseWithReasoning("error processing", result.Error)
	}
	if strings.TrimSpace(result.Content) == "" {
		return stuckResponse("empty response")
	}

	resp := parser.Parse(result.Content)
	e.applySideEffects(ctx, session.ID, p, resp)
	return resp
}

func (e *Engine) applySideEffects(ctx context.Context, sessionID string, p domain.PersonaName, resp *parser.PersonaResponse) {
	for _, d := range resp.StoreDirectives {
		if _, err := e.memory.Store(sessionID, p, d.Identifier, d.Content); err != nil {
			slog.Warn("store directive rejected", "session_id", sessionID, "persona", p, "identifier", d.Identifier, "error", err)
		}
	}
	for _, f := range resp.FileDirectives {
		if err := e.workspace.Write(ctx, f.Path, f.Content); err != nil {
			slog.Warn("file directive failed", "session_id", sessionID, "persona", p, "path", f.Path, "error", err)
		}
	}
}

func (e *Engine) buildSystemPrompt(cfg *domain.PersonaConfiguration, session *domain.Session, memories []*domain.Memory) string {
	var b strings.Builder
	b.WriteString(cfg.SystemPrompt)
	b.WriteString("\n\n")
	b.WriteString(responseFormatBlock)
	b.WriteString("\n\nSession context:\n")
	fmt.Fprintf(&b, "id: %s\nstatus: %s\nproblem statement: %s\n", session.ID, session.Status, session.ProblemStatement)
	if len(memories) > 0 {
		b.WriteString("\nRecalled memories:\n")
		for _, m := range memories {
			fmt.Fprintf(&b, "[%s]\n%s\n", m.Identifier, m.Content)
		}
	}
	return b.String()
}

func (e *Engine) buildMessageHistory(sessionID string, incoming *domain.Message) ([]llmprovider.ChatMessage, error) {
	recent, err := e.messages.Recent(sessionID, maxHistoryMessages)
	if err != nil {
		return nil, fmt.Errorf("engine: load message history: %w", err)
	}

	out := make([]llmprovider.ChatMessage, 0, len(recent)+1)
	for _, m := range recent {
		out = append(out, llmprovider.ChatMessage{Role: roleFor(m.FromPersona), Content: m.Content})
	}
	out = append(out, llmprovider.ChatMessage{Role: roleFor(incoming.FromPersona), Content: incomingContent(incoming)})
	return out, nil
}

func roleFor(p domain.PersonaName) string {
	if p == domain.PersonaUser {
		return "user"
	}
	return "assistant"
}

func incomingContent(m *domain.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[from %s", m.FromPersona)
	if m.DelegationContext != nil && strings.TrimSpace(*m.DelegationContext) != "" {
		fmt.Fprintf(&b, ", delegation context: %s", *m.DelegationContext)
	}
	b.WriteString("]\n")
	b.WriteString(m.Content)
	return b.String()
}

func stuckResponse(reason string) *parser.PersonaResponse {
	return &parser.PersonaResponse{ResponseType: domain.MessageStuck, Content: reason, IsStuck: true}
}

func stuckResponseWithReasoning(reason, reasoning string) *parser.PersonaResponse {
	r := stuckResponse(reason)
	r.InternalReasoning = &reasoning
	return r
}

func declineResponse(reason string) *parser.PersonaResponse {
	return &parser.PersonaResponse{ResponseType: domain.MessageDecline, Content: reason}
}

// responseFormatBlock reminds the model of the exact bracket-tag grammar
// ResponseParser expects (spec.md §6 "tag wire format ... implementations
// must emit this grammar inside the per-invocation system prompt").
const responseFormatBlock = `Respond using these bracket tags where applicable:
[REASONING]internal reasoning, never shown to the user[/REASONING] (optional, anywhere)
[DELEGATE:PersonaName] followed by the delegation context (use the exact persona identifier)
[CLARIFY] followed by the question for the user
[SOLUTION] followed by the final solution text
[STUCK] followed by what is blocking progress
[DECLINE] followed by the reason you cannot help
[STORE:identifier] followed by content to remember (zero or more)
[REMEMBER:identifier] to recall a previously stored memory (zero or more)
[FILE:relative/path]file content[/FILE] (zero or more)
Use at most one of DELEGATE, CLARIFY, SOLUTION, STUCK, or DECLINE per response; anything else is a plain Answer.`
