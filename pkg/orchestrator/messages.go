package orchestrator

import (
	"time"

	"github.com/google/uuid"

	"github.com/coreagentic/swarm/pkg/domain"
	"github.com/coreagentic/swarm/pkg/parser"
)

// messageFromResponse builds the Message the loop persists for one
// PersonaEngine.Process call, copying exactly the fields spec.md §4.4 step 5
// names (toPersona is deliberately left unset: the step's field list is
// exhaustive and does not include it).
func messageFromResponse(sessionID string, from domain.PersonaName, parentID string, resp *parser.PersonaResponse, ts time.Time) *domain.Message {
	m := &domain.Message{
		ID:                uuid.NewString(),
		SessionID:         sessionID,
		FromPersona:       from,
		Content:           resp.Content,
		Type:              resp.ResponseType,
		InternalReasoning: resp.InternalReasoning,
		DelegateToPersona: resp.DelegateToPersona,
		DelegationContext: resp.DelegationContext,
		IsStuck:           resp.IsStuck,
		ParentMessageID:   strPtr(parentID),
		Timestamp:         ts,
	}
	if resp.RawResponse != "" {
		m.RawResponse = strPtr(resp.RawResponse)
	}
	return m
}

// messageForReason builds a Stuck message the loop authors itself (not
// derived from a PersonaResponse), e.g. on max-delegation-depth.
func messageForReason(sessionID string, from domain.PersonaName, parentID, reason string, ts time.Time) *domain.Message {
	return &domain.Message{
		ID:              uuid.NewString(),
		SessionID:       sessionID,
		FromPersona:     from,
		Content:         reason,
		Type:            domain.MessageStuck,
		IsStuck:         true,
		ParentMessageID: strPtr(parentID),
		Timestamp:       ts,
	}
}
