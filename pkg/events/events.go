// Package events implements the EventSink contract (spec.md §4.5) and ships
// an in-memory reference sink with per-session ordered subscriber fan-out.
// The real-time transport (WebSocket, SSE, whatever a caller fronts this
// with) is out of scope; this package only guarantees in-order, best-effort
// delivery to whatever subscribes via Subscribe.
package events

import "github.com/coreagentic/swarm/pkg/domain"

// Kind discriminates the five event types named in spec.md §4.5.
type Kind string

const (
	KindMessageReceived        Kind = "MessageReceived"
	KindSessionStatusChanged   Kind = "SessionStatusChanged"
	KindClarificationRequested Kind = "ClarificationRequested"
	KindSolutionReady          Kind = "SolutionReady"
	KindSessionStuck           Kind = "SessionStuck"
)

// Event is one published occurrence. Payload fields are populated
// according to Kind, mirroring the per-event payload table in spec.md §4.5.
type Event struct {
	Kind            Kind
	SessionID       string
	Sequence        uint64
	Message         *domain.Message
	Session         *domain.Session
	PartialSolution string
}

// Sink is the EventSink contract: one typed Publish method per event kind,
// matching the teacher's EventPublisher shape (pkg/events/publisher.go) —
// minus the Postgres LISTEN/NOTIFY transport, which is out of scope here.
// For a given session, the sink delivers events in the order they were
// published; it makes no ordering guarantee between different sessions.
type Sink interface {
	PublishMessageReceived(m *domain.Message) error
	PublishSessionStatusChanged(s *domain.Session) error
	PublishClarificationRequested(m *domain.Message) error
	PublishSolutionReady(s *domain.Session) error
	PublishSessionStuck(s *domain.Session, partialSolution string) error
}
