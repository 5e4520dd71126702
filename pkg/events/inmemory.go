package events

import (
	"log/slog"
	"sync"

	"github.com/coreagentic/swarm/pkg/domain"
)

// subscriberBuffer bounds each subscriber's channel. A slow or absent
// subscriber never blocks the orchestrator's loop: a full channel causes
// the event to be dropped and logged, per spec.md §4.5's "best-effort
// enqueue" back-pressure policy.
const subscriberBuffer = 256

// InMemorySink is the reference EventSink: per-session ordered fan-out to
// registered subscriber channels, grounded in shape on the teacher's
// ConnectionManager (channel→subscriber-set map, register/unregister,
// snapshot-then-send-without-lock-held) but without any network transport.
type InMemorySink struct {
	mu   sync.Mutex
	seq  uint64
	subs map[string][]chan Event
}

// NewInMemorySink builds an empty InMemorySink.
func NewInMemorySink() *InMemorySink {
	return &InMemorySink{subs: make(map[string][]chan Event)}
}

// Subscribe registers a new subscriber channel for sessionID's events.
// Call Unsubscribe when the caller is done to release the channel.
func (s *InMemorySink) Subscribe(sessionID string) <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	s.mu.Lock()
	s.subs[sessionID] = append(s.subs[sessionID], ch)
	s.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a previously subscribed channel.
func (s *InMemorySink) Unsubscribe(sessionID string, ch <-chan Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.subs[sessionID]
	for i, c := range list {
		if c == ch {
			s.subs[sessionID] = append(list[:i], list[i+1:]...)
			close(c)
			break
		}
	}
	if len(s.subs[sessionID]) == 0 {
		delete(s.subs, sessionID)
	}
}

func (s *InMemorySink) publish(e Event) error {
	s.mu.Lock()
	s.seq++
	e.Sequence = s.seq
	subs := append([]chan Event(nil), s.subs[e.SessionID]...)
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
			slog.Warn("event subscriber buffer full, dropping event",
				"session_id", e.SessionID, "kind", e.Kind, "sequence", e.Sequence)
		}
	}
	return nil
}

func (s *InMemorySink) PublishMessageReceived(m *domain.Message) error {
	return s.publish(Event{Kind: KindMessageReceived, SessionID: m.SessionID, Message: m})
}

func (s *InMemorySink) PublishSessionStatusChanged(sess *domain.Session) error {
	return s.publish(Event{Kind: KindSessionStatusChanged, SessionID: sess.ID, Session: sess})
}

func (s *InMemorySink) PublishClarificationRequested(m *domain.Message) error {
	return s.publish(Event{Kind: KindClarificationRequested, SessionID: m.SessionID, Message: m})
}

func (s *InMemorySink) PublishSolutionReady(sess *domain.Session) error {
	return s.publish(Event{Kind: KindSolutionReady, SessionID: sess.ID, Session: sess})
}

func (s *InMemorySink) PublishSessionStuck(sess *domain.Session, partialSolution string) error {
	return s.publish(Event{Kind: KindSessionStuck, SessionID: sess.ID, Session: sess, PartialSolution: partialSolution})
}
