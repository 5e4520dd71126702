// Package orchestrator implements the Orchestrator (spec.md §4.4): the
// bounded delegation loop that drives a session's persona conversation from
// one public operation call to the next suspension point (Solution,
// Clarification, Stuck, max-depth, or a terminal Answer).
//
// Grounded in shape on the teacher's pkg/queue worker pool
// (pkg/queue/pool.go, pkg/queue/worker.go): a per-session cancellation
// registry (RegisterSession/UnregisterSession/CancelSession) and graceful
// single-cancel semantics. The teacher drives its loop by polling a database
// queue asynchronously; spec.md's loop instead runs synchronously inside
// whichever public operation call invoked it, so the worker-pool's
// poll-claim machinery itself is not carried forward — only its
// cancellation-registry and per-session-exclusion shape is (see DESIGN.md).
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coreagentic/swarm/pkg/domain"
	"github.com/coreagentic/swarm/pkg/events"
	"github.com/coreagentic/swarm/pkg/parser"
)

// ErrEmptyProblemStatement is returned by StartSession when given blank text.
var ErrEmptyProblemStatement = errors.New("orchestrator: problem statement must not be empty")

// ErrPreconditionFailed indicates a public operation's precondition (spec.md
// §4.4's per-operation precondition column) was not met.
var ErrPreconditionFailed = errors.New("orchestrator: precondition failed")

// SessionRepository is the slice of the session repository the Orchestrator
// needs.
type SessionRepository interface {
	Create(s *domain.Session) error
	Get(id string) (*domain.Session, error)
	Update(s *domain.Session) error
}

// MessageRepository is the slice of the message repository the Orchestrator
// needs.
type MessageRepository interface {
	Create(m *domain.Message) error
	ByID(id string) (*domain.Message, error)
	BySession(sessionID string) ([]*domain.Message, error)
}

// MemoryReader is the slice of MemoryStore the loop needs to assemble the
// "recalled memories" it feeds into PersonaEngine.Process.
type MemoryReader interface {
	Recent(sessionID string, p domain.PersonaName, n int) ([]*domain.Memory, error)
}

// PersonaEngine is the PersonaEngine contract (spec.md §4.3).
type PersonaEngine interface {
	Process(ctx context.Context, p domain.PersonaName, incoming *domain.Message, session *domain.Session, memories []*domain.Memory) *parser.PersonaResponse
}

// Orchestrator is the reference implementation of spec.md §4.4.
type Orchestrator struct {
	sessions SessionRepository
	messages MessageRepository
	memories MemoryReader
	engine   PersonaEngine
	events   events.Sink

	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	cancels map[string]context.CancelFunc

	tsMu   sync.Mutex
	lastTS time.Time
}

// New builds an Orchestrator from its collaborators.
func New(sessions SessionRepository, messages MessageRepository, memories MemoryReader, engine PersonaEngine, sink events.Sink) *Orchestrator {
	return &Orchestrator{
		sessions: sessions,
		messages: messages,
		memories: memories,
		engine:   engine,
		events:   sink,
		locks:    make(map[string]*sync.Mutex),
		cancels:  make(map[string]context.CancelFunc),
	}
}

// StartSession creates a new session (Active, Coordinator current), appends
// the user's problem statement as the first message, and drives the
// delegation loop from Coordinator until it suspends or returns.
func (o *Orchestrator) StartSession(ctx context.Context, problemStatement string) (*domain.Session, error) {
	if trimmedEmpty(problemStatement) {
		return nil, ErrEmptyProblemStatement
	}

	coordinator := domain.PersonaCoordinator
	sess := &domain.Session{
		ID:               uuid.NewString(),
		Title:            titleFromProblemStatement(problemStatement),
		ProblemStatement: problemStatement,
		Status:           domain.SessionActive,
		CurrentPersona:   &coordinator,
		CreatedAt:        o.nextTimestamp(),
		UpdatedAt:        o.nextTimestamp(),
	}
	if err := o.sessions.Create(sess); err != nil {
		return nil, fmt.Errorf("orchestrator: create session: %w", err)
	}

	initial := &domain.Message{
		ID:          uuid.NewString(),
		SessionID:   sess.ID,
		FromPersona: domain.PersonaUser,
		Content:     problemStatement,
		Type:        domain.MessageProblemStatement,
		Timestamp:   o.nextTimestamp(),
	}
	if err := o.emit(initial); err != nil {
		return sess, err
	}

	var result *domain.Session
	err := o.withSession(ctx, sess.ID, func(ctx context.Context) error {
		var loopErr error
		result, loopErr = o.runLoop(ctx, sess, coordinator, initial)
		return loopErr
	})
	if err != nil {
		return result, err
	}
	return result, nil
}

// ProcessDelegation resumes the loop with the target persona of an
// already-persisted Delegation message. It exists for callers that want to
// drive the loop one delegation hop at a time instead of always running it
// to its next suspension point from StartSession/ResumeSession — the
// in-loop Delegation case already continues automatically within a single
// invocation (see DESIGN.md's Open Questions decisions).
func (o *Orchestrator) ProcessDelegation(ctx context.Context, sessionID, messageID string) (*domain.Session, error) {
	msg, err := o.messages.ByID(messageID)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load delegation message: %w", err)
	}
	if msg.Type != domain.MessageDelegation || msg.DelegateToPersona == nil {
		return nil, fmt.Errorf("%w: message %s is not a delegation with a resolved target", ErrPreconditionFailed, messageID)
	}

	var result *domain.Session
	err = o.withSession(ctx, sessionID, func(ctx context.Context) error {
		sess, getErr := o.sessions.Get(sessionID)
		if getErr != nil {
			return fmt.Errorf("orchestrator: load session: %w", getErr)
		}
		var loopErr error
		result, loopErr = o.runLoop(ctx, sess, *msg.DelegateToPersona, msg)
		return loopErr
	})
	return result, err
}

// HandleUserClarification appends the user's response to the most recent
// Clarification message, reactivates the session, and resumes the loop with
// the persona that asked the question.
func (o *Orchestrator) HandleUserClarification(ctx context.Context, sessionID, response string) (*domain.Session, error) {
	var result *domain.Session
	err := o.withSession(ctx, sessionID, func(ctx context.Context) error {
		sess, getErr := o.sessions.Get(sessionID)
		if getErr != nil {
			return fmt.Errorf("orchestrator: load session: %w", getErr)
		}
		if sess.Status != domain.SessionWaitingForClarification {
			return fmt.Errorf("%w: session %s is not awaiting clarification", ErrPreconditionFailed, sessionID)
		}

		history, histErr := o.messages.BySession(sessionID)
		if histErr != nil {
			return fmt.Errorf("orchestrator: load session history: %w", histErr)
		}
		clarification := mostRecentOfType(history, domain.MessageClarification)
		if clarification == nil {
			return fmt.Errorf("%w: session %s has no clarification to answer", ErrPreconditionFailed, sessionID)
		}

		userResponse := &domain.Message{
			ID:              uuid.NewString(),
			SessionID:       sessionID,
			FromPersona:     domain.PersonaUser,
			Content:         response,
			Type:            domain.MessageUserResponse,
			ParentMessageID: strPtr(clarification.ID),
			Timestamp:       o.nextTimestamp(),
		}
		if emitErr := o.emit(userResponse); emitErr != nil {
			return emitErr
		}

		sess.Status = domain.SessionActive
		sess.UpdatedAt = o.nextTimestamp()
		if updErr := o.sessions.Update(sess); updErr != nil {
			return fmt.Errorf("orchestrator: persist session: %w", updErr)
		}
		if pubErr := o.events.PublishSessionStatusChanged(sess); pubErr != nil {
			return pubErr
		}

		var loopErr error
		result, loopErr = o.runLoop(ctx, sess, clarification.FromPersona, userResponse)
		return loopErr
	})
	return result, err
}

// ResumeSession resumes a non-terminal session after startup recovery or an
// explicit pause: if the last message is a Delegation, resumes with its
// target; if the last message is Stuck, routes to Coordinator; otherwise
// rejects.
func (o *Orchestrator) ResumeSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	var result *domain.Session
	err := o.withSession(ctx, sessionID, func(ctx context.Context) error {
		sess, getErr := o.sessions.Get(sessionID)
		if getErr != nil {
			return fmt.Errorf("orchestrator: load session: %w", getErr)
		}
		if sess.Status.IsTerminal() {
			return fmt.Errorf("%w: session %s is terminal", ErrPreconditionFailed, sessionID)
		}

		history, histErr := o.messages.BySession(sessionID)
		if histErr != nil {
			return fmt.Errorf("orchestrator: load session history: %w", histErr)
		}
		if len(history) == 0 {
			return fmt.Errorf("%w: session %s has no messages to resume from", ErrPreconditionFailed, sessionID)
		}
		last := history[len(history)-1]

		var nextPersona domain.PersonaName
		switch {
		case last.Type == domain.MessageDelegation && last.DelegateToPersona != nil:
			nextPersona = *last.DelegateToPersona
		case last.Type == domain.MessageStuck:
			nextPersona = domain.PersonaCoordinator
		default:
			return fmt.Errorf("%w: session %s's last message is not resumable", ErrPreconditionFailed, sessionID)
		}

		sess.Status = domain.SessionActive
		sess.UpdatedAt = o.nextTimestamp()
		if updErr := o.sessions.Update(sess); updErr != nil {
			return fmt.Errorf("orchestrator: persist session: %w", updErr)
		}
		if pubErr := o.events.PublishSessionStatusChanged(sess); pubErr != nil {
			return pubErr
		}

		var loopErr error
		result, loopErr = o.runLoop(ctx, sess, nextPersona, last)
		return loopErr
	})
	return result, err
}

// CancelSession signals cancellation to any in-flight loop for sessionID
// (so it stops writing further messages promptly) and then marks the
// session Cancelled. No broadcast is required (spec.md §4.4: "stateless
// caller").
func (o *Orchestrator) CancelSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	o.signalCancel(sessionID)

	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := o.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load session: %w", err)
	}
	if sess.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: session %s is already terminal", ErrPreconditionFailed, sessionID)
	}

	sess.Status = domain.SessionCancelled
	sess.CurrentPersona = nil
	sess.UpdatedAt = o.nextTimestamp()
	if err := o.sessions.Update(sess); err != nil {
		return nil, fmt.Errorf("orchestrator: persist session: %w", err)
	}
	return sess, nil
}

// withSession serializes operations on sessionID (single-flight per session,
// spec.md §5) and registers a cancel func so CancelSession can interrupt an
// in-flight loop without waiting for the session lock.
func (o *Orchestrator) withSession(ctx context.Context, sessionID string, fn func(ctx context.Context) error) error {
	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	o.registerCancel(sessionID, cancel)
	defer func() {
		o.unregisterCancel(sessionID)
		cancel()
	}()

	return fn(runCtx)
}

func (o *Orchestrator) sessionLock(id string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[id]
	if !ok {
		l = &sync.Mutex{}
		o.locks[id] = l
	}
	return l
}

func (o *Orchestrator) registerCancel(sessionID string, cancel context.CancelFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancels[sessionID] = cancel
}

func (o *Orchestrator) unregisterCancel(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.cancels, sessionID)
}

func (o *Orchestrator) signalCancel(sessionID string) {
	o.mu.Lock()
	cancel, ok := o.cancels[sessionID]
	o.mu.Unlock()
	if ok {
		cancel()
	}
}

// nextTimestamp returns a strictly-increasing timestamp, guaranteeing
// spec.md §8 invariant 1 ("message timestamps are strictly increasing")
// even under a coarse system clock or rapid successive calls.
func (o *Orchestrator) nextTimestamp() time.Time {
	o.tsMu.Lock()
	defer o.tsMu.Unlock()
	now := time.Now().UTC()
	if !now.After(o.lastTS) {
		now = o.lastTS.Add(time.Nanosecond)
	}
	o.lastTS = now
	return now
}

// emit persists m and broadcasts MessageReceived, in that order (spec.md §5:
// "memory writes... applied before the message is broadcast" — by the time
// the loop constructs m, PersonaEngine.Process has already applied its
// side effects).
func (o *Orchestrator) emit(m *domain.Message) error {
	if err := o.messages.Create(m); err != nil {
		return fmt.Errorf("orchestrator: persist message: %w", err)
	}
	if err := o.events.PublishMessageReceived(m); err != nil {
		return fmt.Errorf("orchestrator: publish message: %w", err)
	}
	return nil
}

func mostRecentOfType(history []*domain.Message, t domain.MessageType) *domain.Message {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Type == t {
			return history[i]
		}
	}
	return nil
}

func trimmedEmpty(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

func strPtr(s string) *string { return &s }
