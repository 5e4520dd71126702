package orchestrator

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreagentic/swarm/pkg/domain"
	"github.com/coreagentic/swarm/pkg/events"
	"github.com/coreagentic/swarm/pkg/parser"
	"github.com/coreagentic/swarm/pkg/repositories"
)

// scriptedEngine returns one canned PersonaResponse per call, in order,
// regardless of which persona is addressed.
type scriptedEngine struct {
	mu        sync.Mutex
	responses []*parser.PersonaResponse
	calls     []domain.PersonaName
}

func (e *scriptedEngine) Process(ctx context.Context, p domain.PersonaName, incoming *domain.Message, session *domain.Session, memories []*domain.Memory) *parser.PersonaResponse {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := len(e.calls)
	e.calls = append(e.calls, p)
	if idx >= len(e.responses) {
		return &parser.PersonaResponse{ResponseType: domain.MessageAnswer, Content: "fallback"}
	}
	return e.responses[idx]
}

type fakeMemories struct{}

func (fakeMemories) Recent(sessionID string, p domain.PersonaName, n int) ([]*domain.Memory, error) {
	return nil, nil
}

type recordingSink struct {
	mu  sync.Mutex
	evs []events.Event
}

func (s *recordingSink) append(e events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evs = append(s.evs, e)
	return nil
}

func (s *recordingSink) PublishMessageReceived(m *domain.Message) error {
	return s.append(events.Event{Kind: events.KindMessageReceived, SessionID: m.SessionID, Message: m})
}
func (s *recordingSink) PublishSessionStatusChanged(sess *domain.Session) error {
	return s.append(events.Event{Kind: events.KindSessionStatusChanged, SessionID: sess.ID, Session: sess})
}
func (s *recordingSink) PublishClarificationRequested(m *domain.Message) error {
	return s.append(events.Event{Kind: events.KindClarificationRequested, SessionID: m.SessionID, Message: m})
}
func (s *recordingSink) PublishSolutionReady(sess *domain.Session) error {
	return s.append(events.Event{Kind: events.KindSolutionReady, SessionID: sess.ID, Session: sess})
}
func (s *recordingSink) PublishSessionStuck(sess *domain.Session, partial string) error {
	return s.append(events.Event{Kind: events.KindSessionStuck, SessionID: sess.ID, Session: sess, PartialSolution: partial})
}

func (s *recordingSink) kinds() []events.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.Kind, len(s.evs))
	for i, e := range s.evs {
		out[i] = e.Kind
	}
	return out
}

func newTestOrchestrator(engine PersonaEngine) (*Orchestrator, *recordingSink, *repositories.SessionRepository, *repositories.MessageRepository) {
	sessions := repositories.NewSessionRepository()
	messages := repositories.NewMessageRepository()
	sink := &recordingSink{}
	o := New(sessions, messages, fakeMemories{}, engine, sink)
	return o, sink, sessions, messages
}

func delegateTo(p domain.PersonaName) *domain.PersonaName { return &p }

func TestStartSession_RejectsEmptyProblemStatement(t *testing.T) {
	o, _, _, _ := newTestOrchestrator(&scriptedEngine{})
	_, err := o.StartSession(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyProblemStatement)
}

func TestStartSession_DirectSolutionCompletesSession(t *testing.T) {
	engine := &scriptedEngine{responses: []*parser.PersonaResponse{
		{ResponseType: domain.MessageSolution, Content: "done"},
	}}
	o, sink, _, _ := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, sess.Status)
	require.NotNil(t, sess.FinalSolution)
	assert.Equal(t, "done", *sess.FinalSolution)
	assert.Nil(t, sess.CurrentPersona)
	assert.Contains(t, sink.kinds(), events.KindSolutionReady)
	assert.Len(t, engine.calls, 1)
}

func TestStartSession_NonCoordinatorSolutionIsCompiledByCoordinator(t *testing.T) {
	engine := &scriptedEngine{responses: []*parser.PersonaResponse{
		{ResponseType: domain.MessageDelegation, DelegateToPersona: delegateTo(domain.PersonaSeniorDeveloper), Content: "go build it"},
		{ResponseType: domain.MessageSolution, Content: "here is the code"},
		{ResponseType: domain.MessageSolution, Content: "compiled final answer"},
	}}
	o, sink, _, _ := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, sess.Status)
	require.NotNil(t, sess.FinalSolution)
	assert.Equal(t, "compiled final answer", *sess.FinalSolution)
	assert.Equal(t, []domain.PersonaName{domain.PersonaCoordinator, domain.PersonaSeniorDeveloper, domain.PersonaCoordinator}, engine.calls)
	assert.Contains(t, sink.kinds(), events.KindSolutionReady)
}

func TestStartSession_ClarificationPausesSession(t *testing.T) {
	engine := &scriptedEngine{responses: []*parser.PersonaResponse{
		{ResponseType: domain.MessageClarification, Content: "what database?"},
	}}
	o, sink, _, _ := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionWaitingForClarification, sess.Status)
	kinds := sink.kinds()
	require.GreaterOrEqual(t, len(kinds), 2)
	assert.Equal(t, events.KindSessionStatusChanged, kinds[len(kinds)-2])
	assert.Equal(t, events.KindClarificationRequested, kinds[len(kinds)-1])
}

func TestHandleUserClarification_ResumesFromClarifyingPersona(t *testing.T) {
	engine := &scriptedEngine{responses: []*parser.PersonaResponse{
		{ResponseType: domain.MessageClarification, Content: "what database?"},
		{ResponseType: domain.MessageSolution, Content: "used postgres"},
	}}
	o, _, _, _ := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	require.Equal(t, domain.SessionWaitingForClarification, sess.Status)

	sess, err = o.HandleUserClarification(context.Background(), sess.ID, "use postgres")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, sess.Status)
	require.NotNil(t, sess.FinalSolution)
	assert.Equal(t, "used postgres", *sess.FinalSolution)
	assert.Equal(t, []domain.PersonaName{domain.PersonaCoordinator, domain.PersonaCoordinator}, engine.calls)
}

func TestHandleUserClarification_RejectsWhenNotWaiting(t *testing.T) {
	engine := &scriptedEngine{responses: []*parser.PersonaResponse{
		{ResponseType: domain.MessageSolution, Content: "done"},
	}}
	o, _, _, _ := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	require.Equal(t, domain.SessionCompleted, sess.Status)

	_, err = o.HandleUserClarification(context.Background(), sess.ID, "nope")
	require.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestStartSession_CoordinatorStuckEntersStuckStateImmediately(t *testing.T) {
	engine := &scriptedEngine{responses: []*parser.PersonaResponse{
		{ResponseType: domain.MessageStuck, Content: "blocked", IsStuck: true},
	}}
	o, sink, _, _ := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStuck, sess.Status)
	require.NotNil(t, sess.FinalSolution)
	assert.Contains(t, *sess.FinalSolution, "did not reach a complete solution")
	assert.Contains(t, sink.kinds(), events.KindSessionStuck)
}

func TestStartSession_NonCoordinatorStuckRoutesToCoordinatorThenCompletes(t *testing.T) {
	engine := &scriptedEngine{responses: []*parser.PersonaResponse{
		{ResponseType: domain.MessageDelegation, DelegateToPersona: delegateTo(domain.PersonaSeniorDeveloper), Content: "build it"},
		{ResponseType: domain.MessageStuck, Content: "blocked", IsStuck: true},
		{ResponseType: domain.MessageSolution, Content: "recovered by coordinator"},
	}}
	o, _, _, _ := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, sess.Status)
	assert.Equal(t, []domain.PersonaName{
		domain.PersonaCoordinator, domain.PersonaSeniorDeveloper, domain.PersonaCoordinator,
	}, engine.calls)
}

func TestStartSession_DeclineRoutesThroughCoordinatorThenTerminal(t *testing.T) {
	engine := &scriptedEngine{responses: []*parser.PersonaResponse{
		{ResponseType: domain.MessageDelegation, DelegateToPersona: delegateTo(domain.PersonaJuniorQA), Content: "run the tests"},
		{ResponseType: domain.MessageDecline, Content: "not my area"},
		{ResponseType: domain.MessageAnswer, Content: "ok, noted"},
	}}
	o, _, _, _ := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionActive, sess.Status)
	assert.Equal(t, []domain.PersonaName{domain.PersonaCoordinator, domain.PersonaJuniorQA, domain.PersonaCoordinator}, engine.calls)
}

func TestStartSession_DeclineThenCoordinatorDelegatesContinues(t *testing.T) {
	engine := &scriptedEngine{responses: []*parser.PersonaResponse{
		{ResponseType: domain.MessageDelegation, DelegateToPersona: delegateTo(domain.PersonaJuniorQA), Content: "run the tests"},
		{ResponseType: domain.MessageDecline, Content: "not my area"},
		{ResponseType: domain.MessageDelegation, DelegateToPersona: delegateTo(domain.PersonaSeniorQA), Content: "you do it"},
		{ResponseType: domain.MessageSolution, Content: "tests pass"},
		{ResponseType: domain.MessageSolution, Content: "compiled: tests pass"},
	}}
	o, _, _, _ := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, sess.Status)
	require.NotNil(t, sess.FinalSolution)
	assert.Equal(t, "compiled: tests pass", *sess.FinalSolution)
	assert.Equal(t, []domain.PersonaName{
		domain.PersonaCoordinator, domain.PersonaJuniorQA, domain.PersonaCoordinator, domain.PersonaSeniorQA, domain.PersonaCoordinator,
	}, engine.calls)
}

func TestStartSession_LongAnswerFromNonCoordinatorRoutesBack(t *testing.T) {
	longAnswer := ""
	for i := 0; i < 20; i++ {
		longAnswer += "0123456789"
	}
	engine := &scriptedEngine{responses: []*parser.PersonaResponse{
		{ResponseType: domain.MessageDelegation, DelegateToPersona: delegateTo(domain.PersonaBusinessAnalyst), Content: "clarify requirements"},
		{ResponseType: domain.MessageAnswer, Content: longAnswer},
		{ResponseType: domain.MessageSolution, Content: "final"},
	}}
	o, _, _, _ := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, sess.Status)
	assert.Equal(t, []domain.PersonaName{
		domain.PersonaCoordinator, domain.PersonaBusinessAnalyst, domain.PersonaCoordinator,
	}, engine.calls)
}

func TestStartSession_ShortAnswerFromNonCoordinatorIsTerminal(t *testing.T) {
	engine := &scriptedEngine{responses: []*parser.PersonaResponse{
		{ResponseType: domain.MessageDelegation, DelegateToPersona: delegateTo(domain.PersonaBusinessAnalyst), Content: "clarify requirements"},
		{ResponseType: domain.MessageAnswer, Content: "short reply"},
	}}
	o, _, _, _ := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionActive, sess.Status)
	assert.Equal(t, []domain.PersonaName{domain.PersonaCoordinator, domain.PersonaBusinessAnalyst}, engine.calls)
}

func TestStartSession_MalformedDelegationRetriesSamePersona(t *testing.T) {
	engine := &scriptedEngine{responses: []*parser.PersonaResponse{
		{ResponseType: domain.MessageDelegation, DelegateToPersona: nil, Content: "delegate to someone"},
		{ResponseType: domain.MessageSolution, Content: "recovered"},
	}}
	o, _, _, _ := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, sess.Status)
	assert.Equal(t, []domain.PersonaName{domain.PersonaCoordinator, domain.PersonaCoordinator}, engine.calls)
}

func TestProcessDelegation_RejectsNonDelegationMessage(t *testing.T) {
	o, _, _, messages := newTestOrchestrator(&scriptedEngine{})
	msg := &domain.Message{ID: "m1", SessionID: "s1", FromPersona: domain.PersonaCoordinator, Type: domain.MessageAnswer}
	require.NoError(t, messages.Create(msg))

	_, err := o.ProcessDelegation(context.Background(), "s1", "m1")
	require.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestCancelSession_RejectsAlreadyTerminalSession(t *testing.T) {
	engine := &scriptedEngine{responses: []*parser.PersonaResponse{
		{ResponseType: domain.MessageSolution, Content: "done"},
	}}
	o, _, _, _ := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	require.Equal(t, domain.SessionCompleted, sess.Status)

	_, err = o.CancelSession(context.Background(), sess.ID)
	require.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestCancelSession_MarksActiveSessionCancelled(t *testing.T) {
	engine := &scriptedEngine{responses: []*parser.PersonaResponse{
		{ResponseType: domain.MessageClarification, Content: "what database?"},
	}}
	o, _, _, _ := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	require.Equal(t, domain.SessionWaitingForClarification, sess.Status)

	sess, err = o.CancelSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCancelled, sess.Status)
}

func TestResumeSession_FromStuckRoutesToCoordinator(t *testing.T) {
	engine := &scriptedEngine{responses: []*parser.PersonaResponse{
		{ResponseType: domain.MessageStuck, Content: "blocked", IsStuck: true},
		{ResponseType: domain.MessageSolution, Content: "recovered solution"},
	}}
	o, _, sessions, _ := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	require.Equal(t, domain.SessionStuck, sess.Status)

	// Move the Stuck session to Interrupted (the status a process restart
	// leaves behind) to check that ResumeSession accepts it.
	sess.Status = domain.SessionInterrupted
	require.NoError(t, sessions.Update(sess))

	resumed, err := o.ResumeSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, resumed.Status)
	assert.Equal(t, []domain.PersonaName{domain.PersonaCoordinator, domain.PersonaCoordinator}, engine.calls)
}

func TestStartSession_TwoHopDelegationChainCompiledByCoordinator(t *testing.T) {
	engine := &scriptedEngine{responses: []*parser.PersonaResponse{
		{ResponseType: domain.MessageDelegation, DelegateToPersona: delegateTo(domain.PersonaTechnicalArchitect), Content: "design it"},
		{ResponseType: domain.MessageDelegation, DelegateToPersona: delegateTo(domain.PersonaSeniorDeveloper), Content: "build it"},
		{ResponseType: domain.MessageSolution, Content: "implemented per the design"},
		{ResponseType: domain.MessageSolution, Content: "compiled final answer"},
	}}
	o, sink, _, messages := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, sess.Status)
	require.NotNil(t, sess.FinalSolution)
	assert.Equal(t, "compiled final answer", *sess.FinalSolution)
	assert.Equal(t, []domain.PersonaName{
		domain.PersonaCoordinator, domain.PersonaTechnicalArchitect, domain.PersonaSeniorDeveloper, domain.PersonaCoordinator,
	}, engine.calls)
	assert.Contains(t, sink.kinds(), events.KindSolutionReady)

	history, err := messages.BySession(sess.ID)
	require.NoError(t, err)
	assert.Len(t, history, 5) // initial problem statement + 4 engine-authored messages
}

func TestStartSession_ExceedingMaxDelegationDepthEntersStuckState(t *testing.T) {
	responses := make([]*parser.PersonaResponse, maxDelegationDepth)
	for i := range responses {
		responses[i] = &parser.PersonaResponse{
			ResponseType:      domain.MessageDelegation,
			DelegateToPersona: delegateTo(domain.PersonaSeniorDeveloper),
			Content:           "keep going",
		}
	}
	engine := &scriptedEngine{responses: responses}
	o, sink, _, _ := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStuck, sess.Status)
	require.NotNil(t, sess.FinalSolution)
	assert.Contains(t, sink.kinds(), events.KindSessionStuck)
	// The loop perpetually delegates, so it exhausts maxDelegationDepth
	// rather than returning a response of its own at the last step.
	assert.Len(t, engine.calls, maxDelegationDepth)
}

func TestStartSession_MultiplePersonasStuckBeforeCoordinatorGivesUp(t *testing.T) {
	engine := &scriptedEngine{responses: []*parser.PersonaResponse{
		{ResponseType: domain.MessageDelegation, DelegateToPersona: delegateTo(domain.PersonaBusinessAnalyst), Content: "try this"},
		{ResponseType: domain.MessageStuck, Content: "blocked", IsStuck: true},
		{ResponseType: domain.MessageDelegation, DelegateToPersona: delegateTo(domain.PersonaTechnicalArchitect), Content: "try this instead"},
		{ResponseType: domain.MessageStuck, Content: "blocked", IsStuck: true},
		{ResponseType: domain.MessageDelegation, DelegateToPersona: delegateTo(domain.PersonaSeniorDeveloper), Content: "try this instead"},
		{ResponseType: domain.MessageStuck, Content: "blocked", IsStuck: true},
		{ResponseType: domain.MessageDelegation, DelegateToPersona: delegateTo(domain.PersonaJuniorDeveloper), Content: "last idea"},
		{ResponseType: domain.MessageStuck, Content: "blocked", IsStuck: true},
		{ResponseType: domain.MessageStuck, Content: "out of ideas", IsStuck: true},
	}}
	o, sink, _, _ := newTestOrchestrator(engine)

	sess, err := o.StartSession(context.Background(), "build a widget")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStuck, sess.Status)
	require.NotNil(t, sess.FinalSolution)
	assert.Contains(t, sink.kinds(), events.KindSessionStuck)
	assert.Equal(t, []domain.PersonaName{
		domain.PersonaCoordinator, domain.PersonaBusinessAnalyst,
		domain.PersonaCoordinator, domain.PersonaTechnicalArchitect,
		domain.PersonaCoordinator, domain.PersonaSeniorDeveloper,
		domain.PersonaCoordinator, domain.PersonaJuniorDeveloper,
		domain.PersonaCoordinator,
	}, engine.calls)
}

func TestCompilePartialSolution_NoContributionsYieldsExplanatorySentence(t *testing.T) {
	got := compilePartialSolution(nil)
	assert.Equal(t, partialSolutionEmpty, got)
}

func TestCompilePartialSolution_SkipsUserStuckAndDeclineMessages(t *testing.T) {
	history := []*domain.Message{
		{FromPersona: domain.PersonaUser, Content: "please help", Type: domain.MessageProblemStatement},
		{FromPersona: domain.PersonaBusinessAnalyst, Content: "requirements gathered", Type: domain.MessageAnswer},
		{FromPersona: domain.PersonaSeniorDeveloper, Content: "blocked", Type: domain.MessageStuck, IsStuck: true},
		{FromPersona: domain.PersonaCoordinator, Content: "can't help", Type: domain.MessageDecline},
	}
	got := compilePartialSolution(history)
	assert.Contains(t, got, "**BusinessAnalyst:**\nrequirements gathered")
	assert.NotContains(t, got, "blocked")
	assert.NotContains(t, got, "can't help")
}

func TestTitleFromProblemStatement_TruncatesAtPunctuation(t *testing.T) {
	got := titleFromProblemStatement("Build a widget. It should be fast.")
	assert.Equal(t, "Build a widget...", got)
}

func TestTitleFromProblemStatement_TruncatesAt50Chars(t *testing.T) {
	s := "this is a very long problem statement with no punctuation at all to speak of"
	got := titleFromProblemStatement(s)
	assert.True(t, len(got) <= titleMaxLen+len("..."))
	assert.Contains(t, got, "...")
}

func TestTitleFromProblemStatement_ShortTextUnchanged(t *testing.T) {
	got := titleFromProblemStatement("fix it")
	assert.Equal(t, "fix it", got)
}
