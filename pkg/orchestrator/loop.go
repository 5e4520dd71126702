package orchestrator

import (
	"context"
	"fmt"

	"github.com/coreagentic/swarm/pkg/domain"
)

// Bounds on the delegation loop (spec.md §4.4).
const (
	maxDelegationDepth     = 50
	maxConsecutiveStuck    = 5
	recentMemoriesCount    = 10
	answerRerouteThreshold = 100
)

// runLoop drives the delegation loop for one invocation of a public
// operation, starting from currentPersona/currentMessage, until it reaches
// one of the loop's suspension/return points: Solution (Completed),
// Clarification (pause), all-stuck (Stuck), max depth (Stuck), a
// non-continuing Decline, or a terminal Answer. Repository errors are fatal
// to the iteration and are returned as-is; the session is left at its last
// persisted state (spec.md §4.4 failure semantics).
func (o *Orchestrator) runLoop(ctx context.Context, sess *domain.Session, currentPersona domain.PersonaName, currentMessage *domain.Message) (*domain.Session, error) {
	depth := 0
	consecutiveStuck := 0
	stuckPersonas := make(map[domain.PersonaName]bool, len(domain.Personas))

	for {
		if ctx.Err() != nil {
			// Cancellation: write no further messages, leave the session at
			// its last persisted status (spec.md §5 — a separate explicit
			// CancelSession call is required to mark it Cancelled).
			return sess, nil
		}

		depth++
		if depth > maxDelegationDepth {
			depthMsg := messageForReason(sess.ID, domain.PersonaCoordinator, currentMessage.ID, "maximum delegation depth reached", o.nextTimestamp())
			if err := o.emit(depthMsg); err != nil {
				return sess, err
			}
			return o.enterStuckState(sess)
		}

		sess.CurrentPersona = &currentPersona
		sess.UpdatedAt = o.nextTimestamp()
		if err := o.sessions.Update(sess); err != nil {
			return sess, fmt.Errorf("orchestrator: persist session: %w", err)
		}

		memories, err := o.memories.Recent(sess.ID, currentPersona, recentMemoriesCount)
		if err != nil {
			return sess, fmt.Errorf("orchestrator: load recent memories: %w", err)
		}

		resp := o.engine.Process(ctx, currentPersona, currentMessage, sess, memories)

		msg := messageFromResponse(sess.ID, currentPersona, currentMessage.ID, resp, o.nextTimestamp())
		if err := o.emit(msg); err != nil {
			return sess, err
		}

		switch resp.ResponseType {
		case domain.MessageSolution:
			return o.finishWithSolution(ctx, sess, currentPersona, msg)

		case domain.MessageClarification:
			sess.Status = domain.SessionWaitingForClarification
			sess.UpdatedAt = o.nextTimestamp()
			if err := o.sessions.Update(sess); err != nil {
				return sess, fmt.Errorf("orchestrator: persist session: %w", err)
			}
			if err := o.events.PublishSessionStatusChanged(sess); err != nil {
				return sess, err
			}
			if err := o.events.PublishClarificationRequested(msg); err != nil {
				return sess, err
			}
			return sess, nil

		case domain.MessageDelegation:
			currentMessage = msg
			if resp.DelegateToPersona == nil {
				// Malformed: no resolved target. Continue with the same
				// persona so a follow-up turn can recover (spec.md §4.4,
				// rare per spec, see DESIGN.md Open Questions decision 1).
				continue
			}
			consecutiveStuck = 0
			currentPersona = *resp.DelegateToPersona
			continue

		case domain.MessageDecline:
			next, continued, err := o.routeDecline(ctx, sess, msg)
			if err != nil {
				return sess, err
			}
			if !continued {
				return sess, nil
			}
			consecutiveStuck = 0
			currentPersona = *next.DelegateToPersona
			currentMessage = next
			continue

		case domain.MessageStuck:
			stuckPersonas[currentPersona] = true
			consecutiveStuck++
			if consecutiveStuck >= maxConsecutiveStuck ||
				len(stuckPersonas) >= len(domain.Personas) ||
				currentPersona == domain.PersonaCoordinator {
				return o.enterStuckState(sess)
			}
			currentPersona = domain.PersonaCoordinator
			currentMessage = msg
			continue

		default: // Answer
			if currentPersona != domain.PersonaCoordinator && len(resp.Content) > answerRerouteThreshold {
				currentPersona = domain.PersonaCoordinator
				currentMessage = msg
				continue
			}
			return sess, nil
		}
	}
}

// finishWithSolution implements the Solution routing case: a non-Coordinator
// solution is re-authored by Coordinator into a compiled final message
// before the session completes.
func (o *Orchestrator) finishWithSolution(ctx context.Context, sess *domain.Session, authoredBy domain.PersonaName, solutionMsg *domain.Message) (*domain.Session, error) {
	finalContent := solutionMsg.Content

	if authoredBy != domain.PersonaCoordinator {
		memories, err := o.memories.Recent(sess.ID, domain.PersonaCoordinator, recentMemoriesCount)
		if err != nil {
			return sess, fmt.Errorf("orchestrator: load recent memories: %w", err)
		}
		compiledResp := o.engine.Process(ctx, domain.PersonaCoordinator, solutionMsg, sess, memories)
		compiledMsg := messageFromResponse(sess.ID, domain.PersonaCoordinator, solutionMsg.ID, compiledResp, o.nextTimestamp())
		if err := o.emit(compiledMsg); err != nil {
			return sess, err
		}
		finalContent = compiledMsg.Content
	}

	sess.Status = domain.SessionCompleted
	sess.FinalSolution = &finalContent
	sess.CurrentPersona = nil
	sess.UpdatedAt = o.nextTimestamp()
	if err := o.sessions.Update(sess); err != nil {
		return sess, fmt.Errorf("orchestrator: persist session: %w", err)
	}
	if err := o.events.PublishSolutionReady(sess); err != nil {
		return sess, err
	}
	return sess, nil
}

// routeDecline implements the Decline routing case: Coordinator gets one
// chance to turn a decline into a delegation. continued reports whether the
// loop should keep going from Coordinator's response.
func (o *Orchestrator) routeDecline(ctx context.Context, sess *domain.Session, declineMsg *domain.Message) (next *domain.Message, continued bool, err error) {
	memories, err := o.memories.Recent(sess.ID, domain.PersonaCoordinator, recentMemoriesCount)
	if err != nil {
		return nil, false, fmt.Errorf("orchestrator: load recent memories: %w", err)
	}
	coordResp := o.engine.Process(ctx, domain.PersonaCoordinator, declineMsg, sess, memories)
	coordMsg := messageFromResponse(sess.ID, domain.PersonaCoordinator, declineMsg.ID, coordResp, o.nextTimestamp())
	if err := o.emit(coordMsg); err != nil {
		return nil, false, err
	}
	if coordResp.ResponseType == domain.MessageDelegation && coordResp.DelegateToPersona != nil {
		return coordMsg, true, nil
	}
	return nil, false, nil
}

// enterStuckState compiles the partial solution from the session's message
// history, marks the session Stuck, and broadcasts SessionStuck.
func (o *Orchestrator) enterStuckState(sess *domain.Session) (*domain.Session, error) {
	history, err := o.messages.BySession(sess.ID)
	if err != nil {
		return sess, fmt.Errorf("orchestrator: load session history: %w", err)
	}
	partial := compilePartialSolution(history)

	sess.Status = domain.SessionStuck
	sess.FinalSolution = &partial
	sess.CurrentPersona = nil
	sess.UpdatedAt = o.nextTimestamp()
	if err := o.sessions.Update(sess); err != nil {
		return sess, fmt.Errorf("orchestrator: persist session: %w", err)
	}
	if err := o.events.PublishSessionStuck(sess, partial); err != nil {
		return sess, err
	}
	return sess, nil
}
