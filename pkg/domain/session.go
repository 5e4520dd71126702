// Package domain holds the core data model shared by every component of the
// orchestrator: Session, Message, Memory, and PersonaConfiguration. Types
// here are plain data — concurrency-safety is the responsibility of the
// repositories that store them (pkg/repositories) and the orchestrator's
// per-session scheduling (pkg/orchestrator), not the structs themselves.
package domain

import "time"

// SessionStatus is the session state-machine position (spec.md §3, §4.4).
type SessionStatus string

const (
	SessionActive                  SessionStatus = "Active"
	SessionWaitingForClarification SessionStatus = "WaitingForClarification"
	SessionCompleted               SessionStatus = "Completed"
	SessionStuck                   SessionStatus = "Stuck"
	SessionCancelled               SessionStatus = "Cancelled"
	SessionInterrupted             SessionStatus = "Interrupted"
	SessionError                   SessionStatus = "Error"
)

// IsTerminal reports whether status accepts no further control operations
// except read (Completed, Cancelled per spec.md §3 invariants).
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// Session is a conversation session driven by the Orchestrator.
type Session struct {
	ID               string
	Title            string
	ProblemStatement string
	Status           SessionStatus
	CurrentPersona   *PersonaName
	FinalSolution    *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Clone returns a deep copy safe for a caller to read or mutate without
// affecting the repository's stored copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	if s.CurrentPersona != nil {
		p := *s.CurrentPersona
		clone.CurrentPersona = &p
	}
	if s.FinalSolution != nil {
		sol := *s.FinalSolution
		clone.FinalSolution = &sol
	}
	return &clone
}
