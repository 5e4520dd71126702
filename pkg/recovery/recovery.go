// Package recovery implements the startup recovery task: a one-shot scan
// that finds every session left in the Active state by a prior process
// that died mid-delegation, and transitions them to Interrupted so a
// caller can later resume them deliberately (pkg/orchestrator.ResumeSession).
//
// Grounded on the teacher's pkg/queue/orphan.go detectAndRecoverOrphans
// shape (query-all-matching, transition each, log-and-continue on a
// per-item failure) but run once at startup instead of on a ticker, since
// Active-session orphaning here is only possible across a process
// restart, never during steady-state operation.
package recovery

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/coreagentic/swarm/pkg/domain"
)

// SessionScanner is the slice of the session repository the recovery task
// needs: list every session, and persist a transitioned one.
type SessionScanner interface {
	List() ([]*domain.Session, error)
	Update(s *domain.Session) error
}

// Task recovers sessions orphaned by an unclean process shutdown.
type Task struct {
	sessions SessionScanner
}

// NewTask builds a Task from its collaborator.
func NewTask(sessions SessionScanner) *Task {
	return &Task{sessions: sessions}
}

// Run scans for every session with status Active and transitions it to
// Interrupted, updating its timestamp. It never returns an error: a
// per-session update failure is logged and the scan continues, and the
// scan itself runs to completion even if some sessions fail, so a bad
// session can never block process startup (spec.md §4.7).
func (t *Task) Run() {
	sessions, err := t.sessions.List()
	if err != nil {
		slog.Error("recovery: list sessions failed", "error", err)
		return
	}

	recovered := 0
	for _, sess := range sessions {
		if sess.Status != domain.SessionActive {
			continue
		}
		if err := t.interrupt(sess); err != nil {
			slog.Error("recovery: failed to interrupt orphaned session",
				"session_id", sess.ID, "error", err)
			continue
		}
		recovered++
	}

	if recovered > 0 {
		slog.Warn("recovery: interrupted orphaned sessions", "count", recovered)
	}
}

func (t *Task) interrupt(sess *domain.Session) error {
	sess.Status = domain.SessionInterrupted
	sess.UpdatedAt = time.Now().UTC()
	if err := t.sessions.Update(sess); err != nil {
		return fmt.Errorf("update session %s: %w", sess.ID, err)
	}
	return nil
}
