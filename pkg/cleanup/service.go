// Package cleanup provides the retention service: a ticker-driven
// background loop that drops terminal sessions (and their messages and
// memories) past their configured age. Grounded directly on the teacher's
// pkg/cleanup/service.go shape (Start/Stop with a single cancel func,
// run-once-then-tick loop, idempotent per-tick operations), retargeted from
// session/event retention to session/message/memory retention since this
// repository has no separate Event row.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/coreagentic/swarm/pkg/config"
	"github.com/coreagentic/swarm/pkg/domain"
)

// SessionLister is the slice of the session repository retention needs.
type SessionLister interface {
	List() ([]*domain.Session, error)
	Delete(id string) error
}

// MessageDeleter is the slice of the message repository retention needs.
type MessageDeleter interface {
	DeleteBySession(sessionID string) error
}

// MemoryDeleter is the slice of the memory repository retention needs.
type MemoryDeleter interface {
	DeleteBySession(sessionID string) error
}

// Service periodically drops terminal sessions (Completed, Cancelled,
// Stuck) older than the configured retention window, along with their
// messages and memories. All operations are idempotent.
type Service struct {
	cfg      *config.RetentionConfig
	sessions SessionLister
	messages MessageDeleter
	memories MemoryDeleter

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService builds a Service from its collaborators.
func NewService(cfg *config.RetentionConfig, sessions SessionLister, messages MessageDeleter, memories MemoryDeleter) *Service {
	if cfg == nil {
		cfg = config.DefaultRetentionConfig()
	}
	return &Service{cfg: cfg, sessions: sessions, messages: messages, memories: memories}
}

// Start launches the background cleanup loop. A second call is a no-op.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("retention service started",
		"session_retention_days", s.cfg.SessionRetentionDays,
		"interval", s.cfg.CleanupInterval)
}

// Stop signals the cleanup loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("retention service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.runAll()

	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runAll()
		}
	}
}

func (s *Service) runAll() {
	count, err := s.dropAgedSessions()
	if err != nil {
		slog.Error("retention: drop aged sessions failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("retention: dropped aged sessions", "count", count)
	}
}

func (s *Service) dropAgedSessions() (int, error) {
	sessions, err := s.sessions.List()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.SessionRetentionDays)
	dropped := 0
	for _, sess := range sessions {
		if !sess.Status.IsTerminal() && sess.Status != domain.SessionStuck {
			continue
		}
		if sess.UpdatedAt.After(cutoff) {
			continue
		}
		if err := s.messages.DeleteBySession(sess.ID); err != nil {
			return dropped, err
		}
		if err := s.memories.DeleteBySession(sess.ID); err != nil {
			return dropped, err
		}
		if err := s.sessions.Delete(sess.ID); err != nil {
			return dropped, err
		}
		dropped++
	}
	return dropped, nil
}
