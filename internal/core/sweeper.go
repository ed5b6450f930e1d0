package core

// sweeper.go runs session maintenance in the background.
//
// Every tick it saves dirty sessions, then evicts sessions idle for longer
// than the configured timeout. Evicted sessions are saved first and come
// back from the store on their next request. Failures are logged and the
// affected session stays in memory for the next tick. Stores that support
// it are purged of sessions older than the retention period, and the audit
// trails of purged sessions are dropped with them. Without a store an
// evicted session's audit trail is dropped at once.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is used when the configured interval is not positive.
const DefaultSweepInterval = time.Minute

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("session sweeper started",
		"interval", interval,
		"idle_timeout", s.cfg.IdleTimeout,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *Service) runSweep(ctx context.Context) {
	start := time.Now()
	if err := s.FlushAll(ctx); err != nil {
		slog.Error("session flush failed", "error", err)
	}
	evicted := s.Sweep(ctx)
	if evicted > 0 {
		slog.Info("idle sessions evicted",
			"evicted", evicted,
			"remaining", s.SessionCount(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	purger, ok := s.store.(Purger)
	if !ok || s.cfg.StoreRetention <= 0 {
		return
	}
	cutoff := s.now().Add(-s.cfg.StoreRetention)
	purged, err := purger.Purge(ctx, cutoff)
	if err != nil {
		slog.Error("session purge failed", "error", err)
		return
	}
	if purged > 0 {
		slog.Info("purged stale sessions", "purged", purged)
	}

	live := make(map[string]bool)
	for _, sess := range s.liveSessions() {
		live[sess.id] = true
	}
	if n := s.audit.Prune(cutoff, live); n > 0 {
		slog.Debug("audit trails pruned", "sessions", n)
	}
}

// Sweep evicts sessions idle for longer than the idle timeout and returns
// how many were evicted.
func (s *Service) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.cfg.IdleTimeout)
	evicted := 0

	for _, sess := range s.liveSessions() {
		sess.mu.Lock()
		if sess.evicted || sess.lastUsed.After(cutoff) {
			sess.mu.Unlock()
			continue
		}
		// Refresh the saved copy so retention counts from the last use.
		sess.dirty = true
		if err := s.save(ctx, sess); err != nil {
			sess.mu.Unlock()
			slog.Error("evict session", "session_id", sess.id, "error", err)
			continue
		}
		sess.evicted = true
		sess.mu.Unlock()

		s.mu.Lock()
		if s.sessions[sess.id] == sess {
			delete(s.sessions, sess.id)
		}
		s.mu.Unlock()

		s.audit.Log(ctx, AuditLogParams{Action: AuditSessionExpire, SessionID: sess.id})
		if s.store == nil {
			s.audit.Forget(sess.id)
		}
		evicted++
	}
	return evicted
}
