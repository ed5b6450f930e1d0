package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/sheets/internal/grid"
	"github.com/JonMunkholm/sheets/internal/logging"
	"github.com/google/uuid"
)

// DefaultImportTimeout bounds how long a single file may take to parse.
const DefaultImportTimeout = 2 * time.Minute

// DefaultIdleTimeout is how long an untouched session stays in memory.
const DefaultIdleTimeout = 30 * time.Minute

// ServiceConfig holds the tunables of a Service. Zero values select defaults.
type ServiceConfig struct {
	IdleTimeout          time.Duration
	MaxSessions          int // 0 means unlimited
	ImportTimeout        time.Duration
	MaxConcurrentImports int
	ImportWait           time.Duration
	AuditRetain          int
	StoreRetention       time.Duration // 0 keeps saved sessions forever
}

// Service owns the editing sessions. Each session holds one Workbook;
// operations on the same session are serialized, different sessions run
// in parallel.
type Service struct {
	store    SessionStore // nil disables persistence
	importer Importer
	exporter Exporter
	limiter  *ImportLimiter
	audit    *AuditLog
	cfg      ServiceConfig
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	id string

	mu       sync.Mutex
	wb       *Workbook
	lastUsed time.Time
	dirty    bool
	evicted  bool
}

// NewService creates a Service. store may be nil, in which case idle
// sessions are dropped instead of saved.
func NewService(store SessionStore, importer Importer, exporter Exporter, cfg ServiceConfig) *Service {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.ImportTimeout <= 0 {
		cfg.ImportTimeout = DefaultImportTimeout
	}
	s := &Service{
		store:    store,
		importer: importer,
		exporter: exporter,
		limiter:  NewImportLimiter(cfg.MaxConcurrentImports, cfg.ImportWait),
		audit:    NewAuditLog(cfg.AuditRetain),
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
	s.audit.now = func() time.Time { return s.now() }
	return s
}

// CreateSession starts a session with a fresh workbook.
func (s *Service) CreateSession(ctx context.Context) (string, Snapshot, error) {
	sess := &session{
		id:       uuid.NewString(),
		wb:       NewWorkbook(),
		lastUsed: s.now(),
		dirty:    true,
	}

	s.mu.Lock()
	if s.full() {
		s.mu.Unlock()
		return "", Snapshot{}, ErrTooManySessions
	}
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.audit.Log(ctx, AuditLogParams{Action: AuditSessionCreate, SessionID: sess.id})
	return sess.id, sess.wb.Snapshot(), nil
}

// full reports whether the session limit is reached. Caller holds s.mu.
func (s *Service) full() bool {
	return s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions
}

// lookup returns the live session for id, loading it from the store when
// it is not in memory.
func (s *Service) lookup(ctx context.Context, id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}

	if s.store == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	state, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	wb, err := RestoreWorkbook(state)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[id]; ok {
		return existing, nil
	}
	if s.full() {
		return nil, ErrTooManySessions
	}
	sess = &session{id: id, wb: wb, lastUsed: s.now()}
	s.sessions[id] = sess
	logging.FromContext(ctx).Debug("session restored", "session_id", id)
	return sess, nil
}

// withSession runs fn with the session locked. A session evicted between
// lookup and lock is looked up again.
func (s *Service) withSession(ctx context.Context, id string, fn func(*session) error) error {
	for {
		sess, err := s.lookup(ctx, id)
		if err != nil {
			return err
		}
		sess.mu.Lock()
		if sess.evicted {
			sess.mu.Unlock()
			continue
		}
		sess.lastUsed = s.now()
		err = fn(sess)
		sess.mu.Unlock()
		return err
	}
}

// Snapshot returns a copy of the session's workbook state.
func (s *Service) Snapshot(ctx context.Context, id string) (Snapshot, error) {
	var snap Snapshot
	err := s.withSession(ctx, id, func(sess *session) error {
		snap = sess.wb.Snapshot()
		return nil
	})
	return snap, err
}

// Apply performs one action. Cell edits are rejected with ErrReadOnly
// while edit mode is off. On error the workbook is unchanged.
func (s *Service) Apply(ctx context.Context, id string, a Action) (Snapshot, error) {
	var snap Snapshot
	var sheet, old string
	err := s.withSession(ctx, id, func(sess *session) error {
		if a.Kind == ActionSetCell {
			if !sess.wb.Editable() {
				return ErrReadOnly
			}
			// Out-of-range edits fail in Apply below.
			old, _ = sess.wb.Cell(a.Row, a.Col)
		}
		sheet = sess.wb.ActiveName()
		if err := sess.wb.Apply(a); err != nil {
			return err
		}
		if a.Persists() {
			sess.dirty = true
		}
		snap = sess.wb.Snapshot()
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	if p, ok := auditParamsFor(a, sheet); ok {
		p.SessionID = id
		if a.Kind == ActionSetCell {
			p.OldValue = old
		}
		s.audit.Log(ctx, p)
	}
	return snap, nil
}

// Import replaces the session's workbook with the sheets decoded from data.
// Decoding happens before the session is locked, so a failed or slow parse
// never blocks other operations on it and leaves it untouched.
func (s *Service) Import(ctx context.Context, id, filename string, data []byte) (Snapshot, error) {
	if _, err := s.lookup(ctx, id); err != nil {
		return Snapshot{}, err
	}

	sheets, err := s.decode(ctx, filename, data, true)
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	err = s.withSession(ctx, id, func(sess *session) error {
		if err := sess.wb.ImportSheets(sheets); err != nil {
			return err
		}
		sess.dirty = true
		snap = sess.wb.Snapshot()
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	rows := 0
	for _, sh := range sheets {
		rows += len(sh.Rows)
	}
	s.audit.Log(ctx, AuditLogParams{
		Action:       AuditImport,
		SessionID:    id,
		Detail:       filepath.Base(filename),
		RowsAffected: rows,
	})
	return snap, nil
}

// decode parses data on an import slot. With wait false it fails fast
// with ErrTooManyImports instead of queuing for a slot.
func (s *Service) decode(ctx context.Context, filename string, data []byte, wait bool) ([]grid.SheetData, error) {
	if wait {
		if err := s.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
	} else if !s.limiter.TryAcquire() {
		return nil, ErrTooManyImports
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ImportTimeout)
	defer cancel()

	type result struct {
		sheets []grid.SheetData
		err    error
	}
	done := make(chan result, 1)
	go func() {
		defer s.limiter.Release()
		sheets, err := s.importer.Import(filename, bytes.NewReader(data))
		done <- result{sheets, err}
	}()

	select {
	case res := <-done:
		return res.sheets, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("import %s: %w", filepath.Base(filename), ctx.Err())
	}
}

// Export writes the session's workbook in format to w and returns the
// suggested download filename. Single-sheet formats receive only the
// active sheet.
func (s *Service) Export(ctx context.Context, id, format string, w io.Writer) (string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	multi := s.exporter.MultiSheet(format)

	var sheets []grid.SheetData
	err := s.withSession(ctx, id, func(sess *session) error {
		if multi {
			sheets = sess.wb.Sheets()
		} else {
			sheets = []grid.SheetData{sess.wb.ActiveSheet()}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if err := s.exporter.Export(w, format, sheets); err != nil {
		return "", err
	}

	filename := "Workbook." + format
	if !multi {
		filename = sheets[0].Name + "." + format
	}
	s.audit.Log(ctx, AuditLogParams{
		Action:    AuditExport,
		SessionID: id,
		Sheet:     sheets[0].Name,
		Detail:    filename,
	})
	return filename, nil
}

// Audit returns up to limit recent audit entries of a session, newest first.
func (s *Service) Audit(ctx context.Context, id string, limit int) ([]AuditEntry, error) {
	if err := s.withSession(ctx, id, func(*session) error { return nil }); err != nil {
		return nil, err
	}
	return s.audit.Recent(id, limit), nil
}

// CloseSession discards a session and its persisted state.
func (s *Service) CloseSession(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sess.mu.Lock()
		sess.evicted = true
		sess.mu.Unlock()
	}

	if s.store != nil {
		if err := s.store.Delete(ctx, id); err != nil {
			if !ok || !errors.Is(err, ErrSessionNotFound) {
				return err
			}
		}
	} else if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.audit.Log(ctx, AuditLogParams{Action: AuditSessionClose, SessionID: id})
	s.audit.Forget(id)
	return nil
}

// SessionCount returns the number of sessions held in memory.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ImportStatus reports import concurrency.
func (s *Service) ImportStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until no import is being decoded or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func (s *Service) liveSessions() []*session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

// save persists a dirty session. Caller holds sess.mu.
func (s *Service) save(ctx context.Context, sess *session) error {
	if s.store == nil || !sess.dirty {
		return nil
	}
	if err := s.store.Save(ctx, sess.id, sess.wb.State()); err != nil {
		return fmt.Errorf("save session %s: %w", sess.id, err)
	}
	sess.dirty = false
	return nil
}

// FlushAll saves every dirty session.
func (s *Service) FlushAll(ctx context.Context) error {
	var errs []error
	saved := 0
	for _, sess := range s.liveSessions() {
		sess.mu.Lock()
		wasDirty := sess.dirty && !sess.evicted
		var err error
		if wasDirty {
			err = s.save(ctx, sess)
		}
		sess.mu.Unlock()

		if err != nil {
			errs = append(errs, err)
		} else if wasDirty && s.store != nil {
			saved++
		}
	}
	if saved > 0 {
		slog.Debug("sessions flushed", "saved", saved)
	}
	return errors.Join(errs...)
}
