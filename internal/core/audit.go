package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/sheets/internal/logging"
	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	AuditSessionCreate AuditAction = "session_create"
	AuditSessionClose  AuditAction = "session_close"
	AuditSessionExpire AuditAction = "session_expire"
	AuditCellEdit      AuditAction = "cell_edit"
	AuditSheetAdd      AuditAction = "sheet_add"
	AuditStructure     AuditAction = "structure_change"
	AuditSort          AuditAction = "sort"
	AuditReset         AuditAction = "reset"
	AuditImport        AuditAction = "import"
	AuditExport        AuditAction = "export"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID           string        `json:"id"`
	Action       AuditAction   `json:"action"`
	Severity     AuditSeverity `json:"severity"`
	SessionID    string        `json:"sessionId"`
	IPAddress    string        `json:"ipAddress,omitempty"`
	UserAgent    string        `json:"userAgent,omitempty"`
	Sheet        string        `json:"sheet,omitempty"`
	Detail       string        `json:"detail,omitempty"`
	OldValue     string        `json:"oldValue,omitempty"`
	NewValue     string        `json:"newValue,omitempty"`
	RowsAffected int           `json:"rowsAffected,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// AuditLogParams contains parameters for creating an audit log entry.
type AuditLogParams struct {
	Action       AuditAction
	SessionID    string
	Sheet        string
	Detail       string
	OldValue     string
	NewValue     string
	RowsAffected int
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case AuditImport, AuditStructure:
		return SeverityHigh
	case AuditReset, AuditSessionClose:
		return SeverityCritical
	case AuditSessionCreate, AuditSessionExpire, AuditExport, AuditSheetAdd:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// DefaultAuditRetain is the number of entries kept per session when the
// configured value is not positive.
const DefaultAuditRetain = 200

// AuditLog writes audit records to the structured log and keeps the most
// recent entries of each session in memory.
type AuditLog struct {
	retain int
	now    func() time.Time

	mu      sync.Mutex
	entries map[string][]AuditEntry
}

// NewAuditLog keeps up to retain entries per session.
func NewAuditLog(retain int) *AuditLog {
	if retain <= 0 {
		retain = DefaultAuditRetain
	}
	return &AuditLog{
		retain:  retain,
		now:     time.Now,
		entries: make(map[string][]AuditEntry),
	}
}

// Log records an entry. Client details are taken from ctx.
func (a *AuditLog) Log(ctx context.Context, params AuditLogParams) AuditEntry {
	entry := AuditEntry{
		ID:           uuid.NewString(),
		Action:       params.Action,
		Severity:     determineSeverity(params.Action),
		SessionID:    params.SessionID,
		IPAddress:    IPAddressFromContext(ctx),
		UserAgent:    UserAgentFromContext(ctx),
		Sheet:        params.Sheet,
		Detail:       params.Detail,
		OldValue:     params.OldValue,
		NewValue:     params.NewValue,
		RowsAffected: params.RowsAffected,
		CreatedAt:    a.now().UTC(),
	}

	level := slog.LevelInfo
	if entry.Severity == SeverityCritical {
		level = slog.LevelWarn
	}
	attrs := []slog.Attr{
		slog.String("audit_id", entry.ID),
		slog.String("action", string(entry.Action)),
		slog.String("severity", string(entry.Severity)),
		slog.String("ip", entry.IPAddress),
		slog.String("sheet", entry.Sheet),
		slog.String("detail", entry.Detail),
		slog.Int("rows_affected", entry.RowsAffected),
	}
	if logging.SessionFromContext(ctx) != entry.SessionID {
		attrs = append(attrs, slog.String("session_id", entry.SessionID))
	}
	logging.FromContext(ctx).LogAttrs(ctx, level, "audit", attrs...)

	a.mu.Lock()
	list := append(a.entries[entry.SessionID], entry)
	if len(list) > a.retain {
		list = list[len(list)-a.retain:]
	}
	a.entries[entry.SessionID] = list
	a.mu.Unlock()

	return entry
}

// Recent returns up to limit entries for a session, newest first.
func (a *AuditLog) Recent(sessionID string, limit int) []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	list := a.entries[sessionID]
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]AuditEntry, 0, limit)
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, list[i])
	}
	return out
}

// Forget drops the retained entries of a session.
func (a *AuditLog) Forget(sessionID string) {
	a.mu.Lock()
	delete(a.entries, sessionID)
	a.mu.Unlock()
}

// Prune drops the entries of sessions not in live whose newest entry is
// older than before, and returns how many sessions were dropped.
func (a *AuditLog) Prune(before time.Time, live map[string]bool) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	pruned := 0
	for id, list := range a.entries {
		if live[id] || len(list) == 0 || !list[len(list)-1].CreatedAt.Before(before) {
			continue
		}
		delete(a.entries, id)
		pruned++
	}
	return pruned
}

// SessionCount returns how many sessions have retained entries.
func (a *AuditLog) SessionCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// auditParamsFor describes a successful action for the audit log.
// Pure navigation actions are not audited.
func auditParamsFor(a Action, sheet string) (AuditLogParams, bool) {
	p := AuditLogParams{Sheet: sheet, Detail: string(a.Kind)}
	switch a.Kind {
	case ActionSetCell:
		p.Action = AuditCellEdit
		p.NewValue = a.Value
		p.RowsAffected = 1
	case ActionAddSheet:
		p.Action = AuditSheetAdd
	case ActionReset:
		p.Action = AuditReset
	case ActionInsertRowAbove, ActionInsertRowBelow, ActionDeleteRow,
		ActionInsertColumnLeft, ActionInsertColumnRight, ActionDeleteColumn:
		p.Action = AuditStructure
		p.RowsAffected = 1
	case ActionSortRow, ActionSortColumn:
		p.Action = AuditSort
	default:
		return AuditLogParams{}, false
	}
	return p, true
}
