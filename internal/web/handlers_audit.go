package web

import (
	"net/http"

	"github.com/JonMunkholm/sheets/internal/core"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditResponse lists recent audit entries of a session, newest first.
type AuditResponse struct {
	SessionID string            `json:"sessionId"`
	Entries   []core.AuditEntry `json:"entries"`
}

// handleAuditLog returns the session's recent audit entries.
// Query: ?limit=N (default 50, max 500).
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	ctx, id := requestContext(r)

	limit := min(parseIntParam(r, "limit", defaultAuditLimit), maxAuditLimit)
	entries, err := s.service.Audit(ctx, id, limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []core.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, AuditResponse{SessionID: id, Entries: entries})
}
