package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/sheets/internal/core"
	"github.com/JonMunkholm/sheets/internal/logging"
	"github.com/JonMunkholm/sheets/internal/web/templates"
)

// handleIndex starts a new session and redirects to its editor.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r, "")
	id, _, err := s.service.CreateSession(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, "/s/"+id, http.StatusSeeOther)
}

// handleEditor renders the editor page of a session. Unknown sessions
// start over with a new one.
func (s *Server) handleEditor(w http.ResponseWriter, r *http.Request) {
	ctx, id := requestContext(r)
	snap, err := s.service.Snapshot(ctx, id)
	if errors.Is(err, core.ErrSessionNotFound) {
		logging.FromContext(ctx).Info("unknown session, starting a new one")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	imports, exports := formatOptions()
	params := templates.EditorParams{
		Workbook: templates.WorkbookParams{SessionID: id, Snapshot: snap},
		Imports:  imports,
		Exports:  exports,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.EditorPage(params).Render(r.Context(), w); err != nil {
		logRenderError(r, err)
	}
}

// handleGridPartial renders the workbook fragment for in-page refresh.
func (s *Server) handleGridPartial(w http.ResponseWriter, r *http.Request) {
	ctx, id := requestContext(r)
	snap, err := s.service.Snapshot(ctx, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondSnapshot(w, r, id, snap, http.StatusOK)
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status   string                   `json:"status"`
	Sessions int                      `json:"sessions"`
	Imports  core.ImportLimiterStatus `json:"imports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Sessions: s.service.SessionCount(),
		Imports:  s.service.ImportStatus(),
	})
}

func logRenderError(r *http.Request, err error) {
	logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
}
