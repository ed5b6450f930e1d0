package web

// This file contains shared utilities used across handlers.

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/sheets/internal/core"
	"github.com/JonMunkholm/sheets/internal/sheetio"
	"github.com/JonMunkholm/sheets/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// requestContext returns the session id from the URL and a context carrying
// the request metadata for audit logging.
func requestContext(r *http.Request) (context.Context, string) {
	id := chi.URLParam(r, "sessionID")
	return WithRequestMetadata(r.Context(), r, id), id
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// SessionResponse is the JSON form of a session's workbook.
type SessionResponse struct {
	SessionID string        `json:"sessionId"`
	Workbook  core.Snapshot `json:"workbook"`
}

// respondSnapshot writes the workbook as JSON for API clients and as the
// workbook fragment for the editor page.
func (s *Server) respondSnapshot(w http.ResponseWriter, r *http.Request, id string, snap core.Snapshot, status int) {
	if isAPI(r) {
		writeJSON(w, status, SessionResponse{SessionID: id, Workbook: snap})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Workbook(templates.WorkbookParams{SessionID: id, Snapshot: snap}).Render(r.Context(), w); err != nil {
		logRenderError(r, err)
	}
}

// formatOptions splits the registered formats into import and export lists.
func formatOptions() (imports, exports []templates.FormatOption) {
	for _, f := range sheetio.Formats() {
		opt := templates.FormatOption{Name: f.Name, Label: f.Label}
		if f.CanImport {
			imports = append(imports, opt)
		}
		if f.CanExport {
			exports = append(exports, opt)
		}
	}
	return imports, exports
}
