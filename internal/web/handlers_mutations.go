package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/sheets/internal/core"
)

// maxActionBody bounds the JSON body of one action. Cell values are the
// only free-form field.
const maxActionBody = 1 << 20

// handleCreateSession starts a session and returns its workbook.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r, "")
	id, snap, err := s.service.CreateSession(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+id)
	writeJSON(w, http.StatusCreated, SessionResponse{SessionID: id, Workbook: snap})
}

// handleGetSession returns the workbook of a session.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx, id := requestContext(r)
	snap, err := s.service.Snapshot(ctx, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{SessionID: id, Workbook: snap})
}

// handleCloseSession discards a session.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	ctx, id := requestContext(r)
	if err := s.service.CloseSession(ctx, id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleApplyAction applies one JSON-encoded action and returns the
// resulting workbook.
func (s *Server) handleApplyAction(w http.ResponseWriter, r *http.Request) {
	ctx, id := requestContext(r)

	var action core.Action
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&action); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	snap, err := s.service.Apply(ctx, id, action)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondSnapshot(w, r, id, snap, http.StatusOK)
}
