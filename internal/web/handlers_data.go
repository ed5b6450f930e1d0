package web

import (
	"bytes"
	"mime"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/sheets/internal/sheetio"
)

// defaultExportFormat keeps every sheet, like the editor's Download button.
const defaultExportFormat = "xlsx"

// handleListFormats returns the registered file formats.
func (s *Server) handleListFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sheetio.Formats())
}

// handleExport downloads the session's workbook. The file is built in
// memory first so an encoding error can still be reported cleanly.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx, id := requestContext(r)

	format := r.URL.Query().Get("format")
	if format == "" {
		format = defaultExportFormat
	}

	var buf bytes.Buffer
	filename, err := s.service.Export(ctx, id, format, &buf)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", sheetio.ContentType(format))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// handleImportStatus returns the current state of the import limiter.
// Used for monitoring and to check if the system can accept more imports.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ImportStatus())
}
