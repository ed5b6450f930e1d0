package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/JonMunkholm/sheets/internal/logging"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 8 << 20

// readUpload returns the name and content of multipart field "file",
// enforcing the configured size limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	limit := s.cfg.Import.MaxFileSize
	if r.ContentLength > limit {
		return "", nil, &http.MaxBytesError{Limit: limit}
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return "", nil, errNoFile
	}
	if err != nil {
		return "", nil, fmt.Errorf("parse upload: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil, errNoFile
	}
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return filepath.Base(header.Filename), data, nil
}

// handleImport replaces a session's workbook with an uploaded file.
// The file is sent as multipart field "file"; the format comes from its
// extension.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx, id := requestContext(r)

	filename, data, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	importLog := logging.WithFields(ctx, "file", filename, "size", len(data))
	importLog.Info("import started")

	snap, err := s.service.Import(ctx, id, filename, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	importLog.Info("import completed", "sheets", len(snap.Sheets))
	s.respondSnapshot(w, r, id, snap, http.StatusOK)
}

// handlePreviewImport decodes an uploaded file and reports its sheets
// without importing it. Query: ?rows=N sample rows per sheet.
func (s *Server) handlePreviewImport(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r, "")

	filename, data, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	preview, err := s.service.PreviewImport(ctx, filename, data, parseIntParam(r, "rows", 0))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}
