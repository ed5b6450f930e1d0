package core

import (
	"context"
	"path/filepath"

	"github.com/JonMunkholm/sheets/internal/grid"
	"github.com/JonMunkholm/sheets/internal/logging"
)

// DefaultPreviewRows is how many leading rows of each sheet a preview carries.
const DefaultPreviewRows = 10

// SheetPreview summarizes one sheet of a file as it would be imported.
type SheetPreview struct {
	Name     string     `json:"name"`
	RowCount int        `json:"rowCount"`
	ColCount int        `json:"colCount"`
	Sample   [][]string `json:"sample"`
}

// ImportPreview is the result of decoding a file without importing it.
type ImportPreview struct {
	Filename         string         `json:"filename"`
	Sheets           []SheetPreview `json:"sheets"`
	ProcessingTimeMs int64          `json:"processingTimeMs"`
}

// PreviewImport decodes data the same way Import does and reports the
// sheets it would produce. No session is read or changed. sampleRows <= 0
// selects DefaultPreviewRows. Previews never queue: when every import slot
// is busy they fail with ErrTooManyImports.
func (s *Service) PreviewImport(ctx context.Context, filename string, data []byte, sampleRows int) (ImportPreview, error) {
	if sampleRows <= 0 {
		sampleRows = DefaultPreviewRows
	}
	start := s.now()

	sheets, err := s.decode(ctx, filename, data, false)
	if err != nil {
		return ImportPreview{}, err
	}
	if len(sheets) == 0 {
		return ImportPreview{}, ErrNoSheets
	}

	preview := ImportPreview{
		Filename: filepath.Base(filename),
		Sheets:   make([]SheetPreview, len(sheets)),
	}
	for i, sh := range sheets {
		// Same padding rules as an import.
		g := grid.FromData(sh)
		rows := g.Rows()
		preview.Sheets[i] = SheetPreview{
			Name:     g.Name,
			RowCount: g.RowCount(),
			ColCount: g.ColCount(),
			Sample:   rows[:min(len(rows), sampleRows)],
		}
	}
	preview.ProcessingTimeMs = s.now().Sub(start).Milliseconds()

	logging.FromContext(ctx).Debug("import previewed",
		"file", preview.Filename,
		"sheets", len(preview.Sheets),
		"duration_ms", preview.ProcessingTimeMs,
	)
	return preview, nil
}
