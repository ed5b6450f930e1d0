package core

import (
	"context"
	"io"
	"time"

	"github.com/JonMunkholm/sheets/internal/grid"
)

// SessionStore persists workbook state between requests and restarts.
// Load returns an error wrapping ErrSessionNotFound for unknown ids.
type SessionStore interface {
	Save(ctx context.Context, id string, state WorkbookState) error
	Load(ctx context.Context, id string) (WorkbookState, error)
	Delete(ctx context.Context, id string) error
}

// Purger is implemented by stores that can drop sessions not saved since
// a point in time.
type Purger interface {
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// Importer decodes an uploaded file into sheets. The filename extension
// selects the format.
type Importer interface {
	Import(filename string, r io.Reader) ([]grid.SheetData, error)
}

// Exporter encodes sheets in the named format.
type Exporter interface {
	Export(w io.Writer, format string, sheets []grid.SheetData) error
	// MultiSheet reports whether format keeps every sheet. Single-sheet
	// formats receive only the active sheet.
	MultiSheet(format string) bool
}
