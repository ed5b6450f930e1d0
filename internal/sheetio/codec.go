package sheetio

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/JonMunkholm/sheets/internal/grid"
)

// Codec decodes uploads and encodes downloads by format name.
type Codec struct {
	opts Options
}

// NewCodec returns a Codec using opts for every import.
func NewCodec(opts Options) *Codec {
	return &Codec{opts: opts}
}

// Import decodes r, choosing the format from filename's extension.
func (c *Codec) Import(filename string, r io.Reader) ([]grid.SheetData, error) {
	ext := filepath.Ext(filename)
	f, ok := Lookup(ext)
	if !ok || !f.CanImport {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	sheets, err := f.decode(r, c.opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", f.Name, ErrUnreadable, err)
	}
	return sheets, nil
}

// Export encodes sheets in the named format.
func (c *Codec) Export(w io.Writer, format string, sheets []grid.SheetData) error {
	f, ok := Lookup(format)
	if !ok || !f.CanExport {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := f.encode(w, sheets); err != nil {
		return fmt.Errorf("write %s: %w", f.Name, err)
	}
	return nil
}

// MultiSheet reports whether format keeps every sheet of a workbook.
func (c *Codec) MultiSheet(format string) bool {
	f, ok := Lookup(format)
	return ok && f.MultiSheet
}

// ContentType returns the MIME type for format, or a generic binary type.
func ContentType(format string) string {
	if f, ok := Lookup(format); ok {
		return f.ContentType
	}
	return "application/octet-stream"
}
