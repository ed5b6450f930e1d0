// Package sheetio reads and writes workbooks in spreadsheet file formats.
//
// Formats are registered by file extension. Each format decodes a file into
// an ordered list of sheets of raw cell text, and may encode sheets back.
// Cells are always treated as text; no formulas or styles are carried.
package sheetio

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/JonMunkholm/sheets/internal/grid"
)

// ErrUnsupportedFormat is returned for unknown extensions and for formats
// that cannot be written.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrUnreadable wraps every decoding failure of a supported format.
var ErrUnreadable = errors.New("unreadable file")

// Options tune decoding.
type Options struct {
	// CSVCharset is the encoding of imported CSV files: "utf-8",
	// "windows-1252" or "iso-8859-1".
	CSVCharset string
	// MaxUnzipSize caps the uncompressed size of xlsx archives. Zero keeps
	// the library default.
	MaxUnzipSize int64
}

// Format describes one file format.
type Format struct {
	Name        string `json:"name"` // extension without dot
	Label       string `json:"label"`
	ContentType string `json:"contentType"`
	MultiSheet  bool   `json:"multiSheet"`
	CanImport   bool   `json:"canImport"`
	CanExport   bool   `json:"canExport"`

	decode func(r io.Reader, opts Options) ([]grid.SheetData, error)
	encode func(w io.Writer, sheets []grid.SheetData) error
}

var (
	registry   = make(map[string]Format)
	registryMu sync.RWMutex
)

// register adds a format. Panics if the name is already registered.
func register(f Format) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[f.Name]; exists {
		panic(fmt.Sprintf("format already registered: %s", f.Name))
	}
	f.CanImport = f.decode != nil
	f.CanExport = f.encode != nil
	registry[f.Name] = f
}

// Lookup returns the format for an extension, with or without the dot.
func Lookup(name string) (Format, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	f, ok := registry[normalize(name)]
	return f, ok
}

// Formats returns all registered formats sorted by name.
func Formats() []Format {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Format, 0, len(registry))
	for _, f := range registry {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
}

func init() {
	register(Format{
		Name:        "xlsx",
		Label:       "Excel Workbook",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		MultiSheet:  true,
		decode:      decodeXLSX,
		encode:      encodeXLSX,
	})
	register(Format{
		Name:        "xlsm",
		Label:       "Excel Macro-Enabled Workbook",
		ContentType: "application/vnd.ms-excel.sheet.macroEnabled.12",
		MultiSheet:  true,
		decode:      decodeXLSX,
	})
	register(Format{
		Name:        "xls",
		Label:       "Excel 97-2003 Workbook",
		ContentType: "application/vnd.ms-excel",
		MultiSheet:  true,
		decode:      decodeXLS,
	})
	register(Format{
		Name:        "csv",
		Label:       "Comma-Separated Values",
		ContentType: "text/csv; charset=utf-8",
		decode:      decodeCSV,
		encode:      encodeCSV,
	})
}
