package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/sheets/internal/core"
	"github.com/JonMunkholm/sheets/internal/grid"
	"github.com/JonMunkholm/sheets/internal/sheetio"
)

// loadWorkbook reads path into a workbook. The first sheet is active.
func loadWorkbook(codec *sheetio.Codec, path string) (*core.Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets, err := codec.Import(filepath.Base(path), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	wb := core.NewWorkbook()
	if err := wb.ImportSheets(sheets); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("workbook loaded", "file", path, "sheets", wb.SheetCount())
	return wb, nil
}

// outputFormat returns the export format implied by path's extension.
func outputFormat(path string) (sheetio.Format, error) {
	ext := filepath.Ext(path)
	f, ok := sheetio.Lookup(ext)
	if !ok || !f.CanExport {
		return sheetio.Format{}, fmt.Errorf("%w: %q", sheetio.ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// saveWorkbook writes wb to path in the format named by its extension.
// Single-sheet formats receive the active sheet.
func saveWorkbook(codec *sheetio.Codec, wb *core.Workbook, path string) error {
	f, err := outputFormat(path)
	if err != nil {
		return err
	}
	sheets := []grid.SheetData{wb.ActiveSheet()}
	if f.MultiSheet {
		sheets = wb.Sheets()
	}
	return writeSheets(codec, f.Name, sheets, path)
}

// writeSheets encodes sheets into a temporary file next to path and renames
// it into place, so a failed write never leaves a truncated file.
func writeSheets(codec *sheetio.Codec, format string, sheets []grid.SheetData, path string) error {
	var buf bytes.Buffer
	if err := codec.Export(&buf, format, sheets); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := buf.WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	slog.Debug("file written", "file", path, "format", format, "sheets", len(sheets))
	return nil
}
