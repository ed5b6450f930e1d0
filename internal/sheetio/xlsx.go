package sheetio

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/sheets/internal/grid"
	"github.com/xuri/excelize/v2"
)

// maxSheetNameLen is the longest sheet name Excel accepts.
const maxSheetNameLen = 31

const defaultXMLSizeLimit = 16 << 20

func decodeXLSX(r io.Reader, opts Options) ([]grid.SheetData, error) {
	openOpts := excelize.Options{RawCellValue: true}
	if opts.MaxUnzipSize > 0 {
		openOpts.UnzipSizeLimit = opts.MaxUnzipSize
		openOpts.UnzipXMLSizeLimit = min(opts.MaxUnzipSize, defaultXMLSizeLimit)
	}

	f, err := excelize.OpenReader(r, openOpts)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names := f.GetSheetList()
	sheets := make([]grid.SheetData, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		sheets = append(sheets, grid.SheetData{Name: name, Rows: rows})
	}
	return sheets, nil
}

func encodeXLSX(w io.Writer, sheets []grid.SheetData) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	names := excelSheetNames(sheets)
	for i, s := range sheets {
		name := names[i]
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}

		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			row = trimTrailingBlank(row)
			if len(row) == 0 {
				continue
			}
			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return fmt.Errorf("sheet %q row %d: %w", name, r+1, err)
			}
		}
	}
	f.SetActiveSheet(0)

	return f.Write(w)
}

// excelSheetNames returns a valid, case-insensitively unique Excel sheet
// name for every sheet, keeping the original names where possible.
func excelSheetNames(sheets []grid.SheetData) []string {
	names := make([]string, len(sheets))
	used := make(map[string]bool, len(sheets))

	for i, s := range sheets {
		base := sanitizeSheetName(s.Name)
		if base == "" {
			base = fmt.Sprintf("Sheet%d", i+1)
		}
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			name = truncateRunes(base, maxSheetNameLen-len(suffix)) + suffix
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func sanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(strings.TrimSpace(name), "'")
	return truncateRunes(name, maxSheetNameLen)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// ColumnName returns the spreadsheet letter label of a zero-based column:
// 0 is "A", 26 is "AA".
func ColumnName(col int) string {
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return strconv.Itoa(col + 1)
	}
	return name
}
