package sheetio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/sheets/internal/grid"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// csvSheetName is the name given to the single sheet of a CSV file.
const csvSheetName = "Sheet1"

// csvDecoder returns the text decoder for a charset name. A UTF-8 or
// UTF-16 byte order mark always wins over the configured charset.
func csvDecoder(charset string) (transform.Transformer, error) {
	var fallback encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		fallback = unicode.UTF8
	case "windows-1252", "cp1252":
		fallback = charmap.Windows1252
	case "iso-8859-1", "latin1":
		fallback = charmap.ISO8859_1
	default:
		return nil, fmt.Errorf("unknown csv charset %q", charset)
	}
	return unicode.BOMOverride(fallback.NewDecoder()), nil
}

func decodeCSV(r io.Reader, opts Options) ([]grid.SheetData, error) {
	dec, err := csvDecoder(opts.CSVCharset)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return []grid.SheetData{{Name: csvSheetName, Rows: rows}}, nil
}

// encodeCSV writes the first sheet. CSV has no notion of multiple sheets.
func encodeCSV(w io.Writer, sheets []grid.SheetData) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}
	cw := csv.NewWriter(w)
	for _, row := range sheets[0].Rows {
		// A lone empty field would be written as a blank line, which
		// readers skip.
		if len(row) == 1 && row[0] == "" {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "\"\"\n"); err != nil {
				return err
			}
			continue
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
