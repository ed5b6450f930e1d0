package sheetio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/JonMunkholm/sheets/internal/grid"
	"github.com/extrame/xls"
)

// decodeXLS reads a legacy BIFF workbook. The parser panics on some
// malformed files; those are reported as unreadable.
func decodeXLS(r io.Reader, opts Options) (sheets []grid.SheetData, err error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		rs = bytes.NewReader(data)
	}

	defer func() {
		if p := recover(); p != nil {
			sheets, err = nil, fmt.Errorf("unreadable xls file: %v", p)
		}
	}()

	wb, err := xls.OpenReader(rs, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("unreadable xls file: %w", err)
	}

	n := wb.NumSheets()
	sheets = make([]grid.SheetData, 0, n)
	for i := 0; i < n; i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			sheets = append(sheets, grid.SheetData{Name: fmt.Sprintf("Sheet%d", i+1)})
			continue
		}
		sheets = append(sheets, grid.SheetData{Name: ws.Name, Rows: xlsRows(ws)})
	}
	return sheets, nil
}

func xlsRows(ws *xls.WorkSheet) [][]string {
	rows := make([][]string, 0, int(ws.MaxRow)+1)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		var cells []string
		for c := 0; c <= row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, trimTrailingBlank(cells))
	}
	return rows
}

func trimTrailingBlank(cells []string) []string {
	n := len(cells)
	for n > 0 && cells[n-1] == "" {
		n--
	}
	return cells[:n]
}
