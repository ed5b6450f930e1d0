// Package templates renders the editor's HTML as templ components.
//
// Edit the .templ files and run `templ generate`; the _templ.go files are
// generated and committed.
package templates

import (
	"strconv"
	"strings"

	"github.com/JonMunkholm/sheets/internal/core"
	"github.com/JonMunkholm/sheets/internal/sheetio"
)

// FormatOption is a file format offered in the toolbar.
type FormatOption struct {
	Name  string
	Label string
}

// EditorParams holds the data for the editor page.
type EditorParams struct {
	Workbook WorkbookParams
	Imports  []FormatOption
	Exports  []FormatOption
}

// WorkbookParams holds the data for the workbook partial.
type WorkbookParams struct {
	SessionID string
	Snapshot  core.Snapshot
}

// acceptList builds a file input accept value such as ".csv,.xlsx".
func acceptList(formats []FormatOption) string {
	exts := make([]string, len(formats))
	for i, f := range formats {
		exts[i] = "." + f.Name
	}
	return strings.Join(exts, ",")
}

type menuItem struct {
	action core.ActionKind
	label  string
}

var rowMenu = []menuItem{
	{core.ActionInsertRowAbove, "Insert row above"},
	{core.ActionInsertRowBelow, "Insert row below"},
	{core.ActionDeleteRow, "Delete row"},
	{core.ActionSortRow, "Sort row"},
}

var columnMenu = []menuItem{
	{core.ActionInsertColumnLeft, "Insert column left"},
	{core.ActionInsertColumnRight, "Insert column right"},
	{core.ActionDeleteColumn, "Delete column"},
	{core.ActionSortColumn, "Sort column"},
}

func rowSelected(snap core.Snapshot, r int) bool {
	row, ok := snap.Selection.Row()
	return ok && row == r
}

func columnSelected(snap core.Snapshot, c int) bool {
	col, ok := snap.Selection.Column()
	return ok && col == c
}

// cellSelected reports whether cell (r, c) lies in the selected row or column.
func cellSelected(snap core.Snapshot, r, c int) bool {
	return rowSelected(snap, r) || columnSelected(snap, c)
}

// cellLabel is the spreadsheet address of a cell, such as "B3".
func cellLabel(r, c int) string {
	return sheetio.ColumnName(c) + strconv.Itoa(r+1)
}
