package core

import (
	"fmt"

	"github.com/JonMunkholm/sheets/internal/grid"
)

// Dimensions and name of a freshly created sheet.
const (
	DefaultRows      = 35
	DefaultCols      = 15
	DefaultSheetName = "Sheet1"
)

// SelectionKind says whether a row, a column or nothing is selected.
type SelectionKind string

const (
	SelectNone   SelectionKind = ""
	SelectRow    SelectionKind = "row"
	SelectColumn SelectionKind = "column"
)

// Selection is the row or column targeted by the next structural operation.
// At most one of the two is ever set.
type Selection struct {
	Kind  SelectionKind `json:"kind,omitempty"`
	Index int           `json:"index"`
}

// Row returns the selected row index, if a row is selected.
func (s Selection) Row() (int, bool) {
	return s.Index, s.Kind == SelectRow
}

// Column returns the selected column index, if a column is selected.
func (s Selection) Column() (int, bool) {
	return s.Index, s.Kind == SelectColumn
}

// Workbook is an ordered list of sheets, the active sheet pointer and the
// interaction state of one editing session (selection and edit mode).
//
// A Workbook always holds at least one sheet and its active index is always
// valid. Methods that fail leave the Workbook unchanged. A Workbook is not
// safe for concurrent use; the Service serializes access per session.
type Workbook struct {
	sheets    []*grid.Grid
	active    int
	selection Selection
	editable  bool
}

// NewWorkbook returns a workbook with one blank default sheet, in edit mode.
func NewWorkbook() *Workbook {
	return &Workbook{
		sheets:   []*grid.Grid{newDefaultSheet(DefaultSheetName)},
		editable: true,
	}
}

func newDefaultSheet(name string) *grid.Grid {
	return grid.New(name, DefaultRows, DefaultCols)
}

// Reset discards every sheet and restores a single blank "Sheet1".
// Selection is cleared and edit mode is switched off.
func (w *Workbook) Reset() {
	w.sheets = []*grid.Grid{newDefaultSheet(DefaultSheetName)}
	w.active = 0
	w.selection = Selection{}
	w.editable = false
}

// ImportSheets replaces the whole workbook with the given sheets and makes
// the first one active. Ragged rows are padded; see grid.FromRows.
func (w *Workbook) ImportSheets(sheets []grid.SheetData) error {
	if len(sheets) == 0 {
		return ErrNoSheets
	}
	grids := make([]*grid.Grid, len(sheets))
	for i, s := range sheets {
		grids[i] = grid.FromData(s)
	}
	w.sheets = grids
	w.active = 0
	w.selection = Selection{}
	return nil
}

// AddSheet appends a blank sheet named "Sheet<N+1>", where N is the current
// sheet count, and switches to it. Names are not checked for uniqueness.
func (w *Workbook) AddSheet() string {
	name := fmt.Sprintf("Sheet%d", len(w.sheets)+1)
	w.sheets = append(w.sheets, newDefaultSheet(name))
	w.active = len(w.sheets) - 1
	w.selection = Selection{}
	return name
}

// SetActiveSheet switches the active sheet and clears the selection.
func (w *Workbook) SetActiveSheet(index int) error {
	if err := grid.CheckIndex(grid.AxisSheet, index, len(w.sheets)); err != nil {
		return err
	}
	w.active = index
	w.selection = Selection{}
	return nil
}

// SheetCount returns the number of sheets.
func (w *Workbook) SheetCount() int { return len(w.sheets) }

// ActiveIndex returns the index of the active sheet.
func (w *Workbook) ActiveIndex() int { return w.active }

// SheetNames returns the sheet names in display order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.sheets))
	for i, g := range w.sheets {
		names[i] = g.Name
	}
	return names
}

// ActiveName returns the name of the active sheet.
func (w *Workbook) ActiveName() string { return w.current().Name }

// Cell returns one value of the active sheet.
func (w *Workbook) Cell(row, col int) (string, error) {
	return w.current().Cell(row, col)
}

// ActiveSheet returns a copy of the active sheet.
func (w *Workbook) ActiveSheet() grid.SheetData {
	return w.sheets[w.active].Data()
}

// Sheets returns copies of all sheets in order.
func (w *Workbook) Sheets() []grid.SheetData {
	out := make([]grid.SheetData, len(w.sheets))
	for i, g := range w.sheets {
		out[i] = g.Data()
	}
	return out
}

func (w *Workbook) current() *grid.Grid {
	return w.sheets[w.active]
}

// Editable reports whether edit mode is on.
func (w *Workbook) Editable() bool { return w.editable }

// SetEditable switches edit mode.
func (w *Workbook) SetEditable(on bool) { w.editable = on }

// SetCell replaces one value of the active sheet. It does not consult the
// edit mode flag; callers that expose editing decide that.
func (w *Workbook) SetCell(row, col int, value string) error {
	return w.current().SetCell(row, col, value)
}

// Selection returns the current selection.
func (w *Workbook) Selection() Selection { return w.selection }

// SelectRow targets row r of the active sheet and clears any column selection.
func (w *Workbook) SelectRow(r int) error {
	if err := grid.CheckIndex(grid.AxisRow, r, w.current().RowCount()); err != nil {
		return err
	}
	w.selection = Selection{Kind: SelectRow, Index: r}
	return nil
}

// SelectColumn targets column c of the active sheet and clears any row selection.
func (w *Workbook) SelectColumn(c int) error {
	if err := grid.CheckIndex(grid.AxisColumn, c, w.current().ColCount()); err != nil {
		return err
	}
	w.selection = Selection{Kind: SelectColumn, Index: c}
	return nil
}

// ClearSelection drops the current selection.
func (w *Workbook) ClearSelection() { w.selection = Selection{} }

func (w *Workbook) selectedRow() (int, error) {
	r, ok := w.selection.Row()
	if !ok {
		return 0, ErrNoRowSelected
	}
	return r, nil
}

func (w *Workbook) selectedColumn() (int, error) {
	c, ok := w.selection.Column()
	if !ok {
		return 0, ErrNoColumnSelected
	}
	return c, nil
}

// rowOp applies fn to the selected row plus offset and consumes the selection.
func (w *Workbook) rowOp(offset int, fn func(g *grid.Grid, at int) error) error {
	r, err := w.selectedRow()
	if err != nil {
		return err
	}
	if err := fn(w.current(), r+offset); err != nil {
		return err
	}
	w.selection = Selection{}
	return nil
}

func (w *Workbook) columnOp(offset int, fn func(g *grid.Grid, at int) error) error {
	c, err := w.selectedColumn()
	if err != nil {
		return err
	}
	if err := fn(w.current(), c+offset); err != nil {
		return err
	}
	w.selection = Selection{}
	return nil
}

// InsertRowAbove inserts a blank row at the selected row.
func (w *Workbook) InsertRowAbove() error {
	return w.rowOp(0, (*grid.Grid).InsertRow)
}

// InsertRowBelow inserts a blank row after the selected row.
func (w *Workbook) InsertRowBelow() error {
	return w.rowOp(1, (*grid.Grid).InsertRow)
}

// DeleteRow removes the selected row. The last row of a sheet is kept and
// grid.ErrLastRow is returned.
func (w *Workbook) DeleteRow() error {
	return w.rowOp(0, (*grid.Grid).DeleteRow)
}

// InsertColumnLeft inserts a blank column at the selected column.
func (w *Workbook) InsertColumnLeft() error {
	return w.columnOp(0, (*grid.Grid).InsertColumn)
}

// InsertColumnRight inserts a blank column after the selected column.
func (w *Workbook) InsertColumnRight() error {
	return w.columnOp(1, (*grid.Grid).InsertColumn)
}

// DeleteColumn removes the selected column. The last column of a sheet is
// kept and grid.ErrLastColumn is returned.
func (w *Workbook) DeleteColumn() error {
	return w.columnOp(0, (*grid.Grid).DeleteColumn)
}

// SortRow sorts the values of the selected row. The selection is kept.
func (w *Workbook) SortRow() error {
	r, err := w.selectedRow()
	if err != nil {
		return err
	}
	return w.current().SortRow(r)
}

// SortColumn sorts the values of the selected column. The selection is kept.
func (w *Workbook) SortColumn() error {
	c, err := w.selectedColumn()
	if err != nil {
		return err
	}
	return w.current().SortColumn(c)
}

// SheetSnapshot is a read-only copy of one sheet.
type SheetSnapshot struct {
	Name     string     `json:"name"`
	Rows     [][]string `json:"rows"`
	RowCount int        `json:"rowCount"`
	ColCount int        `json:"colCount"`
}

// Snapshot is a read-only copy of the workbook and its interaction state,
// used for rendering. It never aliases workbook storage.
type Snapshot struct {
	Sheets    []SheetSnapshot `json:"sheets"`
	Active    int             `json:"active"`
	Selection Selection       `json:"selection"`
	Editable  bool            `json:"editable"`
}

// Snapshot copies the current state.
func (w *Workbook) Snapshot() Snapshot {
	sheets := make([]SheetSnapshot, len(w.sheets))
	for i, g := range w.sheets {
		sheets[i] = SheetSnapshot{
			Name:     g.Name,
			Rows:     g.Rows(),
			RowCount: g.RowCount(),
			ColCount: g.ColCount(),
		}
	}
	return Snapshot{
		Sheets:    sheets,
		Active:    w.active,
		Selection: w.selection,
		Editable:  w.editable,
	}
}

// ActiveSheet returns the snapshot of the active sheet.
func (s Snapshot) ActiveSheet() SheetSnapshot {
	return s.Sheets[s.Active]
}

// WorkbookState is the persisted form of a workbook. The selection is
// transient and not part of it.
type WorkbookState struct {
	Sheets   []grid.SheetData `json:"sheets"`
	Active   int              `json:"active"`
	Editable bool             `json:"editable"`
}

// State returns the persistable form of the workbook.
func (w *Workbook) State() WorkbookState {
	return WorkbookState{
		Sheets:   w.Sheets(),
		Active:   w.active,
		Editable: w.editable,
	}
}

// RestoreWorkbook rebuilds a workbook from persisted state.
func RestoreWorkbook(state WorkbookState) (*Workbook, error) {
	w := &Workbook{editable: state.Editable}
	if err := w.ImportSheets(state.Sheets); err != nil {
		return nil, err
	}
	if err := w.SetActiveSheet(state.Active); err != nil {
		return nil, fmt.Errorf("restore active sheet: %w", err)
	}
	return w, nil
}
