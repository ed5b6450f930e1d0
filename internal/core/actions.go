package core

import (
	"fmt"
)

// ActionKind names an operation of the interaction boundary.
type ActionKind string

const (
	ActionSetCell           ActionKind = "set_cell"
	ActionAddSheet          ActionKind = "add_sheet"
	ActionSetActiveSheet    ActionKind = "set_active_sheet"
	ActionReset             ActionKind = "reset"
	ActionSelectRow         ActionKind = "select_row"
	ActionSelectColumn      ActionKind = "select_column"
	ActionClearSelection    ActionKind = "clear_selection"
	ActionInsertRowAbove    ActionKind = "insert_row_above"
	ActionInsertRowBelow    ActionKind = "insert_row_below"
	ActionDeleteRow         ActionKind = "delete_row"
	ActionInsertColumnLeft  ActionKind = "insert_column_left"
	ActionInsertColumnRight ActionKind = "insert_column_right"
	ActionDeleteColumn      ActionKind = "delete_column"
	ActionSortRow           ActionKind = "sort_row"
	ActionSortColumn        ActionKind = "sort_column"
	ActionSetEditable       ActionKind = "set_editable"
	ActionToggleEdit        ActionKind = "toggle_edit"
)

// Action is one user operation on a workbook. Only the fields relevant to
// Kind are read:
//
//	set_cell          Row, Col, Value
//	set_active_sheet  Sheet
//	select_row        Row
//	select_column     Col
//	set_editable      Editable
//
// Structural and sort actions act on the current selection.
type Action struct {
	Kind     ActionKind `json:"kind"`
	Sheet    int        `json:"sheet,omitempty"`
	Row      int        `json:"row,omitempty"`
	Col      int        `json:"col,omitempty"`
	Value    string     `json:"value,omitempty"`
	Editable bool       `json:"editable,omitempty"`
}

// Persists reports whether the action changes persisted state. Selection is
// never persisted.
func (a Action) Persists() bool {
	switch a.Kind {
	case ActionSelectRow, ActionSelectColumn, ActionClearSelection:
		return false
	}
	return true
}

// Apply performs a on the workbook.
func (w *Workbook) Apply(a Action) error {
	switch a.Kind {
	case ActionSetCell:
		return w.SetCell(a.Row, a.Col, a.Value)
	case ActionAddSheet:
		w.AddSheet()
		return nil
	case ActionSetActiveSheet:
		return w.SetActiveSheet(a.Sheet)
	case ActionReset:
		w.Reset()
		return nil
	case ActionSelectRow:
		return w.SelectRow(a.Row)
	case ActionSelectColumn:
		return w.SelectColumn(a.Col)
	case ActionClearSelection:
		w.ClearSelection()
		return nil
	case ActionInsertRowAbove:
		return w.InsertRowAbove()
	case ActionInsertRowBelow:
		return w.InsertRowBelow()
	case ActionDeleteRow:
		return w.DeleteRow()
	case ActionInsertColumnLeft:
		return w.InsertColumnLeft()
	case ActionInsertColumnRight:
		return w.InsertColumnRight()
	case ActionDeleteColumn:
		return w.DeleteColumn()
	case ActionSortRow:
		return w.SortRow()
	case ActionSortColumn:
		return w.SortColumn()
	case ActionSetEditable:
		w.SetEditable(a.Editable)
		return nil
	case ActionToggleEdit:
		w.SetEditable(!w.editable)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
}
