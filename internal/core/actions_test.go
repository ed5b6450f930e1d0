package core

import (
	"errors"
	"testing"

	"github.com/JonMunkholm/sheets/internal/grid"
)

func TestApplySequence(t *testing.T) {
	w := NewWorkbook()
	steps := []Action{
		{Kind: ActionSetCell, Row: 0, Col: 0, Value: "10"},
		{Kind: ActionSetCell, Row: 1, Col: 0, Value: "9"},
		{Kind: ActionSelectColumn, Col: 0},
		{Kind: ActionSortColumn},
		{Kind: ActionSelectRow, Row: 0},
		{Kind: ActionInsertRowAbove},
		{Kind: ActionAddSheet},
		{Kind: ActionSetActiveSheet, Sheet: 0},
		{Kind: ActionToggleEdit},
	}
	for i, a := range steps {
		if err := w.Apply(a); err != nil {
			t.Fatalf("step %d (%s): %v", i, a.Kind, err)
		}
	}

	rows := w.ActiveSheet().Rows
	if len(rows) != DefaultRows+1 {
		t.Errorf("row count = %d, want %d", len(rows), DefaultRows+1)
	}
	// Blanks sort first, so 9 and 10 end up at the bottom of the column,
	// shifted down one by the inserted row.
	if rows[DefaultRows-1][0] != "9" || rows[DefaultRows][0] != "10" {
		t.Errorf("sorted tail = %q, %q", rows[DefaultRows-1][0], rows[DefaultRows][0])
	}
	if w.SheetCount() != 2 || w.ActiveIndex() != 0 {
		t.Errorf("sheets=%d active=%d", w.SheetCount(), w.ActiveIndex())
	}
	if w.Editable() {
		t.Error("toggle_edit should switch edit mode off")
	}
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   error
	}{
		{"unknown kind", Action{Kind: "explode"}, ErrUnknownAction},
		{"cell out of range", Action{Kind: ActionSetCell, Row: DefaultRows, Col: 0}, grid.ErrOutOfRange},
		{"sheet out of range", Action{Kind: ActionSetActiveSheet, Sheet: 3}, grid.ErrOutOfRange},
		{"column out of range", Action{Kind: ActionSelectColumn, Col: -1}, grid.ErrOutOfRange},
		{"delete without selection", Action{Kind: ActionDeleteRow}, ErrNoRowSelected},
		{"sort without selection", Action{Kind: ActionSortColumn}, ErrNoColumnSelected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorkbook()
			before := w.Snapshot()
			err := w.Apply(tt.action)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Apply err = %v, want %v", err, tt.want)
			}
			after := w.Snapshot()
			if after.Active != before.Active || len(after.ActiveSheet().Rows) != len(before.ActiveSheet().Rows) {
				t.Error("failed action changed the workbook")
			}
		})
	}
}

func TestActionPersists(t *testing.T) {
	for _, k := range []ActionKind{ActionSelectRow, ActionSelectColumn, ActionClearSelection} {
		if (Action{Kind: k}).Persists() {
			t.Errorf("%s should not persist", k)
		}
	}
	for _, k := range []ActionKind{ActionSetCell, ActionSetActiveSheet, ActionSetEditable, ActionReset, ActionSortRow} {
		if !(Action{Kind: k}).Persists() {
			t.Errorf("%s should persist", k)
		}
	}
}
