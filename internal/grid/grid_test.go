package grid

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"
)

func sample() *Grid {
	return FromRows("S", [][]string{
		{"a", "b", "c"},
		{"d", "e", "f"},
	})
}

func assertRectangular(t *testing.T, g *Grid) {
	t.Helper()
	for i, row := range g.Rows() {
		if len(row) != g.ColCount() {
			t.Fatalf("row %d has %d cells, want %d", i, len(row), g.ColCount())
		}
	}
}

func TestNew(t *testing.T) {
	g := New("Sheet1", 35, 15)
	if g.RowCount() != 35 || g.ColCount() != 15 {
		t.Fatalf("got %dx%d, want 35x15", g.RowCount(), g.ColCount())
	}
	assertRectangular(t, g)
	if v, _ := g.Cell(34, 14); v != "" {
		t.Errorf("Cell(34,14) = %q, want blank", v)
	}
}

func TestFromRows(t *testing.T) {
	tests := []struct {
		name  string
		input [][]string
		want  [][]string
	}{
		{
			name:  "rectangular input",
			input: [][]string{{"1", "2"}, {"3", "4"}},
			want:  [][]string{{"1", "2"}, {"3", "4"}},
		},
		{
			name:  "ragged rows are padded",
			input: [][]string{{"x"}, {"1", "2", "3"}, {}},
			want:  [][]string{{"x", "", ""}, {"1", "2", "3"}, {"", "", ""}},
		},
		{
			name:  "no rows",
			input: nil,
			want:  [][]string{{""}},
		},
		{
			name:  "only empty rows",
			input: [][]string{{}, {}},
			want:  [][]string{{""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := FromRows("S", tt.input)
			if got := g.Rows(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Rows() = %v, want %v", got, tt.want)
			}
			assertRectangular(t, g)
		})
	}
}

func TestFromRowsCopiesInput(t *testing.T) {
	input := [][]string{{"a", "b"}}
	g := FromRows("S", input)
	input[0][0] = "changed"
	if v, _ := g.Cell(0, 0); v != "a" {
		t.Errorf("grid aliases input: Cell(0,0) = %q", v)
	}

	rows := g.Rows()
	rows[0][1] = "changed"
	if v, _ := g.Cell(0, 1); v != "b" {
		t.Errorf("Rows() aliases storage: Cell(0,1) = %q", v)
	}
}

func TestSetCell(t *testing.T) {
	g := sample()
	if err := g.SetCell(1, 2, "  raw value "); err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	if v, _ := g.Cell(1, 2); v != "  raw value " {
		t.Errorf("Cell(1,2) = %q, want value stored verbatim", v)
	}

	for _, rc := range [][2]int{{-1, 0}, {2, 0}, {0, -1}, {0, 3}} {
		err := g.SetCell(rc[0], rc[1], "x")
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("SetCell(%d,%d) error = %v, want ErrOutOfRange", rc[0], rc[1], err)
		}
	}
}

func TestIndexError(t *testing.T) {
	err := sample().SetCell(5, 0, "x")
	var ie *IndexError
	if !errors.As(err, &ie) {
		t.Fatalf("error %v is not *IndexError", err)
	}
	if ie.Axis != AxisRow || ie.Index != 5 || ie.Limit != 2 {
		t.Errorf("got %+v, want row 5 limit 2", ie)
	}
	if got, want := err.Error(), "row index 5 out of range [0,2)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestInsertRow(t *testing.T) {
	tests := []struct {
		name string
		at   int
		want [][]string
	}{
		{"above first", 0, [][]string{{"", "", ""}, {"a", "b", "c"}, {"d", "e", "f"}}},
		{"between", 1, [][]string{{"a", "b", "c"}, {"", "", ""}, {"d", "e", "f"}}},
		{"after last", 2, [][]string{{"a", "b", "c"}, {"d", "e", "f"}, {"", "", ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := sample()
			if err := g.InsertRow(tt.at); err != nil {
				t.Fatalf("InsertRow(%d): %v", tt.at, err)
			}
			if got := g.Rows(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Rows() = %v, want %v", got, tt.want)
			}
		})
	}

	if err := sample().InsertRow(3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("InsertRow(3) error = %v, want ErrOutOfRange", err)
	}
}

func TestDeleteRow(t *testing.T) {
	g := sample()
	if err := g.DeleteRow(0); err != nil {
		t.Fatalf("DeleteRow(0): %v", err)
	}
	if got, want := g.Rows(), [][]string{{"d", "e", "f"}}; !reflect.DeepEqual(got, want) {
		t.Errorf("Rows() = %v, want %v", got, want)
	}
	if err := g.DeleteRow(0); !errors.Is(err, ErrLastRow) {
		t.Errorf("deleting only row: error = %v, want ErrLastRow", err)
	}
	if g.RowCount() != 1 {
		t.Errorf("RowCount = %d after rejected delete, want 1", g.RowCount())
	}
	if err := g.DeleteRow(1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("DeleteRow(1) error = %v, want ErrOutOfRange", err)
	}
}

func TestInsertColumn(t *testing.T) {
	tests := []struct {
		name string
		at   int
		want [][]string
	}{
		{"left of first", 0, [][]string{{"", "a", "b", "c"}, {"", "d", "e", "f"}}},
		{"middle", 2, [][]string{{"a", "b", "", "c"}, {"d", "e", "", "f"}}},
		{"right of last", 3, [][]string{{"a", "b", "c", ""}, {"d", "e", "f", ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := sample()
			if err := g.InsertColumn(tt.at); err != nil {
				t.Fatalf("InsertColumn(%d): %v", tt.at, err)
			}
			if got := g.Rows(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Rows() = %v, want %v", got, tt.want)
			}
			if g.ColCount() != 4 {
				t.Errorf("ColCount = %d, want 4", g.ColCount())
			}
		})
	}

	if err := sample().InsertColumn(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("InsertColumn(-1) error = %v, want ErrOutOfRange", err)
	}
}

func TestDeleteColumn(t *testing.T) {
	g := sample()
	if err := g.DeleteColumn(1); err != nil {
		t.Fatalf("DeleteColumn(1): %v", err)
	}
	if got, want := g.Rows(), [][]string{{"a", "c"}, {"d", "f"}}; !reflect.DeepEqual(got, want) {
		t.Errorf("Rows() = %v, want %v", got, want)
	}

	single := FromRows("S", [][]string{{"only"}, {"col"}})
	if err := single.DeleteColumn(0); !errors.Is(err, ErrLastColumn) {
		t.Errorf("deleting only column: error = %v, want ErrLastColumn", err)
	}
}

func TestRowRoundTrip(t *testing.T) {
	for i := 0; i < 2; i++ {
		g := sample()
		before := g.Rows()
		if err := g.InsertRow(i); err != nil {
			t.Fatal(err)
		}
		if err := g.DeleteRow(i); err != nil {
			t.Fatal(err)
		}
		if got := g.Rows(); !reflect.DeepEqual(got, before) {
			t.Errorf("insert/delete at %d: got %v, want %v", i, got, before)
		}
	}
}

func TestColumnRoundTrip(t *testing.T) {
	for j := 0; j < 3; j++ {
		g := sample()
		before := g.Rows()
		if err := g.InsertColumn(j); err != nil {
			t.Fatal(err)
		}
		if err := g.DeleteColumn(j); err != nil {
			t.Fatal(err)
		}
		if got := g.Rows(); !reflect.DeepEqual(got, before) {
			t.Errorf("insert/delete at %d: got %v, want %v", j, got, before)
		}
	}
}

func TestRectangularityUnderRandomOperations(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	g := New("S", 4, 3)

	for step := 0; step < 2000; step++ {
		var err error
		switch r.IntN(7) {
		case 0:
			err = g.InsertRow(r.IntN(g.RowCount() + 1))
		case 1:
			err = g.DeleteRow(r.IntN(g.RowCount()))
		case 2:
			err = g.InsertColumn(r.IntN(g.ColCount() + 1))
		case 3:
			err = g.DeleteColumn(r.IntN(g.ColCount()))
		case 4:
			err = g.SetCell(r.IntN(g.RowCount()), r.IntN(g.ColCount()), string(rune('a'+r.IntN(26))))
		case 5:
			err = g.SortRow(r.IntN(g.RowCount()))
		case 6:
			err = g.SortColumn(r.IntN(g.ColCount()))
		}
		if err != nil && !errors.Is(err, ErrLastRow) && !errors.Is(err, ErrLastColumn) {
			t.Fatalf("step %d: unexpected error %v", step, err)
		}
		assertRectangular(t, g)
		if g.RowCount() < 1 || g.ColCount() < 1 {
			t.Fatalf("step %d: grid shrank to %dx%d", step, g.RowCount(), g.ColCount())
		}
	}
}
