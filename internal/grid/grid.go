// Package grid implements the rectangular table of string cells behind a
// single sheet, together with the comparator used to sort a row or column.
//
// Every Grid keeps the rectangularity invariant: all rows have the same
// number of cells after each exported method returns. Structural operations
// validate their indexes and never reduce a grid below one row or one column.
package grid

// SheetData is the array-of-arrays form of a sheet exchanged with file
// adapters and session stores.
type SheetData struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

// Grid is a named, rectangular sequence of rows.
type Grid struct {
	Name string

	rows [][]string
	cols int
}

// New returns a blank grid with the given dimensions.
// It panics if rows or cols is less than one.
func New(name string, rows, cols int) *Grid {
	if rows < 1 || cols < 1 {
		panic("grid: dimensions must be positive")
	}
	g := &Grid{Name: name, cols: cols, rows: make([][]string, rows)}
	for i := range g.rows {
		g.rows[i] = make([]string, cols)
	}
	return g
}

// FromRows builds a grid from possibly ragged rows. Short rows are padded
// with blank cells up to the widest row; input with no cells yields a 1x1
// blank grid. The input slices are copied.
func FromRows(name string, rows [][]string) *Grid {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if len(rows) == 0 || width == 0 {
		return New(name, 1, 1)
	}

	g := &Grid{Name: name, cols: width, rows: make([][]string, len(rows))}
	for i, row := range rows {
		padded := make([]string, width)
		copy(padded, row)
		g.rows[i] = padded
	}
	return g
}

// FromData is FromRows over a SheetData.
func FromData(d SheetData) *Grid {
	return FromRows(d.Name, d.Rows)
}

// RowCount returns the number of rows.
func (g *Grid) RowCount() int { return len(g.rows) }

// ColCount returns the number of cells in every row.
func (g *Grid) ColCount() int { return g.cols }

// Rows returns a deep copy of the cell values.
func (g *Grid) Rows() [][]string {
	out := make([][]string, len(g.rows))
	for i, row := range g.rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// Data returns a deep copy of the grid as SheetData.
func (g *Grid) Data() SheetData {
	return SheetData{Name: g.Name, Rows: g.Rows()}
}

// Clone returns an independent copy of g.
func (g *Grid) Clone() *Grid {
	return &Grid{Name: g.Name, cols: g.cols, rows: g.Rows()}
}

// Row returns a copy of row i.
func (g *Grid) Row(i int) ([]string, error) {
	if err := CheckIndex(AxisRow, i, len(g.rows)); err != nil {
		return nil, err
	}
	return append([]string(nil), g.rows[i]...), nil
}

// Column returns a copy of column j, top to bottom.
func (g *Grid) Column(j int) ([]string, error) {
	if err := CheckIndex(AxisColumn, j, g.cols); err != nil {
		return nil, err
	}
	out := make([]string, len(g.rows))
	for i, row := range g.rows {
		out[i] = row[j]
	}
	return out, nil
}

// Cell returns the value at (row, col).
func (g *Grid) Cell(row, col int) (string, error) {
	if err := g.checkCell(row, col); err != nil {
		return "", err
	}
	return g.rows[row][col], nil
}

// SetCell replaces the value at (row, col). The value is stored as given.
func (g *Grid) SetCell(row, col int, value string) error {
	if err := g.checkCell(row, col); err != nil {
		return err
	}
	g.rows[row][col] = value
	return nil
}

func (g *Grid) checkCell(row, col int) error {
	if err := CheckIndex(AxisRow, row, len(g.rows)); err != nil {
		return err
	}
	return CheckIndex(AxisColumn, col, g.cols)
}

// InsertRow inserts a blank row so that it ends up at index at.
// Valid positions are 0 through RowCount inclusive.
func (g *Grid) InsertRow(at int) error {
	if err := CheckIndex(AxisRow, at, len(g.rows)+1); err != nil {
		return err
	}
	g.rows = append(g.rows, nil)
	copy(g.rows[at+1:], g.rows[at:])
	g.rows[at] = make([]string, g.cols)
	return nil
}

// DeleteRow removes row at. The last remaining row cannot be deleted.
func (g *Grid) DeleteRow(at int) error {
	if err := CheckIndex(AxisRow, at, len(g.rows)); err != nil {
		return err
	}
	if len(g.rows) == 1 {
		return ErrLastRow
	}
	g.rows = append(g.rows[:at], g.rows[at+1:]...)
	return nil
}

// InsertColumn inserts a blank cell at index at in every row.
// Valid positions are 0 through ColCount inclusive.
func (g *Grid) InsertColumn(at int) error {
	if err := CheckIndex(AxisColumn, at, g.cols+1); err != nil {
		return err
	}
	for i, row := range g.rows {
		row = append(row, "")
		copy(row[at+1:], row[at:])
		row[at] = ""
		g.rows[i] = row
	}
	g.cols++
	return nil
}

// DeleteColumn removes the cell at index at from every row.
// The last remaining column cannot be deleted.
func (g *Grid) DeleteColumn(at int) error {
	if err := CheckIndex(AxisColumn, at, g.cols); err != nil {
		return err
	}
	if g.cols == 1 {
		return ErrLastColumn
	}
	for i, row := range g.rows {
		g.rows[i] = append(row[:at], row[at+1:]...)
	}
	g.cols--
	return nil
}
