package grid

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is wrapped by every IndexError.
var ErrOutOfRange = errors.New("index out of range")

// ErrLastRow is returned when deleting the only row of a grid.
var ErrLastRow = errors.New("cannot delete the last row of a sheet")

// ErrLastColumn is returned when deleting the only column of a grid.
var ErrLastColumn = errors.New("cannot delete the last column of a sheet")

// Axis names the dimension an index refers to.
type Axis string

const (
	AxisRow    Axis = "row"
	AxisColumn Axis = "column"
	AxisSheet  Axis = "sheet"
)

// IndexError reports an index outside [0, Limit).
type IndexError struct {
	Axis  Axis
	Index int
	Limit int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0,%d)", e.Axis, e.Index, e.Limit)
}

func (e *IndexError) Unwrap() error {
	return ErrOutOfRange
}

// CheckIndex returns an *IndexError unless 0 <= index < limit.
func CheckIndex(axis Axis, index, limit int) error {
	if index < 0 || index >= limit {
		return &IndexError{Axis: axis, Index: index, Limit: limit}
	}
	return nil
}
