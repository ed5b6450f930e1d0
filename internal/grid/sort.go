package grid

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ParseNumber reports whether s is a numeric cell value and returns it.
//
// Surrounding whitespace is ignored. The remainder must be a finite decimal
// number as accepted by strconv.ParseFloat: an optional sign, digits with an
// optional decimal point, and an optional exponent. Blank strings,
// hexadecimal forms, underscores, NaN and Inf are not numeric.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Comparator orders cell values for row and column sorts.
//
// Two numeric values compare by value. Any other pair compares with a
// root-locale collator that ignores case, accents and width and orders
// embedded digit runs by their numeric value, so "item2" < "item10".
//
// A Comparator is not safe for concurrent use.
type Comparator struct {
	collator *collate.Collator
}

// NewComparator returns a ready Comparator.
func NewComparator() *Comparator {
	return &Comparator{
		collator: collate.New(language.Und, collate.Loose, collate.Numeric),
	}
}

// Compare returns a negative number when a sorts before b, a positive number
// when it sorts after, and zero when they are equivalent.
func (c *Comparator) Compare(a, b string) int {
	if fa, ok := ParseNumber(a); ok {
		if fb, ok := ParseNumber(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	return c.collator.CompareString(a, b)
}

// Sort stably sorts values in ascending order.
func (c *Comparator) Sort(values []string) {
	if len(values) < 2 {
		return
	}
	slices.SortStableFunc(values, c.Compare)
}

// SortRow reorders the values within row i.
func (g *Grid) SortRow(i int) error {
	if err := CheckIndex(AxisRow, i, len(g.rows)); err != nil {
		return err
	}
	NewComparator().Sort(g.rows[i])
	return nil
}

// SortColumn reorders the values within column j. Each row keeps its
// position; only the cell at column j changes.
func (g *Grid) SortColumn(j int) error {
	values, err := g.Column(j)
	if err != nil {
		return err
	}
	NewComparator().Sort(values)
	for i, v := range values {
		g.rows[i][j] = v
	}
	return nil
}
