package grid

import (
	"strconv"
	"testing"
)

// ============================================================================
// Comparator Benchmarks
// ============================================================================

// BenchmarkParseNumber benchmarks numeric detection, called for every
// comparison during a sort.
func BenchmarkParseNumber(b *testing.B) {
	testCases := []string{
		"123",
		"-456.78",
		"1e3",
		"  42  ",
		"0x1F", // rejected
		"item10",
		"",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseNumber(tc)
		}
	}
}

// BenchmarkCompare_Numeric benchmarks the numeric fast path.
func BenchmarkCompare_Numeric(b *testing.B) {
	c := NewComparator()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Compare("1234.5", "987")
	}
}

// BenchmarkCompare_Text benchmarks collation of mixed text.
func BenchmarkCompare_Text(b *testing.B) {
	c := NewComparator()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Compare("Résumé item10", "resume item9")
	}
}

// ============================================================================
// Sort Benchmarks
// ============================================================================

func benchmarkValues(n int) []string {
	values := make([]string, n)
	for i := range values {
		switch i % 3 {
		case 0:
			values[i] = strconv.Itoa((i * 7919) % 1000)
		case 1:
			values[i] = "item" + strconv.Itoa((i*104729)%500)
		default:
			values[i] = ""
		}
	}
	return values
}

// BenchmarkSortColumn_1K benchmarks sorting a 1,000-row column.
func BenchmarkSortColumn_1K(b *testing.B) {
	values := benchmarkValues(1000)
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{v, "x"}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		g := FromRows("Bench", rows)
		b.StartTimer()
		if err := g.SortColumn(0); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSortRow_1K benchmarks sorting a 1,000-column row.
func BenchmarkSortRow_1K(b *testing.B) {
	values := benchmarkValues(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		g := FromRows("Bench", [][]string{values})
		b.StartTimer()
		if err := g.SortRow(0); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Structural Benchmarks
// ============================================================================

// BenchmarkInsertColumn benchmarks inserting a column into a default-size grid.
func BenchmarkInsertColumn(b *testing.B) {
	for i := 0; i < b.N; i++ {
		g := New("Bench", 35, 15)
		if err := g.InsertColumn(7); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkClone benchmarks the deep copy used by snapshots.
func BenchmarkClone(b *testing.B) {
	g := New("Bench", 1000, 26)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Clone()
	}
}
