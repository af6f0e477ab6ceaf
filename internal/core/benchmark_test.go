package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"testing"
)

// generateCSV builds a CSV with a mix of numeric and text columns, roughly
// one duplicate row in ten and one missing value per row in twenty.
func generateCSV(rows int) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"id", "amount", "qty", "region", "note"})
	for i := 0; i < rows; i++ {
		n := i
		if i%10 == 9 {
			n = i - 1
		}
		amount := fmt.Sprintf("%d.%02d", n*7%1000, n%100)
		if i%20 == 0 {
			amount = ""
		}
		w.Write([]string{
			fmt.Sprint(n),
			amount,
			fmt.Sprint(n % 13),
			[]string{"north", "south", "east", "west"}[n%4],
			fmt.Sprintf("row %d", n),
		})
	}
	w.Flush()
	return buf.Bytes()
}

// ============================================================================
// Classification Benchmarks
// ============================================================================

func BenchmarkParseNumber(b *testing.B) {
	cases := []string{"123", "-456.78", "1.5e10", " 42 ", "north", "1,234"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range cases {
			ParseNumber(c)
		}
	}
}

func BenchmarkIsMissing(b *testing.B) {
	cases := []string{"", "NA", "value", "  n/a  "}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range cases {
			IsMissing(c)
		}
	}
}

// ============================================================================
// Ingest Benchmarks
// ============================================================================

func BenchmarkIngestCSV(b *testing.B) {
	for _, rows := range []int{100, 10000} {
		data := generateCSV(rows)
		b.Run(fmt.Sprintf("rows=%d", rows), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Ingest(File{Name: "bench.csv", Data: data}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// ============================================================================
// Transform Benchmarks
// ============================================================================

func BenchmarkDeduplicate(b *testing.B) {
	table, err := Ingest(File{Name: "bench.csv", Data: generateCSV(10000)})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		t := table.Clone()
		b.StartTimer()
		Deduplicate(t)
	}
}

func BenchmarkCorrelate(b *testing.B) {
	table, err := Ingest(File{Name: "bench.csv", Data: generateCSV(10000)})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Correlate(table)
	}
}

// ============================================================================
// Pipeline Benchmarks
// ============================================================================

// BenchmarkRun measures one full evaluation, the cost paid on every option change.
func BenchmarkRun(b *testing.B) {
	file := File{Name: "bench.csv", Data: generateCSV(10000)}
	opts := Options{
		ShowSummary:      true,
		RemoveDuplicates: true,
		FillMissing:      true,
		ShowCorrelation:  true,
		ShowChart:        true,
		Export:           true,
	}

	for _, format := range Formats {
		opts.Format = format
		b.Run(string(format), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Run(file, opts, DefaultLimits); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
