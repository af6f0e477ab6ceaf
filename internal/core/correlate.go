package core

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix is a square matrix of Pearson coefficients over the
// numeric columns of a table, in table order.
type CorrelationMatrix struct {
	Columns []string  `json:"columns"`
	Values  [][]Float `json:"values"`
}

// At returns the coefficient for columns i and j.
func (m *CorrelationMatrix) At(i, j int) float64 {
	return float64(m.Values[i][j])
}

// Correlate computes pairwise Pearson correlation for every pair of numeric
// columns using only rows where both values are present. The diagonal is 1.
// A pair with fewer than two joint observations or zero variance is NaN.
func Correlate(t *Table) *CorrelationMatrix {
	var cols []*Column
	for _, col := range t.Columns {
		if col.Kind == KindNumeric {
			cols = append(cols, col)
		}
	}

	m := &CorrelationMatrix{
		Columns: make([]string, len(cols)),
		Values:  make([][]Float, len(cols)),
	}
	for i, col := range cols {
		m.Columns[i] = col.Name
		m.Values[i] = make([]Float, len(cols))
	}

	for i := range cols {
		m.Values[i][i] = 1
		for j := i + 1; j < len(cols); j++ {
			r := Float(pearson(cols[i], cols[j]))
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

func pearson(a, b *Column) float64 {
	x := make([]float64, 0, len(a.Cells))
	y := make([]float64, 0, len(b.Cells))
	for i := range a.Cells {
		if a.Cells[i].Missing || b.Cells[i].Missing {
			continue
		}
		x = append(x, a.Cells[i].Num)
		y = append(y, b.Cells[i].Num)
	}
	if len(x) < 2 {
		return math.NaN()
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return math.NaN()
	}
	// rounding can push |r| just past 1
	return math.Max(-1, math.Min(1, r))
}
