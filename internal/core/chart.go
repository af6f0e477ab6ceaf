package core

import "math"

// BarSeries is one numeric column rendered as bars.
type BarSeries struct {
	Column string  `json:"column"`
	Values []Float `json:"values"`
}

// BarChart is a grouped bar chart indexed by row position.
type BarChart struct {
	Labels    []string    `json:"labels"`
	Series    []BarSeries `json:"series"`
	TotalRows int         `json:"total_rows"`
	Truncated bool        `json:"truncated"`
}

// BarChartOf builds a bar chart from the first two numeric columns of t
// (one if only one exists). Rows beyond maxRows are dropped and the chart is
// marked truncated; maxRows <= 0 keeps every row. Missing values are NaN.
// Returns false when t has no numeric column.
func BarChartOf(t *Table, maxRows int) (*BarChart, bool) {
	names := t.NumericColumns()
	if len(names) == 0 {
		return nil, false
	}
	if len(names) > 2 {
		names = names[:2]
	}

	total := t.NumRows()
	n := total
	if maxRows > 0 && n > maxRows {
		n = maxRows
	}

	chart := &BarChart{
		Labels:    make([]string, n),
		TotalRows: total,
		Truncated: n < total,
	}
	for i := range chart.Labels {
		chart.Labels[i] = FormatNumber(float64(i))
	}

	for _, name := range names {
		col, _ := t.Column(name)
		s := BarSeries{Column: name, Values: make([]Float, n)}
		for i := 0; i < n; i++ {
			if col.Cells[i].Missing {
				s.Values[i] = Float(math.NaN())
			} else {
				s.Values[i] = Float(col.Cells[i].Num)
			}
		}
		chart.Series = append(chart.Series, s)
	}
	return chart, true
}
