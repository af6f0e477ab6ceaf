package core

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// ImputedColumn records the fill applied to one column.
type ImputedColumn struct {
	Column string `json:"column"`
	Mean   Float  `json:"mean"`
	Filled int    `json:"filled"`
}

// ImputeReport records the effect of ImputeMean.
type ImputeReport struct {
	Columns []ImputedColumn `json:"columns"`
	// Skipped lists numeric columns with no observed values; they stay missing.
	Skipped []string `json:"skipped,omitempty"`
	Preview Preview  `json:"preview"`
}

// Filled returns the total number of cells replaced.
func (r *ImputeReport) Filled() int {
	n := 0
	for _, c := range r.Columns {
		n += c.Filled
	}
	return n
}

// ImputeMean replaces missing values in each named numeric column with the
// arithmetic mean of that column's non-missing values, computed before any
// replacement. Columns are validated up front so an error leaves t unchanged.
func ImputeMean(t *Table, columns []string) (*ImputeReport, error) {
	targets := make([]*Column, 0, len(columns))
	for _, name := range columns {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		if col.Kind != KindNumeric {
			return nil, fmt.Errorf("impute %q: %w", name, ErrNotNumeric)
		}
		targets = append(targets, col)
	}

	report := &ImputeReport{}
	for _, col := range targets {
		observed := col.Observed()
		if len(observed) == 0 {
			report.Skipped = append(report.Skipped, col.Name)
			continue
		}

		mean := stat.Mean(observed, nil)
		filled := 0
		for i := range col.Cells {
			if col.Cells[i].Missing {
				col.Cells[i] = Number(mean)
				filled++
			}
		}
		report.Columns = append(report.Columns, ImputedColumn{
			Column: col.Name,
			Mean:   Float(mean),
			Filled: filled,
		})
	}
	return report, nil
}
