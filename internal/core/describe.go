package core

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// NumericSummary holds descriptive statistics for a numeric column.
type NumericSummary struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
	Mean   Float  `json:"mean"`
	Std    Float  `json:"std"`
	Min    Float  `json:"min"`
	Q25    Float  `json:"p25"`
	Median Float  `json:"p50"`
	Q75    Float  `json:"p75"`
	Max    Float  `json:"max"`
}

// TextSummary holds descriptive statistics for a text column.
type TextSummary struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
	Unique int    `json:"unique"`
	Top    string `json:"top,omitempty"`
	Freq   int    `json:"freq"`
}

// Summary is the describe view of a table.
type Summary struct {
	Numeric []NumericSummary `json:"numeric"`
	Text    []TextSummary    `json:"text"`
}

// SummaryLabels are the row labels of the numeric summary in display order.
var SummaryLabels = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Values returns the numeric summary in SummaryLabels order.
func (s NumericSummary) Values() []Float {
	return []Float{Float(s.Count), s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max}
}

// Describe computes per-column statistics. Missing cells are excluded.
// Statistics of a column with no observations are NaN.
func Describe(t *Table) *Summary {
	s := &Summary{}
	for _, col := range t.Columns {
		if col.Kind == KindNumeric {
			s.Numeric = append(s.Numeric, describeNumeric(col))
		} else {
			s.Text = append(s.Text, describeText(col))
		}
	}
	return s
}

func describeNumeric(col *Column) NumericSummary {
	nan := Float(math.NaN())
	sum := NumericSummary{Column: col.Name, Mean: nan, Std: nan, Min: nan, Q25: nan, Median: nan, Q75: nan, Max: nan}

	x := col.Observed()
	sum.Count = len(x)
	if len(x) == 0 {
		return sum
	}

	sort.Float64s(x)
	mean, std := stat.MeanStdDev(x, nil)
	if len(x) < 2 {
		std = math.NaN()
	}
	sum.Mean = Float(mean)
	sum.Std = Float(std)
	sum.Min = Float(x[0])
	sum.Max = Float(x[len(x)-1])
	sum.Q25 = Float(quantile(x, 0.25))
	sum.Median = Float(quantile(x, 0.5))
	sum.Q75 = Float(quantile(x, 0.75))
	return sum
}

// quantile returns the p-quantile of sorted x, interpolating linearly
// between the closest ranks at position p*(n-1).
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func describeText(col *Column) TextSummary {
	sum := TextSummary{Column: col.Name}
	counts := make(map[string]int)
	var order []string
	for _, cell := range col.Cells {
		if cell.Missing {
			continue
		}
		sum.Count++
		if counts[cell.Text] == 0 {
			order = append(order, cell.Text)
		}
		counts[cell.Text]++
	}
	sum.Unique = len(counts)

	// first value reaching the highest count wins ties
	for _, v := range order {
		if counts[v] > sum.Freq {
			sum.Top = v
			sum.Freq = counts[v]
		}
	}
	return sum
}
