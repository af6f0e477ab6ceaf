package core

// pipeline.go evaluates one uploaded file against the user's options.
//
// Run is a pure function of (bytes, options): it re-ingests the upload on
// every call and never keeps a table between calls. The step order is fixed:
//
//	ingest -> summary(raw) -> dedupe -> impute -> correlation -> project -> chart -> export
//
// The numeric column set used by impute and correlation is taken after
// dedupe; the chart looks at the numeric columns of the projected table.

import (
	"fmt"
	"time"
)

// Options are the per-file controls.
type Options struct {
	ShowSummary      bool     `json:"show_summary"`
	RemoveDuplicates bool     `json:"remove_duplicates"`
	FillMissing      bool     `json:"fill_missing"`
	ShowCorrelation  bool     `json:"show_correlation"`
	Columns          []string `json:"columns" validate:"omitempty,dive,required"`
	ShowChart        bool     `json:"show_chart"`
	Format           Format   `json:"format" validate:"omitempty,oneof=csv xlsx"`
	Export           bool     `json:"export"`
}

// TargetFormat returns the chosen export format, CSV when unset.
func (o Options) TargetFormat() Format {
	if o.Format == "" {
		return FormatCSV
	}
	return o.Format
}

// Limits bound the size of derived views.
type Limits struct {
	PreviewRows  int // rows shown in each head preview
	ChartMaxRows int // rows plotted in the bar chart; <= 0 plots all
}

// DefaultLimits are used when no configuration is supplied.
var DefaultLimits = Limits{PreviewRows: 5, ChartMaxRows: 500}

func (l Limits) withDefaults() Limits {
	if l.PreviewRows <= 0 {
		l.PreviewRows = DefaultLimits.PreviewRows
	}
	return l
}

// Shape is the row and column count of a table.
type Shape struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Result is everything derived from one evaluation of a file.
type Result struct {
	FileName string       `json:"file_name"`
	Shape    Shape        `json:"shape"`
	Columns  []ColumnInfo `json:"columns"`
	Preview  Preview      `json:"preview"`

	// NumericColumns are the numeric columns after dedupe. Fill missing and
	// the correlation view are only offered when this is non-empty.
	NumericColumns []string `json:"numeric_columns"`

	Summary     *Summary           `json:"summary,omitempty"`
	Dedupe      *DedupeReport      `json:"dedupe,omitempty"`
	Impute      *ImputeReport      `json:"impute,omitempty"`
	Correlation *CorrelationMatrix `json:"correlation,omitempty"`

	Selected  []string `json:"selected"`
	Projected Preview  `json:"projected"`

	// ChartAvailable reports whether the projected table has a numeric column.
	ChartAvailable bool      `json:"chart_available"`
	Chart          *BarChart `json:"chart,omitempty"`

	Download *Download `json:"download,omitempty"`
	Notices  []string  `json:"notices,omitempty"`

	Duration time.Duration `json:"-"`
	// Table is the projected table the download was built from.
	Table *Table `json:"-"`
}

// Run evaluates the pipeline for one file.
func Run(f File, opts Options, limits Limits) (*Result, error) {
	start := time.Now()
	limits = limits.withDefaults()

	table, err := Ingest(f)
	if err != nil {
		return nil, err
	}

	res := &Result{
		FileName: f.Name,
		Shape:    Shape{Rows: table.NumRows(), Cols: table.NumCols()},
		Columns:  table.Info(),
		Preview:  table.Head(limits.PreviewRows),
	}

	if opts.ShowSummary {
		res.Summary = Describe(table)
	}

	if opts.RemoveDuplicates {
		before := table.NumRows()
		removed := Deduplicate(table)
		res.Dedupe = &DedupeReport{
			RowsBefore: before,
			RowsAfter:  table.NumRows(),
			Removed:    removed,
			Preview:    table.Head(limits.PreviewRows),
		}
	}

	numeric := table.NumericColumns()
	res.NumericColumns = numeric

	if opts.FillMissing {
		if len(numeric) == 0 {
			res.Notices = append(res.Notices, "Fill missing values was skipped: the file has no numeric columns.")
		} else {
			report, err := ImputeMean(table, numeric)
			if err != nil {
				return nil, fmt.Errorf("fill missing values: %w", err)
			}
			report.Preview = table.Head(limits.PreviewRows)
			res.Impute = report
		}
	}

	if opts.ShowCorrelation {
		if len(numeric) == 0 {
			res.Notices = append(res.Notices, "Correlation heatmap was skipped: the file has no numeric columns.")
		} else {
			res.Correlation = Correlate(table)
		}
	}

	projected, err := Project(table, opts.Columns)
	if err != nil {
		return nil, fmt.Errorf("select columns: %w", err)
	}
	res.Selected = projected.Names()
	res.Projected = projected.Head(limits.PreviewRows)
	res.Table = projected

	chart, ok := BarChartOf(projected, limits.ChartMaxRows)
	res.ChartAvailable = ok
	if opts.ShowChart {
		if ok {
			res.Chart = chart
		} else {
			res.Notices = append(res.Notices, "Chart was skipped: the selected columns include no numeric column.")
		}
	}

	if opts.Export {
		dl, err := Export(projected, opts.TargetFormat(), f.Name)
		if err != nil {
			return nil, err
		}
		res.Download = dl
	}

	res.Duration = time.Since(start)
	return res, nil
}

// Job pairs a file with the options chosen for it.
type Job struct {
	File    File
	Options Options
}

// BatchItem is the outcome of one job in a batch.
type BatchItem struct {
	FileName string
	Result   *Result
	Err      error
}

// RunBatch evaluates jobs sequentially in order. A failing file records its
// error and does not stop the rest.
func RunBatch(jobs []Job, limits Limits) []BatchItem {
	items := make([]BatchItem, len(jobs))
	for i, job := range jobs {
		res, err := Run(job.File, job.Options, limits)
		items[i] = BatchItem{FileName: job.File.Name, Result: res, Err: err}
	}
	return items
}
