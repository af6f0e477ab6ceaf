package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the inferred type of a column.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
)

// String returns the kind name used in JSON and templates.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	default:
		return "text"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Cell is a single value: a number, a text or the missing marker.
type Cell struct {
	Missing bool
	Num     float64
	Text    string
}

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{Num: f} }

// TextCell returns a text cell.
func TextCell(s string) Cell { return Cell{Text: s} }

// MissingCell returns the missing marker.
func MissingCell() Cell { return Cell{Missing: true} }

// Format renders the cell for display and CSV output.
// Missing cells render as the empty string.
func (c Cell) Format(kind Kind) string {
	if c.Missing {
		return ""
	}
	if kind == KindNumeric {
		return FormatNumber(c.Num)
	}
	return c.Text
}

// FormatNumber renders a float in its shortest round-trip decimal form.
// Very large or very small magnitudes fall back to exponent notation.
func FormatNumber(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e15 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Float is a float64 that encodes NaN and infinities as JSON null.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// IsNaN reports whether the value is undefined.
func (f Float) IsNaN() bool { return math.IsNaN(float64(f)) }

// Column is a named, typed sequence of cells.
type Column struct {
	Name  string
	Kind  Kind
	Cells []Cell
}

// Observed returns the non-missing numeric values of the column in row order.
// Returns nil for text columns.
func (c *Column) Observed() []float64 {
	if c.Kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if !cell.Missing {
			out = append(out, cell.Num)
		}
	}
	return out
}

// MissingCount returns how many cells in the column are missing.
func (c *Column) MissingCount() int {
	n := 0
	for _, cell := range c.Cells {
		if cell.Missing {
			n++
		}
	}
	return n
}

// Table is an ordered set of uniquely named columns sharing one row count.
type Table struct {
	Columns []*Column
}

// NewTable builds a table from columns, enforcing the shape invariants.
func NewTable(cols ...*Column) (*Table, error) {
	seen := make(map[string]bool, len(cols))
	for i, col := range cols {
		if seen[col.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col.Name)
		}
		seen[col.Name] = true
		if i > 0 && len(col.Cells) != len(cols[0].Cells) {
			return nil, fmt.Errorf("column %q has %d rows, want %d", col.Name, len(col.Cells), len(cols[0].Cells))
		}
	}
	return &Table{Columns: cols}, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	return len(t.Columns)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return nil, false
}

// NumericColumns returns the names of numeric columns in table order.
func (t *Table) NumericColumns() []string {
	var names []string
	for _, col := range t.Columns {
		if col.Kind == KindNumeric {
			names = append(names, col.Name)
		}
	}
	return names
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.Columns))
	for i, col := range t.Columns {
		cells := make([]Cell, len(col.Cells))
		copy(cells, col.Cells)
		cols[i] = &Column{Name: col.Name, Kind: col.Kind, Cells: cells}
	}
	return &Table{Columns: cols}
}

// Records returns every row rendered as display strings.
func (t *Table) Records() [][]string {
	return t.records(t.NumRows())
}

// Head returns a preview of the first n rows.
func (t *Table) Head(n int) Preview {
	if n < 0 || n > t.NumRows() {
		n = t.NumRows()
	}
	return Preview{
		Columns:   t.Names(),
		Rows:      t.records(n),
		TotalRows: t.NumRows(),
	}
}

func (t *Table) records(n int) [][]string {
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			row[j] = col.Cells[i].Format(col.Kind)
		}
		rows[i] = row
	}
	return rows
}

// Preview is a head-of-table view for display.
type Preview struct {
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
}

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`
	Missing int    `json:"missing"`
}

// Info returns name, kind and missing count per column.
func (t *Table) Info() []ColumnInfo {
	infos := make([]ColumnInfo, len(t.Columns))
	for i, col := range t.Columns {
		infos[i] = ColumnInfo{Name: col.Name, Kind: col.Kind, Missing: col.MissingCount()}
	}
	return infos
}

// File is an uploaded file: its name selects the source format.
type File struct {
	Name string
	Data []byte
}

// Stem returns the file name without its final extension.
func (f File) Stem() string {
	if i := strings.LastIndex(f.Name, "."); i >= 0 {
		return f.Name[:i]
	}
	return f.Name
}
