package core

import (
	"strconv"
	"strings"
)

// DedupeReport records the effect of Deduplicate on a table.
type DedupeReport struct {
	RowsBefore int     `json:"rows_before"`
	RowsAfter  int     `json:"rows_after"`
	Removed    int     `json:"removed"`
	Preview    Preview `json:"preview"`
}

// Deduplicate removes rows that exactly repeat an earlier row across all
// columns, keeping the first occurrence and the order of the rest.
// Numbers compare by value and missing equals missing.
// Returns the number of rows removed.
func Deduplicate(t *Table) int {
	n := t.NumRows()
	if n < 2 {
		return 0
	}

	seen := make(map[string]struct{}, n)
	keep := make([]bool, n)
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.Reset()
		for _, col := range t.Columns {
			writeCellKey(&b, col.Kind, col.Cells[i])
		}
		key := b.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep[i] = true
	}

	removed := n - len(seen)
	if removed == 0 {
		return 0
	}

	for _, col := range t.Columns {
		kept := col.Cells[:0]
		for i, cell := range col.Cells {
			if keep[i] {
				kept = append(kept, cell)
			}
		}
		col.Cells = kept
	}
	return removed
}

// writeCellKey appends an unambiguous encoding of a cell. Text is length
// prefixed so no cell boundary can be forged by its content.
func writeCellKey(b *strings.Builder, kind Kind, c Cell) {
	switch {
	case c.Missing:
		b.WriteString("m;")
	case kind == KindText:
		b.WriteByte('t')
		b.WriteString(strconv.Itoa(len(c.Text)))
		b.WriteByte(':')
		b.WriteString(c.Text)
	default:
		f := c.Num
		if f == 0 {
			f = 0 // fold -0 into 0
		}
		b.WriteByte('n')
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		b.WriteByte(';')
	}
}
