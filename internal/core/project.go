package core

import "fmt"

// Project returns a table with only the named columns, in the order given.
// An empty selection keeps every column. Columns are shared with t, not copied.
func Project(t *Table, names []string) (*Table, error) {
	if len(names) == 0 {
		return &Table{Columns: append([]*Column(nil), t.Columns...)}, nil
	}

	seen := make(map[string]bool, len(names))
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		seen[name] = true

		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		cols = append(cols, col)
	}
	return &Table{Columns: cols}, nil
}
