package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name        string
		csv         string
		wantRemoved int
		wantRows    [][]string
	}{
		{
			name:        "exact duplicates keep first",
			csv:         "a,b\n1,2\n1,2\n3,\n",
			wantRemoved: 1,
			wantRows:    [][]string{{"1", "2"}, {"3", ""}},
		},
		{
			name:        "numbers compare by value",
			csv:         "a,b\n1,x\n1.0,x\n01,x\n",
			wantRemoved: 2,
			wantRows:    [][]string{{"1", "x"}},
		},
		{
			name:        "missing equals missing",
			csv:         "a,b\n,x\nNA,x\n",
			wantRemoved: 1,
			wantRows:    [][]string{{"", "x"}},
		},
		{
			name:        "order preserved",
			csv:         "a\nc\nb\nc\na\nb\n",
			wantRemoved: 2,
			wantRows:    [][]string{{"c"}, {"b"}, {"a"}},
		},
		{
			name:        "no duplicates",
			csv:         "a,b\n1,2\n2,1\n",
			wantRemoved: 0,
			wantRows:    [][]string{{"1", "2"}, {"2", "1"}},
		},
		{
			name:        "cell boundaries are not ambiguous",
			csv:         "a,b\nx:,y\nx,:y\n",
			wantRemoved: 0,
			wantRows:    [][]string{{"x:", "y"}, {"x", ":y"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := mustIngestCSV(t, tt.csv)
			names := table.Names()

			removed := Deduplicate(table)

			assert.Equal(t, tt.wantRemoved, removed)
			assert.Equal(t, tt.wantRows, table.Records())
			assert.Equal(t, names, table.Names(), "column set is preserved")
		})
	}
}

func TestDeduplicate_Idempotent(t *testing.T) {
	table := mustIngestCSV(t, "a,b,c\n1,x,\n1,x,\n2,y,3\n1,x,\n2,y,3\n")

	Deduplicate(table)
	once := table.Clone()

	assert.Equal(t, 0, Deduplicate(table))
	assert.Equal(t, once, table)
}

func TestDeduplicate_NegativeZero(t *testing.T) {
	table := mustIngestCSV(t, "a\n0\n-0\n")
	assert.Equal(t, 1, Deduplicate(table))
}
