package core

// classify.go turns raw string records into a typed Table.
//
// Classification is a single deterministic pass run once at ingest. Downstream
// steps (imputation eligibility, correlation, charts) only ever look at
// Column.Kind, never at the raw text, so the same bytes always produce the
// same decisions.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a plain decimal number.
// Matches integers, decimals, and scientific notation. Rejects inf, nan,
// hex floats and digit separators that strconv would otherwise accept.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// missingTokens are the cell values read as missing, matched after trimming.
var missingTokens = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// IsMissing reports whether a raw cell value is a missing marker.
func IsMissing(s string) bool {
	return missingTokens[strings.TrimSpace(s)]
}

// ParseNumber parses a raw cell as a finite decimal number.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Classify builds a Table from a header and rectangular records.
//
// A column is numeric iff it has at least one non-missing cell and every
// non-missing cell parses with ParseNumber. All other columns, including
// columns with no observed values, are text.
func Classify(header []string, records [][]string) *Table {
	cols := make([]*Column, len(header))
	for j, name := range header {
		cols[j] = classifyColumn(name, j, records)
	}
	return &Table{Columns: cols}
}

func classifyColumn(name string, j int, records [][]string) *Column {
	numeric := false
	for _, rec := range records {
		raw := rec[j]
		if IsMissing(raw) {
			continue
		}
		if _, ok := ParseNumber(raw); !ok {
			numeric = false
			break
		}
		numeric = true
	}

	col := &Column{Name: name, Kind: KindText, Cells: make([]Cell, len(records))}
	if numeric {
		col.Kind = KindNumeric
	}

	for i, rec := range records {
		raw := rec[j]
		switch {
		case IsMissing(raw):
			col.Cells[i] = MissingCell()
		case numeric:
			f, _ := ParseNumber(raw)
			col.Cells[i] = Number(f)
		default:
			col.Cells[i] = TextCell(raw)
		}
	}
	return col
}
