package core

// ingest.go parses uploaded bytes into a Table.
//
// The file extension alone selects the codec:
//   - csv:  comma-delimited text, first record is the header
//   - xlsx: first worksheet, first non-empty row is the header
//
// Both paths produce a header plus rectangular string records, normalize the
// header so names are non-empty and unique, then hand off to Classify.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Ingest parses a file into a Table with classified column kinds.
func Ingest(f File) (*Table, error) {
	format, err := FormatFromName(f.Name)
	if err != nil {
		return nil, err
	}
	if len(f.Data) == 0 {
		return nil, fmt.Errorf("%s: %w", f.Name, ErrEmptyFile)
	}

	var header []string
	var records [][]string
	switch format {
	case FormatCSV:
		header, records, err = readCSV(f.Data)
	case FormatXLSX:
		header, records, err = readXLSX(f.Data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}

	return Classify(normalizeHeader(header), records), nil
}

// readCSV reads delimited text. Records longer than the header are rejected;
// shorter records are padded with empty (missing) fields.
func readCSV(data []byte) ([]string, [][]string, error) {
	r := csv.NewReader(NewDecodingReader(bytes.NewReader(data)))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read header: %v", ErrParse, err)
	}
	width := len(header)

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if len(rec) > width {
			line, _ := r.FieldPos(0)
			return nil, nil, fmt.Errorf("%w: expected %d fields in line %d, saw %d", ErrParse, width, line, len(rec))
		}
		records = append(records, pad(rec, width))
	}

	return header, records, nil
}

// readXLSX reads the first worksheet of a workbook using raw cell values, so
// numbers come back unformatted. Fully empty rows are skipped and the table
// is as wide as its widest row.
func readXLSX(data []byte) ([]string, [][]string, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open workbook: %v", ErrParse, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: workbook has no sheets", ErrParse)
	}

	rows, err := wb.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read sheet %q: %v", ErrParse, sheets[0], err)
	}

	var kept [][]string
	width := 0
	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		if err := restoreBooleans(wb, sheets[0], i+1, row); err != nil {
			return nil, nil, fmt.Errorf("%w: read sheet %q: %v", ErrParse, sheets[0], err)
		}
		kept = append(kept, row)
		if len(row) > width {
			width = len(row)
		}
	}
	if len(kept) == 0 {
		return nil, nil, ErrEmptyFile
	}

	header := pad(kept[0], width)
	records := make([][]string, 0, len(kept)-1)
	for _, row := range kept[1:] {
		records = append(records, pad(row, width))
	}
	return header, records, nil
}

// restoreBooleans rewrites boolean cells, which raw values report as 1 and 0,
// to TRUE and FALSE so they classify as text.
func restoreBooleans(wb *excelize.File, sheet string, rowNum int, row []string) error {
	for j, v := range row {
		if v != "0" && v != "1" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(j+1, rowNum)
		if err != nil {
			return err
		}
		typ, err := wb.GetCellType(sheet, cell)
		if err != nil {
			return err
		}
		if typ != excelize.CellTypeBool {
			continue
		}
		if v == "1" {
			row[j] = "TRUE"
		} else {
			row[j] = "FALSE"
		}
	}
	return nil
}

// normalizeHeader names empty headers "Unnamed: <i>" and suffixes repeated
// names with ".1", ".2", ... so every column name is unique.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = h + "." + strconv.Itoa(n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// pad returns rec extended with empty strings to width. The input is not modified.
func pad(rec []string, width int) []string {
	if len(rec) >= width {
		return rec
	}
	out := make([]string, width)
	copy(out, rec)
	return out
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
