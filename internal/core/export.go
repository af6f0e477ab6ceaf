package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Download is an exported file ready to be served.
type Download struct {
	FileName string `json:"file_name"`
	MIMEType string `json:"mime_type"`
	Format   Format `json:"format"`
	Size     int    `json:"size"`
	Data     []byte `json:"-"`
}

// OutputName returns the export file name: the original name up to its
// last "." followed by the target extension. Directory parts are dropped.
func OutputName(originalName string, format Format) string {
	base := path.Base(strings.ReplaceAll(originalName, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	stem := File{Name: base}.Stem()
	if stem == "" {
		stem = "export"
	}
	return stem + "." + format.Extension()
}

// Export serializes t in the given format under a name derived from originalName.
func Export(t *Table, format Format, originalName string) (*Download, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = writeCSV(t)
	case FormatXLSX:
		data, err = writeXLSX(t)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	return &Download{
		FileName: OutputName(originalName, format),
		MIMEType: format.MIMEType(),
		Format:   format,
		Size:     len(data),
		Data:     data,
	}, nil
}

func writeCSV(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := writeRecord(w, &buf, t.Names()); err != nil {
		return nil, fmt.Errorf("%w: write header: %v", ErrExport, err)
	}
	for _, rec := range t.Records() {
		if err := writeRecord(w, &buf, rec); err != nil {
			return nil, fmt.Errorf("%w: write rows: %v", ErrExport, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("%w: write rows: %v", ErrExport, err)
	}
	return buf.Bytes(), nil
}

// writeRecord writes one record. A lone empty field is quoted; csv.Writer
// would emit a blank line, which readers skip.
func writeRecord(w *csv.Writer, buf *bytes.Buffer, rec []string) error {
	if len(rec) == 1 && rec[0] == "" {
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
		buf.WriteString("\"\"\n")
		return nil
	}
	return w.Write(rec)
}

// writeXLSX writes a single-sheet workbook. Content beyond the worksheet
// limits is an error; excelize would otherwise truncate it.
func writeXLSX(t *Table) ([]byte, error) {
	if t.NumCols() > excelize.MaxColumns {
		return nil, fmt.Errorf("%w: %d columns exceeds the worksheet limit of %d", ErrExport, t.NumCols(), excelize.MaxColumns)
	}
	if t.NumRows()+1 > excelize.TotalRows {
		return nil, fmt.Errorf("%w: %d rows exceeds the worksheet limit of %d", ErrExport, t.NumRows(), excelize.TotalRows-1)
	}

	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExport, err)
	}

	header := make([]interface{}, t.NumCols())
	for j, name := range t.Names() {
		if err := checkCellLength(name, 1, j); err != nil {
			return nil, err
		}
		header[j] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("%w: write header: %v", ErrExport, err)
	}

	row := make([]interface{}, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j, col := range t.Columns {
			cell := col.Cells[i]
			switch {
			case cell.Missing:
				row[j] = nil
			case col.Kind == KindNumeric:
				row[j] = cell.Num
			default:
				if err := checkCellLength(cell.Text, i+2, j); err != nil {
					return nil, err
				}
				row[j] = cell.Text
			}
		}
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExport, err)
		}
		if err := sw.SetRow(ref, row); err != nil {
			return nil, fmt.Errorf("%w: write row %d: %v", ErrExport, i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExport, err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExport, err)
	}
	return buf.Bytes(), nil
}

func checkCellLength(s string, row, col int) error {
	if n := utf8.RuneCountInString(s); n > excelize.TotalCellChars {
		ref, _ := excelize.CoordinatesToCellName(col+1, row)
		return fmt.Errorf("%w: cell %s holds %d characters, the limit is %d", ErrExport, ref, n, excelize.TotalCellChars)
	}
	return nil
}
