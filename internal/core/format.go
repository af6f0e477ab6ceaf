package core

import (
	"fmt"
	"path"
	"strings"
)

// Format is a tabular file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// MIME types offered with downloads.
const (
	MIMECSV  = "text/csv"
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Formats lists the supported formats in the order they are offered to users.
var Formats = []Format{FormatCSV, FormatXLSX}

// ParseFormat accepts a format name as typed by users or sent by forms.
// "excel" is accepted as an alias for xlsx. Empty input selects CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatFromName derives the format from a file name's extension.
func FormatFromName(name string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	switch ext {
	case "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q (expected .csv or .xlsx)", ErrUnsupportedFormat, name)
	}
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	return string(f)
}

// MIMEType returns the MIME type used for downloads.
func (f Format) MIMEType() string {
	if f == FormatXLSX {
		return MIMEXLSX
	}
	return MIMECSV
}

// Label returns the name shown in the "convert to" control.
func (f Format) Label() string {
	if f == FormatXLSX {
		return "Excel"
	}
	return "CSV"
}
