package core

import "errors"

// Sentinel errors. Callers wrap them with context using fmt.Errorf("...: %w", err)
// and match them with errors.Is; MapError turns them into user messages.
var (
	// ErrUnsupportedFormat is returned for file extensions other than csv and xlsx.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyFile is returned when an upload has no bytes or no header row.
	ErrEmptyFile = errors.New("empty file")

	// ErrParse wraps malformed CSV records and corrupt workbooks.
	ErrParse = errors.New("parse error")

	// ErrExport wraps content the target format cannot hold.
	ErrExport = errors.New("export error")

	// ErrUnknownColumn is returned when a selection names a column the table lacks.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrDuplicateColumn is returned when a selection names a column twice.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrNotNumeric is returned when imputation targets a text column.
	ErrNotNumeric = errors.New("column is not numeric")

	// ErrFileNotFound is returned for unknown or expired upload ids.
	ErrFileNotFound = errors.New("file not found")

	// ErrStoreFull is returned when the upload store is at capacity.
	ErrStoreFull = errors.New("upload store is full")

	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrTooManyFiles is returned when one upload carries more files than allowed.
	ErrTooManyFiles = errors.New("too many files")

	// ErrInvalidOptions wraps option values that fail validation.
	ErrInvalidOptions = errors.New("invalid options")
)
