package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"file too large", fmt.Errorf("upload a.csv: %w", ErrFileTooLarge), "FILE001"},
		{"body too large pattern", errors.New("http: request body too large"), "FILE001"},
		{"unsupported format", fmt.Errorf("%w: %q", ErrUnsupportedFormat, "a.pdf"), "FILE002"},
		{"empty file", fmt.Errorf("a.csv: %w", ErrEmptyFile), "FILE003"},
		{"no files", fmt.Errorf("no files uploaded: %w", ErrEmptyFile), "FILE004"},
		{"expired upload", fmt.Errorf("file x: %w", ErrFileNotFound), "FILE005"},
		{"store full", ErrStoreFull, "FILE006"},
		{"too many files", fmt.Errorf("%w: at most 10 per upload", ErrTooManyFiles), "FILE007"},
		{"ragged csv", fmt.Errorf("%w: expected 2 fields in line 3, saw 3", ErrParse), "PARSE001"},
		{"corrupt workbook", fmt.Errorf("%w: open workbook: zip: not a valid zip file", ErrParse), "PARSE002"},
		{"bad quoting", fmt.Errorf("%w: bare \" in non-quoted field", ErrParse), "PARSE003"},
		{"long cell", fmt.Errorf("%w: cell B2 holds 40000 characters, the limit is 32767", ErrExport), "EXP001"},
		{"big sheet", fmt.Errorf("%w: 20000 columns exceeds the worksheet limit of 16384", ErrExport), "EXP002"},
		{"other export", fmt.Errorf("%w: disk", ErrExport), "EXP003"},
		{"unknown column", fmt.Errorf("select columns: %w: %q", ErrUnknownColumn, "z"), "COL001"},
		{"duplicate column", ErrDuplicateColumn, "COL002"},
		{"not numeric", fmt.Errorf("impute %q: %w", "name", ErrNotNumeric), "COL003"},
		{"invalid options", fmt.Errorf("%w: format", ErrInvalidOptions), "OPT001"},
		{"busy", ErrTooManyRuns, "RUN001"},
		{"cancelled", fmt.Errorf("evaluate: %w", context.Canceled), "RUN002"},
		{"deadline", context.DeadlineExceeded, "RUN003"},
		{"rate limit pattern", errors.New("Rate limit exceeded"), "RATE001"},
		{"unknown error returns default", errors.New("some random internal error"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestMapError_IngestErrors(t *testing.T) {
	_, err := Ingest(File{Name: "report.pdf", Data: []byte("x")})
	if got := MapError(err).Code; got != "FILE002" {
		t.Errorf("pdf code = %q, want FILE002", got)
	}

	_, err = Ingest(File{Name: "a.csv", Data: []byte("a,b\n1,2,3\n")})
	if got := MapError(err).Code; got != "PARSE001" {
		t.Errorf("ragged code = %q, want PARSE001", got)
	}

	_, err = Ingest(File{Name: "a.xlsx", Data: []byte("not a zip")})
	if got := MapError(err).Code; got != "PARSE002" {
		t.Errorf("corrupt xlsx code = %q, want PARSE002", got)
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrTooManyRuns)
	want := "The server is busy processing other files (Code: RUN001). Please wait a moment and try again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrEmptyFile, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	if got := NewUserError(nil); got != nil {
		t.Errorf("NewUserError(nil) = %v, want nil", got)
	}

	techErr := fmt.Errorf("a.csv: %w", ErrEmptyFile)
	userErr := NewUserError(techErr)
	if userErr.Error() != "The uploaded file is empty" {
		t.Errorf("Error() = %q, want user message", userErr.Error())
	}
	if !errors.Is(userErr, ErrEmptyFile) {
		t.Error("Unwrap() should expose the original error")
	}
	if userErr.User.Code != "FILE003" {
		t.Errorf("Code = %q, want FILE003", userErr.User.Code)
	}
}
