package core

// # Error Codes Reference
//
// User-facing messages with codes for support reference. Users quote the
// code; support staff look it up here.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: the upload exceeds the per-file size limit
//	          Action: Split the file or remove unused columns
//	          Match: ErrFileTooLarge, "request body too large"
//
//	FILE002 - Unsupported format: only .csv and .xlsx are accepted
//	          Action: Save the file as CSV or Excel workbook
//	          Match: ErrUnsupportedFormat
//
//	FILE003 - Empty file: the file has no bytes or no header row
//	          Action: Upload a file with a header row
//	          Match: ErrEmptyFile
//
//	FILE004 - No file: the upload form carried no files
//	          Action: Choose at least one file
//	          Match: ErrEmptyFile with "no files uploaded"
//
//	FILE005 - Not found: the upload expired or was deleted
//	          Action: Upload the file again
//	          Match: ErrFileNotFound
//
//	FILE006 - Store full: too many uploads are held in memory
//	          Action: Delete old uploads or try again later
//	          Match: ErrStoreFull
//
//	FILE007 - Too many files: one upload carried more files than allowed
//	          Action: Upload the files in smaller groups
//	          Match: ErrTooManyFiles
//
// # Parse Errors (PARSE001-PARSE099)
//
//	PARSE001 - Ragged rows: a row has more values than the header
//	           Match: ErrParse with "fields in line"
//
//	PARSE002 - Corrupt workbook: the Excel file cannot be opened
//	           Match: ErrParse with "workbook" or "sheet"
//
//	PARSE003 - Malformed CSV: quoting or structure is invalid
//	           Match: ErrParse
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Cell too long: a text cell exceeds the Excel cell limit
//	         Match: ErrExport with "characters"
//
//	EXP002 - Sheet too large: more rows or columns than an Excel sheet holds
//	         Match: ErrExport with "worksheet limit"
//
//	EXP003 - Export failed: any other serialization failure
//	         Match: ErrExport
//
// # Column Errors (COL001-COL099)
//
//	COL001 - Unknown column        Match: ErrUnknownColumn
//	COL002 - Column selected twice Match: ErrDuplicateColumn
//	COL003 - Column not numeric    Match: ErrNotNumeric
//
// # Option Errors (OPT001-OPT099)
//
//	OPT001 - Invalid options: a control value is out of range
//	         Match: ErrInvalidOptions
//
// # Evaluation Errors (RUN001-RUN099)
//
//	RUN001 - Busy: every evaluation slot stayed occupied
//	         Match: ErrTooManyRuns
//
//	RUN002 - Cancelled: the request was cancelled
//	         Match: context.Canceled
//
//	RUN003 - Timeout: the request took too long
//	         Match: context.DeadlineExceeded
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests   Match: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.
//
// # Matching
//
// Rules are tried in order and the first match wins. A rule matches when its
// sentinel is found with errors.Is (if set) and its pattern occurs in the
// lowercased error text (if set). Specific rules come before general ones.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorRule struct {
	target  error
	pattern string
	msg     UserMessage
}

func (r errorRule) matches(err error, text string) bool {
	if r.target != nil && !errors.Is(err, r.target) {
		return false
	}
	if r.pattern != "" && !strings.Contains(text, r.pattern) {
		return false
	}
	return true
}

var errorRules = []errorRule{
	// File errors
	{target: ErrFileTooLarge, msg: UserMessage{
		Message: "File exceeds the upload size limit",
		Action:  "Split the file or remove unused columns",
		Code:    "FILE001",
	}},
	{pattern: "request body too large", msg: UserMessage{
		Message: "File exceeds the upload size limit",
		Action:  "Split the file or remove unused columns",
		Code:    "FILE001",
	}},
	{target: ErrUnsupportedFormat, msg: UserMessage{
		Message: "Only CSV and Excel (.xlsx) files are supported",
		Action:  "Save the file as CSV or as an Excel workbook",
		Code:    "FILE002",
	}},
	{target: ErrEmptyFile, pattern: "no files uploaded", msg: UserMessage{
		Message: "No file was selected",
		Action:  "Choose at least one CSV or Excel file",
		Code:    "FILE004",
	}},
	{target: ErrEmptyFile, msg: UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Upload a file with a header row",
		Code:    "FILE003",
	}},
	{target: ErrFileNotFound, msg: UserMessage{
		Message: "The uploaded file is no longer available",
		Action:  "Upload the file again",
		Code:    "FILE005",
	}},
	{target: ErrStoreFull, msg: UserMessage{
		Message: "Too many files are being held right now",
		Action:  "Delete files you no longer need or try again later",
		Code:    "FILE006",
	}},
	{target: ErrTooManyFiles, msg: UserMessage{
		Message: "Too many files in one upload",
		Action:  "Upload the files in smaller groups",
		Code:    "FILE007",
	}},

	// Parse errors
	{target: ErrParse, pattern: "fields in line", msg: UserMessage{
		Message: "A row has more values than the header",
		Action:  "Check for unquoted commas in that line",
		Code:    "PARSE001",
	}},
	{target: ErrParse, pattern: "workbook", msg: UserMessage{
		Message: "The Excel file could not be opened",
		Action:  "Re-save the workbook as .xlsx and upload it again",
		Code:    "PARSE002",
	}},
	{target: ErrParse, pattern: "sheet", msg: UserMessage{
		Message: "The Excel file could not be opened",
		Action:  "Re-save the workbook as .xlsx and upload it again",
		Code:    "PARSE002",
	}},
	{target: ErrParse, msg: UserMessage{
		Message: "The CSV file is malformed",
		Action:  "Check quoting and make sure the file is comma-separated",
		Code:    "PARSE003",
	}},

	// Export errors
	{target: ErrExport, pattern: "characters", msg: UserMessage{
		Message: "A cell holds more text than Excel allows",
		Action:  "Export as CSV instead",
		Code:    "EXP001",
	}},
	{target: ErrExport, pattern: "worksheet limit", msg: UserMessage{
		Message: "The table is larger than an Excel sheet can hold",
		Action:  "Export as CSV or select fewer columns",
		Code:    "EXP002",
	}},
	{target: ErrExport, msg: UserMessage{
		Message: "The file could not be exported",
		Action:  "Try the other output format",
		Code:    "EXP003",
	}},

	// Column errors
	{target: ErrUnknownColumn, msg: UserMessage{
		Message: "A selected column does not exist in this file",
		Action:  "Reload the page and select the columns again",
		Code:    "COL001",
	}},
	{target: ErrDuplicateColumn, msg: UserMessage{
		Message: "A column was selected more than once",
		Action:  "Select each column only once",
		Code:    "COL002",
	}},
	{target: ErrNotNumeric, msg: UserMessage{
		Message: "Missing values can only be filled in numeric columns",
		Action:  "Select numeric columns only",
		Code:    "COL003",
	}},

	// Option errors
	{target: ErrInvalidOptions, msg: UserMessage{
		Message: "Some options are invalid",
		Action:  "Check the selected output format and columns",
		Code:    "OPT001",
	}},

	// Evaluation errors
	{target: ErrTooManyRuns, msg: UserMessage{
		Message: "The server is busy processing other files",
		Action:  "Please wait a moment and try again",
		Code:    "RUN001",
	}},
	{target: context.Canceled, msg: UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "RUN002",
	}},
	{target: context.DeadlineExceeded, msg: UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or fewer options",
		Code:    "RUN003",
	}},

	{pattern: "rate limit", msg: UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when no rule matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. The first
// matching rule wins; unmatched errors get the ERR000 fallback.
//
// Example:
//
//	_, err := Ingest(File{Name: "report.pdf", Data: data})
//	msg := MapError(err)
//	// msg.Code == "FILE002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	text := strings.ToLower(err.Error())
	for _, rule := range errorRules {
		if rule.matches(err, text) {
			return rule.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logging, with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
