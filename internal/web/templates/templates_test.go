package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fileconv/internal/core"
)

func TestPreviewTable_EscapesCells(t *testing.T) {
	var buf bytes.Buffer
	err := PreviewTable(core.Preview{
		Columns: []string{"<h>"},
		Rows:    [][]string{{"a&b"}},
	}).Render(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "&lt;h&gt;")
	assert.Contains(t, out, "a&amp;b")
	assert.NotContains(t, out, "<h>")
}

func TestFilePanel_Error(t *testing.T) {
	var buf bytes.Buffer
	err := FilePanel(FileView{
		Info:  core.FileInfo{ID: "f1", Name: "bad.xlsx"},
		Error: &core.UserMessage{Message: "Cannot open", Action: "Re-save", Code: "PARSE002"},
	}).Render(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Preview: bad.xlsx")
	assert.Contains(t, out, "PARSE002")
	assert.NotContains(t, out, "Select Columns")
}

func TestFilePanel_Controls(t *testing.T) {
	res, err := core.Run(core.File{Name: "s.csv", Data: []byte("a,b\n1,2\n1,2\n3,\n")},
		core.Options{RemoveDuplicates: true, ShowSummary: true, Format: core.FormatXLSX}, core.DefaultLimits)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = FilePanel(FileView{
		Info:        core.FileInfo{ID: "f1", Name: "s.csv"},
		Options:     core.Options{RemoveDuplicates: true, ShowSummary: true, Format: core.FormatXLSX},
		Result:      res,
		DownloadURL: "/api/files/f1/download?dedupe=on&format=xlsx",
	}).Render(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `name="f1.dedupe" value="on" checked`)
	assert.Contains(t, out, `name="f1.impute" value="on">`)
	assert.Contains(t, out, `value="xlsx" checked`)
	assert.Contains(t, out, "Duplicates removed: 1 of 3 rows.")
	assert.Contains(t, out, "Download s.xlsx")
	assert.Contains(t, out, "dedupe=on&amp;format=xlsx")
	assert.True(t, strings.Contains(out, "<th>mean</th>"), "summary table rendered")
}

func TestUploadPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, UploadPage(UploadPageData{MaxFileSize: 50 << 20, MaxFiles: 10}).Render(context.Background(), &buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `name="files"`)
	assert.Contains(t, out, "Up to 10 files, 50 MB each.")
}
