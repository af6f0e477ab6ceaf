package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputName(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		want   string
	}{
		{"sales.csv", FormatXLSX, "sales.xlsx"},
		{"sales.xlsx", FormatCSV, "sales.csv"},
		{"q1.report.final.csv", FormatCSV, "q1.report.final.csv"},
		{"archive.2024.xlsx", FormatCSV, "archive.2024.csv"},
		{"noext", FormatCSV, "noext.csv"},
		{`C:\Users\me\data.csv`, FormatXLSX, "data.xlsx"},
		{"", FormatCSV, "export.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputName(tt.name, tt.format))
		})
	}
}

func TestExport_CSV(t *testing.T) {
	table := mustIngestCSV(t, "name,v\n\"a, b\",1.50\nc,\n")

	dl, err := Export(table, FormatCSV, "in.xlsx")
	require.NoError(t, err)

	assert.Equal(t, "in.csv", dl.FileName)
	assert.Equal(t, "text/csv", dl.MIMEType)
	assert.Equal(t, len(dl.Data), dl.Size)
	assert.Equal(t, "name,v\n\"a, b\",1.5\nc,\n", string(dl.Data))
}

func TestExport_CSVRoundTrip(t *testing.T) {
	original := mustIngestCSV(t, "id,score,tag,note\n1,0.1,x,\n2,1e-7,y,hello world\n3,123456789012345678,,\"multi\nline\"\n")

	dl, err := Export(original, FormatCSV, "data.csv")
	require.NoError(t, err)

	again, err := Ingest(File{Name: dl.FileName, Data: dl.Data})
	require.NoError(t, err)

	assert.Equal(t, original.Names(), again.Names())
	assert.Equal(t, original.Records(), again.Records())
	assert.Equal(t, original.Info(), again.Info())
}

func TestExport_CSVSingleColumnKeepsMissingRows(t *testing.T) {
	table := mustIngestCSV(t, "a,b\n1,2\n3,\n5,4\n")
	projected, err := Project(table, []string{"b"})
	require.NoError(t, err)

	dl, err := Export(projected, FormatCSV, "data.csv")
	require.NoError(t, err)
	assert.Equal(t, "b\n2\n\"\"\n4\n", string(dl.Data))

	again, err := Ingest(File{Name: dl.FileName, Data: dl.Data})
	require.NoError(t, err)
	assert.Equal(t, 3, again.NumRows())
	assert.Equal(t, projected.Records(), again.Records())
	assert.Equal(t, projected.Info(), again.Info())
}

func TestExport_XLSXRoundTrip(t *testing.T) {
	original := mustIngestCSV(t, "id,score,tag\n1,2.5,x\n2,,y\n3,-4,\n")

	dl, err := Export(original, FormatXLSX, "data.csv")
	require.NoError(t, err)
	assert.Equal(t, "data.xlsx", dl.FileName)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", dl.MIMEType)

	again, err := Ingest(File{Name: dl.FileName, Data: dl.Data})
	require.NoError(t, err)
	assert.Equal(t, original.Records(), again.Records())
	assert.Equal(t, original.Info(), again.Info())
}

func TestExport_XLSXCellTooLong(t *testing.T) {
	long := strings.Repeat("x", 32768)
	table := mustIngestCSV(t, "text\n"+long+"\n")

	_, err := Export(table, FormatXLSX, "big.csv")
	assert.ErrorIs(t, err, ErrExport)
	assert.Equal(t, "EXP001", MapError(err).Code)

	_, err = Export(table, FormatCSV, "big.csv")
	assert.NoError(t, err, "CSV has no cell limit")
}

func TestExport_UnsupportedFormat(t *testing.T) {
	table := mustIngestCSV(t, "a\n1\n")
	_, err := Export(table, Format("pdf"), "a.csv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
