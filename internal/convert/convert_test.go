package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/fileconv/internal/core"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "x\n1\n")
	writeFile(t, dir, "a.xlsx", "")
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755))
	single := writeFile(t, t.TempDir(), "single.csv", "x\n1\n")

	files, err := Collect([]string{dir, single})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.xlsx"),
		filepath.Join(dir, "b.csv"),
		single,
	}, files)

	_, err = Collect([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestFiles_ToXLSX(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	path := writeFile(t, src, "sales.csv", "a,b\n1,2\n1,2\n3,\n")

	outcomes, err := Files(context.Background(), []string{path}, out,
		core.Options{RemoveDuplicates: true, FillMissing: true, Format: core.FormatXLSX}, core.DefaultLimits)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	o := outcomes[0]
	require.NoError(t, o.Err)
	assert.Equal(t, filepath.Join(out, "sales.xlsx"), o.Output)
	assert.Equal(t, 2, o.Rows)
	assert.Equal(t, 1, o.Removed)
	assert.Equal(t, 1, o.Filled)

	f, err := excelize.OpenFile(o.Output)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}, {"3", "2"}}, rows)
}

func TestFiles_FailureDoesNotStopOthers(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.xlsx", "not a workbook")
	good := writeFile(t, dir, "good.csv", "x\n1\n")

	outcomes, err := Files(context.Background(), []string{bad, good}, "", core.Options{Format: core.FormatXLSX}, core.DefaultLimits)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.ErrorIs(t, outcomes[0].Err, core.ErrParse)
	require.NoError(t, outcomes[1].Err)
	assert.Equal(t, filepath.Join(dir, "good.xlsx"), outcomes[1].Output)
}

func TestFiles_RefusesToOverwriteSource(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "x\n1\n")

	outcomes, err := Files(context.Background(), []string{path}, "", core.Options{Format: core.FormatCSV}, core.DefaultLimits)
	require.NoError(t, err)
	assert.ErrorIs(t, outcomes[0].Err, ErrWouldOverwrite)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x\n1\n", string(content))
}

func TestFiles_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := Files(ctx, []string{"a.csv"}, "", core.Options{}, core.DefaultLimits)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, outcomes)
}
