// Package convert runs the cleaning pipeline over files on disk.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/JonMunkholm/fileconv/internal/core"
)

// ErrWouldOverwrite is returned when an output path equals its source file.
var ErrWouldOverwrite = errors.New("output would overwrite the source file")

// Outcome is the result of converting one file.
type Outcome struct {
	Source string
	Output string
	Rows   int
	Cols   int

	// Removed and Filled are zero unless the matching step ran.
	Removed int
	Filled  int

	Err error
}

// Collect expands paths into the convertible files they name. Directories
// contribute their .csv and .xlsx entries, sorted by name, without recursing.
func Collect(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", p, err)
		}
		var names []string
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if _, err := core.FormatFromName(entry.Name()); err != nil {
				continue
			}
			names = append(names, entry.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			files = append(files, filepath.Join(p, name))
		}
	}
	return files, nil
}

// Files converts each file in order and writes the export into outDir, or
// next to the source when outDir is empty. A failing file is recorded in its
// Outcome and does not stop the rest. The returned error is only set when
// ctx is cancelled or outDir cannot be created.
func Files(ctx context.Context, files []string, outDir string, opts core.Options, limits core.Limits) ([]Outcome, error) {
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	opts.Export = true

	outcomes := make([]Outcome, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		out := convertFile(path, outDir, opts, limits)
		if out.Err != nil {
			slog.WarnContext(ctx, "conversion failed", "file", path, "error", out.Err)
		} else {
			slog.InfoContext(ctx, "converted", "file", path, "output", out.Output, "rows", out.Rows)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

func convertFile(path, outDir string, opts core.Options, limits core.Limits) Outcome {
	out := Outcome{Source: path}

	data, err := os.ReadFile(path)
	if err != nil {
		out.Err = err
		return out
	}

	res, err := core.Run(core.File{Name: filepath.Base(path), Data: data}, opts, limits)
	if err != nil {
		out.Err = err
		return out
	}
	out.Rows = res.Table.NumRows()
	out.Cols = res.Table.NumCols()
	if res.Dedupe != nil {
		out.Removed = res.Dedupe.Removed
	}
	if res.Impute != nil {
		out.Filled = res.Impute.Filled()
	}

	dir := outDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	target := filepath.Join(dir, res.Download.FileName)
	if samePath(target, path) {
		out.Err = fmt.Errorf("%s: %w", target, ErrWouldOverwrite)
		return out
	}
	if err := os.WriteFile(target, res.Download.Data, 0o644); err != nil {
		out.Err = fmt.Errorf("write %s: %w", target, err)
		return out
	}
	out.Output = target
	return out
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
