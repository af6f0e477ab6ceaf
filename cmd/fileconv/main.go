// Command fileconv cleans and converts CSV and Excel files from the command line.
//
//	fileconv [-format csv|xlsx] [-dedupe] [-impute] [-columns a,b] [-out dir] file-or-dir...
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/fileconv/internal/config"
	"github.com/JonMunkholm/fileconv/internal/convert"
	"github.com/JonMunkholm/fileconv/internal/core"
	"github.com/JonMunkholm/fileconv/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	format := flag.String("format", "csv", "output format: csv or xlsx")
	dedupe := flag.Bool("dedupe", false, "remove duplicate rows")
	impute := flag.Bool("impute", false, "fill missing numeric values with the column mean")
	columns := flag.String("columns", "", "comma-separated columns to keep, in order (default all)")
	outDir := flag.String("out", "", "output directory (default next to each source file)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file-or-dir...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	closeLogs := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.SeqURL)
	defer closeLogs()

	target, err := core.ParseFormat(*format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	opts := core.Options{
		RemoveDuplicates: *dedupe,
		FillMissing:      *impute,
		Format:           target,
	}
	for _, c := range strings.Split(*columns, ",") {
		if c = strings.TrimSpace(c); c != "" {
			opts.Columns = append(opts.Columns, c)
		}
	}

	files, err := convert.Collect(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no .csv or .xlsx files found")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limits := core.Limits{PreviewRows: cfg.Pipeline.PreviewRows, ChartMaxRows: cfg.Pipeline.ChartMaxRows}
	outcomes, err := convert.Files(ctx, files, *outDir, opts, limits)
	if err != nil {
		slog.Error("conversion interrupted", "error", err)
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			msg := core.MapError(o.Err)
			fmt.Printf("FAIL %s: %s (%s)\n", o.Source, msg.Message, msg.Code)
			continue
		}
		fmt.Printf("ok   %s -> %s (%d rows, %d columns", o.Source, o.Output, o.Rows, o.Cols)
		if *dedupe {
			fmt.Printf(", %d duplicates removed", o.Removed)
		}
		if *impute {
			fmt.Printf(", %d cells filled", o.Filled)
		}
		fmt.Println(")")
	}

	if failed > 0 || err != nil {
		return 1
	}
	return 0
}
