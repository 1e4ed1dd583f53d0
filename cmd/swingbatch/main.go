package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/mgreen/swinglab/internal/batch"
	"github.com/mgreen/swinglab/internal/domain/swing"
)

func main() {
	var (
		dataset  = flag.String("dataset", "", "Dataset directory to scan (required)")
		out      = flag.String("out", "", "Output directory (default: <dataset>_analysis)")
		contact  = flag.Bool("contact", false, "Run contact detection after backswing detection")
		csv      = flag.Bool("csv", false, "Export CSV summaries")
		skip     = flag.String("skip", "", "Comma-separated video names to exclude")
		workers  = flag.Int("workers", runtime.NumCPU(), "Number of concurrent workers")
		logLevel = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help || *dataset == "" {
		batch.ShowHelp()
		if *dataset == "" && !*help {
			os.Exit(2)
		}
		return
	}

	if err := batch.SetupLogging(*logLevel); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	datasetDir, err := filepath.Abs(*dataset)
	if err != nil {
		os.Stderr.WriteString("Invalid dataset directory: " + err.Error() + "\n")
		os.Exit(2)
	}
	outDir := *out
	if outDir == "" {
		outDir = filepath.Base(datasetDir) + "_analysis"
	}

	var skipList []string
	if *skip != "" {
		for _, s := range strings.Split(*skip, ",") {
			if s = strings.TrimSpace(s); s != "" {
				skipList = append(skipList, s)
			}
		}
	}

	// Cancel on SIGINT/SIGTERM so a long batch can be interrupted cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config := &batch.Config{
		DatasetDir: datasetDir,
		OutDir:     outDir,
		Contact:    *contact,
		CSV:        *csv,
		Skip:       skipList,
		Workers:    *workers,
		Params:     swing.DefaultParams(),
	}

	if err := batch.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Batch run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
