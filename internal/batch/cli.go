package batch

import (
	"fmt"
	"os"

	"github.com/mgreen/swinglab/pkg/logger"
)

// SetupLogging initializes the logger at the requested level.
// Invalid levels fall back to info.
func SetupLogging(level string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := logger.SetLevelString(level); err != nil {
		_ = logger.SetLevelString("info")
	}
	return nil
}

// ShowHelp prints usage information for the batch detection tool.
func ShowHelp() {
	os.Stdout.WriteString(`SwingLab Batch Detection Tool
=============================

Runs backswing and contact detection over every keypoint file in a dataset
directory, writes signal plots and a problem summary, and optionally exports
CSV summaries.

Usage:
  swingbatch -dataset <dir> [options]

Options:
  -dataset string
        Dataset directory to scan (required)
  -out string
        Output directory (default: <dataset>_analysis)
  -contact
        Run contact detection after backswing detection
  -csv
        Export CSV summaries (backswing, contact, downswing durations)
  -skip string
        Comma-separated video names to exclude
  -workers int
        Number of concurrent workers (default CPU cores)
  -log-level string
        Log level: debug, info, warn, error (default "info")
  -help
        Show this help message

Examples:
  # Backswing detection only
  swingbatch -dataset ./oct25

  # Full pipeline with contact detection and CSV export
  swingbatch -dataset ./oct25 -contact -csv

  # Skip a problematic video
  swingbatch -dataset ./oct25 -skip IMG_1189
`)
}
