package batch

import (
	"time"

	"github.com/mgreen/swinglab/internal/domain/swing"
)

// Config holds configuration for a batch detection run
type Config struct {
	DatasetDir string       // Dataset directory to scan
	OutDir     string       // Output directory for plots, CSVs, and summaries
	Contact    bool         // Run contact detection after backswing detection
	CSV        bool         // Export CSV summaries
	Skip       []string     // Video names to exclude
	Workers    int          // Number of concurrent workers
	Params     swing.Params // Detection parameters
}

// Stats holds batch run statistics
type Stats struct {
	VideosFound    int
	VideosAnalyzed int
	VideosFailed   int
	TotalSwings    int
	TotalContacts  int
	ProblemVideos  int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
