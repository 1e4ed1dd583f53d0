package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mgreen/swinglab/internal/adapters/keypoints"
	"github.com/mgreen/swinglab/internal/export"
	"github.com/mgreen/swinglab/internal/pipeline"
	"github.com/mgreen/swinglab/internal/visualize"
	"github.com/mgreen/swinglab/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	summaryPermission   = 0600
)

// report is the outcome of analyzing one video.
type report struct {
	video    keypoints.Video
	swings   *pipeline.Result
	contacts *pipeline.ContactResult
	problems []string
	err      error
}

// Run executes the complete batch detection: discover the dataset, analyze
// every video with a bounded worker group, write plots and summaries, and
// optionally export CSVs.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting batch detection",
		logger.String("dataset", config.DatasetDir),
		logger.String("out", config.OutDir),
		logger.Any("contact", config.Contact),
		logger.Any("csv", config.CSV),
		logger.Int("workers", config.Workers))

	// Step 1: Discover videos
	videos, err := keypoints.Discover(config.DatasetDir, config.Skip)
	if err != nil {
		return fmt.Errorf("dataset discovery failed: %w", err)
	}
	if len(videos) == 0 {
		return fmt.Errorf("%w: %s", ErrNoVideos, config.DatasetDir)
	}
	stats.VideosFound = len(videos)

	names := make([]string, len(videos))
	for i, v := range videos {
		names[i] = v.Name
	}
	fmt.Printf("Found %d videos: %s\n", len(videos), strings.Join(names, ", "))

	if err := os.MkdirAll(config.OutDir, directoryPermission); err != nil {
		return fmt.Errorf("%w: %v", ErrOutput, err)
	}

	// Step 2: Analyze concurrently
	reports := analyzeAll(ctx, config, videos)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("batch cancelled: %w", err)
	}

	// Step 3: Per-video output in dataset order
	problems := make(map[string][]string)
	var problemOrder []string
	var csvResults []export.VideoResult
	for _, r := range reports {
		if r.err != nil {
			stats.VideosFailed++
			fmt.Printf("%s: FAILED (%v)\n", r.video.Name, r.err)
			continue
		}
		stats.VideosAnalyzed++
		stats.TotalSwings += r.swings.NumSwings()

		line := fmt.Sprintf("%s: %d swings", r.video.Name, r.swings.NumSwings())
		if r.contacts != nil {
			stats.TotalContacts += len(r.contacts.Frames)
			line += fmt.Sprintf(", %d contacts", len(r.contacts.Frames))
		}
		if filters := filterNames(r.swings.FilterLog); len(filters) > 0 {
			line += fmt.Sprintf("  [filters: %s]", strings.Join(filters, ", "))
		}

		plotPath, err := writeReportPlot(config.OutDir, r)
		if err != nil {
			logger.Get().Warn(ctx, "failed to write plot",
				logger.String("video", r.video.Name), logger.Error(err))
		}

		if len(r.problems) > 0 {
			problems[r.video.Name] = r.problems
			problemOrder = append(problemOrder, r.video.Name)
			line += " *** PROBLEMS ***"
			if plotPath != "" {
				if err := copyToProblems(config.OutDir, r.video.Name, plotPath); err != nil {
					logger.Get().Warn(ctx, "failed to copy plot to problems dir",
						logger.String("video", r.video.Name), logger.Error(err))
				}
			}
		}
		fmt.Println(line)

		csvResults = append(csvResults, export.VideoResult{
			Swings:   r.swings,
			Contacts: r.contacts,
		})
	}
	stats.ProblemVideos = len(problems)

	// Step 4: Summary
	summary := fmt.Sprintf("\n%s: %d total swings across %d videos",
		filepath.Base(config.DatasetDir), stats.TotalSwings, stats.VideosAnalyzed)
	if config.Contact {
		summary += fmt.Sprintf(", %d contacts", stats.TotalContacts)
	}
	if len(problemOrder) > 0 {
		summary += "\nProblematic: " + strings.Join(problemOrder, ", ")
		if err := writeProblemSummary(config.OutDir, problemOrder, problems); err != nil {
			logger.Get().Warn(ctx, "failed to write problem summary", logger.Error(err))
		}
	}
	fmt.Println(summary)

	// Step 5: CSV export
	if config.CSV {
		if err := export.WriteCSVs(csvResults, config.OutDir); err != nil {
			return fmt.Errorf("csv export failed: %w", err)
		}
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	fmt.Printf("All outputs in: %s\n", config.OutDir)
	return nil
}

// analyzeAll runs the detection pipeline over all videos with a bounded
// worker group. Reports come back in dataset order regardless of which
// worker finished first.
func analyzeAll(ctx context.Context, config *Config, videos []keypoints.Video) []report {
	reports := make([]report, len(videos))

	workerCount := config.Workers
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(videos) {
		workerCount = len(videos)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				reports[i] = analyzeOne(ctx, config, videos[i])
			}
		}()
	}

	for i := range videos {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return reports
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return reports
}

// analyzeOne runs backswing detection, optional contact detection, and
// problem flagging for a single video.
func analyzeOne(ctx context.Context, config *Config, v keypoints.Video) report {
	r := report{video: v}

	data, err := keypoints.Load(v.KeypointPath)
	if err != nil {
		r.err = err
		return r
	}

	r.swings, err = pipeline.DetectSwings(ctx, data, v.Name, config.Params)
	if err != nil {
		r.err = err
		return r
	}

	if config.Contact {
		r.contacts, err = pipeline.DetectContacts(ctx, r.swings, config.Params)
		if err != nil {
			r.err = err
			return r
		}
	}

	r.problems = pipeline.FlagProblems(r.swings, config.Params)
	return r
}

// writeReportPlot renders the signal plot for one video under
// <out>/<name>/<name>_detection.png.
func writeReportPlot(outDir string, r report) (string, error) {
	var contacts []int
	if r.contacts != nil {
		contacts = r.contacts.Frames
	}
	dir := filepath.Join(outDir, r.video.Name)
	return visualize.WritePlot(dir, r.video.Name, r.swings.Combined, r.swings.Smoothed, r.swings.Peaks, contacts)
}

// copyToProblems copies a flagged video's plot into <out>/problems/.
func copyToProblems(outDir, name, plotPath string) error {
	pdir := filepath.Join(outDir, "problems")
	if err := os.MkdirAll(pdir, directoryPermission); err != nil {
		return fmt.Errorf("%w: %v", ErrOutput, err)
	}
	data, err := os.ReadFile(plotPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutput, err)
	}
	dst := filepath.Join(pdir, name+"_detection.png")
	if err := os.WriteFile(dst, data, summaryPermission); err != nil {
		return fmt.Errorf("%w: %v", ErrOutput, err)
	}
	return nil
}

// writeProblemSummary writes <out>/problems/summary.txt listing every
// flagged video and its reasons.
func writeProblemSummary(outDir string, order []string, problems map[string][]string) error {
	pdir := filepath.Join(outDir, "problems")
	if err := os.MkdirAll(pdir, directoryPermission); err != nil {
		return fmt.Errorf("%w: %v", ErrOutput, err)
	}

	var b strings.Builder
	for _, name := range order {
		b.WriteString(name + ":\n")
		for _, reason := range problems[name] {
			b.WriteString("  " + reason + "\n")
		}
		b.WriteString("\n")
	}

	path := filepath.Join(pdir, "summary.txt")
	if err := os.WriteFile(path, []byte(b.String()), summaryPermission); err != nil {
		return fmt.Errorf("%w: %v", ErrOutput, err)
	}
	return nil
}

// filterNames extracts the stage names from a filter log, dropping the
// per-stage detail after the colon.
func filterNames(log []string) []string {
	var out []string
	for _, entry := range log {
		if i := strings.Index(entry, ":"); i > 0 {
			out = append(out, entry[:i])
		} else {
			out = append(out, entry)
		}
	}
	return out
}

// displayFinalStats logs the final batch statistics.
func displayFinalStats(stats *Stats) {
	var videosPerSecond float64
	if stats.Duration > 0 {
		videosPerSecond = float64(stats.VideosAnalyzed) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("videosFound", stats.VideosFound),
		logger.Int("videosAnalyzed", stats.VideosAnalyzed),
		logger.Int("videosFailed", stats.VideosFailed),
		logger.Int("totalSwings", stats.TotalSwings),
		logger.Int("totalContacts", stats.TotalContacts),
		logger.Int("problemVideos", stats.ProblemVideos),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("videosPerSecond", videosPerSecond))
}
