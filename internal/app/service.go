// Package service provides the core analysis service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/mgreen/swinglab/internal/adapters/keypoints"
	jobqueue "github.com/mgreen/swinglab/internal/adapters/mq/queue"
	workerpool "github.com/mgreen/swinglab/internal/adapters/mq/worker"
	repository "github.com/mgreen/swinglab/internal/adapters/repository"
	"github.com/mgreen/swinglab/internal/domain/dedupe"
	"github.com/mgreen/swinglab/internal/domain/model"
	"github.com/mgreen/swinglab/internal/domain/swing"
	"github.com/mgreen/swinglab/internal/domain/types"
	"github.com/mgreen/swinglab/internal/pipeline"
	"github.com/mgreen/swinglab/internal/visualize"
	"github.com/mgreen/swinglab/pkg/logger"
	"github.com/mgreen/swinglab/pkg/metrics"
)

// Service wires the detection pipeline, job queue, worker pool, and
// detection store together.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	deduper  dedupe.Deduper
	jobQueue jobqueue.Queue
	pool     *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	dbPath      string
	plotDir     string
	params      swing.Params

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithDBPath sets the SQLite database path. Empty keeps the in-memory
// store.
func WithDBPath(path string) Option {
	return func(s *Service) {
		s.dbPath = path
	}
}

// WithPlotDir enables detection plot rendering into the given directory.
func WithPlotDir(dir string) Option {
	return func(s *Service) {
		s.plotDir = dir
	}
}

// WithParams overrides the detection parameters.
func WithParams(p swing.Params) Option {
	return func(s *Service) {
		s.params = p
	}
}

// WithStore injects a pre-built detection store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1000,
		dedupeSize:  10000,
		params:      swing.DefaultParams(),
		stopCh:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting analysis service...")

	if s.store == nil {
		if s.dbPath != "" {
			store, err := repository.NewSQLiteStore(s.dbPath)
			if err != nil {
				return fmt.Errorf("open detection store: %w", err)
			}
			s.store = store
			s.logger.Info(ctx, "using sqlite store", logger.String("path", s.dbPath))
		} else {
			s.store = repository.NewMemoryStore()
			s.logger.Info(ctx, "using in-memory store")
		}
	}

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.jobQueue, s, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping analysis service...")

	// Shutdown closes the queue first so workers drain what is left.
	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error(ctx, "error closing store", logger.Error(err))
		}
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "analysis service stopped")
}

// Analyze runs the full detection pipeline for one job: load keypoints,
// detect backswings and contacts, flag problems, and optionally render the
// detection plot.
func (s *Service) Analyze(ctx context.Context, j model.Job) (*model.Detection, error) {
	data, err := keypoints.Load(j.KeypointPath)
	if err != nil {
		return nil, fmt.Errorf("load keypoints: %w", err)
	}

	r, err := pipeline.DetectSwings(ctx, data, j.Video, s.params)
	if err != nil {
		return nil, err
	}

	cr, err := pipeline.DetectContacts(ctx, r, s.params)
	if err != nil {
		return nil, err
	}

	problems := pipeline.FlagProblems(r, s.params)
	d := pipeline.BuildDetection(r, cr, problems)

	if s.plotDir != "" {
		// Plot failures do not fail the analysis.
		if _, err := visualize.WritePlot(s.plotDir, r.Video, r.Combined, r.Smoothed, r.Peaks, cr.Frames); err != nil {
			metrics.RecordErrorByComponent("visualize", "plot_error")
			s.logger.Warn(ctx, "plot rendering failed",
				logger.String("video", r.Video),
				logger.Error(err),
			)
		}
	}

	return d, nil
}

// SeenAndRecord atomically checks if a video was seen and records it if not.
// Returns true if the video was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, video string) bool {
	seen := s.deduper.SeenAndRecord(ctx, video)
	if seen {
		metrics.RecordAnalysisDuplicate()
	}
	return seen
}

// Unrecord removes a video from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, video string) {
	s.deduper.Unrecord(ctx, video)
}

// Enqueue submits a job for asynchronous processing. Returns false when the
// queue is full or closed.
func (s *Service) Enqueue(ctx context.Context, j model.Job) bool {
	ok := s.jobQueue.Enqueue(ctx, j)
	if ok {
		metrics.UpdateQueueSize(s.jobQueue.Len(ctx))
	}
	return ok
}

// List returns up to limit stored analyses, most recent first.
func (s *Service) List(ctx context.Context, limit int) ([]types.AnalysisEntry, error) {
	start := time.Now()
	detections, err := s.store.List(ctx, limit)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, err
	}

	entries := make([]types.AnalysisEntry, len(detections))
	for i, d := range detections {
		entries[i] = toEntry(d)
	}
	return entries, nil
}

// Analysis returns the stored analysis for one video.
func (s *Service) Analysis(ctx context.Context, video string) (types.AnalysisEntry, error) {
	start := time.Now()
	d, err := s.store.Detection(ctx, video)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return types.AnalysisEntry{}, err
	}
	return toEntry(d), nil
}

// Summary aggregates stored analyses for the stats endpoint.
func (s *Service) Summary(ctx context.Context) (types.Summary, error) {
	start := time.Now()
	sum, err := s.store.Summary(ctx)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	return sum, err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		storedVideos := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["storedVideos"] = storedVideos

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoredVideos(storedVideos)
		metrics.UpdateWorkerCount(s.pool.Size())
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

func toEntry(d *model.Detection) types.AnalysisEntry {
	e := types.AnalysisEntry{
		Video:       d.Video,
		FPS:         d.FPS,
		TotalFrames: d.TotalFrames,
		NumSwings:   d.NumSwings(),
		NumContacts: d.NumContacts(),
		FilterLog:   d.FilterLog,
		Problems:    d.Problems,
		AnalyzedAt:  d.AnalyzedAt,
	}
	for _, sw := range d.Swings {
		se := types.SwingEntry{
			Num:            sw.Num,
			BackswingFrame: sw.BackswingFrame,
			ContactFrame:   sw.ContactFrame,
			XYValue:        sw.XYValue,
		}
		if d.FPS > 0 {
			se.BackswingTimeS = round2(float64(sw.BackswingFrame) / d.FPS)
			if sw.ContactFrame >= 0 {
				se.ContactTimeS = round2(float64(sw.ContactFrame) / d.FPS)
			}
		}
		e.Swings = append(e.Swings, se)
	}
	return e
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
