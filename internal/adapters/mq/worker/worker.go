// Package worker defines worker contracts for asynchronous video analysis.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/mgreen/swinglab/internal/domain/model"
	"github.com/mgreen/swinglab/pkg/logger"
	"github.com/mgreen/swinglab/pkg/metrics"
)

// Default worker configuration constants.
const (
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = model.Job

// Analyzer runs the detection pipeline for one job and returns the
// detection record.
type Analyzer interface {
	Analyze(ctx context.Context, j Job) (*model.Detection, error)
}

// Saver persists a completed detection.
type Saver interface {
	SaveDetection(ctx context.Context, d *model.Detection) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes analysis jobs using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing analysis jobs.
type InMemoryWorker struct {
	queue    Queue
	analyzer Analyzer
	saver    Saver
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, analyzer Analyzer, saver Saver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		analyzer: analyzer,
		saver:    saver,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobChan:
			if !ok {
				return
			}
			if err := w.processJob(ctx, j); err != nil {
				w.logger.Error(ctx, "error processing job", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob analyzes a single video and stores the result.
func (w *InMemoryWorker) processJob(ctx context.Context, j Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	detStart := time.Now()
	d, err := w.analyzer.Analyze(ctx, j)
	metrics.RecordDetectionLatency(float64(time.Since(detStart).Milliseconds()))
	if err != nil {
		metrics.RecordDetectionError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "pipeline_error")
		w.logger.Error(ctx, "analysis failed",
			logger.String("job_id", j.JobID),
			logger.String("video", j.Video),
			logger.Error(err),
		)
		return fmt.Errorf("analyze %s: %w", j.Video, err)
	}

	saveStart := time.Now()
	err = w.saver.SaveDetection(ctx, d)
	metrics.RecordStoreSaveLatency(float64(time.Since(saveStart).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		w.logger.Error(ctx, "saving detection failed",
			logger.String("job_id", j.JobID),
			logger.String("video", j.Video),
			logger.Error(err),
		)
		return fmt.Errorf("save %s: %w", j.Video, err)
	}

	metrics.RecordAnalysisProcessed()
	metrics.RecordSwingsDetected(d.NumSwings())
	metrics.RecordContactsDetected(d.NumContacts())
	metrics.RecordProblemsFlagged(len(d.Problems))

	w.logger.Info(ctx, "analysis complete",
		logger.String("video", j.Video),
		logger.Int("swings", d.NumSwings()),
		logger.Int("contacts", d.NumContacts()),
		logger.Int("problems", len(d.Problems)),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	analyzer Analyzer
	saver    Saver

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a new worker pool. A non-positive workerCount defaults to
// the CPU count; analysis is compute-bound, so more workers than cores just
// adds contention.
func NewPool(workerCount int, queue Queue, analyzer Analyzer, saver Saver) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		analyzer: analyzer,
		saver:    saver,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			analyzer,
			saver,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// Close the queue first so workers drain what is left and stop.
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
