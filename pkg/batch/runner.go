/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: runner.go
Description: Batch analysis runner. A fixed pool of workers pulls files from a job
channel, reads each one through the bounded reader and analyzes it with the worker's own
engine. Outcomes are returned in input order together with per-run totals.
*/

package batch

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kleascm/hexaminer/pkg/engine"
	"github.com/kleascm/hexaminer/pkg/logging"
	"github.com/kleascm/hexaminer/pkg/reporting"
)

// Config controls which window of each file is analyzed and how many workers run
type Config struct {
	Workers int   // 0 = runtime.NumCPU()
	Offset  int64 // Starting offset in every file
	Length  int64 // Bytes per file, -1 for the whole file
	MaxSize int64 // Cap per file, 0 = unlimited
}

// EngineFactory builds the engine a worker owns for its lifetime
type EngineFactory func() *engine.Engine

// Job is one file queued for analysis
type Job struct {
	Index int
	Path  string
}

// Outcome is what a worker produced for one job. Exactly one of Report and Err is set.
type Outcome struct {
	Path     string
	Worker   int
	Input    *Input
	Report   *reporting.Report
	Err      error
	Duration time.Duration
}

// Summary collects the outcomes of a run in input order. Entries for jobs that were
// never started because the context ended are nil.
type Summary struct {
	Outcomes []*Outcome
	Workers  int
	Analyzed int
	Failed   int
	Duration time.Duration
}

// Worker analyzes files with a dedicated engine
type Worker struct {
	ID     int
	engine *engine.Engine
	logger *logrus.Logger

	// Performance tracking
	analyzed int
	failed   int
}

// NewWorker creates a worker around its own engine
func NewWorker(id int, eng *engine.Engine, logger *logrus.Logger) *Worker {
	return &Worker{ID: id, engine: eng, logger: logger}
}

// Process reads and analyzes one file
func (w *Worker) Process(job Job, config Config) *Outcome {
	start := time.Now()
	outcome := &Outcome{Path: job.Path, Worker: w.ID}

	log := w.logger.WithFields(logrus.Fields{
		"worker": w.ID,
		"file":   job.Path,
	})

	input, err := ReadInput(job.Path, config.Offset, config.Length, config.MaxSize)
	if err != nil {
		w.failed++
		outcome.Err = err
		outcome.Duration = time.Since(start)
		log.WithError(err).Warn("Failed to read input")
		return outcome
	}

	results := w.engine.AnalyzeData(input.Data, 0, len(input.Data))

	w.analyzed++
	outcome.Input = input
	outcome.Report = reporting.NewReport(input.Name, input.Offset, int64(len(input.Data)), results)
	outcome.Duration = time.Since(start)

	log.WithFields(logrus.Fields{
		"results":  len(results),
		"duration": outcome.Duration,
	}).Debug("File analyzed")
	return outcome
}

// Runner distributes files over a worker pool
type Runner struct {
	config    Config
	newEngine EngineFactory
	logger    *logrus.Logger
}

// NewRunner creates a runner. A nil factory uses engine.NewEngine with the built-in
// analyzers; a nil logger discards log output.
func NewRunner(config Config, factory EngineFactory, logger *logrus.Logger) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	if factory == nil {
		factory = func() *engine.Engine { return engine.NewEngine(logger) }
	}
	return &Runner{config: config, newEngine: factory, logger: logger}
}

// Run analyzes every path and waits for the workers to finish. When ctx ends, files not
// yet handed to a worker are skipped and ctx.Err() is returned with the partial summary.
func (r *Runner) Run(ctx context.Context, paths []string) (*Summary, error) {
	start := time.Now()

	numWorkers := r.config.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = max(1, min(numWorkers, len(paths)))

	summary := &Summary{
		Outcomes: make([]*Outcome, len(paths)),
		Workers:  numWorkers,
	}

	jobs := make(chan Job)
	var wg sync.WaitGroup
	workers := make([]*Worker, numWorkers)

	for i := 0; i < numWorkers; i++ {
		workers[i] = NewWorker(i, r.newEngine(), r.logger)
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			for job := range jobs {
				summary.Outcomes[job.Index] = w.Process(job, r.config)
			}
		}(workers[i])
	}

	r.logger.WithFields(logrus.Fields{
		"workers": numWorkers,
		"files":   len(paths),
	}).Debug("Batch analysis started")

feed:
	for i, path := range paths {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- Job{Index: i, Path: path}:
		}
	}
	close(jobs)
	wg.Wait()

	for _, w := range workers {
		summary.Analyzed += w.analyzed
		summary.Failed += w.failed
	}
	summary.Duration = time.Since(start)

	r.logger.WithFields(logrus.Fields{
		"analyzed": summary.Analyzed,
		"failed":   summary.Failed,
		"duration": summary.Duration,
	}).Debug("Batch analysis complete")

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}
