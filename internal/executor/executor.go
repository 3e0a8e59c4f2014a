// Package executor compiles a set of build targets with a bounded pool of
// concurrent workers.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vk/rustc2wasm/internal/config"
	"github.com/vk/rustc2wasm/internal/configuration"
	"github.com/vk/rustc2wasm/internal/ctxlog"
)

// Compiler is the part of compiler.Compiler the executor depends on.
type Compiler interface {
	Compile(ctx context.Context, cfg *configuration.Configuration) ([]byte, error)
}

// Result is the outcome of compiling one target.
type Result struct {
	Target   *config.Target
	JobID    uuid.UUID
	Artifact []byte
	Duration time.Duration
	Err      error
}

// Executor runs compilations concurrently.
type Executor struct {
	compiler    Compiler
	workerCount int
}

// New creates an executor running at most workerCount compilations at once.
// A non-positive count means one worker.
func New(c Compiler, workerCount int) *Executor {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Executor{compiler: c, workerCount: workerCount}
}

// Run compiles every target and returns one result per target, in input
// order. A failing target does not stop the others; once ctx is done,
// targets that have not started yet are skipped with ctx.Err().
func (e *Executor) Run(ctx context.Context, targets []*config.Target) []Result {
	logger := ctxlog.FromContext(ctx)

	results := make([]Result, len(targets))
	for i, t := range targets {
		results[i] = Result{Target: t, JobID: uuid.New()}
	}

	workers := min(e.workerCount, len(targets))
	logger.Debug("Executor starting run.", "targets", len(targets), "workers", workers)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for id := 1; id <= workers; id++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.worker(ctx, jobs, results, id)
		}()
	}

	for i := range targets {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	logger.Debug("Executor finished run.")
	return results
}

// worker is the processing loop for a single concurrent worker. Each index
// is received by exactly one worker, so writes to results never overlap.
func (e *Executor) worker(ctx context.Context, jobs <-chan int, results []Result, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for idx := range jobs {
		r := &results[idx]
		jobCtx := ctxlog.With(ctx, "workerID", workerID, "jobID", r.JobID.String(), "target", r.Target.Name)
		jobLogger := ctxlog.FromContext(jobCtx)

		if err := ctx.Err(); err != nil {
			jobLogger.Debug("Skipping target, context is done.")
			r.Err = err
			continue
		}

		jobLogger.Debug("Worker picked up target.")
		start := time.Now()
		r.Artifact, r.Err = e.compiler.Compile(jobCtx, r.Target.Configuration)
		r.Duration = time.Since(start)

		if r.Err != nil {
			jobLogger.Error("Target failed.", "error", r.Err, "duration", r.Duration)
			continue
		}
		jobLogger.Info("Target compiled.", "bytes", len(r.Artifact), "duration", r.Duration)
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// Err joins the errors of every failed result, naming the target of each.
// It returns nil when all results succeeded.
func Err(results []Result) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("target %q: %w", r.Target.Name, r.Err))
		}
	}
	return errors.Join(errs...)
}
