package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/paperbridge/core"
)

// Runner dispatches pipeline jobs onto a worker pool. It deduplicates
// submissions so a queued pipeline job is only handed to one worker.
type Runner struct {
	orchestrator *Orchestrator
	pool         *ants.Pool

	mu       sync.Mutex
	inflight map[core.ID]struct{}

	logger *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner) error

// WithPoolSize sets the worker pool size for concurrent pipeline runs.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) RunnerOption {
	return func(r *Runner) error {
		if size < 1 {
			size = 1
		}

		if r.pool != nil {
			r.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		r.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRunner creates a pipeline runner over the given orchestrator.
func NewRunner(orchestrator *Orchestrator, opts ...RunnerOption) (*Runner, error) {
	if orchestrator == nil {
		return nil, ErrStepRunnerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		orchestrator: orchestrator,
		pool:         pool,
		inflight:     make(map[core.ID]struct{}),
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(r); optErr != nil {
			r.Release()
			return nil, optErr
		}
	}

	return r, nil
}

// ProcessDocument ensures a pipeline job for the document and, when the job
// is freshly queued, schedules it on the worker pool. The returned job
// reflects the state at submission time; callers poll the job store for
// progress.
func (r *Runner) ProcessDocument(ctx context.Context, documentID core.ID) (*core.Job, error) {
	job, err := r.orchestrator.EnsurePipelineJob(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if job.Status != core.StatusQueued {
		return job, nil
	}

	r.mu.Lock()
	if _, running := r.inflight[job.Id]; running {
		r.mu.Unlock()
		return job, nil
	}
	r.inflight[job.Id] = struct{}{}
	r.mu.Unlock()

	requestID := uuid.NewString()
	jobID := job.Id
	submitErr := r.pool.Submit(func() {
		defer func() {
			r.mu.Lock()
			delete(r.inflight, jobID)
			r.mu.Unlock()
		}()

		logger := r.logger.With("request_id", requestID, "pipeline_job_id", uint64(jobID))
		// Detached from the submitting request's lifetime on purpose:
		// the pipeline job must run to a terminal status either way.
		if err := r.orchestrator.RunPipelineJob(context.Background(), jobID); err != nil {
			logger.Error("pipeline run aborted on storage error", "err", err)
		}
	})
	if submitErr != nil {
		r.mu.Lock()
		delete(r.inflight, jobID)
		r.mu.Unlock()
		return nil, submitErr
	}

	r.logger.Info("pipeline job submitted",
		"request_id", requestID,
		"document_id", uint64(documentID),
		"pipeline_job_id", uint64(jobID))
	return job, nil
}

// Running reports how many pipeline jobs are currently in flight.
func (r *Runner) Running() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inflight)
}

// Release shuts down the worker pool.
func (r *Runner) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}
