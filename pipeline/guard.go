// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/paperbridge/core"
	"github.com/poiesic/paperbridge/storage"
)

const (
	// DefaultWaitTimeout bounds how long the guard waits for an adopted
	// in-flight job to reach a terminal status.
	DefaultWaitTimeout = 30 * time.Minute

	// DefaultPollInterval is the delay between job status polls.
	DefaultPollInterval = 500 * time.Millisecond
)

// Guard observes in-flight jobs owned by other workers. Instead of starting
// duplicate work it polls the job until it becomes terminal, so at most one
// worker runs a given (document, task) at a time.
type Guard struct {
	jobs         storage.JobRepository
	waitTimeout  time.Duration
	pollInterval time.Duration
	logger       *slog.Logger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard) error

// WithWaitTimeout sets how long WaitForTerminal waits before giving up.
// Default is DefaultWaitTimeout.
func WithWaitTimeout(d time.Duration) GuardOption {
	return func(g *Guard) error {
		if d <= 0 {
			return fmt.Errorf("wait timeout must be positive, got %s", d)
		}
		g.waitTimeout = d
		return nil
	}
}

// WithPollInterval sets the delay between status polls.
// Default is DefaultPollInterval.
func WithPollInterval(d time.Duration) GuardOption {
	return func(g *Guard) error {
		if d <= 0 {
			return fmt.Errorf("poll interval must be positive, got %s", d)
		}
		g.pollInterval = d
		return nil
	}
}

// NewGuard creates a concurrency guard over the given job repository.
func NewGuard(jobs storage.JobRepository, opts ...GuardOption) (*Guard, error) {
	if jobs == nil {
		return nil, ErrJobRepositoryRequired
	}

	g := &Guard{
		jobs:         jobs,
		waitTimeout:  DefaultWaitTimeout,
		pollInterval: DefaultPollInterval,
		logger:       slog.Default().With("component", "pipeline-guard"),
	}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// EnsureStepJob obtains the single runnable job for the document's step by
// delegating to the runner's Trigger. This is the one place that decides
// reuse versus create.
func (g *Guard) EnsureStepJob(ctx context.Context, runner StepRunner, documentID core.ID) (*core.Job, error) {
	if runner == nil {
		return nil, ErrStepRunnerRequired
	}
	return runner.Trigger(ctx, documentID)
}

// WaitForTerminal polls the job until it reaches a terminal status and
// returns it. Returns ErrJobDeleted if the job disappears, ErrWaitTimeout
// if the wait timeout elapses first, and the context's error if ctx ends.
func (g *Guard) WaitForTerminal(ctx context.Context, jobID core.ID) (*core.Job, error) {
	deadline := time.Now().Add(g.waitTimeout)

	for {
		job, err := g.jobs.GetJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if job == nil {
			return nil, fmt.Errorf("%w: %d", ErrJobDeleted, jobID)
		}
		if job.Status.Terminal() {
			return job, nil
		}
		if time.Now().After(deadline) {
			g.logger.Warn("gave up waiting for job", "job_id", uint64(jobID), "timeout", g.waitTimeout)
			return nil, fmt.Errorf("%w: %d", ErrWaitTimeout, jobID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.pollInterval):
		}
	}
}
