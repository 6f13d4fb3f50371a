package pipeline

import (
	"context"

	"github.com/poiesic/paperbridge/core"
	"github.com/poiesic/paperbridge/storage"
)

// StepRunner executes jobs of one task type to completion.
// Implementations must be thread-safe.
type StepRunner interface {
	// Task returns the task type this runner handles.
	Task() core.TaskType

	// Trigger idempotently obtains a runnable job for the document: an active
	// job is reused, otherwise a fresh queued job is created.
	Trigger(ctx context.Context, documentID core.ID) (*core.Job, error)

	// Execute runs the job with the given ID to a terminal status and returns
	// the terminal job. Returns nil, nil if the job does not exist.
	//
	// Collaborator failures (model calls, chunking) are absorbed into a failed
	// job rather than returned; only storage errors propagate as errors.
	Execute(ctx context.Context, jobID core.ID) (*core.Job, error)
}

// triggerStepJob idempotently obtains a runnable job for (document, task):
// an active job is reused, otherwise a fresh queued job is created.
func triggerStepJob(ctx context.Context, jobs storage.JobRepository, documentID core.ID, task core.TaskType) (*core.Job, error) {
	active, err := jobs.FindLatestJob(ctx, documentID, task, core.ActiveStatuses()...)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return active, nil
	}

	return jobs.CreateJob(ctx, &core.Job{
		DocumentId: documentID,
		Task:       task,
		Status:     core.StatusQueued,
	})
}
