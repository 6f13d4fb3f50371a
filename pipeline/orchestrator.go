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
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/paperbridge/core"
	"github.com/poiesic/paperbridge/storage"
)

// Orchestrator drives pipeline jobs through their extract and embed steps.
//
// Pipeline jobs are regular jobs with task type "pipeline"; their metadata
// tracks per-step progress. Step outcomes are absorbed into the pipeline
// job's status, so a pipeline job always ends terminal even when a step
// fails. Only storage errors propagate to the caller.
type Orchestrator struct {
	jobs        storage.JobRepository
	extractions storage.ExtractionRepository
	embeddings  storage.EmbeddingRepository
	runners     map[core.TaskType]StepRunner
	guard       *Guard
	logger      *slog.Logger
}

// NewOrchestrator creates a pipeline orchestrator.
func NewOrchestrator(
	jobs storage.JobRepository,
	extractions storage.ExtractionRepository,
	embeddings storage.EmbeddingRepository,
	extract StepRunner,
	embed StepRunner,
	guard *Guard,
) (*Orchestrator, error) {
	if jobs == nil {
		return nil, ErrJobRepositoryRequired
	}
	if extractions == nil {
		return nil, ErrExtractionRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if extract == nil || embed == nil {
		return nil, ErrStepRunnerRequired
	}
	if guard == nil {
		return nil, ErrGuardRequired
	}

	return &Orchestrator{
		jobs:        jobs,
		extractions: extractions,
		embeddings:  embeddings,
		runners: map[core.TaskType]StepRunner{
			core.TaskExtract: extract,
			core.TaskEmbed:   embed,
		},
		guard:  guard,
		logger: slog.Default().With("component", "pipeline-orchestrator"),
	}, nil
}

// EnsurePipelineJob idempotently obtains a pipeline job for the document.
//
// An active pipeline job is reused. If the document's extraction and
// embeddings already exist, the latest done pipeline job is reused, or a
// completed job with both steps skipped is backfilled. Otherwise a fresh
// queued job is created.
func (o *Orchestrator) EnsurePipelineJob(ctx context.Context, documentID core.ID) (*core.Job, error) {
	active, err := o.jobs.FindLatestJob(ctx, documentID, core.TaskPipeline, core.ActiveStatuses()...)
	if err != nil {
		return nil, err
	}
	if active != nil {
		o.logger.Info("pipeline job reused",
			"document_id", uint64(documentID),
			"pipeline_job_id", uint64(active.Id),
			"status", string(active.Status))
		return active, nil
	}

	extractionComplete, err := o.extractions.HasExtraction(ctx, documentID)
	if err != nil {
		return nil, err
	}
	embeddingComplete, err := o.embeddingComplete(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if extractionComplete && embeddingComplete {
		existingDone, err := o.jobs.FindLatestJob(ctx, documentID, core.TaskPipeline, core.StatusDone)
		if err != nil {
			return nil, err
		}
		if existingDone != nil {
			o.logger.Info("done pipeline job reused",
				"document_id", uint64(documentID),
				"pipeline_job_id", uint64(existingDone.Id))
			return existingDone, nil
		}

		return o.backfillDoneJob(ctx, documentID)
	}

	queued, err := o.jobs.CreateJob(ctx, &core.Job{
		DocumentId: documentID,
		Task:       core.TaskPipeline,
		Status:     core.StatusQueued,
		Pipeline:   core.NewPipelineMetadata(),
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("pipeline job queued",
		"document_id", uint64(documentID),
		"pipeline_job_id", uint64(queued.Id))
	return queued, nil
}

// backfillDoneJob records a completed pipeline job for a document whose
// outputs already exist, with both steps marked skipped.
func (o *Orchestrator) backfillDoneJob(ctx context.Context, documentID core.ID) (*core.Job, error) {
	latestExtract, err := o.jobs.FindLatestJob(ctx, documentID, core.TaskExtract)
	if err != nil {
		return nil, err
	}
	latestEmbed, err := o.jobs.FindLatestJob(ctx, documentID, core.TaskEmbed)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	meta := &core.PipelineMetadata{
		Extract:     core.StepRecord{Status: core.StepSkipped, UpdatedAt: now},
		Embed:       core.StepRecord{Status: core.StepSkipped, UpdatedAt: now},
		StartedAt:   now,
		CompletedAt: now,
	}
	if latestExtract != nil {
		meta.Extract.JobId = latestExtract.Id
	}
	if latestEmbed != nil {
		meta.Embed.JobId = latestEmbed.Id
	}

	done, err := o.jobs.CreateJob(ctx, &core.Job{
		DocumentId: documentID,
		Task:       core.TaskPipeline,
		Status:     core.StatusDone,
		Pipeline:   meta,
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("pipeline job backfilled done",
		"document_id", uint64(documentID),
		"pipeline_job_id", uint64(done.Id))
	return done, nil
}

// RunPipelineJob executes the pipeline job with the given ID to a terminal
// status. Jobs that don't exist or aren't pipeline jobs are ignored. Step
// failures, wait timeouts, and vanished step jobs fail the pipeline job and
// return nil; only storage errors are returned.
func (o *Orchestrator) RunPipelineJob(ctx context.Context, jobID core.ID) error {
	job, err := o.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil || job.Task != core.TaskPipeline {
		return nil
	}

	job.Status = core.StatusProcessing
	job.ErrorMessage = ""
	core.NormalizePipelineMetadata(job)
	if job.Pipeline.StartedAt.IsZero() {
		job.Pipeline.StartedAt = time.Now().UTC()
	}
	if job, err = o.jobs.SaveJob(ctx, job); err != nil {
		return err
	}

	o.logger.Info("pipeline job started",
		"document_id", uint64(job.DocumentId),
		"pipeline_job_id", uint64(job.Id))

	runErr := o.runSteps(ctx, job.Id, job.DocumentId)
	if runErr != nil {
		var failure *stepFailure
		if errors.As(runErr, &failure) ||
			errors.Is(runErr, ErrWaitTimeout) ||
			errors.Is(runErr, ErrJobDeleted) {
			return o.failPipeline(ctx, jobID, runErr)
		}
		return runErr
	}

	// Re-fetch: step bookkeeping rewrote the record
	job, err = o.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return nil
	}

	core.NormalizePipelineMetadata(job)
	job.Pipeline.CompletedAt = time.Now().UTC()
	job.Status = core.StatusDone
	job.ErrorMessage = ""
	if _, err := o.jobs.SaveJob(ctx, job); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}

	o.logger.Info("pipeline job done",
		"document_id", uint64(job.DocumentId),
		"pipeline_job_id", uint64(job.Id))
	return nil
}

// runSteps executes the extract step then the embed step, skipping each when
// its output already exists. The first failure stops the sequence.
func (o *Orchestrator) runSteps(ctx context.Context, pipelineID, documentID core.ID) error {
	hasExtraction, err := o.extractions.HasExtraction(ctx, documentID)
	if err != nil {
		return err
	}
	if hasExtraction {
		if err := o.skipStep(ctx, pipelineID, documentID, core.TaskExtract); err != nil {
			return err
		}
	} else {
		if err := o.runStep(ctx, pipelineID, documentID, core.TaskExtract); err != nil {
			return err
		}
	}

	embeddingComplete, err := o.embeddingComplete(ctx, documentID)
	if err != nil {
		return err
	}
	if embeddingComplete {
		return o.skipStep(ctx, pipelineID, documentID, core.TaskEmbed)
	}
	return o.runStep(ctx, pipelineID, documentID, core.TaskEmbed)
}

// skipStep marks a step skipped, pointing it at the latest job of that task.
func (o *Orchestrator) skipStep(ctx context.Context, pipelineID, documentID core.ID, task core.TaskType) error {
	latest, err := o.jobs.FindLatestJob(ctx, documentID, task)
	if err != nil {
		return err
	}
	var latestID core.ID
	if latest != nil {
		latestID = latest.Id
	}
	if err := o.setStep(ctx, pipelineID, task, core.StepSkipped, latestID, ""); err != nil {
		return err
	}

	o.logger.Info("pipeline step skipped",
		"document_id", uint64(documentID),
		"pipeline_job_id", uint64(pipelineID),
		"task", string(task))
	return nil
}

// runStep triggers or adopts the step's job and drives it to a terminal
// status. In-flight jobs owned by another worker are waited on through the
// guard; queued jobs are executed inline by the step's runner.
func (o *Orchestrator) runStep(ctx context.Context, pipelineID, documentID core.ID, task core.TaskType) error {
	stepJob, err := o.guard.EnsureStepJob(ctx, o.runners[task], documentID)
	if err != nil {
		return err
	}
	if err := o.setStep(ctx, pipelineID, task, core.StepProcessing, stepJob.Id, ""); err != nil {
		return err
	}

	o.logger.Info("pipeline step triggered",
		"document_id", uint64(documentID),
		"pipeline_job_id", uint64(pipelineID),
		"task", string(task),
		"step_job_id", uint64(stepJob.Id))

	if stepJob.Status == core.StatusProcessing {
		// Another worker owns this job; adopt it by waiting.
		stepJob, err = o.guard.WaitForTerminal(ctx, stepJob.Id)
		if err != nil {
			return err
		}
	} else {
		stepJob, err = o.runners[task].Execute(ctx, stepJob.Id)
		if err != nil {
			return err
		}
	}

	if stepJob == nil || !slices.Contains(core.StepSuccessStatuses(task), stepJob.Status) {
		msg := o.stepFailureMessage(task, stepJob)
		var stepJobID core.ID
		if stepJob != nil {
			stepJobID = stepJob.Id
		}
		if err := o.setStep(ctx, pipelineID, task, core.StepFailed, stepJobID, msg); err != nil {
			return err
		}
		return &stepFailure{task: task, msg: msg}
	}

	if err := o.setStep(ctx, pipelineID, task, core.StepDone, stepJob.Id, ""); err != nil {
		return err
	}

	o.logger.Info("pipeline step done",
		"document_id", uint64(documentID),
		"pipeline_job_id", uint64(pipelineID),
		"task", string(task),
		"step_job_id", uint64(stepJob.Id),
		"status", string(stepJob.Status))
	return nil
}

func (o *Orchestrator) stepFailureMessage(task core.TaskType, stepJob *core.Job) string {
	if stepJob != nil && stepJob.ErrorMessage != "" {
		return stepJob.ErrorMessage
	}
	if stepJob == nil {
		if task == core.TaskExtract {
			return "Extraction step did not complete."
		}
		return "Embedding step did not complete."
	}
	if task == core.TaskExtract {
		return "Extraction step failed."
	}
	return "Embedding step failed."
}

// setStep rewrites one step record on the pipeline job. The pipeline job is
// re-fetched first so concurrent bookkeeping is not clobbered. A vanished
// pipeline job is a no-op.
func (o *Orchestrator) setStep(ctx context.Context, pipelineID core.ID, task core.TaskType, status core.StepStatus, stepJobID core.ID, errMsg string) error {
	job, err := o.jobs.GetJob(ctx, pipelineID)
	if err != nil {
		return err
	}
	if job == nil {
		return nil
	}

	core.NormalizePipelineMetadata(job)
	rec := job.Pipeline.Step(task)
	rec.Status = status
	if stepJobID != 0 {
		rec.JobId = stepJobID
	}
	rec.ErrorMessage = errMsg
	rec.UpdatedAt = time.Now().UTC()

	if _, err := o.jobs.SaveJob(ctx, job); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// failPipeline records an absorbed failure on the pipeline job.
func (o *Orchestrator) failPipeline(ctx context.Context, jobID core.ID, cause error) error {
	o.logger.Error("pipeline job failed",
		"pipeline_job_id", uint64(jobID),
		"err", cause)

	job, err := o.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return nil
	}

	core.NormalizePipelineMetadata(job)
	job.Pipeline.FailedAt = time.Now().UTC()
	job.Status = core.StatusFailed
	job.ErrorMessage = cause.Error()
	if _, err := o.jobs.SaveJob(ctx, job); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// embeddingComplete reports whether the document's embeddings are usable:
// either the latest embed job finished successfully or vectors exist.
func (o *Orchestrator) embeddingComplete(ctx context.Context, documentID core.ID) (bool, error) {
	latest, err := o.jobs.FindLatestJob(ctx, documentID, core.TaskEmbed)
	if err != nil {
		return false, err
	}
	if latest != nil && latest.Status == core.StatusDone {
		return true, nil
	}
	return o.embeddings.HasEmbeddings(ctx, documentID)
}
