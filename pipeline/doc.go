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


// Package pipeline orchestrates document processing: structured feature
// extraction followed by vector embedding, tracked as jobs.
//
// # Job model
//
// Every unit of work is a Job row. Extract and embed jobs are executed by
// StepRunner implementations; a pipeline job sequences the two as steps
// recorded in its metadata. Step statuses move queued -> processing ->
// done/failed, or jump straight to skipped when the step's output already
// exists.
//
// # Idempotency
//
// Orchestrator.EnsurePipelineJob never starts duplicate work: an active
// pipeline job for the document is reused, a document whose extraction and
// embeddings already exist gets its done job reused (or backfilled with both
// steps skipped), and only otherwise is a fresh queued job created. The same
// applies per step: an active step job is adopted rather than re-triggered.
//
// # Concurrency
//
// No locks are shared between workers. When a step job is already processing
// under another worker, the Guard polls it until it becomes terminal instead
// of running it again. Waits are bounded by the guard's wait timeout.
//
// # Failure semantics
//
// A step failure fails the pipeline job fast: the second step never runs
// after the first fails, the step's error message is copied onto the
// pipeline job, and RunPipelineJob returns nil. Storage errors are the only
// errors RunPipelineJob returns; in that case the job row may be left
// in-flight for a later worker to adopt.
package pipeline
