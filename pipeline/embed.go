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
	"log/slog"

	"github.com/poiesic/paperbridge/ai"
	"github.com/poiesic/paperbridge/core"
	"github.com/poiesic/paperbridge/storage"
)

// embedBatchSize is the number of chunk texts sent to the embedder per call.
const embedBatchSize = 100

// EmbedRunner executes embed jobs: it chunks a document's pages, generates
// embedding vectors in batches, and replaces the document's stored vectors.
type EmbedRunner struct {
	jobs       storage.JobRepository
	documents  storage.DocumentRepository
	embeddings storage.EmbeddingRepository
	embedder   ai.Embedder
	chunker    *Chunker
	logger     *slog.Logger
}

var _ StepRunner = (*EmbedRunner)(nil)

// NewEmbedRunner creates a runner for embed jobs.
// A nil chunker gets the default token limits.
func NewEmbedRunner(
	jobs storage.JobRepository,
	documents storage.DocumentRepository,
	embeddings storage.EmbeddingRepository,
	embedder ai.Embedder,
	chunker *Chunker,
) (*EmbedRunner, error) {
	if jobs == nil {
		return nil, ErrJobRepositoryRequired
	}
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if chunker == nil {
		chunker = NewChunker(DefaultChunkSize, DefaultChunkOverlap)
	}

	return &EmbedRunner{
		jobs:       jobs,
		documents:  documents,
		embeddings: embeddings,
		embedder:   embedder,
		chunker:    chunker,
		logger:     slog.Default().With("component", "embed-runner"),
	}, nil
}

// Task returns core.TaskEmbed.
func (r *EmbedRunner) Task() core.TaskType {
	return core.TaskEmbed
}

// Trigger reuses the active embed job for the document or creates a
// queued one.
func (r *EmbedRunner) Trigger(ctx context.Context, documentID core.ID) (*core.Job, error) {
	return triggerStepJob(ctx, r.jobs, documentID, core.TaskEmbed)
}

// Execute runs an embed job to a terminal status.
// Embedder and chunker failures fail the job; storage errors propagate.
func (r *EmbedRunner) Execute(ctx context.Context, jobID core.ID) (*core.Job, error) {
	job, err := r.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	job.Status = core.StatusProcessing
	if job, err = r.jobs.SaveJob(ctx, job); err != nil {
		return nil, err
	}

	logger := r.logger.With("job_id", uint64(job.Id), "document_id", uint64(job.DocumentId))
	logger.Info("embed job started")

	pages, err := r.documents.GetPages(ctx, job.DocumentId)
	if err != nil {
		return nil, err
	}

	chunks, err := r.chunker.ChunkPages(pages)
	if err != nil {
		logger.Error("chunking failed", "err", err)
		return r.markFailed(ctx, job, err.Error())
	}

	if len(chunks) == 0 {
		job.Status = core.StatusDone
		if job, err = r.jobs.SaveJob(ctx, job); err != nil {
			return nil, err
		}
		logger.Info("embed job finished", "chunks", 0)
		return job, nil
	}

	records := make([]*core.Embedding, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}

		vectors, err := r.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			logger.Error("embedding generation failed", "err", err)
			return r.markFailed(ctx, job, err.Error())
		}
		if len(vectors) != len(batch) {
			logger.Error("embedder returned wrong vector count",
				"want", len(batch), "got", len(vectors))
			return r.markFailed(ctx, job, "embedder returned wrong number of vectors")
		}

		for i, chunk := range batch {
			records = append(records, &core.Embedding{
				DocumentId: job.DocumentId,
				ChunkId:    chunk.Id,
				PageStart:  chunk.PageStart,
				PageEnd:    chunk.PageEnd,
				Content:    chunk.Content,
				Vector:     core.NormalizeVector(vectors[i]),
			})
		}
	}

	if err := r.embeddings.ReplaceEmbeddings(ctx, job.DocumentId, records); err != nil {
		return nil, err
	}

	job.Status = core.StatusDone
	if job, err = r.jobs.SaveJob(ctx, job); err != nil {
		return nil, err
	}

	logger.Info("embed job finished", "chunks", len(records))
	return job, nil
}

// markFailed records an absorbed failure on the job.
func (r *EmbedRunner) markFailed(ctx context.Context, job *core.Job, msg string) (*core.Job, error) {
	job.Status = core.StatusFailed
	job.ErrorMessage = msg
	return r.jobs.SaveJob(ctx, job)
}
