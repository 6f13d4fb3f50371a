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
	"strings"

	"github.com/poiesic/paperbridge/ai"
	"github.com/poiesic/paperbridge/core"
	"github.com/poiesic/paperbridge/storage"
)

// ExtractRunner executes extract jobs: it concatenates a document's page
// text, calls the feature extractor, reviews the result, and stores an
// extraction row.
type ExtractRunner struct {
	jobs        storage.JobRepository
	documents   storage.DocumentRepository
	extractions storage.ExtractionRepository
	extractor   ai.FeatureExtractor
	logger      *slog.Logger
}

var _ StepRunner = (*ExtractRunner)(nil)

// NewExtractRunner creates a runner for extract jobs.
func NewExtractRunner(
	jobs storage.JobRepository,
	documents storage.DocumentRepository,
	extractions storage.ExtractionRepository,
	extractor ai.FeatureExtractor,
) (*ExtractRunner, error) {
	if jobs == nil {
		return nil, ErrJobRepositoryRequired
	}
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if extractions == nil {
		return nil, ErrExtractionRepositoryRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	return &ExtractRunner{
		jobs:        jobs,
		documents:   documents,
		extractions: extractions,
		extractor:   extractor,
		logger:      slog.Default().With("component", "extract-runner"),
	}, nil
}

// Task returns core.TaskExtract.
func (r *ExtractRunner) Task() core.TaskType {
	return core.TaskExtract
}

// Trigger reuses the active extract job for the document or creates a
// queued one.
func (r *ExtractRunner) Trigger(ctx context.Context, documentID core.ID) (*core.Job, error) {
	return triggerStepJob(ctx, r.jobs, documentID, core.TaskExtract)
}

// Execute runs an extract job to a terminal status.
// Extraction model failures fail the job; storage errors propagate.
func (r *ExtractRunner) Execute(ctx context.Context, jobID core.ID) (*core.Job, error) {
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
	logger.Info("extract job started")

	pages, err := r.documents.GetPages(ctx, job.DocumentId)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(pages))
	for _, page := range pages {
		texts = append(texts, page.Text)
	}
	fullText := strings.Join(texts, "\n\n")

	features, err := r.extractor.ExtractFeatures(ctx, fullText)
	if err != nil {
		logger.Error("feature extraction failed", "err", err)
		return r.markFailed(ctx, job, err.Error())
	}

	docFeatures := toDocumentFeatures(features)
	review := core.ReviewFeatures(&docFeatures)

	if _, err := r.extractions.AddExtraction(ctx, &core.Extraction{
		DocumentId: job.DocumentId,
		Features:   docFeatures,
		Review:     review,
	}); err != nil {
		return nil, err
	}

	job.Status = core.StatusDone
	if review == core.ReviewFlagged {
		job.Status = core.StatusNeedsReview
	}
	if job, err = r.jobs.SaveJob(ctx, job); err != nil {
		return nil, err
	}

	logger.Info("extract job finished", "status", string(job.Status), "review", string(review))
	return job, nil
}

// markFailed records an absorbed failure on the job.
func (r *ExtractRunner) markFailed(ctx context.Context, job *core.Job, msg string) (*core.Job, error) {
	job.Status = core.StatusFailed
	job.ErrorMessage = msg
	return r.jobs.SaveJob(ctx, job)
}

// toDocumentFeatures converts the model's output into the domain representation.
func toDocumentFeatures(f *ai.ExtractedFeatures) core.DocumentFeatures {
	lineItems := make([]core.LineItem, 0, len(f.LineItems))
	for _, item := range f.LineItems {
		lineItems = append(lineItems, core.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}

	return core.DocumentFeatures{
		DocumentType:    f.DocumentType,
		DateIssued:      f.DateIssued,
		Issuer:          f.Issuer,
		Recipient:       f.Recipient,
		PartNumbers:     f.PartNumbers,
		TotalAmount:     f.TotalAmount,
		Currency:        f.Currency,
		LineItems:       lineItems,
		Summary:         f.Summary,
		Confidence:      f.Confidence,
		ExtractionNotes: f.ExtractionNotes,
	}
}
