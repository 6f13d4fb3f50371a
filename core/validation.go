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


package core

import (
	"fmt"
	"time"
	"unicode"
)

// ValidateTaskType validates that a TaskType has a known value.
func ValidateTaskType(task TaskType) error {
	switch task {
	case TaskExtract, TaskEmbed, TaskPipeline:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidTaskType, task)
}

// ValidateJobStatus validates that a JobStatus has a known value.
func ValidateJobStatus(status JobStatus) error {
	switch status {
	case StatusQueued, StatusProcessing, StatusNeedsReview, StatusDone, StatusFailed:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidJobStatus, status)
}

// ValidateStepStatus validates that a StepStatus has a known value.
func ValidateStepStatus(status StepStatus) error {
	switch status {
	case StepQueued, StepProcessing, StepSkipped, StepDone, StepFailed:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidStepStatus, status)
}

// ValidateReviewStatus validates that a ReviewStatus has a known value.
func ValidateReviewStatus(status ReviewStatus) error {
	switch status {
	case ReviewPassed, ReviewFlagged, ReviewFailed:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidReviewStatus, status)
}

// ValidateJob validates a Job according to domain rules.
//
// Validation rules:
//   - DocumentId must be set
//   - Task must be a known task type
//   - Status must be a known job status
//   - needs_review is only reachable for extract jobs
//   - pipeline jobs carry metadata with known step statuses; other jobs carry none
func ValidateJob(job *Job) error {
	if job == nil {
		return fmt.Errorf("%w: job is nil", ErrInvalidJob)
	}
	if job.DocumentId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidJob, ErrMissingDocument)
	}
	if err := ValidateTaskType(job.Task); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}
	if err := ValidateJobStatus(job.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}
	if job.Status == StatusNeedsReview && job.Task != TaskExtract {
		return fmt.Errorf("%w: needs_review is not reachable for task %q", ErrInvalidJob, job.Task)
	}
	if job.Task != TaskPipeline {
		if job.Pipeline != nil {
			return fmt.Errorf("%w: pipeline metadata on task %q", ErrInvalidJob, job.Task)
		}
		return nil
	}
	if job.Pipeline != nil {
		if err := ValidateStepStatus(job.Pipeline.Extract.Status); err != nil {
			return fmt.Errorf("%w: extract step: %w", ErrInvalidJob, err)
		}
		if err := ValidateStepStatus(job.Pipeline.Embed.Status); err != nil {
			return fmt.Errorf("%w: embed step: %w", ErrInvalidJob, err)
		}
	}
	return nil
}

// NormalizePipelineMetadata ensures a pipeline job carries well-formed metadata,
// initializing missing records to queued. Callers apply this before every
// metadata read or write so step tracking stays a closed, tagged structure.
func NormalizePipelineMetadata(job *Job) {
	if job == nil || job.Task != TaskPipeline {
		return
	}
	if job.Pipeline == nil {
		job.Pipeline = NewPipelineMetadata()
		return
	}
	if job.Pipeline.Extract.Status == "" {
		job.Pipeline.Extract.Status = StepQueued
	}
	if job.Pipeline.Embed.Status == "" {
		job.Pipeline.Embed.Status = StepQueued
	}
}

// ReviewFeatures classifies extracted features using deterministic rules.
//
// Review rules:
//   - DocumentType must not be empty
//   - Summary must be at least 10 characters
//   - DateIssued, when present, must parse as an ISO 8601 date or timestamp
//   - TotalAmount must not be negative
//   - Currency must be a 3-letter uppercase code
//   - Confidence below 0.6 flags the extraction for human review
func ReviewFeatures(features *DocumentFeatures) ReviewStatus {
	if features == nil || features.DocumentType == "" {
		return ReviewFailed
	}
	if len(features.Summary) < 10 {
		return ReviewFailed
	}
	if features.DateIssued != "" && !isISODate(features.DateIssued) {
		return ReviewFailed
	}
	if features.TotalAmount < 0 {
		return ReviewFailed
	}
	if !isCurrencyCode(features.Currency) {
		return ReviewFailed
	}
	if features.Confidence < 0.6 {
		return ReviewFlagged
	}
	return ReviewPassed
}

func isISODate(value string) bool {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if !unicode.IsUpper(r) || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
