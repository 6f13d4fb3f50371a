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
	"errors"

	"github.com/poiesic/paperbridge/core"
)

var (
	// ErrJobRepositoryRequired is returned when a job repository is not provided.
	ErrJobRepositoryRequired = errors.New("job repository required")

	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrExtractionRepositoryRequired is returned when an extraction repository is not provided.
	ErrExtractionRepositoryRequired = errors.New("extraction repository required")

	// ErrEmbeddingRepositoryRequired is returned when an embedding repository is not provided.
	ErrEmbeddingRepositoryRequired = errors.New("embedding repository required")

	// ErrExtractorRequired is returned when a feature extractor is not provided.
	ErrExtractorRequired = errors.New("feature extractor required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrStepRunnerRequired is returned when a step runner is not provided.
	ErrStepRunnerRequired = errors.New("step runner required")

	// ErrGuardRequired is returned when a concurrency guard is not provided.
	ErrGuardRequired = errors.New("concurrency guard required")

	// ErrWaitTimeout is returned when an adopted job does not reach a terminal
	// status within the guard's wait timeout.
	ErrWaitTimeout = errors.New("timed out waiting for job")

	// ErrJobDeleted is returned when a job being waited on disappears from storage.
	ErrJobDeleted = errors.New("dependent job was deleted")
)

// stepFailure marks a pipeline step that reached a terminal non-success state.
// It is absorbed into the pipeline job rather than propagated to the caller.
type stepFailure struct {
	task core.TaskType
	msg  string
}

func (e *stepFailure) Error() string {
	return e.msg
}
