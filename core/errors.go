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

import "errors"

// Domain validation errors
var (
	// ErrInvalidJob indicates a Job failed validation.
	ErrInvalidJob = errors.New("invalid job")

	// ErrInvalidTaskType indicates an unknown task type value.
	ErrInvalidTaskType = errors.New("invalid task type")

	// ErrInvalidJobStatus indicates an unknown job status value.
	ErrInvalidJobStatus = errors.New("invalid job status")

	// ErrInvalidStepStatus indicates an unknown pipeline step status value.
	ErrInvalidStepStatus = errors.New("invalid step status")

	// ErrInvalidReviewStatus indicates an unknown extraction review status value.
	ErrInvalidReviewStatus = errors.New("invalid review status")

	// ErrMissingDocument indicates a Job without an owning document.
	ErrMissingDocument = errors.New("document id required")
)
