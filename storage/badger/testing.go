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


package badger

import "github.com/poiesic/paperbridge/storage"

// Repositories bundles all repositories backed by one Backend.
type Repositories struct {
	Jobs        storage.JobRepository
	Documents   storage.DocumentRepository
	Extractions storage.ExtractionRepository
	Embeddings  storage.EmbeddingRepository
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must close the repositories and backend when done.
func NewMemoryRepositories() (*Repositories, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, err
	}

	jobRepo, err := NewJobRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	docRepo, err := NewDocumentRepository(backend)
	if err != nil {
		jobRepo.Close()
		backend.Close()
		return nil, nil, err
	}

	extRepo, err := NewExtractionRepository(backend)
	if err != nil {
		docRepo.Close()
		jobRepo.Close()
		backend.Close()
		return nil, nil, err
	}

	repos := &Repositories{
		Jobs:        jobRepo,
		Documents:   docRepo,
		Extractions: extRepo,
		Embeddings:  NewEmbeddingRepository(backend),
	}
	return repos, backend, nil
}

// Close closes every repository in the bundle.
func (r *Repositories) Close() error {
	var firstErr error
	for _, c := range []interface{ Close() error }{r.Jobs, r.Documents, r.Extractions, r.Embeddings} {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
