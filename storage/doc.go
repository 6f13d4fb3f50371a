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


// Package storage provides the storage abstraction layer for paperbridge.
//
// This package defines repository interfaces that decouple storage
// implementation from the pipeline and search logic, so different backends
// (BadgerDB, in-memory, etc.) can be used interchangeably.
//
// The storage layer follows the Repository pattern:
//
//   - JobRepository: durable job records and latest-by-(document, task) lookup
//   - DocumentRepository: documents and per-page text
//   - ExtractionRepository: append-only extraction results
//   - EmbeddingRepository: embedded chunks with vector similarity search
//
// Reads of a missing record return nil, nil; only mutations of a missing
// record report ErrNotFound. No repository provides row locking: callers must
// re-fetch a record before mutating it after any suspension point, and the
// accepted consistency model is last-writer-wins.
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines. All methods accept context.Context for
// cancellation and timeout support.
package storage
