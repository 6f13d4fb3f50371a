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


// Package search provides hybrid semantic and lexical search over
// document chunks.
//
// The Searcher type implements a two-stage retrieval algorithm:
//   - Vector candidates via embedding similarity
//   - Keyword-overlap reranking with stop-word filtering
//
// Each result carries its vector, lexical, and combined scores so callers
// can inspect why a chunk ranked where it did.
package search
