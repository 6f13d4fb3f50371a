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


package storage

import (
	"github.com/poiesic/paperbridge/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalJob serializes a Job to bytes.
func MarshalJob(job *core.Job) []byte {
	buf := make([]byte, core.JobMUS.Size(*job))
	core.JobMUS.Marshal(*job, buf)
	return buf
}

// UnmarshalJob deserializes a Job from bytes.
func UnmarshalJob(data []byte) (*core.Job, error) {
	job, _, err := core.JobMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*doc))
	core.DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarshalDocumentPage serializes a DocumentPage to bytes.
func MarshalDocumentPage(page *core.DocumentPage) []byte {
	buf := make([]byte, core.DocumentPageMUS.Size(*page))
	core.DocumentPageMUS.Marshal(*page, buf)
	return buf
}

// UnmarshalDocumentPage deserializes a DocumentPage from bytes.
func UnmarshalDocumentPage(data []byte) (*core.DocumentPage, error) {
	page, _, err := core.DocumentPageMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// MarshalExtraction serializes an Extraction to bytes.
func MarshalExtraction(extraction *core.Extraction) []byte {
	buf := make([]byte, core.ExtractionMUS.Size(*extraction))
	core.ExtractionMUS.Marshal(*extraction, buf)
	return buf
}

// UnmarshalExtraction deserializes an Extraction from bytes.
func UnmarshalExtraction(data []byte) (*core.Extraction, error) {
	extraction, _, err := core.ExtractionMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &extraction, nil
}

// MarshalEmbedding serializes an Embedding to bytes.
func MarshalEmbedding(embedding *core.Embedding) []byte {
	buf := make([]byte, core.EmbeddingMUS.Size(*embedding))
	core.EmbeddingMUS.Marshal(*embedding, buf)
	return buf
}

// UnmarshalEmbedding deserializes an Embedding from bytes.
func UnmarshalEmbedding(data []byte) (*core.Embedding, error) {
	embedding, _, err := core.EmbeddingMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &embedding, nil
}
