package storage

import (
	"context"

	"github.com/poiesic/paperbridge/core"
)

// JobRepository provides durable storage for Job records.
// Implementations must be thread-safe. No row locking is provided; callers
// must re-fetch a job before mutating it after any suspension point.
type JobRepository interface {
	// CreateJob persists a new job, assigning its ID from sequence and
	// setting CreatedAt/UpdatedAt. Returns the stored job.
	CreateJob(ctx context.Context, job *core.Job) (*core.Job, error)

	// GetJob retrieves a job by ID.
	// Returns nil, nil if the job does not exist.
	GetJob(ctx context.Context, id core.ID) (*core.Job, error)

	// FindLatestJob returns the most recently created job for a document and
	// task type, optionally restricted to a status set.
	// Returns nil, nil if no matching job exists.
	FindLatestJob(ctx context.Context, documentID core.ID, task core.TaskType, statuses ...core.JobStatus) (*core.Job, error)

	// SaveJob persists mutated fields of an existing job and refreshes
	// UpdatedAt. Returns ErrNotFound if the job does not exist.
	SaveJob(ctx context.Context, job *core.Job) (*core.Job, error)

	// Close releases repository resources.
	Close() error
}

// DocumentRepository provides storage for documents and their page text.
type DocumentRepository interface {
	// AddDocument persists a document. If the document's ID is zero, one is
	// assigned from sequence. Sets CreatedAt if unset.
	AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a document by ID.
	// Returns nil, nil if the document does not exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocumentByChecksum finds a document by its content checksum.
	// Returns nil, nil if no document with that checksum exists.
	GetDocumentByChecksum(ctx context.Context, checksum string) (*core.Document, error)

	// AddPages persists page text for a document. Re-adding a page number
	// overwrites the previous text.
	AddPages(ctx context.Context, pages ...*core.DocumentPage) error

	// GetPages retrieves all pages of a document ordered by page number.
	GetPages(ctx context.Context, documentID core.ID) ([]*core.DocumentPage, error)

	// Close releases repository resources.
	Close() error
}

// ExtractionRepository provides storage for extraction results.
// Extraction rows are append-only; the newest row wins on read.
type ExtractionRepository interface {
	// AddExtraction persists an extraction result, assigning its ID from
	// sequence and setting timestamps.
	AddExtraction(ctx context.Context, extraction *core.Extraction) (*core.Extraction, error)

	// LatestExtraction returns the most recent extraction for a document.
	// Returns nil, nil if none exists.
	LatestExtraction(ctx context.Context, documentID core.ID) (*core.Extraction, error)

	// HasExtraction reports whether any extraction exists for a document.
	HasExtraction(ctx context.Context, documentID core.ID) (bool, error)

	// Close releases repository resources.
	Close() error
}

// EmbeddingRepository provides storage and similarity search for embedded chunks.
type EmbeddingRepository interface {
	// ReplaceEmbeddings removes any previously stored vectors for the document
	// and writes the given set, so repeated writes are idempotent rather than
	// additive.
	ReplaceEmbeddings(ctx context.Context, documentID core.ID, embeddings []*core.Embedding) error

	// HasEmbeddings reports whether any vectors exist for a document.
	HasEmbeddings(ctx context.Context, documentID core.ID) (bool, error)

	// GetEmbeddings retrieves all stored chunks for a document.
	GetEmbeddings(ctx context.Context, documentID core.ID) ([]*core.Embedding, error)

	// FindSimilar finds chunks similar to the given vector across all documents.
	// Returns chunks with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ChunkMatch, error)

	// Close releases repository resources.
	Close() error
}
