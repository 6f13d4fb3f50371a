package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// TaskType identifies the kind of work a Job performs.
type TaskType string

const (
	// TaskExtract runs structured feature extraction over a document's text.
	TaskExtract TaskType = "extract"
	// TaskEmbed chunks a document's text and generates embedding vectors.
	TaskEmbed TaskType = "embed"
	// TaskPipeline sequences an extract step and an embed step for one document.
	TaskPipeline TaskType = "pipeline"
)

// JobStatus is the lifecycle state of a Job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusProcessing  JobStatus = "processing"
	StatusNeedsReview JobStatus = "needs_review"
	StatusDone        JobStatus = "done"
	StatusFailed      JobStatus = "failed"
)

// Terminal reports whether no further status transition can occur.
func (s JobStatus) Terminal() bool {
	return s == StatusNeedsReview || s == StatusDone || s == StatusFailed
}

// ActiveStatuses returns the non-terminal job statuses.
// At most one job per (document, task type) should hold one of these at a time.
func ActiveStatuses() []JobStatus {
	return []JobStatus{StatusQueued, StatusProcessing}
}

// StepSuccessStatuses returns the job statuses a pipeline step accepts as success.
// Extraction additionally succeeds with needs_review; embedding only with done.
func StepSuccessStatuses(task TaskType) []JobStatus {
	if task == TaskExtract {
		return []JobStatus{StatusDone, StatusNeedsReview}
	}
	return []JobStatus{StatusDone}
}

// StepStatus is the state of one step inside a pipeline job's metadata.
// skipped is reachable directly from queued when the step's output already exists.
type StepStatus string

const (
	StepQueued     StepStatus = "queued"
	StepProcessing StepStatus = "processing"
	StepSkipped    StepStatus = "skipped"
	StepDone       StepStatus = "done"
	StepFailed     StepStatus = "failed"
)

// Terminal reports whether the step status admits no further transition.
func (s StepStatus) Terminal() bool {
	return s == StepSkipped || s == StepDone || s == StepFailed
}

// Job is a persisted record of one task attempt for a document.
type Job struct {
	Id           ID
	DocumentId   ID
	Task         TaskType
	Status       JobStatus
	ErrorMessage string            // set only when Status is failed
	Pipeline     *PipelineMetadata // nil unless Task is TaskPipeline
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PipelineMetadata tracks per-step progress for a pipeline job.
// Zero timestamps mean "not yet reached".
type PipelineMetadata struct {
	Extract     StepRecord
	Embed       StepRecord
	StartedAt   time.Time
	CompletedAt time.Time
	FailedAt    time.Time
}

// NewPipelineMetadata returns metadata with both steps initialized to queued.
func NewPipelineMetadata() *PipelineMetadata {
	return &PipelineMetadata{
		Extract: StepRecord{Status: StepQueued},
		Embed:   StepRecord{Status: StepQueued},
	}
}

// Step returns the record for the given step task, or nil for any other task type.
func (m *PipelineMetadata) Step(task TaskType) *StepRecord {
	switch task {
	case TaskExtract:
		return &m.Extract
	case TaskEmbed:
		return &m.Embed
	default:
		return nil
	}
}

// StepRecord is the progress entry for one pipeline step.
type StepRecord struct {
	Status       StepStatus
	JobId        ID // child job id, 0 when none has been created
	ErrorMessage string
	UpdatedAt    time.Time
}

// Document represents an ingested document.
type Document struct {
	Id             ID
	Filename       string
	ChecksumSHA256 string
	TotalPages     int
	CreatedAt      time.Time
}

// DocumentPage holds the extracted text of one page.
type DocumentPage struct {
	DocumentId ID
	Number     int // 1-based
	Text       string
}

// ReviewStatus classifies an extraction result after deterministic review.
type ReviewStatus string

const (
	ReviewPassed  ReviewStatus = "PASSED"
	ReviewFlagged ReviewStatus = "FLAGGED"
	ReviewFailed  ReviewStatus = "FAILED"
)

// Extraction is the persisted output of the extract task for a document.
type Extraction struct {
	Id         ID
	DocumentId ID
	Features   DocumentFeatures
	Review     ReviewStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DocumentFeatures is the structured data extracted from a document.
type DocumentFeatures struct {
	DocumentType    string
	DateIssued      string // ISO 8601, empty when unknown
	Issuer          string
	Recipient       string
	PartNumbers     []string
	TotalAmount     float64
	Currency        string // 3-letter ISO code
	LineItems       []LineItem
	Summary         string
	Confidence      float64 // 0.0 to 1.0
	ExtractionNotes string
}

// LineItem is a single billed row within a document.
type LineItem struct {
	Description string
	Quantity    float64
	UnitPrice   float64
	Total       float64
}

// Embedding is one embedded chunk of a document's text.
// Vectors are unit-normalized so cosine similarity reduces to a dot product.
type Embedding struct {
	DocumentId ID
	ChunkId    string // "p<page>-c<index>"
	PageStart  int
	PageEnd    int
	Content    string
	Vector     []float32
}

// ChunkMatch is an embedding returned from vector similarity search.
type ChunkMatch struct {
	Chunk *Embedding
	Score float32
}
