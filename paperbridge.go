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


package paperbridge

import (
	"context"
	"log/slog"

	"github.com/poiesic/paperbridge/ai"
	"github.com/poiesic/paperbridge/ai/openai"
	"github.com/poiesic/paperbridge/core"
	"github.com/poiesic/paperbridge/pdftext"
	"github.com/poiesic/paperbridge/pipeline"
	"github.com/poiesic/paperbridge/search"
	"github.com/poiesic/paperbridge/storage"
	"github.com/poiesic/paperbridge/storage/badger"
)

type Database struct {
	backend        *badger.Backend
	jobRepo        storage.JobRepository
	documentRepo   storage.DocumentRepository
	extractionRepo storage.ExtractionRepository
	embeddingRepo  storage.EmbeddingRepository
	provider       ai.AIProvider
	logger         *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
}

// WithAIConfig sets the AI service configuration used to build the
// default provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider sets an explicit AI provider, bypassing the default
// OpenAI-compatible one. Useful for tests.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	jobRepo, err := badger.NewJobRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	documentRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		jobRepo.Close()
		backend.Close()
		return nil, err
	}

	extractionRepo, err := badger.NewExtractionRepository(backend)
	if err != nil {
		documentRepo.Close()
		jobRepo.Close()
		backend.Close()
		return nil, err
	}

	embeddingRepo := badger.NewEmbeddingRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			extractionRepo.Close()
			documentRepo.Close()
			jobRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:        backend,
		jobRepo:        jobRepo,
		documentRepo:   documentRepo,
		extractionRepo: extractionRepo,
		embeddingRepo:  embeddingRepo,
		provider:       provider,
		logger:         slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.embeddingRepo.Close(); err != nil {
		db.logger.Error("error closing embedding repository", "err", err)
		return err
	}
	if err := db.extractionRepo.Close(); err != nil {
		db.logger.Error("error closing extraction repository", "err", err)
		return err
	}
	if err := db.documentRepo.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := db.jobRepo.Close(); err != nil {
		db.logger.Error("error closing job repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) JobRepository() storage.JobRepository {
	return db.jobRepo
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.documentRepo
}

func (db *Database) ExtractionRepository() storage.ExtractionRepository {
	return db.extractionRepo
}

func (db *Database) EmbeddingRepository() storage.EmbeddingRepository {
	return db.embeddingRepo
}

// IngestPDF extracts a PDF's page text and registers it as a document.
// Re-ingesting a file with an unchanged checksum returns the existing
// document without rewriting its pages.
func (db *Database) IngestPDF(ctx context.Context, path string) (*core.Document, error) {
	extracted, err := pdftext.ExtractFile(path)
	if err != nil {
		return nil, err
	}

	existing, err := db.documentRepo.GetDocumentByChecksum(ctx, extracted.ChecksumSHA256)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		db.logger.Info("document already ingested",
			"filename", extracted.Filename,
			"document_id", uint64(existing.Id))
		return existing, nil
	}

	// Content-derived ID keeps re-ingestion of the same bytes stable even
	// across databases.
	doc, err := db.documentRepo.AddDocument(ctx, &core.Document{
		Id:             core.IDFromContent(extracted.ChecksumSHA256),
		Filename:       extracted.Filename,
		ChecksumSHA256: extracted.ChecksumSHA256,
		TotalPages:     len(extracted.Pages),
	})
	if err != nil {
		return nil, err
	}

	pages := make([]*core.DocumentPage, len(extracted.Pages))
	for i, text := range extracted.Pages {
		pages[i] = &core.DocumentPage{DocumentId: doc.Id, Number: i + 1, Text: text}
	}
	if err := db.documentRepo.AddPages(ctx, pages...); err != nil {
		return nil, err
	}

	db.logger.Info("document ingested",
		"filename", doc.Filename,
		"document_id", uint64(doc.Id),
		"pages", doc.TotalPages)
	return doc, nil
}

// NewPipelineRunner builds the orchestration stack: step runners for
// extraction and embedding, a concurrency guard, the orchestrator, and a
// pooled runner on top.
func (db *Database) NewPipelineRunner(guardOpts []pipeline.GuardOption, opts ...pipeline.RunnerOption) (*pipeline.Runner, error) {
	extractRunner, err := pipeline.NewExtractRunner(db.jobRepo, db.documentRepo, db.extractionRepo, db.provider.FeatureExtractor())
	if err != nil {
		return nil, err
	}

	embedRunner, err := pipeline.NewEmbedRunner(db.jobRepo, db.documentRepo, db.embeddingRepo, db.provider.Embedder(), nil)
	if err != nil {
		return nil, err
	}

	guard, err := pipeline.NewGuard(db.jobRepo, guardOpts...)
	if err != nil {
		return nil, err
	}

	orchestrator, err := pipeline.NewOrchestrator(db.jobRepo, db.extractionRepo, db.embeddingRepo,
		extractRunner, embedRunner, guard)
	if err != nil {
		return nil, err
	}

	return pipeline.NewRunner(orchestrator, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.embeddingRepo, db.provider.Embedder(), opts...)
}
