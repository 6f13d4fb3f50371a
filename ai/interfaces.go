package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// FeatureExtractor extracts structured document features from text.
// Implementations must be thread-safe for concurrent use.
type FeatureExtractor interface {
	// ExtractFeatures analyzes document text and extracts structured fields
	// such as document type, parties, amounts, and line items.
	// Returns an error if extraction fails or the model output cannot be parsed.
	ExtractFeatures(ctx context.Context, text string) (*ExtractedFeatures, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and FeatureExtractor instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// FeatureExtractor returns the structured extraction service.
	// The returned FeatureExtractor is safe for concurrent use.
	FeatureExtractor() FeatureExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
