package badger

import (
	"context"
	"testing"

	"github.com/poiesic/paperbridge/core"
)

func TestEmbeddingReplaceAndGet(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()

	has, err := repos.Embeddings.HasEmbeddings(ctx, 7)
	if err != nil {
		t.Fatalf("Failed to check embeddings: %v", err)
	}
	if has {
		t.Fatal("Expected no embeddings for fresh document")
	}

	first := []*core.Embedding{
		{DocumentId: 7, ChunkId: "p1-c0", PageStart: 1, PageEnd: 1, Content: "alpha", Vector: []float32{1, 0}},
		{DocumentId: 7, ChunkId: "p1-c1", PageStart: 1, PageEnd: 1, Content: "beta", Vector: []float32{0, 1}},
		{DocumentId: 7, ChunkId: "p2-c0", PageStart: 2, PageEnd: 2, Content: "gamma", Vector: []float32{1, 0}},
	}
	if err := repos.Embeddings.ReplaceEmbeddings(ctx, 7, first); err != nil {
		t.Fatalf("Failed to replace embeddings: %v", err)
	}

	has, err = repos.Embeddings.HasEmbeddings(ctx, 7)
	if err != nil {
		t.Fatalf("Failed to check embeddings: %v", err)
	}
	if !has {
		t.Fatal("Expected embeddings to exist")
	}

	got, err := repos.Embeddings.GetEmbeddings(ctx, 7)
	if err != nil {
		t.Fatalf("Failed to get embeddings: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 embeddings, got %d", len(got))
	}

	// A second write replaces, never accumulates
	second := []*core.Embedding{
		{DocumentId: 7, ChunkId: "p1-c0", PageStart: 1, PageEnd: 1, Content: "alpha v2", Vector: []float32{0.6, 0.8}},
	}
	if err := repos.Embeddings.ReplaceEmbeddings(ctx, 7, second); err != nil {
		t.Fatalf("Failed to replace embeddings: %v", err)
	}

	got, err = repos.Embeddings.GetEmbeddings(ctx, 7)
	if err != nil {
		t.Fatalf("Failed to get embeddings: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 embedding after replace, got %d", len(got))
	}
	if got[0].Content != "alpha v2" {
		t.Fatalf("Expected replaced content, got %q", got[0].Content)
	}
}

func TestEmbeddingReplaceScopedToDocument(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()

	if err := repos.Embeddings.ReplaceEmbeddings(ctx, 7, []*core.Embedding{
		{DocumentId: 7, ChunkId: "p1-c0", Content: "doc seven", Vector: []float32{1, 0}},
	}); err != nil {
		t.Fatalf("Failed to replace embeddings: %v", err)
	}
	if err := repos.Embeddings.ReplaceEmbeddings(ctx, 8, []*core.Embedding{
		{DocumentId: 8, ChunkId: "p1-c0", Content: "doc eight", Vector: []float32{0, 1}},
	}); err != nil {
		t.Fatalf("Failed to replace embeddings: %v", err)
	}

	// Clearing document 7 leaves document 8 intact
	if err := repos.Embeddings.ReplaceEmbeddings(ctx, 7, nil); err != nil {
		t.Fatalf("Failed to clear embeddings: %v", err)
	}

	has, err := repos.Embeddings.HasEmbeddings(ctx, 7)
	if err != nil {
		t.Fatalf("Failed to check embeddings: %v", err)
	}
	if has {
		t.Fatal("Expected document 7 embeddings to be cleared")
	}

	has, err = repos.Embeddings.HasEmbeddings(ctx, 8)
	if err != nil {
		t.Fatalf("Failed to check embeddings: %v", err)
	}
	if !has {
		t.Fatal("Expected document 8 embeddings to survive")
	}
}

func TestEmbeddingFindSimilar(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()

	if err := repos.Embeddings.ReplaceEmbeddings(ctx, 7, []*core.Embedding{
		{DocumentId: 7, ChunkId: "p1-c0", Content: "close", Vector: []float32{1, 0}},
		{DocumentId: 7, ChunkId: "p1-c1", Content: "near", Vector: []float32{0.8, 0.6}},
		{DocumentId: 7, ChunkId: "p2-c0", Content: "far", Vector: []float32{0, 1}},
	}); err != nil {
		t.Fatalf("Failed to replace embeddings: %v", err)
	}

	matches, err := repos.Embeddings.FindSimilar(ctx, []float32{1, 0}, 0.5, 10)
	if err != nil {
		t.Fatalf("Failed to find similar: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches above threshold, got %d", len(matches))
	}
	if matches[0].Chunk.ChunkId != "p1-c0" {
		t.Fatalf("Expected best match first, got %s", matches[0].Chunk.ChunkId)
	}
	if matches[0].Score < matches[1].Score {
		t.Fatal("Expected matches ordered by descending score")
	}

	// Limit truncates results
	matches, err = repos.Embeddings.FindSimilar(ctx, []float32{1, 0}, 0.5, 1)
	if err != nil {
		t.Fatalf("Failed to find similar: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match with limit 1, got %d", len(matches))
	}
}
