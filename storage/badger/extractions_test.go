package badger

import (
	"context"
	"testing"

	"github.com/poiesic/paperbridge/core"
)

func TestExtractionBasics(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()

	has, err := repos.Extractions.HasExtraction(ctx, 7)
	if err != nil {
		t.Fatalf("Failed to check extraction: %v", err)
	}
	if has {
		t.Fatal("Expected no extraction for fresh document")
	}

	added, err := repos.Extractions.AddExtraction(ctx, &core.Extraction{
		DocumentId: 7,
		Features: core.DocumentFeatures{
			DocumentType: "Invoice",
			Summary:      "Invoice for widget assemblies.",
			Confidence:   0.9,
		},
		Review: core.ReviewPassed,
	})
	if err != nil {
		t.Fatalf("Failed to add extraction: %v", err)
	}
	if added.Id == 0 {
		t.Fatal("Expected non-zero ID")
	}

	has, err = repos.Extractions.HasExtraction(ctx, 7)
	if err != nil {
		t.Fatalf("Failed to check extraction: %v", err)
	}
	if !has {
		t.Fatal("Expected extraction to exist")
	}

	latest, err := repos.Extractions.LatestExtraction(ctx, 7)
	if err != nil {
		t.Fatalf("Failed to get latest extraction: %v", err)
	}
	if latest == nil || latest.Id != added.Id {
		t.Fatalf("Expected extraction %d, got %+v", added.Id, latest)
	}
}

func TestLatestExtractionWins(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()

	if _, err := repos.Extractions.AddExtraction(ctx, &core.Extraction{
		DocumentId: 7,
		Features:   core.DocumentFeatures{DocumentType: "Invoice", Confidence: 0.5},
		Review:     core.ReviewFlagged,
	}); err != nil {
		t.Fatalf("Failed to add extraction: %v", err)
	}

	second, err := repos.Extractions.AddExtraction(ctx, &core.Extraction{
		DocumentId: 7,
		Features:   core.DocumentFeatures{DocumentType: "Invoice", Confidence: 0.95},
		Review:     core.ReviewPassed,
	})
	if err != nil {
		t.Fatalf("Failed to add extraction: %v", err)
	}

	latest, err := repos.Extractions.LatestExtraction(ctx, 7)
	if err != nil {
		t.Fatalf("Failed to get latest extraction: %v", err)
	}
	if latest == nil || latest.Id != second.Id {
		t.Fatalf("Expected newest extraction %d, got %+v", second.Id, latest)
	}
	if latest.Review != core.ReviewPassed {
		t.Fatalf("Expected PASSED review, got %s", latest.Review)
	}

	// Other documents remain unaffected
	other, err := repos.Extractions.LatestExtraction(ctx, 8)
	if err != nil {
		t.Fatalf("Expected no error for empty document, got: %v", err)
	}
	if other != nil {
		t.Fatalf("Expected nil for empty document, got: %+v", other)
	}
}
