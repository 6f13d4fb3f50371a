package badger

import (
	"context"
	"testing"

	"github.com/poiesic/paperbridge/core"
)

func TestDocumentBasics(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()

	doc := &core.Document{
		Filename:       "invoice-0042.pdf",
		ChecksumSHA256: "abc123",
		TotalPages:     3,
	}

	added, err := repos.Documents.AddDocument(ctx, doc)
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}
	if added.Id == 0 {
		t.Fatal("Expected non-zero ID")
	}

	retrieved, err := repos.Documents.GetDocument(ctx, added.Id)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if retrieved == nil || retrieved.Filename != "invoice-0042.pdf" {
		t.Fatalf("Unexpected document: %+v", retrieved)
	}

	byChecksum, err := repos.Documents.GetDocumentByChecksum(ctx, "abc123")
	if err != nil {
		t.Fatalf("Failed to get document by checksum: %v", err)
	}
	if byChecksum == nil || byChecksum.Id != added.Id {
		t.Fatalf("Expected document %d by checksum, got %+v", added.Id, byChecksum)
	}

	missing, err := repos.Documents.GetDocumentByChecksum(ctx, "nope")
	if err != nil {
		t.Fatalf("Expected no error for unknown checksum, got: %v", err)
	}
	if missing != nil {
		t.Fatalf("Expected nil for unknown checksum, got: %+v", missing)
	}
}

func TestDocumentExplicitID(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()

	id := core.IDFromContent("abc123")
	added, err := repos.Documents.AddDocument(ctx, &core.Document{
		Id:             id,
		Filename:       "invoice-0042.pdf",
		ChecksumSHA256: "abc123",
	})
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}
	if added.Id != id {
		t.Fatalf("Expected explicit ID %d to be kept, got %d", id, added.Id)
	}
}

func TestDocumentPages(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()

	doc, err := repos.Documents.AddDocument(ctx, &core.Document{Filename: "a.pdf", TotalPages: 3})
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	// Add out of order; reads must come back ordered by page number
	pages := []*core.DocumentPage{
		{DocumentId: doc.Id, Number: 3, Text: "page three"},
		{DocumentId: doc.Id, Number: 1, Text: "page one"},
		{DocumentId: doc.Id, Number: 2, Text: "page two"},
	}
	if err := repos.Documents.AddPages(ctx, pages...); err != nil {
		t.Fatalf("Failed to add pages: %v", err)
	}

	got, err := repos.Documents.GetPages(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to get pages: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 pages, got %d", len(got))
	}
	for i, page := range got {
		if page.Number != i+1 {
			t.Fatalf("Expected page %d at position %d, got %d", i+1, i, page.Number)
		}
	}

	// Re-adding a page overwrites its text
	if err := repos.Documents.AddPages(ctx, &core.DocumentPage{
		DocumentId: doc.Id, Number: 2, Text: "page two revised",
	}); err != nil {
		t.Fatalf("Failed to overwrite page: %v", err)
	}

	got, err = repos.Documents.GetPages(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to get pages: %v", err)
	}
	if len(got) != 3 || got[1].Text != "page two revised" {
		t.Fatalf("Expected overwritten page text, got %+v", got)
	}
}
