package paperbridge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/paperbridge/ai/mock"
	"github.com/poiesic/paperbridge/core"
	"github.com/poiesic/paperbridge/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.JobRepository())
		assert.NotNil(t, db.DocumentRepository())
		assert.NotNil(t, db.ExtractionRepository())
		assert.NotNil(t, db.EmbeddingRepository())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(t.TempDir(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	require.NotNil(t, db)

	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, err := NewDatabase(t.TempDir(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	t.Run("can create pipeline runner", func(t *testing.T) {
		runner, err := db.NewPipelineRunner(nil)
		require.NoError(t, err)
		require.NotNil(t, runner)
		runner.Release()
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := db.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, searcher)
	})
}

func TestDatabase_ProcessDocumentEndToEnd(t *testing.T) {
	db, err := NewDatabase(t.TempDir(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	doc, err := db.DocumentRepository().AddDocument(ctx, &core.Document{
		Filename:   "invoice.pdf",
		TotalPages: 1,
	})
	require.NoError(t, err)
	require.NoError(t, db.DocumentRepository().AddPages(ctx, &core.DocumentPage{
		DocumentId: doc.Id, Number: 1, Text: "Invoice #42 from Acme Corp to Widgets Ltd.",
	}))

	runner, err := db.NewPipelineRunner([]pipeline.GuardOption{
		pipeline.WithWaitTimeout(2 * time.Second),
		pipeline.WithPollInterval(10 * time.Millisecond),
	})
	require.NoError(t, err)
	defer runner.Release()

	job, err := runner.ProcessDocument(ctx, doc.Id)
	require.NoError(t, err)
	require.NotNil(t, job)

	deadline := time.Now().Add(5 * time.Second)
	for {
		current, err := db.JobRepository().GetJob(ctx, job.Id)
		require.NoError(t, err)
		require.NotNil(t, current)
		if current.Status.Terminal() {
			assert.Equal(t, core.StatusDone, current.Status)
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("pipeline job %d never finished", job.Id)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Both artifacts landed
	hasExtraction, err := db.ExtractionRepository().HasExtraction(ctx, doc.Id)
	require.NoError(t, err)
	assert.True(t, hasExtraction)

	// The mock embedder is deterministic per input text, so querying with
	// the page text itself guarantees a high-similarity hit.
	searcher, err := db.NewSearcher()
	require.NoError(t, err)
	results, err := searcher.Search(ctx, "Invoice #42 from Acme Corp to Widgets Ltd.", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, doc.Id, results[0].Chunk.DocumentId)
}
