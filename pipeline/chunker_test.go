package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/paperbridge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkPages_ShortPages(t *testing.T) {
	chunker := NewChunker(DefaultChunkSize, DefaultChunkOverlap)

	chunks, err := chunker.ChunkPages([]*core.DocumentPage{
		{DocumentId: 1, Number: 1, Text: "Invoice #42 from Acme Corp."},
		{DocumentId: 1, Number: 2, Text: "Total due: 120.00 USD."},
	})
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "p1-c0", chunks[0].Id)
	assert.Equal(t, 1, chunks[0].PageStart)
	assert.Equal(t, 1, chunks[0].PageEnd)
	assert.Equal(t, "Invoice #42 from Acme Corp.", chunks[0].Content)

	assert.Equal(t, "p2-c0", chunks[1].Id)
	assert.Equal(t, 2, chunks[1].PageStart)
}

func TestChunkPages_SkipsEmptyPages(t *testing.T) {
	chunker := NewChunker(DefaultChunkSize, DefaultChunkOverlap)

	chunks, err := chunker.ChunkPages([]*core.DocumentPage{
		{DocumentId: 1, Number: 1, Text: ""},
		{DocumentId: 1, Number: 2, Text: "Some actual content."},
		{DocumentId: 1, Number: 3, Text: ""},
	})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "p2-c0", chunks[0].Id)
}

func TestChunkPages_SplitsLongPage(t *testing.T) {
	chunker := NewChunker(50, 10)

	var sb strings.Builder
	for i := 0; i < 400; i++ {
		fmt.Fprintf(&sb, "word%d ", i)
	}

	chunks, err := chunker.ChunkPages([]*core.DocumentPage{
		{DocumentId: 1, Number: 7, Text: sb.String()},
	})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1, "a long page must split into multiple chunks")

	for i, chunk := range chunks {
		assert.Equal(t, fmt.Sprintf("p7-c%d", i), chunk.Id)
		assert.Equal(t, 7, chunk.PageStart)
		assert.Equal(t, 7, chunk.PageEnd)
		assert.NotEmpty(t, chunk.Content)
	}
}

func TestChunkPages_NoPages(t *testing.T) {
	chunker := NewChunker(DefaultChunkSize, DefaultChunkOverlap)

	chunks, err := chunker.ChunkPages(nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
