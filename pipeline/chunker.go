package pipeline

import (
	"fmt"

	"github.com/poiesic/paperbridge/core"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the target chunk length in tokens.
	DefaultChunkSize = 300

	// DefaultChunkOverlap is the number of tokens shared between adjacent chunks.
	DefaultChunkOverlap = 50
)

// Chunk is one embeddable slice of a document's text.
type Chunk struct {
	Id        string // "p<page>-c<index>"
	PageStart int
	PageEnd   int
	Content   string
}

// Chunker splits page text into token-bounded chunks for embedding.
// Pages are chunked independently so every chunk maps to one page.
type Chunker struct {
	splitter textsplitter.TokenSplitter
}

// NewChunker creates a chunker with the given token limits.
// Non-positive values fall back to the defaults.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}

	return &Chunker{
		splitter: textsplitter.NewTokenSplitter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// ChunkPages splits the pages' text into chunks with stable per-page IDs.
// Empty pages are skipped.
func (c *Chunker) ChunkPages(pages []*core.DocumentPage) ([]Chunk, error) {
	var chunks []Chunk
	for _, page := range pages {
		if page.Text == "" {
			continue
		}

		parts, err := c.splitter.SplitText(page.Text)
		if err != nil {
			return nil, err
		}

		for i, part := range parts {
			chunks = append(chunks, Chunk{
				Id:        fmt.Sprintf("p%d-c%d", page.Number, i),
				PageStart: page.Number,
				PageEnd:   page.Number,
				Content:   part,
			})
		}
	}
	return chunks, nil
}
