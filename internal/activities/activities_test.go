package activities

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"docflow/internal/config"
	"docflow/internal/document"
)

// shortEmbedder returns one vector fewer than asked, to exercise the
// strict positional-merge contract.
type shortEmbedder struct{}

func (shortEmbedder) Name() string { return "short" }

func (shortEmbedder) Embed(_ context.Context, inputs []string, dim int) ([][]float32, error) {
	out := make([][]float32, 0, len(inputs))
	for range inputs[:len(inputs)-1] {
		out = append(out, make([]float32, dim))
	}
	return out, nil
}

type countingEmbedder struct {
	batches [][]string
}

func (c *countingEmbedder) Name() string { return "counting" }

func (c *countingEmbedder) Embed(_ context.Context, inputs []string, dim int) ([][]float32, error) {
	c.batches = append(c.batches, inputs)
	out := make([][]float32, len(inputs))
	for i := range out {
		out[i] = make([]float32, dim)
	}
	return out, nil
}

func textChunks(contents ...string) []document.DocumentChunk {
	out := make([]document.DocumentChunk, 0, len(contents))
	for i, c := range contents {
		out = append(out, document.DocumentChunk{
			ID:      "c" + string(rune('0'+i)),
			Content: c,
			Type:    document.ChunkTypeText,
		})
	}
	return out
}

func TestEmbedChunksBatchCountMismatchIsFatal(t *testing.T) {
	a := &Activities{
		cfg:      config.Config{EmbedBatchSize: 2, EmbedDim: 4},
		embedder: shortEmbedder{},
	}
	_, err := a.EmbedChunksActivity(context.Background(), EmbedChunksInput{
		Chunks: textChunks("one", "two"),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "got 1 vectors for 2 inputs")
}

func TestEmbedChunksBatching(t *testing.T) {
	emb := &countingEmbedder{}
	a := &Activities{
		cfg:      config.Config{EmbedBatchSize: 2, EmbedDim: 4},
		embedder: emb,
	}
	out, err := a.EmbedChunksActivity(context.Background(), EmbedChunksInput{
		Chunks: textChunks("one", "two", "three"),
	})
	require.NoError(t, err)
	require.Len(t, out.Vectors, 3)
	require.Len(t, emb.batches, 2)
	require.Equal(t, []string{"one", "two"}, emb.batches[0])
	require.Equal(t, []string{"three"}, emb.batches[1])
}

func TestPersistRejectsVectorCountMismatch(t *testing.T) {
	a := &Activities{}
	err := a.PersistResultsActivity(context.Background(), PersistResultsInput{
		DocumentID: "d1",
		Chunks:     textChunks("one", "two"),
		Vectors:    [][]float32{{0.1}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "1 vectors for 2 chunks")
}

func TestChunkActivityScopesIDsByDocument(t *testing.T) {
	a := &Activities{}
	pages := []document.PageContent{{PageNumber: 1, TextBlocks: []string{"shared boilerplate"}}}

	first, err := a.ChunkDocumentActivity(context.Background(), ChunkDocumentInput{DocumentID: "doc-a", Pages: pages})
	require.NoError(t, err)
	second, err := a.ChunkDocumentActivity(context.Background(), ChunkDocumentInput{DocumentID: "doc-b", Pages: pages})
	require.NoError(t, err)
	require.Len(t, first.Chunks, 1)
	require.Len(t, second.Chunks, 1)
	require.NotEqual(t, first.Chunks[0].ID, second.Chunks[0].ID)
}

func TestEstimateTokensCountsRunes(t *testing.T) {
	// 6 runes, 18 bytes: byte-based counting would report 5 tokens.
	require.Equal(t, 2, estimateTokens("日本語テキスト", 4))
	require.Equal(t, 1, estimateTokens("abc", 4))
	require.Equal(t, 0, estimateTokens("", 4))
}
