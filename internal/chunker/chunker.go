// Package chunker segments canonical pages into token-bounded,
// context-enriched chunks. It is a pure function of its input: no I/O, no
// side effects, deterministic output for a given page list and config.
package chunker

import (
	"fmt"
	"strings"

	"docflow/internal/document"
	"docflow/internal/util"
)

type Config struct {
	MaxTokens     int
	OverlapTokens int
	CharsPerToken int
}

func (c Config) withDefaults() Config {
	if c.MaxTokens <= 0 {
		c.MaxTokens = 500
	}
	if c.OverlapTokens < 0 {
		c.OverlapTokens = 50
	}
	if c.CharsPerToken <= 0 {
		c.CharsPerToken = 4
	}
	return c
}

// Chunk converts pages into ordered chunks. Text on each page is windowed
// by approximate character budget; every table becomes exactly one chunk
// regardless of size, with a generated description prepended to its
// markdown. Chunk indexes are assigned in a second pass once all pages are
// generated: the global index is monotonic across the document and each
// chunk learns the total chunk count of its page. Chunk IDs are scoped by
// documentID so identical content in two documents never collides.
func Chunk(documentID string, pages []document.PageContent, cfg Config) []document.DocumentChunk {
	cfg = cfg.withDefaults()
	maxChars := cfg.MaxTokens * cfg.CharsPerToken
	overlapChars := cfg.OverlapTokens * cfg.CharsPerToken

	perPage := make([][]document.DocumentChunk, 0, len(pages))
	for _, page := range pages {
		perPage = append(perPage, chunkPage(page, maxChars, overlapChars))
	}

	// Second pass: flatten, assign global indexes and per-page totals.
	out := make([]document.DocumentChunk, 0, len(pages)*2)
	index := 0
	for _, pageChunks := range perPage {
		for i := range pageChunks {
			pageChunks[i].Metadata.ChunkIndex = index
			pageChunks[i].Metadata.TotalChunksInPage = len(pageChunks)
			pageChunks[i].ID = chunkID(documentID, pageChunks[i], index)
			out = append(out, pageChunks[i])
			index++
		}
	}
	return out
}

func chunkPage(page document.PageContent, maxChars, overlapChars int) []document.DocumentChunk {
	chunks := make([]document.DocumentChunk, 0, 4)

	text := strings.TrimSpace(strings.Join(page.TextBlocks, "\n\n"))
	if text != "" {
		for _, piece := range SplitText(text, maxChars, overlapChars) {
			chunks = append(chunks, document.DocumentChunk{
				Content: piece,
				Type:    document.ChunkTypeText,
				Metadata: document.ChunkMetadata{
					PageNumber: page.PageNumber,
				},
			})
		}
	}

	for i, table := range page.Tables {
		tableIndex := i
		desc := DescribeTable(table)
		chunks = append(chunks, document.DocumentChunk{
			Content: desc + "\n\n" + table.Markdown,
			Type:    document.ChunkTypeTable,
			Metadata: document.ChunkMetadata{
				PageNumber:       page.PageNumber,
				IsTable:          true,
				TableIndex:       &tableIndex,
				TableDescription: desc,
			},
		})
	}
	return chunks
}

func chunkID(documentID string, c document.DocumentChunk, index int) string {
	contentHash := util.SHA256Hex([]byte(c.Content))
	return util.SHA256Hex([]byte(fmt.Sprintf("%s:%d:%s", documentID, index, contentHash)))
}
