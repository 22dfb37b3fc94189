package document

// Provider identifies which extraction path produced a document.
// The set is closed: routing only ever selects one of these four.
type Provider string

const (
	ProviderNative  Provider = "native"
	ProviderAzure   Provider = "azure-layout"
	ProviderMistral Provider = "mistral-ocr"
	ProviderMarker  Provider = "marker"
)

// PageContent is one physical page in the canonical shape every adapter
// converges on, regardless of the vendor schema it came from.
type PageContent struct {
	PageNumber int              `json:"page_number"`
	TextBlocks []string         `json:"text_blocks"`
	Tables     []ExtractedTable `json:"tables"`
}

// NormalizedDocument is produced once per pipeline run and consumed only
// by the chunker. It is not mutated after the adapter returns it.
type NormalizedDocument struct {
	Pages    []PageContent    `json:"pages"`
	Metadata DocumentMetadata `json:"metadata"`
}

type DocumentMetadata struct {
	TotalPages       int      `json:"total_pages"`
	Provider         Provider `json:"provider"`
	ProcessingTimeMs int64    `json:"processing_time_ms"`
	ConfidenceScore  *float64 `json:"confidence_score,omitempty"`
	HasHandwriting   *bool    `json:"has_handwriting,omitempty"`
}

// VisionResult carries the best zero-shot classification for a sampled page.
type VisionResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// RoutingDecision is created once by the router per document and read-only
// thereafter.
type RoutingDecision struct {
	Provider     Provider      `json:"provider"`
	Reason       string        `json:"reason"`
	Confidence   float64       `json:"confidence"`
	PageCount    int           `json:"page_count"`
	VisionResult *VisionResult `json:"vision_result,omitempty"`
}

type ChunkType string

const (
	ChunkTypeText  ChunkType = "text"
	ChunkTypeTable ChunkType = "table"
)

// DocumentChunk is the unit of retrievable content. Type is "table" iff the
// chunk originated from exactly one ExtractedTable; table chunks are never
// merged with adjacent text and never split internally.
type DocumentChunk struct {
	ID       string        `json:"id"`
	Content  string        `json:"content"`
	Type     ChunkType     `json:"type"`
	Metadata ChunkMetadata `json:"metadata"`
}

type ChunkMetadata struct {
	PageNumber        int    `json:"page_number"`
	ChunkIndex        int    `json:"chunk_index"`
	TotalChunksInPage int    `json:"total_chunks_in_page"`
	IsTable           bool   `json:"is_table"`
	TableIndex        *int   `json:"table_index,omitempty"`
	TableDescription  string `json:"table_description,omitempty"`
}

// VectorizedChunk pairs a chunk with its embedding. The pairing is strictly
// positional; callers must have verified chunk and vector counts match.
type VectorizedChunk struct {
	DocumentChunk
	Vector []float32 `json:"vector"`
}

// Options tune a single adapter invocation.
type Options struct {
	ForceOCR     bool     `json:"force_ocr,omitempty"`
	Pages        []int    `json:"pages,omitempty"`
	Language     string   `json:"language,omitempty"`
	OutputFormat string   `json:"output_format,omitempty"`
	Preferred    Provider `json:"preferred,omitempty"`
}
