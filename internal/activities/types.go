package activities

import "docflow/internal/document"

type RouteDocumentInput struct {
	JobID      string           `json:"job_id"`
	DocumentID string           `json:"document_id"`
	SourceURL  string           `json:"source_url"`
	Options    document.Options `json:"options"`
}

type RouteDocumentOutput struct {
	Decision document.RoutingDecision `json:"decision"`
}

type ExtractDocumentInput struct {
	JobID      string                   `json:"job_id"`
	DocumentID string                   `json:"document_id"`
	SourceURL  string                   `json:"source_url"`
	Decision   document.RoutingDecision `json:"decision"`
	Options    document.Options         `json:"options"`
}

type ExtractDocumentOutput struct {
	Document document.NormalizedDocument `json:"document"`
	Provider document.Provider           `json:"provider"`
}

type ChunkDocumentInput struct {
	DocumentID string                 `json:"document_id"`
	Pages      []document.PageContent `json:"pages"`
}

type ChunkDocumentOutput struct {
	Chunks []document.DocumentChunk `json:"chunks"`
}

type EmbedChunksInput struct {
	Chunks []document.DocumentChunk `json:"chunks"`
}

type EmbedChunksOutput struct {
	Vectors      [][]float32 `json:"vectors"`
	ProviderName string      `json:"provider_name"`
}

type PersistResultsInput struct {
	DocumentID string                      `json:"document_id"`
	SourceURL  string                      `json:"source_url"`
	Document   document.NormalizedDocument `json:"document"`
	Chunks     []document.DocumentChunk    `json:"chunks"`
	Vectors    [][]float32                 `json:"vectors"`
}

type UpdateJobStatusInput struct {
	JobID      string `json:"job_id"`
	Status     string `json:"status"`
	Provider   string `json:"provider,omitempty"`
	PageCount  int    `json:"page_count,omitempty"`
	ChunkCount int    `json:"chunk_count,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
	FailReason string `json:"fail_reason,omitempty"`
}
