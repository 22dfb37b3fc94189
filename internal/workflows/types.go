package workflows

import "docflow/internal/document"

type DocumentProcessInput struct {
	JobID      string           `json:"job_id"`
	DocumentID string           `json:"document_id"`
	SourceURL  string           `json:"source_url"`
	Options    document.Options `json:"options"`
}

type DocumentStatus struct {
	JobID       string            `json:"job_id"`
	DocumentID  string            `json:"document_id"`
	Status      string            `json:"status"`
	CurrentStep string            `json:"current_step"`
	Steps       map[string]string `json:"steps"`
	Provider    string            `json:"provider,omitempty"`
	PageCount   int               `json:"page_count,omitempty"`
	ChunkCount  int               `json:"chunk_count,omitempty"`
	FailReason  string            `json:"fail_reason,omitempty"`
}
