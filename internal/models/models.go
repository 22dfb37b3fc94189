package models

import "time"

const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

type ProcessingJob struct {
	JobID      string    `json:"job_id"`
	DocumentID string    `json:"document_id"`
	CompanyID  string    `json:"company_id,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	Status     string    `json:"status"`
	Provider   string    `json:"provider,omitempty"`
	PageCount  int       `json:"page_count"`
	ChunkCount int       `json:"chunk_count"`
	DurationMs int64     `json:"duration_ms"`
	FailReason string    `json:"fail_reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Document struct {
	DocumentID       string     `json:"document_id"`
	CompanyID        string     `json:"company_id,omitempty"`
	SourceURL        string     `json:"source_url"`
	Filename         string     `json:"filename,omitempty"`
	Provider         string     `json:"provider,omitempty"`
	PageCount        int        `json:"page_count"`
	ConfidenceScore  *float64   `json:"confidence_score,omitempty"`
	HasHandwriting   *bool      `json:"has_handwriting,omitempty"`
	ProcessingTimeMs int64      `json:"processing_time_ms"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type DocumentSummary struct {
	DocumentID      string    `json:"document_id"`
	Provider        string    `json:"provider"`
	PageCount       int       `json:"page_count"`
	ChunkCount      int       `json:"chunk_count"`
	TableChunkCount int       `json:"table_chunk_count"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty"`
	HasHandwriting  *bool     `json:"has_handwriting,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
}

type Section struct {
	SectionID    string    `json:"section_id"`
	DocumentID   string    `json:"document_id"`
	SectionIndex int       `json:"section_index"`
	Content      string    `json:"content"`
	ContentHash  string    `json:"content_hash"`
	SemanticType string    `json:"semantic_type"`
	PageNumber   int       `json:"page_number"`
	TokenCount   int       `json:"token_count"`
	CharCount    int       `json:"char_count"`
	CreatedAt    time.Time `json:"created_at"`
}
