package storage

import (
	"context"
	"fmt"

	"docflow/internal/models"
)

type DocumentRepo struct {
	db *DB
}

func NewDocumentRepo(db *DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) UpsertDocument(ctx context.Context, d models.Document) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO documents (document_id, company_id, source_url, filename)
VALUES ($1, NULLIF($2,''), $3, NULLIF($4,''))
ON CONFLICT (document_id)
DO UPDATE SET
  company_id = COALESCE(EXCLUDED.company_id, documents.company_id),
  source_url = EXCLUDED.source_url,
  filename = COALESCE(EXCLUDED.filename, documents.filename),
  updated_at = NOW()`,
		d.DocumentID, d.CompanyID, d.SourceURL, d.Filename,
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// UpdateProvenance records which provider handled the document and how the
// extraction went. Called once per successful pipeline run.
func (r *DocumentRepo) UpdateProvenance(ctx context.Context, documentID, provider string, pageCount int, confidence *float64, hasHandwriting *bool, processingTimeMs int64) error {
	_, err := r.db.Pool.Exec(ctx, `
UPDATE documents
SET provider=$2, page_count=$3, confidence_score=$4, has_handwriting=$5,
    processing_time_ms=$6, processed_at=NOW(), updated_at=NOW()
WHERE document_id=$1`,
		documentID, provider, pageCount, confidence, hasHandwriting, processingTimeMs,
	)
	if err != nil {
		return fmt.Errorf("update document provenance: %w", err)
	}
	return nil
}

func (r *DocumentRepo) GetDocument(ctx context.Context, documentID string) (models.Document, error) {
	var d models.Document
	err := r.db.Pool.QueryRow(ctx, `
SELECT document_id, COALESCE(company_id,''), source_url, COALESCE(filename,''), COALESCE(provider,''),
       page_count, confidence_score, has_handwriting, processing_time_ms, processed_at, created_at, updated_at
FROM documents
WHERE document_id=$1`, documentID).
		Scan(&d.DocumentID, &d.CompanyID, &d.SourceURL, &d.Filename, &d.Provider, &d.PageCount,
			&d.ConfidenceScore, &d.HasHandwriting, &d.ProcessingTimeMs, &d.ProcessedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return models.Document{}, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

// WriteSummary records one metadata summary row per completed run,
// replacing any previous summary for the document.
func (r *DocumentRepo) WriteSummary(ctx context.Context, s models.DocumentSummary) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO document_summaries
  (document_id, provider, page_count, chunk_count, table_chunk_count, confidence_score, has_handwriting, generated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
ON CONFLICT (document_id)
DO UPDATE SET
  provider = EXCLUDED.provider,
  page_count = EXCLUDED.page_count,
  chunk_count = EXCLUDED.chunk_count,
  table_chunk_count = EXCLUDED.table_chunk_count,
  confidence_score = EXCLUDED.confidence_score,
  has_handwriting = EXCLUDED.has_handwriting,
  generated_at = NOW()`,
		s.DocumentID, s.Provider, s.PageCount, s.ChunkCount, s.TableChunkCount, s.ConfidenceScore, s.HasHandwriting,
	)
	if err != nil {
		return fmt.Errorf("write document summary: %w", err)
	}
	return nil
}
