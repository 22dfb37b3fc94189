package storage

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"docflow/internal/models"
)

type SectionRecord struct {
	SectionID    string
	DocumentID   string
	SectionIndex int
	Content      string
	ContentHash  string
	SemanticType string
	PageNumber   int
	TokenCount   int
	CharCount    int
	Embedding    []float32
}

type SectionRepo struct {
	db *DB
}

func NewSectionRepo(db *DB) *SectionRepo {
	return &SectionRepo{db: db}
}

// ReplaceSections swaps a document's sections for a fresh set in one
// transaction, so reprocessing never leaves stale rows behind.
func (r *SectionRepo) ReplaceSections(ctx context.Context, documentID string, sections []SectionRecord) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx replace sections: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM document_sections WHERE document_id=$1`, documentID); err != nil {
		return fmt.Errorf("delete stale sections: %w", err)
	}
	for _, s := range sections {
		var emb any
		if len(s.Embedding) > 0 {
			emb = pgvector.NewVector(s.Embedding)
		}
		_, err := tx.Exec(ctx, `
INSERT INTO document_sections
  (section_id, document_id, section_index, content, content_hash, semantic_type, page_number, token_count, char_count, embedding)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			s.SectionID, s.DocumentID, s.SectionIndex, s.Content, s.ContentHash, s.SemanticType, s.PageNumber, s.TokenCount, s.CharCount, emb,
		)
		if err != nil {
			return fmt.Errorf("insert section %s: %w", s.SectionID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit sections tx: %w", err)
	}
	return nil
}

func (r *SectionRepo) ListSectionsByDocument(ctx context.Context, documentID string) ([]models.Section, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT section_id, document_id, section_index, content, content_hash, semantic_type, page_number, token_count, char_count, created_at
FROM document_sections
WHERE document_id=$1
ORDER BY section_index ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()
	out := make([]models.Section, 0, 64)
	for rows.Next() {
		var s models.Section
		if err := rows.Scan(&s.SectionID, &s.DocumentID, &s.SectionIndex, &s.Content, &s.ContentHash, &s.SemanticType, &s.PageNumber, &s.TokenCount, &s.CharCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sections: %w", err)
	}
	return out, nil
}
