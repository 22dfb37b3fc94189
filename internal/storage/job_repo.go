package storage

import (
	"context"
	"fmt"

	"docflow/internal/models"
)

type JobRepo struct {
	db *DB
}

func NewJobRepo(db *DB) *JobRepo {
	return &JobRepo{db: db}
}

func (r *JobRepo) CreateJob(ctx context.Context, jobID, documentID, companyID, userID string) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO processing_jobs (job_id, document_id, company_id, user_id, status)
VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), 'pending')
ON CONFLICT (job_id) DO NOTHING`, jobID, documentID, companyID, userID)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (r *JobRepo) MarkProcessing(ctx context.Context, jobID string) error {
	_, err := r.db.Pool.Exec(ctx, `
UPDATE processing_jobs SET status='processing', updated_at=NOW() WHERE job_id=$1`, jobID)
	if err != nil {
		return fmt.Errorf("mark job processing: %w", err)
	}
	return nil
}

func (r *JobRepo) MarkCompleted(ctx context.Context, jobID, provider string, pageCount, chunkCount int, durationMs int64) error {
	_, err := r.db.Pool.Exec(ctx, `
UPDATE processing_jobs
SET status='completed', provider=NULLIF($2,''), page_count=$3, chunk_count=$4, duration_ms=$5, updated_at=NOW()
WHERE job_id=$1`, jobID, provider, pageCount, chunkCount, durationMs)
	if err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}
	return nil
}

func (r *JobRepo) MarkFailed(ctx context.Context, jobID, failReason string) error {
	_, err := r.db.Pool.Exec(ctx, `
UPDATE processing_jobs SET status='failed', fail_reason=NULLIF($2,''), updated_at=NOW() WHERE job_id=$1`, jobID, failReason)
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	return nil
}

func (r *JobRepo) GetJob(ctx context.Context, jobID string) (models.ProcessingJob, error) {
	var j models.ProcessingJob
	err := r.db.Pool.QueryRow(ctx, `
SELECT job_id, document_id, COALESCE(company_id,''), COALESCE(user_id,''), status, COALESCE(provider,''),
       page_count, chunk_count, duration_ms, COALESCE(fail_reason,''), created_at, updated_at
FROM processing_jobs
WHERE job_id=$1`, jobID).
		Scan(&j.JobID, &j.DocumentID, &j.CompanyID, &j.UserID, &j.Status, &j.Provider, &j.PageCount, &j.ChunkCount, &j.DurationMs, &j.FailReason, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return models.ProcessingJob{}, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (r *JobRepo) ListJobsByDocument(ctx context.Context, documentID string) ([]models.ProcessingJob, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT job_id, document_id, COALESCE(company_id,''), COALESCE(user_id,''), status, COALESCE(provider,''),
       page_count, chunk_count, duration_ms, COALESCE(fail_reason,''), created_at, updated_at
FROM processing_jobs
WHERE document_id=$1
ORDER BY created_at DESC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()
	out := make([]models.ProcessingJob, 0)
	for rows.Next() {
		var j models.ProcessingJob
		if err := rows.Scan(&j.JobID, &j.DocumentID, &j.CompanyID, &j.UserID, &j.Status, &j.Provider, &j.PageCount, &j.ChunkCount, &j.DurationMs, &j.FailReason, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return out, nil
}
