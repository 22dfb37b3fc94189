// Package pipeline drives a document through route, extract, chunk, embed
// and persist. Runner executes the stages in-process; Dispatcher decides
// whether a request runs there or on the background worker fleet.
package pipeline

import (
	"context"
	"log"
	"time"

	"docflow/internal/activities"
	"docflow/internal/document"
	"docflow/internal/storage"
)

// Runner executes the pipeline synchronously, reusing the same stage code
// the Temporal worker runs, so both paths stay behaviorally identical.
type Runner struct {
	acts    *activities.Activities
	jobRepo *storage.JobRepo
}

func NewRunner(acts *activities.Activities, jobRepo *storage.JobRepo) *Runner {
	return &Runner{acts: acts, jobRepo: jobRepo}
}

// Process runs one document end to end. Stage failures are recorded on the
// job row and returned; the job row is what callers poll either way.
func (r *Runner) Process(ctx context.Context, jobID, documentID, sourceURL string, opts document.Options) error {
	started := time.Now()
	if err := r.jobRepo.MarkProcessing(ctx, jobID); err != nil {
		return err
	}

	fail := func(stage string, cause error) error {
		log.Printf("job %s: %s failed: %v", jobID, stage, cause)
		if err := r.jobRepo.MarkFailed(ctx, jobID, stage+" failed: "+cause.Error()); err != nil {
			log.Printf("job %s: mark failed: %v", jobID, err)
		}
		return cause
	}

	routeOut, err := r.acts.RouteDocumentActivity(ctx, activities.RouteDocumentInput{
		JobID:      jobID,
		DocumentID: documentID,
		SourceURL:  sourceURL,
		Options:    opts,
	})
	if err != nil {
		return fail("routing", err)
	}
	log.Printf("job %s: routed to %s (%s, confidence %.2f)", jobID, routeOut.Decision.Provider, routeOut.Decision.Reason, routeOut.Decision.Confidence)

	extractOut, err := r.acts.ExtractDocumentActivity(ctx, activities.ExtractDocumentInput{
		JobID:      jobID,
		DocumentID: documentID,
		SourceURL:  sourceURL,
		Decision:   routeOut.Decision,
		Options:    opts,
	})
	if err != nil {
		return fail("extraction", err)
	}

	chunkOut, err := r.acts.ChunkDocumentActivity(ctx, activities.ChunkDocumentInput{DocumentID: documentID, Pages: extractOut.Document.Pages})
	if err != nil {
		return fail("chunking", err)
	}

	embedOut, err := r.acts.EmbedChunksActivity(ctx, activities.EmbedChunksInput{Chunks: chunkOut.Chunks})
	if err != nil {
		return fail("embedding", err)
	}

	if err := r.acts.PersistResultsActivity(ctx, activities.PersistResultsInput{
		DocumentID: documentID,
		SourceURL:  sourceURL,
		Document:   extractOut.Document,
		Chunks:     chunkOut.Chunks,
		Vectors:    embedOut.Vectors,
	}); err != nil {
		return fail("persistence", err)
	}

	if err := r.jobRepo.MarkCompleted(ctx, jobID, string(extractOut.Provider),
		extractOut.Document.Metadata.TotalPages, len(chunkOut.Chunks), time.Since(started).Milliseconds()); err != nil {
		return fail("completion", err)
	}
	return nil
}
