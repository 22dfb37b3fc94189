package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"docflow/internal/activities"
	"docflow/internal/models"
)

const QueryGetDocumentStatus = "GetDocumentStatus"

// DocumentProcessWorkflow runs one document through route, extract, chunk,
// embed and persist. A stage failure marks the job failed and completes
// the workflow normally: the job row is the source of truth for callers,
// and rethrowing the error out of the workflow would only duplicate it.
func DocumentProcessWorkflow(ctx workflow.Context, input DocumentProcessInput) (string, error) {
	status := DocumentStatus{
		JobID:       input.JobID,
		DocumentID:  input.DocumentID,
		Status:      models.JobStatusProcessing,
		CurrentStep: "init",
		Steps:       map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetDocumentStatus, func() (DocumentStatus, error) {
		return status, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	started := workflow.Now(ctx)

	fail := func(step, reason string) (string, error) {
		status.Status = models.JobStatusFailed
		status.FailReason = reason
		status.Steps[step] = "failed"
		_ = workflow.ExecuteActivity(ctx, "UpdateJobStatusActivity", activities.UpdateJobStatusInput{
			JobID:      input.JobID,
			Status:     models.JobStatusFailed,
			FailReason: reason,
		}).Get(ctx, nil)
		return status.Status, nil
	}

	_ = workflow.ExecuteActivity(ctx, "UpdateJobStatusActivity", activities.UpdateJobStatusInput{
		JobID:  input.JobID,
		Status: models.JobStatusProcessing,
	}).Get(ctx, nil)

	status.CurrentStep = "route"
	status.Steps[status.CurrentStep] = "processing"
	var routeOut activities.RouteDocumentOutput
	if err := workflow.ExecuteActivity(ctx, "RouteDocumentActivity", activities.RouteDocumentInput{
		JobID:      input.JobID,
		DocumentID: input.DocumentID,
		SourceURL:  input.SourceURL,
		Options:    input.Options,
	}).Get(ctx, &routeOut); err != nil {
		return fail("route", "routing failed: "+err.Error())
	}
	status.Provider = string(routeOut.Decision.Provider)
	status.Steps["route"] = "done"

	status.CurrentStep = "extract"
	status.Steps[status.CurrentStep] = "processing"
	var extractOut activities.ExtractDocumentOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractDocumentActivity", activities.ExtractDocumentInput{
		JobID:      input.JobID,
		DocumentID: input.DocumentID,
		SourceURL:  input.SourceURL,
		Decision:   routeOut.Decision,
		Options:    input.Options,
	}).Get(ctx, &extractOut); err != nil {
		return fail("extract", "extraction failed: "+err.Error())
	}
	status.Provider = string(extractOut.Provider)
	status.PageCount = extractOut.Document.Metadata.TotalPages
	status.Steps["extract"] = "done"

	status.CurrentStep = "chunk"
	status.Steps[status.CurrentStep] = "processing"
	var chunkOut activities.ChunkDocumentOutput
	if err := workflow.ExecuteActivity(ctx, "ChunkDocumentActivity", activities.ChunkDocumentInput{
		DocumentID: input.DocumentID,
		Pages:      extractOut.Document.Pages,
	}).Get(ctx, &chunkOut); err != nil {
		return fail("chunk", "chunking failed: "+err.Error())
	}
	status.ChunkCount = len(chunkOut.Chunks)
	status.Steps["chunk"] = "done"

	status.CurrentStep = "embed"
	status.Steps[status.CurrentStep] = "processing"
	var embedOut activities.EmbedChunksOutput
	if err := workflow.ExecuteActivity(ctx, "EmbedChunksActivity", activities.EmbedChunksInput{
		Chunks: chunkOut.Chunks,
	}).Get(ctx, &embedOut); err != nil {
		return fail("embed", "embedding failed: "+err.Error())
	}
	status.Steps["embed"] = "done"

	status.CurrentStep = "persist"
	status.Steps[status.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "PersistResultsActivity", activities.PersistResultsInput{
		DocumentID: input.DocumentID,
		SourceURL:  input.SourceURL,
		Document:   extractOut.Document,
		Chunks:     chunkOut.Chunks,
		Vectors:    embedOut.Vectors,
	}).Get(ctx, nil); err != nil {
		return fail("persist", "persistence failed: "+err.Error())
	}
	status.Steps["persist"] = "done"

	if err := workflow.ExecuteActivity(ctx, "UpdateJobStatusActivity", activities.UpdateJobStatusInput{
		JobID:      input.JobID,
		Status:     models.JobStatusCompleted,
		Provider:   status.Provider,
		PageCount:  status.PageCount,
		ChunkCount: status.ChunkCount,
		DurationMs: workflow.Now(ctx).Sub(started).Milliseconds(),
	}).Get(ctx, nil); err != nil {
		return fail("complete", "job completion update failed: "+err.Error())
	}
	status.CurrentStep = "done"
	status.Status = models.JobStatusCompleted
	return status.Status, nil
}
