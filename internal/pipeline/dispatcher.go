package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"

	"docflow/internal/config"
	"docflow/internal/document"
	"docflow/internal/models"
	"docflow/internal/storage"
	"docflow/internal/workflows"
)

// Dispatcher creates the job row and hands the work off: to Temporal when
// a cluster address is configured, otherwise to the in-process Runner,
// awaited to completion. Callers poll the job row in both modes.
type Dispatcher struct {
	cfg      config.Config
	jobRepo  *storage.JobRepo
	docRepo  *storage.DocumentRepo
	runner   *Runner
	temporal tclient.Client
}

// NewDispatcher accepts a nil temporal client; that selects the
// synchronous path.
func NewDispatcher(cfg config.Config, db *storage.DB, runner *Runner, temporal tclient.Client) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		jobRepo:  storage.NewJobRepo(db),
		docRepo:  storage.NewDocumentRepo(db),
		runner:   runner,
		temporal: temporal,
	}
}

// Request is the pipeline entry contract: the document to process, who
// asked for it, and how.
type Request struct {
	DocumentID string
	CompanyID  string
	UserID     string
	SourceURL  string
	Options    document.Options
}

// Dispatch registers the document and job, then starts processing. The
// returned job ID is valid in both modes; a failed synchronous run still
// returns the ID since the failure is recorded on the job row.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (string, error) {
	documentID := req.DocumentID
	if documentID == "" {
		documentID = uuid.NewString()
	}
	jobID := uuid.NewString()

	if err := d.docRepo.UpsertDocument(ctx, models.Document{DocumentID: documentID, CompanyID: req.CompanyID, SourceURL: req.SourceURL}); err != nil {
		return "", err
	}
	if err := d.jobRepo.CreateJob(ctx, jobID, documentID, req.CompanyID, req.UserID); err != nil {
		return "", err
	}

	if d.temporal != nil {
		_, err := d.temporal.ExecuteWorkflow(ctx, tclient.StartWorkflowOptions{
			ID:                    "docjob-" + jobID,
			TaskQueue:             d.cfg.TemporalTaskQueue,
			WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		}, workflows.DocumentProcessWorkflow, workflows.DocumentProcessInput{
			JobID:      jobID,
			DocumentID: documentID,
			SourceURL:  req.SourceURL,
			Options:    req.Options,
		})
		if err != nil {
			return "", fmt.Errorf("start workflow: %w", err)
		}
		return jobID, nil
	}

	if err := d.runner.Process(ctx, jobID, documentID, req.SourceURL, req.Options); err != nil {
		log.Printf("job %s: synchronous run failed: %v", jobID, err)
	}
	return jobID, nil
}
