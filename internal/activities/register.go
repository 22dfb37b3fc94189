package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.RouteDocumentActivity)
	w.RegisterActivity(a.ExtractDocumentActivity)
	w.RegisterActivity(a.ChunkDocumentActivity)
	w.RegisterActivity(a.EmbedChunksActivity)
	w.RegisterActivity(a.PersistResultsActivity)
	w.RegisterActivity(a.UpdateJobStatusActivity)
}
