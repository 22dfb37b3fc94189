package activities

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"docflow/internal/chunker"
	"docflow/internal/config"
	"docflow/internal/document"
	"docflow/internal/embed"
	"docflow/internal/models"
	"docflow/internal/ocr"
	"docflow/internal/router"
	"docflow/internal/storage"
	"docflow/internal/util"
	"docflow/internal/vision"
)

type Activities struct {
	cfg         config.Config
	jobRepo     *storage.JobRepo
	docRepo     *storage.DocumentRepo
	sectionRepo *storage.SectionRepo
	router      *router.Router
	registry    ocr.Registry
	embedder    embed.Provider
}

func New(cfg config.Config, db *storage.DB) (*Activities, error) {
	embedder, err := embed.NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	poll := ocr.PollConfig{
		MaxAttempts: cfg.PollMaxAttempts,
		Interval:    time.Duration(cfg.PollIntervalSec) * time.Second,
	}
	registry := ocr.Registry{
		document.ProviderNative:  ocr.NewNativeExtractor(),
		document.ProviderAzure:   ocr.NewAzureAdapter(cfg.AzureEndpoint, cfg.AzureKey, poll),
		document.ProviderMistral: ocr.NewMistralAdapter(cfg.MistralKey),
		document.ProviderMarker:  ocr.NewMarkerAdapter(cfg.DatalabKey, poll),
	}
	return &Activities{
		cfg:         cfg,
		jobRepo:     storage.NewJobRepo(db),
		docRepo:     storage.NewDocumentRepo(db),
		sectionRepo: storage.NewSectionRepo(db),
		router:      router.New(vision.NewClassifier(cfg.SidecarURL)),
		registry:    registry,
		embedder:    embedder,
	}, nil
}

// RouteDocumentActivity decides which extraction backend handles the
// document. A caller preference short-circuits classification entirely;
// ForceOCR turns a native decision into an OCR one, using the vision
// verdict already gathered to pick between the complex and standard paths.
func (a *Activities) RouteDocumentActivity(ctx context.Context, in RouteDocumentInput) (RouteDocumentOutput, error) {
	if in.Options.Preferred != "" {
		if _, ok := a.registry.Get(in.Options.Preferred); !ok {
			return RouteDocumentOutput{}, fmt.Errorf("unknown preferred provider: %s", in.Options.Preferred)
		}
		return RouteDocumentOutput{Decision: document.RoutingDecision{
			Provider:   in.Options.Preferred,
			Reason:     "caller-preferred provider",
			Confidence: 1.0,
		}}, nil
	}

	data, _, err := ocr.Fetch(ctx, in.SourceURL)
	if err != nil {
		return RouteDocumentOutput{}, fmt.Errorf("fetch document for routing: %w", err)
	}
	decision := a.router.DetermineRouting(ctx, data)

	if in.Options.ForceOCR && decision.Provider == document.ProviderNative {
		forced := document.ProviderAzure
		if decision.VisionResult != nil && vision.IsComplexLabel(decision.VisionResult.Label) {
			forced = document.ProviderMistral
		}
		decision.Provider = forced
		decision.Reason = "ocr forced by caller"
	}
	return RouteDocumentOutput{Decision: decision}, nil
}

func (a *Activities) ExtractDocumentActivity(ctx context.Context, in ExtractDocumentInput) (ExtractDocumentOutput, error) {
	prov, ok := a.registry.Get(in.Decision.Provider)
	if !ok {
		return ExtractDocumentOutput{}, fmt.Errorf("no adapter for provider %s", in.Decision.Provider)
	}
	start := time.Now()
	doc, err := prov.ProcessDocument(ctx, in.SourceURL, in.Options)
	if err != nil {
		return ExtractDocumentOutput{}, fmt.Errorf("extract with %s: %w", in.Decision.Provider, err)
	}
	doc.Metadata.Provider = prov.Name()
	if doc.Metadata.ProcessingTimeMs == 0 {
		doc.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()
	}
	if doc.Metadata.HasHandwriting == nil && in.Decision.VisionResult != nil {
		hw := in.Decision.VisionResult.Label == "handwritten notes"
		doc.Metadata.HasHandwriting = &hw
	}
	for pi := range doc.Pages {
		for bi := range doc.Pages[pi].TextBlocks {
			doc.Pages[pi].TextBlocks[bi] = util.SanitizeText(doc.Pages[pi].TextBlocks[bi])
		}
	}
	return ExtractDocumentOutput{Document: *doc, Provider: prov.Name()}, nil
}

func (a *Activities) ChunkDocumentActivity(ctx context.Context, in ChunkDocumentInput) (ChunkDocumentOutput, error) {
	_ = ctx
	chunks := chunker.Chunk(in.DocumentID, in.Pages, chunker.Config{
		MaxTokens:     a.cfg.MaxTokens,
		OverlapTokens: a.cfg.OverlapTokens,
		CharsPerToken: a.cfg.CharsPerToken,
	})
	return ChunkDocumentOutput{Chunks: chunks}, nil
}

// EmbedChunksActivity vectorizes chunk content in fixed-size batches. A
// count mismatch between inputs and returned vectors is unrecoverable:
// positional merge is the only pairing we have.
func (a *Activities) EmbedChunksActivity(ctx context.Context, in EmbedChunksInput) (EmbedChunksOutput, error) {
	batchSize := a.cfg.EmbedBatchSize
	if batchSize <= 0 {
		batchSize = 20
	}
	vectors := make([][]float32, 0, len(in.Chunks))
	for start := 0; start < len(in.Chunks); start += batchSize {
		end := start + batchSize
		if end > len(in.Chunks) {
			end = len(in.Chunks)
		}
		inputs := make([]string, 0, end-start)
		for _, c := range in.Chunks[start:end] {
			inputs = append(inputs, c.Content)
		}
		batch, err := a.embedder.Embed(ctx, inputs, a.cfg.EmbedDim)
		if err != nil {
			return EmbedChunksOutput{}, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if len(batch) != len(inputs) {
			return EmbedChunksOutput{}, fmt.Errorf("embed batch at %d: got %d vectors for %d inputs", start, len(batch), len(inputs))
		}
		vectors = append(vectors, batch...)
	}
	return EmbedChunksOutput{Vectors: vectors, ProviderName: a.embedder.Name()}, nil
}

func (a *Activities) PersistResultsActivity(ctx context.Context, in PersistResultsInput) error {
	if len(in.Vectors) != len(in.Chunks) {
		return fmt.Errorf("persist: %d vectors for %d chunks", len(in.Vectors), len(in.Chunks))
	}
	if err := a.docRepo.UpsertDocument(ctx, models.Document{
		DocumentID: in.DocumentID,
		SourceURL:  in.SourceURL,
	}); err != nil {
		return err
	}

	sections := make([]storage.SectionRecord, 0, len(in.Chunks))
	for i, c := range in.Chunks {
		semanticType := string(c.Type)
		content := util.SanitizeText(c.Content)
		sections = append(sections, storage.SectionRecord{
			SectionID:    c.ID,
			DocumentID:   in.DocumentID,
			SectionIndex: c.Metadata.ChunkIndex,
			Content:      content,
			ContentHash:  util.SHA256Hex([]byte(content)),
			SemanticType: semanticType,
			PageNumber:   c.Metadata.PageNumber,
			TokenCount:   estimateTokens(content, a.cfg.CharsPerToken),
			CharCount:    utf8.RuneCountInString(content),
			Embedding:    in.Vectors[i],
		})
	}
	if err := a.sectionRepo.ReplaceSections(ctx, in.DocumentID, sections); err != nil {
		return err
	}

	meta := in.Document.Metadata
	tableChunks := 0
	for _, c := range in.Chunks {
		if c.Metadata.IsTable {
			tableChunks++
		}
	}
	if err := a.docRepo.WriteSummary(ctx, models.DocumentSummary{
		DocumentID:      in.DocumentID,
		Provider:        string(meta.Provider),
		PageCount:       meta.TotalPages,
		ChunkCount:      len(in.Chunks),
		TableChunkCount: tableChunks,
		ConfidenceScore: meta.ConfidenceScore,
		HasHandwriting:  meta.HasHandwriting,
	}); err != nil {
		return err
	}
	return a.docRepo.UpdateProvenance(ctx, in.DocumentID, string(meta.Provider), meta.TotalPages, meta.ConfidenceScore, meta.HasHandwriting, meta.ProcessingTimeMs)
}

func (a *Activities) UpdateJobStatusActivity(ctx context.Context, in UpdateJobStatusInput) error {
	switch in.Status {
	case models.JobStatusProcessing:
		return a.jobRepo.MarkProcessing(ctx, in.JobID)
	case models.JobStatusCompleted:
		return a.jobRepo.MarkCompleted(ctx, in.JobID, in.Provider, in.PageCount, in.ChunkCount, in.DurationMs)
	case models.JobStatusFailed:
		return a.jobRepo.MarkFailed(ctx, in.JobID, in.FailReason)
	default:
		return fmt.Errorf("unknown job status: %s", in.Status)
	}
}

func estimateTokens(s string, charsPerToken int) int {
	if charsPerToken <= 0 {
		charsPerToken = 4
	}
	chars := utf8.RuneCountInString(s)
	n := (chars + charsPerToken - 1) / charsPerToken
	if n == 0 && s != "" {
		n = 1
	}
	return n
}
