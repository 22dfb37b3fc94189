// Package router decides how a document should be read: native text-layer
// extraction for born-digital PDFs, or one of the OCR providers for scans.
// Routing is deliberately infallible — every failure inside the analysis
// degrades to a safe default decision instead of propagating.
package router

import (
	"context"
	"fmt"
	"image"
	"log"

	"docflow/internal/document"
	"docflow/internal/pdfinfo"
	"docflow/internal/vision"
)

const (
	// sampleLimit is how much of the text layer we read before deciding
	// the document is born-digital.
	sampleLimit = 200
	// minTextLength is the minimum sampled text that counts as a usable
	// text layer.
	minTextLength = 50
	// complexThreshold is the vision score above which a complex label
	// routes to the handwriting-capable provider.
	complexThreshold = 0.60
	// maxSamplePages bounds how many pages we rasterize and classify.
	maxSamplePages = 5
	// largeDocPages is the size past which an extra interior page is
	// added to the sample.
	largeDocPages = 10
)

type Classifier interface {
	ClassifyPages(ctx context.Context, images []image.Image, labels []string) ([]vision.Classification, error)
}

type Router struct {
	classifier Classifier

	// Indirected for tests; production construction wires pdfinfo.
	inspect func(data []byte) (pdfinfo.Info, error)
	sample  func(data []byte, limit int) string
	render  func(data []byte, pages []int) []image.Image
}

func New(classifier Classifier) *Router {
	return &Router{
		classifier: classifier,
		inspect:    pdfinfo.Inspect,
		sample:     pdfinfo.SampleText,
		render:     pdfinfo.RenderPages,
	}
}

// DetermineRouting analyzes the document bytes and picks a provider. It
// never returns an error: classification uncertainty and internal failures
// degrade to the general-purpose layout OCR provider.
func (rt *Router) DetermineRouting(ctx context.Context, data []byte) document.RoutingDecision {
	pageCount := 1
	info, err := rt.inspect(data)
	if err != nil {
		// Structural load failure is non-fatal; assume a single page.
		log.Printf("router: structure inspection failed, assuming 1 page: %v", err)
	} else {
		pageCount = info.PageCount
	}

	// Interactive form fields always read best through the native text
	// layer, before any text-length heuristics.
	if err == nil && info.HasFormFields {
		return document.RoutingDecision{
			Provider:   document.ProviderNative,
			Reason:     "interactive form fields detected",
			Confidence: 0.99,
			PageCount:  pageCount,
		}
	}

	if sampled := rt.sample(data, sampleLimit); len([]rune(sampled)) >= minTextLength {
		return document.RoutingDecision{
			Provider:   document.ProviderNative,
			Reason:     fmt.Sprintf("text layer present (%d chars sampled)", len([]rune(sampled))),
			Confidence: 0.95,
			PageCount:  pageCount,
		}
	}

	// No usable text layer: treat the document as a scan and classify a
	// bounded page sample.
	pages := SamplePages(pageCount)
	images := rt.render(data, pages)
	if len(images) == 0 {
		return document.RoutingDecision{
			Provider:   document.ProviderAzure,
			Reason:     "no text layer detected",
			Confidence: 0.5,
			PageCount:  pageCount,
		}
	}

	labels := append(append([]string{}, vision.ComplexLabels...), vision.SimpleLabels...)
	results, err := rt.classifier.ClassifyPages(ctx, images, labels)
	if err != nil || len(results) == 0 {
		if err != nil {
			log.Printf("router: vision classification unavailable: %v", err)
		}
		return document.RoutingDecision{
			Provider:   document.ProviderAzure,
			Reason:     "no text layer detected",
			Confidence: 0.5,
			PageCount:  pageCount,
		}
	}

	// Prefer the strongest complex signal across all sampled pages; if no
	// page matched a complex label at all, use the first page's top label.
	dominant := vision.Classification{}
	for _, r := range results {
		if vision.IsComplexLabel(r.Label) && r.Score > dominant.Score {
			dominant = r
		}
	}
	if dominant.Score == 0 {
		dominant = results[0]
	}

	vr := &document.VisionResult{Label: dominant.Label, Score: dominant.Score}
	if vision.IsComplexLabel(dominant.Label) && dominant.Score > complexThreshold {
		return document.RoutingDecision{
			Provider:     document.ProviderMistral,
			Reason:       fmt.Sprintf("vision classified as %q", dominant.Label),
			Confidence:   dominant.Score,
			PageCount:    pageCount,
			VisionResult: vr,
		}
	}
	return document.RoutingDecision{
		Provider:     document.ProviderAzure,
		Reason:       fmt.Sprintf("vision classified as %q", dominant.Label),
		Confidence:   dominant.Score,
		PageCount:    pageCount,
		VisionResult: vr,
	}
}
