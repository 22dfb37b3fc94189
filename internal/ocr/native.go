package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docflow/internal/document"
	"docflow/internal/pdfinfo"
)

// NativeExtractor reads the embedded text layer directly, page by page.
// It is the zero-cost path for born-digital PDFs and detects no tables:
// documents whose tables matter are routed to a layout-aware provider.
type NativeExtractor struct{}

func NewNativeExtractor() *NativeExtractor {
	return &NativeExtractor{}
}

func (n *NativeExtractor) Name() document.Provider {
	return document.ProviderNative
}

func (n *NativeExtractor) ProcessDocument(ctx context.Context, url string, opts document.Options) (*document.NormalizedDocument, error) {
	start := time.Now()
	data, _, err := Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	info, err := pdfinfo.Inspect(data)
	if err != nil {
		return nil, fmt.Errorf("native extraction: %w", err)
	}

	wanted := opts.Pages
	if len(wanted) == 0 {
		wanted = make([]int, 0, info.PageCount)
		for p := 1; p <= info.PageCount; p++ {
			wanted = append(wanted, p)
		}
	}

	pages := make([]document.PageContent, 0, len(wanted))
	for _, p := range wanted {
		text, err := pdfinfo.ExtractPageText(data, p)
		if err != nil {
			return nil, fmt.Errorf("native extraction page %d: %w", p, err)
		}
		pages = append(pages, pageFromText(p, text))
	}

	return &document.NormalizedDocument{
		Pages: pages,
		Metadata: document.DocumentMetadata{
			TotalPages:       info.PageCount,
			Provider:         document.ProviderNative,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
	}, nil
}

func (n *NativeExtractor) ExtractPage(ctx context.Context, url string, pageNumber int) (document.PageContent, error) {
	data, _, err := Fetch(ctx, url)
	if err != nil {
		return document.PageContent{}, err
	}
	text, err := pdfinfo.ExtractPageText(data, pageNumber)
	if err != nil {
		return document.PageContent{}, fmt.Errorf("native extraction page %d: %w", pageNumber, err)
	}
	return pageFromText(pageNumber, text), nil
}

// pageFromText splits extracted text into paragraph-ish blocks on blank
// lines, keeping reading order.
func pageFromText(pageNumber int, text string) document.PageContent {
	blocks := make([]string, 0, 8)
	for _, part := range strings.Split(text, "\n\n") {
		part = strings.TrimSpace(part)
		if part != "" {
			blocks = append(blocks, part)
		}
	}
	return document.PageContent{PageNumber: pageNumber, TextBlocks: blocks, Tables: nil}
}
