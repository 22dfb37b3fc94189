package pdfinfo

import (
	"image"
	"log"

	"github.com/gen2brain/go-fitz"
)

// RenderPages rasterizes the given 1-indexed pages. Rendering is strictly
// best-effort: an unopenable document yields an empty slice and a page that
// fails to render is skipped, so callers must tolerate fewer images than
// requested pages.
func RenderPages(data []byte, pages []int) []image.Image {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		log.Printf("pdfinfo: open for rendering failed: %v", err)
		return nil
	}
	defer doc.Close()

	images := make([]image.Image, 0, len(pages))
	for _, p := range pages {
		if p < 1 || p > doc.NumPage() {
			continue
		}
		img, err := doc.Image(p - 1)
		if err != nil {
			log.Printf("pdfinfo: render page %d failed: %v", p, err)
			continue
		}
		images = append(images, img)
	}
	return images
}
