// Package pdfinfo reads PDF structure and the native text layer. It is the
// cheap, no-network half of document analysis: the router consults it before
// deciding whether any OCR vendor needs to be involved.
package pdfinfo

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"docflow/internal/util"
)

// Info is the structural summary the router needs for its short circuits.
type Info struct {
	PageCount     int
	HasFormFields bool
}

// Inspect loads the document catalog and reports page count and whether the
// PDF declares interactive AcroForm fields.
func Inspect(data []byte) (Info, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Info{}, fmt.Errorf("open pdf: %w", err)
	}
	info := Info{PageCount: r.NumPage()}

	fields := r.Trailer().Key("Root").Key("AcroForm").Key("Fields")
	if fields.Kind() == pdf.Array && fields.Len() > 0 {
		info.HasFormFields = true
	}
	return info, nil
}

// ExtractText reads the whole embedded text layer in reading order.
func ExtractText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	return util.SanitizeText(buf.String()), nil
}

// ExtractPageText reads the text layer of a single 1-indexed page.
func ExtractPageText(data []byte, pageNumber int) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	if pageNumber < 1 || pageNumber > r.NumPage() {
		return "", fmt.Errorf("page %d out of range (1..%d)", pageNumber, r.NumPage())
	}
	p := r.Page(pageNumber)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d missing from page tree", pageNumber)
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract page %d text: %w", pageNumber, err)
	}
	return util.SanitizeText(text), nil
}

// SampleText returns up to limit characters from the start of the text
// layer. Extraction failure is treated as an empty text layer, not an
// error: the router only uses the sample to pick a path.
func SampleText(data []byte, limit int) string {
	text, err := ExtractText(data)
	if err != nil {
		return ""
	}
	runes := []rune(text)
	if len(runes) > limit {
		runes = runes[:limit]
	}
	return strings.TrimSpace(string(runes))
}
