package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"docflow/internal/document"
)

// MistralAdapter handles the documents the layout model reads poorly:
// handwriting, messy scans, receipts. The vendor cannot reach arbitrary or
// private URLs, so the document is fetched server-side and re-uploaded,
// then OCR'd with a page-level split.
type MistralAdapter struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewMistralAdapter(apiKey string) *MistralAdapter {
	return &MistralAdapter{
		apiKey:  apiKey,
		baseURL: "https://api.mistral.ai",
		model:   "mistral-ocr-latest",
		client:  &http.Client{Timeout: 180 * time.Second},
	}
}

func (m *MistralAdapter) Name() document.Provider {
	return document.ProviderMistral
}

func (m *MistralAdapter) ProcessDocument(ctx context.Context, url string, opts document.Options) (*document.NormalizedDocument, error) {
	if m.apiKey == "" {
		return nil, fmt.Errorf("%w: set DOCFLOW_MISTRAL_API_KEY", ErrMissingCredentials)
	}
	start := time.Now()

	data, _, err := Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	fileID, err := m.upload(ctx, data)
	if err != nil {
		return nil, err
	}
	signedURL, err := m.signedURL(ctx, fileID)
	if err != nil {
		return nil, err
	}
	splits, err := m.runOCR(ctx, signedURL)
	if err != nil {
		return nil, err
	}

	var pages []document.PageContent
	if len(splits) == 0 {
		// No split segments: the whole response collapses to one page.
		pages = []document.PageContent{{PageNumber: 1, TextBlocks: nil}}
	} else {
		pages = make([]document.PageContent, 0, len(splits))
		for _, s := range splits {
			pages = append(pages, document.PageContent{
				PageNumber: s.Index + 1,
				TextBlocks: []string{s.Markdown},
			})
		}
	}

	return &document.NormalizedDocument{
		Pages: pages,
		Metadata: document.DocumentMetadata{
			TotalPages:       len(pages),
			Provider:         document.ProviderMistral,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
	}, nil
}

func (m *MistralAdapter) ExtractPage(ctx context.Context, url string, pageNumber int) (document.PageContent, error) {
	doc, err := m.ProcessDocument(ctx, url, document.Options{})
	if err != nil {
		return document.PageContent{}, err
	}
	for _, p := range doc.Pages {
		if p.PageNumber == pageNumber {
			return p, nil
		}
	}
	return document.PageContent{}, fmt.Errorf("mistral ocr: page %d absent from response", pageNumber)
}

func (m *MistralAdapter) upload(ctx context.Context, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("purpose", "ocr"); err != nil {
		return "", err
	}
	part, err := mw.CreateFormFile("file", "document.pdf")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v1/files", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mistral upload failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", httpError("mistral upload", resp.StatusCode, body)
	}
	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("mistral upload: decode response: %w", err)
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("mistral upload: empty file id")
	}
	return parsed.ID, nil
}

func (m *MistralAdapter) signedURL(ctx context.Context, fileID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/v1/files/"+fileID+"/url", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mistral signed url failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", httpError("mistral signed url", resp.StatusCode, body)
	}
	var parsed struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("mistral signed url: decode response: %w", err)
	}
	return parsed.URL, nil
}

type mistralSplit struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

func (m *MistralAdapter) runOCR(ctx context.Context, documentURL string) ([]mistralSplit, error) {
	payload, _ := json.Marshal(map[string]any{
		"model": m.model,
		"document": map[string]string{
			"type":         "document_url",
			"document_url": documentURL,
		},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v1/ocr", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mistral ocr failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, httpError("mistral ocr", resp.StatusCode, body)
	}
	var parsed struct {
		Pages []mistralSplit `json:"pages"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("mistral ocr: decode response: %w", err)
	}
	return parsed.Pages, nil
}
