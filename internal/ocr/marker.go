package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"docflow/internal/document"
)

// MarkerAdapter is the legacy marker-based OCR path: submit the document
// URL, poll a simple status field, receive whole-document markdown. The
// vendor does not split output by page, so the entire document lands on a
// single synthetic page 1 and chunk metadata loses per-page attribution.
// Documents that need page fidelity should route to another provider.
type MarkerAdapter struct {
	apiKey  string
	baseURL string
	client  *http.Client
	poll    PollConfig
}

func NewMarkerAdapter(apiKey string, poll PollConfig) *MarkerAdapter {
	return &MarkerAdapter{
		apiKey:  apiKey,
		baseURL: "https://www.datalab.to",
		client:  &http.Client{Timeout: 60 * time.Second},
		poll:    poll,
	}
}

func (m *MarkerAdapter) Name() document.Provider {
	return document.ProviderMarker
}

func (m *MarkerAdapter) ProcessDocument(ctx context.Context, url string, opts document.Options) (*document.NormalizedDocument, error) {
	if m.apiKey == "" {
		return nil, fmt.Errorf("%w: set DOCFLOW_DATALAB_API_KEY", ErrMissingCredentials)
	}
	start := time.Now()

	checkURL, err := m.submit(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	markdown, err := m.waitForMarkdown(ctx, checkURL)
	if err != nil {
		return nil, err
	}

	return &document.NormalizedDocument{
		Pages: []document.PageContent{{
			PageNumber: 1,
			TextBlocks: []string{markdown},
		}},
		Metadata: document.DocumentMetadata{
			TotalPages:       1,
			Provider:         document.ProviderMarker,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
	}, nil
}

func (m *MarkerAdapter) ExtractPage(ctx context.Context, url string, pageNumber int) (document.PageContent, error) {
	doc, err := m.ProcessDocument(ctx, url, document.Options{})
	if err != nil {
		return document.PageContent{}, err
	}
	// Whole-document output only: every request resolves to page 1.
	return doc.Pages[0], nil
}

func (m *MarkerAdapter) submit(ctx context.Context, url string, opts document.Options) (string, error) {
	body := map[string]any{"url": url, "output_format": "markdown"}
	if opts.OutputFormat != "" {
		body["output_format"] = opts.OutputFormat
	}
	if opts.Language != "" {
		body["langs"] = opts.Language
	}
	payload, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/v1/marker", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Api-Key", m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("marker submit failed: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", httpError("marker submit", resp.StatusCode, respBody)
	}
	var parsed struct {
		RequestCheckURL string `json:"request_check_url"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("marker submit: decode response: %w", err)
	}
	if parsed.RequestCheckURL == "" {
		return "", fmt.Errorf("marker submit: missing request_check_url")
	}
	return parsed.RequestCheckURL, nil
}

func (m *MarkerAdapter) waitForMarkdown(ctx context.Context, checkURL string) (string, error) {
	var markdown string
	err := pollUntil(ctx, m.poll, func(ctx context.Context) (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, checkURL, nil)
		if err != nil {
			return false, err
		}
		req.Header.Set("X-Api-Key", m.apiKey)
		resp, err := m.client.Do(req)
		if err != nil {
			return false, fmt.Errorf("marker poll failed: %w", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 400 {
			return false, httpError("marker poll", resp.StatusCode, body)
		}
		var status struct {
			Status   string `json:"status"`
			Success  *bool  `json:"success"`
			Markdown string `json:"markdown"`
			Error    string `json:"error"`
		}
		if err := json.Unmarshal(body, &status); err != nil {
			return false, fmt.Errorf("marker poll: decode status: %w", err)
		}
		if status.Status != "complete" {
			return false, nil
		}
		if status.Success != nil && !*status.Success {
			return false, fmt.Errorf("%w: marker: %s", ErrProviderFailed, status.Error)
		}
		markdown = status.Markdown
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return markdown, nil
}
