package ocr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

var fetchClient = &http.Client{Timeout: 120 * time.Second}

// Fetch downloads the raw document bytes. Providers that cannot reach
// arbitrary URLs (and the native extractor) read from this instead.
func Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build fetch request: %w", err)
	}
	resp, err := fetchClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", httpError("fetch document", resp.StatusCode, body)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read document body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
