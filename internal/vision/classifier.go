// Package vision classifies rendered page images with the zero-shot model
// hosted on the local ML sidecar. The sidecar loads its models once at
// startup; this client mirrors that with a one-time readiness probe.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"sync"
	"time"
)

// Labels the classifier scores pages against, partitioned by what they
// imply for OCR routing.
var (
	ComplexLabels = []string{
		"handwritten notes",
		"messy scanned document",
		"receipt or invoice",
		"document with complex tables",
	}
	SimpleLabels = []string{
		"digital text document",
		"clean screenshot",
		"blank page",
	}
)

// IsComplexLabel reports whether a label belongs to the complex partition.
func IsComplexLabel(label string) bool {
	for _, l := range ComplexLabels {
		if l == label {
			return true
		}
	}
	return false
}

// Classification is the top label for one image.
type Classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier talks to the sidecar's zero-shot image classification route.
type Classifier struct {
	baseURL string
	client  *http.Client

	readyOnce sync.Once
	readyErr  error
}

func NewClassifier(baseURL string) *Classifier {
	return &Classifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// ensureReady probes the sidecar health endpoint exactly once per process.
// The sidecar keeps its models warm for its own lifetime, so a single probe
// stands in for model initialization on this side.
func (c *Classifier) ensureReady(ctx context.Context) error {
	c.readyOnce.Do(func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
		if err != nil {
			c.readyErr = err
			return
		}
		resp, err := c.client.Do(req)
		if err != nil {
			c.readyErr = fmt.Errorf("sidecar unreachable at %s: %w", c.baseURL, err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			c.readyErr = fmt.Errorf("sidecar health returned %d", resp.StatusCode)
		}
	})
	return c.readyErr
}

// ClassifyPages scores each image against the candidate labels and returns
// the best label per image, in input order.
func (c *Classifier) ClassifyPages(ctx context.Context, images []image.Image, labels []string) ([]Classification, error) {
	if len(images) == 0 {
		return nil, nil
	}
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}

	encoded := make([]string, 0, len(images))
	for _, img := range images {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode page image: %w", err)
		}
		encoded = append(encoded, base64.StdEncoding.EncodeToString(buf.Bytes()))
	}

	payload, _ := json.Marshal(map[string]any{
		"images": encoded,
		"labels": labels,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sidecar classify request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("sidecar classify error %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	var parsed struct {
		Results []Classification `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode classify response: %w", err)
	}
	if len(parsed.Results) != len(images) {
		return nil, fmt.Errorf("sidecar returned %d results for %d images", len(parsed.Results), len(images))
	}
	return parsed.Results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
