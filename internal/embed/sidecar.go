package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SidecarProvider calls the local ML sidecar's /embed route, which wraps a
// sentence-transformer model warmed once at sidecar startup.
type SidecarProvider struct {
	baseURL string
	client  *http.Client
}

func NewSidecarProvider(baseURL string) *SidecarProvider {
	return &SidecarProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (s *SidecarProvider) Name() string { return "sidecar" }

func (s *SidecarProvider) Embed(ctx context.Context, inputs []string, dim int) ([][]float32, error) {
	payload, _ := json.Marshal(map[string]any{"texts": inputs})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sidecar embed request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("sidecar embed error %d: %s", resp.StatusCode, string(body))
	}
	var parsed struct {
		Embeddings [][]float32 `json:"embeddings"`
		Dimension  int         `json:"dimension"`
		Count      int         `json:"count"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(parsed.Embeddings) != len(inputs) {
		return nil, fmt.Errorf("sidecar embed: got %d vectors for %d inputs", len(parsed.Embeddings), len(inputs))
	}
	return parsed.Embeddings, nil
}
