// Package embed turns chunk text into fixed-dimension vectors. Providers
// are interchangeable behind one interface: OpenAI for production, the
// local model sidecar for cost-free inference, and a deterministic mock so
// the pipeline runs end-to-end without credentials.
package embed

import (
	"context"
	"fmt"
	"strings"

	"docflow/internal/config"
)

type Provider interface {
	// Embed returns one vector per input, in input order, each of the
	// requested dimension.
	Embed(ctx context.Context, inputs []string, dim int) ([][]float32, error)
	Name() string
}

// NewProvider builds the provider named by cfg.EmbedProviders. Unknown
// names are an error rather than a silent mock fallback.
func NewProvider(cfg config.Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.EmbedProviders)) {
	case "", "mock":
		return NewMockProvider(cfg.EmbedDim), nil
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIKey), nil
	case "sidecar":
		return NewSidecarProvider(cfg.SidecarURL), nil
	default:
		return nil, fmt.Errorf("unsupported embed provider: %s", cfg.EmbedProviders)
	}
}
