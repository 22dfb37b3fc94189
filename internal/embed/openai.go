package embed

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	client *openai.Client
	apiKey string
}

func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{client: openai.NewClient(apiKey), apiKey: apiKey}
}

func (o *OpenAIProvider) Name() string { return "openai" }

func (o *OpenAIProvider) Embed(ctx context.Context, inputs []string, dim int) ([][]float32, error) {
	if o.apiKey == "" {
		return nil, fmt.Errorf("openai embeddings: OPENAI_API_KEY is not set")
	}
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input:      inputs,
		Model:      openai.SmallEmbedding3,
		Dimensions: dim,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(inputs))
	}
	out := make([][]float32, 0, len(resp.Data))
	for _, d := range resp.Data {
		out = append(out, d.Embedding)
	}
	return out, nil
}
