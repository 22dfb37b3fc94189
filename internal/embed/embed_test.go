package embed

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"docflow/internal/config"
)

func TestNewProviderSelection(t *testing.T) {
	p, err := NewProvider(config.Config{EmbedProviders: "mock", EmbedDim: 8})
	require.NoError(t, err)
	require.Equal(t, "mock", p.Name())

	p, err = NewProvider(config.Config{EmbedProviders: "openai", OpenAIKey: "sk-test"})
	require.NoError(t, err)
	require.Equal(t, "openai", p.Name())

	p, err = NewProvider(config.Config{EmbedProviders: "sidecar", SidecarURL: "http://localhost:8000"})
	require.NoError(t, err)
	require.Equal(t, "sidecar", p.Name())

	_, err = NewProvider(config.Config{EmbedProviders: "cohere"})
	require.Error(t, err)
}

func TestMockProviderDeterministic(t *testing.T) {
	m := NewMockProvider(1536)
	a, err := m.Embed(context.Background(), []string{"hello world"}, 32)
	require.NoError(t, err)
	b, err := m.Embed(context.Background(), []string{"hello world"}, 32)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a[0], 32)

	c, err := m.Embed(context.Background(), []string{"different text"}, 32)
	require.NoError(t, err)
	require.NotEqual(t, a[0], c[0])

	var norm float64
	for _, v := range a[0] {
		norm += float64(v) * float64(v)
	}
	require.InDelta(t, 1.0, math.Sqrt(norm), 1e-4)
}

func TestMockProviderDefaultDim(t *testing.T) {
	m := NewMockProvider(64)
	vecs, err := m.Embed(context.Background(), []string{"x"}, 0)
	require.NoError(t, err)
	require.Len(t, vecs[0], 64)
}

func TestSidecarProviderEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embed", r.URL.Path)
		var req struct {
			Texts []string `json:"texts"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"alpha", "beta"}, req.Texts)
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.1, 0.2}, {0.3, 0.4}},
			"dimension":  2,
			"count":      2,
		})
	}))
	defer srv.Close()

	s := NewSidecarProvider(srv.URL)
	vecs, err := s.Embed(context.Background(), []string{"alpha", "beta"}, 2)
	require.NoError(t, err)
	require.Equal(t, [][]float32{{0.1, 0.2}, {0.3, 0.4}}, vecs)
}

func TestSidecarProviderCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.1}},
			"dimension":  1,
			"count":      1,
		})
	}))
	defer srv.Close()

	s := NewSidecarProvider(srv.URL)
	_, err := s.Embed(context.Background(), []string{"a", "b"}, 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "got 1 vectors for 2 inputs")
}

func TestSidecarProviderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewSidecarProvider(srv.URL)
	_, err := s.Embed(context.Background(), []string{"a"}, 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
}
