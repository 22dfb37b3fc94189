package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"docflow/internal/document"
)

func TestMistralUploadSplitFlow(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/doc.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	})
	mux.HandleFunc("/v1/files", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "ocr", r.FormValue("purpose"))
		_, _, err := r.FormFile("file")
		require.NoError(t, err)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "file-1"})
	})
	mux.HandleFunc("/v1/files/file-1/url", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"url": srv.URL + "/signed/file-1"})
	})
	mux.HandleFunc("/v1/ocr", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Document struct {
				DocumentURL string `json:"document_url"`
			} `json:"document"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, srv.URL+"/signed/file-1", req.Document.DocumentURL)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"pages": []map[string]any{
				{"index": 0, "markdown": "page one md"},
				{"index": 1, "markdown": "page two md"},
			},
		})
	})

	m := NewMistralAdapter("mk")
	m.baseURL = srv.URL
	doc, err := m.ProcessDocument(context.Background(), srv.URL+"/doc.pdf", document.Options{})
	require.NoError(t, err)

	require.Len(t, doc.Pages, 2)
	require.Equal(t, 1, doc.Pages[0].PageNumber)
	require.Equal(t, []string{"page one md"}, doc.Pages[0].TextBlocks)
	require.Equal(t, 2, doc.Pages[1].PageNumber)
	require.Equal(t, document.ProviderMistral, doc.Metadata.Provider)
}

func TestMistralNoSplitsCollapsesToOnePage(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/doc.pdf", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("x")) })
	mux.HandleFunc("/v1/files", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "file-1"})
	})
	mux.HandleFunc("/v1/files/file-1/url", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"url": srv.URL + "/signed"})
	})
	mux.HandleFunc("/v1/ocr", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"pages": []any{}})
	})

	m := NewMistralAdapter("mk")
	m.baseURL = srv.URL
	doc, err := m.ProcessDocument(context.Background(), srv.URL+"/doc.pdf", document.Options{})
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	require.Equal(t, 1, doc.Pages[0].PageNumber)
}

func TestMistralMissingCredentials(t *testing.T) {
	m := NewMistralAdapter("")
	_, err := m.ProcessDocument(context.Background(), "https://example.com/x.pdf", document.Options{})
	require.ErrorIs(t, err, ErrMissingCredentials)
	require.Contains(t, err.Error(), "DOCFLOW_MISTRAL_API_KEY")
}
