package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"docflow/internal/document"
)

func TestAzureMissingCredentials(t *testing.T) {
	a := NewAzureAdapter("", "", DefaultPollConfig())
	_, err := a.ProcessDocument(context.Background(), "https://example.com/x.pdf", document.Options{})
	require.ErrorIs(t, err, ErrMissingCredentials)
	require.Contains(t, err.Error(), "DOCFLOW_AZURE_DI_ENDPOINT")
}

func azureAnalyzeResult() map[string]any {
	return map[string]any{
		"status": "succeeded",
		"analyzeResult": map[string]any{
			"pages": []map[string]any{
				{
					"pageNumber": 1,
					"lines":      []map[string]any{{"content": "line one"}, {"content": "line two"}},
					"words": []map[string]any{
						{"confidence": 0.9},
						{"confidence": 0.7},
					},
				},
			},
			"paragraphs": []map[string]any{
				{"content": "First paragraph.", "boundingRegions": []map[string]any{{"pageNumber": 1}}},
				{"content": "Second paragraph.", "boundingRegions": []map[string]any{{"pageNumber": 1}}},
			},
			"tables": []map[string]any{
				{
					"rowCount":        2,
					"columnCount":     2,
					"boundingRegions": []map[string]any{{"pageNumber": 1}},
					"cells": []map[string]any{
						{"rowIndex": 0, "columnIndex": 0, "content": "Name"},
						{"rowIndex": 0, "columnIndex": 1, "content": "Role"},
						{"rowIndex": 1, "columnIndex": 0, "content": "Alice"},
						{"rowIndex": 1, "columnIndex": 1, "content": "Eng"},
					},
				},
			},
		},
	}
}

func TestAzureSubmitPollNormalize(t *testing.T) {
	var polls int
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/documentintelligence/documentModels/prebuilt-layout:analyze", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "secret", r.Header.Get("Ocp-Apim-Subscription-Key"))
		w.Header().Set("Operation-Location", srv.URL+"/operations/op1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/operations/op1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls == 1 {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "running"})
			return
		}
		_ = json.NewEncoder(w).Encode(azureAnalyzeResult())
	})

	a := NewAzureAdapter(srv.URL, "secret", PollConfig{MaxAttempts: 5, Interval: time.Millisecond})
	doc, err := a.ProcessDocument(context.Background(), "https://example.com/x.pdf", document.Options{})
	require.NoError(t, err)

	require.Len(t, doc.Pages, 1)
	page := doc.Pages[0]
	require.Equal(t, 1, page.PageNumber)
	// Paragraph output preferred over lines.
	require.Equal(t, []string{"First paragraph.", "Second paragraph."}, page.TextBlocks)

	require.Len(t, page.Tables, 1)
	tbl := page.Tables[0]
	require.Equal(t, 2, tbl.RowCount)
	require.Equal(t, 2, tbl.ColumnCount)
	require.Equal(t, "| Name | Role |\n| --- | --- |\n| Alice | Eng |", tbl.Markdown)

	require.NotNil(t, doc.Metadata.ConfidenceScore)
	require.InDelta(t, 80.0, *doc.Metadata.ConfidenceScore, 1e-9)
	require.Equal(t, document.ProviderAzure, doc.Metadata.Provider)
}

func TestAzureLinesFallbackWhenNoParagraphs(t *testing.T) {
	result := &azureResult{}
	raw := `{"pages":[{"pageNumber":1,"lines":[{"content":"only line"}],"words":[]}],"paragraphs":[],"tables":[]}`
	require.NoError(t, json.Unmarshal([]byte(raw), result))

	a := NewAzureAdapter("https://e", "k", DefaultPollConfig())
	doc := a.normalize(result)
	require.Equal(t, []string{"only line"}, doc.Pages[0].TextBlocks)
	// No word-level data: confidence defaults to 100.
	require.InDelta(t, 100.0, *doc.Metadata.ConfidenceScore, 1e-9)
}

func TestAzurePollProviderFailure(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/documentintelligence/documentModels/prebuilt-layout:analyze", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Operation-Location", srv.URL+"/operations/op1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/operations/op1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "failed",
			"error":  map[string]any{"code": "InvalidContent", "message": "unreadable"},
		})
	})

	a := NewAzureAdapter(srv.URL, "secret", PollConfig{MaxAttempts: 3, Interval: time.Millisecond})
	_, err := a.ProcessDocument(context.Background(), "https://example.com/x.pdf", document.Options{})
	require.ErrorIs(t, err, ErrProviderFailed)
	require.Contains(t, err.Error(), "InvalidContent")
}

func TestAzurePollTimeout(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/documentintelligence/documentModels/prebuilt-layout:analyze", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Operation-Location", srv.URL+"/operations/op1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/operations/op1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "running"})
	})

	a := NewAzureAdapter(srv.URL, "secret", PollConfig{MaxAttempts: 2, Interval: time.Millisecond})
	_, err := a.ProcessDocument(context.Background(), "https://example.com/x.pdf", document.Options{})
	require.ErrorIs(t, err, ErrPollTimeout)
}
