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

func TestMarkerMissingCredentials(t *testing.T) {
	m := NewMarkerAdapter("", DefaultPollConfig())
	_, err := m.ProcessDocument(context.Background(), "https://example.com/x.pdf", document.Options{})
	require.ErrorIs(t, err, ErrMissingCredentials)
	require.Contains(t, err.Error(), "DOCFLOW_DATALAB_API_KEY")
}

func TestMarkerWholeDocumentAsPageOne(t *testing.T) {
	var polls int
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/api/v1/marker", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "key123", r.Header.Get("X-Api-Key"))
		_ = json.NewEncoder(w).Encode(map[string]any{"request_check_url": srv.URL + "/api/v1/marker/req1"})
	})
	mux.HandleFunc("/api/v1/marker/req1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls == 1 {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "processing"})
			return
		}
		ok := true
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "complete", "success": &ok, "markdown": "# Doc\n\nbody"})
	})

	m := NewMarkerAdapter("key123", PollConfig{MaxAttempts: 5, Interval: time.Millisecond})
	m.baseURL = srv.URL
	doc, err := m.ProcessDocument(context.Background(), "https://example.com/x.pdf", document.Options{})
	require.NoError(t, err)

	require.Len(t, doc.Pages, 1)
	require.Equal(t, 1, doc.Pages[0].PageNumber)
	require.Equal(t, []string{"# Doc\n\nbody"}, doc.Pages[0].TextBlocks)
	require.Equal(t, document.ProviderMarker, doc.Metadata.Provider)

	// Per-page extraction collapses onto the synthetic page as well.
	page, err := m.ExtractPage(context.Background(), "https://example.com/x.pdf", 7)
	require.NoError(t, err)
	require.Equal(t, 1, page.PageNumber)
}

func TestMarkerReportedFailure(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/api/v1/marker", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"request_check_url": srv.URL + "/api/v1/marker/req1"})
	})
	mux.HandleFunc("/api/v1/marker/req1", func(w http.ResponseWriter, r *http.Request) {
		no := false
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "complete", "success": &no, "error": "conversion failed"})
	})

	m := NewMarkerAdapter("key123", PollConfig{MaxAttempts: 3, Interval: time.Millisecond})
	m.baseURL = srv.URL
	_, err := m.ProcessDocument(context.Background(), "https://example.com/x.pdf", document.Options{})
	require.ErrorIs(t, err, ErrProviderFailed)
}

func TestPollUntilForwardsCheckError(t *testing.T) {
	calls := 0
	err := pollUntil(context.Background(), PollConfig{MaxAttempts: 5, Interval: time.Millisecond}, func(ctx context.Context) (bool, error) {
		calls++
		return false, httpError("probe", 500, []byte("boom"))
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestPollUntilHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pollUntil(ctx, PollConfig{MaxAttempts: 3, Interval: time.Hour}, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	require.ErrorIs(t, err, context.Canceled)
}
