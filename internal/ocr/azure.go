package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"docflow/internal/document"
)

const azureAPIVersion = "2024-11-30"

// AzureAdapter drives the Document Intelligence prebuilt-layout model:
// submit the document URL, follow the Operation-Location handle, and
// normalize the analyze result into canonical pages and tables.
type AzureAdapter struct {
	endpoint string
	key      string
	client   *http.Client
	poll     PollConfig
}

func NewAzureAdapter(endpoint, key string, poll PollConfig) *AzureAdapter {
	return &AzureAdapter{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		key:      key,
		client:   &http.Client{Timeout: 60 * time.Second},
		poll:     poll,
	}
}

func (a *AzureAdapter) Name() document.Provider {
	return document.ProviderAzure
}

type azureRegion struct {
	PageNumber int `json:"pageNumber"`
}

type azureResult struct {
	Pages []struct {
		PageNumber int `json:"pageNumber"`
		Lines      []struct {
			Content string `json:"content"`
		} `json:"lines"`
		Words []struct {
			Confidence float64 `json:"confidence"`
		} `json:"words"`
	} `json:"pages"`
	Paragraphs []struct {
		Content         string        `json:"content"`
		BoundingRegions []azureRegion `json:"boundingRegions"`
	} `json:"paragraphs"`
	Tables []struct {
		RowCount        int           `json:"rowCount"`
		ColumnCount     int           `json:"columnCount"`
		BoundingRegions []azureRegion `json:"boundingRegions"`
		Cells           []struct {
			RowIndex    int    `json:"rowIndex"`
			ColumnIndex int    `json:"columnIndex"`
			RowSpan     int    `json:"rowSpan"`
			ColumnSpan  int    `json:"columnSpan"`
			Content     string `json:"content"`
		} `json:"cells"`
	} `json:"tables"`
}

func (a *AzureAdapter) ProcessDocument(ctx context.Context, url string, opts document.Options) (*document.NormalizedDocument, error) {
	if a.endpoint == "" || a.key == "" {
		return nil, fmt.Errorf("%w: set DOCFLOW_AZURE_DI_ENDPOINT and DOCFLOW_AZURE_DI_KEY", ErrMissingCredentials)
	}
	start := time.Now()

	operationURL, err := a.submit(ctx, url, opts)
	if err != nil {
		return nil, err
	}
	result, err := a.waitForResult(ctx, operationURL)
	if err != nil {
		return nil, err
	}

	doc := a.normalize(result)
	doc.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()
	return doc, nil
}

func (a *AzureAdapter) ExtractPage(ctx context.Context, url string, pageNumber int) (document.PageContent, error) {
	doc, err := a.ProcessDocument(ctx, url, document.Options{Pages: []int{pageNumber}})
	if err != nil {
		return document.PageContent{}, err
	}
	for _, p := range doc.Pages {
		if p.PageNumber == pageNumber {
			return p, nil
		}
	}
	return document.PageContent{}, fmt.Errorf("azure layout: page %d absent from analyze result", pageNumber)
}

func (a *AzureAdapter) submit(ctx context.Context, url string, opts document.Options) (string, error) {
	analyzeURL := fmt.Sprintf("%s/documentintelligence/documentModels/prebuilt-layout:analyze?api-version=%s", a.endpoint, azureAPIVersion)
	if len(opts.Pages) > 0 {
		pages := make([]string, 0, len(opts.Pages))
		for _, p := range opts.Pages {
			pages = append(pages, strconv.Itoa(p))
		}
		analyzeURL += "&pages=" + strings.Join(pages, ",")
	}
	if opts.Language != "" {
		analyzeURL += "&locale=" + opts.Language
	}

	payload, _ := json.Marshal(map[string]string{"urlSource": url})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, analyzeURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("azure layout submit failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusAccepted {
		return "", httpError("azure layout submit", resp.StatusCode, body)
	}
	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", fmt.Errorf("azure layout submit: missing Operation-Location header")
	}
	return operationURL, nil
}

func (a *AzureAdapter) waitForResult(ctx context.Context, operationURL string) (*azureResult, error) {
	var result *azureResult
	err := pollUntil(ctx, a.poll, func(ctx context.Context) (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
		if err != nil {
			return false, err
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", a.key)
		resp, err := a.client.Do(req)
		if err != nil {
			return false, fmt.Errorf("azure layout poll failed: %w", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 400 {
			return false, httpError("azure layout poll", resp.StatusCode, body)
		}
		var status struct {
			Status        string      `json:"status"`
			AnalyzeResult azureResult `json:"analyzeResult"`
			Error         struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &status); err != nil {
			return false, fmt.Errorf("azure layout poll: decode status: %w", err)
		}
		switch status.Status {
		case "succeeded":
			result = &status.AnalyzeResult
			return true, nil
		case "failed":
			return false, fmt.Errorf("%w: azure layout %s: %s", ErrProviderFailed, status.Error.Code, status.Error.Message)
		default:
			// notStarted / running
			return false, nil
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// normalize maps the analyze result onto canonical pages. Paragraph output
// groups text semantically and is preferred; line output is the fallback
// when the model emitted no paragraphs at all.
func (a *AzureAdapter) normalize(result *azureResult) *document.NormalizedDocument {
	pages := make([]document.PageContent, 0, len(result.Pages))
	for _, page := range result.Pages {
		blocks := make([]string, 0, 16)
		if len(result.Paragraphs) > 0 {
			for _, para := range result.Paragraphs {
				if regionOnPage(para.BoundingRegions, page.PageNumber) && strings.TrimSpace(para.Content) != "" {
					blocks = append(blocks, para.Content)
				}
			}
		} else {
			for _, line := range page.Lines {
				if strings.TrimSpace(line.Content) != "" {
					blocks = append(blocks, line.Content)
				}
			}
		}

		tables := make([]document.ExtractedTable, 0, 2)
		for _, t := range result.Tables {
			if !regionOnPage(t.BoundingRegions, page.PageNumber) {
				continue
			}
			cells := make([]document.GridCell, 0, len(t.Cells))
			for _, c := range t.Cells {
				cells = append(cells, document.GridCell{
					Row:        c.RowIndex,
					Column:     c.ColumnIndex,
					RowSpan:    c.RowSpan,
					ColumnSpan: c.ColumnSpan,
					Content:    c.Content,
				})
			}
			tables = append(tables, document.NewTable(document.ResolveGrid(t.RowCount, t.ColumnCount, cells)))
		}

		pages = append(pages, document.PageContent{
			PageNumber: page.PageNumber,
			TextBlocks: blocks,
			Tables:     tables,
		})
	}

	confidence := meanWordConfidence(result)
	return &document.NormalizedDocument{
		Pages: pages,
		Metadata: document.DocumentMetadata{
			TotalPages:      len(result.Pages),
			Provider:        document.ProviderAzure,
			ConfidenceScore: &confidence,
		},
	}
}

// meanWordConfidence averages word-level confidences across the whole
// document, on a 0-100 scale, defaulting to 100 when the model returned no
// word data.
func meanWordConfidence(result *azureResult) float64 {
	var sum float64
	var count int
	for _, page := range result.Pages {
		for _, w := range page.Words {
			sum += w.Confidence
			count++
		}
	}
	if count == 0 {
		return 100
	}
	return sum / float64(count) * 100
}

func regionOnPage(regions []azureRegion, pageNumber int) bool {
	for _, r := range regions {
		if r.PageNumber == pageNumber {
			return true
		}
	}
	return false
}
