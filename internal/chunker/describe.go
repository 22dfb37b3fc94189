package chunker

import (
	"fmt"
	"strings"

	"docflow/internal/document"
)

// DescribeTable generates a short preamble for a table chunk from the
// header row's keywords plus the table dimensions, so the embedded text
// carries context the raw pipe grid lacks.
func DescribeTable(t document.ExtractedTable) string {
	kind := classifyHeaders(headerRow(t))
	return fmt.Sprintf("Table (%d rows x %d columns) containing %s.", t.RowCount, t.ColumnCount, kind)
}

func headerRow(t document.ExtractedTable) []string {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

func classifyHeaders(headers []string) string {
	joined := strings.ToLower(strings.Join(headers, " "))
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(joined, w) {
				return true
			}
		}
		return false
	}
	switch {
	case has("date", "time"):
		return "time-series data"
	case has("price", "cost", "amount"):
		return "financial data"
	case has("name") && has("role", "title"):
		return "personnel data"
	case has("item", "product", "sku"):
		return "inventory data"
	case has("step", "action", "procedure"):
		return "procedural steps"
	}

	cleaned := make([]string, 0, len(headers))
	for _, h := range headers {
		h = strings.TrimSpace(h)
		if h != "" {
			cleaned = append(cleaned, h)
		}
	}
	if len(cleaned) == 0 {
		return "structured data"
	}
	return "data about " + strings.Join(cleaned, ", ")
}
