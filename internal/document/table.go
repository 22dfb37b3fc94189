package document

import "strings"

// ExtractedTable is a rectangular cell grid. Merged cells are resolved
// upstream by repeating the spanning cell's content across every covered
// position, so len(Rows) == RowCount and every row has ColumnCount cells.
type ExtractedTable struct {
	Rows        [][]string   `json:"rows"`
	Markdown    string       `json:"markdown"`
	RowCount    int          `json:"row_count"`
	ColumnCount int          `json:"column_count"`
	BoundingBox *BoundingBox `json:"bounding_box,omitempty"`
}

type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewTable builds an ExtractedTable from a resolved grid, rendering the
// pipe-table markdown from the first row as header.
func NewTable(rows [][]string) ExtractedTable {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	return ExtractedTable{
		Rows:        rows,
		Markdown:    RenderMarkdown(rows),
		RowCount:    len(rows),
		ColumnCount: cols,
	}
}

// RenderMarkdown renders a grid as a GitHub pipe table. The first row is
// treated as the header; an empty grid renders as an empty string.
func RenderMarkdown(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(sanitizeCell(c))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	writeRow(rows[0])
	sep := make([]string, len(rows[0]))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// sanitizeCell keeps cell content from breaking the pipe-table layout.
func sanitizeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.TrimSpace(s)
}

// ResolveGrid builds a dense RowCount x ColumnCount grid from sparse cells,
// replicating content across row/column spans so merged regions are never
// blank. Cells outside the declared bounds are dropped.
func ResolveGrid(rowCount, columnCount int, cells []GridCell) [][]string {
	if rowCount <= 0 || columnCount <= 0 {
		return nil
	}
	grid := make([][]string, rowCount)
	for r := range grid {
		grid[r] = make([]string, columnCount)
	}
	for _, c := range cells {
		rowSpan := c.RowSpan
		if rowSpan < 1 {
			rowSpan = 1
		}
		colSpan := c.ColumnSpan
		if colSpan < 1 {
			colSpan = 1
		}
		for r := c.Row; r < c.Row+rowSpan && r < rowCount; r++ {
			if r < 0 {
				continue
			}
			for col := c.Column; col < c.Column+colSpan && col < columnCount; col++ {
				if col < 0 {
					continue
				}
				grid[r][col] = c.Content
			}
		}
	}
	return grid
}

// GridCell is a vendor-agnostic sparse table cell with optional spans.
type GridCell struct {
	Row        int
	Column     int
	RowSpan    int
	ColumnSpan int
	Content    string
}
