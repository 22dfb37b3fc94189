package document

import "testing"

func TestRenderMarkdownTwoByTwo(t *testing.T) {
	rows := [][]string{{"Name", "Role"}, {"Alice", "Eng"}}
	got := RenderMarkdown(rows)
	want := "| Name | Role |\n| --- | --- |\n| Alice | Eng |"
	if got != want {
		t.Fatalf("unexpected markdown:\n%q\nwant:\n%q", got, want)
	}
}

func TestRenderMarkdownEscapesPipes(t *testing.T) {
	got := RenderMarkdown([][]string{{"a|b"}})
	if got != "| a\\|b |\n| --- |" {
		t.Fatalf("unexpected markdown: %q", got)
	}
}

func TestResolveGridSpansRepeatContent(t *testing.T) {
	cells := []GridCell{
		{Row: 0, Column: 0, Content: "Merged", RowSpan: 2, ColumnSpan: 2},
		{Row: 0, Column: 2, Content: "C"},
		{Row: 1, Column: 2, Content: "F"},
	}
	grid := ResolveGrid(2, 3, cells)
	if len(grid) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(grid))
	}
	for r := 0; r < 2; r++ {
		if len(grid[r]) != 3 {
			t.Fatalf("row %d not rectangular: %d cells", r, len(grid[r]))
		}
		for c := 0; c < 2; c++ {
			if grid[r][c] != "Merged" {
				t.Fatalf("spanned cell (%d,%d) = %q, want repeated content", r, c, grid[r][c])
			}
		}
	}
	if grid[0][2] != "C" || grid[1][2] != "F" {
		t.Fatalf("unexpected unspanned cells: %#v", grid)
	}
}

func TestResolveGridDropsOutOfBounds(t *testing.T) {
	grid := ResolveGrid(1, 1, []GridCell{
		{Row: 0, Column: 0, Content: "ok"},
		{Row: 5, Column: 9, Content: "ignored"},
	})
	if grid[0][0] != "ok" {
		t.Fatalf("unexpected grid: %#v", grid)
	}
}

func TestNewTableCounts(t *testing.T) {
	tbl := NewTable([][]string{{"h1", "h2", "h3"}, {"a", "b", "c"}})
	if tbl.RowCount != 2 || tbl.ColumnCount != 3 {
		t.Fatalf("unexpected dimensions: %dx%d", tbl.RowCount, tbl.ColumnCount)
	}
	if len(tbl.Rows) != tbl.RowCount {
		t.Fatalf("rows/RowCount mismatch")
	}
}
