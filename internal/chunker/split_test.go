package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// spansReconstruct rebuilds the original text from overlapping spans by
// appending only the part of each span past the previous span's end.
func spansReconstruct(runes []rune, spans []span) string {
	var b strings.Builder
	prevEnd := 0
	for _, s := range spans {
		if s.end > prevEnd {
			from := s.start
			if from < prevEnd {
				from = prevEnd
			}
			b.WriteString(string(runes[from:s.end]))
			prevEnd = s.end
		}
	}
	return b.String()
}

func checkSpansInvariants(t *testing.T, runes []rune, spans []span) {
	t.Helper()
	require.NotEmpty(t, spans)
	require.Equal(t, 0, spans[0].start)
	require.Equal(t, len(runes), spans[len(spans)-1].end)
	for i := 1; i < len(spans); i++ {
		require.Greater(t, spans[i].start, spans[i-1].start, "window must advance")
		require.LessOrEqual(t, spans[i].start, spans[i-1].end, "windows must not leave gaps")
	}
	require.Equal(t, string(runes), spansReconstruct(runes, spans))
}

func TestSplitSpansTerminatesAndReconstructs(t *testing.T) {
	inputs := []string{
		"short",
		strings.Repeat("a", 1000),
		strings.Repeat("word ", 300),
		"First sentence here. Second sentence follows! A third one? Yes. " + strings.Repeat("More text. ", 50),
		"nowhitespaceatall" + strings.Repeat("x", 500),
	}
	for _, in := range inputs {
		for _, maxChars := range []int{1, 2, 10, 100, 2000} {
			for _, overlap := range []int{0, 1, 5, 50, 1999} {
				runes := []rune(in)
				spans := splitSpans(runes, maxChars, overlap)
				checkSpansInvariants(t, runes, spans)
			}
		}
	}
}

func TestSplitSpansForcedProgressWithHugeOverlap(t *testing.T) {
	// Overlap nearly equal to the window: without forced progress this
	// configuration would stall.
	runes := []rune(strings.Repeat("ab ", 100))
	spans := splitSpans(runes, 10, 9)
	checkSpansInvariants(t, runes, spans)
	require.Less(t, len(spans), len(runes)+1)
}

func TestSplitTextPrefersSentenceBoundary(t *testing.T) {
	text := "This is the first sentence of the document. Next sentence starts with a capital and keeps going for a while longer."
	pieces := SplitText(text, 50, 0)
	require.GreaterOrEqual(t, len(pieces), 2)
	require.Equal(t, "This is the first sentence of the document.", pieces[0])
}

func TestSplitTextWordBoundaryFallback(t *testing.T) {
	// No sentence ends anywhere: the cut should land on a space, not
	// mid-word.
	text := strings.Repeat("alpha beta gamma delta ", 20)
	for _, piece := range SplitText(text, 50, 0) {
		require.False(t, strings.HasSuffix(piece, "alph"), "mid-word cut: %q", piece)
	}
}

func TestSplitTextMidWordLastResort(t *testing.T) {
	text := strings.Repeat("x", 120)
	pieces := SplitText(text, 50, 0)
	require.Equal(t, []string{strings.Repeat("x", 50), strings.Repeat("x", 50), strings.Repeat("x", 20)}, pieces)
}

func TestSplitTextShortInputSinglePiece(t *testing.T) {
	pieces := SplitText("  tiny input  ", 2000, 200)
	require.Equal(t, []string{"tiny input"}, pieces)
}

func TestSplitTextOverlapCarriesContext(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta epsilon ", 10)
	pieces := SplitText(text, 80, 20)
	require.GreaterOrEqual(t, len(pieces), 2)
	// The head of each following piece repeats the tail of its
	// predecessor.
	for i := 1; i < len(pieces); i++ {
		head := pieces[i]
		if len(head) > 10 {
			head = head[:10]
		}
		require.Contains(t, pieces[i-1], strings.TrimSpace(head))
	}
}
