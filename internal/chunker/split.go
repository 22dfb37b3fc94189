package chunker

import (
	"strings"
	"unicode"
)

type span struct {
	start, end int
}

// splitSpans windows the text into [start,end) rune spans of at most
// maxChars, overlapping consecutive spans by overlapChars. Boundaries
// prefer a sentence end in the trailing fifth of the window, then a word
// boundary past the midpoint, then a hard cut. The start of each next span
// always advances by at least one rune; without that guarantee a large
// overlap against a short boundary cut loops forever.
func splitSpans(runes []rune, maxChars, overlapChars int) []span {
	if maxChars < 1 {
		maxChars = 1
	}
	if overlapChars < 0 || overlapChars >= maxChars {
		overlapChars = 0
	}
	n := len(runes)
	spans := make([]span, 0, n/maxChars+1)
	start := 0
	for start < n {
		end := start + maxChars
		if end >= n {
			spans = append(spans, span{start, n})
			break
		}
		cut := findBoundary(runes, start, end, maxChars)
		spans = append(spans, span{start, cut})

		next := cut - overlapChars
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return spans
}

// findBoundary picks where to cut a window that spans [start, end).
func findBoundary(runes []rune, start, end, maxChars int) int {
	// Sentence end (.!? + whitespace + capital) inside the trailing 20%.
	sentenceFloor := end - maxChars/5
	if sentenceFloor <= start {
		sentenceFloor = start + 1
	}
	for i := end - 1; i >= sentenceFloor; i-- {
		if !isSentenceEnd(runes[i]) {
			continue
		}
		if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) && nextNonSpaceIsUpper(runes, i+1) {
			return i + 1
		}
	}

	// Word boundary at or after the window midpoint.
	midpoint := start + maxChars/2
	for i := end - 1; i >= midpoint; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}

	// Last resort: cut mid-word.
	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func nextNonSpaceIsUpper(runes []rune, from int) bool {
	for i := from; i < len(runes); i++ {
		if unicode.IsSpace(runes[i]) {
			continue
		}
		return unicode.IsUpper(runes[i])
	}
	return false
}

// SplitText splits text into overlapping pieces of at most maxChars
// characters, trimming surrounding whitespace from each piece. Empty
// pieces are dropped.
func SplitText(text string, maxChars, overlapChars int) []string {
	runes := []rune(text)
	out := make([]string, 0, 4)
	for _, s := range splitSpans(runes, maxChars, overlapChars) {
		piece := strings.TrimSpace(string(runes[s.start:s.end]))
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}
