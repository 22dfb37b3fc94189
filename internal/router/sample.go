package router

import "sort"

// SamplePages picks which 1-indexed pages to rasterize for classification.
// Small documents are sampled in full; larger ones sample first, middle and
// last, plus one deterministically chosen interior page once the document
// is big enough. The result is sorted, deduplicated and capped at
// maxSamplePages.
func SamplePages(pageCount int) []int {
	if pageCount < 1 {
		pageCount = 1
	}
	if pageCount <= 3 {
		pages := make([]int, 0, pageCount)
		for p := 1; p <= pageCount; p++ {
			pages = append(pages, p)
		}
		return pages
	}

	middle := (pageCount + 1) / 2
	picks := map[int]bool{1: true, middle: true, pageCount: true}
	if pageCount > largeDocPages {
		picks[interiorPick(pageCount)] = true
	}

	pages := make([]int, 0, len(picks))
	for p := range picks {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	if len(pages) > maxSamplePages {
		pages = pages[:maxSamplePages]
	}
	return pages
}

// interiorPick derives a stable pseudo-random page in (1, pageCount) so the
// same document always yields the same sample set.
func interiorPick(pageCount int) int {
	span := pageCount - 2
	if span < 1 {
		return 1
	}
	return 2 + (pageCount*7919)%span
}
