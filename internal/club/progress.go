package club

import "math"

// Progress is a member's position translated into the book's canonical
// edition: the equivalent canonical page and the percentage read.
type Progress struct {
	CanonicalPage int     `json:"normalizedPage"`
	Percent       float64 `json:"normalizedPerc"`
}

// Normalize maps a page position in a member's own edition onto the
// canonical edition. A zero edition total means "no data yet" and yields
// zero progress rather than an error. Values above the edition total are
// not clamped: a member over-reporting their page produces a percent
// above 100 and that is surfaced as-is.
func Normalize(currentEdition, editionTotal, canonicalTotal int) Progress {
	if editionTotal == 0 {
		return Progress{}
	}

	ratio := float64(currentEdition) / float64(editionTotal)

	return Progress{
		CanonicalPage: int(math.Round(ratio * float64(canonicalTotal))),
		Percent:       math.Round(ratio*1000) / 10,
	}
}

// EditionGoal is a canonical page range converted into a member's own
// edition, used to show a personal reading target.
type EditionGoal struct {
	EditionStart int `json:"editionStart"`
	EditionEnd   int `json:"editionEnd"`
	PagesToRead  int `json:"pagesToRead"`
}

// EditionRange is the inverse of Normalize: it converts a canonical page
// range into the member's edition so a club target like "read to page
// 120" becomes concrete pages in whatever copy the member holds.
func EditionRange(canonicalStart, canonicalEnd, canonicalTotal, editionTotal int) EditionGoal {
	if canonicalTotal == 0 {
		return EditionGoal{}
	}

	ratio := float64(editionTotal) / float64(canonicalTotal)

	start := int(math.Round(float64(canonicalStart) * ratio))
	end := int(math.Round(float64(canonicalEnd) * ratio))

	return EditionGoal{
		EditionStart: start,
		EditionEnd:   end,
		PagesToRead:  end - start,
	}
}
