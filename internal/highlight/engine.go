package highlight

import "regexp"

// Engine is the span-search primitive the matcher scans with. Keeping it
// behind an interface lets the acceptance policy be tested independently
// of the underlying string search.
type Engine interface {
	// FindSpans returns the [start, end) byte offsets of every
	// non-overlapping match of pattern in text, left to right.
	FindSpans(text, pattern string) ([][2]int, error)
}

// RegexpEngine is the default Engine, backed by the standard regexp
// package.
type RegexpEngine struct{}

func (RegexpEngine) FindSpans(text, pattern string) ([][2]int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	idx := re.FindAllStringIndex(text, -1)
	spans := make([][2]int, 0, len(idx))
	for _, p := range idx {
		spans = append(spans, [2]int{p[0], p[1]})
	}
	return spans, nil
}
