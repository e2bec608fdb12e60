// Package highlight locates note excerpts inside freshly paginated book
// text and wraps them in interactive markers.
//
// Matching runs against a single blob built by joining the page's
// paragraphs with a reserved two-space separator, so an excerpt spanning
// a paragraph break still matches; the blob is re-split on the same
// separator afterwards. An exact case-insensitive match is tried first,
// then a token-based fuzzy fallback.
package highlight

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// paragraphSeparator joins page paragraphs into the match blob. A
// two-space run is reserved for this; colliding with an in-text double
// space is an accepted approximation.
const paragraphSeparator = "  "

// fuzzyThreshold is the fraction of an excerpt's significant tokens that
// must appear in a candidate span for a fuzzy match to be accepted.
const fuzzyThreshold = 0.7

// significantTokenLen is the minimum length for a token to count toward
// fuzzy matching.
const significantTokenLen = 3

var markerPattern = regexp.MustCompile(`(?s)<mark [^>]*>.*?</mark>`)

// Note carries the fields of an annotation the matcher needs.
type Note struct {
	ID      string
	OwnerID string
	Excerpt string
}

// Matcher overlays note markers onto page text.
type Matcher struct {
	engine Engine
}

func NewMatcher() *Matcher {
	return &Matcher{engine: RegexpEngine{}}
}

func NewMatcherWithEngine(e Engine) *Matcher {
	return &Matcher{engine: e}
}

// Overlay wraps each note's excerpt in a marker element carrying the
// note id and the owner's color class. Notes are processed independently
// in the given order against the progressively mutated blob, so overlaps
// are first-writer-wins: text already inside a marker is never rematched.
// Notes whose excerpt cannot be located are left unrendered; the
// surrounding text is never modified.
func (m *Matcher) Overlay(paragraphs []string, notes []Note) []string {
	if len(paragraphs) == 0 || len(notes) == 0 {
		return paragraphs
	}

	blob := strings.Join(paragraphs, paragraphSeparator)
	for _, n := range notes {
		blob = m.applyNote(blob, n)
	}
	return strings.Split(blob, paragraphSeparator)
}

// Locate reports whether the excerpt can be matched anywhere in the
// given paragraphs, using the same exact-then-fuzzy rules as Overlay.
// Re-anchoring uses this to find the page an orphaned note belongs to.
func (m *Matcher) Locate(paragraphs []string, excerpt string) bool {
	excerpt = strings.TrimSpace(excerpt)
	if excerpt == "" || len(paragraphs) == 0 {
		return false
	}
	blob := strings.Join(paragraphs, paragraphSeparator)
	if _, ok := m.exactSpan(blob, excerpt, nil); ok {
		return true
	}
	_, ok := m.fuzzySpan(blob, excerpt, nil)
	return ok
}

func (m *Matcher) applyNote(blob string, n Note) string {
	excerpt := strings.TrimSpace(n.Excerpt)
	if excerpt == "" {
		return blob
	}
	// Re-running on our own output must not duplicate markers.
	if strings.Contains(blob, noteIDAttr(n.ID)) {
		return blob
	}

	wrapped := markerRanges(blob)

	if span, ok := m.exactSpan(blob, excerpt, wrapped); ok {
		return wrapSpan(blob, span, n)
	}
	if span, ok := m.fuzzySpan(blob, excerpt, wrapped); ok {
		return wrapSpan(blob, span, n)
	}
	return blob
}

// exactSpan finds the first case-insensitive occurrence of the verbatim
// excerpt outside existing markers.
func (m *Matcher) exactSpan(blob, excerpt string, wrapped [][2]int) ([2]int, bool) {
	pattern := "(?i)" + regexp.QuoteMeta(excerpt)
	spans, err := m.engine.FindSpans(blob, pattern)
	if err != nil {
		return [2]int{}, false
	}
	for _, span := range spans {
		if !overlapsAny(span, wrapped) {
			return span, true
		}
	}
	return [2]int{}, false
}

// fuzzySpan falls back to token matching: the excerpt's significant
// tokens that actually occur in the blob are scanned for in order with
// arbitrary intervening text, and a candidate span is accepted only when
// it contains enough of the excerpt's significant tokens.
func (m *Matcher) fuzzySpan(blob, excerpt string, wrapped [][2]int) ([2]int, bool) {
	tokens := significantTokens(excerpt)
	if len(tokens) == 0 {
		return [2]int{}, false
	}

	lowerBlob := strings.ToLower(blob)
	present := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if strings.Contains(lowerBlob, strings.ToLower(tok)) {
			present = append(present, tok)
		}
	}

	required := requiredTokens(len(tokens))
	if len(present) < required {
		return [2]int{}, false
	}

	quoted := make([]string, len(present))
	for i, tok := range present {
		quoted[i] = regexp.QuoteMeta(tok)
	}
	pattern := "(?i)" + strings.Join(quoted, ".*?")

	spans, err := m.engine.FindSpans(blob, pattern)
	if err != nil {
		return [2]int{}, false
	}
	for _, span := range spans {
		if overlapsAny(span, wrapped) {
			continue
		}
		if containedTokens(blob[span[0]:span[1]], tokens) >= required {
			return span, true
		}
	}
	return [2]int{}, false
}

// requiredTokens converts the threshold fraction to a whole token count.
// The count is rounded so two of three tokens still qualifies, while one
// of three does not.
func requiredTokens(total int) int {
	required := int(math.Round(fuzzyThreshold * float64(total)))
	if required < 1 {
		required = 1
	}
	return required
}

func significantTokens(excerpt string) []string {
	var tokens []string
	for _, f := range strings.Fields(excerpt) {
		if len(f) >= significantTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func containedTokens(span string, tokens []string) int {
	lower := strings.ToLower(span)
	count := 0
	for _, tok := range tokens {
		if strings.Contains(lower, strings.ToLower(tok)) {
			count++
		}
	}
	return count
}

func wrapSpan(blob string, span [2]int, n Note) string {
	open := fmt.Sprintf(`<mark class="note-highlight %s" %s>`, ColorClass(n.OwnerID), noteIDAttr(n.ID))
	return blob[:span[0]] + open + blob[span[0]:span[1]] + "</mark>" + blob[span[1]:]
}

func noteIDAttr(id string) string {
	return fmt.Sprintf(`data-note-id="%s"`, id)
}

// markerRanges returns the blob regions already occupied by markers.
// Candidates overlapping these are rejected, which keeps earlier writers
// intact and makes the overlay idempotent.
func markerRanges(blob string) [][2]int {
	idx := markerPattern.FindAllStringIndex(blob, -1)
	ranges := make([][2]int, 0, len(idx))
	for _, p := range idx {
		ranges = append(ranges, [2]int{p[0], p[1]})
	}
	return ranges
}

func overlapsAny(span [2]int, ranges [][2]int) bool {
	for _, r := range ranges {
		if span[0] < r[1] && r[0] < span[1] {
			return true
		}
	}
	return false
}
