package ingest

import (
	"regexp"
	"strings"
)

// DefaultChunkSize is the default window size in words.
const DefaultChunkSize = 600

// DefaultChunkOverlap is the default overlap between consecutive
// windows in words.
const DefaultChunkOverlap = 100

// DefaultMinPageChars is the minimum post-join character length for a
// paginated chunk. Shorter fragments add index noise, not signal.
const DefaultMinPageChars = 80

// DefaultMinRowChars is the minimum serialised length for a tabular
// row chunk.
const DefaultMinRowChars = 40

var (
	hyphenBreakRE = regexp.MustCompile(`-\s*\n\s*`)
	whitespaceRE  = regexp.MustCompile(`\s+`)
)

// normalizeText cleans raw extracted page text: words hyphenated
// across line breaks are re-joined and all whitespace runs collapse
// to single spaces.
func normalizeText(text string) string {
	text = hyphenBreakRE.ReplaceAllString(text, "")
	text = whitespaceRE.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// windowWords splits text into sliding word windows of size words with
// the given overlap. The last window may be shorter than size; windows
// whose joined length is at or below minChars are discarded. The
// stride is size−overlap, so overlap must be smaller than size.
func windowWords(text string, size, overlap, minChars int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var out []string
	start := 0
	for start < len(words) {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		window := strings.Join(words[start:end], " ")
		if len(window) > minChars {
			out = append(out, window)
		}
		if end == len(words) {
			break
		}
		start += size - overlap
	}
	return out
}
