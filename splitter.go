// Deterministic note text splitting.
//
// The splitter divides a note into chunks small enough to decode on the
// device, preferring the least disruptive boundary available: a sentence
// end within the target budget, then a paragraph break, then any
// whitespace, stretching up to the hard budget before cutting mid-word.
// Boundary detection skips inline ($...$) and display ($$...$$) math
// regions so a formula is never torn apart by a "sentence" ending inside
// it. Same input and budgets always yield the same chunks; the builder
// relies on this to produce reproducible packs.
package ntx

import (
	"fmt"
	"regexp"
	"sort"
	"unicode"
	"unicode/utf8"
)

// Default chunk budgets in bytes.
const (
	DefaultTargetBytes = 40960
	DefaultHardBytes   = 49152
)

// Splitter divides note text into chunks at natural boundaries.
type Splitter struct {
	Target int // preferred chunk size; zero means DefaultTargetBytes
	Hard   int // absolute cap before a mid-word split; zero means DefaultHardBytes
}

// TextChunk is one split-out piece of a note, tagged with the boundary
// kind that ended it. A chunk's position in the returned slice is its
// global chunk index.
type TextChunk struct {
	Text string
	Kind SplitKind
}

var paragraphBreak = regexp.MustCompile(`(?:\r?\n[ \t]*){2,}`)

// Split divides text into chunks. The final chunk is always SplitNone.
func (s Splitter) Split(text string) ([]TextChunk, error) {
	target, hard := s.Target, s.Hard
	if target == 0 {
		target = DefaultTargetBytes
	}
	if hard == 0 {
		hard = DefaultHardBytes
	}
	if target < 0 || hard < 0 {
		return nil, fmt.Errorf("split budgets must be positive (target %d, hard %d)", target, hard)
	}
	if target > hard {
		return nil, fmt.Errorf("target budget %d exceeds hard budget %d", target, hard)
	}
	if text == "" {
		return nil, nil
	}

	sentence, paragraph, whitespace := boundaries(text)

	var chunks []TextChunk
	start := 0
	for start < len(text) {
		if len(text)-start <= target {
			chunks = append(chunks, TextChunk{Text: text[start:], Kind: SplitNone})
			break
		}

		preferred := start + target
		hardEnd := min(start+hard, len(text))

		end := lastBoundary(sentence, start, preferred)
		kind := SplitSentence
		if end < 0 {
			end = lastBoundary(paragraph, start, preferred)
			kind = SplitParagraph
		}
		if end < 0 {
			end = lastBoundary(whitespace, start, preferred)
			kind = SplitWhitespace
		}
		if end < 0 {
			end = lastBoundary(whitespace, start, hardEnd)
			kind = SplitWhitespace
		}
		if end < 0 {
			end = hardEnd
			kind = SplitHard
		}

		chunks = append(chunks, TextChunk{Text: text[start:end], Kind: kind})
		start = end
	}

	return chunks, nil
}

// lastBoundary returns the largest boundary position that is at most
// upper and strictly after start, or -1 when none qualifies. bounds must
// be sorted ascending.
func lastBoundary(bounds []int, start, upper int) int {
	i := sort.SearchInts(bounds, upper+1) - 1
	if i >= 0 && bounds[i] > start {
		return bounds[i]
	}
	return -1
}

// boundaries computes the candidate split positions of text, each the
// byte offset just past a boundary. Sentence ends count only when the
// terminator is followed by whitespace (or end of text) and the next
// non-space rune is not lowercase, which keeps abbreviations like
// "e.g. this" together. Positions inside math regions are excluded.
func boundaries(text string) (sentence, paragraph, whitespace []int) {
	inInline, inDisplay := false, false

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if ch == '$' && (i == 0 || text[i-1] != '\\') {
			if i+1 < len(text) && text[i+1] == '$' {
				inDisplay = !inDisplay
				i++
				continue
			}
			if !inDisplay {
				inInline = !inInline
				continue
			}
		}
		if inInline || inDisplay {
			continue
		}

		if isSpaceByte(ch) {
			whitespace = append(whitespace, i+1)
		}

		if ch == '.' || ch == '?' || ch == '!' {
			j := i + 1
			if j >= len(text) || isSpaceByte(text[j]) {
				k := j
				for k < len(text) && isSpaceByte(text[k]) {
					k++
				}
				if k >= len(text) || !startsLower(text[k:]) {
					sentence = append(sentence, j)
				}
			}
		}
	}

	for _, m := range paragraphBreak.FindAllStringIndex(text, -1) {
		paragraph = append(paragraph, m[1])
	}

	return sentence, paragraph, whitespace
}

// isSpaceByte reports ASCII whitespace. Boundaries are only placed after
// ASCII characters, so splitting at them can never cut a UTF-8 rune.
func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func startsLower(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(r)
}
