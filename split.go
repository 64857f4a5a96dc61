// Split kinds recorded in chunk table entries.
package ntx

// SplitKind tags a chunk with the boundary that ended it. The read path
// treats the value as opaque and hands it to the renderer; the builder
// assigns kinds while splitting note text.
type SplitKind byte

const (
	SplitNone       SplitKind = 0 // end of note, nothing was forced apart
	SplitSentence   SplitKind = 1 // split after a sentence terminator
	SplitParagraph  SplitKind = 2 // split at a blank-line paragraph break
	SplitWhitespace SplitKind = 3 // split at whitespace, mid-sentence
	SplitHard       SplitKind = 4 // split mid-word, no boundary found
)

func (k SplitKind) String() string {
	switch k {
	case SplitNone:
		return "none"
	case SplitSentence:
		return "sentence"
	case SplitParagraph:
		return "paragraph"
	case SplitWhitespace:
		return "whitespace"
	case SplitHard:
		return "hard"
	default:
		return "unknown"
	}
}
