package subtitle

import "strings"

// SentenceSpan is a contiguous run of words closed by terminal punctuation.
type SentenceSpan struct {
	Index   int
	Text    string
	StartMS int64
	EndMS   int64
}

const pendingStart = -1

// Segment folds word cues into sentences. A sentence accumulates each word
// followed by a single space and closes when a word carries '.', '?' or '!'
// anywhere in its text; the sentence spans from the first word's start to the
// closing word's end. Indices are dense and start at 1. Words after the last
// terminator never form a sentence; their count is returned so callers can
// log the loss.
func Segment(words []WordSpan) (sentences []SentenceSpan, dropped int) {
	var (
		text    strings.Builder
		startMS int64 = pendingStart
		index         = 1
		pending       = 0
	)
	for _, word := range words {
		text.WriteString(word.Text)
		text.WriteString(" ")
		pending++
		if startMS == pendingStart {
			startMS = word.StartMS
		}
		if !strings.ContainsAny(word.Text, ".?!") {
			continue
		}
		sentences = append(sentences, SentenceSpan{
			Index:   index,
			Text:    text.String(),
			StartMS: startMS,
			EndMS:   word.EndMS,
		})
		text.Reset()
		startMS = pendingStart
		index++
		pending = 0
	}
	return sentences, pending
}
