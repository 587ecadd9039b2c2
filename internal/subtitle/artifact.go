package subtitle

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"ladle/internal/fileutil"
)

// WordRecord is the word-level JSON artifact row. Timestamps are string
// milliseconds to stay byte-compatible with existing consumers of the
// word JSON.
type WordRecord struct {
	CaptionIdx int    `json:"caption_idx"`
	Text       string `json:"text"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
}

// SentenceRecord is the sentence-level JSON artifact row.
type SentenceRecord struct {
	SentenceIndex int    `json:"sentenceIndex"`
	Text          string `json:"text"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
}

// WordRecords converts parsed cues into artifact rows.
func WordRecords(words []WordSpan) []WordRecord {
	records := make([]WordRecord, 0, len(words))
	for _, word := range words {
		records = append(records, WordRecord{
			CaptionIdx: word.Ordinal,
			Text:       word.Text,
			StartTime:  strconv.FormatInt(word.StartMS, 10),
			EndTime:    strconv.FormatInt(word.EndMS, 10),
		})
	}
	return records
}

// SentenceRecords converts sentence spans into artifact rows.
func SentenceRecords(sentences []SentenceSpan) []SentenceRecord {
	records := make([]SentenceRecord, 0, len(sentences))
	for _, sentence := range sentences {
		records = append(records, SentenceRecord{
			SentenceIndex: sentence.Index,
			Text:          sentence.Text,
			StartTime:     strconv.FormatInt(sentence.StartMS, 10),
			EndTime:       strconv.FormatInt(sentence.EndMS, 10),
		})
	}
	return records
}

// WriteWordJSON writes the word-level artifact atomically.
func WriteWordJSON(path string, words []WordSpan) error {
	return fileutil.WriteJSONAtomic(path, WordRecords(words))
}

// WriteSentenceJSON writes the sentence-level artifact atomically.
func WriteSentenceJSON(path string, sentences []SentenceSpan) error {
	return fileutil.WriteJSONAtomic(path, SentenceRecords(sentences))
}

// ReadSentenceJSON loads a sentence artifact back into spans. Resumed runs
// use this instead of re-segmenting.
func ReadSentenceJSON(path string) ([]SentenceSpan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sentence json: %w", err)
	}
	var records []SentenceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse sentence json %s: %w", path, err)
	}
	sentences := make([]SentenceSpan, 0, len(records))
	for _, record := range records {
		startMS, err := strconv.ParseInt(record.StartTime, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse sentence %d start %q: %w", record.SentenceIndex, record.StartTime, err)
		}
		endMS, err := strconv.ParseInt(record.EndTime, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse sentence %d end %q: %w", record.SentenceIndex, record.EndTime, err)
		}
		sentences = append(sentences, SentenceSpan{
			Index:   record.SentenceIndex,
			Text:    record.Text,
			StartMS: startMS,
			EndMS:   endMS,
		})
	}
	return sentences, nil
}
