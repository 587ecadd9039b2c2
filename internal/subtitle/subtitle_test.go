package subtitle

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const wordSRT = `1
00:00:00,000 --> 00:00:00,500
Hello

2
00:00:00,500 --> 00:00:01,000
world.

3
00:00:01,000 --> 00:00:01,200
Next
`

func TestParseWords(t *testing.T) {
	words, err := ParseWords(wordSRT)
	if err != nil {
		t.Fatalf("ParseWords: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("parsed %d words, want 3", len(words))
	}
	want := []WordSpan{
		{Ordinal: 0, Text: "Hello", StartMS: 0, EndMS: 500},
		{Ordinal: 1, Text: "world.", StartMS: 500, EndMS: 1000},
		{Ordinal: 2, Text: "Next", StartMS: 1000, EndMS: 1200},
	}
	for i, got := range words {
		if got != want[i] {
			t.Fatalf("word %d = %+v, want %+v", i, got, want[i])
		}
	}
}

func TestParseWordsStripsLeadingBOM(t *testing.T) {
	words, err := ParseWords("\uFEFF" + wordSRT)
	if err != nil {
		t.Fatalf("ParseWords: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("parsed %d words, want 3", len(words))
	}
	if words[0].Text != "Hello" {
		t.Fatalf("first word = %q, want %q", words[0].Text, "Hello")
	}
}

func TestParseWordsTimestampFormats(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMS  int64
		wantErr bool
	}{
		{
			name:    "period millis separator",
			content: "1\n00:01:02.345 --> 00:01:03.000\nword.\n",
			wantMS:  62345,
		},
		{
			name:    "hour rollover",
			content: "1\n01:00:00,001 --> 01:00:01,000\nword.\n",
			wantMS:  3600001,
		},
		{
			name:    "missing millis",
			content: "1\n00:00:01 --> 00:00:02\nword.\n",
			wantErr: true,
		},
		{
			name:    "missing text line",
			content: "1\n00:00:01,000 --> 00:00:02,000\n",
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			words, err := ParseWords(tc.content)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseWords: %v", err)
			}
			if words[0].StartMS != tc.wantMS {
				t.Fatalf("start = %d, want %d", words[0].StartMS, tc.wantMS)
			}
		})
	}
}

func TestParseWordsNormalizesToNFC(t *testing.T) {
	// "sauté" with a combining acute accent on the e.
	decomposed := "sauté."
	words, err := ParseWords("1\n00:00:00,000 --> 00:00:01,000\n" + decomposed + "\n")
	if err != nil {
		t.Fatalf("ParseWords: %v", err)
	}
	if words[0].Text != "sauté." {
		t.Fatalf("text = %q, want NFC form", words[0].Text)
	}
}

func TestSegmentFoldsWordsIntoSentences(t *testing.T) {
	words := []WordSpan{
		{Ordinal: 0, Text: "Hello", StartMS: 0, EndMS: 500},
		{Ordinal: 1, Text: "world.", StartMS: 500, EndMS: 1000},
		{Ordinal: 2, Text: "Next", StartMS: 1000, EndMS: 1200},
	}
	sentences, dropped := Segment(words)
	if len(sentences) != 1 {
		t.Fatalf("got %d sentences, want 1", len(sentences))
	}
	got := sentences[0]
	if got.Index != 1 || got.Text != "Hello world. " || got.StartMS != 0 || got.EndMS != 1000 {
		t.Fatalf("sentence = %+v", got)
	}
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
}

func TestSegmentClosesOnEmbeddedTerminator(t *testing.T) {
	words := []WordSpan{
		{Text: "Wait...", StartMS: 0, EndMS: 300},
		{Text: "Is", StartMS: 300, EndMS: 400},
		{Text: "it", StartMS: 400, EndMS: 500},
		{Text: "done?", StartMS: 500, EndMS: 900},
		{Text: "Yes!", StartMS: 900, EndMS: 1100},
	}
	sentences, dropped := Segment(words)
	if dropped != 0 {
		t.Fatalf("dropped = %d, want 0", dropped)
	}
	if len(sentences) != 3 {
		t.Fatalf("got %d sentences, want 3", len(sentences))
	}
	wantTexts := []string{"Wait... ", "Is it done? ", "Yes! "}
	for i, sentence := range sentences {
		if sentence.Index != i+1 {
			t.Fatalf("sentence %d index = %d", i, sentence.Index)
		}
		if sentence.Text != wantTexts[i] {
			t.Fatalf("sentence %d text = %q, want %q", i, sentence.Text, wantTexts[i])
		}
	}
	if sentences[1].StartMS != 300 || sentences[1].EndMS != 900 {
		t.Fatalf("sentence 2 span = [%d, %d]", sentences[1].StartMS, sentences[1].EndMS)
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	sentences, dropped := Segment(nil)
	if len(sentences) != 0 || dropped != 0 {
		t.Fatalf("Segment(nil) = %d sentences, %d dropped", len(sentences), dropped)
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	dir := t.TempDir()
	words, err := ParseWords(wordSRT)
	if err != nil {
		t.Fatalf("ParseWords: %v", err)
	}
	sentences, _ := Segment(words)

	wordPath := filepath.Join(dir, "demo_word.json")
	sentencePath := filepath.Join(dir, "demo_sentence.json")
	if err := WriteWordJSON(wordPath, words); err != nil {
		t.Fatalf("WriteWordJSON: %v", err)
	}
	if err := WriteSentenceJSON(sentencePath, sentences); err != nil {
		t.Fatalf("WriteSentenceJSON: %v", err)
	}

	wordData, err := os.ReadFile(wordPath)
	if err != nil {
		t.Fatal(err)
	}
	var wordRows []map[string]any
	if err := json.Unmarshal(wordData, &wordRows); err != nil {
		t.Fatalf("unmarshal word json: %v", err)
	}
	if len(wordRows) != 3 {
		t.Fatalf("word rows = %d, want 3", len(wordRows))
	}
	if wordRows[1]["caption_idx"].(float64) != 1 || wordRows[1]["startTime"] != "500" {
		t.Fatalf("word row 1 = %v", wordRows[1])
	}

	sentenceData, err := os.ReadFile(sentencePath)
	if err != nil {
		t.Fatal(err)
	}
	var sentenceRows []map[string]any
	if err := json.Unmarshal(sentenceData, &sentenceRows); err != nil {
		t.Fatalf("unmarshal sentence json: %v", err)
	}
	if len(sentenceRows) != 1 {
		t.Fatalf("sentence rows = %d, want 1", len(sentenceRows))
	}
	row := sentenceRows[0]
	if row["sentenceIndex"].(float64) != 1 || row["text"] != "Hello world. " ||
		row["startTime"] != "0" || row["endTime"] != "1000" {
		t.Fatalf("sentence row = %v", row)
	}

	reloaded, err := ReadSentenceJSON(sentencePath)
	if err != nil {
		t.Fatalf("ReadSentenceJSON: %v", err)
	}
	if len(reloaded) != 1 || reloaded[0] != sentences[0] {
		t.Fatalf("reloaded = %+v, want %+v", reloaded, sentences)
	}
}
