package knowledge

import (
	"encoding/json"
	"fmt"
	"os"

	"ladle/internal/match"
)

// Annotation is one human-authored procedure note with second-unit bounds.
type Annotation struct {
	Sentence string     `json:"sentence"`
	Segment  [2]float64 `json:"segment"`
}

// Procedure holds the annotation list for one video, read once at load and
// immutable afterwards.
type Procedure struct {
	annotations []Annotation
}

// LoadProcedure reads a procedure annotation file. An unreadable or
// unparsable file is an error; assembly must not start without annotations.
func LoadProcedure(path string) (*Procedure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read procedure annotations: %w", err)
	}
	var document struct {
		Annotations []Annotation `json:"annotations"`
	}
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("parse procedure annotations %s: %w", path, err)
	}
	return &Procedure{annotations: document.Annotations}, nil
}

// Len returns the number of annotations.
func (p *Procedure) Len() int {
	return len(p.annotations)
}

// Locate returns the first annotation overlapping the sentence interval, in
// the list's original order. Bounds are compared in seconds, so the
// millisecond query is scaled first. No overlap returns the empty string.
func (p *Procedure) Locate(startMS, endMS int64) string {
	qs := float64(startMS) / 1000
	qe := float64(endMS) / 1000
	for _, annotation := range p.annotations {
		if match.Overlaps(qs, qe, annotation.Segment[0], annotation.Segment[1]) {
			return annotation.Sentence
		}
	}
	return ""
}
