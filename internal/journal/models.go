package journal

import "time"

// Status represents a video's position in the pipeline lifecycle.
type Status string

const (
	StatusPending         Status = "pending"
	StatusIngesting       Status = "ingesting"
	StatusIngested        Status = "ingested"
	StatusSegmenting      Status = "segmenting"
	StatusSegmented       Status = "segmented"
	StatusDetectingScenes Status = "detecting_scenes"
	StatusScenesDetected  Status = "scenes_detected"
	StatusAssembling      Status = "assembling"
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusIngesting,
	StatusIngested,
	StatusSegmenting,
	StatusSegmented,
	StatusDetectingScenes,
	StatusScenesDetected,
	StatusAssembling,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Valid reports whether the status is one of the known lifecycle values.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// Terminal reports whether no further stage will run for this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Video is one tracked video's journal row.
type Video struct {
	VideoID         string
	Status          Status
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	ErrorMessage    string
	NeedsReview     bool
	RunID           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Record is one checkpointed knowledge record.
type Record struct {
	VideoID       string
	SentenceIndex int
	Payload       []byte
}
