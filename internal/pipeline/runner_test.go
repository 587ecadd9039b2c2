package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"ladle/internal/journal"
	"ladle/internal/knowledge"
	"ladle/internal/pipeline"
	"ladle/internal/services"
	"ladle/internal/subtitle"
	"ladle/internal/testsupport"
)

const probeScript = `#!/bin/sh
cat <<'JSON'
{"streams":[{"index":0,"codec_type":"video"},{"index":1,"codec_type":"audio"}],"format":{"duration":"4.0"}}
JSON
`

// touchScript creates the ffmpeg output file so downstream stages see the
// artifact. Null-sink invocations end in "-" and produce nothing.
const touchScript = `#!/bin/sh
for arg in "$@"; do last="$arg"; done
case "$last" in
-) ;;
*) : > "$last" ;;
esac
exit 0
`

const failScript = `#!/bin/sh
exit 1
`

func writeStub(t *testing.T, dir, name, script string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
}

func stubTools(t *testing.T, ffmpegScript string) {
	t.Helper()
	binDir := t.TempDir()
	writeStub(t, binDir, "ffprobe", probeScript)
	writeStub(t, binDir, "ffmpeg", ffmpegScript)
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

const wordCaptions = "1\n00:00:00,000 --> 00:00:00,500\nHello\n\n2\n00:00:00,500 --> 00:00:01,000\nworld.\n"

func writeInputs(t *testing.T, videoPath, captionPath, procedurePath string) {
	t.Helper()
	if err := os.WriteFile(videoPath, []byte("container"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	if err := os.WriteFile(captionPath, []byte(wordCaptions), 0o644); err != nil {
		t.Fatalf("write captions: %v", err)
	}
	procedure := `{"annotations":[{"sentence":"Mix the batter.","segment":[0,4]}]}`
	if err := os.WriteFile(procedurePath, []byte(procedure), 0o644); err != nil {
		t.Fatalf("write procedure: %v", err)
	}
}

func TestRunnerCompletesPipeline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Knowledge.Fields = []string{knowledge.FieldProcedureDescription}
	stubTools(t, touchScript)

	store := testsupport.MustOpenJournal(t, cfg)
	ws := testsupport.MustWorkspace(t, cfg, "vid1")
	writeInputs(t, ws.VideoPath(), ws.CaptionPath(), ws.ProcedurePath())

	runner := pipeline.NewRunner(cfg, store, nil)
	if err := runner.Run(context.Background(), "vid1", pipeline.Options{}); err != nil {
		t.Fatalf("run pipeline: %v", err)
	}

	video, err := store.GetVideo(context.Background(), "vid1")
	if err != nil {
		t.Fatalf("get video: %v", err)
	}
	if video.Status != journal.StatusCompleted {
		t.Fatalf("status = %s, want %s", video.Status, journal.StatusCompleted)
	}
	if video.RunID == "" {
		t.Error("run id not recorded")
	}

	data, err := os.ReadFile(ws.KnowledgeJSONPath())
	if err != nil {
		t.Fatalf("read knowledge track: %v", err)
	}
	var track knowledge.Track
	if err := json.Unmarshal(data, &track); err != nil {
		t.Fatalf("parse knowledge track: %v", err)
	}
	if track.SchemaVersion != knowledge.SchemaVersion {
		t.Errorf("schema version = %d, want %d", track.SchemaVersion, knowledge.SchemaVersion)
	}
	if track.VideoID != "vid1" {
		t.Errorf("video id = %q", track.VideoID)
	}
	if len(track.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(track.Records))
	}
	record := track.Records[0]
	if record.Index != 1 {
		t.Errorf("record index = %d, want 1", record.Index)
	}
	if record.Segment != [2]int64{0, 1000} {
		t.Errorf("record segment = %v, want [0 1000]", record.Segment)
	}
	if record.VideoTranscript != "Hello world. " {
		t.Errorf("transcript = %q", record.VideoTranscript)
	}
	if record.ProcedureDescription == nil || *record.ProcedureDescription != "Mix the batter." {
		t.Errorf("procedure description = %v, want Mix the batter.", record.ProcedureDescription)
	}
	if record.StepDescription != nil || record.EnvironmentSound != nil {
		t.Error("disabled fields should be omitted")
	}

	for _, path := range []string{ws.WordJSONPath(), ws.SentenceJSONPath(), ws.AudioTrackPath()} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing artifact %s: %v", path, err)
		}
	}
}

func TestRunnerMissingInputsMarksNeedsReview(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.Knowledge.Fields = []string{knowledge.FieldProcedureDescription}

	store := testsupport.MustOpenJournal(t, cfg)
	testsupport.MustWorkspace(t, cfg, "vid2")

	runner := pipeline.NewRunner(cfg, store, nil)
	err := runner.Run(context.Background(), "vid2", pipeline.Options{})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	video, getErr := store.GetVideo(context.Background(), "vid2")
	if getErr != nil {
		t.Fatalf("get video: %v", getErr)
	}
	if video.Status != journal.StatusFailed {
		t.Errorf("status = %s, want %s", video.Status, journal.StatusFailed)
	}
	if !video.NeedsReview {
		t.Error("missing inputs should flag the video for review")
	}
	if video.ErrorMessage == "" {
		t.Error("error message not recorded")
	}
}

func TestRunnerRejectsInvalidVideoID(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	store := testsupport.MustOpenJournal(t, cfg)

	runner := pipeline.NewRunner(cfg, store, nil)
	err := runner.Run(context.Background(), "../escape", pipeline.Options{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestRunnerRejectsConcurrentRun(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	store := testsupport.MustOpenJournal(t, cfg)
	ws := testsupport.MustWorkspace(t, cfg, "vid3")

	lock := flock.New(ws.LockPath())
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("prime workspace lock: locked=%v err=%v", locked, err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	runner := pipeline.NewRunner(cfg, store, nil)
	runErr := runner.Run(context.Background(), "vid3", pipeline.Options{})
	if !errors.Is(runErr, services.ErrTransient) {
		t.Fatalf("err = %v, want ErrTransient", runErr)
	}
}

func TestRunnerFailsHealthCheckWithoutVisionKey(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithVisionKey(""))
	stubTools(t, touchScript)

	store := testsupport.MustOpenJournal(t, cfg)
	ws := testsupport.MustWorkspace(t, cfg, "vid4")
	writeInputs(t, ws.VideoPath(), ws.CaptionPath(), ws.ProcedurePath())

	runner := pipeline.NewRunner(cfg, store, nil)
	err := runner.Run(context.Background(), "vid4", pipeline.Options{})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}

	video, getErr := store.GetVideo(context.Background(), "vid4")
	if getErr != nil {
		t.Fatalf("get video: %v", getErr)
	}
	if video.Status != journal.StatusFailed {
		t.Errorf("status = %s, want %s", video.Status, journal.StatusFailed)
	}
}

// A resumed run must reuse the audio track, sentence artifact, and scene
// frames instead of shelling out again, so a failing ffmpeg stays untouched.
func TestRunnerResumeReusesArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Knowledge.Fields = []string{knowledge.FieldProcedureDescription}
	stubTools(t, failScript)

	store := testsupport.MustOpenJournal(t, cfg)
	ws := testsupport.MustWorkspace(t, cfg, "vid5")
	writeInputs(t, ws.VideoPath(), ws.CaptionPath(), ws.ProcedurePath())

	if err := os.WriteFile(ws.AudioTrackPath(), []byte("wav"), 0o644); err != nil {
		t.Fatalf("seed audio track: %v", err)
	}
	sentences := []subtitle.SentenceSpan{{Index: 1, Text: "Hello world. ", StartMS: 0, EndMS: 1000}}
	if err := subtitle.WriteSentenceJSON(ws.SentenceJSONPath(), sentences); err != nil {
		t.Fatalf("seed sentence artifact: %v", err)
	}
	framePath := filepath.Join(ws.FramesDir(), "vid5_scene_0_4000."+cfg.Scenes.FrameFormat)
	if err := os.WriteFile(framePath, []byte("frame"), 0o644); err != nil {
		t.Fatalf("seed scene frame: %v", err)
	}

	runner := pipeline.NewRunner(cfg, store, nil)
	if err := runner.Run(context.Background(), "vid5", pipeline.Options{Resume: true}); err != nil {
		t.Fatalf("resume pipeline: %v", err)
	}

	video, err := store.GetVideo(context.Background(), "vid5")
	if err != nil {
		t.Fatalf("get video: %v", err)
	}
	if video.Status != journal.StatusCompleted {
		t.Fatalf("status = %s, want %s", video.Status, journal.StatusCompleted)
	}
	if _, err := os.Stat(ws.KnowledgeJSONPath()); err != nil {
		t.Errorf("knowledge track not written: %v", err)
	}
}
