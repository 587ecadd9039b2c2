package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ladle/internal/config"
	"ladle/internal/fileutil"
	"ladle/internal/journal"
	"ladle/internal/logging"
	"ladle/internal/media/mediacut"
	"ladle/internal/scenes"
	"ladle/internal/services/audiocap"
	"ladle/internal/services/vision"
	"ladle/internal/subtitle"
)

// VisionClient describes frame sets in natural language.
type VisionClient interface {
	DescribeImages(ctx context.Context, images [][]byte, prompt string) (string, error)
}

// AudioClient captions extracted audio clips.
type AudioClient interface {
	DescribeAudio(ctx context.Context, clipPath, question string) (string, error)
}

// Assembler walks the sentence list in order and emits one knowledge record
// per sentence, checkpointing each completed record in the journal.
type Assembler struct {
	cfg       *config.Config
	workspace config.Workspace
	store     *journal.Store
	logger    *slog.Logger
	vision    VisionClient
	audio     AudioClient
	fields    FieldSet
}

// NewAssembler wires an assembler for one video workspace. Either client may
// be nil when its fields are disabled.
func NewAssembler(cfg *config.Config, workspace config.Workspace, store *journal.Store, logger *slog.Logger, visionClient VisionClient, audioClient AudioClient) *Assembler {
	return &Assembler{
		cfg:       cfg,
		workspace: workspace,
		store:     store,
		logger:    logging.NewComponentLogger(logger, "assembler"),
		vision:    visionClient,
		audio:     audioClient,
		fields:    NewFieldSet(cfg.Knowledge.Fields),
	}
}

// Run assembles records for every sentence not yet checkpointed, then writes
// the full knowledge track artifact atomically. Sentences already recorded by
// an earlier interrupted run are skipped without repeating model calls.
func (a *Assembler) Run(ctx context.Context, sentences []subtitle.SentenceSpan, procedure *Procedure) error {
	frames, err := scenes.ListFrames(a.workspace.FramesDir(), a.workspace.VideoID)
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	resumeAfter, err := a.store.LastRecordIndex(ctx, a.workspace.VideoID)
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}
	if resumeAfter > 0 {
		a.logger.InfoContext(ctx, "resuming assembly",
			logging.Int("completed_records", resumeAfter),
			logging.Int("total_sentences", len(sentences)))
	}

	var lastEndMS int64
	for _, sentence := range sentences {
		if sentence.Index <= resumeAfter {
			lastEndMS = sentence.EndMS
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		record := a.buildRecord(ctx, sentence, lastEndMS, procedure, frames)
		payload, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("assemble: marshal record %d: %w", sentence.Index, err)
		}
		if err := a.store.SaveRecord(ctx, a.workspace.VideoID, sentence.Index, payload); err != nil {
			return fmt.Errorf("assemble: %w", err)
		}

		percent := float64(sentence.Index) / float64(len(sentences)) * 100
		message := fmt.Sprintf("sentence %d/%d", sentence.Index, len(sentences))
		if err := a.store.SetProgress(ctx, a.workspace.VideoID, "assemble", percent, message); err != nil {
			a.logger.WarnContext(ctx, "progress update failed", logging.Error(err))
		}
		lastEndMS = sentence.EndMS
	}

	return a.writeTrack(ctx)
}

func (a *Assembler) buildRecord(ctx context.Context, sentence subtitle.SentenceSpan, lastEndMS int64, procedure *Procedure, frames []scenes.Frame) Record {
	record := Record{
		Index:           sentence.Index,
		Segment:         [2]int64{lastEndMS, sentence.EndMS},
		VideoTranscript: sentence.Text,
	}

	if a.fields[FieldProcedureDescription] {
		text := procedure.Locate(sentence.StartMS, sentence.EndMS)
		record.ProcedureDescription = &text
	}

	if a.fields[FieldStepDescription] || a.fields[FieldFoodKitchenware] {
		images := a.loadMatchedFrames(ctx, sentence, frames)
		if a.fields[FieldStepDescription] {
			text := a.describeImages(ctx, sentence, images, vision.StepPrompt, FieldStepDescription)
			record.StepDescription = &text
		}
		if a.fields[FieldFoodKitchenware] {
			text := a.describeImages(ctx, sentence, images, vision.FoodKitchenwarePrompt, FieldFoodKitchenware)
			record.FoodKitchenware = &text
		}
	}

	if a.fields[FieldEnvironmentSound] {
		text := a.describeEnvironmentSound(ctx, sentence)
		record.EnvironmentSound = &text
	}

	return record
}

func (a *Assembler) loadMatchedFrames(ctx context.Context, sentence subtitle.SentenceSpan, frames []scenes.Frame) [][]byte {
	matched := scenes.MatchFrames(frames, sentence.StartMS, sentence.EndMS)
	images := make([][]byte, 0, len(matched))
	for _, frame := range matched {
		data, err := os.ReadFile(frame.Path)
		if err != nil {
			a.logger.WarnContext(ctx, "frame unreadable, skipping",
				logging.String("frame", frame.Path),
				logging.Int("sentence", sentence.Index),
				logging.Error(err))
			continue
		}
		images = append(images, data)
	}
	return images
}

// describeImages asks the vision model for one description. Failures and
// empty frame sets both resolve to an empty description so assembly keeps
// moving; the loss is logged, not fatal.
func (a *Assembler) describeImages(ctx context.Context, sentence subtitle.SentenceSpan, images [][]byte, prompt, field string) string {
	if len(images) == 0 {
		a.logger.DebugContext(ctx, "no frames matched sentence",
			logging.Int("sentence", sentence.Index),
			logging.String("field", field))
		return ""
	}
	if a.vision == nil {
		return ""
	}
	description, err := a.vision.DescribeImages(ctx, images, prompt)
	if err != nil {
		a.logger.WarnContext(ctx, "vision description failed",
			logging.Int("sentence", sentence.Index),
			logging.String("field", field),
			logging.Error(err))
		return ""
	}
	return description
}

func (a *Assembler) describeEnvironmentSound(ctx context.Context, sentence subtitle.SentenceSpan) string {
	if a.audio == nil {
		return ""
	}
	startSec := float64(sentence.StartMS) / 1000
	endSec := float64(sentence.EndMS) / 1000
	window := mediacut.PadWindow(startSec, endSec, a.cfg.Audio.MinClipSeconds)
	clipPath := filepath.Join(a.workspace.AudioDir(), mediacut.ClipFilename(a.workspace.VideoID, startSec, endSec))

	err := mediacut.CutAudio(ctx, a.cfg.FFmpegBinary(), a.workspace.AudioTrackPath(), window, clipPath)
	if err != nil {
		a.logger.WarnContext(ctx, "audio clip extraction failed",
			logging.Int("sentence", sentence.Index),
			logging.Error(err))
		return ""
	}

	description, err := a.audio.DescribeAudio(ctx, clipPath, audiocap.EnvironmentSoundQuestion)
	if err != nil {
		a.logger.WarnContext(ctx, "audio caption failed",
			logging.Int("sentence", sentence.Index),
			logging.Error(err))
		return ""
	}
	return description
}

// writeTrack reads every checkpointed record back from the journal and
// writes the final artifact in one atomic rename.
func (a *Assembler) writeTrack(ctx context.Context) error {
	checkpoints, err := a.store.LoadRecords(ctx, a.workspace.VideoID)
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}
	records := make([]Record, 0, len(checkpoints))
	for _, checkpoint := range checkpoints {
		var record Record
		if err := json.Unmarshal(checkpoint.Payload, &record); err != nil {
			return fmt.Errorf("assemble: decode checkpoint %d: %w", checkpoint.SentenceIndex, err)
		}
		records = append(records, record)
	}

	track := Track{
		SchemaVersion: SchemaVersion,
		VideoID:       a.workspace.VideoID,
		Fields:        a.fields.Names(),
		Records:       records,
	}
	if err := fileutil.WriteJSONAtomic(a.workspace.KnowledgeJSONPath(), track); err != nil {
		return fmt.Errorf("assemble: write knowledge track: %w", err)
	}
	a.logger.InfoContext(ctx, "knowledge track written",
		logging.String("path", a.workspace.KnowledgeJSONPath()),
		logging.Int("records", len(records)))
	return nil
}
