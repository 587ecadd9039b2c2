package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"ladle/internal/config"
	"ladle/internal/journal"
	"ladle/internal/knowledge"
	"ladle/internal/logging"
	"ladle/internal/media/ffprobe"
	"ladle/internal/media/mediacut"
	"ladle/internal/scenes"
	"ladle/internal/services"
	"ladle/internal/services/audiocap"
	"ladle/internal/services/vision"
	"ladle/internal/stage"
	"ladle/internal/subtitle"
)

// ingestStage validates workspace inputs, probes the container, loads the
// procedure annotations, and extracts the full audio track.
type ingestStage struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newIngestStage(cfg *config.Config, logger *slog.Logger) *ingestStage {
	return &ingestStage{cfg: cfg, logger: logging.NewComponentLogger(logger, "ingest")}
}

func (s *ingestStage) Prepare(ctx context.Context, run *stage.Run) error {
	for _, input := range []struct {
		label string
		path  string
	}{
		{"video", run.Workspace.VideoPath()},
		{"captions", run.Workspace.CaptionPath()},
		{"procedure annotations", run.Workspace.ProcedurePath()},
	} {
		if _, err := os.Stat(input.path); err != nil {
			return services.Wrap(services.ErrNotFound, "ingest", "check inputs",
				fmt.Sprintf("%s missing at %s", input.label, input.path), err)
		}
	}
	return nil
}

func (s *ingestStage) Execute(ctx context.Context, run *stage.Run) error {
	probe, err := ffprobe.Inspect(ctx, s.cfg.FFprobeBinary(), run.Workspace.VideoPath())
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "ingest", "probe container", "", err)
	}
	if probe.VideoStreamCount() == 0 || probe.AudioStreamCount() == 0 {
		return services.Wrap(services.ErrValidation, "ingest", "probe container",
			fmt.Sprintf("need video and audio streams, found %d video / %d audio",
				probe.VideoStreamCount(), probe.AudioStreamCount()), nil)
	}
	run.DurationMS = probe.DurationMillis()

	procedure, err := knowledge.LoadProcedure(run.Workspace.ProcedurePath())
	if err != nil {
		return services.Wrap(services.ErrValidation, "ingest", "load procedure annotations", "", err)
	}
	run.Procedure = procedure

	trackPath := run.Workspace.AudioTrackPath()
	if run.Resume {
		if _, err := os.Stat(trackPath); err == nil {
			s.logger.InfoContext(ctx, "audio track already extracted", logging.String("path", trackPath))
			return nil
		}
	}
	if err := os.MkdirAll(run.Workspace.AudioDir(), 0o755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}
	if err := mediacut.ExtractAudioTrack(ctx, s.cfg.FFmpegBinary(), run.Workspace.VideoPath(), trackPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "ingest", "extract audio track", "", err)
	}
	s.logger.InfoContext(ctx, "ingest complete",
		logging.Int64("duration_ms", run.DurationMS),
		logging.Int("annotations", procedure.Len()))
	return nil
}

func (s *ingestStage) HealthCheck(ctx context.Context) stage.Health {
	for _, binary := range []string{s.cfg.FFmpegBinary(), s.cfg.FFprobeBinary()} {
		if _, err := exec.LookPath(binary); err != nil {
			return stage.Unhealthy("ingest", fmt.Sprintf("binary %q not found", binary))
		}
	}
	return stage.Healthy("ingest")
}

// sentencesStage decodes the word-level captions and folds them into
// sentence spans, writing both JSON artifacts.
type sentencesStage struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newSentencesStage(cfg *config.Config, logger *slog.Logger) *sentencesStage {
	return &sentencesStage{cfg: cfg, logger: logging.NewComponentLogger(logger, "sentences")}
}

func (s *sentencesStage) Prepare(ctx context.Context, run *stage.Run) error {
	if err := os.MkdirAll(run.Workspace.OutputDir(), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

func (s *sentencesStage) Execute(ctx context.Context, run *stage.Run) error {
	sentencePath := run.Workspace.SentenceJSONPath()
	if run.Resume {
		if restored, err := subtitle.ReadSentenceJSON(sentencePath); err == nil {
			run.Sentences = restored
			s.logger.InfoContext(ctx, "sentence artifact reused", logging.Int("sentences", len(restored)))
			return nil
		}
	}

	words, err := subtitle.ParseWordsFile(run.Workspace.CaptionPath())
	if err != nil {
		return services.Wrap(services.ErrValidation, "sentences", "parse captions", "", err)
	}
	sentences, dropped := subtitle.Segment(words)
	if dropped > 0 {
		s.logger.WarnContext(ctx, "trailing words never closed a sentence",
			logging.Int("dropped_words", dropped))
	}
	if len(sentences) == 0 {
		s.logger.WarnContext(ctx, "no terminated sentences in captions",
			logging.Int("words", len(words)))
	}

	if err := subtitle.WriteWordJSON(run.Workspace.WordJSONPath(), words); err != nil {
		return fmt.Errorf("write word artifact: %w", err)
	}
	if err := subtitle.WriteSentenceJSON(sentencePath, sentences); err != nil {
		return fmt.Errorf("write sentence artifact: %w", err)
	}
	run.Sentences = sentences
	s.logger.InfoContext(ctx, "sentences segmented",
		logging.Int("words", len(words)),
		logging.Int("sentences", len(sentences)))
	return nil
}

func (s *sentencesStage) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("sentences")
}

// scenesStage detects content cuts and exports one frame per scene.
type scenesStage struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newScenesStage(cfg *config.Config, logger *slog.Logger) *scenesStage {
	return &scenesStage{cfg: cfg, logger: logging.NewComponentLogger(logger, "scenes")}
}

func (s *scenesStage) Prepare(ctx context.Context, run *stage.Run) error {
	if err := os.MkdirAll(run.Workspace.FramesDir(), 0o755); err != nil {
		return fmt.Errorf("create frames dir: %w", err)
	}
	return nil
}

func (s *scenesStage) Execute(ctx context.Context, run *stage.Run) error {
	if run.Resume {
		existing, err := scenes.ListFrames(run.Workspace.FramesDir(), run.Workspace.VideoID)
		if err == nil && len(existing) > 0 {
			s.logger.InfoContext(ctx, "scene frames reused", logging.Int("frames", len(existing)))
			return nil
		}
	}

	cuts, err := scenes.DetectCuts(ctx, s.cfg.FFmpegBinary(), run.Workspace.VideoPath(), s.cfg.Scenes.Threshold)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "scenes", "detect cuts", "", err)
	}
	intervals := scenes.BuildIntervals(cuts, run.DurationMS)
	if len(intervals) == 0 {
		s.logger.WarnContext(ctx, "no scenes detected, matching will see no frames")
		return nil
	}

	for _, interval := range intervals {
		if _, err := scenes.ExtractFrame(ctx, s.cfg.FFmpegBinary(), run.Workspace.VideoPath(),
			interval, run.Workspace.FramesDir(), run.Workspace.VideoID, s.cfg.Scenes.FrameFormat); err != nil {
			return services.Wrap(services.ErrExternalTool, "scenes", "extract frame", "", err)
		}
	}
	s.logger.InfoContext(ctx, "scene frames exported",
		logging.Int("cuts", len(cuts)),
		logging.Int("scenes", len(intervals)))
	return nil
}

func (s *scenesStage) HealthCheck(ctx context.Context) stage.Health {
	if _, err := exec.LookPath(s.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy("scenes", fmt.Sprintf("binary %q not found", s.cfg.FFmpegBinary()))
	}
	return stage.Healthy("scenes")
}

// assembleStage walks the sentence list and emits the knowledge track.
type assembleStage struct {
	cfg    *config.Config
	store  *journal.Store
	logger *slog.Logger

	visionClient knowledge.VisionClient
	audioClient  knowledge.AudioClient
}

func newAssembleStage(cfg *config.Config, store *journal.Store, logger *slog.Logger) *assembleStage {
	return &assembleStage{cfg: cfg, store: store, logger: logging.NewComponentLogger(logger, "assemble")}
}

func (s *assembleStage) Prepare(ctx context.Context, run *stage.Run) error {
	fields := knowledge.NewFieldSet(s.cfg.Knowledge.Fields)

	if s.visionClient == nil && (fields[knowledge.FieldStepDescription] || fields[knowledge.FieldFoodKitchenware]) {
		s.visionClient = vision.NewClient(vision.Config{
			APIKey:         s.cfg.Vision.APIKey,
			BaseURL:        s.cfg.Vision.BaseURL,
			Model:          s.cfg.Vision.Model,
			MaxTokens:      s.cfg.Vision.MaxTokens,
			TimeoutSeconds: s.cfg.Vision.TimeoutSeconds,
		}, retryOptionsVision(s.cfg)...)
	}
	if s.audioClient == nil && fields[knowledge.FieldEnvironmentSound] {
		s.audioClient = audiocap.NewClient(audiocap.Config{
			BaseURL:        s.cfg.Audio.CaptionBaseURL,
			TimeoutSeconds: s.cfg.Audio.CaptionTimeout,
		}, retryOptionsAudio(s.cfg)...)
	}
	return nil
}

func (s *assembleStage) Execute(ctx context.Context, run *stage.Run) error {
	if run.Procedure == nil {
		return services.Wrap(services.ErrValidation, "assemble", "check inputs",
			"procedure annotations not loaded", nil)
	}
	if !run.Resume {
		if err := s.store.ClearRecords(ctx, run.Workspace.VideoID); err != nil {
			return err
		}
	}
	assembler := knowledge.NewAssembler(s.cfg, run.Workspace, s.store, s.logger, s.visionClient, s.audioClient)
	return assembler.Run(ctx, run.Sentences, run.Procedure)
}

func (s *assembleStage) HealthCheck(ctx context.Context) stage.Health {
	fields := knowledge.NewFieldSet(s.cfg.Knowledge.Fields)
	if (fields[knowledge.FieldStepDescription] || fields[knowledge.FieldFoodKitchenware]) && s.cfg.Vision.APIKey == "" {
		return stage.Unhealthy("assemble", "vision api key not configured")
	}
	if fields[knowledge.FieldEnvironmentSound] && s.cfg.Audio.CaptionBaseURL == "" {
		return stage.Unhealthy("assemble", "audio caption base url not configured")
	}
	return stage.Healthy("assemble")
}
