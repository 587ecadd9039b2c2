package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"ladle/internal/config"
	"ladle/internal/fileutil"
	"ladle/internal/journal"
	"ladle/internal/logging"
	"ladle/internal/services"
	"ladle/internal/stage"
)

// Options controls a pipeline run.
type Options struct {
	// Resume reuses surviving artifacts and checkpoints instead of starting
	// clean.
	Resume bool
}

// Runner executes the stage sequence for one video at a time.
type Runner struct {
	cfg    *config.Config
	store  *journal.Store
	logger *slog.Logger
}

// NewRunner wires a pipeline runner.
func NewRunner(cfg *config.Config, store *journal.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{cfg: cfg, store: store, logger: logger}
}

type stageSpec struct {
	name       string
	handler    stage.Handler
	processing journal.Status
	done       journal.Status
}

// Run drives the full pipeline for videoID. The workspace is locked for the
// duration; a second concurrent run fails immediately.
func (r *Runner) Run(ctx context.Context, videoID string, opts Options) error {
	workspace, err := r.cfg.NewWorkspace(videoID)
	if err != nil {
		return services.Wrap(services.ErrValidation, "pipeline", "resolve workspace", "", err)
	}
	if err := os.MkdirAll(workspace.Root, 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	lock := flock.New(workspace.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire workspace lock: %w", err)
	}
	if !locked {
		return services.Wrap(services.ErrTransient, "pipeline", "acquire workspace lock",
			"another run is processing this workspace", nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	runID := uuid.NewString()
	ctx = services.WithVideoID(ctx, videoID)
	ctx = services.WithRunID(ctx, runID)
	runLogger := logging.WithContext(ctx, r.logger)

	if _, err := r.store.EnsureVideo(ctx, videoID); err != nil {
		return err
	}
	if err := r.store.SetRunID(ctx, videoID, runID); err != nil {
		return err
	}

	if !opts.Resume {
		for _, dir := range []string{workspace.FramesDir(), workspace.AudioDir(), workspace.OutputDir()} {
			if err := fileutil.ClearDir(dir); err != nil {
				return fmt.Errorf("reset workspace: %w", err)
			}
		}
	}

	run := &stage.Run{
		Config:    r.cfg,
		Workspace: workspace,
		RunID:     runID,
		Resume:    opts.Resume,
	}

	specs := []stageSpec{
		{"ingest", newIngestStage(r.cfg, r.logger), journal.StatusIngesting, journal.StatusIngested},
		{"sentences", newSentencesStage(r.cfg, r.logger), journal.StatusSegmenting, journal.StatusSegmented},
		{"scenes", newScenesStage(r.cfg, r.logger), journal.StatusDetectingScenes, journal.StatusScenesDetected},
		{"assemble", newAssembleStage(r.cfg, r.store, r.logger), journal.StatusAssembling, journal.StatusCompleted},
	}

	runLogger.InfoContext(ctx, "pipeline started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Bool("resume", opts.Resume))

	started := time.Now()
	for _, spec := range specs {
		if err := r.runStage(ctx, spec, run); err != nil {
			return err
		}
	}

	runLogger.InfoContext(ctx, "pipeline completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Duration("elapsed", time.Since(started)))
	return nil
}

func (r *Runner) runStage(ctx context.Context, spec stageSpec, run *stage.Run) error {
	stageCtx := logging.WithStage(ctx, spec.name)
	stageLogger := logging.WithContext(stageCtx, r.logger)

	if health := spec.handler.HealthCheck(stageCtx); !health.Ready {
		err := services.Wrap(services.ErrConfiguration, spec.name, "health check", health.Detail, nil)
		return r.failStage(stageCtx, stageLogger, run, err)
	}

	stageLogger.InfoContext(stageCtx, "stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(spec.processing)))

	if err := r.store.SetStatus(stageCtx, run.Workspace.VideoID, spec.processing); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	if err := r.store.SetProgress(stageCtx, run.Workspace.VideoID, stageLabel(spec.processing), 0,
		stageLabel(spec.processing)+" started"); err != nil {
		stageLogger.WarnContext(stageCtx, "progress update failed", logging.Error(err))
	}

	if err := spec.handler.Prepare(stageCtx, run); err != nil {
		return r.failStage(stageCtx, stageLogger, run, err)
	}
	if err := spec.handler.Execute(stageCtx, run); err != nil {
		return r.failStage(stageCtx, stageLogger, run, err)
	}

	if err := r.store.SetStatus(stageCtx, run.Workspace.VideoID, spec.done); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}

	stageLogger.InfoContext(stageCtx, "stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(spec.done)))
	return nil
}

func (r *Runner) failStage(ctx context.Context, logger *slog.Logger, run *stage.Run, stageErr error) error {
	message := strings.TrimSpace(stageErr.Error())
	needsReview := services.IsFatalInput(stageErr)

	logger.ErrorContext(ctx, "stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.Bool("needs_review", needsReview),
		logging.Error(stageErr))

	if err := r.store.MarkFailed(ctx, run.Workspace.VideoID, message, needsReview); err != nil {
		logger.ErrorContext(ctx, "failed to persist stage failure", logging.Error(err))
	}
	return stageErr
}

func stageLabel(status journal.Status) string {
	parts := strings.Fields(strings.ReplaceAll(string(status), "_", " "))
	for i, part := range parts {
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
