package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates the requested video has no journal row.
var ErrNotFound = errors.New("video not found in journal")

const videoColumns = `video_id, status, progress_stage, progress_percent, progress_message,
	error_message, needs_review, run_id, created_at, updated_at`

// EnsureVideo returns the journal row for videoID, creating a pending row on
// first sight.
func (s *Store) EnsureVideo(ctx context.Context, videoID string) (*Video, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, errors.New("ensure video: empty video id")
	}
	ctx = ensureContext(ctx)

	now := nowUTC()
	err := s.execWithRetry(ctx, `
		INSERT INTO videos (video_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (video_id) DO NOTHING`,
		videoID, string(StatusPending), now, now)
	if err != nil {
		return nil, fmt.Errorf("ensure video %s: %w", videoID, err)
	}
	return s.GetVideo(ctx, videoID)
}

// GetVideo fetches one journal row.
func (s *Store) GetVideo(ctx context.Context, videoID string) (*Video, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE video_id = ?", videoID)
	video, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, videoID)
	}
	if err != nil {
		return nil, fmt.Errorf("get video %s: %w", videoID, err)
	}
	return video, nil
}

// ListVideos returns every journal row ordered by creation time.
func (s *Store) ListVideos(ctx context.Context) ([]*Video, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+videoColumns+" FROM videos ORDER BY created_at, video_id")
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return videos, nil
}

// SetStatus transitions a video to the given lifecycle status. Moving out of
// a failure state clears the recorded error.
func (s *Store) SetStatus(ctx context.Context, videoID string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("set status: unknown status %q", status)
	}
	clearError := ""
	if status != StatusFailed {
		clearError = ", error_message = '', needs_review = 0"
	}
	err := s.execWithRetry(ensureContext(ctx), `
		UPDATE videos SET status = ?`+clearError+`, updated_at = ?
		WHERE video_id = ?`,
		string(status), nowUTC(), videoID)
	if err != nil {
		return fmt.Errorf("set status %s -> %s: %w", videoID, status, err)
	}
	return nil
}

// SetRunID records the active run identifier on the video.
func (s *Store) SetRunID(ctx context.Context, videoID, runID string) error {
	err := s.execWithRetry(ensureContext(ctx),
		"UPDATE videos SET run_id = ?, updated_at = ? WHERE video_id = ?",
		runID, nowUTC(), videoID)
	if err != nil {
		return fmt.Errorf("set run id %s: %w", videoID, err)
	}
	return nil
}

// SetProgress records stage progress for status rendering.
func (s *Store) SetProgress(ctx context.Context, videoID, stage string, percent float64, message string) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	err := s.execWithRetry(ensureContext(ctx), `
		UPDATE videos SET progress_stage = ?, progress_percent = ?, progress_message = ?, updated_at = ?
		WHERE video_id = ?`,
		stage, percent, message, nowUTC(), videoID)
	if err != nil {
		return fmt.Errorf("set progress %s: %w", videoID, err)
	}
	return nil
}

// MarkFailed moves the video to failed and records the cause. needsReview
// flags input problems that retrying will not cure.
func (s *Store) MarkFailed(ctx context.Context, videoID, message string, needsReview bool) error {
	review := 0
	if needsReview {
		review = 1
	}
	err := s.execWithRetry(ensureContext(ctx), `
		UPDATE videos SET status = ?, error_message = ?, needs_review = ?, updated_at = ?
		WHERE video_id = ?`,
		string(StatusFailed), message, review, nowUTC(), videoID)
	if err != nil {
		return fmt.Errorf("mark failed %s: %w", videoID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*Video, error) {
	var (
		video       Video
		status      string
		needsReview int
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(
		&video.VideoID,
		&status,
		&video.ProgressStage,
		&video.ProgressPercent,
		&video.ProgressMessage,
		&video.ErrorMessage,
		&needsReview,
		&video.RunID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	video.Status = Status(status)
	video.NeedsReview = needsReview != 0
	video.CreatedAt = parseTime(createdAt)
	video.UpdatedAt = parseTime(updatedAt)
	return &video, nil
}
