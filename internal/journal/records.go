package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SaveRecord checkpoints one completed knowledge record. Saving the same
// sentence index again replaces the payload.
func (s *Store) SaveRecord(ctx context.Context, videoID string, sentenceIndex int, payload []byte) error {
	if sentenceIndex < 1 {
		return fmt.Errorf("save record: sentence index %d out of range", sentenceIndex)
	}
	if len(payload) == 0 {
		return errors.New("save record: empty payload")
	}
	err := s.execWithRetry(ensureContext(ctx), `
		INSERT INTO records (video_id, sentence_index, payload, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (video_id, sentence_index) DO UPDATE SET payload = excluded.payload`,
		videoID, sentenceIndex, string(payload), nowUTC())
	if err != nil {
		return fmt.Errorf("save record %s/%d: %w", videoID, sentenceIndex, err)
	}
	return nil
}

// LoadRecords returns every checkpointed record for the video ordered by
// sentence index.
func (s *Store) LoadRecords(ctx context.Context, videoID string) ([]Record, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `
		SELECT video_id, sentence_index, payload FROM records
		WHERE video_id = ? ORDER BY sentence_index`, videoID)
	if err != nil {
		return nil, fmt.Errorf("load records %s: %w", videoID, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			record  Record
			payload string
		)
		if err := rows.Scan(&record.VideoID, &record.SentenceIndex, &payload); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		record.Payload = []byte(payload)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load records %s: %w", videoID, err)
	}
	return records, nil
}

// LastRecordIndex returns the highest checkpointed sentence index, or 0 when
// no records exist yet.
func (s *Store) LastRecordIndex(ctx context.Context, videoID string) (int, error) {
	ctx = ensureContext(ctx)
	var index sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(sentence_index) FROM records WHERE video_id = ?", videoID).Scan(&index)
	if err != nil {
		return 0, fmt.Errorf("last record index %s: %w", videoID, err)
	}
	if !index.Valid {
		return 0, nil
	}
	return int(index.Int64), nil
}

// ClearRecords removes all checkpoints for the video. Fresh runs call this
// before reassembling.
func (s *Store) ClearRecords(ctx context.Context, videoID string) error {
	if err := s.execWithRetry(ensureContext(ctx),
		"DELETE FROM records WHERE video_id = ?", videoID); err != nil {
		return fmt.Errorf("clear records %s: %w", videoID, err)
	}
	return nil
}
