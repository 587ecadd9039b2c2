package config

import (
	"fmt"
	"path/filepath"
	"regexp"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Workspace resolves the on-disk layout for one video's pipeline run. All
// intermediate and final artifacts for a video live under a single directory
// keyed by the video ID.
type Workspace struct {
	VideoID string
	Root    string
}

// NewWorkspace validates the video ID and binds it to the configured data dir.
func (c *Config) NewWorkspace(videoID string) (Workspace, error) {
	if !videoIDPattern.MatchString(videoID) {
		return Workspace{}, fmt.Errorf("invalid video id %q", videoID)
	}
	return Workspace{VideoID: videoID, Root: filepath.Join(c.Paths.DataDir, videoID)}, nil
}

// VideoPath returns the source video container path.
func (w Workspace) VideoPath() string {
	return filepath.Join(w.Root, w.VideoID+".mp4")
}

// CaptionPath returns the word-level subtitle file path.
func (w Workspace) CaptionPath() string {
	return filepath.Join(w.Root, w.VideoID+".srt")
}

// ProcedurePath returns the procedure annotation file path.
func (w Workspace) ProcedurePath() string {
	return filepath.Join(w.Root, w.VideoID+"_procedure.json")
}

// FramesDir returns the directory holding one representative frame per scene.
func (w Workspace) FramesDir() string {
	return filepath.Join(w.Root, "key_frames")
}

// AudioDir returns the directory holding the extracted audio track and clips.
func (w Workspace) AudioDir() string {
	return filepath.Join(w.Root, "audio_clips")
}

// OutputDir returns the directory holding word, sentence, and knowledge JSON.
func (w Workspace) OutputDir() string {
	return filepath.Join(w.Root, "parser_out")
}

// AudioTrackPath returns the full extracted audio track path.
func (w Workspace) AudioTrackPath() string {
	return filepath.Join(w.AudioDir(), w.VideoID+"_original.wav")
}

// WordJSONPath returns the word-level caption artifact path.
func (w Workspace) WordJSONPath() string {
	return filepath.Join(w.OutputDir(), w.VideoID+"_word.json")
}

// SentenceJSONPath returns the sentence-level artifact path.
func (w Workspace) SentenceJSONPath() string {
	return filepath.Join(w.OutputDir(), w.VideoID+"_sentence.json")
}

// KnowledgeJSONPath returns the final knowledge track artifact path.
func (w Workspace) KnowledgeJSONPath() string {
	return filepath.Join(w.OutputDir(), w.VideoID+"_video_knowledge.json")
}

// LockPath returns the run lockfile guarding this workspace.
func (w Workspace) LockPath() string {
	return filepath.Join(w.Root, "ladle.lock")
}
