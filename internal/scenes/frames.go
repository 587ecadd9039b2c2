package scenes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"ladle/internal/match"
)

// Frame is an exported representative image and the scene it stands for.
// Bounds are recovered from the filename, so matching stays stable across
// runs even when the grab instant differs.
type Frame struct {
	Path    string
	StartMS int64
	EndMS   int64
}

// FrameName builds the canonical frame filename for a scene.
func FrameName(videoID string, iv Interval, format string) string {
	return fmt.Sprintf("%s_scene_%d_%d.%s", videoID, iv.StartMS, iv.EndMS, format)
}

// ParseFrameName recovers a scene interval from a frame filename. The last
// two underscore-separated fields hold the bounds.
func ParseFrameName(name, videoID string) (Interval, bool) {
	if !strings.HasPrefix(name, videoID+"_scene_") {
		return Interval{}, false
	}
	parts := strings.Split(name, "_")
	if len(parts) < 4 {
		return Interval{}, false
	}
	startMS, err := strconv.ParseInt(parts[len(parts)-2], 10, 64)
	if err != nil {
		return Interval{}, false
	}
	endField := parts[len(parts)-1]
	if dot := strings.IndexByte(endField, '.'); dot != -1 {
		endField = endField[:dot]
	}
	endMS, err := strconv.ParseInt(endField, 10, 64)
	if err != nil {
		return Interval{}, false
	}
	return Interval{StartMS: startMS, EndMS: endMS}, true
}

// ExtractFrame grabs one frame at the scene midpoint and writes it to
// framesDir using the canonical name. Returns the written path.
func ExtractFrame(ctx context.Context, binary, videoPath string, iv Interval, framesDir, videoID, format string) (string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if strings.TrimSpace(videoPath) == "" {
		return "", errors.New("extract frame: empty video path")
	}
	if iv.EndMS <= iv.StartMS {
		return "", fmt.Errorf("extract frame: invalid interval [%d, %d]", iv.StartMS, iv.EndMS)
	}

	dest := filepath.Join(framesDir, FrameName(videoID, iv, format))
	cmd := exec.CommandContext(ctx, binary,
		"-hide_banner", "-loglevel", "error", "-y",
		"-ss", fmt.Sprintf("%.3f", iv.MidpointSeconds()),
		"-i", videoPath,
		"-frames:v", "1",
		dest)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("extract frame: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return dest, nil
}

// ListFrames reads framesDir and returns the frames belonging to videoID in
// filename order. Files that do not parse are skipped.
func ListFrames(framesDir, videoID string) ([]Frame, error) {
	entries, err := os.ReadDir(framesDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list frames: %w", err)
	}
	var frames []Frame
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		iv, ok := ParseFrameName(entry.Name(), videoID)
		if !ok {
			continue
		}
		frames = append(frames, Frame{
			Path:    filepath.Join(framesDir, entry.Name()),
			StartMS: iv.StartMS,
			EndMS:   iv.EndMS,
		})
	}
	return frames, nil
}

// MatchFrames returns every frame whose scene overlaps [startMS, endMS],
// keeping the filename order from ListFrames.
func MatchFrames(frames []Frame, startMS, endMS int64) []Frame {
	var matched []Frame
	for _, frame := range frames {
		if match.Intersects(startMS, endMS, frame.StartMS, frame.EndMS) {
			matched = append(matched, frame)
		}
	}
	return matched
}
