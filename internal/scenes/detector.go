package scenes

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
)

// DetectCuts runs ffmpeg's scene-score filter over the video and returns the
// cut timestamps in seconds, ascending. threshold is the 0-1 scene score a
// frame pair must exceed to count as a cut.
func DetectCuts(ctx context.Context, binary, videoPath string, threshold float64) ([]float64, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	videoPath = strings.TrimSpace(videoPath)
	if videoPath == "" {
		return nil, errors.New("detect cuts: empty video path")
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("detect cuts: threshold %v out of range (0, 1)", threshold)
	}

	filter := fmt.Sprintf("select='gt(scene,%s)',metadata=print:file=-", strconv.FormatFloat(threshold, 'f', -1, 64))
	cmd := exec.CommandContext(ctx, binary,
		"-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-vf", filter,
		"-an", "-f", "null", "-")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("detect cuts: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return parseCutTimes(string(output)), nil
}

// parseCutTimes extracts pts_time values from the metadata filter printout.
// Lines look like: "frame:12  pts:154112 pts_time:12.843".
func parseCutTimes(output string) []float64 {
	var cuts []float64
	seen := make(map[float64]struct{})
	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, "pts_time:")
		if idx == -1 {
			continue
		}
		value := line[idx+len("pts_time:"):]
		if end := strings.IndexAny(value, " \t\r"); end != -1 {
			value = value[:end]
		}
		seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || seconds < 0 {
			continue
		}
		if _, dup := seen[seconds]; dup {
			continue
		}
		seen[seconds] = struct{}{}
		cuts = append(cuts, seconds)
	}
	sort.Float64s(cuts)
	return cuts
}
