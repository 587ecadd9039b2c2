package mediacut

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Window is a clip interval expressed in seconds.
type Window struct {
	StartSec float64
	EndSec   float64
}

// Duration returns the window length in seconds.
func (w Window) Duration() float64 {
	return w.EndSec - w.StartSec
}

// PadWindow widens a window symmetrically until it spans at least minSec
// seconds. Windows already long enough come back unchanged. The start is
// clamped at zero after padding; the end is never pulled in.
func PadWindow(startSec, endSec, minSec float64) Window {
	window := Window{StartSec: startSec, EndSec: endSec}
	if minSec <= 0 || window.Duration() >= minSec {
		if window.StartSec < 0 {
			window.StartSec = 0
		}
		return window
	}
	pad := (minSec - window.Duration()) / 2
	window.StartSec -= pad
	window.EndSec += pad
	if window.StartSec < 0 {
		window.StartSec = 0
	}
	return window
}

// ClipFilename names a sentence clip after its unpadded interval in seconds.
func ClipFilename(videoID string, startSec, endSec float64) string {
	return fmt.Sprintf("%s_clip_%s_%s.wav", videoID, formatSeconds(startSec), formatSeconds(endSec))
}

// ExtractAudioTrack demuxes the full audio track from a video container.
func ExtractAudioTrack(ctx context.Context, binary, videoPath, dest string) error {
	binary = defaultBinary(binary)
	videoPath = strings.TrimSpace(videoPath)
	dest = strings.TrimSpace(dest)
	if videoPath == "" || dest == "" {
		return errors.New("extract audio track: source and destination required")
	}

	cmd := exec.CommandContext(ctx, binary,
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", videoPath,
		"-q:a", "0",
		"-map", "a",
		dest)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("extract audio track: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// CutAudio stream-copies a window out of an audio file into dest.
func CutAudio(ctx context.Context, binary, source string, window Window, dest string) error {
	binary = defaultBinary(binary)
	source = strings.TrimSpace(source)
	dest = strings.TrimSpace(dest)
	if source == "" || dest == "" {
		return errors.New("cut audio: source and destination required")
	}
	if window.EndSec <= window.StartSec {
		return fmt.Errorf("cut audio: invalid window [%v, %v]", window.StartSec, window.EndSec)
	}

	cmd := exec.CommandContext(ctx, binary,
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", source,
		"-ss", fmt.Sprintf("%.3f", window.StartSec),
		"-to", fmt.Sprintf("%.3f", window.EndSec),
		"-c", "copy",
		dest)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("cut audio: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func defaultBinary(binary string) string {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return "ffmpeg"
	}
	return binary
}

// formatSeconds renders a bound the way Python's f-strings print floats:
// shortest decimal form, but integral values keep a trailing ".0".
func formatSeconds(value float64) string {
	s := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
