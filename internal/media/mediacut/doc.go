// Package mediacut extracts audio tracks and per-sentence clips with ffmpeg.
package mediacut
