package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"ladle/internal/journal"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func colorizeStatus(status journal.Status, colorize bool) string {
	label := string(status)
	if !colorize {
		return label
	}
	switch {
	case status == journal.StatusCompleted:
		return ansiGreen + label + ansiReset
	case status == journal.StatusFailed:
		return ansiRed + label + ansiReset
	case status == journal.StatusPending:
		return label
	default:
		return ansiYellow + label + ansiReset
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
