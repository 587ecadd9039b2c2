// Package subtitle decodes word-level SRT captions and folds them into
// sentence spans for downstream annotation.
package subtitle
