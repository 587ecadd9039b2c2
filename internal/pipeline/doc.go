// Package pipeline orchestrates the per-video stages: ingest, sentence
// segmentation, scene detection, and knowledge assembly. The runner persists
// status transitions to the journal and guards each workspace with a
// lockfile so one video is processed by at most one run at a time.
package pipeline
