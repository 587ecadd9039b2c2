// Package journal persists pipeline run state and per-sentence record
// checkpoints in SQLite so interrupted runs resume where they stopped.
package journal
