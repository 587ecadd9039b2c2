// Package services defines error classification and context annotation shared
// by ladle's external collaborators and pipeline stages.
//
// Stage code wraps failures with Wrap so the pipeline can map them onto
// journal statuses without string matching, and annotates contexts with video
// and stage identifiers that the logging package lifts into structured fields.
package services
